package extract

import (
	"encoding/json"
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

const maxDepth = 10

// Placeholder stored when extraction fails completely, so the event is still
// counted even without preview text.
const Placeholder = "[메시지 내용 없음]"

// Field names tried in order during the generic-field fallback and preferred
// during deep search.
var preferredFields = []string{"plainText", "message", "text", "content", "body", "value", "data"}

// Field names that hold routing/identity metadata, never display text.
var skipFields = map[string]bool{
	"id": true, "chatId": true, "channelId": true, "personId": true,
	"personType": true, "requestId": true, "rootMessageId": true,
	"createdAt": true, "updatedAt": true, "version": true, "state": true,
	"type": true, "url": true, "key": true, "bucket": true,
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Text extracts human-readable text from a raw message payload of unknown
// shape. The fallbacks run in order; the first non-empty result wins.
func Text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Not an object: a bare string payload is its own text.
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return Normalize(s)
		}
		return ""
	}

	if s, ok := payload["plainText"].(string); ok {
		if out := Normalize(StripHTML(s)); out != "" {
			return out
		}
	}

	if blocks, ok := payload["blocks"].([]interface{}); ok {
		if out := Normalize(renderBlocks(blocks, 0)); out != "" {
			return out
		}
	}

	if out := Normalize(genericFields(payload)); out != "" {
		return out
	}

	if out := attachmentPlaceholder(payload); out != "" {
		return out
	}

	seen := make(map[uintptr]bool)
	return Normalize(deepSearch(payload, 0, seen))
}

// CharCount counts user-perceived characters (grapheme clusters), so a
// composed emoji or Korean syllable counts as one.
func CharCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// StripHTML removes markup tags and unescapes entities.
func StripHTML(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, " "))
}

// Normalize collapses runs of whitespace and trims.
func Normalize(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// renderBlocks renders a structured "blocks" array into plain text.
func renderBlocks(blocks []interface{}, depth int) string {
	if depth > maxDepth {
		return ""
	}

	var parts []string
	for _, b := range blocks {
		block, ok := b.(map[string]interface{})
		if !ok {
			continue
		}

		kind, _ := block["type"].(string)
		value, _ := block["value"].(string)

		switch kind {
		case "text":
			parts = append(parts, StripHTML(value))
		case "code":
			parts = append(parts, value)
		case "bullets", "orderedList", "unorderedList", "list":
			if children, ok := block["blocks"].([]interface{}); ok {
				parts = append(parts, renderBlocks(children, depth+1))
			}
		case "quote":
			if value != "" {
				parts = append(parts, StripHTML(value))
			} else if children, ok := block["blocks"].([]interface{}); ok {
				parts = append(parts, renderBlocks(children, depth+1))
			}
		case "link":
			if title, ok := block["title"].(string); ok && title != "" {
				parts = append(parts, title)
			} else {
				parts = append(parts, value)
			}
		case "image":
			parts = append(parts, "[이미지]")
		case "file":
			parts = append(parts, "[파일]")
		default:
			if value != "" {
				parts = append(parts, StripHTML(value))
			}
		}
	}
	return strings.Join(parts, " ")
}

// genericFields probes the well-known text-bearing fields. A string value may
// itself be embedded JSON; an object value is searched recursively.
func genericFields(payload map[string]interface{}) string {
	for _, field := range preferredFields {
		v, ok := payload[field]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if out := textFromString(val); out != "" {
				return out
			}
		case map[string]interface{}:
			if out := genericFields(val); out != "" {
				return out
			}
			seen := make(map[uintptr]bool)
			if out := deepSearch(val, 0, seen); out != "" {
				return out
			}
		}
	}
	return ""
}

func textFromString(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	// Embedded JSON gets one parse-and-recurse chance.
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var nested interface{}
		if err := json.Unmarshal([]byte(trimmed), &nested); err == nil {
			if m, ok := nested.(map[string]interface{}); ok {
				if out := genericFields(m); out != "" {
					return out
				}
			}
		}
	}
	return StripHTML(trimmed)
}

// attachmentPlaceholder renders non-text payloads to a bracketed description.
func attachmentPlaceholder(payload map[string]interface{}) string {
	if f, ok := payload["file"].(map[string]interface{}); ok {
		if name, ok := f["name"].(string); ok && name != "" {
			return "[파일: " + name + "]"
		}
		return "[파일]"
	}
	if _, ok := payload["image"]; ok {
		return "[이미지]"
	}
	if _, ok := payload["video"]; ok {
		return "[동영상]"
	}
	if _, ok := payload["sticker"]; ok {
		return "[스티커]"
	}
	if files, ok := payload["files"].([]interface{}); ok && len(files) > 0 {
		return "[파일]"
	}
	return ""
}

// deepSearch walks the object graph depth-first for any string leaf,
// preferring allow-listed field names. Both the depth bound and the visited
// set stay in place because the graph comes from untrusted input.
func deepSearch(node interface{}, depth int, seen map[uintptr]bool) string {
	if depth > maxDepth {
		return ""
	}

	switch v := node.(type) {
	case string:
		if out := Normalize(StripHTML(v)); out != "" && !looksLikeIdentifier(out) {
			return out
		}
		return ""
	case map[string]interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if seen[ptr] {
			return ""
		}
		seen[ptr] = true

		for _, field := range preferredFields {
			if child, ok := v[field]; ok {
				if out := deepSearch(child, depth+1, seen); out != "" {
					return out
				}
			}
		}
		for key, child := range v {
			if skipFields[key] {
				continue
			}
			if out := deepSearch(child, depth+1, seen); out != "" {
				return out
			}
		}
		return ""
	case []interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if seen[ptr] {
			return ""
		}
		seen[ptr] = true

		for _, child := range v {
			if out := deepSearch(child, depth+1, seen); out != "" {
				return out
			}
		}
		return ""
	default:
		return ""
	}
}
