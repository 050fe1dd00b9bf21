package extract

import (
	"regexp"
	"strings"
)

// ID-shaped strings: UUIDs, long hex blobs, and prefixed identifiers that
// sometimes leak into message text through automation.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
	regexp.MustCompile(`^[0-9a-fA-F]{16,}$`),
	regexp.MustCompile(`^(msg|chat|usr|mgr|evt)[-_][0-9a-zA-Z]{6,}$`),
}

// Canonical system notifications in the operator's language. Heuristic: a
// legitimate reply that happens to match is lost (false positive), and new
// notification wordings slip through (false negative).
var systemPhrases = []*regexp.Regexp{
	regexp.MustCompile(`상담사가\s*배정되었습니다`),
	regexp.MustCompile(`담당자가\s*(변경|배정)되었습니다`),
	regexp.MustCompile(`상담이\s*(시작|종료|보류)되었습니다`),
	regexp.MustCompile(`상담을\s*종료합니다`),
	regexp.MustCompile(`운영시간이\s*아닙니다`),
	regexp.MustCompile(`잠시만\s*기다려\s*주시면\s*순서대로\s*안내`),
}

// Very short strings equal to a control keyword.
var controlKeywords = map[string]bool{
	"open": true, "opened": true, "close": true, "closed": true,
	"assign": true, "unassign": true, "transfer": true, "snooze": true,
	"snoozed": true,
}

// IsSystemMessage reports whether text is a system/automation artifact
// rather than an agent-authored reply.
func IsSystemMessage(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if looksLikeIdentifier(trimmed) {
		return true
	}

	for _, p := range systemPhrases {
		if p.MatchString(trimmed) {
			return true
		}
	}

	return controlKeywords[strings.ToLower(trimmed)]
}

func looksLikeIdentifier(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	for _, p := range idPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
