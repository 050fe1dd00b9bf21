package extract

import (
	"encoding/json"
	"testing"
)

func TestTextPlainTextWins(t *testing.T) {
	raw := json.RawMessage(`{"plainText":"안녕하세요 <b>고객님</b>","blocks":[{"type":"text","value":"ignored"}]}`)
	if got := Text(raw); got != "안녕하세요 고객님" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTextBlocks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"text and code",
			`{"blocks":[{"type":"text","value":"hello"},{"type":"code","value":"SELECT 1"}]}`,
			"hello SELECT 1",
		},
		{
			"nested bullets",
			`{"blocks":[{"type":"bullets","blocks":[{"type":"text","value":"one"},{"type":"text","value":"two"}]}]}`,
			"one two",
		},
		{
			"link prefers title",
			`{"blocks":[{"type":"link","title":"가이드 문서","value":"https://example.com/x"}]}`,
			"가이드 문서",
		},
		{
			"image placeholder",
			`{"blocks":[{"type":"image","value":"https://cdn/x.png"}]}`,
			"[이미지]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextGenericFieldFallback(t *testing.T) {
	raw := json.RawMessage(`{"id":"msg-1","content":"문의 확인했습니다"}`)
	if got := Text(raw); got != "문의 확인했습니다" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTextEmbeddedJSONString(t *testing.T) {
	raw := json.RawMessage(`{"data":"{\"text\":\"중첩된 내용\"}"}`)
	if got := Text(raw); got != "중첩된 내용" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTextAttachmentPlaceholders(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"file":{"name":"receipt.pdf"}}`, "[파일: receipt.pdf]"},
		{`{"image":{"url":"https://cdn/x.png"}}`, "[이미지]"},
		{`{"video":{"url":"https://cdn/x.mp4"}}`, "[동영상]"},
		{`{"sticker":{"id":"s1"}}`, "[스티커]"},
	}

	for _, tt := range tests {
		if got := Text(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("Text(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTextDeepSearchSkipsIdentifiers(t *testing.T) {
	raw := json.RawMessage(`{"meta":{"requestId":"a1b2c3d4e5f6a7b8","note":{"extra":"실제 답변 내용"}}}`)
	if got := Text(raw); got != "실제 답변 내용" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTextNoContent(t *testing.T) {
	if got := Text(json.RawMessage(`{"id":"msg-1","createdAt":123}`)); got != "" {
		t.Errorf("Text() = %q, want empty", got)
	}
	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
}

func TestCharCountGraphemes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"확인해드릴게요, 잠시만요", 13},
		{"hello", 5},
		{"👍", 1},
		{"👨‍👩‍👧‍👦", 1},
		{"", 0},
	}

	for _, tt := range tests {
		if got := CharCount(tt.in); got != tt.want {
			t.Errorf("CharCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  여러   줄\n\n텍스트\t정리  "); got != "여러 줄 텍스트 정리" {
		t.Errorf("Normalize() = %q", got)
	}
}

func TestStripHTML(t *testing.T) {
	if got := Normalize(StripHTML("<p>문의 &amp; 답변</p>")); got != "문의 & 답변" {
		t.Errorf("StripHTML() = %q", got)
	}
}
