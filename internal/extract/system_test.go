package extract

import "testing"

func TestIsSystemMessage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"assignment notice", "상담사가 배정되었습니다", true},
		{"assignment notice spaced", "상담사가  배정되었습니다.", true},
		{"handover notice", "담당자가 변경되었습니다", true},
		{"session closed", "상담이 종료되었습니다", true},
		{"off hours", "지금은 운영시간이 아닙니다", true},
		{"queue notice", "잠시만 기다려 주시면 순서대로 안내해드리겠습니다", true},
		{"control keyword", "closed", true},
		{"uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", true},
		{"hex blob", "a1b2c3d4e5f60718", true},
		{"prefixed id", "msg-a1b2c3d4", true},
		{"normal reply", "확인해드릴게요, 잠시만요", false},
		{"reply mentioning close", "상담 종료 전에 확인 부탁드립니다", false},
		{"empty", "", false},
		{"short word", "네", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSystemMessage(tt.text); got != tt.want {
				t.Errorf("IsSystemMessage(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
