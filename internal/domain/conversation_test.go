package domain

import (
	"encoding/json"
	"testing"
)

func TestFollowersUnion(t *testing.T) {
	chat := UserChat{
		FollowerIDs: []string{"a", "b", ""},
		ChatTags: []ChatTag{
			{FollowerIDs: []string{"b", "c"}},
			{},
		},
	}

	got := chat.Followers()
	if len(got) != 3 {
		t.Fatalf("len(Followers()) = %d, want 3: %v", len(got), got)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !got[id] {
			t.Errorf("Followers() missing %q", id)
		}
	}
}

func TestCustomerName(t *testing.T) {
	tests := []struct {
		name string
		chat UserChat
		want string
	}{
		{"user name", UserChat{User: &ChatUser{Name: "홍길동"}}, "홍길동"},
		{"profile name", UserChat{User: &ChatUser{Profile: &UserProfile{Name: "이몽룡"}}}, "이몽룡"},
		{"chat name", UserChat{Name: "성춘향"}, "성춘향"},
		{"fallback", UserChat{}, "고객"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chat.CustomerName(); got != tt.want {
				t.Errorf("CustomerName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageRoundTripKeepsUnknownFields(t *testing.T) {
	payload := []byte(`{"id":"m1","chatId":"c1","personType":"manager","plainText":"hi","blocks":[{"type":"text","value":"hi"}]}`)

	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m.ID != "m1" || m.PlainText != "hi" {
		t.Fatalf("typed fields lost: %+v", m)
	}

	out, err := json.Marshal(&m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal(round trip) error = %v", err)
	}
	if _, ok := decoded["blocks"]; !ok {
		t.Error("blocks field dropped in round trip")
	}
}

func TestPersonTypeChecks(t *testing.T) {
	if !(&Message{PersonType: "Manager"}).IsManager() {
		t.Error("IsManager() case-insensitive match failed")
	}
	if (&Message{PersonType: "bot"}).IsManager() {
		t.Error("IsManager() = true for bot")
	}
	if !(&Message{PersonType: "USER"}).IsUser() {
		t.Error("IsUser() case-insensitive match failed")
	}
}
