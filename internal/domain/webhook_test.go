package domain

import (
	"testing"
)

func TestParseWebhookEnvelopeEntityVariant(t *testing.T) {
	body := []byte(`{
		"event": "push",
		"type": "message",
		"entity": {
			"id": "msg-1",
			"chatId": "chat-1",
			"personId": "mgr-2",
			"personType": "manager",
			"plainText": "확인했습니다"
		},
		"refers": {
			"manager": {"id": "mgr-2", "name": "김상담"},
			"userChat": {"id": "chat-1", "state": "opened", "assigneeId": "mgr-1"}
		}
	}`)

	ev, err := ParseWebhookEnvelope(body)
	if err != nil {
		t.Fatalf("ParseWebhookEnvelope() error = %v", err)
	}

	if ev.Message == nil || ev.Message.ID != "msg-1" {
		t.Fatalf("message not decoded: %+v", ev.Message)
	}
	if ev.Message.PlainText != "확인했습니다" {
		t.Errorf("plainText = %q", ev.Message.PlainText)
	}
	if len(ev.Message.Raw) == 0 {
		t.Error("message Raw payload not retained")
	}
	if ev.Manager == nil || ev.Manager.Name != "김상담" {
		t.Errorf("manager refer not decoded: %+v", ev.Manager)
	}
	if ev.Chat == nil || ev.Chat.AssigneeID != "mgr-1" {
		t.Errorf("chat refer not decoded: %+v", ev.Chat)
	}
	if !ev.IsMessageEvent() {
		t.Error("IsMessageEvent() = false, want true")
	}
}

func TestParseWebhookEnvelopeResourceVariant(t *testing.T) {
	body := []byte(`{
		"event": "message.created",
		"resource": {
			"message": {"id": "msg-9", "chatId": "chat-9", "personType": "Manager", "personId": "mgr-3"},
			"userChat": {"id": "chat-9", "state": "opened", "assigneeId": "mgr-1", "followerIds": ["mgr-3"]}
		}
	}`)

	ev, err := ParseWebhookEnvelope(body)
	if err != nil {
		t.Fatalf("ParseWebhookEnvelope() error = %v", err)
	}
	if ev.Message == nil || ev.Message.ID != "msg-9" {
		t.Fatalf("message not decoded: %+v", ev.Message)
	}
	if !ev.Message.IsManager() {
		t.Error("IsManager() = false for capitalized personType")
	}
	if ev.Chat == nil || len(ev.Chat.FollowerIDs) != 1 {
		t.Errorf("chat not decoded: %+v", ev.Chat)
	}
	if !ev.IsMessageEvent() {
		t.Error("IsMessageEvent() = false, want true")
	}
}

func TestParseWebhookEnvelopeMalformed(t *testing.T) {
	if _, err := ParseWebhookEnvelope([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestIsMessageEvent(t *testing.T) {
	msg := &Message{ID: "m"}
	tests := []struct {
		name string
		ev   WebhookEvent
		want bool
	}{
		{"no message", WebhookEvent{Event: "push"}, false},
		{"push", WebhookEvent{Event: "push", Message: msg}, true},
		{"type message", WebhookEvent{Type: "message", Message: msg}, true},
		{"colon form", WebhookEvent{Event: "message:create", Message: msg}, true},
		{"unrelated event", WebhookEvent{Event: "userChat.updated", Message: msg}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.IsMessageEvent(); got != tt.want {
				t.Errorf("IsMessageEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}
