package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Person is a referenced account (manager or customer) in a webhook payload.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// WebhookEvent is a normalized inbound webhook delivery. Two envelope
// variants exist upstream: `{event/type, entity, refers}` and
// `{event, resource: {message, userChat}}`.
type WebhookEvent struct {
	Event   string    `json:"event,omitempty"`
	Type    string    `json:"type,omitempty"`
	Message *Message  `json:"message,omitempty"`
	Chat    *UserChat `json:"userChat,omitempty"`
	Manager *Person   `json:"manager,omitempty"`
	User    *Person   `json:"user,omitempty"`
}

type webhookEnvelope struct {
	Event  string          `json:"event"`
	Type   string          `json:"type"`
	Entity json.RawMessage `json:"entity"`
	Refers *struct {
		Manager  *Person   `json:"manager"`
		User     *Person   `json:"user"`
		UserChat *UserChat `json:"userChat"`
	} `json:"refers"`
	Resource *struct {
		Message  *Message  `json:"message"`
		UserChat *UserChat `json:"userChat"`
	} `json:"resource"`
}

// ParseWebhookEnvelope decodes either envelope variant into a WebhookEvent.
func ParseWebhookEnvelope(body []byte) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	ev := &WebhookEvent{Event: env.Event, Type: env.Type}

	if env.Resource != nil {
		ev.Message = env.Resource.Message
		ev.Chat = env.Resource.UserChat
		return ev, nil
	}

	if len(env.Entity) > 0 && env.Type == "message" {
		var msg Message
		if err := json.Unmarshal(env.Entity, &msg); err != nil {
			return nil, fmt.Errorf("decode entity: %w", err)
		}
		ev.Message = &msg
	}
	if env.Refers != nil {
		ev.Manager = env.Refers.Manager
		ev.User = env.Refers.User
		ev.Chat = env.Refers.UserChat
	}
	return ev, nil
}

// IsMessageEvent reports whether the delivery carries a chat message.
func (e *WebhookEvent) IsMessageEvent() bool {
	if e.Message == nil {
		return false
	}
	if e.Type == "message" {
		return true
	}
	switch strings.ToLower(e.Event) {
	case "push", "message.create", "message.created", "message:create":
		return true
	}
	return false
}
