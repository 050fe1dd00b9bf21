package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Chat states as reported by the Channel Talk open API.
const (
	StateOpened  = "opened"
	StateClosed  = "closed"
	StateSnoozed = "snoozed"
)

// UserChat is a single customer support thread. Timestamps are epoch
// milliseconds on the remote system's clock.
type UserChat struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId,omitempty"`
	AssigneeID    string    `json:"assigneeId,omitempty"`
	State         string    `json:"state"`
	CreatedAt     int64     `json:"createdAt,omitempty"`
	UpdatedAt     int64     `json:"updatedAt,omitempty"`
	LastMessageAt int64     `json:"lastMessageAt,omitempty"`
	FollowerIDs   []string  `json:"followerIds,omitempty"`
	ChatTags      []ChatTag `json:"chatTags,omitempty"`
	Name          string    `json:"name,omitempty"`
	User          *ChatUser `json:"user,omitempty"`
}

// ChatTag carries per-tag follower lists in addition to the chat-level ones.
type ChatTag struct {
	FollowerIDs []string `json:"followerIds,omitempty"`
}

// ChatUser is the customer side of a chat, best-effort display info only.
type ChatUser struct {
	Name    string       `json:"name,omitempty"`
	Profile *UserProfile `json:"profile,omitempty"`
}

type UserProfile struct {
	Name string `json:"name,omitempty"`
}

// Followers returns the union of chat-level and tag-level follower IDs.
func (c *UserChat) Followers() map[string]bool {
	set := make(map[string]bool)
	for _, id := range c.FollowerIDs {
		if id != "" {
			set[id] = true
		}
	}
	for _, tag := range c.ChatTags {
		for _, id := range tag.FollowerIDs {
			if id != "" {
				set[id] = true
			}
		}
	}
	return set
}

// CustomerName returns the customer display name, falling back through the
// nested profile to a generic label.
func (c *UserChat) CustomerName() string {
	if c.User != nil {
		if c.User.Name != "" {
			return c.User.Name
		}
		if c.User.Profile != nil && c.User.Profile.Name != "" {
			return c.User.Profile.Name
		}
	}
	if c.Name != "" {
		return c.Name
	}
	return "고객"
}

// PersonType identifies the author kind of a message.
type PersonType string

const (
	PersonUser    PersonType = "user"
	PersonManager PersonType = "manager"
	PersonBot     PersonType = "bot"
)

// Message is one message inside a chat. Raw retains the full payload so the
// text extractor can fall back over shapes the typed fields do not cover.
type Message struct {
	ID         string     `json:"id"`
	ChatID     string     `json:"chatId"`
	PersonID   string     `json:"personId,omitempty"`
	PersonType PersonType `json:"personType,omitempty"`
	PersonName string     `json:"personName,omitempty"`
	PlainText  string     `json:"plainText,omitempty"`
	CreatedAt  int64      `json:"createdAt,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Message(a)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (m *Message) MarshalJSON() ([]byte, error) {
	// Prefer the original payload so no unknown fields are lost in transit
	// between the webhook handler and the queue consumer.
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type alias Message
	return json.Marshal((*alias)(m))
}

// IsManager reports whether the author is a support agent. The API and the
// webhook envelopes disagree on casing ("Manager" vs "manager").
func (m *Message) IsManager() bool {
	return strings.EqualFold(string(m.PersonType), string(PersonManager))
}

// IsUser reports whether the author is the customer.
func (m *Message) IsUser() bool {
	return strings.EqualFold(string(m.PersonType), string(PersonUser))
}

// Time converts the epoch-millisecond timestamp to time.Time.
func (m *Message) Time() time.Time {
	return time.UnixMilli(m.CreatedAt)
}
