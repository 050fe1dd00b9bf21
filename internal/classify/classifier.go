package classify

import (
	"sort"

	"github.com/Helper-Yoon/sns-help-counter/internal/config"
	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
	"github.com/Helper-Yoon/sns-help-counter/internal/extract"
)

// Classifier turns a chat's assignment metadata and message list into help
// events according to the configured policy and count mode.
type Classifier struct {
	policy config.HelpPolicy
	mode   config.CountMode
}

func New(policy config.HelpPolicy, mode config.CountMode) *Classifier {
	return &Classifier{policy: policy, mode: mode}
}

// Classify returns the help events found in the chat's message window.
// Messages may arrive in any order; they are re-sorted ascending before any
// temporal reasoning.
func (c *Classifier) Classify(chat *domain.UserChat, messages []domain.Message) []domain.HelpEvent {
	// No assignee means nobody can be a non-assignee.
	if chat == nil || chat.AssigneeID == "" {
		return nil
	}

	var followers map[string]bool
	if c.policy == config.PolicyFollowers {
		followers = chat.Followers()
		if len(followers) == 0 {
			return nil
		}
	}

	sorted := make([]domain.Message, len(messages))
	copy(sorted, messages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})

	// In first-responder mode only replies after the customer's last message
	// count, once per agent, so one multi-message answer stays one event.
	var lastUserAt int64
	if c.mode == config.CountFirst {
		for _, m := range sorted {
			if m.IsUser() && m.CreatedAt > lastUserAt {
				lastUserAt = m.CreatedAt
			}
		}
	}

	customer := chat.CustomerName()
	recorded := make(map[string]bool)
	var events []domain.HelpEvent

	for i := range sorted {
		m := &sorted[i]
		if !c.qualifies(chat, followers, m) {
			continue
		}
		if c.mode == config.CountFirst {
			if m.CreatedAt <= lastUserAt || recorded[m.PersonID] {
				continue
			}
		}

		text := extract.Text(m.Raw)
		if text == "" {
			text = m.PlainText
		}
		if extract.IsSystemMessage(text) {
			continue
		}

		charCount := 0
		preview := text
		if text == "" {
			// Extraction failed entirely; keep the event with a sentinel so
			// the count stays correct without preview text.
			preview = extract.Placeholder
		} else {
			charCount = extract.CharCount(text)
		}

		events = append(events, domain.HelpEvent{
			CounselorID:   m.PersonID,
			CounselorName: counselorName(m),
			ChatID:        chat.ID,
			MessageID:     m.ID,
			CustomerName:  customer,
			Preview:       truncatePreview(preview),
			CharCount:     charCount,
			HelpedAt:      m.Time(),
		})
		recorded[m.PersonID] = true
	}

	return events
}

func (c *Classifier) qualifies(chat *domain.UserChat, followers map[string]bool, m *domain.Message) bool {
	if !m.IsManager() || m.PersonID == "" {
		return false
	}
	if m.PersonID == chat.AssigneeID {
		return false
	}
	if c.policy == config.PolicyFollowers && !followers[m.PersonID] {
		return false
	}
	return true
}

func counselorName(m *domain.Message) string {
	if m.PersonName != "" {
		return m.PersonName
	}
	return "상담사_" + m.PersonID
}

func truncatePreview(s string) string {
	runes := []rune(s)
	if len(runes) <= domain.PreviewLength {
		return s
	}
	return string(runes[:domain.PreviewLength])
}
