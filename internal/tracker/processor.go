package tracker

import (
	"context"
	"fmt"
	"log"

	"github.com/Helper-Yoon/sns-help-counter/internal/channeltalk"
	"github.com/Helper-Yoon/sns-help-counter/internal/classify"
	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
)

// ChatAPI is the slice of the Channel Talk client the pipeline needs.
type ChatAPI interface {
	ListUserChats(ctx context.Context, filter channeltalk.ListFilter) ([]domain.UserChat, string, error)
	ListMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error)
	GetUserChat(ctx context.Context, chatID string) (*domain.UserChat, error)
	GetManager(ctx context.Context, managerID string) (*channeltalk.Manager, error)
}

// ProcessOutcome describes what happened to one webhook delivery.
type ProcessOutcome struct {
	Processed bool
	Ignored   bool
	Reason    string
}

// Processor handles the low-latency webhook ingestion path: one message at a
// time, classified against freshly fetched chat state.
type Processor struct {
	api        ChatAPI
	classifier *classify.Classifier
	recorder   *Recorder
}

func NewProcessor(api ChatAPI, classifier *classify.Classifier, recorder *Recorder) *Processor {
	return &Processor{api: api, classifier: classifier, recorder: recorder}
}

// ProcessEvent runs one webhook message event through classify-and-record.
// Non-qualifying deliveries are ignored with a reason, not errors.
func (p *Processor) ProcessEvent(ctx context.Context, ev *domain.WebhookEvent) (ProcessOutcome, error) {
	if !ev.IsMessageEvent() {
		return ProcessOutcome{Ignored: true, Reason: "not a message event"}, nil
	}

	msg := ev.Message
	if !msg.IsManager() {
		return ProcessOutcome{Ignored: true, Reason: "not a manager message"}, nil
	}
	if msg.ChatID == "" {
		return ProcessOutcome{Ignored: true, Reason: "missing chat id"}, nil
	}

	chat := ev.Chat
	if chat == nil || chat.AssigneeID == "" {
		fetched, err := p.api.GetUserChat(ctx, msg.ChatID)
		if err != nil {
			return ProcessOutcome{}, fmt.Errorf("fetch chat %s: %w", msg.ChatID, err)
		}
		chat = fetched
	}

	if chat.State != domain.StateOpened {
		return ProcessOutcome{Ignored: true, Reason: "chat not opened"}, nil
	}
	if chat.AssigneeID == "" {
		return ProcessOutcome{Ignored: true, Reason: "no assignee"}, nil
	}
	if msg.PersonID == chat.AssigneeID {
		return ProcessOutcome{Ignored: true, Reason: "assignee's own message"}, nil
	}

	if msg.PersonName == "" {
		msg.PersonName = p.resolveManagerName(ctx, ev, msg.PersonID)
	}

	events := p.classifier.Classify(chat, []domain.Message{*msg})
	if len(events) == 0 {
		return ProcessOutcome{Ignored: true, Reason: "not a help message"}, nil
	}
	for i := range events {
		events[i].Source = domain.SourceWebhook
	}

	eventPtrs := make([]*domain.HelpEvent, len(events))
	for i := range events {
		eventPtrs[i] = &events[i]
	}

	result, err := p.recorder.Record(ctx, eventPtrs)
	if err != nil {
		return ProcessOutcome{}, fmt.Errorf("record: %w", err)
	}
	if result.Inserted == 0 {
		return ProcessOutcome{Ignored: true, Reason: "duplicate message"}, nil
	}

	return ProcessOutcome{Processed: true}, nil
}

// resolveManagerName falls back from the webhook refers block to a manager
// lookup, then to a generated placeholder.
func (p *Processor) resolveManagerName(ctx context.Context, ev *domain.WebhookEvent, managerID string) string {
	if ev.Manager != nil && ev.Manager.ID == managerID && ev.Manager.Name != "" {
		return ev.Manager.Name
	}
	if mgr, err := p.api.GetManager(ctx, managerID); err == nil && mgr.Name != "" {
		return mgr.Name
	} else if err != nil {
		log.Printf("manager name lookup failed for %s: %v", managerID, err)
	}
	return "상담사_" + managerID
}
