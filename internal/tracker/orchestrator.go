package tracker

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Helper-Yoon/sns-help-counter/internal/channeltalk"
	"github.com/Helper-Yoon/sns-help-counter/internal/classify"
	"github.com/Helper-Yoon/sns-help-counter/internal/config"
	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
)

const pageSize = 100

// Orchestrator drives the polling reconciliation path: list candidate
// chats, fetch messages, classify, record. It stops cleanly when the
// wall-clock budget runs out and returns partial results.
type Orchestrator struct {
	api        ChatAPI
	classifier *classify.Classifier
	recorder   *Recorder
	stats      StatsStore
	cfg        *config.SyncConfig
}

func NewOrchestrator(api ChatAPI, classifier *classify.Classifier, recorder *Recorder, stats StatsStore, cfg *config.SyncConfig) *Orchestrator {
	return &Orchestrator{
		api:        api,
		classifier: classifier,
		recorder:   recorder,
		stats:      stats,
		cfg:        cfg,
	}
}

// RunIncremental scans recently updated open chats.
func (o *Orchestrator) RunIncremental(ctx context.Context) *domain.SyncReport {
	since := time.Now().Add(-time.Duration(o.cfg.WindowMinutes) * time.Minute)
	return o.run(ctx, "incremental", []string{domain.StateOpened},
		strconv.FormatInt(since.UnixMilli(), 10), o.cfg.IncrementalLimit)
}

// RunFull scans every chat state up to the full-sync cap.
func (o *Orchestrator) RunFull(ctx context.Context) *domain.SyncReport {
	states := []string{domain.StateOpened, domain.StateSnoozed, domain.StateClosed}
	return o.run(ctx, "full", states, "", o.cfg.FullLimit)
}

// RecomputeDay rebuilds the stat rows for the day containing t.
func (o *Orchestrator) RecomputeDay(ctx context.Context, t time.Time) error {
	return o.stats.Recompute(ctx, domain.DayPeriod(t))
}

func (o *Orchestrator) run(ctx context.Context, mode string, states []string, since string, maxChats int) *domain.SyncReport {
	report := &domain.SyncReport{
		Mode:      mode,
		StartedAt: time.Now(),
	}
	deadline := report.StartedAt.Add(o.cfg.Budget)

	chats, listErr := o.collectChats(ctx, states, since, maxChats, deadline, report)
	report.TotalChats = len(chats)

	if listErr != nil && len(chats) == 0 {
		// The very first listing failed entirely; nothing to reconcile.
		report.Error = listErr.Error()
		report.Duration = time.Since(report.StartedAt)
		report.DurationMs = report.Duration.Milliseconds()
		return report
	}

	var mu sync.Mutex
	for start := 0; start < len(chats); start += o.cfg.BatchSize {
		if time.Now().After(deadline) {
			report.BudgetExceeded = true
			log.Printf("%s sync stopping at %d/%d chats: budget exhausted", mode, start, len(chats))
			break
		}

		end := start + o.cfg.BatchSize
		if end > len(chats) {
			end = len(chats)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, chat := range chats[start:end] {
			chat := chat
			g.Go(func() error {
				o.processChat(gctx, &chat, report, &mu)
				return nil
			})
		}
		g.Wait()
	}

	report.Success = true
	report.Duration = time.Since(report.StartedAt)
	report.DurationMs = report.Duration.Milliseconds()
	log.Printf("%s sync done: %d chats, %d processed, %d skipped, %d events (%d new, %d dup), %d errors in %s",
		mode, report.TotalChats, report.Processed, report.Skipped,
		report.HelpEvents, report.Inserted, report.Duplicates, report.Errors, report.Duration)
	return report
}

// collectChats pages through the listing endpoints until the cap, the
// budget, or the cursor runs out.
func (o *Orchestrator) collectChats(ctx context.Context, states []string, since string, maxChats int, deadline time.Time, report *domain.SyncReport) ([]domain.UserChat, error) {
	var all []domain.UserChat
	var firstErr error

	for _, state := range states {
		next := ""
		for len(all) < maxChats {
			if time.Now().After(deadline) {
				report.BudgetExceeded = true
				return all, firstErr
			}

			limit := pageSize
			if remaining := maxChats - len(all); remaining < limit {
				limit = remaining
			}

			chats, cursor, err := o.api.ListUserChats(ctx, channeltalk.ListFilter{
				State: state,
				Next:  next,
				Since: since,
				Limit: limit,
			})
			if err != nil {
				log.Printf("list chats (state=%s) failed: %v", state, err)
				report.Errors++
				if firstErr == nil {
					firstErr = err
				}
				break
			}

			all = append(all, chats...)
			if cursor == "" {
				break
			}
			next = cursor
		}
	}

	return all, firstErr
}

// processChat fetches one chat's messages and records its help events. A
// failure here is logged and counted; it never aborts the batch.
func (o *Orchestrator) processChat(ctx context.Context, chat *domain.UserChat, report *domain.SyncReport, mu *sync.Mutex) {
	if chat.AssigneeID == "" {
		mu.Lock()
		report.Skipped++
		mu.Unlock()
		return
	}
	if o.cfg.Policy == config.PolicyFollowers && len(chat.Followers()) == 0 {
		mu.Lock()
		report.Skipped++
		mu.Unlock()
		return
	}

	messages, err := o.api.ListMessages(ctx, chat.ID, o.cfg.MessageLimit)
	if err != nil {
		log.Printf("messages fetch for chat %s failed: %v", chat.ID, err)
		mu.Lock()
		report.Errors++
		mu.Unlock()
		return
	}

	events := o.classifier.Classify(chat, messages)
	if len(events) == 0 {
		mu.Lock()
		report.Processed++
		mu.Unlock()
		return
	}

	eventPtrs := make([]*domain.HelpEvent, len(events))
	for i := range events {
		events[i].Source = domain.SourceSync
		eventPtrs[i] = &events[i]
	}

	result, err := o.recorder.Record(ctx, eventPtrs)

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		log.Printf("record for chat %s failed: %v", chat.ID, err)
		report.Errors++
		return
	}
	report.Processed++
	report.HelpEvents += len(events)
	report.Inserted += result.Inserted
	report.Duplicates += result.Duplicates
}
