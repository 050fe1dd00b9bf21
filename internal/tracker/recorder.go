package tracker

import (
	"context"
	"log"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
)

// EventStore is the help-event log: idempotent inserts keyed by message ID.
type EventStore interface {
	Record(ctx context.Context, events []*domain.HelpEvent) ([]*domain.HelpEvent, domain.RecordResult, error)
	CountForDay(ctx context.Context, counselorID string, day time.Time) (int, error)
}

// StatsStore maintains the per-agent period aggregates.
type StatsStore interface {
	Increment(ctx context.Context, e *domain.HelpEvent, period domain.Period) error
	Recompute(ctx context.Context, period domain.Period) error
}

// Recorder funnels both ingestion paths into the store: idempotent event
// insert, validation clamps, then an atomic stat increment for each event
// that was actually new.
type Recorder struct {
	events         EventStore
	stats          StatsStore
	maxHelpsPerDay int
	maxCharsPerMsg int
	nameOverrides  map[string]string
}

func NewRecorder(events EventStore, stats StatsStore, maxHelpsPerDay, maxCharsPerMsg int, nameOverrides map[string]string) *Recorder {
	return &Recorder{
		events:         events,
		stats:          stats,
		maxHelpsPerDay: maxHelpsPerDay,
		maxCharsPerMsg: maxCharsPerMsg,
		nameOverrides:  nameOverrides,
	}
}

// Record persists events and updates aggregates. Duplicates are counted, not
// errors. Out-of-range values are clamped and logged, never dropped.
func (r *Recorder) Record(ctx context.Context, events []*domain.HelpEvent) (domain.RecordResult, error) {
	if len(events) == 0 {
		return domain.RecordResult{}, nil
	}

	for _, e := range events {
		if name, ok := r.nameOverrides[e.CounselorID]; ok {
			e.CounselorName = name
		}
		if r.maxCharsPerMsg > 0 && e.CharCount > r.maxCharsPerMsg {
			log.Printf("anomalous char count %d for message %s (counselor %s), clamping to %d",
				e.CharCount, e.MessageID, e.CounselorID, r.maxCharsPerMsg)
			e.CharCount = r.maxCharsPerMsg
		}
	}

	inserted, result, err := r.events.Record(ctx, events)
	if err != nil {
		return result, err
	}

	for _, e := range inserted {
		period := domain.DayPeriod(e.HelpedAt)

		if r.maxHelpsPerDay > 0 {
			count, err := r.events.CountForDay(ctx, e.CounselorID, e.HelpedAt)
			if err != nil {
				log.Printf("daily count check failed for counselor %s: %v", e.CounselorID, err)
			} else if count > r.maxHelpsPerDay {
				log.Printf("anomalous daily volume for counselor %s: %d helps on %s, stat increment skipped",
					e.CounselorID, count, period.Start.Format("2006-01-02"))
				continue
			}
		}

		if err := r.stats.Increment(ctx, e, period); err != nil {
			// The event row exists; the daily recompute reconciles the stat.
			log.Printf("stat increment failed for counselor %s: %v", e.CounselorID, err)
		}
	}

	return result, nil
}
