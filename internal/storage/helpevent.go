package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HelpEventRepo struct {
	db *PostgresDB
}

func NewHelpEventRepo(db *PostgresDB) *HelpEventRepo {
	return &HelpEventRepo{db: db}
}

// Record inserts help events with on-conflict-ignore semantics keyed by
// message_id. Replays (webhook retry, then polling reconciliation) land in
// Duplicates instead of double counting. The returned slice holds only the
// events that actually created a row, so callers increment stats exactly
// once per physical message.
func (r *HelpEventRepo) Record(ctx context.Context, events []*domain.HelpEvent) ([]*domain.HelpEvent, domain.RecordResult, error) {
	var result domain.RecordResult
	if len(events) == 0 {
		return nil, result, nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		batch.Queue(`
			INSERT INTO help_events (
				id, counselor_id, counselor_name, chat_id, message_id,
				customer_name, message_preview, char_count, helped_at, source
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (message_id) DO NOTHING
		`, e.ID, e.CounselorID, e.CounselorName, e.ChatID, e.MessageID,
			e.CustomerName, e.Preview, e.CharCount, e.HelpedAt, e.Source)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted []*domain.HelpEvent
	for _, e := range events {
		tag, err := results.Exec()
		if err != nil {
			return inserted, result, fmt.Errorf("batch exec: %w", err)
		}
		if tag.RowsAffected() > 0 {
			result.Inserted++
			inserted = append(inserted, e)
		} else {
			result.Duplicates++
		}
	}

	return inserted, result, nil
}

// Exists reports whether a help event for the message is already stored.
func (r *HelpEventRepo) Exists(ctx context.Context, messageID string) (bool, error) {
	var found bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM help_events WHERE message_id = $1)
	`, messageID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return found, nil
}

// CountForDay returns how many events an agent already has on the given day.
// Used by the daily-volume clamp guard.
func (r *HelpEventRepo) CountForDay(ctx context.Context, counselorID string, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM help_events
		WHERE counselor_id = $1 AND helped_at >= $2 AND helped_at < $3
	`, counselorID, start, start.AddDate(0, 0, 1)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	return count, nil
}

// ListPeriod returns all events whose helped_at falls in the period.
func (r *HelpEventRepo) ListPeriod(ctx context.Context, period domain.Period) ([]*domain.HelpEvent, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, counselor_id, counselor_name, chat_id, message_id,
			customer_name, message_preview, char_count, helped_at, source
		FROM help_events
		WHERE helped_at >= $1 AND helped_at < $2
		ORDER BY helped_at ASC
	`, period.Start, period.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanHelpEvents(rows)
}

// Recent returns the newest events for the dashboard preview.
func (r *HelpEventRepo) Recent(ctx context.Context, limit int) ([]*domain.HelpEvent, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, counselor_id, counselor_name, chat_id, message_id,
			customer_name, message_preview, char_count, helped_at, source
		FROM help_events
		ORDER BY helped_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanHelpEvents(rows)
}

func scanHelpEvents(rows pgx.Rows) ([]*domain.HelpEvent, error) {
	var events []*domain.HelpEvent
	for rows.Next() {
		var e domain.HelpEvent
		if err := rows.Scan(
			&e.ID, &e.CounselorID, &e.CounselorName, &e.ChatID, &e.MessageID,
			&e.CustomerName, &e.Preview, &e.CharCount, &e.HelpedAt, &e.Source,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		events = append(events, &e)
	}
	return events, nil
}
