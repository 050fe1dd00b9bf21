package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StatsRepo struct {
	db *PostgresDB
}

func NewStatsRepo(db *PostgresDB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Increment applies one help event to the agent's stat row for the period.
// The increment happens inside the upsert, never as read-then-write, so
// concurrent webhook deliveries for the same agent cannot lose updates.
func (r *StatsRepo) Increment(ctx context.Context, e *domain.HelpEvent, period domain.Period) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO counselor_stats (
			id, counselor_id, counselor_name, period_start, period_end,
			help_count, total_chars, avg_chars, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $6, $7)
		ON CONFLICT (counselor_id, period_start, period_end) DO UPDATE SET
			help_count = counselor_stats.help_count + 1,
			total_chars = counselor_stats.total_chars + EXCLUDED.total_chars,
			avg_chars = ROUND(
				(counselor_stats.total_chars + EXCLUDED.total_chars)::numeric
				/ (counselor_stats.help_count + 1)
			)::int,
			counselor_name = EXCLUDED.counselor_name,
			updated_at = EXCLUDED.updated_at
	`, uuid.New().String(), e.CounselorID, e.CounselorName,
		period.Start, period.End, e.CharCount, time.Now())

	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Recompute rebuilds every stat row for the period directly from the stored
// help events, correcting drift left by partial failures in the incremental
// path. Runs in one transaction so concurrent increments see either the old
// rows or the rebuilt ones.
func (r *StatsRepo) Recompute(ctx context.Context, period domain.Period) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM counselor_stats
		WHERE period_start = $1 AND period_end = $2
	`, period.Start, period.End)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO counselor_stats (
			id, counselor_id, counselor_name, period_start, period_end,
			help_count, total_chars, avg_chars, updated_at
		)
		SELECT gen_random_uuid(), counselor_id, MAX(counselor_name), $1, $2,
			COUNT(*), COALESCE(SUM(char_count), 0),
			ROUND(COALESCE(SUM(char_count), 0)::numeric / COUNT(*))::int, $3
		FROM help_events
		WHERE helped_at >= $1 AND helped_at < $4
		GROUP BY counselor_id
		ON CONFLICT (counselor_id, period_start, period_end) DO UPDATE SET
			counselor_name = EXCLUDED.counselor_name,
			help_count = EXCLUDED.help_count,
			total_chars = EXCLUDED.total_chars,
			avg_chars = EXCLUDED.avg_chars,
			updated_at = EXCLUDED.updated_at
	`, period.Start, period.End, time.Now(), period.End.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListPeriod returns stat rows for the period ordered by help count.
func (r *StatsRepo) ListPeriod(ctx context.Context, period domain.Period) ([]*domain.CounselorStat, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, counselor_id, counselor_name, period_start, period_end,
			help_count, total_chars, avg_chars, updated_at
		FROM counselor_stats
		WHERE period_start >= $1 AND period_end <= $2
		ORDER BY help_count DESC
	`, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var stats []*domain.CounselorStat
	for rows.Next() {
		var s domain.CounselorStat
		if err := rows.Scan(
			&s.ID, &s.CounselorID, &s.CounselorName, &s.PeriodStart, &s.PeriodEnd,
			&s.HelpCount, &s.TotalChars, &s.AvgChars, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, nil
}

// GetForCounselor fetches one agent's stat row for the period, or nil.
func (r *StatsRepo) GetForCounselor(ctx context.Context, counselorID string, period domain.Period) (*domain.CounselorStat, error) {
	var s domain.CounselorStat
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, counselor_id, counselor_name, period_start, period_end,
			help_count, total_chars, avg_chars, updated_at
		FROM counselor_stats
		WHERE counselor_id = $1 AND period_start = $2 AND period_end = $3
	`, counselorID, period.Start, period.End).Scan(
		&s.ID, &s.CounselorID, &s.CounselorName, &s.PeriodStart, &s.PeriodEnd,
		&s.HelpCount, &s.TotalChars, &s.AvgChars, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query: %w", err)
	}
	return &s, nil
}
