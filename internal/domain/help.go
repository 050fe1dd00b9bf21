package domain

import "time"

// Event sources for the two ingestion paths.
const (
	SourceWebhook = "webhook"
	SourceSync    = "sync"
)

// PreviewLength bounds the stored message preview.
const PreviewLength = 100

// HelpEvent is one qualifying non-assignee reply, the atomic unit of
// aggregation. (ChatID, MessageID) identifies the physical message;
// MessageID alone is the dedup key.
type HelpEvent struct {
	ID            string    `json:"id,omitempty"`
	CounselorID   string    `json:"counselor_id"`
	CounselorName string    `json:"counselor_name"`
	ChatID        string    `json:"chat_id"`
	MessageID     string    `json:"message_id"`
	CustomerName  string    `json:"customer_name,omitempty"`
	Preview       string    `json:"message_preview,omitempty"`
	CharCount     int       `json:"char_count"`
	HelpedAt      time.Time `json:"helped_at"`
	Source        string    `json:"source,omitempty"`
}

// CounselorStat is the per-agent aggregate for one period. AvgChars is always
// derived from TotalChars/HelpCount, never stored independently.
type CounselorStat struct {
	ID            string    `json:"id,omitempty"`
	CounselorID   string    `json:"counselor_id"`
	CounselorName string    `json:"counselor_name"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	HelpCount     int       `json:"help_count"`
	TotalChars    int       `json:"total_chars"`
	AvgChars      int       `json:"avg_chars"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// RecordResult reports the outcome of persisting a batch of help events.
type RecordResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

// Add merges another result into this one.
func (r *RecordResult) Add(other RecordResult) {
	r.Inserted += other.Inserted
	r.Duplicates += other.Duplicates
}

// SyncReport summarizes one orchestrated sync run. A non-zero Errors count
// does not imply failure; individual chat failures are skipped.
type SyncReport struct {
	Mode           string        `json:"mode"`
	Success        bool          `json:"success"`
	TotalChats     int           `json:"total_chats"`
	Processed      int           `json:"processed"`
	Skipped        int           `json:"skipped"`
	HelpEvents     int           `json:"help_events"`
	Inserted       int           `json:"inserted"`
	Duplicates     int           `json:"duplicates"`
	Errors         int           `json:"errors"`
	BudgetExceeded bool          `json:"budget_exceeded,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"-"`
	DurationMs     int64         `json:"duration_ms"`
	Error          string        `json:"error,omitempty"`
}

// Period is an aggregation window, one calendar day by default.
type Period struct {
	Start time.Time
	End   time.Time
}

// DayPeriod returns the calendar-day period containing t, in t's location.
func DayPeriod(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start}
}

// Contains reports whether t falls on a day within the period (inclusive).
func (p Period) Contains(t time.Time) bool {
	day := DayPeriod(t).Start
	return !day.Before(p.Start) && !day.After(p.End)
}
