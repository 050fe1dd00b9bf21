package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type WebhookLogRepo struct {
	db *PostgresDB
}

func NewWebhookLogRepo(db *PostgresDB) *WebhookLogRepo {
	return &WebhookLogRepo{db: db}
}

// Insert records a raw webhook delivery for auditing. Best effort: callers
// log and continue when it fails.
func (r *WebhookLogRepo) Insert(ctx context.Context, eventType string, payload json.RawMessage, processed bool, errMsg string) error {
	if payload == nil {
		payload = json.RawMessage("{}")
	}

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO webhook_logs (id, event_type, payload, processed, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), eventType, payload, processed, errMsg, time.Now())

	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}
