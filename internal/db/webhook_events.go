package db

import (
	"context"
	"fmt"
)

// EnsureWebhookEventSchema - billing_webhook_events table (processed Stripe event ids)
func (db *Postgres) EnsureWebhookEventSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS billing_webhook_events (
			event_id    TEXT PRIMARY KEY,
			event_type  TEXT NOT NULL,
			received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create billing_webhook_events table: %w", err)
	}
	return nil
}

// ClaimWebhookEvent - true when this call recorded the event id first
func (db *Postgres) ClaimWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO billing_webhook_events (event_id, event_type, received_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseWebhookEvent - forget a claim so the provider's retry is processed again
func (db *Postgres) ReleaseWebhookEvent(ctx context.Context, eventID string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM billing_webhook_events WHERE event_id = $1`, eventID)
	return err
}
