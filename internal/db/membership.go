package db

import (
	"context"
	"fmt"
	"time"

	"github.com/localtrip/backend/internal/model"
)

// EnsureMembershipSchema - memberships table (one subscriber per identity and vice versa)
func (db *Postgres) EnsureMembershipSchema(ctx context.Context) error {
	err := execAll(ctx, db.Pool, []string{
		`
		CREATE TABLE IF NOT EXISTS memberships (
			external_user_id      TEXT PRIMARY KEY,
			subscriber_id         TEXT NOT NULL UNIQUE,
			email                 TEXT NOT NULL DEFAULT '',
			last_payment_at       TIMESTAMPTZ,
			membership_expires_at TIMESTAMPTZ,
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
	})
	if err != nil {
		return fmt.Errorf("failed to create memberships table: %w", err)
	}
	return nil
}

const membershipColumns = `external_user_id, subscriber_id, email, last_payment_at, membership_expires_at, created_at, updated_at`

func (db *Postgres) GetMembershipBySubscriber(ctx context.Context, subscriberID string) (*model.MembershipRecord, error) {
	return db.getMembership(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE subscriber_id = $1`, subscriberID)
}

func (db *Postgres) GetMembershipByExternalUser(ctx context.Context, externalUserID string) (*model.MembershipRecord, error) {
	return db.getMembership(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE external_user_id = $1`, externalUserID)
}

func (db *Postgres) getMembership(ctx context.Context, query, arg string) (*model.MembershipRecord, error) {
	var rec model.MembershipRecord
	err := db.Pool.QueryRow(ctx, query, arg).Scan(
		&rec.ExternalUserID,
		&rec.SubscriberID,
		&rec.Email,
		&rec.LastPaymentAt,
		&rec.MembershipExpiresAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertMembership - insert or update keyed by external_user_id. Nil period fields keep
// the stored values; a subscriber held by another identity fails on the unique index.
func (db *Postgres) UpsertMembership(ctx context.Context, in model.LinkInput) error {
	query := `
		INSERT INTO memberships (external_user_id, subscriber_id, email, last_payment_at, membership_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (external_user_id) DO UPDATE SET
			subscriber_id = EXCLUDED.subscriber_id,
			email = COALESCE(NULLIF(EXCLUDED.email, ''), memberships.email),
			last_payment_at = COALESCE(EXCLUDED.last_payment_at, memberships.last_payment_at),
			membership_expires_at = COALESCE(EXCLUDED.membership_expires_at, memberships.membership_expires_at),
			updated_at = NOW()
	`
	_, err := db.Pool.Exec(ctx, query, in.ExternalUserID, in.SubscriberID, in.Email, in.PaymentAt, in.ExpiresAt)
	return err
}

// UpdateMembershipPeriod - period fields only; the expiry never moves backwards.
// Returns false when no row matched.
func (db *Postgres) UpdateMembershipPeriod(ctx context.Context, subscriberID string, paymentAt, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE memberships
		SET last_payment_at = GREATEST(COALESCE(last_payment_at, $2), $2),
			membership_expires_at = $3,
			updated_at = NOW()
		WHERE subscriber_id = $1
		  AND (membership_expires_at IS NULL OR membership_expires_at < $3)
	`
	tag, err := db.Pool.Exec(ctx, query, subscriberID, paymentAt, expiresAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
