package db

import (
	"context"
	"fmt"
	"time"

	"github.com/localtrip/backend/internal/model"
)

// EnsurePassSchema - metered_passes table. remaining_uses is guarded by a CHECK
// and (source, source_ref) makes webhook grants idempotent.
func (db *Postgres) EnsurePassSchema(ctx context.Context) error {
	err := execAll(ctx, db.Pool, []string{
		`
		CREATE TABLE IF NOT EXISTS metered_passes (
			id                     UUID PRIMARY KEY,
			owner_external_user_id TEXT NOT NULL,
			plan_code              TEXT NOT NULL DEFAULT '',
			remaining_uses         INTEGER NOT NULL CHECK (remaining_uses >= 0),
			granted_uses           INTEGER NOT NULL CHECK (granted_uses > 0),
			expires_at             TIMESTAMPTZ,
			source                 TEXT NOT NULL,
			source_ref             TEXT,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS metered_passes_owner_idx ON metered_passes(owner_external_user_id)`,
		`
		CREATE UNIQUE INDEX IF NOT EXISTS metered_passes_source_ref_uidx
		ON metered_passes(source, source_ref)
		WHERE source_ref IS NOT NULL
		`,
	})
	if err != nil {
		return fmt.Errorf("failed to create metered_passes table: %w", err)
	}
	return nil
}

const passColumns = `id, owner_external_user_id, plan_code, remaining_uses, granted_uses, expires_at, source, COALESCE(source_ref, ''), created_at, updated_at`

// InsertMeteredPass - returns (stored pass, created). A replayed source_ref returns the
// existing row with created=false.
func (db *Postgres) InsertMeteredPass(ctx context.Context, pass model.MeteredPass) (*model.MeteredPass, bool, error) {
	var sourceRef *string
	if pass.SourceRef != "" {
		sourceRef = &pass.SourceRef
	}

	query := `
		INSERT INTO metered_passes (id, owner_external_user_id, plan_code, remaining_uses, granted_uses, expires_at, source, source_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (source, source_ref) WHERE source_ref IS NOT NULL DO NOTHING
		RETURNING ` + passColumns

	stored, err := scanPass(db.Pool.QueryRow(ctx, query,
		pass.ID,
		pass.OwnerExternalUserID,
		pass.PlanCode,
		pass.RemainingUses,
		pass.ExpiresAt,
		pass.Source,
		sourceRef,
		pass.CreatedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !IsNoRows(err) || sourceRef == nil {
		return nil, false, err
	}

	existing, err := scanPass(db.Pool.QueryRow(ctx,
		`SELECT `+passColumns+` FROM metered_passes WHERE source = $1 AND source_ref = $2`,
		pass.Source, *sourceRef,
	))
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ListConsumablePasses - passes with uses left and not expired, in consumption order
func (db *Postgres) ListConsumablePasses(ctx context.Context, owner string, now time.Time) ([]model.MeteredPass, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+passColumns+`
		FROM metered_passes
		WHERE owner_external_user_id = $1
		  AND remaining_uses > 0
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY expires_at ASC NULLS LAST, created_at ASC, id ASC
	`, owner, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query metered passes: %w", err)
	}
	defer rows.Close()

	var passes []model.MeteredPass
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metered pass: %w", err)
		}
		passes = append(passes, *pass)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passes, nil
}

// DecrementPassUses - guarded decrement. ok=false when the pass was drained or expired
// between selection and this update.
func (db *Postgres) DecrementPassUses(ctx context.Context, passID string, now time.Time) (int, bool, error) {
	var remaining int
	err := db.Pool.QueryRow(ctx, `
		UPDATE metered_passes
		SET remaining_uses = remaining_uses - 1,
			updated_at = NOW()
		WHERE id = $1
		  AND remaining_uses > 0
		  AND (expires_at IS NULL OR expires_at > $2)
		RETURNING remaining_uses
	`, passID, now).Scan(&remaining)
	if err != nil {
		if IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return remaining, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPass(row rowScanner) (*model.MeteredPass, error) {
	var pass model.MeteredPass
	err := row.Scan(
		&pass.ID,
		&pass.OwnerExternalUserID,
		&pass.PlanCode,
		&pass.RemainingUses,
		&pass.GrantedUses,
		&pass.ExpiresAt,
		&pass.Source,
		&pass.SourceRef,
		&pass.CreatedAt,
		&pass.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pass, nil
}
