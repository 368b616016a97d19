package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// MultiplierRepository stores the global multiplier and per-player overrides.
// A NULL expires_at means the multiplier never expires.
type MultiplierRepository struct {
	db *pgxpool.Pool
}

// NewMultiplierRepository creates a new MultiplierRepository.
func NewMultiplierRepository(db *pgxpool.Pool) *MultiplierRepository {
	return &MultiplierRepository{db: db}
}

// LoadSnapshot loads the full multiplier state. An empty database yields a
// permanent global multiplier of 1.0 and no overrides.
func (r *MultiplierRepository) LoadSnapshot(ctx context.Context) (multiplier.Snapshot, error) {
	snap := multiplier.Snapshot{
		Global:  multiplier.Permanent(multiplier.Unity),
		Players: make(map[uuid.UUID]multiplier.Multiplier, 16),
	}

	var (
		factor  float64
		expires *time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT factor, expires_at FROM global_multiplier WHERE id = 1`,
	).Scan(&factor, &expires)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return multiplier.Snapshot{}, fmt.Errorf("querying global multiplier: %w", err)
	default:
		snap.Global = fromRow(factor, expires)
	}

	rows, err := r.db.Query(ctx, `SELECT player_id, factor, expires_at FROM player_multipliers`)
	if err != nil {
		return multiplier.Snapshot{}, fmt.Errorf("querying player multipliers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id, &factor, &expires); err != nil {
			return multiplier.Snapshot{}, fmt.Errorf("scanning player multiplier row: %w", err)
		}
		snap.Players[uuid.UUID(id.Bytes)] = fromRow(factor, expires)
	}
	if err := rows.Err(); err != nil {
		return multiplier.Snapshot{}, fmt.Errorf("iterating player multiplier rows: %w", err)
	}

	return snap, nil
}

// SaveGlobal upserts the global multiplier.
func (r *MultiplierRepository) SaveGlobal(ctx context.Context, m multiplier.Multiplier) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO global_multiplier (id, factor, expires_at, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET factor = EXCLUDED.factor,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at`,
		m.Factor, expiresParam(m))
	if err != nil {
		return fmt.Errorf("saving global multiplier: %w", err)
	}
	return nil
}

// SavePlayer upserts a player override.
func (r *MultiplierRepository) SavePlayer(ctx context.Context, id uuid.UUID, m multiplier.Multiplier) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO player_multipliers (player_id, factor, expires_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (player_id) DO UPDATE
		SET factor = EXCLUDED.factor,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at`,
		uuidParam(id), m.Factor, expiresParam(m))
	if err != nil {
		return fmt.Errorf("saving multiplier for player %s: %w", id, err)
	}
	return nil
}

// DeletePlayer removes a player override. Deleting a missing row is not an error.
func (r *MultiplierRepository) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM player_multipliers WHERE player_id = $1`, uuidParam(id)); err != nil {
		return fmt.Errorf("deleting multiplier for player %s: %w", id, err)
	}
	return nil
}

// DeleteExpiredPlayers removes overrides that lapsed before now and returns
// how many rows were deleted.
func (r *MultiplierRepository) DeleteExpiredPlayers(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM player_multipliers WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired player multipliers: %w", err)
	}
	return tag.RowsAffected(), nil
}

func uuidParam(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: [16]byte(id), Valid: true}
}

func expiresParam(m multiplier.Multiplier) *time.Time {
	if !m.HasExpiry() {
		return nil
	}
	t := m.ExpiresAt
	return &t
}

func fromRow(factor float64, expires *time.Time) multiplier.Multiplier {
	m := multiplier.Permanent(factor)
	if expires != nil {
		m.ExpiresAt = expires.UTC()
	}
	return m
}
