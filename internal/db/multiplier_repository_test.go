package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/expmultiplier/internal/multiplier"
	"github.com/udisondev/expmultiplier/internal/testutil"
)

func TestMigrate_UpToDateSchema(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	version, err := Migrate(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// The pool stays usable after the migration handle is closed.
	require.NoError(t, pool.Ping(ctx))
}

func TestMultiplierRepository(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := NewMultiplierRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("empty database", func(t *testing.T) {
		snap, err := repo.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.0, snap.Global.Factor)
		assert.False(t, snap.Global.HasExpiry())
		assert.Empty(t, snap.Players)
	})

	alice, bob := uuid.New(), uuid.New()

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, repo.SaveGlobal(ctx, multiplier.Expiring(2, now, time.Hour)))
		require.NoError(t, repo.SavePlayer(ctx, alice, multiplier.Permanent(3)))
		require.NoError(t, repo.SavePlayer(ctx, bob, multiplier.Expiring(1.5, now, time.Minute)))

		snap, err := repo.LoadSnapshot(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2.0, snap.Global.Factor)
		assert.True(t, snap.Global.ExpiresAt.Equal(now.Add(time.Hour)))
		require.Len(t, snap.Players, 2)
		assert.Equal(t, 3.0, snap.Players[alice].Factor)
		assert.False(t, snap.Players[alice].HasExpiry())
		assert.True(t, snap.Players[bob].ExpiresAt.Equal(now.Add(time.Minute)))
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, repo.SaveGlobal(ctx, multiplier.Permanent(1)))
		require.NoError(t, repo.SavePlayer(ctx, alice, multiplier.Expiring(4, now, time.Second)))

		snap, err := repo.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.0, snap.Global.Factor)
		assert.False(t, snap.Global.HasExpiry())
		assert.Equal(t, 4.0, snap.Players[alice].Factor)
		assert.True(t, snap.Players[alice].HasExpiry())
	})

	t.Run("delete expired", func(t *testing.T) {
		n, err := repo.DeleteExpiredPlayers(ctx, now.Add(30*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "only alice's override lapsed")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeletePlayer(ctx, bob))
		require.NoError(t, repo.DeletePlayer(ctx, bob), "deleting a missing row is not an error")

		snap, err := repo.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Players)
	})
}

func TestStoreRoundTripThroughRepository(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := NewMultiplierRepository(pool)
	ctx := context.Background()

	clock := testutil.NewFakeClock(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	src := multiplier.NewStore(multiplier.WithClock(clock))
	alice := uuid.New()
	require.NoError(t, src.SetGlobal(2, 10*time.Minute))
	require.NoError(t, src.SetPlayer(alice, 3, time.Minute))

	snap := src.Snapshot()
	require.NoError(t, repo.SaveGlobal(ctx, snap.Global))
	for id, m := range snap.Players {
		require.NoError(t, repo.SavePlayer(ctx, id, m))
	}

	loaded, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)

	dst := multiplier.NewStore(multiplier.WithClock(clock))
	dst.Restore(loaded)
	assert.Equal(t, 2.0, dst.Global().Factor)
	assert.Equal(t, 3.0, dst.EffectiveMultiplier(alice))

	clock.Advance(time.Minute + time.Second)
	assert.Equal(t, 2.0, dst.EffectiveMultiplier(alice))
}
