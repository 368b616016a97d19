package multiplier_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/expmultiplier/internal/multiplier"
)

func TestExpiryScheduler_TickAnnouncesOnce(t *testing.T) {
	s, clock, _ := newStore(t)
	announced := 0
	sched := multiplier.NewExpiryScheduler(s, time.Second, func() { announced++ })

	require.NoError(t, s.SetGlobal(2, 10*time.Second))

	for range 20 {
		clock.Advance(time.Second)
		sched.Tick(clock.Now())
	}

	assert.Equal(t, 1, announced)
	assert.Equal(t, 1.0, s.Global().Factor)
}

// Global 2.0 for 10s applies to a player without an override until the
// poll at t=11 lifts it.
func TestExpiryScheduler_Scenario(t *testing.T) {
	s, clock, _ := newStore(t)
	sched := multiplier.NewExpiryScheduler(s, time.Second, nil)
	bob := uuid.New()

	require.NoError(t, s.SetGlobal(2.0, 10*time.Second))

	clock.Advance(5 * time.Second)
	assert.False(t, sched.Tick(clock.Now()))
	assert.Equal(t, 2.0, s.EffectiveMultiplier(bob))

	clock.Advance(6 * time.Second)
	assert.True(t, sched.Tick(clock.Now()))
	assert.Equal(t, 1.0, s.EffectiveMultiplier(bob))
}

func TestExpiryScheduler_StartStopsOnCancel(t *testing.T) {
	s := multiplier.NewStore()
	var announced atomic.Int32
	sched := multiplier.NewExpiryScheduler(s, 10*time.Millisecond, func() { announced.Add(1) })

	require.NoError(t, s.SetGlobal(2, time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	assert.Eventually(t, func() bool { return announced.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), announced.Load())
}
