package plugin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// persister mirrors store state into the repository from a single goroutine.
// Events only mark what changed; a flush writes the store's current value for
// every marked entry, so a slow write can never overwrite a newer state.
type persister struct {
	repo  Repository
	store *multiplier.Store

	mu      sync.Mutex
	global  bool
	players map[uuid.UUID]struct{}

	wake chan struct{}
}

func newPersister(repo Repository, store *multiplier.Store) *persister {
	return &persister{
		repo:    repo,
		store:   store,
		players: make(map[uuid.UUID]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

func (w *persister) markGlobal() {
	w.mu.Lock()
	w.global = true
	w.mu.Unlock()
	w.signal()
}

func (w *persister) markPlayer(id uuid.UUID) {
	w.mu.Lock()
	w.players[id] = struct{}{}
	w.mu.Unlock()
	w.signal()
}

func (w *persister) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run writes marked state until ctx is cancelled, then flushes what is left.
func (w *persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case <-w.wake:
			w.flush()
		}
	}
}

func (w *persister) flush() {
	w.mu.Lock()
	global := w.global
	ids := w.players
	w.global = false
	w.players = make(map[uuid.UUID]struct{})
	w.mu.Unlock()

	if global {
		g := w.store.Global()
		w.write("save global", func(ctx context.Context) error {
			return w.repo.SaveGlobal(ctx, g)
		})
	}

	for id := range ids {
		if o, ok := w.store.Player(id); ok {
			w.write("save player", func(ctx context.Context) error {
				return w.repo.SavePlayer(ctx, id, o)
			})
			continue
		}
		w.write("delete player", func(ctx context.Context) error {
			return w.repo.DeletePlayer(ctx, id)
		})
	}
}

// write runs op against the repository. Failures are logged; the in-memory
// state stays authoritative.
func (w *persister) write(op string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		slog.Error("persisting multiplier state",
			"op", op,
			"error", err)
	}
}
