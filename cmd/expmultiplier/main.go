package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/expmultiplier/internal/config"
	"github.com/udisondev/expmultiplier/internal/console"
	"github.com/udisondev/expmultiplier/internal/db"
	"github.com/udisondev/expmultiplier/internal/experience"
	"github.com/udisondev/expmultiplier/internal/message"
	"github.com/udisondev/expmultiplier/internal/multiplier"
	"github.com/udisondev/expmultiplier/internal/plugin"
	"github.com/udisondev/expmultiplier/internal/world"
)

// ledgerHistory bounds the in-memory experience audit trail.
const ledgerHistory = 1024

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel, _ := config.ParseLogLevel(cfg.LogLevel)
	setLogger(os.Stdout, logLevel)

	slog.Info("expmultiplier starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel)

	messages, err := message.Load(cfg.MessagesPath)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	var repo plugin.Repository
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		version, err := db.Migrate(ctx, database.Pool())
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database schema ready", "version", version)

		multRepo := db.NewMultiplierRepository(database.Pool())
		n, err := multRepo.DeleteExpiredPlayers(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("pruning expired multipliers: %w", err)
		}
		slog.Info("expired player multipliers pruned", "count", n)
		repo = multRepo
	}

	players := world.NewDirectory()
	services := world.NewServices()
	ledger := experience.NewLedger(ledgerHistory)
	store := multiplier.NewStore()

	p := plugin.New(plugin.Deps{
		Config:     cfg,
		Store:      store,
		Players:    players,
		Services:   services,
		Experience: ledger,
		Messages:   messages,
		Repository: repo,
	})

	shell := console.NewShell(p, players, services, ledger, console.Options{
		GrantRoot:    cfg.GrantCommand,
		OpPermission: cfg.Permission,
	}, os.Stdout)
	term, err := console.New(shell)
	if err != nil {
		return fmt.Errorf("creating console: %w", err)
	}
	setLogger(term.Stdout(), logLevel)

	// The in-process ledger is the experience service.
	services.Enable(cfg.ExperienceService)

	if err := p.Enable(ctx); err != nil {
		return fmt.Errorf("enabling plugin: %w", err)
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// quit ends the process the same way a signal does
		defer stop()
		if err := term.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("console: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		if err := p.Disable(); err != nil {
			return fmt.Errorf("disabling plugin: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("expmultiplier stopped")
	return nil
}

func setLogger(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}
