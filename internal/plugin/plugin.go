// Package plugin wires the multiplier store, expiry scheduler, experience
// interceptor and operator commands into one add-on with a host-facing
// lifecycle (Enable/Disable) and inbound event operations.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/expmultiplier/internal/admin"
	"github.com/udisondev/expmultiplier/internal/admin/commands"
	"github.com/udisondev/expmultiplier/internal/config"
	"github.com/udisondev/expmultiplier/internal/experience"
	"github.com/udisondev/expmultiplier/internal/message"
	"github.com/udisondev/expmultiplier/internal/model"
	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// ErrServiceUnavailable is reported when the experience service is missing
// at the deferred startup check.
var ErrServiceUnavailable = errors.New("experience service not found or disabled")

// ErrAlreadyEnabled is returned by a second Enable call.
var ErrAlreadyEnabled = errors.New("plugin already enabled")

// Plugin states.
const (
	stateNew int32 = iota
	stateEnabled
	stateDisabled
)

// Players is the host's view of online players.
type Players interface {
	FindByName(name string) *model.Player
	OnlineNames() []string
	SendTo(id uuid.UUID, msg string) bool
	Broadcast(msg string) int
}

// Services reports which host services are available.
type Services interface {
	Enabled(name string) bool
	OnEnable(fn func(name string))
}

// Deps bundles the plugin's collaborators. Repository is optional.
type Deps struct {
	Config     config.Plugin
	Store      *multiplier.Store
	Players    Players
	Services   Services
	Experience experience.Service
	Messages   *message.Catalog
	Repository Repository
}

// Plugin is the experience multiplier add-on.
type Plugin struct {
	cfg      config.Plugin
	store    *multiplier.Store
	players  Players
	services Services
	messages *message.Catalog
	repo     Repository

	persister   *persister
	handler     *admin.Handler
	interceptor *experience.Interceptor
	rewriter    *experience.GrantRewriter
	scheduler   *multiplier.ExpiryScheduler

	state         atomic.Int32
	serviceLoaded atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New creates the plugin. Commands are registered and the store listener
// installed here; nothing runs until Enable.
func New(deps Deps) *Plugin {
	p := &Plugin{
		cfg:      deps.Config,
		store:    deps.Store,
		players:  deps.Players,
		services: deps.Services,
		messages: deps.Messages,
		repo:     deps.Repository,
		handler:  admin.NewHandler(deps.Messages),
	}

	p.interceptor = experience.NewInterceptor(deps.Store, deps.Experience, deps.Config.SkipUnityMultiplier)
	if deps.Config.DoubleExpOnCommand {
		p.rewriter = experience.NewGrantRewriter(deps.Config.GrantCommand, deps.Store, deps.Players)
	}
	if deps.Repository != nil {
		p.persister = newPersister(deps.Repository, deps.Store)
	}
	p.scheduler = multiplier.NewExpiryScheduler(deps.Store, deps.Config.TickInterval, p.globalExpired)

	commands.RegisterAll(p.handler, commands.Deps{
		Store:      deps.Store,
		Players:    deps.Players,
		Exp:        deps.Experience,
		Messages:   deps.Messages,
		Permission: deps.Config.Permission,
		BonusExp:   deps.Config.BonusExpOnPlayerSet,
	})

	deps.Store.SetListener(&storeEvents{p: p})
	return p
}

// Enable restores persisted state, starts the expiry scheduler and arms the
// deferred experience service check. Background work stops when ctx is
// cancelled or Disable is called.
func (p *Plugin) Enable(ctx context.Context) error {
	if !p.state.CompareAndSwap(stateNew, stateEnabled) {
		return ErrAlreadyEnabled
	}

	if p.repo != nil {
		snap, err := p.repo.LoadSnapshot(ctx)
		if err != nil {
			p.state.Store(stateDisabled)
			return fmt.Errorf("restoring multiplier state: %w", err)
		}
		p.store.Restore(snap)
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	p.mu.Lock()
	p.cancel = cancel
	p.group = g
	p.mu.Unlock()

	g.Go(func() error {
		return p.scheduler.Start(gctx)
	})
	g.Go(func() error {
		return p.deferredServiceCheck(gctx)
	})
	if p.persister != nil {
		g.Go(func() error {
			return p.persister.Run(gctx)
		})
	}

	p.services.OnEnable(p.OnServiceAvailable)

	slog.Info("experience multiplier enabled",
		"commands", p.handler.CommandCount(),
		"playerOverrides", p.store.PlayerCount(),
		"experienceService", p.cfg.ExperienceService,
		"serviceCheckDelay", p.cfg.ServiceCheckDelay)
	return nil
}

func (p *Plugin) deferredServiceCheck(ctx context.Context) error {
	timer := time.NewTimer(p.cfg.ServiceCheckDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	// A failed check disables the plugin, which is not an error of the run group.
	_ = p.CheckService()
	return nil
}

// CheckService verifies the experience service is available. On failure the
// plugin disables itself and ErrServiceUnavailable is returned.
func (p *Plugin) CheckService() error {
	if p.state.Load() != stateEnabled {
		return nil
	}
	if p.serviceLoaded.Load() {
		return nil
	}

	if !p.services.Enabled(p.cfg.ExperienceService) {
		p.selfDisable(fmt.Errorf("%s: %w", p.cfg.ExperienceService, ErrServiceUnavailable))
		return ErrServiceUnavailable
	}

	if p.serviceLoaded.CompareAndSwap(false, true) {
		slog.Info("experience service found", "service", p.cfg.ExperienceService)
	}
	return nil
}

// OnServiceAvailable re-runs the service check when the experience service
// is enabled after this plugin.
func (p *Plugin) OnServiceAvailable(name string) {
	if !strings.EqualFold(name, p.cfg.ExperienceService) {
		return
	}
	_ = p.CheckService()
}

// selfDisable stops all background work and makes every inbound operation a no-op.
func (p *Plugin) selfDisable(cause error) {
	if !p.state.CompareAndSwap(stateEnabled, stateDisabled) {
		return
	}

	slog.Error("experience service not found or disabled, disabling experience multiplier",
		"service", p.cfg.ExperienceService,
		"error", cause)

	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.store.Stop()
}

// Disable stops the scheduler and pending expiry timers and waits for
// background work to finish. Safe to call after a self-disable.
func (p *Plugin) Disable() error {
	p.state.Store(stateDisabled)

	p.mu.Lock()
	cancel, g := p.cancel, p.group
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.store.Stop()

	if g == nil {
		return nil
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("experience multiplier shutdown: %w", err)
	}

	slog.Info("experience multiplier disabled")
	return nil
}

// Active reports whether the plugin is enabled and has not been disabled.
func (p *Plugin) Active() bool {
	return p.state.Load() == stateEnabled
}

// OnExperienceChange applies the effective multiplier to an experience-change
// event. Returns true if the event was rewritten.
func (p *Plugin) OnExperienceChange(ev *experience.ChangeEvent) bool {
	if !p.Active() {
		return false
	}
	return p.interceptor.OnExperienceChange(ev)
}

// OnCommand dispatches a command line. Returns false if the command is not
// one of ours or the plugin is inactive.
func (p *Plugin) OnCommand(sender admin.Sender, line string) bool {
	if !p.Active() {
		return false
	}
	return p.handler.HandleCommand(sender, line)
}

// OnCommandPreprocess may rewrite an experience grant command line before the
// host runs it.
func (p *Plugin) OnCommandPreprocess(line string) string {
	if !p.Active() || p.rewriter == nil {
		return line
	}
	return p.rewriter.Rewrite(line)
}

// OnTabComplete returns completion candidates for a partially typed command.
func (p *Plugin) OnTabComplete(sender admin.Sender, line string) []string {
	if !p.Active() {
		return nil
	}
	return p.handler.Complete(sender, line)
}

// OnPlayerQuit keeps the player's override. Overrides are keyed by identity,
// so a returning player still has an unexpired one.
func (p *Plugin) OnPlayerQuit(player *model.Player) {
	if player == nil {
		return
	}
	if _, ok := p.store.Player(player.ID()); ok {
		slog.Debug("player with multiplier override left", "player", player.Name())
	}
}

// globalExpired runs on the scheduler goroutine once per global expiry.
func (p *Plugin) globalExpired() {
	n := p.players.Broadcast(p.messages.Format("global_multiplier_ended"))
	slog.Info("global multiplier ended", "notified", n)
}
