package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tristan-derez/league-skin-picker/internal/champion"
	"github.com/tristan-derez/league-skin-picker/internal/skins"
)

const (
	DefaultPollInterval = 300 * time.Millisecond
	DefaultStopTimeout  = 2 * time.Second
)

// GameClient is the part of the League client API the loop polls.
type GameClient interface {
	// CurrentChampionID returns 0 when no champion is selected.
	CurrentChampionID(ctx context.Context) (int, error)
	ChampionAlias(ctx context.Context, id int) (string, bool, error)
}

type CatalogSource interface {
	Load() skins.Index
}

type Sink interface {
	UpdateChampionData(display string, skins []string)
}

// Launcher opens the picker page for the user.
type Launcher interface {
	OpenBrowser() error
}

type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseResolved
	PhaseUnresolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolved:
		return "resolved"
	case PhaseUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

type Option func(*Watcher)

func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithStopTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.stopTimeout = d
		}
	}
}

// Watcher polls the game client for the locked champion and publishes its skins
// once per selection.
type Watcher struct {
	game     GameClient
	catalog  CatalogSource
	sink     Sink
	launcher Launcher

	interval    time.Duration
	stopTimeout time.Duration

	// owned by the loop goroutine
	lastAlias       string
	browserLaunched bool

	phase atomic.Int32

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(game GameClient, catalog CatalogSource, sink Sink, launcher Launcher, opts ...Option) *Watcher {
	w := &Watcher{
		game:        game,
		catalog:     catalog,
		sink:        sink,
		launcher:    launcher,
		interval:    DefaultPollInterval,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Phase returns the loop's current state.
func (w *Watcher) Phase() Phase {
	return Phase(w.phase.Load())
}

// Start launches the loop. Calling it again while running does nothing. A stopped
// watcher can be started again once its previous loop has exited.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		slog.Warn("champion watcher already started")
		return
	}
	if w.done != nil {
		select {
		case <-w.done:
		default:
			slog.Warn("previous champion watcher loop still running, not restarting")
			return
		}
	}
	w.started = true
	w.lastAlias = ""

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx, w.done)

	slog.Info("champion watcher started", "interval", w.interval)
}

// Stop cancels the loop and waits for it to exit, at most the stop timeout.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()

	cancel()

	select {
	case <-done:
		slog.Info("champion watcher stopped")
	case <-time.After(w.stopTimeout):
		slog.Warn("champion watcher did not stop in time", "timeout", w.stopTimeout)
	}
}

func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.safeTick(ctx); err != nil && ctx.Err() == nil {
				slog.Error("champion poll failed", "error", err)
			}
		}
	}
}

func (w *Watcher) safeTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in champion poll: %v", r)
		}
	}()
	return w.tick(ctx)
}

func (w *Watcher) tick(ctx context.Context) error {
	id, err := w.game.CurrentChampionID(ctx)
	if err != nil {
		return fmt.Errorf("current champion: %w", err)
	}

	if id == 0 {
		if w.lastAlias != "" {
			slog.Debug("champion select ended", "champion", w.lastAlias)
		}
		w.lastAlias = ""
		w.setPhase(PhaseIdle)
		return nil
	}

	alias, ok, err := w.game.ChampionAlias(ctx, id)
	if err != nil {
		return fmt.Errorf("alias of champion %d: %w", id, err)
	}
	if !ok || alias == "" || alias == w.lastAlias {
		return nil
	}
	w.lastAlias = alias

	entry, found := w.catalog.Load().Lookup(champion.Normalize(alias))
	if !found {
		slog.Warn("no skins found for champion", "champion", alias, "id", id)
		w.setPhase(PhaseUnresolved)
		return nil
	}

	skinNames := entry.SkinNames()
	slog.Info("champion selected", "champion", alias, "directory", entry.Directory, "skins", len(skinNames))
	w.sink.UpdateChampionData(alias, skinNames)
	w.setPhase(PhaseResolved)

	if !w.browserLaunched {
		w.browserLaunched = true
		if err := w.launcher.OpenBrowser(); err != nil {
			slog.Error("failed to open browser", "error", err)
		}
	}
	return nil
}

func (w *Watcher) setPhase(p Phase) {
	w.phase.Store(int32(p))
}
