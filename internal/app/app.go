package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/tristan-derez/league-skin-picker/internal/catalogsync"
	"github.com/tristan-derez/league-skin-picker/internal/config"
	"github.com/tristan-derez/league-skin-picker/internal/ddragon"
	"github.com/tristan-derez/league-skin-picker/internal/dispatch"
	"github.com/tristan-derez/league-skin-picker/internal/lcu"
	"github.com/tristan-derez/league-skin-picker/internal/modtools"
	"github.com/tristan-derez/league-skin-picker/internal/notify"
	"github.com/tristan-derez/league-skin-picker/internal/selection"
	"github.com/tristan-derez/league-skin-picker/internal/skins"
	"github.com/tristan-derez/league-skin-picker/internal/storage"
	"github.com/tristan-derez/league-skin-picker/internal/watcher"
	"github.com/tristan-derez/league-skin-picker/internal/web"
)

const httpShutdownTimeout = 10 * time.Second

// App holds every long-lived component of the picker.
type App struct {
	cfg      *config.Config
	storage  *storage.Storage
	index    *skins.Holder
	metadata *skins.MetadataHolder
	store    *selection.Store
	registry *modtools.Registry

	game    *lcu.Client
	watcher *watcher.Watcher
	server  *web.Server
	session *discordgo.Session
	discord *notify.Discord

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New loads the local catalogs. Nothing talks to the game client until Run.
func New(cfg *config.Config) (*App, error) {
	storage, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:      cfg,
		storage:  storage,
		index:    skins.NewHolder(skins.Build(cfg.SkinsDir)),
		metadata: skins.NewMetadataHolder(skins.Metadata{}),
		store:    selection.NewStore(),
		registry: modtools.NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}
	if err := a.loadMetadata(); err != nil {
		slog.Warn("skin metadata unavailable, pictures disabled", "error", err)
	}

	return a, nil
}

func (a *App) loadMetadata() error {
	catalog, err := a.storage.LoadSkinCatalog()
	if err != nil {
		return err
	}
	a.metadata.Swap(skins.NewMetadata(catalog))
	return nil
}

// Reload rebuilds the skin index and metadata from disk and swaps them in.
func (a *App) Reload(_ context.Context) (int, error) {
	idx := a.index.Reload(a.cfg.SkinsDir)
	if err := a.loadMetadata(); err != nil {
		return idx.Len(), fmt.Errorf("reload skin metadata: %w", err)
	}
	return idx.Len(), nil
}

// championDirectory returns the on-disk directory indexed for a champion name.
func (a *App) championDirectory(name string) (string, bool) {
	entry, ok := a.index.Load().Find(name)
	return entry.Directory, ok
}

func (a *App) PhaseName() string {
	if a.watcher == nil {
		return watcher.PhaseIdle.String()
	}
	return a.watcher.Phase().String()
}

func (a *App) Champions() int {
	return a.index.Load().Len()
}

// Run connects to the game client, starts serving and watching, and blocks until
// SIGINT or SIGTERM.
func (a *App) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	go func() {
		select {
		case <-stop:
			slog.Info("received shutdown signal")
			a.cancel()
		case <-a.ctx.Done():
		}
	}()

	if a.cfg.SyncOnStart {
		if _, err := Sync(a.ctx, a.cfg, a.storage, false); err != nil {
			slog.Error("skin catalog sync failed, continuing with local data", "error", err)
		} else if err := a.loadMetadata(); err != nil {
			slog.Warn("failed to reload skin metadata after sync", "error", err)
		}
	}

	if err := a.connectGame(); err != nil {
		return errors.Join(err, a.Shutdown())
	}

	gamePath, err := modtools.ResolveGamePath(a.ctx, a.cfg.GamePath)
	if err != nil {
		return errors.Join(err, a.Shutdown())
	}
	slog.Info("game directory found", "path", gamePath)

	tools := modtools.New(modtools.Config{
		Executable:   a.cfg.ModToolsPath,
		InstalledDir: a.cfg.InstalledDir,
		ProfilesDir:  a.cfg.ProfilesDir,
		GamePath:     gamePath,
		Timeout:      a.cfg.ToolTimeout,
	}, a.registry)
	dispatcher := dispatch.New(tools, a.cfg.SkinsDir, dispatch.WithDirectories(a.championDirectory))

	sinks := selection.MultiSink{a.store}
	if a.cfg.DiscordEnabled() {
		if err := a.openDiscord(); err != nil {
			slog.Error("discord announcements disabled", "error", err)
		} else {
			sinks = append(sinks, a.discord)
		}
	}

	a.server = web.New(a.cfg.ListenAddr, web.Deps{
		Selection:  a.store,
		Metadata:   a.metadata,
		Dispatcher: dispatcher,
		Catalog:    a,
		Images:     a.storage,
		Status:     a,
	})
	serverErr, err := a.server.ListenAndServe()
	if err != nil {
		return errors.Join(err, a.Shutdown())
	}

	a.watcher = watcher.New(a.game, a.index, sinks, web.NewBrowser(a.cfg.ListenAddr),
		watcher.WithPollInterval(a.cfg.PollInterval),
		watcher.WithStopTimeout(a.cfg.StopTimeout),
	)
	a.watcher.Start(a.ctx)

	select {
	case <-a.ctx.Done():
	case err := <-serverErr:
		if err != nil {
			slog.Error("web server stopped", "error", err)
		}
	}

	return a.Shutdown()
}

func (a *App) connectGame() error {
	creds := lcu.Credentials{Port: a.cfg.LCUPort, Token: a.cfg.LCUToken}
	if !creds.Valid() {
		discovered, err := lcu.Discover(a.ctx)
		if err != nil {
			return fmt.Errorf("start the League client first: %w", err)
		}
		creds = discovered
	}

	a.game = lcu.NewClient(creds)
	summonerID, err := a.game.WaitReady(a.ctx)
	if err != nil {
		return err
	}
	slog.Info("connected to league client", "port", creds.Port, "summoner", summonerID)

	return a.game.EnsureChampionCatalog(a.ctx, a.storage, summonerID)
}

func (a *App) openDiscord() error {
	session, err := notify.OpenSession(a.cfg.DiscordToken)
	if err != nil {
		return err
	}
	a.session = session
	a.discord = notify.NewDiscord(session, a.cfg.DiscordChannelID)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.discord.Run(a.ctx)
	}()
	return nil
}

// Shutdown stops the watcher, the web server, every overlay process and the
// Discord session, in that order.
func (a *App) Shutdown() error {
	slog.Info("shutting down")

	if a.watcher != nil {
		a.watcher.Stop()
	}

	var errs []error
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down web server: %w", err))
		}
		cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), modtools.DefaultKillGrace+time.Second)
	if err := a.registry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	cancel()

	a.cancel()
	a.wg.Wait()

	if a.session != nil {
		if err := a.session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing Discord session: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Sync brings the skin catalog and splash images up to date with Data Dragon.
func Sync(ctx context.Context, cfg *config.Config, store *storage.Storage, force bool) (catalogsync.Report, error) {
	syncer := catalogsync.New(ddragon.NewClient(), store,
		catalogsync.WithWorkers(cfg.SyncWorkers),
		catalogsync.WithProgress(true),
	)
	return syncer.Run(ctx, force)
}
