package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"github.com/five82/tabshelf/internal/blob"
	"github.com/five82/tabshelf/internal/bulk"
	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/config"
	"github.com/five82/tabshelf/internal/devtools"
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/logging"
	"github.com/five82/tabshelf/internal/prefs"
	"github.com/five82/tabshelf/internal/reconcile"
	"github.com/five82/tabshelf/internal/state"
	"github.com/five82/tabshelf/internal/ui"
)

// Options configure the tabshelf application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tabshelf/prefs.toml
	PollEvery  int    // seconds; zero uses the configured cadence
	// Demo runs against an in-memory browser and in-memory storage.
	Demo bool
}

// Run boots the tabshelf TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.Monitor.PollSeconds = opts.PollEvery
	}
	if opts.Demo {
		cfg.Storage.Backend = blob.BackendMemory
	}

	logPath := cfg.Log.Path
	logger, logCloser, err := logging.OpenFile(logPath, cfg.Log.Level)
	if err != nil {
		// The terminal belongs to the UI; run without a log file.
		logger, logCloser, logPath = logging.Discard(), io.NopCloser(nil), ""
	}
	defer logCloser.Close()
	logger = logger.With("session", uuid.NewString())
	ctx = pslog.ContextWithLogger(ctx, logger)

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed", "err", err)
	}

	store, storeCloser, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storeCloser.Close()

	provider, source, hostCloser, err := openHost(ctx, cfg, opts.Demo, logger)
	if err != nil {
		return err
	}
	defer hostCloser.Close()

	filter, err := host.NewURLFilter(cfg.Browser.Ignore)
	if err != nil {
		return fmt.Errorf("browser ignore patterns: %w", err)
	}
	provider = host.NewFiltered(provider, filter)

	live := &state.Store{}
	monitor := NewMonitor(live, provider, MonitorOptions{
		Interval:        seconds(cfg.Monitor.PollSeconds),
		StartDelay:      seconds(cfg.Monitor.StartDelaySeconds),
		TransientReload: seconds(cfg.Monitor.TransientReloadSeconds),
	}, logger)

	// Populate the snapshot before the first frame.
	_ = monitor.refresh(ctx)
	monitor.Start(ctx)

	tracker := drag.NewTracker(logger)
	logger.Info("tabshelf started", "source", source, "storage", cfg.Storage.Backend, "collections", collection.CountCollections(store.Groups()))

	err = ui.Run(ui.Options{
		Context:    ctx,
		Store:      store,
		Host:       provider,
		Live:       live,
		Tracker:    tracker,
		Reconciler: reconcile.New(store, provider, logger),
		Bulk:       bulk.New(store, provider, logger),
		Refresh:    monitor.Refresh,
		Logger:     logger,
		LogPath:    logPath,
		PollTick:   ui.DefaultUIInterval,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
		Source:     source,
	})
	if err != nil {
		logger.Error("ui exited", "err", err)
		return err
	}
	logger.Info("tabshelf stopped")
	return nil
}

// OpenStore opens the configured blob backend and loads the collection
// store from it. The closer releases the backend.
func OpenStore(ctx context.Context, cfg config.Config, logger pslog.Logger) (*collection.Store, io.Closer, error) {
	backend, err := blob.Open(blob.Options{
		Backend:    cfg.Storage.Backend,
		Path:       cfg.Storage.Path,
		SQLitePath: cfg.Storage.SQLitePath,
		PrimaryKey: cfg.Storage.Key,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	store := collection.NewStore(backend, cfg.Storage.Key, logger)
	if err := store.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, nil, fmt.Errorf("load collections: %w", err)
	}
	return store, backend, nil
}

// openHost connects to the browser, or seeds an in-memory one for demo
// mode. source names the backend for the header.
func openHost(ctx context.Context, cfg config.Config, demo bool, logger pslog.Logger) (host.Provider, string, io.Closer, error) {
	if demo {
		mem := host.NewMemory()
		host.SeedDemo(mem)
		return mem, "demo", io.NopCloser(nil), nil
	}

	client, err := devtools.NewClient(cfg.Browser.DevToolsURL)
	if err != nil {
		return nil, "", nil, fmt.Errorf("init devtools client: %w", err)
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	chrome, err := host.NewChrome(connectCtx, client, logger)
	if err != nil {
		return nil, "", nil, fmt.Errorf("connect to browser at %s (start it with --remote-debugging-port, or use --demo): %w",
			client.BaseURL(), err)
	}
	return chrome, client.BaseURL(), chrome, nil
}

const connectTimeout = 5 * time.Second

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
