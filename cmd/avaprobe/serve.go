package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/health"
	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// serveFlags holds the serve command flags.
type serveFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// runServe loads configuration, builds the application and serves until
// SIGINT or SIGTERM.
func runServe(ctx context.Context, flags serveFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting avaprobe",
		observability.String("version", version),
		observability.String("config", flags.configPath),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", observability.Error(err))
		return err
	}

	watcher := startConfigWatcher(ctx, app, flags, logger)
	return run(ctx, app, watcher, logger)
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig(flags serveFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	applyOverrides(cfg, flags)

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyOverrides applies the command-line flags and the build version on
// top of a loaded configuration. Startup and every reload go through it.
func applyOverrides(cfg *config.Config, flags serveFlags) {
	if flags.logLevel != "" {
		cfg.Observability.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Observability.Logging.Format = flags.logFormat
	}
	if version != "dev" && os.Getenv(config.EnvAppVersion) == "" && cfg.App.Version == config.DefaultVersion {
		cfg.App.Version = version
	}
}

// initLogger initializes the logger.
func initLogger(cfg *config.Config) (observability.Logger, error) {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: cfg.Observability.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(
		observability.String("app", cfg.App.Name),
		observability.String("environment", cfg.App.Environment),
	), nil
}

// run serves until ctx is cancelled or the server fails, then shuts down.
func run(ctx context.Context, app *application, watcher *config.Watcher, logger observability.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.server.Start(ctx)
	}()

	var err error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err = <-serveErr:
		if err != nil {
			logger.Error("server failed", observability.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	shutdown(shutdownCtx, app, watcher, logger)

	return err
}

// shutdown stops components in reverse dependency order.
func shutdown(ctx context.Context, app *application, watcher *config.Watcher, logger observability.Logger) {
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop config watcher", observability.Error(err))
		}
	}

	if err := app.server.Stop(ctx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	app.close(logger)
	app.shutdownTracer(ctx, logger)

	logger.Info("avaprobe stopped")
}

// startConfigWatcher watches the configuration file and applies reloadable
// health settings. Returns nil when there is no file to watch.
func startConfigWatcher(
	ctx context.Context,
	app *application,
	flags serveFlags,
	logger observability.Logger,
) *config.Watcher {
	if flags.configPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(flags.configPath,
		reloadCallback(app, flags, logger),
		config.WithLogger(logger),
		config.WithErrorCallback(func(err error) {
			logger.Warn("config reload failed", observability.Error(err))
		}),
	)
	if err != nil {
		logger.Warn("config watcher disabled", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher disabled", observability.Error(err))
		return nil
	}
	return watcher
}

// reloadCallback re-applies the startup overrides to each reloaded
// configuration before it reaches the running application.
func reloadCallback(app *application, flags serveFlags, logger observability.Logger) config.ConfigCallback {
	return func(newCfg *config.Config) {
		applyOverrides(newCfg, flags)
		applyReload(app, newCfg, logger)
	}
}

// applyReload swaps the health settings and the log level. Database,
// cache and server settings need a restart. The watcher only publishes
// validated configs.
func applyReload(app *application, newCfg *config.Config, logger observability.Logger) {
	app.aggregator.UpdateSettings(health.SettingsFromConfig(newCfg))

	if lc, ok := logger.(observability.LevelController); ok {
		if err := lc.SetLevel(newCfg.Observability.Logging.Level); err != nil {
			logger.Warn("log level not changed", observability.Error(err))
		}
	}
}
