package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"goxviet/internal/config"
	"goxviet/internal/engine"
	"goxviet/internal/expansion"
	"goxviet/internal/interceptor"
	"goxviet/internal/logging"
	"goxviet/internal/platform"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "intercept the keyboard until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "disabled", Usage: "start with Vietnamese input off"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	loader := config.NewLoader(configPath(cmd))
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if cmd.Bool("disabled") {
		cfg.Input.StartEnabled = false
	}

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(lc)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	svc := platform.Native()
	if !svc.Permission.Trusted() {
		svc.Permission.Prompt()
		return cli.Exit("goxviet: accessibility permission is required; grant it in System Settings and run again", 2)
	}
	if !engine.NativeAvailable() {
		logger.Warn("core engine not linked in; keys pass through unchanged")
	}

	crash := logging.NewCrashHandler(&logging.CrashHandlerConfig{
		CrashDir:  logging.DefaultCrashDir(),
		Version:   version,
		Component: "goxviet",
		Logger:    logger.Logger,
	})

	pc, err := cfg.Pipeline(logger)
	if err != nil {
		return err
	}
	pc.Interceptor.Crash = crash
	p := interceptor.Build(svc, engine.Native(), pc)

	store, err := expansion.Open(cfg.Expansion.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if cfg.Expansion.Seed {
		if n, err := store.Seed(); err != nil {
			logger.Warn("seed dictionary failed", "error", err)
		} else if n > 0 {
			logger.Info("dictionary seeded", "count", n)
		}
	}

	p.OnMethodChange(func(m engine.Method) {
		syncDictionary(p, store, logger, m)
	})
	p.OnToggle(func(enabled bool) {
		logger.Info("vietnamese input", "enabled", enabled)
	})

	if err := p.Start(); err != nil {
		if errors.Is(err, platform.ErrPermissionDenied) {
			return cli.Exit("goxviet: accessibility permission is required", 2)
		}
		return err
	}
	defer p.Stop()
	syncDictionary(p, store, logger, p.Client.Settings().Method)

	loader.OnChange(func(_, next *config.Config) {
		crash.Recover(func() { applyReload(p, store, next, logger) })
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("config hot reload unavailable", "error", err)
	}
	defer loader.Close()

	go func() {
		defer crash.RecoverGoroutine()
		for err := range loader.Errors() {
			logger.Warn("config reload rejected", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Info("goxviet running", "version", version, "config", loader.Path())
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func syncDictionary(p *interceptor.Pipeline, dict expansion.Loader, logger *logging.Logger, m engine.Method) {
	n, err := expansion.Sync(dict, p.Client, m)
	if err != nil {
		logger.Warn("load dictionary failed", "error", err)
		return
	}
	logger.Info("dictionary loaded", "count", n, "method", m.String())
}

// applyReload pushes a reloaded configuration into the running pipeline
// and reloads the dictionary, picking up edits made with `shortcuts`.
// The strategy table and timing options take effect on the next start.
func applyReload(p *interceptor.Pipeline, dict expansion.Loader, cfg *config.Config, logger *logging.Logger) {
	toggle, err := cfg.ToggleShortcut()
	if err == nil {
		err = p.SetShortcut(toggle)
	}
	if err != nil {
		logger.Warn("toggle shortcut not applied", "error", err)
	}

	settings, err := cfg.EngineSettings()
	if err != nil {
		logger.Warn("input settings not applied", "error", err)
		return
	}
	p.ApplySettings(settings)
	p.Controller.Deletes().SetWordDelete(cfg.Injection.WordDelete)
	syncDictionary(p, dict, logger, p.Client.Settings().Method)
}
