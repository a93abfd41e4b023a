package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/tristan-derez/league-skin-picker/internal/app"
	"github.com/tristan-derez/league-skin-picker/internal/config"
	"github.com/tristan-derez/league-skin-picker/internal/storage"
)

func logLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown verbosity level %q", name)
}

func main() {
	flags := pflag.NewFlagSet("skinpicker", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "Settings file (default: config.toml next to the working directory or executable)")
	verbosity := flags.StringP("verbosity", "v", "", "Log level: debug, info, warn or error")
	syncOnly := flags.Bool("sync", false, "Update the skin catalog and splash images, then exit")
	force := flags.Bool("force", false, "With --sync, re-check every champion even when the version is current")
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyFlags(flags); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	if *verbosity != "" {
		cfg.LogLevel = *verbosity
	}

	level, err := logLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))

	if *syncOnly {
		if err := runSync(cfg, *force); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create skin picker: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("Skin picker stopped: %v", err)
	}
}

func runSync(cfg *config.Config, force bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg)
	if err != nil {
		return err
	}

	report, err := app.Sync(ctx, cfg, store, force)
	if err != nil {
		return err
	}
	slog.Info("skin catalog synced",
		"version", report.Version,
		"up_to_date", report.UpToDate,
		"updated", report.Updated,
		"failed", report.Failed,
		"took", report.Duration,
	)
	return nil
}
