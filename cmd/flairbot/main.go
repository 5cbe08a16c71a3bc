package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshsymonds/flairbot/internal/config"
	"github.com/joshsymonds/flairbot/internal/flair"
	"github.com/joshsymonds/flairbot/internal/journal"
	"github.com/joshsymonds/flairbot/internal/rate"
	"github.com/joshsymonds/flairbot/internal/registry"
	"github.com/joshsymonds/flairbot/internal/runtime"
)

type botConfig struct {
	configPath string
	flairsPath string
	logPath    string
	envPath    string
	pageSize   int
	rpm        int
	dryRun     bool
	verbose    bool
}

func main() {
	cfg := parseFlags()
	logger := runtime.DefaultLogger()
	if cfg.verbose {
		logger = runtime.NewLogger(slog.LevelDebug)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("flairbot failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() botConfig {
	configPath := flag.String("config", "conf.ini", "path to the INI settings file")
	flairsPath := flag.String("flairs", "flair_list.csv", "CSV of permitted classes and default texts")
	logPath := flag.String("log", "log.txt", "append-only request log (when [log] logging is enabled)")
	envPath := flag.String("env", ".env", "optional dotenv file with FLAIRBOT_* secret overrides")
	pageSize := flag.Int("page-size", 100, "unread listing page size (<=100)")
	rpm := flag.Int("rpm", 60, "max Reddit requests per minute (0 disables limiting)")
	dryRun := flag.Bool("dry-run", false, "log decisions only; skip flair, replies and mark-read")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	return botConfig{
		configPath: *configPath,
		flairsPath: *flairsPath,
		logPath:    *logPath,
		envPath:    *envPath,
		pageSize:   *pageSize,
		rpm:        *rpm,
		dryRun:     *dryRun,
		verbose:    *verbose,
	}
}

func run(cfg botConfig, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := config.LoadEnvFile(cfg.envPath); err != nil {
		return err
	}
	settings, err := config.Load(cfg.configPath, os.LookupEnv)
	if err != nil {
		return err
	}

	client, err := runtime.NewRedditClient(ctx, settings, runtime.DefaultEndpoints())
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	reg, err := registry.Load(cfg.flairsPath)
	if err != nil {
		return err
	}
	logger.Info("class registry loaded", "path", cfg.flairsPath, "classes", reg.Len())

	var limiter rate.Limiter = rate.Unlimited{}
	if cfg.rpm > 0 {
		bucket := rate.NewTokenBucket(cfg.rpm, time.Minute)
		limiter = bucket
		defer bucket.Stop()
	}

	var j flair.Journal
	if settings.Logging {
		j = journal.New(cfg.logPath)
	}

	svc := flair.NewService(client, limiter, logger, reg, j)
	spec := flair.Spec{
		Subreddit: settings.Subreddit,
		Subject:   settings.Subject,
		PageSize:  cfg.pageSize,
		DryRun:    cfg.dryRun,
	}
	sum, err := svc.Run(ctx, spec)
	logSummary(logger, sum, err, cfg.dryRun)
	if err != nil {
		return fmt.Errorf("process inbox: %w", err)
	}
	return nil
}

func logSummary(logger *slog.Logger, sum flair.Summary, runErr error, dryRun bool) {
	attrs := []any{"applied", sum.Applied, "rejected", sum.Rejected, "skipped", sum.Skipped, "dry_run", dryRun}
	if runErr != nil {
		logger.Warn("pass aborted", attrs...)
		return
	}
	logger.Info("pass complete", attrs...)
}
