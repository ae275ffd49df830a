package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/soracane/kwx/internal/cache"
	"github.com/soracane/kwx/internal/formatter"
	"github.com/soracane/kwx/internal/shared"
	"github.com/soracane/kwx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun runs the extraction pipeline for every configured target.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	targets := r.config.Targets
	if len(targets) == 0 {
		return fmt.Errorf("%w: no targets configured", shared.ErrInvalidConfig)
	}

	mode := tasks.Live
	if cmd.Bool("dry-run") {
		mode = tasks.DryRun
	}

	cacheDir := r.config.Cache.Dir
	if dir := cmd.String("cache-dir"); dir != "" {
		cacheDir = dir
	}
	store := cache.NewStore(cacheDir, r.config.Cache.MaxAge())

	policy := tasks.CacheUse
	switch {
	case cmd.Bool("no-cache") && cmd.Bool("clear-cache"):
		if err := store.ClearAll(); err != nil {
			return err
		}
		policy = tasks.CacheBypass
	case cmd.Bool("no-cache"):
		policy = tasks.CacheBypass
	case cmd.Bool("clear-cache"):
		policy = tasks.CacheClearThenUse
	}

	// Guard the cache dir against an accidental concurrent run. Losing the
	// lock race is a warning, not a failure.
	if locked, err := store.TryLock(); err != nil {
		r.logger.Warnf("cache lock unavailable: %v", err)
	} else if !locked {
		r.logger.Warn("another run holds the cache lock, continuing without it")
	} else {
		defer store.Unlock()
	}

	if err := r.authenticate(ctx); err != nil {
		return err
	}

	r.writePlainln("Running %d targets (%s mode, cache: %s)", len(targets), mode, cacheStatus(policy, cacheDir))

	engine := tasks.NewExtractor(r.catalog, store, r.logger)

	updates := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			r.logger.Debugf("[%d/%d] %s: %s", update.Step, update.Total, update.Phase, update.Message)
		}
	}()

	summary, runErr := engine.Run(ctx, updates, targets, mode, policy)
	close(updates)
	<-done

	if summary != nil {
		for _, res := range summary.Results {
			r.writePlain("%s\n", formatter.RenderTargetReport(res, summary.Mode, cmd.Bool("verbose")))
		}
		r.writePlainln("%s", formatter.RenderSummaryTable(summary))
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d targets failed", summary.Failed, len(summary.Results))
	}

	return nil
}

func cacheStatus(policy tasks.CachePolicy, dir string) string {
	switch policy {
	case tasks.CacheBypass:
		return "disabled"
	case tasks.CacheClearThenUse:
		return fmt.Sprintf("cleared, then %s", dir)
	default:
		return dir
	}
}

// syncCommand runs the extraction pipeline
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Find keyword-matching artist tracks and add the missing ones to playlists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Show what would be added without mutating playlists",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose output with detailed progress information",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Directory to store cache files (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "clear-cache",
				Usage: "Clear all cache files before running",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable cache usage (always fetch from API)",
			},
		},
		Action: r.SyncRun,
	}
}
