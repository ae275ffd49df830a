package main

import (
	"context"
	"fmt"

	"github.com/soracane/kwx/internal/cache"
	"github.com/soracane/kwx/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) cacheStore(cmd *cli.Command) *cache.Store {
	dir := cmd.String("cache-dir")
	if dir == "" {
		dir = r.config.Cache.Dir
	}
	return cache.NewStore(dir, r.config.Cache.MaxAge())
}

// CacheClear removes one or all cached artist snapshots.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	store := r.cacheStore(cmd)

	if artistID := cmd.String("artist"); artistID != "" {
		if err := store.Clear(artistID); err != nil {
			return err
		}
		r.logger.Infof("cleared cache entry for %s", artistID)
		return r.writePlainln("✓ Cleared cache entry: %s", artistID)
	}

	if err := store.ClearAll(); err != nil {
		return err
	}
	r.logger.Infof("cleared track cache under %s", store.Dir())
	return r.writePlainln("✓ Cleared track cache: %s", store.Dir())
}

// CacheList prints the artist IDs with a stored snapshot.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	store := r.cacheStore(cmd)

	ids, err := store.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return r.writePlainln("cache is empty (%s)", store.Dir())
	}

	for _, id := range ids {
		if err := r.writePlainln("%s", id); err != nil {
			return err
		}
	}
	return nil
}

// CacheShow dumps one artist's cached snapshot as JSON.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	store := r.cacheStore(cmd)
	artistID := cmd.String("artist")

	entry, err := store.Read(artistID)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: no cache entry for %s", shared.ErrCacheIO, artistID)
	}

	return r.writeJSON(entry, cmd.Bool("pretty"))
}

// cacheCommand handles track cache inspection and maintenance
func cacheCommand(r *Runner) *cli.Command {
	cacheDirFlag := &cli.StringFlag{
		Name:  "cache-dir",
		Usage: "Directory holding cache files (overrides config)",
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and maintain the track cache",
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Remove one or all cached artist snapshots",
				Flags: []cli.Flag{
					cacheDirFlag,
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Artist ID to clear (default: all)",
					},
				},
				Action: r.CacheClear,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List cached artist IDs",
				Flags:   []cli.Flag{cacheDirFlag},
				Action:  r.CacheList,
			},
			{
				Name:  "show",
				Usage: "Print a cached snapshot as JSON",
				Flags: []cli.Flag{
					cacheDirFlag,
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Artist ID to show",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CacheShow,
			},
		},
	}
}
