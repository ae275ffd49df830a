package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/soracane/kwx/internal/cache"
	"github.com/soracane/kwx/internal/models"
	"github.com/soracane/kwx/internal/services"
	"github.com/soracane/kwx/internal/shared"
)

// Mode selects between reporting and mutating.
type Mode int

const (
	DryRun Mode = iota
	Live
)

func (m Mode) String() string {
	if m == DryRun {
		return "dry-run"
	}
	return "live"
}

// CachePolicy controls how the run uses the track cache.
type CachePolicy int

const (
	CacheUse CachePolicy = iota
	CacheBypass
	CacheClearThenUse
)

// SyncResult records the outcome of one target within a run.
type SyncResult struct {
	Target       models.Target
	ArtistName   string
	PlaylistName string
	Candidates   []models.Track // keyword matches from the catalog
	ToAdd        []models.Track // candidates not already in the playlist
	Added        int            // tracks actually added (live mode only)
	Err          error          // target-scoped failure, nil on success
}

// RunSummary aggregates the per-target results of one run.
type RunSummary struct {
	RunID      string
	Mode       Mode
	Results    []SyncResult
	TotalAdded int
	Failed     int
}

// SyncEngine defines the extraction-and-sync operation over a list of targets.
type SyncEngine interface {
	// Run drives the Fetch → Filter → Diff → Decide pipeline for each
	// target in order. Per-target failures are recorded in the summary and
	// do not prevent remaining targets from running; Run itself errors only
	// on cancellation or a pre-run cache clear failure.
	Run(ctx context.Context, progress chan<- ProgressUpdate, targets []models.Target, mode Mode, policy CachePolicy) (*RunSummary, error)
}

// Extractor implements SyncEngine over a remote catalog and a cache store.
type Extractor struct {
	catalog services.Catalog
	store   *cache.Store
	fetcher *Fetcher
	logger  *log.Logger
}

// NewExtractor creates an Extractor with the provided dependencies.
func NewExtractor(catalog services.Catalog, store *cache.Store, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Extractor{
		catalog: catalog,
		store:   store,
		fetcher: NewFetcher(catalog, store, shared.WithLogger(logger, "component", "fetch")),
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Extractor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run processes each target sequentially. Cancellation is honored between
// targets: completed targets' mutations stay intact and no further target
// starts.
func (e *Extractor) Run(ctx context.Context, progress chan<- ProgressUpdate, targets []models.Target, mode Mode, policy CachePolicy) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:   shared.GenerateID(),
		Mode:    mode,
		Results: make([]SyncResult, 0, len(targets)),
	}

	if policy == CacheClearThenUse && e.store != nil {
		if err := e.store.ClearAll(); err != nil {
			return nil, err
		}
		e.logger.Infof("cleared track cache under %s", e.store.Dir())
	}

	useCache := policy != CacheBypass
	total := len(targets)

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		e.sendProgress(progress, resolveUpdate(i+1, total, target.Name))
		result := e.runTarget(ctx, progress, i+1, total, target, mode, useCache)

		if result.Err != nil {
			summary.Failed++
			e.logger.Errorf("target %s: %v", target.Name, result.Err)
		}
		summary.TotalAdded += result.Added
		summary.Results = append(summary.Results, result)

		e.sendProgress(progress, targetDoneUpdate(i+1, total, target.Name))
	}

	return summary, nil
}

// runTarget executes Fetch → Filter → Diff → Decide for a single target.
// Every failure is captured in the result rather than propagated.
func (e *Extractor) runTarget(ctx context.Context, progress chan<- ProgressUpdate, step, total int, target models.Target, mode Mode, useCache bool) SyncResult {
	result := SyncResult{Target: target}

	if err := target.Validate(); err != nil {
		result.Err = fmt.Errorf("%w: %v", shared.ErrLookup, err)
		return result
	}

	artistName, err := e.catalog.ArtistName(ctx, target.ArtistID)
	if err != nil {
		result.Err = err
		return result
	}
	result.ArtistName = artistName

	playlistName, err := e.catalog.PlaylistName(ctx, target.PlaylistID)
	if err != nil {
		result.Err = err
		return result
	}
	result.PlaylistName = playlistName

	e.sendProgress(progress, fetchCatalogUpdate(step, total, artistName))
	tracks, err := e.fetcher.Fetch(ctx, target.ArtistID, useCache)
	if err != nil {
		result.Err = err
		return result
	}

	result.Candidates = FilterByKeyword(tracks, target.Keyword)
	e.logger.Debugf("%d of %d tracks match keyword %q", len(result.Candidates), len(tracks), target.Keyword)

	// Playlist membership is read fresh on every run: this tool mutates the
	// playlist itself, so a cached snapshot would miss its own prior adds.
	e.sendProgress(progress, fetchPlaylistUpdate(step, total, playlistName))
	existing, err := e.catalog.PlaylistTrackIDs(ctx, target.PlaylistID)
	if err != nil {
		result.Err = err
		return result
	}

	e.sendProgress(progress, compareUpdate(step, total, len(result.Candidates)))
	result.ToAdd = Diff(result.Candidates, existing)

	if mode == DryRun || len(result.ToAdd) == 0 {
		return result
	}

	e.sendProgress(progress, addTracksUpdate(step, total, len(result.ToAdd)))
	ids := make([]string, 0, len(result.ToAdd))
	for _, t := range result.ToAdd {
		ids = append(ids, t.ID)
	}

	if err := e.catalog.AddPlaylistTracks(ctx, target.PlaylistID, ids); err != nil {
		result.Err = err
		return result
	}

	result.Added = len(ids)
	return result
}

func isLookup(err error) bool {
	return errors.Is(err, shared.ErrLookup)
}
