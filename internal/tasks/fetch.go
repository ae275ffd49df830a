package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/soracane/kwx/internal/cache"
	"github.com/soracane/kwx/internal/models"
	"github.com/soracane/kwx/internal/services"
	"github.com/soracane/kwx/internal/shared"
)

// Fetcher retrieves an artist's full catalog, consulting the cache store
// before the remote service.
type Fetcher struct {
	catalog services.Catalog
	store   *cache.Store
	logger  *log.Logger
}

// NewFetcher creates a Fetcher over the given catalog and cache store.
func NewFetcher(catalog services.Catalog, store *cache.Store, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Fetcher{catalog: catalog, store: store, logger: logger}
}

// Fetch returns the artist's catalog, deduplicated by track ID.
//
// With useCache set, a stored snapshot short-circuits the fetch entirely: no
// network calls are made. On a miss the full paginated catalog is retrieved,
// deduplicated, written to the cache, and returned. Cache read failures
// degrade to a live fetch; cache write failures are logged but do not fail
// the fetch, since the data is still usable for the current run. A remote
// failure leaves any prior cache entry untouched.
func (f *Fetcher) Fetch(ctx context.Context, artistID string, useCache bool) ([]models.Track, error) {
	if useCache && f.store != nil {
		entry, err := f.store.Read(artistID)
		if err != nil {
			f.logger.Warnf("cache read failed, fetching live: %v", err)
		} else if entry != nil {
			f.logger.Debugf("cache hit for %s (%d tracks, fetched %s)",
				artistID, len(entry.Tracks), entry.FetchedAt.Format("2006-01-02 15:04"))
			return entry.Tracks, nil
		}
	}

	tracks, err := f.catalog.ArtistTracks(ctx, artistID)
	if err != nil {
		if isLookup(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: artist %s: %v", shared.ErrFetch, artistID, err)
	}

	tracks = dedupeByID(tracks)

	if f.store != nil {
		if err := f.store.Write(artistID, tracks); err != nil {
			f.logger.Warnf("cache write failed: %v", err)
		}
	}

	return tracks, nil
}

// dedupeByID drops repeated track IDs, keeping the first occurrence. The
// same track routinely appears on multiple albums; downstream diffing
// assumes unique IDs.
func dedupeByID(tracks []models.Track) []models.Track {
	seen := make(map[string]struct{}, len(tracks))
	unique := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}
