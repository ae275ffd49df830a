package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soracane/kwx/internal/cache"
	"github.com/soracane/kwx/internal/models"
	"github.com/soracane/kwx/internal/shared"
	mocks "github.com/soracane/kwx/internal/testing"
)

func newMockCatalog() *mocks.MockCatalog {
	return &mocks.MockCatalog{
		Artists:   map[string]string{"a1": "The Band"},
		Playlists: map[string]string{"p1": "Instrumentals"},
		Tracks: map[string][]models.Track{
			"a1": {
				{ID: "t1", Title: "Sunrise (Instrumental)", ArtistID: "a1"},
				{ID: "t2", Title: "Sunrise", ArtistID: "a1"},
				{ID: "t3", Title: "Medley - Instrumental", ArtistID: "a1"},
				{ID: "t4", Title: "Afterglow", ArtistID: "a1"},
			},
		},
		Members: map[string][]string{"p1": {"t1"}},
	}
}

func instrumentalTarget() models.Target {
	return models.Target{
		Name:       "Instrumentals",
		ArtistID:   "a1",
		PlaylistID: "p1",
		Keyword:    "instrumental",
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Dry Run Reports Without Mutating", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)

		summary, err := engine.Run(ctx, nil, []models.Target{instrumentalTarget()}, DryRun, CacheUse)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if summary.RunID == "" {
			t.Error("expected a run ID")
		}
		if len(summary.Results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(summary.Results))
		}

		res := summary.Results[0]
		if res.Err != nil {
			t.Fatalf("unexpected target error: %v", res.Err)
		}
		if res.ArtistName != "The Band" || res.PlaylistName != "Instrumentals" {
			t.Errorf("unexpected names: %q, %q", res.ArtistName, res.PlaylistName)
		}
		if len(res.Candidates) != 2 {
			t.Errorf("expected 2 keyword matches, got %d", len(res.Candidates))
		}
		// t1 is already a member, so only t3 remains.
		if len(res.ToAdd) != 1 || res.ToAdd[0].ID != "t3" {
			t.Errorf("expected t3 as the only missing track, got %v", ids(res.ToAdd))
		}
		if res.Added != 0 || summary.TotalAdded != 0 {
			t.Error("dry run must not report additions")
		}
		if catalog.AddCalls != 0 {
			t.Errorf("dry run must not call add, got %d calls", catalog.AddCalls)
		}
	})

	t.Run("Dry Run Is Repeatable", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)
		targets := []models.Target{instrumentalTarget()}

		first, err := engine.Run(ctx, nil, targets, DryRun, CacheUse)
		if err != nil {
			t.Fatal(err)
		}
		second, err := engine.Run(ctx, nil, targets, DryRun, CacheUse)
		if err != nil {
			t.Fatal(err)
		}

		if len(first.Results[0].ToAdd) != len(second.Results[0].ToAdd) {
			t.Errorf("dry runs disagree: %v vs %v",
				ids(first.Results[0].ToAdd), ids(second.Results[0].ToAdd))
		}
		if catalog.AddCalls != 0 {
			t.Errorf("expected no additions across dry runs, got %d", catalog.AddCalls)
		}
	})

	t.Run("Live Run Adds Missing Tracks", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)

		summary, err := engine.Run(ctx, nil, []models.Target{instrumentalTarget()}, Live, CacheUse)
		if err != nil {
			t.Fatal(err)
		}

		res := summary.Results[0]
		if res.Added != 1 || summary.TotalAdded != 1 {
			t.Errorf("expected 1 track added, got %d (total %d)", res.Added, summary.TotalAdded)
		}
		if got := catalog.Added["p1"]; len(got) != 1 || got[0] != "t3" {
			t.Errorf("expected t3 added to p1, got %v", got)
		}
	})

	t.Run("Live Rerun Adds Nothing", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)
		targets := []models.Target{instrumentalTarget()}

		if _, err := engine.Run(ctx, nil, targets, Live, CacheUse); err != nil {
			t.Fatal(err)
		}
		second, err := engine.Run(ctx, nil, targets, Live, CacheUse)
		if err != nil {
			t.Fatal(err)
		}

		if second.TotalAdded != 0 {
			t.Errorf("expected idempotent rerun, added %d", second.TotalAdded)
		}
		if catalog.AddCalls != 1 {
			t.Errorf("expected a single add call across both runs, got %d", catalog.AddCalls)
		}
	})

	t.Run("Cached Rerun Skips The Catalog Fetch", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)
		targets := []models.Target{instrumentalTarget()}

		if _, err := engine.Run(ctx, nil, targets, DryRun, CacheUse); err != nil {
			t.Fatal(err)
		}
		if _, err := engine.Run(ctx, nil, targets, DryRun, CacheUse); err != nil {
			t.Fatal(err)
		}

		if catalog.TracksCalls != 1 {
			t.Errorf("expected 1 catalog fetch across cached runs, got %d", catalog.TracksCalls)
		}
		// Playlist membership is always read fresh.
		if catalog.MembersCalls != 2 {
			t.Errorf("expected 2 membership reads, got %d", catalog.MembersCalls)
		}
	})

	t.Run("Bypass Fetches Live Every Run", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)
		targets := []models.Target{instrumentalTarget()}

		if _, err := engine.Run(ctx, nil, targets, DryRun, CacheBypass); err != nil {
			t.Fatal(err)
		}
		if _, err := engine.Run(ctx, nil, targets, DryRun, CacheBypass); err != nil {
			t.Fatal(err)
		}

		if catalog.TracksCalls != 2 {
			t.Errorf("expected 2 catalog fetches, got %d", catalog.TracksCalls)
		}
	})

	t.Run("Clear Then Use Drops Stale Snapshots", func(t *testing.T) {
		store := cache.NewStore(t.TempDir(), 0)
		stale := []models.Track{{ID: "old", Title: "No Longer Instrumental", ArtistID: "a1"}}
		if err := store.Write("a1", stale); err != nil {
			t.Fatal(err)
		}

		catalog := newMockCatalog()
		engine := NewExtractor(catalog, store, nil)

		summary, err := engine.Run(ctx, nil, []models.Target{instrumentalTarget()}, DryRun, CacheClearThenUse)
		if err != nil {
			t.Fatal(err)
		}
		if catalog.TracksCalls != 1 {
			t.Errorf("expected a fresh fetch after the clear, got %d calls", catalog.TracksCalls)
		}
		if len(summary.Results[0].Candidates) != 2 {
			t.Errorf("expected fresh candidates, got %v", ids(summary.Results[0].Candidates))
		}
	})

	t.Run("One Failing Target Does Not Stop The Run", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)

		broken := models.Target{Name: "Broken", ArtistID: "nope", PlaylistID: "p1", Keyword: "x"}
		summary, err := engine.Run(ctx, nil, []models.Target{broken, instrumentalTarget()}, Live, CacheUse)
		if err != nil {
			t.Fatalf("expected per-target failure to be absorbed, got %v", err)
		}

		if summary.Failed != 1 {
			t.Errorf("expected 1 failed target, got %d", summary.Failed)
		}
		if len(summary.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(summary.Results))
		}
		if !errors.Is(summary.Results[0].Err, shared.ErrLookup) {
			t.Errorf("expected lookup error for unknown artist, got %v", summary.Results[0].Err)
		}
		if summary.Results[1].Err != nil {
			t.Errorf("expected second target to succeed, got %v", summary.Results[1].Err)
		}
		if summary.TotalAdded != 1 {
			t.Errorf("expected second target's add to land, got %d", summary.TotalAdded)
		}
	})

	t.Run("Invalid Target Is Recorded Not Propagated", func(t *testing.T) {
		engine := NewExtractor(newMockCatalog(), cache.NewStore(t.TempDir(), 0), nil)

		invalid := models.Target{Name: "No Playlist", ArtistID: "a1", Keyword: "x"}
		summary, err := engine.Run(ctx, nil, []models.Target{invalid}, Live, CacheUse)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Failed != 1 || summary.Results[0].Err == nil {
			t.Errorf("expected validation failure in the result, got %+v", summary.Results[0])
		}
	})

	t.Run("Add Failure Is Target Scoped", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.AddErr = shared.ErrAdd
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)

		summary, err := engine.Run(ctx, nil, []models.Target{instrumentalTarget()}, Live, CacheUse)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Failed != 1 {
			t.Errorf("expected 1 failure, got %d", summary.Failed)
		}
		if summary.TotalAdded != 0 {
			t.Errorf("expected no additions counted, got %d", summary.TotalAdded)
		}
	})

	t.Run("Cancellation Stops Between Targets", func(t *testing.T) {
		catalog := newMockCatalog()
		engine := NewExtractor(catalog, cache.NewStore(t.TempDir(), 0), nil)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		summary, err := engine.Run(cancelled, nil, []models.Target{instrumentalTarget()}, Live, CacheUse)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if summary == nil {
			t.Fatal("expected a partial summary")
		}
		if len(summary.Results) != 0 {
			t.Errorf("expected no targets to run, got %d results", len(summary.Results))
		}
		if catalog.AddCalls != 0 {
			t.Errorf("expected no mutations after cancellation, got %d", catalog.AddCalls)
		}
	})

	t.Run("Full Progress Channel Never Blocks", func(t *testing.T) {
		engine := NewExtractor(newMockCatalog(), cache.NewStore(t.TempDir(), 0), nil)

		// Unbuffered with no reader: every send must fall through.
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = engine.Run(ctx, progress, []models.Target{instrumentalTarget()}, DryRun, CacheUse)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("run blocked on progress channel")
		}
	})

	t.Run("Progress Updates Arrive In Phase Order", func(t *testing.T) {
		engine := NewExtractor(newMockCatalog(), cache.NewStore(t.TempDir(), 0), nil)

		progress := make(chan ProgressUpdate, 64)
		if _, err := engine.Run(ctx, progress, []models.Target{instrumentalTarget()}, DryRun, CacheUse); err != nil {
			t.Fatal(err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) == 0 {
			t.Fatal("expected progress updates")
		}
		if phases[0] != ResolveTarget {
			t.Errorf("expected run to start with target resolution, got %v", phases[0])
		}
		if phases[len(phases)-1] != TargetDone {
			t.Errorf("expected run to end with target completion, got %v", phases[len(phases)-1])
		}
	})
}

func TestModeString(t *testing.T) {
	if DryRun.String() != "dry-run" {
		t.Errorf("unexpected dry-run label: %s", DryRun.String())
	}
	if Live.String() != "live" {
		t.Errorf("unexpected live label: %s", Live.String())
	}
}
