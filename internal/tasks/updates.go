package tasks

import "fmt"

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current target number within the run
	Total   int    // Total targets in the run
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ResolveTarget Phase = iota
	FetchCatalog
	FetchPlaylist
	Compare
	AddTracks
	TargetDone
)

func (p Phase) String() string {
	switch p {
	case ResolveTarget:
		return "resolve_target"
	case FetchCatalog:
		return "fetch_catalog"
	case FetchPlaylist:
		return "fetch_playlist"
	case Compare:
		return "compare"
	case AddTracks:
		return "add_tracks"
	case TargetDone:
		return "target_done"
	default:
		return "unknown"
	}
}

func resolveUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{Phase: ResolveTarget, Step: step, Total: total, Message: fmt.Sprintf("Processing target: %s", name)}
}

func fetchCatalogUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchCatalog, Step: step, Total: total, Message: fmt.Sprintf("Fetching catalog for %s...", artist)}
}

func fetchPlaylistUpdate(step, total int, playlist string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchPlaylist, Step: step, Total: total, Message: fmt.Sprintf("Reading playlist %s...", playlist)}
}

func compareUpdate(step, total, candidates int) ProgressUpdate {
	return ProgressUpdate{Phase: Compare, Step: step, Total: total, Message: fmt.Sprintf("Comparing %d candidate tracks...", candidates)}
}

func addTracksUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{Phase: AddTracks, Step: step, Total: total, Message: fmt.Sprintf("Adding %d tracks...", count)}
}

func targetDoneUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{Phase: TargetDone, Step: step, Total: total, Message: fmt.Sprintf("Finished target: %s", name)}
}
