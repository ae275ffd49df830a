// Package tasks implements the extraction-and-sync pipeline.
//
// The core abstraction is [SyncEngine]: for each configured target it runs
// Fetch → Filter → Diff → Decide, either reporting the pending additions
// (dry-run) or performing them against the remote playlist. Targets are
// processed independently; the failure of one never aborts the others.
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
package tasks
