// Package models defines the value types shared across the extraction pipeline.
//
//   - [Track] : Song metadata from an artist catalog; identity is the remote ID
//   - [Target] : One configured extraction job (artist, playlist, keyword)
//
// Both are immutable once constructed. Tracks flow Cache Store → Keyword
// Filter → Playlist Differ; Targets are created at configuration load and
// live for a single run.
package models
