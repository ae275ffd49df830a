// Package services provides authenticated access to the remote music catalog.
//
// [Catalog] is the boundary the sync pipeline depends on; [SpotifyService] is
// the Web API implementation. All listing endpoints are paginated and walked
// to completion with per-page retry and client-side rate limiting.
package services
