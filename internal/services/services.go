package services

import (
	"context"

	"github.com/soracane/kwx/internal/models"
)

// Catalog defines the remote operations the extraction pipeline consumes:
// name lookups, catalog listing, playlist membership, and playlist mutation.
type Catalog interface {
	// Authenticate performs OAuth authentication with the service.
	// Expects either an "access_token" or "auth_code" in credentials.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// ArtistName resolves an artist ID to its display name.
	ArtistName(ctx context.Context, artistID string) (string, error)

	// PlaylistName resolves a playlist ID to its display name.
	PlaylistName(ctx context.Context, playlistID string) (string, error)

	// ArtistTracks retrieves the artist's full catalog by following
	// pagination to completion. The result is ordered but may contain
	// duplicate IDs (the same track released on multiple albums).
	ArtistTracks(ctx context.Context, artistID string) ([]models.Track, error)

	// PlaylistTrackIDs reads the current playlist membership fresh from the
	// service. An unresolvable playlist is an error, never an empty set.
	PlaylistTrackIDs(ctx context.Context, playlistID string) (map[string]struct{}, error)

	// AddPlaylistTracks appends the given tracks to the playlist, in order.
	AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Name returns the name of the service (e.g. "Spotify")
	Name() string
}
