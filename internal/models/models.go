package models

import "errors"

var (
	ErrMissingArtistID   = errors.New("target missing artist_id")
	ErrMissingPlaylistID = errors.New("target missing playlist_id")
)

// Track represents a single track in an artist's catalog.
//
// ID is the remote-assigned identifier and the only field used for identity
// comparisons; Title is used for keyword filtering only. Album and
// ReleaseDate are carried for reporting and catalog ordering.
type Track struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ArtistID    string `json:"artist_id,omitempty"`
	Album       string `json:"album,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// Target describes one configured extraction job: find tracks by ArtistID
// whose titles contain Keyword and add the missing ones to PlaylistID.
//
// Name is a display label, not a unique key.
type Target struct {
	Name       string `toml:"name"`
	ArtistID   string `toml:"artist_id"`
	PlaylistID string `toml:"playlist_id"`
	Keyword    string `toml:"keyword"`
}

// Validate checks that the target has the identifiers required to run.
func (t Target) Validate() error {
	if t.ArtistID == "" {
		return ErrMissingArtistID
	}
	if t.PlaylistID == "" {
		return ErrMissingPlaylistID
	}
	return nil
}
