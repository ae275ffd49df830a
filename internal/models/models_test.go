package models

import (
	"errors"
	"testing"
)

func TestTargetValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		target := Target{Name: "Instrumentals", ArtistID: "a1", PlaylistID: "p1", Keyword: "instrumental"}
		if err := target.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Empty Keyword Is Allowed", func(t *testing.T) {
		target := Target{ArtistID: "a1", PlaylistID: "p1"}
		if err := target.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Missing Artist ID", func(t *testing.T) {
		target := Target{PlaylistID: "p1", Keyword: "x"}
		if err := target.Validate(); !errors.Is(err, ErrMissingArtistID) {
			t.Errorf("expected ErrMissingArtistID, got %v", err)
		}
	})

	t.Run("Missing Playlist ID", func(t *testing.T) {
		target := Target{ArtistID: "a1", Keyword: "x"}
		if err := target.Validate(); !errors.Is(err, ErrMissingPlaylistID) {
			t.Errorf("expected ErrMissingPlaylistID, got %v", err)
		}
	})
}
