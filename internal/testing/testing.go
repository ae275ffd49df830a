// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/soracane/kwx/internal/models"
	"github.com/soracane/kwx/internal/shared"
)

// MockCatalog is a configurable test double for [services.Catalog].
//
// Call counters let tests assert the cache short-circuit (zero network
// calls on a hit) and mutation counts (dry-run never adds).
type MockCatalog struct {
	Artists      map[string]string         // artist ID → name
	Playlists    map[string]string         // playlist ID → name
	Tracks       map[string][]models.Track // artist ID → catalog
	Members      map[string][]string       // playlist ID → current track IDs
	TracksErr    error
	MembersErr   error
	AddErr       error
	TracksCalls  int
	MembersCalls int
	AddCalls     int
	Added        map[string][]string // playlist ID → IDs added across calls
}

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) ArtistName(ctx context.Context, artistID string) (string, error) {
	if name, ok := m.Artists[artistID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: artist %s", shared.ErrLookup, artistID)
}

func (m *MockCatalog) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	if name, ok := m.Playlists[playlistID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: playlist %s", shared.ErrLookup, playlistID)
}

func (m *MockCatalog) ArtistTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	m.TracksCalls++
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.Tracks[artistID], nil
}

func (m *MockCatalog) PlaylistTrackIDs(ctx context.Context, playlistID string) (map[string]struct{}, error) {
	m.MembersCalls++
	if m.MembersErr != nil {
		return nil, m.MembersErr
	}
	if _, ok := m.Playlists[playlistID]; !ok {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrLookup, playlistID)
	}
	ids := make(map[string]struct{}, len(m.Members[playlistID]))
	for _, id := range m.Members[playlistID] {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (m *MockCatalog) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.Members == nil {
		m.Members = map[string][]string{}
	}
	m.Members[playlistID] = append(m.Members[playlistID], trackIDs...)
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append(m.Added[playlistID], trackIDs...)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// DrainBody reads and closes a response body, for RoundTripper cleanup in tests.
func DrainBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
