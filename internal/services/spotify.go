// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"

	"github.com/soracane/kwx/internal/models"
	"github.com/soracane/kwx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	albumPageSize    = 50
	trackPageSize    = 50
	playlistPageSize = 100
	addBatchSize     = 100

	defaultRequestsPerSecond = 5
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyPlaylist represents a Spotify playlist, fetched with fields=name.
type SpotifyPlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyPage is the envelope around every paginated Spotify listing.
type spotifyPage[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type playlistItem struct {
	Track *SpotifyTrack `json:"track"`
}

// apiError carries the HTTP status of a failed Spotify request so callers
// can distinguish lookup failures from transient ones.
type apiError struct {
	Status   int
	Endpoint string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("spotify API error: status %d (%s)", e.Status, e.Endpoint)
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, server errors, timeouts).
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

func isNotFound(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusBadRequest
	}
	return false
}

// SpotifyService implements the Catalog interface for Spotify API interactions.
// Uses [oauth2] for authentication and [rate.Limiter] to stay under the API's
// request budget.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      shared.RetryPolicy
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2
// credentials and retry policy for transient failures.
func NewSpotifyService(credentials map[string]string, retryCfg shared.RetryConfig) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-private",
			"playlist-modify-public",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
		retry:      shared.NewRetryPolicy(retryCfg, IsRetriable),
		baseURL:    spotifyBaseURL,
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an
// "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Token returns the current OAuth2 token, nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	apiURL := s.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Endpoint: endpoint}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ArtistName resolves an artist ID to its display name.
func (s *SpotifyService) ArtistName(ctx context.Context, artistID string) (string, error) {
	var artist SpotifyArtist
	endpoint := fmt.Sprintf("/artists/%s", url.PathEscape(artistID))

	err := s.retry.Do(ctx, func() error {
		return s.doRequest(ctx, http.MethodGet, endpoint, nil, &artist)
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: artist %s: %v", shared.ErrLookup, artistID, err)
		}
		return "", err
	}

	return artist.Name, nil
}

// PlaylistName resolves a playlist ID to its display name.
func (s *SpotifyService) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s?fields=id,name", url.PathEscape(playlistID))

	err := s.retry.Do(ctx, func() error {
		return s.doRequest(ctx, http.MethodGet, endpoint, nil, &playlist)
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: playlist %s: %v", shared.ErrLookup, playlistID, err)
		}
		return "", err
	}

	return playlist.Name, nil
}

// ArtistTracks retrieves the artist's full catalog: every album page, then
// every track page of every album. Tracks accumulate in album order and are
// sorted by release date ascending; duplicate IDs are left for the caller.
func (s *SpotifyService) ArtistTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	albums, err := collectPages(ctx, s.retry, func(ctx context.Context, offset int) ([]SpotifyAlbum, bool, error) {
		endpoint := fmt.Sprintf("/artists/%s/albums?include_groups=single&limit=%d&offset=%d",
			url.PathEscape(artistID), albumPageSize, offset)

		var page spotifyPage[SpotifyAlbum]
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, false, err
		}
		return page.Items, page.Next != nil, nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: artist %s: %v", shared.ErrLookup, artistID, err)
		}
		return nil, err
	}

	var tracks []models.Track
	for _, album := range albums {
		albumTracks, err := s.albumTracks(ctx, album)
		if err != nil {
			return nil, err
		}
		for _, t := range albumTracks {
			tracks = append(tracks, models.Track{
				ID:          t.ID,
				Title:       t.Name,
				ArtistID:    artistID,
				Album:       album.Name,
				ReleaseDate: album.ReleaseDate,
			})
		}
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].ReleaseDate < tracks[j].ReleaseDate
	})

	return tracks, nil
}

func (s *SpotifyService) albumTracks(ctx context.Context, album SpotifyAlbum) ([]SpotifyTrack, error) {
	return collectPages(ctx, s.retry, func(ctx context.Context, offset int) ([]SpotifyTrack, bool, error) {
		endpoint := fmt.Sprintf("/albums/%s/tracks?limit=%d&offset=%d",
			url.PathEscape(album.ID), trackPageSize, offset)

		var page spotifyPage[SpotifyTrack]
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, false, err
		}
		return page.Items, page.Next != nil, nil
	})
}

// PlaylistTrackIDs reads the playlist's current membership fresh from the API.
func (s *SpotifyService) PlaylistTrackIDs(ctx context.Context, playlistID string) (map[string]struct{}, error) {
	items, err := collectPages(ctx, s.retry, func(ctx context.Context, offset int) ([]playlistItem, bool, error) {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?fields=items(track(id)),total,limit,offset,next&limit=%d&offset=%d",
			url.PathEscape(playlistID), playlistPageSize, offset)

		var page spotifyPage[playlistItem]
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, false, err
		}
		return page.Items, page.Next != nil, nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: playlist %s: %v", shared.ErrLookup, playlistID, err)
		}
		return nil, err
	}

	ids := make(map[string]struct{}, len(items))
	for _, item := range items {
		// Local or removed tracks come back with a null track object.
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		ids[item.Track.ID] = struct{}{}
	}

	return ids, nil
}

// AddPlaylistTracks appends tracks to the playlist in batches of 100, the
// API's per-request maximum, preserving the given order.
func (s *SpotifyService) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(trackIDs); start += addBatchSize {
		end := start + addBatchSize
		if end > len(trackIDs) {
			end = len(trackIDs)
		}

		uris := make([]string, 0, end-start)
		for _, id := range trackIDs[start:end] {
			uris = append(uris, "spotify:track:"+id)
		}

		body := map[string][]string{"uris": uris}
		err := s.retry.Do(ctx, func() error {
			return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
		})
		if err != nil {
			return fmt.Errorf("%w: playlist %s: %v", shared.ErrAdd, playlistID, err)
		}
	}

	return nil
}
