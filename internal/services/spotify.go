// Spotify Web API client
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// MaxArtistIDs is the upstream ceiling on ids per /artists request.
	MaxArtistIDs = 50

	playlistTrackFields = "items(track(id,name,artists(id,name),album(name,release_date),external_urls.spotify),added_by(id,display_name)),next"
)

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtistRef is the simplified artist object embedded in tracks.
type SpotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyArtist represents a full Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// SpotifyAlbum represents the album fields requested by the playlist projection.
type SpotifyAlbum struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Artists      []SpotifyArtistRef `json:"artists"`
	Album        *SpotifyAlbum      `json:"album"`
	ExternalURLs *externalURLs      `json:"external_urls"`
}

// SpotifyUserRef is the public user object attached to playlist items. Display names are optional upstream.
type SpotifyUserRef struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
}

// SpotifyPlaylistItem is one entry of a playlist's track page.
//
// Track is nil for local files and tracks no longer available.
type SpotifyPlaylistItem struct {
	AddedBy *SpotifyUserRef `json:"added_by"`
	Track   *SpotifyTrack   `json:"track"`
}

type SpotifyImage struct {
	URL string `json:"url"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Owner         SpotifyUserRef       `json:"owner"`
	Public        bool                 `json:"public"`
	Collaborative bool                 `json:"collaborative"`
	Tracks        simplePlaylistTracks `json:"tracks"`
	Images        []SpotifyImage       `json:"images"`
	ExternalURLs  *externalURLs        `json:"external_urls"`
}

// SpotifyClientOpts configures a [SpotifyClient].
type SpotifyClientOpts struct {
	BaseURL           string       // API root (default: https://api.spotify.com/v1)
	HTTPClient        *http.Client // Transport (default: client with Timeout)
	Timeout           time.Duration
	RequestsPerSecond float64 // Outbound pacing; <= 0 disables it
	Logger            *log.Logger
}

// SpotifyClient performs bearer-authorized GET requests against the Spotify Web API.
//
// The client holds no user state: the credential for each call is read from the request context
// (see [WithCredential]), so one client serves every inbound request.
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyClient creates a Spotify client, filling defaults for missing options.
func NewSpotifyClient(opts SpotifyClientOpts) *SpotifyClient {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 5)
	}

	return &SpotifyClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		logger:     shared.WithLogger(opts.Logger, "service", "spotify"),
	}
}

// endpoint resolves a path against the API root.
func (s *SpotifyClient) endpoint(path string, query url.Values) string {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getJSON performs an authorized GET of rawURL and decodes the JSON body into result.
//
// Status codes are categorized: 401 wraps [shared.ErrUnauthorized], 404 wraps [shared.ErrNotFound] and every other
// failure (non-2xx, transport, decoding) wraps [shared.ErrUpstream].
func (s *SpotifyClient) getJSON(ctx context.Context, rawURL string, result any) error {
	token, ok := CredentialFrom(ctx)
	if !ok {
		return shared.ErrMissingCredential
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrUpstream, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		s.logger.Warn("spotify rejected credential", "url", rawURL)
		return fmt.Errorf("%w: status %d", shared.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, rawURL)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrUpstream, err)
		}
	}

	return nil
}

// PlaylistTracks retrieves every track of a playlist, following pagination.
//
// Items without a track object (local files, unavailable tracks) are dropped.
func (s *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingParameter)
	}

	start := s.endpoint("/playlists/"+url.PathEscape(playlistID)+"/tracks", url.Values{"fields": {playlistTrackFields}})

	items, err := Paginate(ctx, s, start, func(item SpotifyPlaylistItem) bool {
		return item.Track != nil
	})
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, item.toModel())
	}
	return tracks, nil
}

// SeveralArtists retrieves up to [MaxArtistIDs] artists in one request.
//
// Ids the upstream cannot resolve come back as null and are omitted from the result.
func (s *SpotifyClient) SeveralArtists(ctx context.Context, artistIDs []string) ([]models.ArtistDetail, error) {
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: no artist IDs provided", shared.ErrInvalidArgument)
	}
	if len(artistIDs) > MaxArtistIDs {
		return nil, fmt.Errorf("%w: maximum %d artist IDs allowed", shared.ErrInvalidArgument, MaxArtistIDs)
	}

	var response struct {
		Artists []*SpotifyArtist `json:"artists"`
	}

	endpoint := s.endpoint("/artists", url.Values{"ids": {strings.Join(artistIDs, ",")}})
	if err := s.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	details := make([]models.ArtistDetail, 0, len(response.Artists))
	for _, a := range response.Artists {
		if a == nil || a.ID == "" {
			continue
		}
		details = append(details, models.ArtistDetail{ID: a.ID, Genres: a.Genres})
	}
	return details, nil
}

// UserProfile retrieves the public profile of a user by id.
func (s *SpotifyClient) UserProfile(ctx context.Context, userID string) (*models.Contributor, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingParameter)
	}

	var user SpotifyUserRef
	if err := s.getJSON(ctx, s.endpoint("/users/"+url.PathEscape(userID), nil), &user); err != nil {
		return nil, err
	}

	return &models.Contributor{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// UserPlaylists retrieves all playlists of the current user, 50 per page.
func (s *SpotifyClient) UserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	start := s.endpoint("/me/playlists", url.Values{"limit": {"50"}})

	items, err := Paginate(ctx, s, start, func(p SpotifySimplePlaylist) bool { return p.ID != "" })
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(items))
	for _, sp := range items {
		playlists = append(playlists, sp.toModel())
	}
	return playlists, nil
}

func (item SpotifyPlaylistItem) toModel() models.Track {
	t := item.Track
	track := models.Track{
		ID:      t.ID,
		Name:    t.Name,
		Artists: make([]models.ArtistRef, 0, len(t.Artists)),
	}

	for _, a := range t.Artists {
		track.Artists = append(track.Artists, models.ArtistRef{ID: a.ID, Name: a.Name})
	}
	if t.Album != nil {
		track.Album = &models.Album{Name: t.Album.Name, ReleaseDate: t.Album.ReleaseDate}
	}
	if t.ExternalURLs != nil {
		track.ExternalURL = t.ExternalURLs.Spotify
	}
	if item.AddedBy != nil && item.AddedBy.ID != "" {
		track.AddedBy = &models.Contributor{ID: item.AddedBy.ID, DisplayName: item.AddedBy.DisplayName}
	}

	return track
}

func (sp SpotifySimplePlaylist) toModel() models.Playlist {
	p := models.Playlist{
		ID:            sp.ID,
		Name:          sp.Name,
		Description:   sp.Description,
		Owner:         models.Owner{ID: sp.Owner.ID},
		Public:        sp.Public,
		Collaborative: sp.Collaborative,
		TrackTotal:    sp.Tracks.Total,
	}
	if sp.Owner.DisplayName != nil {
		p.Owner.DisplayName = *sp.Owner.DisplayName
	}
	if len(sp.Images) > 0 {
		p.ImageURL = sp.Images[0].URL
	}
	if sp.ExternalURLs != nil {
		p.ExternalURL = sp.ExternalURLs.Spotify
	}
	return p
}
