package analysis

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/services"
	"github.com/desertthunder/tally/internal/shared"
	"golang.org/x/sync/errgroup"
)

const defaultLookupConcurrency = 8

// Catalog is the upstream surface the analyzer reads from. [services.SpotifyClient] implements it.
type Catalog interface {
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)
	SeveralArtists(ctx context.Context, artistIDs []string) ([]models.ArtistDetail, error)
	UserProfile(ctx context.Context, userID string) (*models.Contributor, error)
}

// GenreCount is one row of the genre tally.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// ArtistCount is one row of the artist tally.
type ArtistCount struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// ContributorCount is one row of the contributor tally.
type ContributorCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Result holds the three tallies of a playlist.
type Result struct {
	Genres       []GenreCount       `json:"allGenres"`
	Artists      []ArtistCount      `json:"allArtists"`
	Contributors []ContributorCount `json:"allContributors"`
}

// AnalyzerOpts configures an [Analyzer].
type AnalyzerOpts struct {
	LookupConcurrency int // Concurrent profile lookups (default: 8)
	BatchSize         int // Artist ids per lookup (default and ceiling: services.MaxArtistIDs)
	Logger            *log.Logger
}

// Analyzer fetches playlist tracks and reduces them to tallies.
//
// It keeps no per-request state and is safe for concurrent use.
type Analyzer struct {
	catalog     Catalog
	concurrency int
	batchSize   int
	logger      *log.Logger
}

// NewAnalyzer creates an analyzer reading from catalog.
func NewAnalyzer(catalog Catalog, opts AnalyzerOpts) *Analyzer {
	if opts.LookupConcurrency <= 0 {
		opts.LookupConcurrency = defaultLookupConcurrency
	}
	if opts.BatchSize <= 0 || opts.BatchSize > services.MaxArtistIDs {
		opts.BatchSize = services.MaxArtistIDs
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Analyzer{
		catalog:     catalog,
		concurrency: opts.LookupConcurrency,
		batchSize:   opts.BatchSize,
		logger:      shared.WithLogger(opts.Logger, "component", "analyzer"),
	}
}

// Analyze fetches every track of the playlist and computes the genre, artist and contributor tallies.
func (a *Analyzer) Analyze(ctx context.Context, playlistID string) (*Result, error) {
	tracks, err := a.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("analyzing playlist", "playlist", playlistID, "tracks", len(tracks))

	return &Result{
		Genres:       a.GenreCounts(ctx, tracks),
		Artists:      ArtistCounts(tracks),
		Contributors: a.ContributorCounts(ctx, tracks),
	}, nil
}

// Contributors fetches every track of the playlist and computes only the contributor tally.
func (a *Analyzer) Contributors(ctx context.Context, playlistID string) ([]ContributorCount, error) {
	tracks, err := a.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return a.ContributorCounts(ctx, tracks), nil
}

// Tracks fetches every track of the playlist and flattens it for listing.
func (a *Analyzer) Tracks(ctx context.Context, playlistID string) ([]models.TrackSummary, error) {
	tracks, err := a.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return Summarize(tracks), nil
}

// GenreCounts attributes at most one genre to each track: the first genre of its first artist.
//
// Tracks whose first artist has no genres, or could not be looked up, are left out.
func (a *Analyzer) GenreCounts(ctx context.Context, tracks []models.Track) []GenreCount {
	var ids []string
	seen := map[string]bool{}
	for _, t := range tracks {
		if artist, ok := t.FirstArtist(); ok && artist.ID != "" && !seen[artist.ID] {
			seen[artist.ID] = true
			ids = append(ids, artist.ID)
		}
	}

	genres := a.lookupGenres(ctx, ids)

	counts := newTally()
	for _, t := range tracks {
		artist, ok := t.FirstArtist()
		if !ok {
			continue
		}
		if genre, ok := genres[artist.ID]; ok {
			counts.add(genre)
		}
	}

	result := make([]GenreCount, 0, len(counts.order))
	for _, e := range counts.sorted() {
		result = append(result, GenreCount{Genre: e.key, Count: e.count})
	}
	return result
}

// lookupGenres resolves the first genre of each artist id. Failed batches are logged and skipped.
func (a *Analyzer) lookupGenres(ctx context.Context, ids []string) map[string]string {
	genres := make(map[string]string, len(ids))

	for start := 0; start < len(ids); start += a.batchSize {
		batch := ids[start:min(start+a.batchSize, len(ids))]

		details, err := a.catalog.SeveralArtists(ctx, batch)
		if err != nil {
			a.logger.Warn("artist lookup failed", "artists", len(batch), "error", err)
			continue
		}

		for _, d := range details {
			if genre, ok := d.FirstGenre(); ok {
				genres[d.ID] = genre
			}
		}
	}

	return genres
}

// ArtistCounts counts every artist credited on every track by name.
func ArtistCounts(tracks []models.Track) []ArtistCount {
	counts := newTally()
	for _, t := range tracks {
		for _, artist := range t.Artists {
			counts.add(artist.Name)
		}
	}

	result := make([]ArtistCount, 0, len(counts.order))
	for _, e := range counts.sorted() {
		result = append(result, ArtistCount{Artist: e.key, Count: e.count})
	}
	return result
}

// ContributorCounts groups tracks by the user who added them and resolves a display name per user.
//
// Profile lookups run concurrently and only for users without an inline display name; a failed lookup
// falls back to the raw user id.
func (a *Analyzer) ContributorCounts(ctx context.Context, tracks []models.Track) []ContributorCount {
	counts := newTally()
	inline := map[string]string{}
	for _, t := range tracks {
		id := t.ContributorID()
		if id == "" {
			continue
		}
		counts.add(id)
		if name := displayName(t.AddedBy); name != "" && inline[id] == "" {
			inline[id] = name
		}
	}

	entries := counts.sorted()
	result := make([]ContributorCount, len(entries))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, e := range entries {
		result[i] = ContributorCount{ID: e.key, Name: inline[e.key], Count: e.count}
		if result[i].Name != "" {
			continue
		}

		g.Go(func() error {
			result[i].Name = a.resolveName(ctx, e.key)
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (a *Analyzer) resolveName(ctx context.Context, userID string) string {
	profile, err := a.catalog.UserProfile(ctx, userID)
	if err != nil {
		a.logger.Warn("contributor lookup failed", "user", userID, "error", err)
		return userID
	}

	if name := displayName(profile); name != "" {
		return name
	}
	if profile != nil && profile.ID != "" {
		return profile.ID
	}
	return userID
}

func displayName(c *models.Contributor) string {
	if c == nil || c.DisplayName == nil {
		return ""
	}
	return strings.TrimSpace(*c.DisplayName)
}

// Summarize flattens tracks into listing rows, filling defaults for missing album data and links.
func Summarize(tracks []models.Track) []models.TrackSummary {
	summaries := make([]models.TrackSummary, 0, len(tracks))
	for _, t := range tracks {
		names := make([]string, 0, len(t.Artists))
		for _, artist := range t.Artists {
			names = append(names, artist.Name)
		}

		s := models.TrackSummary{
			Name:        t.Name,
			Artist:      strings.Join(names, ", "),
			Album:       "Unknown Album",
			ReleaseDate: "Unknown Date",
			SpotifyURL:  "#",
		}
		if t.Album != nil && t.Album.Name != "" {
			s.Album = t.Album.Name
		}
		if t.Album != nil && t.Album.ReleaseDate != "" {
			s.ReleaseDate = t.Album.ReleaseDate
		}
		if t.ExternalURL != "" {
			s.SpotifyURL = t.ExternalURL
		}

		summaries = append(summaries, s)
	}
	return summaries
}
