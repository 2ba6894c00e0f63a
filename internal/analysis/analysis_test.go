package analysis

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	tu "github.com/desertthunder/tally/internal/testing"
)

// fakeCatalog serves canned tracks, artists and profiles and records the lookups made.
type fakeCatalog struct {
	tracks      []models.Track
	tracksErr   error
	genres      map[string][]string
	failArtists map[string]bool
	profiles    map[string]*models.Contributor

	mu           sync.Mutex
	batches      [][]string
	profileCalls []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if f.tracksErr != nil {
		return nil, f.tracksErr
	}
	return f.tracks, nil
}

func (f *fakeCatalog) SeveralArtists(ctx context.Context, ids []string) ([]models.ArtistDetail, error) {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), ids...))
	f.mu.Unlock()

	var details []models.ArtistDetail
	for _, id := range ids {
		if f.failArtists[id] {
			return nil, fmt.Errorf("%w: status 502", shared.ErrUpstream)
		}
		if genres, ok := f.genres[id]; ok {
			details = append(details, models.ArtistDetail{ID: id, Genres: genres})
		}
	}
	return details, nil
}

func (f *fakeCatalog) UserProfile(ctx context.Context, userID string) (*models.Contributor, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.profileCalls = append(f.profileCalls, userID)
	f.mu.Unlock()

	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, userID)
	}
	return p, nil
}

func track(id string, artists []models.ArtistRef, addedBy *models.Contributor) models.Track {
	return models.Track{ID: id, Name: "Track " + id, Artists: artists, AddedBy: addedBy}
}

func artist(id, name string) models.ArtistRef { return models.ArtistRef{ID: id, Name: name} }

func user(id string, name *string) *models.Contributor {
	return &models.Contributor{ID: id, DisplayName: name}
}

func newTestAnalyzer(c *fakeCatalog, opts AnalyzerOpts) *Analyzer {
	opts.Logger = shared.NewLogger(&tu.FWriter{})
	return NewAnalyzer(c, opts)
}

func TestAnalyze(t *testing.T) {
	t.Run("Repeated Artist Scenario", func(t *testing.T) {
		a, b := artist("A", "Artist A"), artist("B", "Artist B")
		catalog := &fakeCatalog{
			tracks: []models.Track{
				track("1", []models.ArtistRef{a}, user("u1", tu.Ptr("Ann"))),
				track("2", []models.ArtistRef{b}, user("u1", tu.Ptr("Ann"))),
				track("3", []models.ArtistRef{a}, user("u2", tu.Ptr("Bob"))),
			},
			genres: map[string][]string{"A": {"pop"}, "B": {"rock"}},
		}

		result, err := newTestAnalyzer(catalog, AnalyzerOpts{}).Analyze(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		wantGenres := []GenreCount{{Genre: "pop", Count: 2}, {Genre: "rock", Count: 1}}
		if !reflect.DeepEqual(result.Genres, wantGenres) {
			t.Errorf("expected genres %v, got %v", wantGenres, result.Genres)
		}

		wantArtists := []ArtistCount{{Artist: "Artist A", Count: 2}, {Artist: "Artist B", Count: 1}}
		if !reflect.DeepEqual(result.Artists, wantArtists) {
			t.Errorf("expected artists %v, got %v", wantArtists, result.Artists)
		}

		wantContributors := []ContributorCount{{ID: "u1", Name: "Ann", Count: 2}, {ID: "u2", Name: "Bob", Count: 1}}
		if !reflect.DeepEqual(result.Contributors, wantContributors) {
			t.Errorf("expected contributors %v, got %v", wantContributors, result.Contributors)
		}

		if len(catalog.batches) != 1 || !reflect.DeepEqual(catalog.batches[0], []string{"A", "B"}) {
			t.Errorf("expected a single batch of unique first artists, got %v", catalog.batches)
		}
	})

	t.Run("Track Fetch Failure Aborts", func(t *testing.T) {
		catalog := &fakeCatalog{tracksErr: fmt.Errorf("%w: status 401", shared.ErrUnauthorized)}
		analyzer := newTestAnalyzer(catalog, AnalyzerOpts{})

		result, err := analyzer.Analyze(context.Background(), "p1")
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if result != nil {
			t.Errorf("expected no result, got %+v", result)
		}

		if _, err := analyzer.Contributors(context.Background(), "p1"); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized from Contributors, got %v", err)
		}
		if _, err := analyzer.Tracks(context.Background(), "p1"); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized from Tracks, got %v", err)
		}
		if len(catalog.batches) != 0 || len(catalog.profileCalls) != 0 {
			t.Error("expected no enrichment lookups after a failed fetch")
		}
	})

	t.Run("Tally Sums", func(t *testing.T) {
		var tracks []models.Track
		genres := map[string][]string{}
		for i := range 40 {
			first := fmt.Sprintf("a%d", i%7)
			artists := []models.ArtistRef{artist(first, "Name "+first)}
			for j := range i % 3 {
				id := fmt.Sprintf("f%d", j)
				artists = append(artists, artist(id, "Name "+id))
			}
			if i%5 != 0 {
				genres[first] = []string{fmt.Sprintf("genre-%d", i%4)}
			}

			var addedBy *models.Contributor
			if i%6 != 0 {
				addedBy = user(fmt.Sprintf("u%d", i%4), nil)
			}
			tracks = append(tracks, track(fmt.Sprint(i), artists, addedBy))
		}

		catalog := &fakeCatalog{tracks: tracks, genres: genres, profiles: map[string]*models.Contributor{}}
		result, err := newTestAnalyzer(catalog, AnalyzerOpts{}).Analyze(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		genreSum, artistSum, contributorSum := 0, 0, 0
		for _, g := range result.Genres {
			genreSum += g.Count
		}
		for _, a := range result.Artists {
			artistSum += a.Count
		}
		for _, c := range result.Contributors {
			contributorSum += c.Count
		}

		wantArtists, wantContributors := 0, 0
		for _, tr := range tracks {
			wantArtists += len(tr.Artists)
			if tr.ContributorID() != "" {
				wantContributors++
			}
		}

		if genreSum > len(tracks) {
			t.Errorf("genre sum %d exceeds track count %d", genreSum, len(tracks))
		}
		if artistSum != wantArtists {
			t.Errorf("expected artist sum %d, got %d", wantArtists, artistSum)
		}
		if contributorSum != wantContributors {
			t.Errorf("expected contributor sum %d, got %d", wantContributors, contributorSum)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		catalog := &fakeCatalog{
			tracks: []models.Track{
				track("1", []models.ArtistRef{artist("c", "C")}, user("u3", nil)),
				track("2", []models.ArtistRef{artist("b", "B")}, user("u2", nil)),
				track("3", []models.ArtistRef{artist("a", "A")}, user("u1", nil)),
			},
			genres:   map[string][]string{"a": {"jazz"}, "b": {"folk"}, "c": {"soul"}},
			profiles: map[string]*models.Contributor{},
		}
		analyzer := newTestAnalyzer(catalog, AnalyzerOpts{})

		first, err := analyzer.Analyze(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := analyzer.Analyze(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected identical results, got %+v and %+v", first, second)
		}

		wantGenres := []GenreCount{{"soul", 1}, {"folk", 1}, {"jazz", 1}}
		if !reflect.DeepEqual(first.Genres, wantGenres) {
			t.Errorf("expected ties in first-seen order %v, got %v", wantGenres, first.Genres)
		}

		wantIDs := []string{"u3", "u2", "u1"}
		for i, c := range first.Contributors {
			if c.ID != wantIDs[i] {
				t.Errorf("contributor %d: expected %s, got %s", i, wantIDs[i], c.ID)
			}
		}
	})
}

func TestGenreCounts(t *testing.T) {
	t.Run("Failed Lookup Leaves Other Artist Intact", func(t *testing.T) {
		catalog := &fakeCatalog{
			tracks: []models.Track{
				track("1", []models.ArtistRef{artist("good", "Good")}, nil),
				track("2", []models.ArtistRef{artist("bad", "Bad")}, nil),
				track("3", []models.ArtistRef{artist("good", "Good")}, nil),
			},
			genres:      map[string][]string{"good": {"indie"}, "bad": {"metal"}},
			failArtists: map[string]bool{"bad": true},
		}

		analyzer := newTestAnalyzer(catalog, AnalyzerOpts{BatchSize: 1})
		got := analyzer.GenreCounts(context.Background(), catalog.tracks)

		want := []GenreCount{{Genre: "indie", Count: 2}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Unresolved Artist Excluded", func(t *testing.T) {
		catalog := &fakeCatalog{genres: map[string][]string{"known": {"house"}, "bare": {}}}
		tracks := []models.Track{
			track("1", []models.ArtistRef{artist("known", "Known")}, nil),
			track("2", []models.ArtistRef{artist("missing", "Missing")}, nil),
			track("3", []models.ArtistRef{artist("bare", "Bare")}, nil),
			track("4", nil, nil),
		}

		got := newTestAnalyzer(catalog, AnalyzerOpts{}).GenreCounts(context.Background(), tracks)
		want := []GenreCount{{Genre: "house", Count: 1}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Only First Artist First Genre", func(t *testing.T) {
		catalog := &fakeCatalog{genres: map[string][]string{"lead": {"trip hop", "electronica"}, "feat": {"rap"}}}
		tracks := []models.Track{
			track("1", []models.ArtistRef{artist("lead", "Lead"), artist("feat", "Feat")}, nil),
		}

		got := newTestAnalyzer(catalog, AnalyzerOpts{}).GenreCounts(context.Background(), tracks)
		want := []GenreCount{{Genre: "trip hop", Count: 1}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if len(catalog.batches) != 1 || len(catalog.batches[0]) != 1 {
			t.Errorf("expected only the first artist to be looked up, got %v", catalog.batches)
		}
	})

	t.Run("Batches Of Fifty", func(t *testing.T) {
		var tracks []models.Track
		for i := range 120 {
			tracks = append(tracks, track(fmt.Sprint(i), []models.ArtistRef{artist(fmt.Sprintf("a%d", i), "A")}, nil))
		}

		catalog := &fakeCatalog{genres: map[string][]string{}}
		newTestAnalyzer(catalog, AnalyzerOpts{BatchSize: 500}).GenreCounts(context.Background(), tracks)

		if len(catalog.batches) != 3 {
			t.Fatalf("expected 3 batches, got %d", len(catalog.batches))
		}
		for i, want := range []int{50, 50, 20} {
			if len(catalog.batches[i]) != want {
				t.Errorf("batch %d: expected %d ids, got %d", i, want, len(catalog.batches[i]))
			}
		}
	})
}

func TestArtistCounts(t *testing.T) {
	tracks := []models.Track{
		track("1", []models.ArtistRef{artist("x", "X"), artist("y", "Y")}, nil),
		track("2", []models.ArtistRef{artist("y", "Y")}, nil),
		track("3", []models.ArtistRef{artist("z", "Z")}, nil),
	}

	got := ArtistCounts(tracks)
	want := []ArtistCount{{Artist: "Y", Count: 2}, {Artist: "X", Count: 1}, {Artist: "Z", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got := ArtistCounts(nil); len(got) != 0 {
		t.Errorf("expected empty tally, got %v", got)
	}
}

func TestContributorCounts(t *testing.T) {
	t.Run("Name Resolution", func(t *testing.T) {
		catalog := &fakeCatalog{
			profiles: map[string]*models.Contributor{
				"named":    user("named", tu.Ptr("Profile Name")),
				"nameless": user("nameless", nil),
			},
		}
		tracks := []models.Track{
			track("1", nil, user("inline", tu.Ptr("Inline Name"))),
			track("2", nil, user("named", nil)),
			track("3", nil, user("nameless", tu.Ptr(""))),
			track("4", nil, user("ghost", nil)),
			track("5", nil, nil),
			track("6", nil, user("inline", nil)),
		}

		got := newTestAnalyzer(catalog, AnalyzerOpts{}).ContributorCounts(context.Background(), tracks)
		want := []ContributorCount{
			{ID: "inline", Name: "Inline Name", Count: 2},
			{ID: "named", Name: "Profile Name", Count: 1},
			{ID: "nameless", Name: "nameless", Count: 1},
			{ID: "ghost", Name: "ghost", Count: 1},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}

		for _, id := range catalog.profileCalls {
			if id == "inline" {
				t.Error("expected no profile lookup for a contributor with an inline name")
			}
		}
		if len(catalog.profileCalls) != 3 {
			t.Errorf("expected 3 profile lookups, got %v", catalog.profileCalls)
		}
	})

	t.Run("Lookup Concurrency Bounded", func(t *testing.T) {
		catalog := &fakeCatalog{profiles: map[string]*models.Contributor{}}
		var tracks []models.Track
		for i := range 20 {
			tracks = append(tracks, track(fmt.Sprint(i), nil, user(fmt.Sprintf("u%d", i), nil)))
		}

		got := newTestAnalyzer(catalog, AnalyzerOpts{LookupConcurrency: 3}).ContributorCounts(context.Background(), tracks)
		if len(got) != 20 {
			t.Fatalf("expected 20 contributors, got %d", len(got))
		}
		if m := catalog.maxInFlight.Load(); m > 3 {
			t.Errorf("expected at most 3 concurrent lookups, got %d", m)
		}
		for i, c := range got {
			if c.Name != c.ID {
				t.Errorf("contributor %d: expected fallback to id, got %q", i, c.Name)
			}
		}
	})
}

func TestSummarize(t *testing.T) {
	tracks := []models.Track{
		{
			Name:        "Full",
			Artists:     []models.ArtistRef{artist("a", "A"), artist("b", "B")},
			Album:       &models.Album{Name: "Record", ReleaseDate: "1999-09-09"},
			ExternalURL: "https://open.spotify.com/track/full",
		},
		{Name: "Bare"},
	}

	got := Summarize(tracks)
	want := []models.TrackSummary{
		{Name: "Full", Artist: "A, B", Album: "Record", ReleaseDate: "1999-09-09", SpotifyURL: "https://open.spotify.com/track/full"},
		{Name: "Bare", Artist: "", Album: "Unknown Album", ReleaseDate: "Unknown Date", SpotifyURL: "#"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
