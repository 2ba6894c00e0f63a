// package models defines the data model for the playlist analysis service
package models

// ArtistRef is an artist as listed on a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album carries the album fields the playlist projection requests.
type Album struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// Contributor is the user who added a track to a playlist.
type Contributor struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name,omitempty"`
}

// Track represents a playlist track after local and unavailable entries have been removed.
type Track struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Artists     []ArtistRef  `json:"artists"`
	Album       *Album       `json:"album,omitempty"`
	ExternalURL string       `json:"external_url,omitempty"`
	AddedBy     *Contributor `json:"added_by,omitempty"`
}

// FirstArtist returns the first listed artist, if any.
func (t Track) FirstArtist() (ArtistRef, bool) {
	if len(t.Artists) == 0 {
		return ArtistRef{}, false
	}
	return t.Artists[0], true
}

// ContributorID returns the id of the user who added the track, or "" when unknown.
func (t Track) ContributorID() string {
	if t.AddedBy == nil {
		return ""
	}
	return t.AddedBy.ID
}

// ArtistDetail holds the genres of one artist.
type ArtistDetail struct {
	ID     string   `json:"id"`
	Genres []string `json:"genres"`
}

// FirstGenre returns the artist's first genre, if any.
func (a ArtistDetail) FirstGenre() (string, bool) {
	if len(a.Genres) == 0 || a.Genres[0] == "" {
		return "", false
	}
	return a.Genres[0], true
}

// Owner is the owner of a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Playlist represents a playlist from the current user's library.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Owner         Owner  `json:"owner"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	TrackTotal    int    `json:"track_total"`
	ImageURL      string `json:"image_url,omitempty"`
	ExternalURL   string `json:"external_url,omitempty"`
}

// TrackSummary is the flattened representation of a [Track] used by track listings.
type TrackSummary struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	SpotifyURL  string `json:"spotify_url"`
}
