// Package models defines the request-scoped domain records the tally service works with.
//
// Records are built once from upstream responses by the services package and never mutated afterwards:
//   - [Track] : a playlist entry with its ordered artists, album, link and the contributor who added it
//   - [ArtistDetail] : genre enrichment for one artist id
//   - [Playlist] : a playlist owned or followed by the current user
//   - [TrackSummary] : the flattened row returned by the tracks endpoint
//
// Upstream fields that may be absent are pointers ([Track.AddedBy], [Contributor.DisplayName]).
// Defaults for them are resolved in one place, the analysis package.
package models
