// Package analysis computes playlist statistics from a fully fetched track list.
//
// # Tallies
//
// [Analyzer.Analyze] runs three independent reducers over the tracks:
//   - Genres: one genre per track at most, the first genre of the first listed artist.
//     Artist details are looked up in batches of [services.MaxArtistIDs].
//   - Artists: every artist on every track, keyed by name.
//   - Contributors: tracks grouped by the id of the user who added them. Names come from the playlist
//     item when present, otherwise from a profile lookup, otherwise the raw id.
//
// Every tally is sorted by descending count; ties keep the order in which keys were first seen, so
// re-running on the same tracks yields the same output.
//
// # Failures
//
// Fetching the track list is all-or-nothing and its error is returned unchanged. Enrichment lookups
// (artist batches, profiles) never fail the analysis: the affected entries fall back and a warning is logged.
package analysis
