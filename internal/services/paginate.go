package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/tally/internal/shared"
)

// page is the envelope shared by every paged Spotify collection.
type page[T any] struct {
	Items []T     `json:"items"`
	Next  *string `json:"next"`
}

// Paginate fetches startURL and follows each page's next link until it is null, keeping the items for which keep
// returns true in the order the upstream returned them.
//
// An error on any page aborts the whole walk; no partial result is returned.
func Paginate[T any](ctx context.Context, s *SpotifyClient, startURL string, keep func(T) bool) ([]T, error) {
	var (
		items []T
		seen  = map[string]bool{}
		next  = startURL
	)

	for n := 1; next != ""; n++ {
		if seen[next] {
			return nil, fmt.Errorf("%w: pagination loop at %s", shared.ErrUpstream, next)
		}
		seen[next] = true

		s.logger.Debug("fetching page", "page", n, "url", next)

		var p page[T]
		if err := s.getJSON(ctx, next, &p); err != nil {
			return nil, err
		}

		for _, item := range p.Items {
			if keep == nil || keep(item) {
				items = append(items, item)
			}
		}

		next = ""
		if p.Next != nil {
			next = *p.Next
		}
	}

	return items, nil
}
