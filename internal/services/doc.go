// Package services implements the upstream clients behind tally.
//
// # Spotify Web API
//
// [SpotifyClient] issues bearer-authorized GETs. It never stores a user token: the caller's credential travels in
// the request context ([WithCredential]) and is read back on every call. Responses are categorized into the shared
// sentinel errors:
//   - 401 : [shared.ErrUnauthorized]
//   - 404 : [shared.ErrNotFound]
//   - anything else, including transport and decode failures : [shared.ErrUpstream]
//
// Paged collections are walked by [Paginate], which follows each page's next link until it is null.
// Outbound calls share one [rate.Limiter] so fan-out stays under the upstream's request budget.
//
// # Spotify Accounts
//
// [TokenManager] wraps [oauth2.Config] for the authorization-code flow: building the login URL,
// exchanging codes and refreshing tokens.
package services
