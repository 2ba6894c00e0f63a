// Package server exposes the playlist analysis service over HTTP.
//
// # Routing
//
// Routes are served by a chi router. Every request passes through request ids, real-ip detection,
// request logging, panic recovery, CORS and a whole-request timeout.
//
// # Credentials
//
// The /playlist and /me routes require "Authorization: Bearer <token>". The token is placed in the request
// context with [services.WithCredential] and never stored; a request without one is rejected with 401 before
// any handler runs.
//
// # OAuth
//
// /auth/login redirects to the Spotify consent page. /auth/callback exchanges the code and redirects to "/"
// with the tokens in the URL fragment, so they never reach a server log. /auth/refresh_token renews an access
// token for a browser client that holds the refresh token.
//
// # Errors
//
// Failures are written as {"error": "<message>"}. Upstream errors are mapped to status codes with [errors.Is]:
//   - [shared.ErrMissingCredential], [shared.ErrUnauthorized] : 401
//   - [shared.ErrMissingParameter] : 400
//   - [shared.ErrNotFound] : 404
//   - anything else : 500
package server
