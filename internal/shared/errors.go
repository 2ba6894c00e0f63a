package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing client credentials")

	// Request errors
	ErrMissingCredential = fmt.Errorf("access token missing")
	ErrMissingParameter  = fmt.Errorf("missing required parameter")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")

	// Upstream errors
	ErrUnauthorized  = fmt.Errorf("unauthorized: access token expired or invalid")
	ErrNotFound      = fmt.Errorf("resource not found")
	ErrUpstream      = fmt.Errorf("upstream request failed")
	ErrTokenExchange = fmt.Errorf("token exchange failed")
)
