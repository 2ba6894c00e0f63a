package services

import (
	"context"
	"strings"
)

type credentialKey struct{}

// WithCredential returns a copy of ctx carrying the caller's bearer credential.
//
// Every upstream call made with the returned context is authorized with this token.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

// CredentialFrom returns the bearer credential stored in ctx by [WithCredential].
func CredentialFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey{}).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// BearerToken extracts the token from an Authorization header value of the form "Bearer <token>".
//
// The scheme is matched case-insensitively; anything else yields "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
