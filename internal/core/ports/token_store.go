package ports

import "context"

// TokenStore mints and resolves opaque bearer tokens. Tokens carry no
// caller-interpretable structure; a token is valid until revoked or expired.
// A user may hold any number of live tokens at once.
type TokenStore interface {
	// Mint issues a new token bound to userID and returns the raw value.
	Mint(ctx context.Context, userID string) (string, error)

	// Resolve returns the user id a token is bound to, or
	// domain.ErrUnauthenticated when the token is unknown, revoked or expired.
	Resolve(ctx context.Context, token string) (string, error)

	// Revoke invalidates exactly this token. Revoking an absent or
	// already-revoked token is not an error.
	Revoke(ctx context.Context, token string) error
}
