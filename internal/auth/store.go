package auth

import "context"

// GrantsStore looks up the statically configured scope grants held by API
// clients and the per-role grants held by users. Implemented by the pg store.
type GrantsStore interface {
	// ClientGrants returns the scope grant map configured for a client.
	// Returns ErrClientNotFound for an unknown client id.
	ClientGrants(ctx context.Context, clientID string) (Permissions, error)
	// RoleGrants returns every scope grant contributed by the roles held by
	// a user. Returns ErrUserNotFound for an unknown user id.
	RoleGrants(ctx context.Context, userID string) ([]RoleGrant, error)
}
