package auth

import (
	"context"
	"fmt"
	"strings"

	"sadco.org/internal/scope"
)

// Introspection is the identity provider's verdict on an access token.
type Introspection struct {
	Active   bool
	ClientID string
	Sub      string
}

// Introspector validates an access token against the identity provider.
// Called once per authorized request; a failure surfaces as a request
// failure, never retried here.
type Introspector interface {
	Introspect(ctx context.Context, token string, requiredScopes []scope.Scope) (Introspection, error)
}

// Authorized states that the client (and, for a user-initiated call, the
// user) may use the requested scope for the current request. It is built
// once per request by the Authorizer and never mutated.
//
// Usage of a constrainable scope MAY be limited to a set of object ids. It
// is up to the route handler to enforce any such constraint by calling
// EnforceConstraint with the object ids the request targets.
type Authorized struct {
	ClientID  string
	UserID    string // empty for a client-credentials call
	Scope     scope.Scope
	ObjectIDs Permission
}

// EnforceConstraint checks whether the held grant covers the requested
// object ids. Pass Wildcard() when the handler requires an unconstrained
// grant. Returns ErrForbidden when a finite grant is asked to cover the
// wildcard or does not cover the requested set.
func (a Authorized) EnforceConstraint(requested Permission) error {
	if a.ObjectIDs.IsWildcard() {
		return nil
	}
	if requested.IsWildcard() {
		return ErrForbidden
	}
	if !a.ObjectIDs.Contains(requested) {
		return ErrForbidden
	}
	return nil
}

// Authorizer resolves bearer tokens into Authorized statements.
type Authorizer struct {
	introspector Introspector
	grants       GrantsStore
}

// NewAuthorizer wires the external introspector and the grants store.
func NewAuthorizer(introspector Introspector, grants GrantsStore) *Authorizer {
	return &Authorizer{introspector: introspector, grants: grants}
}

// Authorize validates the Authorization header, introspects the token and
// resolves the caller's permission for the required scope.
//
// Failure modes: ErrUnauthenticated for a missing or non-Bearer credential;
// ErrForbidden for an inactive token or a scope the caller does not hold;
// ErrClientNotFound / ErrUserNotFound when the identity lookup misses.
func (a *Authorizer) Authorize(ctx context.Context, authorizationHeader string, required scope.Scope) (Authorized, error) {
	token, err := extractBearerToken(authorizationHeader)
	if err != nil {
		return Authorized{}, err
	}

	intro, err := a.introspector.Introspect(ctx, token, []scope.Scope{required})
	if err != nil {
		return Authorized{}, fmt.Errorf("introspect token: %w", err)
	}
	if !intro.Active {
		return Authorized{}, ErrForbidden
	}

	clientPerms, err := a.grants.ClientGrants(ctx, intro.ClientID)
	if err != nil {
		return Authorized{}, err
	}

	// sub == client_id means a machine call via a client credentials grant.
	if intro.Sub == intro.ClientID {
		perm, ok := clientPerms[required]
		if !ok {
			return Authorized{}, ErrForbidden
		}
		return Authorized{
			ClientID:  intro.ClientID,
			Scope:     required,
			ObjectIDs: perm,
		}, nil
	}

	// User-initiated call: the effective grant is the intersection of what
	// the client holds with the union of the user's role grants.
	roleGrants, err := a.grants.RoleGrants(ctx, intro.Sub)
	if err != nil {
		return Authorized{}, err
	}
	userPerms := ResolveUserPermissions(clientPerms, roleGrants)
	perm, ok := userPerms[required]
	if !ok {
		return Authorized{}, ErrForbidden
	}
	return Authorized{
		ClientID:  intro.ClientID,
		UserID:    intro.Sub,
		Scope:     required,
		ObjectIDs: perm,
	}, nil
}

const bearerPrefix = "Bearer "

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrUnauthenticated
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return "", ErrUnauthenticated
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
