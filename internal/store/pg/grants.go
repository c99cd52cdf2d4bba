package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sadco.org/internal/auth"
	"sadco.org/internal/scope"
)

// ClientGrants loads the scope map provisioned for an OAuth2 client.
// A client that is not registered at all is distinguished from one that
// is registered with no scopes: the former is an authorization failure.
func (s *Store) ClientGrants(ctx context.Context, clientID string) (auth.Permissions, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from api_clients where client_id = $1)`, clientID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("pg: client lookup: %w", err)
	}
	if !exists {
		return nil, auth.ErrClientNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`select scope_id, object_ids from client_scopes where client_id = $1`, clientID)
	if err != nil {
		return nil, fmt.Errorf("pg: client scopes: %w", err)
	}
	defer rows.Close()

	perms := auth.Permissions{}
	for rows.Next() {
		var scopeID, objectIDs string
		if err := rows.Scan(&scopeID, &objectIDs); err != nil {
			return nil, fmt.Errorf("pg: client scopes scan: %w", err)
		}
		sc := scope.Scope(scopeID)
		if !scope.IsValid(sc) {
			continue
		}
		perm, err := parsePermission(objectIDs)
		if err != nil {
			return nil, fmt.Errorf("pg: client scope %s: %w", scopeID, err)
		}
		perms[sc] = perm
	}
	return perms, rows.Err()
}

// RoleGrants loads every role-attached grant for a user. Missing users are
// an authorization failure, same as unknown clients.
func (s *Store) RoleGrants(ctx context.Context, userID string) ([]auth.RoleGrant, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from users where user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("pg: user lookup: %w", err)
	}
	if !exists {
		return nil, auth.ErrUserNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		select rs.role_id, rs.scope_id, rs.object_ids
		from user_roles ur
		join role_scopes rs on rs.role_id = ur.role_id
		where ur.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("pg: role grants: %w", err)
	}
	defer rows.Close()

	var grants []auth.RoleGrant
	for rows.Next() {
		var roleID, scopeID, objectIDs string
		if err := rows.Scan(&roleID, &scopeID, &objectIDs); err != nil {
			return nil, fmt.Errorf("pg: role grants scan: %w", err)
		}
		sc := scope.Scope(scopeID)
		if !scope.IsValid(sc) {
			continue
		}
		perm, err := parsePermission(objectIDs)
		if err != nil {
			return nil, fmt.Errorf("pg: role %s scope %s: %w", roleID, scopeID, err)
		}
		grants = append(grants, auth.RoleGrant{Role: roleID, Scope: sc, Grant: perm})
	}
	return grants, rows.Err()
}

// parsePermission decodes the object_ids column: the JSON string "*" for a
// wildcard or a JSON array of survey ids for a finite grant.
func parsePermission(raw string) (auth.Permission, error) {
	var star string
	if err := json.Unmarshal([]byte(raw), &star); err == nil {
		if star == "*" {
			return auth.Wildcard(), nil
		}
		return auth.Permission{}, errors.New("object_ids string must be \"*\"")
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return auth.Permission{}, fmt.Errorf("object_ids: %w", err)
	}
	return auth.ObjectSet(ids...), nil
}
