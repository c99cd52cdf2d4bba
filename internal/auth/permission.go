package auth

import (
	"encoding/json"
	"sort"

	"sadco.org/internal/scope"
)

// Permission is the resolved access grant for a single scope: either the
// wildcard (no object-set restriction) or an explicit, finite set of object
// ids. The wildcard is never represented as a set.
type Permission struct {
	wildcard bool
	ids      map[string]struct{}
}

// Wildcard returns the unconstrained grant.
func Wildcard() Permission {
	return Permission{wildcard: true}
}

// ObjectSet returns a grant limited to the given object ids. An empty id
// list yields a valid grant that matches nothing.
func ObjectSet(ids ...string) Permission {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return Permission{ids: set}
}

// IsWildcard reports whether the grant is unconstrained.
func (p Permission) IsWildcard() bool { return p.wildcard }

// ObjectIDs returns the sorted object ids of a finite grant, nil for the
// wildcard.
func (p Permission) ObjectIDs() []string {
	if p.wildcard || len(p.ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether every object id of q is covered by p. The
// wildcard covers everything; a finite set never covers the wildcard.
func (p Permission) Contains(q Permission) bool {
	if p.wildcard {
		return true
	}
	if q.wildcard {
		return false
	}
	for id := range q.ids {
		if _, ok := p.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Union widens p by q: wildcard ∪ anything = wildcard, set ∪ set = set union.
func (p Permission) Union(q Permission) Permission {
	if p.wildcard || q.wildcard {
		return Wildcard()
	}
	set := make(map[string]struct{}, len(p.ids)+len(q.ids))
	for id := range p.ids {
		set[id] = struct{}{}
	}
	for id := range q.ids {
		set[id] = struct{}{}
	}
	return Permission{ids: set}
}

// Intersect narrows p by q: the wildcard imposes no restriction, two finite
// sets intersect element-wise.
func (p Permission) Intersect(q Permission) Permission {
	if p.wildcard {
		return q
	}
	if q.wildcard {
		return p
	}
	set := make(map[string]struct{})
	for id := range p.ids {
		if _, ok := q.ids[id]; ok {
			set[id] = struct{}{}
		}
	}
	return Permission{ids: set}
}

// MarshalJSON renders the wildcard as "*" and a finite grant as a sorted id
// array, the representation stored in grant rows and audit parameters.
func (p Permission) MarshalJSON() ([]byte, error) {
	if p.wildcard {
		return json.Marshal("*")
	}
	ids := p.ObjectIDs()
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON accepts "*" or an id array.
func (p *Permission) UnmarshalJSON(data []byte) error {
	var star string
	if err := json.Unmarshal(data, &star); err == nil {
		if star == "*" {
			*p = Wildcard()
			return nil
		}
		*p = ObjectSet(star)
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*p = ObjectSet(ids...)
	return nil
}

// Permissions maps each granted scope to its resolved grant.
type Permissions map[scope.Scope]Permission

// RoleGrant is one scope grant contributed by a role held by a user.
type RoleGrant struct {
	Role  string
	Scope scope.Scope
	Grant Permission
}

// ResolveUserPermissions computes the effective permission map for a user
// calling through a client. Per scope, the grants of all the user's roles
// are unioned first, then intersected with the client's grant. A scope the
// client does not hold can never be granted to the user, regardless of what
// the roles say.
func ResolveUserPermissions(client Permissions, roles []RoleGrant) Permissions {
	combined := Permissions{}
	for _, rg := range roles {
		if _, ok := client[rg.Scope]; !ok {
			continue
		}
		if base, ok := combined[rg.Scope]; ok {
			combined[rg.Scope] = base.Union(rg.Grant)
		} else {
			combined[rg.Scope] = rg.Grant
		}
	}

	effective := Permissions{}
	for sc, rolePerm := range combined {
		effective[sc] = client[sc].Intersect(rolePerm)
	}
	return effective
}
