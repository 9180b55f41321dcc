// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz implements the authorization engine of the access core.

It derives the effective permission set of an account from its current role
assignments and answers membership questions against it.

# Architecture

  - Identity: the resolved caller attached to a request context.
  - Union: pure set union over (assignments, grants). No I/O.
  - Engine: loads the relations through a [Source] and applies [Union],
    optionally memoised in a [Cache] that is invalidated by an epoch bump.

The request gate that consumes [HasPermission] lives in the platform
middleware package so routes declare their requirements at registration time.
*/
package authz

import "sort"

// # Permission Sets

// PermissionSet is the effective set of permission names of one account.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from names, collapsing duplicates.
func NewPermissionSet(names ...string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether name is in the set. A nil set contains nothing.
func (set PermissionSet) Has(name string) bool {
	if set == nil {
		return false
	}
	_, ok := set[name]
	return ok
}

// Names returns the members in lexical order.
func (set PermissionSet) Names() []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// # Identity

// RoleRef is the summary of a role held by an account.
type RoleRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	AccountID   string
	Email       string
	Username    string
	Roles       []RoleRef
	Permissions PermissionSet
}

// HasPermission is a pure membership test. It returns false when the identity
// or its permission set is absent.
func HasPermission(identity *Identity, name string) bool {
	if identity == nil {
		return false
	}
	return identity.Permissions.Has(name)
}

// RoleNames lists the names of the identity's roles.
func (identity *Identity) RoleNames() []string {
	names := make([]string, 0, len(identity.Roles))
	for _, role := range identity.Roles {
		names = append(names, role.Name)
	}
	return names
}
