// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package authz

import "strings"

// Role is one of the three access levels recognized by the system.
type Role string

const (
	// RoleOwner has unrestricted access to every resource.
	RoleOwner Role = "owner"

	// RoleMember is staff: operational access scoped to assigned projects.
	RoleMember Role = "member"

	// RoleClient is an external customer: access scoped to own records.
	RoleClient Role = "client"
)

// ParseRole normalizes a raw role string. Unknown or empty values return
// false; callers fall through to the next source in the trust chain.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOwner:
		return RoleOwner, true
	case RoleMember:
		return RoleMember, true
	case RoleClient:
		return RoleClient, true
	default:
		return "", false
	}
}

// IsValid reports whether r is one of the recognized roles.
func (r Role) IsValid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}
