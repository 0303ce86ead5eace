// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package authz

import (
	"context"

	"github.com/nexlayer/nexops/internal/identity"
)

// Principal is a verified identity plus the role resolved for this
// request. It is computed once per request, after credential
// verification, and does not change while the request is in flight.
type Principal struct {
	Identity *identity.Identity
	Role     Role
}

type contextKey struct{}

// WithPrincipal stores the principal in the request context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom extracts the principal set by the authentication
// middleware. The second return is false on unauthenticated paths.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok
}
