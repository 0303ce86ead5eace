// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package identity resolves opaque bearer credentials into verified
// identities. The identity provider is external; this package only
// verifies what it minted and never issues or rotates tokens.
package identity

import (
	"context"
	"errors"
)

// Standard verification errors. Every cause collapses to a uniform
// "invalid credentials" signal at the HTTP boundary; the distinction
// exists for internal logging only.
var (
	// ErrNoCredentials indicates no bearer token was provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates the token failed verification.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates the token has expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Identity is a verified principal, immutable for the lifetime of one
// request. Role is deliberately absent: it is derived per request by the
// role resolver, never stored here by the caller.
type Identity struct {
	// SubjectID is the opaque, stable, provider-assigned identifier.
	SubjectID string

	// Email is the provider-claimed email address, if any.
	Email string

	// DisplayName is the provider-claimed display name, if any.
	DisplayName string

	// EmbeddedRole is a role attribute embedded into the credential by a
	// prior administrative action. Empty when the credential carries none.
	EmbeddedRole string
}

// Verifier turns an opaque bearer string into a verified Identity.
// Verification failure is always terminal for the request; there is no
// retry path.
type Verifier interface {
	Verify(ctx context.Context, bearer string) (*Identity, error)
}
