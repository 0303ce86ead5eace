// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/identity"
	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/models"
)

// UserDirectory looks up the persisted record for a verified identity.
// A missing record is reported as docstore.ErrNotFound, not an error.
type UserDirectory interface {
	Lookup(ctx context.Context, subjectID string) (*models.UserRecord, error)
}

// Resolver derives the effective role for a verified identity. Sources
// are consulted in trust order and the first usable one wins:
//
//  1. role embedded in the credential by a prior administrative action
//  2. role on the persisted user record
//  3. admin allow-list match on the identity's email
//  4. the caller-supplied default
//
// Resolution never mutates any store, so resolving the same identity
// twice in one request yields the same role.
type Resolver struct {
	directory   UserDirectory
	adminEmails map[string]struct{}
}

// NewResolver creates a resolver over the given directory and the
// configured admin email allow-list.
func NewResolver(directory UserDirectory, adminEmails []string) *Resolver {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Resolver{directory: directory, adminEmails: admins}
}

// Resolve returns the effective role for id. Directory errors other than
// not-found degrade to the later sources rather than failing the request;
// authorization stays available when the directory is not.
func (r *Resolver) Resolve(ctx context.Context, id *identity.Identity, fallback Role) Role {
	if role, ok := ParseRole(id.EmbeddedRole); ok {
		return role
	}

	if r.directory != nil {
		record, err := r.directory.Lookup(ctx, id.SubjectID)
		switch {
		case err == nil:
			if role, ok := ParseRole(record.Role); ok {
				return role
			}
		case !errors.Is(err, docstore.ErrNotFound):
			logging.Warn().
				Err(err).
				Str("subject", id.SubjectID).
				Msg("user directory lookup failed, continuing role resolution")
		}
	}

	if _, ok := r.adminEmails[strings.ToLower(id.Email)]; ok && id.Email != "" {
		return RoleOwner
	}

	return fallback
}

// StoreDirectory is a UserDirectory over the users collection.
type StoreDirectory struct {
	users docstore.Collection
}

// NewStoreDirectory creates a directory backed by the document store.
func NewStoreDirectory(store docstore.Store) *StoreDirectory {
	return &StoreDirectory{users: store.Collection(models.CollectionUsers)}
}

// Lookup fetches the user record keyed by the provider-assigned subject ID.
func (d *StoreDirectory) Lookup(ctx context.Context, subjectID string) (*models.UserRecord, error) {
	var record models.UserRecord
	if err := d.users.Get(ctx, subjectID, &record); err != nil {
		return nil, err
	}
	record.ID = subjectID
	return &record, nil
}
