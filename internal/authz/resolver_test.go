// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/identity"
	"github.com/nexlayer/nexops/internal/models"
)

type fakeDirectory struct {
	records map[string]*models.UserRecord
	err     error
}

func (d *fakeDirectory) Lookup(_ context.Context, subjectID string) (*models.UserRecord, error) {
	if d.err != nil {
		return nil, d.err
	}
	if r, ok := d.records[subjectID]; ok {
		return r, nil
	}
	return nil, docstore.ErrNotFound
}

func TestResolver_Resolve(t *testing.T) {
	directory := &fakeDirectory{records: map[string]*models.UserRecord{
		"sub-member": {Role: "member"},
		"sub-junk":   {Role: "superuser"},
	}}
	resolver := NewResolver(directory, []string{"boss@nexlayer.io"})

	tests := []struct {
		name     string
		id       *identity.Identity
		fallback Role
		want     Role
	}{
		{
			name:     "embedded role wins over record",
			id:       &identity.Identity{SubjectID: "sub-member", EmbeddedRole: "owner"},
			fallback: RoleClient,
			want:     RoleOwner,
		},
		{
			name:     "embedded role is case insensitive",
			id:       &identity.Identity{SubjectID: "sub-x", EmbeddedRole: "Member"},
			fallback: RoleClient,
			want:     RoleMember,
		},
		{
			name:     "record role used when no embedded role",
			id:       &identity.Identity{SubjectID: "sub-member"},
			fallback: RoleClient,
			want:     RoleMember,
		},
		{
			name:     "unknown record role falls through",
			id:       &identity.Identity{SubjectID: "sub-junk"},
			fallback: RoleClient,
			want:     RoleClient,
		},
		{
			name:     "admin email wins over fallback",
			id:       &identity.Identity{SubjectID: "sub-x", Email: "boss@nexlayer.io"},
			fallback: RoleClient,
			want:     RoleOwner,
		},
		{
			name:     "admin email match is case insensitive",
			id:       &identity.Identity{SubjectID: "sub-x", Email: "Boss@NexLayer.io"},
			fallback: RoleClient,
			want:     RoleOwner,
		},
		{
			name:     "record role wins over admin email",
			id:       &identity.Identity{SubjectID: "sub-member", Email: "boss@nexlayer.io"},
			fallback: RoleClient,
			want:     RoleMember,
		},
		{
			name:     "fallback when nothing matches",
			id:       &identity.Identity{SubjectID: "sub-x", Email: "nobody@example.com"},
			fallback: RoleClient,
			want:     RoleClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(context.Background(), tt.id, tt.fallback)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Resolve_DirectoryFailure(t *testing.T) {
	directory := &fakeDirectory{err: errors.New("store unavailable")}
	resolver := NewResolver(directory, []string{"boss@nexlayer.io"})

	// A failing directory degrades to the later sources instead of
	// failing resolution.
	got := resolver.Resolve(context.Background(), &identity.Identity{
		SubjectID: "sub-x",
		Email:     "boss@nexlayer.io",
	}, RoleClient)
	assert.Equal(t, RoleOwner, got)

	got = resolver.Resolve(context.Background(), &identity.Identity{
		SubjectID: "sub-x",
		Email:     "nobody@example.com",
	}, RoleClient)
	assert.Equal(t, RoleClient, got)
}

func TestResolver_Resolve_Idempotent(t *testing.T) {
	directory := &fakeDirectory{records: map[string]*models.UserRecord{
		"sub-member": {Role: "member"},
	}}
	resolver := NewResolver(directory, nil)

	id := &identity.Identity{SubjectID: "sub-member"}
	first := resolver.Resolve(context.Background(), id, RoleClient)
	second := resolver.Resolve(context.Background(), id, RoleClient)
	assert.Equal(t, first, second)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"owner", RoleOwner, true},
		{"member", RoleMember, true},
		{"client", RoleClient, true},
		{"OWNER", RoleOwner, true},
		{"  member  ", RoleMember, true},
		{"", "", false},
		{"admin", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
