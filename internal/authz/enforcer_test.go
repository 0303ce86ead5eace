// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e, err := NewEnforcer("")
	require.NoError(t, err)

	tests := []struct {
		role     Role
		resource string
		action   string
		want     bool
	}{
		{RoleOwner, ResourceRequest, ActionApprove, true},
		{RoleOwner, ResourceProject, ActionCreate, true},
		{RoleOwner, ResourceUser, ActionList, true},

		{RoleClient, ResourceRequest, ActionCreate, true},
		{RoleClient, ResourceProject, ActionRead, true},
		{RoleClient, ResourceTask, ActionRead, true},
		{RoleClient, ResourceMessage, ActionCreate, true},
		{RoleClient, ResourceRequest, ActionApprove, false},
		{RoleClient, ResourceProject, ActionUpdate, false},
		{RoleClient, ResourceReport, ActionRead, false},
		{RoleClient, ResourceUser, ActionList, false},

		{RoleMember, ResourceRequest, ActionCreate, true},
		{RoleMember, ResourceProject, ActionRead, true},
		{RoleMember, ResourceProject, ActionUpdate, true},
		{RoleMember, ResourceTask, ActionUpdate, true},
		{RoleMember, ResourceReport, ActionCreate, true},
		{RoleMember, ResourceProject, ActionCreate, false},
		{RoleMember, ResourceRequest, ActionApprove, false},
		{RoleMember, ResourceReport, ActionList, false},
		{RoleMember, ResourceUser, ActionList, false},
	}

	for _, tt := range tests {
		got, err := e.Enforce(tt.role, tt.resource, tt.action)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s %s", tt.role, tt.action, tt.resource)
	}
}

func TestEnforcer_Require(t *testing.T) {
	e, err := NewEnforcer("")
	require.NoError(t, err)

	assert.NoError(t, e.Require(RoleOwner, ResourceProject, ActionAssign))

	err = e.Require(RoleClient, ResourceRequest, ActionApprove)
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
}
