// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package authz implements the access policy layer: role resolution for
// verified identities, a Casbin RBAC gate over (role, resource, action)
// tuples, and record-scoped checks that narrow access to owned or
// assigned records.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resource types used in policy rules.
const (
	ResourceRequest = "request"
	ResourceProject = "project"
	ResourceTask    = "task"
	ResourceReport  = "report"
	ResourceMessage = "message"
	ResourceUser    = "user"
)

// Actions used in policy rules.
const (
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionApprove = "approve"
	ActionAssign  = "assign"
	ActionList    = "list"
)

// Enforcer is the role/resource/action gate. It answers the coarse
// question "may this role act on this resource type at all"; the
// record-scoped policy engine answers the rest.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer creates an enforcer from the embedded model and policy, or
// from policyPath when one is provided and exists on disk.
func NewEnforcer(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if policyPath != "" {
		adapter := fileadapter.NewAdapter(policyPath)
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

// Enforce checks whether the role may perform action on the resource type.
func (e *Enforcer) Enforce(role Role, resource, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(string(role), resource, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// Require is Enforce that turns a denial into a ForbiddenError.
func (e *Enforcer) Require(role Role, resource, action string) error {
	allowed, err := e.Enforce(role, resource, action)
	if err != nil {
		return err
	}
	if !allowed {
		return Forbidden(fmt.Sprintf("role %s may not %s %s", role, action, resource))
	}
	return nil
}
