// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/models"
)

// Denial reasons returned to callers. They distinguish "your role cannot
// do this at all" from "the record is not in your scope" without leaking
// anything about the record itself.
const (
	ReasonRoleDenied  = "insufficient role"
	ReasonNotAssigned = "not assigned to this project"
	ReasonNotOwner    = "not the owner of this record"
	ReasonFieldDenied = "field not permitted for this role"
)

// Policy is the record-scoped access engine. The Casbin enforcer gates on
// (role, resource, action); Policy narrows the surviving requests to the
// records the principal may actually touch. Existence is always settled
// before access, so a missing record yields ErrNotFound even for callers
// who would have been denied.
type Policy struct {
	enforcer *Enforcer
	projects docstore.Collection
	tasks    docstore.Collection
}

// NewPolicy creates the policy engine over the enforcer and store.
func NewPolicy(enforcer *Enforcer, store docstore.Store) *Policy {
	return &Policy{
		enforcer: enforcer,
		projects: store.Collection(models.CollectionProjects),
		tasks:    store.Collection(models.CollectionTasks),
	}
}

// Enforcer exposes the coarse role gate for handlers that need it directly.
func (p *Policy) Enforcer() *Enforcer {
	return p.enforcer
}

// GetProject fetches a project and settles existence before any access
// decision is taken against it.
func (p *Policy) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := p.projects.Get(ctx, id, &project); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch project: %w", err)
	}
	project.ID = id
	return &project, nil
}

// ProjectScope returns the query that limits a project listing to the
// principal's visibility: owners see everything, members see assigned
// projects, clients see their own.
func (p *Policy) ProjectScope(pr *Principal) docstore.Query {
	switch pr.Role {
	case RoleOwner:
		return docstore.NewQuery()
	case RoleMember:
		return docstore.NewQuery().Where("assignedMembers", docstore.OpArrayContains, pr.Identity.Email)
	default:
		return docstore.NewQuery().Where("clientId", docstore.OpEqual, pr.Identity.SubjectID)
	}
}

// CanAccessProject reports whether the principal may read the given
// project record.
func (p *Policy) CanAccessProject(pr *Principal, project *models.Project) bool {
	switch pr.Role {
	case RoleOwner:
		return true
	case RoleMember:
		return project.IsAssigned(pr.Identity.Email)
	default:
		return project.ClientID == pr.Identity.SubjectID
	}
}

// AuthorizeProjectPatch decides whether the principal may apply the given
// field set to the project. Owners may change anything; assigned members
// may change progress and nothing else.
func (p *Policy) AuthorizeProjectPatch(pr *Principal, project *models.Project, fields map[string]any) error {
	if err := p.enforcer.Require(pr.Role, ResourceProject, ActionUpdate); err != nil {
		return err
	}
	if pr.Role == RoleOwner {
		return nil
	}

	if !project.IsAssigned(pr.Identity.Email) {
		return Forbidden(ReasonNotAssigned)
	}
	for field := range fields {
		if field != "progress" {
			return Forbidden(ReasonFieldDenied)
		}
	}
	return nil
}

// AssignedProjectIDs returns the IDs of every project the principal is
// assigned to as a working member. Owners get a nil slice, meaning
// unscoped. Client ownership of a project does not count as assignment,
// so clients always resolve to an empty set.
func (p *Policy) AssignedProjectIDs(ctx context.Context, pr *Principal) ([]string, error) {
	if pr.Role == RoleOwner {
		return nil, nil
	}
	if pr.Identity.Email == "" {
		return []string{}, nil
	}

	q := docstore.NewQuery().Where("assignedMembers", docstore.OpArrayContains, pr.Identity.Email)
	docs, err := p.projects.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list assigned projects: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// TasksFor lists the tasks visible to the principal. Non-owners see tasks
// in projects they are assigned to; an empty assignment set short-circuits
// to no tasks without touching the store, which is how clients always land
// on an empty list. Membership queries are batched to respect the store's
// in-clause limit.
func (p *Policy) TasksFor(ctx context.Context, pr *Principal) ([]models.Task, error) {
	if err := p.enforcer.Require(pr.Role, ResourceTask, ActionRead); err != nil {
		return nil, err
	}

	if pr.Role == RoleOwner {
		docs, err := p.tasks.Query(ctx, docstore.NewQuery())
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		return decodeTasks(docs)
	}

	ids, err := p.AssignedProjectIDs(ctx, pr)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	for _, batch := range docstore.Chunk(ids, docstore.MaxInValues) {
		docs, err := p.tasks.Query(ctx, docstore.NewQuery().Where("projectId", docstore.OpIn, batch))
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		decoded, err := decodeTasks(docs)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, decoded...)
	}
	return tasks, nil
}

func decodeTasks(docs []docstore.Document) ([]models.Task, error) {
	return docstore.DecodeAll[models.Task](docs, func(t *models.Task, id string) { t.ID = id })
}

// AuthorizeTaskPatch decides whether the principal may apply the given
// field set to the task. Owners may change anything; members may change
// status on tasks assigned to them.
func (p *Policy) AuthorizeTaskPatch(pr *Principal, task *models.Task, fields map[string]any) error {
	if err := p.enforcer.Require(pr.Role, ResourceTask, ActionUpdate); err != nil {
		return err
	}
	if pr.Role == RoleOwner {
		return nil
	}

	if task.AssignedTo != pr.Identity.Email {
		return Forbidden(ReasonNotAssigned)
	}
	for field := range fields {
		if field != "status" {
			return Forbidden(ReasonFieldDenied)
		}
	}
	return nil
}

// AuthorizeReportCreate decides whether the principal may file a report
// against the project. Members must be assigned to it.
func (p *Policy) AuthorizeReportCreate(pr *Principal, project *models.Project) error {
	if err := p.enforcer.Require(pr.Role, ResourceReport, ActionCreate); err != nil {
		return err
	}
	if pr.Role == RoleOwner {
		return nil
	}
	if !project.IsAssigned(pr.Identity.Email) {
		return Forbidden(ReasonNotAssigned)
	}
	return nil
}

// AuthorizeProjectReports decides whether the principal may read the
// report stream of the project.
func (p *Policy) AuthorizeProjectReports(pr *Principal, project *models.Project) error {
	if err := p.enforcer.Require(pr.Role, ResourceReport, ActionRead); err != nil {
		return err
	}
	if pr.Role == RoleOwner {
		return nil
	}
	if !project.IsAssigned(pr.Identity.Email) {
		return Forbidden(ReasonNotAssigned)
	}
	return nil
}

// AuthorizeMessageAccess decides whether the principal may read or post
// messages under the project. Access belongs to the owner, the owning
// client, and assigned members.
func (p *Policy) AuthorizeMessageAccess(pr *Principal, project *models.Project, action string) error {
	if err := p.enforcer.Require(pr.Role, ResourceMessage, action); err != nil {
		return err
	}
	switch pr.Role {
	case RoleOwner:
		return nil
	case RoleMember:
		if !project.IsAssigned(pr.Identity.Email) {
			return Forbidden(ReasonNotAssigned)
		}
		return nil
	default:
		if project.ClientID != pr.Identity.SubjectID {
			return Forbidden(ReasonNotOwner)
		}
		return nil
	}
}
