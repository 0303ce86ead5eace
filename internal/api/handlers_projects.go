// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nexlayer/nexops/internal/authz"
	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/models"
	"github.com/nexlayer/nexops/internal/validation"
)

// ListProjects returns the projects visible to the caller: owners see
// everything, members their assignments, clients their own engagements.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceProject, authz.ActionRead); err != nil {
		respondAuthzError(w, err)
		return
	}

	docs, err := h.projects.Query(r.Context(), h.policy.ProjectScope(p))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	projects, err := docstore.DecodeAll[models.Project](docs, func(pr *models.Project, id string) { pr.ID = id })
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// CreateProjectInput is the direct project creation payload.
type CreateProjectInput struct {
	ClientID     string `json:"clientId" validate:"required"`
	ClientName   string `json:"clientName" validate:"required,max=100"`
	ClientPhone  string `json:"clientPhone" validate:"omitempty,max=30"`
	Topic        string `json:"topic" validate:"required,max=200"`
	ProjectTitle string `json:"projectTitle" validate:"required,max=200"`
	Description  string `json:"description" validate:"required,max=2000"`
	Deadline     string `json:"deadline" validate:"required,max=50"`
	Budget       string `json:"budget" validate:"omitempty,max=50"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// CreateProject creates a project directly, without going through the
// intake flow.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceProject, authz.ActionCreate); err != nil {
		respondAuthzError(w, err)
		return
	}

	var input CreateProjectInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if verr := validation.ValidateStruct(&input); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	project := models.Project{
		ClientID:        input.ClientID,
		ClientName:      input.ClientName,
		ClientPhone:     input.ClientPhone,
		Topic:           input.Topic,
		ProjectTitle:    input.ProjectTitle,
		Description:     input.Description,
		Deadline:        input.Deadline,
		Budget:          input.Budget,
		Status:          models.ProjectStatusActive,
		Progress:        0,
		AssignedMembers: []string{},
		Priority:        input.Priority,
		CreatedAt:       time.Now().UTC(),
	}

	id, err := h.projects.Add(r.Context(), project)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	project.ID = id

	respondJSON(w, http.StatusCreated, project)
}

// allowedProjectPatchFields bounds what an owner patch may touch; the
// member restriction to progress only is enforced by the policy engine.
var allowedProjectPatchFields = map[string]bool{
	"projectTitle": true,
	"description":  true,
	"deadline":     true,
	"budget":       true,
	"status":       true,
	"progress":     true,
	"priority":     true,
}

// PatchProject applies a partial update to a project.
func (h *Handlers) PatchProject(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	project, err := h.policy.GetProject(r.Context(), id)
	if err != nil {
		respondAuthzError(w, err)
		return
	}

	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}
	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "no fields to update", nil)
		return
	}
	for field := range fields {
		if !allowedProjectPatchFields[field] {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, "unknown field: "+field, nil)
			return
		}
	}

	if err := h.policy.AuthorizeProjectPatch(p, project, fields); err != nil {
		respondAuthzError(w, err)
		return
	}

	if err := h.projects.Update(r.Context(), id, fields); err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// AssignProjectInput sets the member assignment for a project, with
// optional priority and deadline adjustments applied in the same update.
type AssignProjectInput struct {
	MemberEmails []string `json:"member_emails" validate:"required,dive,email"`
	Priority     string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Deadline     string   `json:"deadline" validate:"omitempty,max=50"`
}

// AssignProject replaces the project's assignee set and moves it into
// progress.
func (h *Handlers) AssignProject(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceProject, authz.ActionAssign); err != nil {
		respondAuthzError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.policy.GetProject(r.Context(), id); err != nil {
		respondAuthzError(w, err)
		return
	}

	var input AssignProjectInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if verr := validation.ValidateStruct(&input); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	fields := map[string]any{
		"assignedMembers": input.MemberEmails,
		"status":          models.ProjectStatusInProgress,
	}
	if input.Priority != "" {
		fields["priority"] = input.Priority
	}
	if input.Deadline != "" {
		fields["deadline"] = input.Deadline
	}

	if err := h.projects.Update(r.Context(), id, fields); err != nil {
		respondInternalError(w, err)
		return
	}

	logging.Info().
		Str("project_id", id).
		Int("members", len(input.MemberEmails)).
		Msg("project assignment updated")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":              id,
		"assignedMembers": input.MemberEmails,
	})
}
