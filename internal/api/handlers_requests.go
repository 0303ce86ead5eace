// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nexlayer/nexops/internal/authz"
	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/models"
	"github.com/nexlayer/nexops/internal/validation"
)

// CreateRequestInput is the client intake payload.
type CreateRequestInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Phone       string `json:"phone" validate:"required,max=30"`
	Topic       string `json:"topic" validate:"required,max=200"`
	Deadline    string `json:"deadline" validate:"required,max=50"`
	Description string `json:"description" validate:"required,max=2000"`
	Budget      string `json:"budget" validate:"omitempty,max=50"`
}

// CreateRequest files a new client intake request. The authenticated
// subject becomes the owning client regardless of what the body claims.
func (h *Handlers) CreateRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceRequest, authz.ActionCreate); err != nil {
		respondAuthzError(w, err)
		return
	}

	var input CreateRequestInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if verr := validation.ValidateStruct(&input); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	request := models.ClientRequest{
		ClientID:    p.Identity.SubjectID,
		Name:        input.Name,
		Phone:       input.Phone,
		Topic:       input.Topic,
		Deadline:    input.Deadline,
		Description: input.Description,
		Budget:      input.Budget,
		Status:      models.RequestStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	id, err := h.requests.Add(r.Context(), request)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	request.ID = id

	logging.Info().
		Str("request_id", id).
		Str("client", p.Identity.SubjectID).
		Msg("client request created")

	respondJSON(w, http.StatusCreated, request)
}

// ListAdminRequests returns the pending intake queue, newest first.
// Approved requests leave the queue; their history lives on the project.
func (h *Handlers) ListAdminRequests(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceRequest, authz.ActionList); err != nil {
		respondAuthzError(w, err)
		return
	}

	docs, err := h.requests.Query(r.Context(), docstore.NewQuery().
		Where("status", docstore.OpEqual, models.RequestStatusPending).
		Order("timestamp", true))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	requests, err := docstore.DecodeAll[models.ClientRequest](docs, func(cr *models.ClientRequest, id string) { cr.ID = id })
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}

// ApproveRequest approves a pending intake request and creates the
// engagement project from it. The new project starts unassigned with
// zero progress, and the request is back-linked to it.
func (h *Handlers) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceRequest, authz.ActionApprove); err != nil {
		respondAuthzError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	var request models.ClientRequest
	if err := h.requests.Get(r.Context(), id, &request); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			respondAuthzError(w, authz.ErrNotFound)
			return
		}
		respondInternalError(w, err)
		return
	}
	if request.Status == models.RequestStatusApproved {
		respondError(w, http.StatusConflict, ErrCodeValidation, "request is already approved", nil)
		return
	}

	project := models.Project{
		ClientID:        request.ClientID,
		ClientName:      request.Name,
		ClientPhone:     request.Phone,
		Topic:           request.Topic,
		ProjectTitle:    request.Topic,
		Description:     request.Description,
		Deadline:        request.Deadline,
		Budget:          request.Budget,
		Status:          models.ProjectStatusApproved,
		Progress:        0,
		AssignedMembers: []string{},
		CreatedAt:       time.Now().UTC(),
	}

	projectID, err := h.projects.Add(r.Context(), project)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	project.ID = projectID

	if err := h.requests.Update(r.Context(), id, map[string]any{
		"status":    models.RequestStatusApproved,
		"projectId": projectID,
	}); err != nil {
		respondInternalError(w, err)
		return
	}

	logging.Info().
		Str("request_id", id).
		Str("project_id", projectID).
		Str("approved_by", p.Identity.SubjectID).
		Msg("request approved, project created")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": id,
		"project":    project,
	})
}
