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
	"github.com/nexlayer/nexops/internal/models"
	"github.com/nexlayer/nexops/internal/validation"
)

// ListMessages returns a project's message stream, oldest first.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "id")
	project, err := h.policy.GetProject(r.Context(), projectID)
	if err != nil {
		respondAuthzError(w, err)
		return
	}
	if err := h.policy.AuthorizeMessageAccess(p, project, authz.ActionRead); err != nil {
		respondAuthzError(w, err)
		return
	}

	docs, err := h.messages.Query(r.Context(), docstore.NewQuery().
		Where("projectId", docstore.OpEqual, projectID).
		Order("timestamp", false))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	messages, err := docstore.DecodeAll[models.Message](docs, func(m *models.Message, id string) { m.ID = id })
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// CreateMessageInput is the chat message payload.
type CreateMessageInput struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// CreateMessage posts a message into a project's stream. Sender identity
// and role come from the principal, never the body.
func (h *Handlers) CreateMessage(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "id")
	project, err := h.policy.GetProject(r.Context(), projectID)
	if err != nil {
		respondAuthzError(w, err)
		return
	}
	if err := h.policy.AuthorizeMessageAccess(p, project, authz.ActionCreate); err != nil {
		respondAuthzError(w, err)
		return
	}

	var input CreateMessageInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if verr := validation.ValidateStruct(&input); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	message := models.Message{
		ProjectID:  projectID,
		SenderID:   p.Identity.SubjectID,
		SenderName: p.Identity.DisplayName,
		SenderRole: p.Role.String(),
		Content:    input.Content,
		CreatedAt:  time.Now().UTC(),
	}

	id, err := h.messages.Add(r.Context(), message)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	message.ID = id

	respondJSON(w, http.StatusCreated, message)
}
