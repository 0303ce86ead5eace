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
	"github.com/nexlayer/nexops/internal/models"
	"github.com/nexlayer/nexops/internal/validation"
)

// ListTasks returns the tasks visible to the caller via the policy
// engine's project scoping.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	tasks, err := h.policy.TasksFor(r.Context(), p)
	if err != nil {
		respondAuthzError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// CreateTaskInput is the task creation payload.
type CreateTaskInput struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	ProjectID  string `json:"projectId" validate:"required"`
	AssignedTo string `json:"assignedTo" validate:"required,email"`
	Deadline   string `json:"deadline" validate:"omitempty,max=50"`
	Priority   string `json:"priority" validate:"omitempty,oneof=low medium high"`
	NextTask   string `json:"next_task" validate:"omitempty,max=500"`
}

// CreateTask creates a task under an existing project.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceTask, authz.ActionCreate); err != nil {
		respondAuthzError(w, err)
		return
	}

	var input CreateTaskInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if verr := validation.ValidateStruct(&input); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	if _, err := h.policy.GetProject(r.Context(), input.ProjectID); err != nil {
		respondAuthzError(w, err)
		return
	}

	task := models.Task{
		Title:      input.Title,
		ProjectID:  input.ProjectID,
		AssignedTo: input.AssignedTo,
		Deadline:   input.Deadline,
		Priority:   input.Priority,
		Status:     "pending",
		NextTask:   input.NextTask,
		CreatedBy:  p.Identity.SubjectID,
		CreatedAt:  time.Now().UTC(),
	}

	id, err := h.tasks.Add(r.Context(), task)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	task.ID = id

	respondJSON(w, http.StatusCreated, task)
}

// allowedTaskPatchFields bounds what an owner patch may touch; members
// are narrowed to status by the policy engine.
var allowedTaskPatchFields = map[string]bool{
	"title":      true,
	"assignedTo": true,
	"deadline":   true,
	"priority":   true,
	"status":     true,
	"next_task":  true,
}

// PatchTask applies a partial update to a task.
func (h *Handlers) PatchTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var task models.Task
	if err := h.tasks.Get(r.Context(), id, &task); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			respondAuthzError(w, authz.ErrNotFound)
			return
		}
		respondInternalError(w, err)
		return
	}
	task.ID = id

	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}
	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "no fields to update", nil)
		return
	}
	for field := range fields {
		if !allowedTaskPatchFields[field] {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, "unknown field: "+field, nil)
			return
		}
	}

	if err := h.policy.AuthorizeTaskPatch(p, &task, fields); err != nil {
		respondAuthzError(w, err)
		return
	}

	if err := h.tasks.Update(r.Context(), id, fields); err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}
