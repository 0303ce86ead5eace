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

// reportListLimit caps the owner's combined report feed.
const reportListLimit = 50

// CreateReportInput is the daily report payload. The report date is
// stamped server-side, not taken from the caller.
type CreateReportInput struct {
	ProjectID string `json:"project_id" validate:"required"`
	WorkDone  string `json:"work_done" validate:"required,max=2000"`
	Issues    string `json:"issues" validate:"omitempty,max=2000"`
	NextTask  string `json:"next_task" validate:"omitempty,max=500"`
}

// CreateReport files a report against a project the caller works on.
func (h *Handlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var input CreateReportInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if verr := validation.ValidateStruct(&input); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	project, err := h.policy.GetProject(r.Context(), input.ProjectID)
	if err != nil {
		respondAuthzError(w, err)
		return
	}
	if err := h.policy.AuthorizeReportCreate(p, project); err != nil {
		respondAuthzError(w, err)
		return
	}

	now := time.Now().UTC()
	report := models.Report{
		ProjectID:   input.ProjectID,
		MemberID:    p.Identity.SubjectID,
		MemberEmail: p.Identity.Email,
		WorkDone:    input.WorkDone,
		Issues:      input.Issues,
		NextTask:    input.NextTask,
		Date:        now.Format("2006-01-02"),
		CreatedAt:   now,
	}

	id, err := h.reports.Add(r.Context(), report)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	report.ID = id

	respondJSON(w, http.StatusCreated, report)
}

// ListReports returns the newest reports across all projects. The
// combined feed is an owner surface; members read reports per project.
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}
	if err := h.policy.Enforcer().Require(p.Role, authz.ResourceReport, authz.ActionList); err != nil {
		respondAuthzError(w, err)
		return
	}

	docs, err := h.reports.Query(r.Context(), docstore.NewQuery().
		Order("timestamp", true).
		Limit(reportListLimit))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	reports, err := docstore.DecodeAll[models.Report](docs, func(rp *models.Report, id string) { rp.ID = id })
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reports)
}

// ProjectReports returns the report stream of a single project, newest
// first.
func (h *Handlers) ProjectReports(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOr401(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectID")
	project, err := h.policy.GetProject(r.Context(), projectID)
	if err != nil {
		respondAuthzError(w, err)
		return
	}
	if err := h.policy.AuthorizeProjectReports(p, project); err != nil {
		respondAuthzError(w, err)
		return
	}

	docs, err := h.reports.Query(r.Context(), docstore.NewQuery().
		Where("projectId", docstore.OpEqual, projectID).
		Order("timestamp", true))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	reports, err := docstore.DecodeAll[models.Report](docs, func(rp *models.Report, id string) { rp.ID = id })
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reports)
}
