// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package models defines the business records stored in the document
// database and the JSON envelope returned by every endpoint.
package models

import "time"

// Collection names in the document store.
const (
	CollectionUsers        = "users"
	CollectionRequests     = "requests"
	CollectionProjects     = "projects"
	CollectionTasks        = "tasks"
	CollectionReports      = "reports"
	CollectionMessages     = "messages"
	CollectionSecurityLogs = "security_logs"
)

// Request lifecycle states.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
)

// Project lifecycle states.
const (
	ProjectStatusActive     = "Active"
	ProjectStatusApproved   = "approved"
	ProjectStatusInProgress = "in-progress"
)

// UserRecord is the persisted identity record, one per known identity.
// It is owned by administrative seeding; the request pipeline only reads it.
type UserRecord struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// ClientRequest is a client intake record. The authenticated creator becomes
// its client owner; approval transforms it into a Project.
type ClientRequest struct {
	ID          string    `json:"id,omitempty"`
	ClientID    string    `json:"clientId"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Topic       string    `json:"topic"`
	Deadline    string    `json:"deadline"`
	Description string    `json:"description"`
	Budget      string    `json:"budget,omitempty"`
	Status      string    `json:"status"`
	ProjectID   string    `json:"projectId,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Project is an approved engagement. AssignedMembers holds member emails;
// membership in that set is what grants scoped access to the project and
// its tasks, reports, and messages.
type Project struct {
	ID              string    `json:"id,omitempty"`
	ClientID        string    `json:"clientId"`
	ClientName      string    `json:"clientName"`
	ClientPhone     string    `json:"clientPhone,omitempty"`
	Topic           string    `json:"topic"`
	ProjectTitle    string    `json:"projectTitle"`
	Description     string    `json:"description"`
	Deadline        string    `json:"deadline"`
	Budget          string    `json:"budget,omitempty"`
	Status          string    `json:"status"`
	Progress        int       `json:"progress"`
	AssignedMembers []string  `json:"assignedMembers"`
	Priority        string    `json:"priority,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// IsAssigned reports whether email is in the project's assignee set.
func (p *Project) IsAssigned(email string) bool {
	if email == "" {
		return false
	}
	for _, m := range p.AssignedMembers {
		if m == email {
			return true
		}
	}
	return false
}

// Task is a unit of work under a project.
type Task struct {
	ID         string    `json:"id,omitempty"`
	Title      string    `json:"title"`
	ProjectID  string    `json:"projectId"`
	AssignedTo string    `json:"assignedTo"`
	Deadline   string    `json:"deadline"`
	Priority   string    `json:"priority,omitempty"`
	Status     string    `json:"status"`
	NextTask   string    `json:"next_task,omitempty"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Report is a member's daily report against a project.
type Report struct {
	ID          string    `json:"id,omitempty"`
	ProjectID   string    `json:"projectId"`
	MemberID    string    `json:"memberId"`
	MemberEmail string    `json:"memberEmail"`
	WorkDone    string    `json:"workDone"`
	Issues      string    `json:"issues,omitempty"`
	NextTask    string    `json:"nextTask,omitempty"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Message is a chat message scoped to a project.
type Message struct {
	ID         string    `json:"id,omitempty"`
	ProjectID  string    `json:"projectId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	SenderRole string    `json:"senderRole"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"timestamp"`
}
