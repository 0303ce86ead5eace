// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package authz

import "errors"

// ErrNotFound is returned when the target record does not exist. Callers
// must surface it before any access decision so that probing a missing
// record and probing a forbidden one are distinguishable only when the
// record actually exists.
var ErrNotFound = errors.New("record not found")

// ForbiddenError is a denied access decision. Reason is safe to return to
// the caller; it distinguishes a role mismatch from a scope mismatch.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// Forbidden constructs a denial with the given caller-visible reason.
func Forbidden(reason string) *ForbiddenError {
	return &ForbiddenError{Reason: reason}
}

// IsForbidden reports whether err is an access denial.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
