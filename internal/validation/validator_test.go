// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intakeInput struct {
	Name        string `validate:"required,min=2,max=100"`
	Phone       string `validate:"required"`
	Topic       string `validate:"required"`
	Description string `validate:"required,max=2000"`
	Budget      string `validate:"omitempty,max=50"`
}

func TestValidateStruct_Valid(t *testing.T) {
	err := ValidateStruct(&intakeInput{
		Name:        "Jane Doe",
		Phone:       "+15550100",
		Topic:       "Website redesign",
		Description: "Full redesign of the marketing site",
	})
	assert.Nil(t, err)
}

func TestValidateStruct_MissingFields(t *testing.T) {
	err := ValidateStruct(&intakeInput{Name: "J"})
	require.NotNil(t, err)

	apiErr := err.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Message, "required")

	fields := map[string]bool{}
	for _, fe := range err.Errors() {
		fields[fe.Field()] = true
	}
	assert.True(t, fields["Name"], "short name should fail min")
	assert.True(t, fields["Phone"])
	assert.True(t, fields["Topic"])
	assert.True(t, fields["Description"])
}

func TestValidateStruct_SingleError(t *testing.T) {
	err := ValidateStruct(&intakeInput{
		Name:        "Jane Doe",
		Phone:       "+15550100",
		Topic:       "Website",
		Description: "",
	})
	require.NotNil(t, err)
	require.Len(t, err.Errors(), 1)

	apiErr := err.ToAPIError()
	assert.Equal(t, "Description is required", apiErr.Message)
	assert.Equal(t, "Description", apiErr.Details["field"])
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
