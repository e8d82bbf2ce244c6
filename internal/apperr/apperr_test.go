package apperr

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"jobtrail-backend/internal/model"
)

func TestClassification_isDisjoint(t *testing.T) {
	validation := &ValidationError{Field: "company_name", Reason: "must not be empty"}
	transition := &InvalidTransitionError{From: model.StatusSaved, To: model.StatusOffered}

	assert.True(t, IsValidation(validation))
	assert.False(t, IsInvalidTransition(validation))

	// a rejected transition is not a validation failure; the two map to
	// different HTTP statuses
	assert.True(t, IsInvalidTransition(transition))
	assert.False(t, IsValidation(transition))
}

func TestClassification_unwrapsWrappedErrors(t *testing.T) {
	inner := &InvalidTransitionError{From: model.StatusAccepted, To: model.StatusApplied}
	wrapped := fmt.Errorf("change status: %w", inner)

	assert.True(t, IsInvalidTransition(wrapped))
	assert.False(t, IsValidation(wrapped))
}

func TestClassification_otherCategories(t *testing.T) {
	id := uuid.New()

	assert.True(t, IsNotFound(&NotFoundError{Entity: "job", ID: id}))
	assert.True(t, IsBusy(&BusyError{JobID: id}))
	assert.True(t, IsPartialFailure(&PartialFailureError{Op: "create job", Err: fmt.Errorf("history insert failed")}))
	assert.False(t, IsNotFound(&BusyError{JobID: id}))
}
