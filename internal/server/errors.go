// Package server provides the HTTP REST API for the interview pilot.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/interview-pilot/internal/guardrail"
	"github.com/jonathan/interview-pilot/internal/interview"
)

// ErrSessionNotFound indicates no live session exists for the given ID
type ErrSessionNotFound struct {
	SessionID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// ErrInterviewNotStarted indicates a turn was submitted before the interview opened
type ErrInterviewNotStarted struct {
	SessionID uuid.UUID
}

func (e *ErrInterviewNotStarted) Error() string {
	return fmt.Sprintf("interview not started for session: %s", e.SessionID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notFound *ErrSessionNotFound
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}

	var validation *ErrValidation
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}

	var notStarted *ErrInterviewNotStarted
	if errors.As(err, &notStarted) {
		return http.StatusConflict
	}

	if errors.Is(err, interview.ErrGenerationInFlight) || errors.Is(err, interview.ErrInterviewEnded) {
		return http.StatusConflict
	}

	var rejection *guardrail.RejectionError
	if errors.As(err, &rejection) {
		return http.StatusUnprocessableEntity
	}

	var offTopic *guardrail.OffTopicError
	if errors.As(err, &offTopic) {
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
