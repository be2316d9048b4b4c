package interview

import (
	"errors"
	"fmt"
)

// ErrGenerationInFlight is returned when a turn is submitted while another
// generation is still pending. The log is left unchanged.
var ErrGenerationInFlight = errors.New("a response is already being generated")

// ErrInterviewEnded is returned for any turn after the interview finished.
var ErrInterviewEnded = errors.New("the interview has ended")

// TurnError indicates one interviewer turn could not be produced. The log is
// unchanged and the same turn may be retried.
type TurnError struct {
	Message string
	Cause   error
}

func (e *TurnError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("interview turn failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("interview turn failed: %s", e.Message)
}

func (e *TurnError) Unwrap() error {
	return e.Cause
}
