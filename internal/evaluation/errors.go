package evaluation

import (
	"errors"
	"fmt"
)

// ErrEmptyAggregation is returned when aggregation yields no consolidated
// items despite non-empty judge feedback. An empty report is never presented
// as success.
var ErrEmptyAggregation = errors.New("aggregation produced no consolidated feedback")

// JudgeError identifies which judge failed and why.
type JudgeError struct {
	Judge   string
	Message string
	Cause   error
}

func (e *JudgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("judge %q failed: %s: %v", e.Judge, e.Message, e.Cause)
	}
	return fmt.Sprintf("judge %q failed: %s", e.Judge, e.Message)
}

func (e *JudgeError) Unwrap() error {
	return e.Cause
}

// AggregationError indicates the coaching report could not be produced.
type AggregationError struct {
	Message   string
	MessageID *int
	Cause     error
}

func (e *AggregationError) Error() string {
	msg := fmt.Sprintf("aggregation failed: %s", e.Message)
	if e.MessageID != nil {
		msg = fmt.Sprintf("aggregation failed for message %d: %s", *e.MessageID, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AggregationError) Unwrap() error {
	return e.Cause
}
