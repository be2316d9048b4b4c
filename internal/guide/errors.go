package guide

import "fmt"

// SynthesisError indicates the guide could not be generated.
type SynthesisError struct {
	Message string
	Cause   error
}

func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("guide synthesis failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("guide synthesis failed: %s", e.Message)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// ShapeError indicates a generated guide violated its structural contract.
type ShapeError struct {
	Problem string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed interview guide: %s", e.Problem)
}
