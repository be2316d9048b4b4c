package candidate

import "fmt"

// DistillError indicates the candidate profile could not be produced.
type DistillError struct {
	Message string
	Cause   error
}

func (e *DistillError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("candidate distillation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("candidate distillation failed: %s", e.Message)
}

func (e *DistillError) Unwrap() error {
	return e.Cause
}
