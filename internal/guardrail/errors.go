package guardrail

import "fmt"

// ClassifierError represents a transient failure of the safety classifier.
// Callers must surface it; it never stands in for a verdict.
type ClassifierError struct {
	Category Category
	Message  string
	Cause    error
}

func (e *ClassifierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("guardrail check failed for %s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("guardrail check failed for %s: %s", e.Category, e.Message)
}

func (e *ClassifierError) Unwrap() error {
	return e.Cause
}

// RejectionError is the hard halt for content classified as malicious.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("content rejected by safety gate: %s", e.Reason)
}

// OffTopicError is the soft, overridable warning for manual input that does
// not look like a job listing.
type OffTopicError struct {
	Reason string
}

func (e *OffTopicError) Error() string {
	return fmt.Sprintf("content does not look like a job listing: %s", e.Reason)
}
