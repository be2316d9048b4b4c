package research

import "fmt"

// ReportError identifies which research report failed and why.
type ReportError struct {
	Report  string
	Message string
	Cause   error
}

func (e *ReportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("research report %q failed: %s: %v", e.Report, e.Message, e.Cause)
	}
	return fmt.Sprintf("research report %q failed: %s", e.Report, e.Message)
}

func (e *ReportError) Unwrap() error {
	return e.Cause
}
