package types

// InterviewGuide is the markdown playbook handed to the interview conductor.
// The markdown must follow the fixed section layout enforced by the guide
// package's shape validation.
type InterviewGuide struct {
	Markdown string `json:"markdown" validate:"required"`
}
