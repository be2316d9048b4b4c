package types

// Role tags a message in the live interview log.
type Role string

const (
	// RoleInterviewer marks a generated interviewer message
	RoleInterviewer Role = "interviewer"
	// RoleCandidate marks a candidate submission
	RoleCandidate Role = "candidate"
)

// Message is one entry in the append-only interview log.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// InterviewerTurn is the raw generation output for one interviewer turn.
// Purpose is internal model reasoning and is never shown to the candidate;
// only Message enters the log.
type InterviewerTurn struct {
	Purpose string `json:"purpose"`
	Message string `json:"message" validate:"required"`
}

// UploadedFile is the extracted text of one candidate-supplied document.
type UploadedFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}
