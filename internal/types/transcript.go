package types

// MessagePair is one interviewer question and the candidate answer that
// followed it. IDs are contiguous starting at 0.
type MessagePair struct {
	ID                  int    `json:"id"`
	InterviewerQuestion string `json:"interviewer_question" validate:"required"`
	CandidateAnswer     string `json:"candidate_answer" validate:"required"`
}

// Transcript is the ordered, immutable record of a finished interview.
type Transcript []MessagePair

// HasMessageID reports whether id refers to a pair in the transcript.
func (t Transcript) HasMessageID(id int) bool {
	return id >= 0 && id < len(t)
}

// Pair returns the pair with the given id, or nil if out of range.
func (t Transcript) Pair(id int) *MessagePair {
	if !t.HasMessageID(id) {
		return nil
	}
	return &t[id]
}
