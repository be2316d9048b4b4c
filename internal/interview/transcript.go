package interview

import "github.com/jonathan/interview-pilot/internal/types"

// PairMessages folds an alternating interviewer/candidate log into a
// Transcript. Pair ids are contiguous from 0 in turn order. A trailing
// interviewer message with no answer is dropped.
func PairMessages(log []types.Message) types.Transcript {
	transcript := make(types.Transcript, 0, len(log)/2)
	for i := 0; i+1 < len(log); i += 2 {
		transcript = append(transcript, types.MessagePair{
			ID:                  len(transcript),
			InterviewerQuestion: log[i].Text,
			CandidateAnswer:     log[i+1].Text,
		})
	}
	return transcript
}
