package types

// FeedbackType classifies a feedback item as praise or criticism.
type FeedbackType string

const (
	// FeedbackGood marks an observation about something the candidate did well
	FeedbackGood FeedbackType = "good"
	// FeedbackBad marks an observation about something that weakened the answer
	FeedbackBad FeedbackType = "bad"
)

// FeedbackItem is a single judge observation anchored to one transcript pair.
type FeedbackItem struct {
	TranscriptMessageID   int          `json:"transcript_message_id"`
	Type                  FeedbackType `json:"type" validate:"required,oneof=good bad"`
	Title                 string       `json:"title" validate:"required"`
	EvaluationExplanation string       `json:"evaluation_explanation" validate:"required"`
	ContextBestPractices  string       `json:"context_best_practices" validate:"required"`
	ImprovedExample       string       `json:"improved_example" validate:"required"`
}

// JudgeEvaluation is the full output of one evaluation judge.
type JudgeEvaluation struct {
	Feedback []FeedbackItem `json:"feedback" validate:"required,dive"`
	Summary  string         `json:"summary" validate:"required"`
}

// EvaluationSet holds the outputs of the evaluation fan-out. The five named
// judges are mandatory; CandidateContext is nil when no candidate profile was
// available for the session.
type EvaluationSet struct {
	Content          *JudgeEvaluation `json:"content" validate:"required"`
	Structure        *JudgeEvaluation `json:"structure" validate:"required"`
	Fit              *JudgeEvaluation `json:"fit" validate:"required"`
	Communication    *JudgeEvaluation `json:"communication" validate:"required"`
	Risk             *JudgeEvaluation `json:"risk" validate:"required"`
	CandidateContext *JudgeEvaluation `json:"candidate_context,omitempty"`
}

// Judges returns the populated evaluations keyed by judge name.
func (s *EvaluationSet) Judges() map[string]*JudgeEvaluation {
	out := map[string]*JudgeEvaluation{
		"content":       s.Content,
		"structure":     s.Structure,
		"fit":           s.Fit,
		"communication": s.Communication,
		"risk":          s.Risk,
	}
	if s.CandidateContext != nil {
		out["candidate_context"] = s.CandidateContext
	}
	return out
}

// AllFeedback flattens every judge's feedback items into a single slice.
func (s *EvaluationSet) AllFeedback() []FeedbackItem {
	var items []FeedbackItem
	for _, eval := range s.Judges() {
		if eval != nil {
			items = append(items, eval.Feedback...)
		}
	}
	return items
}

// ConsolidatedFeedbackResponse is the per-message consolidation produced by
// the aggregator.
type ConsolidatedFeedbackResponse struct {
	ReasonsWhyThisIsGood  []string `json:"reasons_why_this_is_good"`
	ReasonsWhyThisIsBad   []string `json:"reasons_why_this_is_bad"`
	WaysToImproveResponse []string `json:"ways_to_improve_response"`
}

// Entries returns all consolidated lines regardless of category.
func (c *ConsolidatedFeedbackResponse) Entries() []string {
	out := make([]string, 0, len(c.ReasonsWhyThisIsGood)+len(c.ReasonsWhyThisIsBad)+len(c.WaysToImproveResponse))
	out = append(out, c.ReasonsWhyThisIsGood...)
	out = append(out, c.ReasonsWhyThisIsBad...)
	out = append(out, c.WaysToImproveResponse...)
	return out
}

// Empty reports whether the consolidation carries no lines at all.
func (c *ConsolidatedFeedbackResponse) Empty() bool {
	return len(c.ReasonsWhyThisIsGood) == 0 &&
		len(c.ReasonsWhyThisIsBad) == 0 &&
		len(c.WaysToImproveResponse) == 0
}

// ConsolidatedFeedback ties a consolidation to its transcript pair.
type ConsolidatedFeedback struct {
	MessageID            int                          `json:"message_id"`
	ConsolidatedFeedback ConsolidatedFeedbackResponse `json:"consolidated_feedback"`
}

// AggregatedSummaryResponse is the session-level summary pair produced by the
// aggregator's summary call.
type AggregatedSummaryResponse struct {
	WhatWentWellSummary  string `json:"what_went_well_summary" validate:"required"`
	WaysToImproveSummary string `json:"ways_to_improve_summary" validate:"required"`
}

// AggregatedEvaluation is the final candidate-facing coaching report.
type AggregatedEvaluation struct {
	WhatWentWellSummary           string                 `json:"what_went_well_summary"`
	WaysToImproveSummary          string                 `json:"ways_to_improve_summary"`
	ConsolidatedFeedbackByMessage []ConsolidatedFeedback `json:"consolidated_feedback_by_message"`
}
