package evaluation

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/schemas"
	"github.com/jonathan/interview-pilot/internal/types"
)

// quotedSpan extracts double-quoted evidence fragments from a consolidated
// feedback line. Models emit straight and typographic quotes interchangeably,
// so both forms are normalized to ASCII before matching.
var quotedSpan = regexp.MustCompile(`"([^"]+)"`)

var quoteNormalizer = strings.NewReplacer("“", `"`, "”", `"`)

// Aggregate merges the judges' feedback into one coaching report. Feedback is
// grouped by transcript message id; each group is consolidated by one model
// call, then the session summary pair is produced from the full feedback set.
// Zero surviving consolidations despite non-empty judge feedback is a hard
// failure.
func Aggregate(ctx context.Context, client llm.Client, set *types.EvaluationSet, transcript types.Transcript, profile *types.JobProfile) (*types.AggregatedEvaluation, error) {
	allFeedback := set.AllFeedback()
	if len(allFeedback) == 0 {
		return nil, ErrEmptyAggregation
	}

	byMessage := groupByMessage(allFeedback)

	ids := make([]int, 0, len(byMessage))
	for id := range byMessage {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	consolidated := make([]types.ConsolidatedFeedback, 0, len(ids))
	for _, id := range ids {
		pair := transcript.Pair(id)
		if pair == nil {
			return nil, &AggregationError{Message: "feedback references a transcript message id that does not exist"}
		}

		resp, err := consolidateMessage(ctx, client, pair, byMessage[id])
		if err != nil {
			return nil, err
		}
		if resp.Empty() {
			// Every item in the group was interviewer-side; nothing survives.
			continue
		}
		if err := checkQuotes(resp, pair.CandidateAnswer); err != nil {
			return nil, err
		}

		consolidated = append(consolidated, types.ConsolidatedFeedback{
			MessageID:            id,
			ConsolidatedFeedback: *resp,
		})
	}

	if len(consolidated) == 0 {
		return nil, ErrEmptyAggregation
	}

	summary, err := summarizeSession(ctx, client, allFeedback, profile)
	if err != nil {
		return nil, err
	}

	return &types.AggregatedEvaluation{
		WhatWentWellSummary:           summary.WhatWentWellSummary,
		WaysToImproveSummary:          summary.WaysToImproveSummary,
		ConsolidatedFeedbackByMessage: consolidated,
	}, nil
}

// groupByMessage buckets feedback items by their transcript message id.
func groupByMessage(items []types.FeedbackItem) map[int][]types.FeedbackItem {
	byMessage := make(map[int][]types.FeedbackItem)
	for _, item := range items {
		byMessage[item.TranscriptMessageID] = append(byMessage[item.TranscriptMessageID], item)
	}
	return byMessage
}

// consolidateMessage merges one message's feedback items via the model.
func consolidateMessage(ctx context.Context, client llm.Client, pair *types.MessagePair, items []types.FeedbackItem) (*types.ConsolidatedFeedbackResponse, error) {
	feedbackJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, &AggregationError{Message: "failed to encode feedback group", Cause: err}
	}

	prompt := prompts.Format(prompts.MustGet("aggregation.json", "consolidate-message"), map[string]string{
		"MessageID":           strconv.Itoa(pair.ID),
		"InterviewerQuestion": pair.InterviewerQuestion,
		"CandidateAnswer":     pair.CandidateAnswer,
		"FeedbackJSON":        string(feedbackJSON),
	})

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &AggregationError{Message: "consolidation call failed", MessageID: &pair.ID, Cause: err}
	}

	if err := schemas.Validate(schemas.SchemaConsolidatedFeedback, responseText); err != nil {
		return nil, &AggregationError{Message: "malformed consolidation", MessageID: &pair.ID, Cause: err}
	}

	var resp types.ConsolidatedFeedbackResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		return nil, &AggregationError{Message: "failed to parse consolidation", MessageID: &pair.ID, Cause: err}
	}
	return &resp, nil
}

// checkQuotes verifies every consolidated line carries at least one literal
// quote from the candidate's answer.
func checkQuotes(resp *types.ConsolidatedFeedbackResponse, answer string) error {
	for _, line := range resp.Entries() {
		if !hasLiteralQuote(line, answer) {
			return &AggregationError{Message: "consolidated line carries no literal quote from the candidate's answer"}
		}
	}
	return nil
}

func hasLiteralQuote(line, answer string) bool {
	line = quoteNormalizer.Replace(line)
	answer = quoteNormalizer.Replace(answer)
	for _, match := range quotedSpan.FindAllStringSubmatch(line, -1) {
		if strings.Contains(answer, match[1]) {
			return true
		}
	}
	return false
}

// summarizeSession produces the two session-level summaries.
func summarizeSession(ctx context.Context, client llm.Client, items []types.FeedbackItem, profile *types.JobProfile) (*types.AggregatedSummaryResponse, error) {
	feedbackJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, &AggregationError{Message: "failed to encode feedback set", Cause: err}
	}
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, &AggregationError{Message: "failed to encode job profile", Cause: err}
	}

	prompt := prompts.Format(prompts.MustGet("aggregation.json", "summarize-session"), map[string]string{
		"FeedbackJSON":   string(feedbackJSON),
		"JobProfileJSON": string(profileJSON),
	})

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &AggregationError{Message: "summary call failed", Cause: err}
	}

	if err := schemas.Validate(schemas.SchemaAggregatedSummary, responseText); err != nil {
		return nil, &AggregationError{Message: "malformed session summary", Cause: err}
	}

	var resp types.AggregatedSummaryResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		return nil, &AggregationError{Message: "failed to parse session summary", Cause: err}
	}
	return &resp, nil
}
