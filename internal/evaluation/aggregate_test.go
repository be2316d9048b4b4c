package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-pilot/internal/types"
)

func feedbackItem(messageID int, ftype types.FeedbackType, title string) types.FeedbackItem {
	return types.FeedbackItem{
		TranscriptMessageID:   messageID,
		Type:                  ftype,
		Title:                 title,
		EvaluationExplanation: "explanation",
		ContextBestPractices:  "best practice",
		ImprovedExample:       "example",
	}
}

func evalSet(items ...types.FeedbackItem) *types.EvaluationSet {
	eval := &types.JudgeEvaluation{Feedback: items, Summary: "summary"}
	empty := &types.JudgeEvaluation{Summary: "summary"}
	return &types.EvaluationSet{
		Content:       eval,
		Structure:     empty,
		Fit:           empty,
		Communication: empty,
		Risk:          empty,
	}
}

func aggTranscript() types.Transcript {
	return types.Transcript{
		{ID: 0, InterviewerQuestion: "Tell me about a hard bug.", CandidateAnswer: "I led the fleet migration myself."},
		{ID: 1, InterviewerQuestion: "Why this company?", CandidateAnswer: "I admire the robotics work."},
	}
}

func aggProfile() *types.JobProfile {
	return &types.JobProfile{
		JobTitle:                        "Staff Engineer",
		JobLocation:                     "Remote",
		JobDescription:                  "Own the control plane.",
		WorkSchedule:                    types.UnknownField,
		CompanyName:                     "Acme Robotics",
		ExpectationsAndResponsibilities: "Design distributed systems.",
		Requirements:                    "Go",
	}
}

const summaryResponse = `{"what_went_well_summary": "You grounded answers in real work.", "ways_to_improve_summary": "Quantify your impact."}`

func TestAggregate(t *testing.T) {
	set := evalSet(
		feedbackItem(0, types.FeedbackGood, "ownership"),
		feedbackItem(0, types.FeedbackBad, "no outcome"),
		feedbackItem(1, types.FeedbackGood, "motivation"),
	)

	client := &fakeClient{generate: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "closing summary"):
			return summaryResponse, nil
		case strings.Contains(prompt, "fleet migration"):
			return `{"reasons_why_this_is_good": ["Direct ownership: \"I led the fleet migration myself\" leaves no ambiguity."], "reasons_why_this_is_bad": ["No outcome follows \"I led the fleet migration myself\"."], "ways_to_improve_response": ["State the result after \"fleet migration\"."]}`, nil
		case strings.Contains(prompt, "robotics work"):
			return `{"reasons_why_this_is_good": ["Genuine motivation: \"I admire the robotics work\" is specific to this company."], "reasons_why_this_is_bad": [], "ways_to_improve_response": ["Tie \"the robotics work\" to your own background."]}`, nil
		}
		return "", errors.New("unexpected prompt")
	}}

	agg, err := Aggregate(context.Background(), client, set, aggTranscript(), aggProfile())
	require.NoError(t, err)
	assert.Equal(t, "You grounded answers in real work.", agg.WhatWentWellSummary)
	assert.Equal(t, "Quantify your impact.", agg.WaysToImproveSummary)

	require.Len(t, agg.ConsolidatedFeedbackByMessage, 2)
	assert.Equal(t, 0, agg.ConsolidatedFeedbackByMessage[0].MessageID, "groups are ordered by message id")
	assert.Equal(t, 1, agg.ConsolidatedFeedbackByMessage[1].MessageID)
	assert.Len(t, agg.ConsolidatedFeedbackByMessage[0].ConsolidatedFeedback.ReasonsWhyThisIsBad, 1)
}

func TestAggregate_NoFeedbackAtAll(t *testing.T) {
	_, err := Aggregate(context.Background(), &fakeClient{}, evalSet(), aggTranscript(), aggProfile())
	assert.ErrorIs(t, err, ErrEmptyAggregation)
}

func TestAggregate_AllGroupsConsolidateEmpty(t *testing.T) {
	set := evalSet(feedbackItem(0, types.FeedbackBad, "interviewer was vague"))
	client := &fakeClient{generate: func(string) (string, error) {
		return `{"reasons_why_this_is_good": [], "reasons_why_this_is_bad": [], "ways_to_improve_response": []}`, nil
	}}

	_, err := Aggregate(context.Background(), client, set, aggTranscript(), aggProfile())
	assert.ErrorIs(t, err, ErrEmptyAggregation)
}

func TestAggregate_RejectsLineWithoutLiteralQuote(t *testing.T) {
	set := evalSet(feedbackItem(0, types.FeedbackGood, "ownership"))
	client := &fakeClient{generate: func(string) (string, error) {
		return `{"reasons_why_this_is_good": ["Strong answer citing \"something never said\"."], "reasons_why_this_is_bad": [], "ways_to_improve_response": []}`, nil
	}}

	_, err := Aggregate(context.Background(), client, set, aggTranscript(), aggProfile())
	require.Error(t, err)
	assert.ErrorContains(t, err, "no literal quote")
}

func TestAggregate_AcceptsTypographicQuotes(t *testing.T) {
	set := evalSet(feedbackItem(0, types.FeedbackGood, "ownership"))
	client := &fakeClient{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "closing summary") {
			return summaryResponse, nil
		}
		return `{"reasons_why_this_is_good": ["Direct ownership: “I led the fleet migration myself” leaves no ambiguity."], "reasons_why_this_is_bad": [], "ways_to_improve_response": []}`, nil
	}}

	agg, err := Aggregate(context.Background(), client, set, aggTranscript(), aggProfile())
	require.NoError(t, err)
	require.Len(t, agg.ConsolidatedFeedbackByMessage, 1)
}

func TestAggregate_UnknownMessageID(t *testing.T) {
	set := evalSet(feedbackItem(9, types.FeedbackGood, "ownership"))
	_, err := Aggregate(context.Background(), &fakeClient{}, set, aggTranscript(), aggProfile())
	require.Error(t, err)
	assert.ErrorContains(t, err, "does not exist")
}

func TestAggregate_ConsolidationFailure(t *testing.T) {
	set := evalSet(feedbackItem(0, types.FeedbackGood, "ownership"))
	client := &fakeClient{generate: func(string) (string, error) {
		return "", errors.New("model overloaded")
	}}

	_, err := Aggregate(context.Background(), client, set, aggTranscript(), aggProfile())
	require.Error(t, err)
	var aerr *AggregationError
	require.ErrorAs(t, err, &aerr)
	require.NotNil(t, aerr.MessageID)
	assert.Equal(t, 0, *aerr.MessageID)
}

func TestAggregate_SummaryFailure(t *testing.T) {
	set := evalSet(feedbackItem(0, types.FeedbackGood, "ownership"))
	client := &fakeClient{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "closing summary") {
			return "", errors.New("model overloaded")
		}
		return `{"reasons_why_this_is_good": ["Ownership: \"I led the fleet migration myself\"."], "reasons_why_this_is_bad": [], "ways_to_improve_response": []}`, nil
	}}

	_, err := Aggregate(context.Background(), client, set, aggTranscript(), aggProfile())
	require.Error(t, err)
	assert.ErrorContains(t, err, "summary call failed")
}
