package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageConstants(t *testing.T) {
	stages := []string{
		StageScrapedListing,
		StageGuardrailVerdict,
		StageJobProfile,
		StageResearchReports,
		StageCandidateContext,
		StageInterviewGuide,
		StageTranscript,
		StageEvaluations,
		StageAggregated,
	}

	seen := make(map[string]bool)
	for _, stage := range stages {
		assert.NotEmpty(t, stage, "stage constant should not be empty")
		assert.False(t, seen[stage], "stage constant %s should be unique", stage)
		seen[stage] = true
	}
}

func TestSessionStatusConstants(t *testing.T) {
	statuses := []string{
		SessionStatusPreparing,
		SessionStatusReady,
		SessionStatusInterviewing,
		SessionStatusEvaluated,
		SessionStatusFailed,
	}

	seen := make(map[string]bool)
	for _, status := range statuses {
		assert.NotEmpty(t, status, "status constant should not be empty")
		assert.False(t, seen[status], "status constant %s should be unique", status)
		seen[status] = true
	}
}

func TestSessionType(t *testing.T) {
	s := Session{
		CompanyName: "TestCorp",
		JobTitle:    "Engineer",
		Status:      SessionStatusPreparing,
	}

	assert.Equal(t, "TestCorp", s.CompanyName)
	assert.Equal(t, "Engineer", s.JobTitle)
	assert.Equal(t, SessionStatusPreparing, s.Status)
	assert.Nil(t, s.CompletedAt)
}
