package guide

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/types"
)

// fakeClient returns a canned response or error for every call.
type fakeClient struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

const validGuide = `## Context
Acme Robotics builds warehouse automation. The role owns the control plane.

## Areas to Probe
- Distributed systems depth: the listing leans heavily on consensus work.
- Ownership: the role is the first dedicated control plane hire.

## Question Ideas
### Job-Specific Questions
- How would you design a fleet-wide rollout mechanism?
- Walk me through a consensus bug you debugged.
- What tradeoffs matter when choosing a state store for robot telemetry?

### Behavioral Questions
- Tell me about a time you disagreed with a technical direction.
- Describe a project where you were the sole owner.

### Situational Questions
- A robot fleet is dropping heartbeats in one warehouse. Where do you look?
- A teammate ships a change that breaks your service. What do you do?

### Culture and Values Questions
- What does good engineering culture look like to you?

## Candidate-Specific Hooks
Not provided
`

func testReports() *types.ResearchReportSet {
	return &types.ResearchReportSet{
		CompanyStrategyReport: "strategy",
		RoleSuccessReport:     "success",
		TeamCultureReport:     "culture",
		DomainKnowledgeReport: "domain",
	}
}

func testProfile() *types.JobProfile {
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

func TestSynthesize(t *testing.T) {
	t.Run("valid guide", func(t *testing.T) {
		client := &fakeClient{response: validGuide}

		g, err := Synthesize(context.Background(), client, testProfile(), testReports(), "")
		require.NoError(t, err)
		assert.Contains(t, g.Markdown, "## Question Ideas")
		assert.Contains(t, client.lastPrompt, "Not provided", "empty candidate profile is passed as the marker")
	})

	t.Run("candidate profile is injected", func(t *testing.T) {
		withHooks := strings.Replace(validGuide, "Not provided", "- Probe the fleet migration they led.", 1)
		client := &fakeClient{response: withHooks}

		_, err := Synthesize(context.Background(), client, testProfile(), testReports(), "Led a fleet migration.")
		require.NoError(t, err)
		assert.Contains(t, client.lastPrompt, "Led a fleet migration.")
	})

	t.Run("incomplete reports", func(t *testing.T) {
		_, err := Synthesize(context.Background(), &fakeClient{}, testProfile(), &types.ResearchReportSet{}, "")
		require.Error(t, err)
		assert.ErrorContains(t, err, "incomplete")
	})

	t.Run("generation failure", func(t *testing.T) {
		client := &fakeClient{err: errors.New("model overloaded")}
		_, err := Synthesize(context.Background(), client, testProfile(), testReports(), "")
		require.Error(t, err)
		var serr *SynthesisError
		assert.ErrorAs(t, err, &serr)
	})

	t.Run("malformed guide is a hard failure", func(t *testing.T) {
		client := &fakeClient{response: "just some prose, no sections"}
		_, err := Synthesize(context.Background(), client, testProfile(), testReports(), "")
		require.Error(t, err)
		var sherr *ShapeError
		assert.ErrorAs(t, err, &sherr)
	})
}

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(string) string
		noCandidate bool
		wantProblem string
	}{
		{
			name:        "valid",
			mutate:      func(s string) string { return s },
			noCandidate: true,
		},
		{
			name:        "missing section",
			mutate:      func(s string) string { return strings.Replace(s, "## Areas to Probe", "## Topics", 1) },
			noCandidate: true,
			wantProblem: "missing section",
		},
		{
			name: "sections out of order",
			mutate: func(s string) string {
				s = strings.Replace(s, "## Context", "## SWAP", 1)
				s = strings.Replace(s, "## Areas to Probe", "## Context", 1)
				return strings.Replace(s, "## SWAP", "## Areas to Probe", 1)
			},
			noCandidate: true,
			wantProblem: "out of order",
		},
		{
			name: "too few culture questions",
			mutate: func(s string) string {
				return strings.Replace(s, "- What does good engineering culture look like to you?\n", "", 1)
			},
			noCandidate: true,
			wantProblem: "has 0 questions",
		},
		{
			name: "too many behavioral questions",
			mutate: func(s string) string {
				extra := "- Extra one.\n- Extra two.\n- Extra three.\n"
				return strings.Replace(s, "### Situational Questions", extra+"### Situational Questions", 1)
			},
			noCandidate: true,
			wantProblem: "has 5 questions",
		},
		{
			name: "sequencing language",
			mutate: func(s string) string {
				return strings.Replace(s, "Acme Robotics builds", "First, ask about background. Then ask about Acme, which builds", 1)
			},
			noCandidate: true,
			wantProblem: "sequencing language",
		},
		{
			name: "rubric language",
			mutate: func(s string) string {
				return strings.Replace(s, "The role owns the control plane.", "Signals of a strong answer include specificity.", 1)
			},
			noCandidate: true,
			wantProblem: "scoring language",
		},
		{
			name: "missing Not provided marker",
			mutate: func(s string) string {
				return strings.Replace(s, "Not provided", "- Some invented hook.", 1)
			},
			noCandidate: true,
			wantProblem: "Not provided",
		},
		{
			name: "hooks allowed when candidate profile exists",
			mutate: func(s string) string {
				return strings.Replace(s, "Not provided", "- Probe the fleet migration.", 1)
			},
			noCandidate: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShape(tt.mutate(validGuide), tt.noCandidate)
			if tt.wantProblem == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantProblem)
		})
	}
}
