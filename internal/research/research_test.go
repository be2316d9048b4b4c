package research

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

// fakeClient routes each call through a per-prompt handler.
type fakeClient struct {
	generate func(prompt string) (string, error)
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return f.generate(prompt)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return f.generate(prompt)
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

func testProfile() *types.JobProfile {
	return &types.JobProfile{
		JobTitle:                        "Staff Engineer",
		JobLocation:                     "Remote",
		JobDescription:                  "Own the robotics control plane.",
		WorkSchedule:                    types.UnknownField,
		CompanyName:                     "Acme Robotics",
		ExpectationsAndResponsibilities: "Design and operate distributed systems.",
		Requirements:                    "Go, distributed systems.",
	}
}

func TestRun_ProducesCompleteSet(t *testing.T) {
	client := &fakeClient{generate: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "company's strategy"):
			return "## Strategy\nRobotics platform vendor.", nil
		case strings.Contains(prompt, "success looks like"):
			return "## Success\nShip the control plane.", nil
		case strings.Contains(prompt, "team culture"):
			return "## Culture\nCollaborative.", nil
		case strings.Contains(prompt, "domain knowledge"):
			return "## Domain\nDistributed systems.", nil
		}
		return "", errors.New("unexpected prompt")
	}}

	set, err := Run(context.Background(), client, testProfile(), Options{})
	require.NoError(t, err)
	require.True(t, set.Complete())
	assert.Contains(t, set.CompanyStrategyReport, "Robotics platform")
	assert.Contains(t, set.Combined(), "Domain Knowledge Report:")
}

func TestRun_FailFast(t *testing.T) {
	client := &fakeClient{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "team culture") {
			return "", errors.New("model overloaded")
		}
		return "report text", nil
	}}

	set, err := Run(context.Background(), client, testProfile(), Options{})
	require.Error(t, err)
	assert.Nil(t, set, "no partial set escapes")

	var rerr *ReportError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "team-culture", rerr.Report)
}

func TestRun_InjectsWebContext(t *testing.T) {
	var sawContext bool
	client := &fakeClient{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "acme.example/strategy") {
			sawContext = true
		}
		return "report text", nil
	}}

	_, err := Run(context.Background(), client, testProfile(), Options{
		WebContext: "- Acme strategy (https://acme.example/strategy): pivoting to warehouses",
	})
	require.NoError(t, err)
	assert.True(t, sawContext)
}

func TestRunWithCandidateContext(t *testing.T) {
	files := []types.UploadedFile{{ID: "f1", Name: "resume.txt", Text: "Built robot fleets."}}

	t.Run("distills when files exist", func(t *testing.T) {
		client := &fakeClient{generate: func(prompt string) (string, error) {
			if strings.Contains(prompt, "Built robot fleets.") {
				return "## Candidate Profile\nFleet experience.", nil
			}
			return "report text", nil
		}}

		result, err := RunWithCandidateContext(context.Background(), client, testProfile(), files, Options{})
		require.NoError(t, err)
		require.True(t, result.Reports.Complete())
		assert.NoError(t, result.CandidateErr)
		assert.Contains(t, result.CandidateContext, "Fleet experience")
	})

	t.Run("distillation failure does not fail the reports", func(t *testing.T) {
		client := &fakeClient{generate: func(prompt string) (string, error) {
			if strings.Contains(prompt, "Built robot fleets.") {
				return "", errors.New("model overloaded")
			}
			return "report text", nil
		}}

		result, err := RunWithCandidateContext(context.Background(), client, testProfile(), files, Options{})
		require.NoError(t, err)
		require.True(t, result.Reports.Complete())
		assert.Error(t, result.CandidateErr)
		assert.Empty(t, result.CandidateContext)
	})

	t.Run("no files means no candidate context", func(t *testing.T) {
		client := &fakeClient{generate: func(string) (string, error) {
			return "report text", nil
		}}

		result, err := RunWithCandidateContext(context.Background(), client, testProfile(), nil, Options{})
		require.NoError(t, err)
		assert.Empty(t, result.CandidateContext)
		assert.NoError(t, result.CandidateErr)
	})
}
