// Package evaluation runs the judge fan-out over a finished transcript and
// aggregates the judges' feedback into one coaching report.
package evaluation

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/schemas"
	"github.com/jonathan/interview-pilot/internal/types"
)

// mandatoryJudges maps judge name to its prompt key. All five must succeed.
var mandatoryJudges = []struct {
	name string
	key  string
}{
	{"content", "content-judge"},
	{"structure", "structure-judge"},
	{"fit", "fit-judge"},
	{"communication", "communication-judge"},
	{"risk", "risk-judge"},
}

// Inputs carries everything the judges evaluate against. CandidateContext is
// empty when no candidate profile exists; the candidate-context judge runs
// only when it is set.
type Inputs struct {
	Profile          *types.JobProfile
	Reports          *types.ResearchReportSet
	Guide            *types.InterviewGuide
	Transcript       types.Transcript
	CandidateContext string
}

// RunJudges executes the five mandatory judges, plus the candidate-context
// judge when a candidate profile exists, concurrently. The mandatory judges
// are all-or-nothing: the first failure cancels the rest and fails the stage.
// The conditional judge is part of the same join once it runs at all.
func RunJudges(ctx context.Context, client llm.Client, in Inputs) (*types.EvaluationSet, error) {
	if len(in.Transcript) == 0 {
		return nil, &JudgeError{Judge: "all", Message: "transcript is empty"}
	}
	if in.Reports == nil {
		return nil, &JudgeError{Judge: "all", Message: "research reports are missing"}
	}
	if in.Guide == nil {
		return nil, &JudgeError{Judge: "all", Message: "interview guide is missing"}
	}

	preamble, err := buildPreamble(in)
	if err != nil {
		return nil, err
	}

	set := &types.EvaluationSet{}
	dests := map[string]**types.JudgeEvaluation{
		"content":       &set.Content,
		"structure":     &set.Structure,
		"fit":           &set.Fit,
		"communication": &set.Communication,
		"risk":          &set.Risk,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, judge := range mandatoryJudges {
		g.Go(func() error {
			prompt := prompts.Format(prompts.MustGet("evaluation.json", judge.key), map[string]string{
				"Preamble": preamble,
			})
			eval, err := runJudge(gctx, client, judge.name, prompt, in.Transcript)
			if err != nil {
				return err
			}
			*dests[judge.name] = eval
			return nil
		})
	}

	if strings.TrimSpace(in.CandidateContext) != "" {
		g.Go(func() error {
			prompt := prompts.Format(prompts.MustGet("evaluation.json", "candidate-context-judge"), map[string]string{
				"Preamble":         preamble,
				"CandidateContext": in.CandidateContext,
			})
			eval, err := runJudge(gctx, client, "candidate_context", prompt, in.Transcript)
			if err != nil {
				return err
			}
			set.CandidateContext = eval
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return set, nil
}

// buildPreamble renders the shared judge context block.
func buildPreamble(in Inputs) (string, error) {
	profileJSON, err := json.MarshalIndent(in.Profile, "", "  ")
	if err != nil {
		return "", &JudgeError{Judge: "all", Message: "failed to encode job profile", Cause: err}
	}
	transcriptJSON, err := json.MarshalIndent(in.Transcript, "", "  ")
	if err != nil {
		return "", &JudgeError{Judge: "all", Message: "failed to encode transcript", Cause: err}
	}

	return prompts.Format(prompts.MustGet("evaluation.json", "judge-preamble"), map[string]string{
		"JobProfileJSON":  string(profileJSON),
		"ResearchReports": in.Reports.Combined(),
		"Guide":           in.Guide.Markdown,
		"TranscriptJSON":  string(transcriptJSON),
	}), nil
}

// runJudge executes one judge and validates its output against the shared
// evaluation schema and the transcript's message ids.
func runJudge(ctx context.Context, client llm.Client, name, prompt string, transcript types.Transcript) (*types.JudgeEvaluation, error) {
	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &JudgeError{Judge: name, Message: "judge call failed", Cause: err}
	}

	if err := schemas.Validate(schemas.SchemaJudgeEvaluation, responseText); err != nil {
		return nil, &JudgeError{Judge: name, Message: "judge returned malformed evaluation", Cause: err}
	}

	var eval types.JudgeEvaluation
	if err := json.Unmarshal([]byte(responseText), &eval); err != nil {
		return nil, &JudgeError{Judge: name, Message: "failed to parse evaluation", Cause: err}
	}

	for _, item := range eval.Feedback {
		if !transcript.HasMessageID(item.TranscriptMessageID) {
			return nil, &JudgeError{
				Judge:   name,
				Message: "feedback references a transcript message id that does not exist",
			}
		}
	}

	return &eval, nil
}
