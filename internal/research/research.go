// Package research runs the deep-research stage: four concurrent report
// generations over the extracted job profile, plus an optional candidate
// context distillation that never blocks the mandatory reports.
package research

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-pilot/internal/candidate"
	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/types"
)

// Options configures a research run.
type Options struct {
	// WebContext is optional search-derived source material injected into
	// the company-facing reports. Empty means none available.
	WebContext string
}

// Result bundles the outputs of RunWithCandidateContext. CandidateContext is
// empty when no files were supplied; CandidateErr carries a distillation
// failure without failing the run.
type Result struct {
	Reports          *types.ResearchReportSet
	CandidateContext string
	CandidateErr     error
}

// Run generates the four research reports concurrently. The first failure
// cancels the remaining generations and fails the whole stage; callers never
// see a partial set.
func Run(ctx context.Context, client llm.Client, profile *types.JobProfile, opts Options) (*types.ResearchReportSet, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, &ReportError{Report: "all", Message: "failed to encode job profile", Cause: err}
	}

	webContext := strings.TrimSpace(opts.WebContext)
	if webContext == "" {
		webContext = "None available."
	}

	data := map[string]string{
		"JobProfileJSON": string(profileJSON),
		"WebContext":     webContext,
	}

	set := &types.ResearchReportSet{}
	targets := []struct {
		key  string
		dest *string
	}{
		{"company-strategy", &set.CompanyStrategyReport},
		{"role-success", &set.RoleSuccessReport},
		{"team-culture", &set.TeamCultureReport},
		{"domain-knowledge", &set.DomainKnowledgeReport},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		g.Go(func() error {
			report, err := generateReport(gctx, client, target.key, data)
			if err != nil {
				return err
			}
			*target.dest = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return set, nil
}

// RunWithCandidateContext runs the four-report join and, when uploaded files
// exist, the candidate distillation, concurrently. Distillation failure is
// reported in the Result but never fails the mandatory reports.
func RunWithCandidateContext(ctx context.Context, client llm.Client, profile *types.JobProfile, files []types.UploadedFile, opts Options) (*Result, error) {
	result := &Result{}

	done := make(chan struct{})
	if len(files) > 0 {
		go func() {
			defer close(done)
			result.CandidateContext, result.CandidateErr = candidate.Distill(ctx, client, files)
		}()
	} else {
		close(done)
	}

	reports, err := Run(ctx, client, profile, opts)
	<-done
	if err != nil {
		return nil, err
	}

	result.Reports = reports
	return result, nil
}

// generateReport produces one research report from its prompt template.
func generateReport(ctx context.Context, client llm.Client, key string, data map[string]string) (string, error) {
	template, err := prompts.Get("research.json", key)
	if err != nil {
		return "", &ReportError{Report: key, Message: "prompt not found", Cause: err}
	}

	report, err := client.GenerateContent(ctx, prompts.Format(template, data), llm.TierAdvanced)
	if err != nil {
		return "", &ReportError{Report: key, Message: "generation failed", Cause: err}
	}

	report = strings.TrimSpace(report)
	if report == "" {
		return "", &ReportError{Report: key, Message: "empty report"}
	}
	return report, nil
}
