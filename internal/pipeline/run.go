// Package pipeline provides the high-level orchestration for interview
// preparation and evaluation.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/interview-pilot/internal/config"
	"github.com/jonathan/interview-pilot/internal/db"
	"github.com/jonathan/interview-pilot/internal/fetch"
	"github.com/jonathan/interview-pilot/internal/guardrail"
	"github.com/jonathan/interview-pilot/internal/guide"
	"github.com/jonathan/interview-pilot/internal/ingestion"
	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/observability"
	"github.com/jonathan/interview-pilot/internal/parsing"
	"github.com/jonathan/interview-pilot/internal/pipeline/steps"
	"github.com/jonathan/interview-pilot/internal/research"
	"github.com/jonathan/interview-pilot/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage     string `json:"stage"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// PrepareOptions holds configuration for the preparation pipeline.
// Exactly one of JobPath, JobURL, or ListingText must be set.
type PrepareOptions struct {
	JobPath     string
	JobURL      string
	ListingText string

	// Candidate background, either as file paths (CLI) or pre-extracted
	// texts (server uploads)
	Files         []string
	UploadedFiles []types.UploadedFile

	// OffTopicOverride proceeds past a soft off-topic warning on manual input
	OffTopicOverride bool

	GoogleSearchKey string
	GoogleSearchCX  string
	UseBrowser      bool
	Verbose         bool
	DatabaseURL     string

	// Stages selects which stored artifacts may be reused. Flags other than
	// the scrape cache only apply when ResumeSessionID names a prior session.
	Stages          config.StageConfig
	ResumeSessionID uuid.UUID

	OnProgress ProgressCallback
}

// PrepareResult holds everything the interview stage needs.
type PrepareResult struct {
	SessionID        uuid.UUID
	ListingText      string
	Profile          *types.JobProfile
	Reports          *types.ResearchReportSet
	CandidateContext string
	Guide            *types.InterviewGuide
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *PrepareOptions, stage, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Stage:    stage,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// Prepare runs the preparation pipeline: listing intake behind the safety
// gate, profile extraction, the research fan-out, and guide synthesis. The
// result is everything needed to conduct the interview.
func Prepare(ctx context.Context, client llm.Client, opts PrepareOptions) (*PrepareResult, error) {
	printer := observability.NewPrinter(os.Stdout)

	// Database persistence is best-effort; the pipeline runs without it.
	var database *db.DB
	var sessionID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
		}
	}

	if database != nil && opts.ResumeSessionID != uuid.Nil {
		checkResumableStages(ctx, database, &opts)
	}

	// Step 1: listing intake
	listingText, category, err := acquireListing(ctx, opts, database)
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, db.StageScrapedListing, db.CategoryIntake, "Acquired job listing text", nil)

	// Step 2: safety gate
	fmt.Printf("Step 2/6: Checking listing against the safety gate...\n")
	classification, err := guardrail.Check(ctx, client, category, listingText)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer.PrintClassification(classification)
	}
	if err := guardrail.Decision(classification, opts.OffTopicOverride); err != nil {
		return nil, err
	}
	emitProgress(&opts, db.StageGuardrailVerdict, db.CategoryIntake, "Listing passed the safety gate", nil)

	// Step 3: profile extraction
	fmt.Printf("Step 3/6: Extracting job profile...\n")
	var profile *types.JobProfile
	if opts.Stages.UseCachedProfile {
		profile = loadCachedJSON[types.JobProfile](ctx, database, opts, db.StageJobProfile)
	}
	if profile == nil {
		profile, err = parsing.ExtractJobProfile(ctx, client, listingText)
		if err != nil {
			return nil, fmt.Errorf("job profile extraction failed: %w", err)
		}
	}
	if opts.Verbose {
		printer.PrintJobProfile(profile)
	}
	emitProgress(&opts, db.StageJobProfile, db.CategoryIntake,
		fmt.Sprintf("Extracted job profile: %s at %s", profile.JobTitle, profile.CompanyName), profile)

	if database != nil {
		sessionID, err = database.CreateSession(ctx, profile.CompanyName, profile.JobTitle, opts.JobURL)
		if err != nil {
			fmt.Printf("Warning: Failed to create database session: %v\n", err)
			database = nil
		} else {
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Created database session: %s\n", sessionID)
			}
			_ = database.SaveTextArtifact(ctx, sessionID, db.StageScrapedListing, db.CategoryIntake, listingText)
			_ = database.SaveArtifact(ctx, sessionID, db.StageGuardrailVerdict, db.CategoryIntake, classification)
			_ = database.SaveArtifact(ctx, sessionID, db.StageJobProfile, db.CategoryIntake, profile)
		}
	}

	// Step 4: candidate files through the safety gate
	files, err := gatherCandidateFiles(ctx, client, opts)
	if err != nil {
		return nil, err
	}

	// Step 5: research fan-out plus optional candidate distillation
	fmt.Printf("Step 5/6: Running deep research (4 reports")
	if len(files) > 0 {
		fmt.Printf(" + candidate context")
	}
	fmt.Printf(")...\n")

	researchResult := &research.Result{}
	if opts.Stages.UseCachedResearch {
		researchResult.Reports = loadCachedJSON[types.ResearchReportSet](ctx, database, opts, db.StageResearchReports)
	}
	if opts.Stages.UseCachedCandidateContext && database != nil && opts.ResumeSessionID != uuid.Nil {
		researchResult.CandidateContext, _ = database.GetTextArtifact(ctx, opts.ResumeSessionID, db.StageCandidateContext)
	}
	if researchResult.Reports == nil {
		researchOpts := research.Options{WebContext: gatherWebContext(ctx, &opts, profile)}
		if researchResult.CandidateContext != "" {
			files = nil // already have a distilled profile
		}
		live, err := research.RunWithCandidateContext(ctx, client, profile, files, researchOpts)
		if err != nil {
			return nil, fmt.Errorf("research failed: %w", err)
		}
		if live.CandidateErr != nil {
			fmt.Printf("Warning: Candidate context distillation failed: %v\n", live.CandidateErr)
			fmt.Printf("Continuing without a candidate profile...\n")
		}
		researchResult.Reports = live.Reports
		if live.CandidateContext != "" {
			researchResult.CandidateContext = live.CandidateContext
		}
	}
	if opts.Verbose {
		printer.PrintResearchReports(researchResult.Reports)
	}
	emitProgress(&opts, db.StageResearchReports, db.CategoryResearch, "Completed deep research reports", nil)
	if database != nil {
		_ = database.SaveArtifact(ctx, sessionID, db.StageResearchReports, db.CategoryResearch, researchResult.Reports)
		if researchResult.CandidateContext != "" {
			_ = database.SaveTextArtifact(ctx, sessionID, db.StageCandidateContext, db.CategoryResearch, researchResult.CandidateContext)
		}
	}

	// Step 6: guide synthesis
	fmt.Printf("Step 6/6: Synthesizing interview guide...\n")
	var interviewGuide *types.InterviewGuide
	if opts.Stages.UseCachedGuide && database != nil && opts.ResumeSessionID != uuid.Nil {
		if markdown, err := database.GetTextArtifact(ctx, opts.ResumeSessionID, db.StageInterviewGuide); err == nil && markdown != "" {
			interviewGuide = &types.InterviewGuide{Markdown: markdown}
		}
	}
	if interviewGuide == nil {
		interviewGuide, err = guide.Synthesize(ctx, client, profile, researchResult.Reports, researchResult.CandidateContext)
		if err != nil {
			return nil, fmt.Errorf("guide synthesis failed: %w", err)
		}
	}
	if opts.Verbose {
		printer.PrintGuide(interviewGuide)
	}
	emitProgress(&opts, db.StageInterviewGuide, db.CategoryInterview, "Synthesized interview guide", nil)
	if database != nil {
		_ = database.SaveTextArtifact(ctx, sessionID, db.StageInterviewGuide, db.CategoryInterview, interviewGuide.Markdown)
		_ = database.UpdateSessionStatus(ctx, sessionID, db.SessionStatusReady)
	}

	fmt.Printf("Preparation complete. Ready to interview.\n")

	return &PrepareResult{
		SessionID:        sessionID,
		ListingText:      listingText,
		Profile:          profile,
		Reports:          researchResult.Reports,
		CandidateContext: researchResult.CandidateContext,
		Guide:            interviewGuide,
	}, nil
}

// acquireListing resolves the listing text from URL, file, or direct input,
// and reports which guardrail category applies to it.
func acquireListing(ctx context.Context, opts PrepareOptions, database *db.DB) (string, guardrail.Category, error) {
	switch {
	case opts.JobURL != "":
		fmt.Printf("Step 1/6: Scraping job listing from %s...\n", opts.JobURL)
		scraper := fetch.NewCachedScraper(database, &fetch.CachedScraperConfig{
			SkipCache: !opts.Stages.UseCachedScrape,
			Options: &fetch.ScrapeOptions{
				UseBrowser: opts.UseBrowser,
				Verbose:    opts.Verbose,
			},
		})
		scraped, err := scraper.Scrape(ctx, opts.JobURL)
		if err != nil {
			return "", "", err
		}
		if scraped.FromCache {
			fmt.Printf("Using cached listing text for %s\n", opts.JobURL)
		}
		return scraped.Text, guardrail.CategoryWebsiteContent, nil

	case opts.JobPath != "":
		fmt.Printf("Step 1/6: Reading job listing from %s...\n", opts.JobPath)
		text, err := ingestion.ExtractText(opts.JobPath)
		if err != nil {
			return "", "", fmt.Errorf("failed to read job listing: %w", err)
		}
		return text, guardrail.CategoryManualInput, nil

	case strings.TrimSpace(opts.ListingText) != "":
		fmt.Printf("Step 1/6: Using provided job listing text...\n")
		return ingestion.CleanText(opts.ListingText), guardrail.CategoryManualInput, nil
	}

	return "", "", fmt.Errorf("no job listing provided: set a URL, a file path, or listing text")
}

// gatherCandidateFiles reads candidate documents and runs each extracted
// text through the safety gate. Unreadable files are skipped with a warning;
// malicious content is a hard stop.
func gatherCandidateFiles(ctx context.Context, client llm.Client, opts PrepareOptions) ([]types.UploadedFile, error) {
	files := opts.UploadedFiles
	if len(opts.Files) > 0 {
		fmt.Printf("Step 4/6: Reading %d candidate document(s)...\n", len(opts.Files))
		items := ingestion.ReadFiles(opts.Files)
		for _, item := range items {
			if item.Err != nil {
				fmt.Printf("Warning: Skipping %s: %v\n", item.Name, item.Err)
			}
		}
		files = append(files, ingestion.Usable(items)...)
	} else if len(files) == 0 {
		fmt.Printf("Step 4/6: No candidate documents provided, skipping...\n")
		return nil, nil
	}

	for _, f := range files {
		classification, err := guardrail.Check(ctx, client, guardrail.CategoryUploadedFile, f.Text)
		if err != nil {
			return nil, err
		}
		if err := guardrail.Decision(classification, false); err != nil {
			return nil, fmt.Errorf("candidate document %s: %w", f.Name, err)
		}
	}
	return files, nil
}

// loadCachedJSON reads a stored JSON artifact from the resume session. Any
// miss or decode failure falls back to running the stage live.
func loadCachedJSON[T any](ctx context.Context, database *db.DB, opts PrepareOptions, stage string) *T {
	if database == nil || opts.ResumeSessionID == uuid.Nil {
		return nil
	}
	data, err := database.GetArtifact(ctx, opts.ResumeSessionID, stage)
	if err != nil || data == nil {
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		fmt.Printf("Warning: Ignoring unreadable cached %s artifact: %v\n", stage, err)
		return nil
	}
	if opts.Verbose {
		fmt.Printf("[VERBOSE] Reusing cached %s from session %s\n", stage, opts.ResumeSessionID)
	}
	return &out
}

// checkResumableStages clears cache flags whose upstream artifacts are
// missing from the resume session, so those stages run live instead of
// reusing output derived from inputs that were never stored.
func checkResumableStages(ctx context.Context, database *db.DB, opts *PrepareOptions) {
	completed, err := steps.CompletedStages(ctx, database, opts.ResumeSessionID)
	if err != nil {
		fmt.Printf("Warning: Failed to inspect session %s, ignoring cache flags: %v\n", opts.ResumeSessionID, err)
		opts.Stages = config.StageConfig{UseCachedScrape: opts.Stages.UseCachedScrape}
		return
	}

	disable := func(stage string, flag *bool) {
		if !*flag {
			return
		}
		if err := steps.CheckDependencies(stage, completed); err != nil {
			fmt.Printf("Warning: Cannot reuse %s: %v\n", stage, err)
			*flag = false
		}
	}
	disable(db.StageJobProfile, &opts.Stages.UseCachedProfile)
	disable(db.StageResearchReports, &opts.Stages.UseCachedResearch)
	disable(db.StageCandidateContext, &opts.Stages.UseCachedCandidateContext)
	disable(db.StageInterviewGuide, &opts.Stages.UseCachedGuide)
}

// gatherWebContext optionally enriches research with Custom Search results.
// Search failures degrade to model-knowledge-only research.
func gatherWebContext(ctx context.Context, opts *PrepareOptions, profile *types.JobProfile) string {
	if opts.GoogleSearchKey == "" || opts.GoogleSearchCX == "" {
		return ""
	}
	if !types.IsKnown(profile.CompanyName) {
		return ""
	}

	searcher, err := research.NewWebSearcher(ctx, opts.GoogleSearchKey, opts.GoogleSearchCX)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize web search: %v\n", err)
		return ""
	}
	webContext, err := searcher.CompanyContext(ctx, profile.CompanyName)
	if err != nil {
		fmt.Printf("Warning: Company web search failed: %v\n", err)
		return ""
	}
	if webContext != "" && opts.Verbose {
		fmt.Printf("[VERBOSE] Web search found company sources\n")
	}
	return webContext
}
