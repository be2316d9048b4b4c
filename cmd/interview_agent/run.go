package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-pilot/internal/config"
	"github.com/jonathan/interview-pilot/internal/db"
	"github.com/jonathan/interview-pilot/internal/evaluation"
	"github.com/jonathan/interview-pilot/internal/interview"
	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/pipeline"
	"github.com/jonathan/interview-pilot/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Prepare for a job listing and conduct a mock interview end-to-end",
	Long: `Orchestrates the entire interview preparation process: listing intake -> safety gate -> profile extraction -> company research -> guide synthesis, then conducts an interactive mock interview and evaluates the transcript.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runInterviewCmd,
}

var (
	runConfigPath       string
	runJob              string
	runJobURL           string
	runFiles            []string
	runAPIKey           string
	runSearchKey        string
	runSearchCX         string
	runDatabaseURL      string
	runUseBrowser       bool
	runVerbose          bool
	runOffTopicOverride bool
	runResumeSession    string
	runCachedScrape     bool
	runCachedProfile    bool
	runCachedResearch   bool
	runCachedCandidate  bool
	runCachedGuide      bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path to job listing text file (mutually exclusive with --job-url)")
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch job listing from (mutually exclusive with --job)")
	runCommand.Flags().StringArrayVarP(&runFiles, "file", "f", nil, "Path to a candidate document such as a resume (repeatable)")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")
	runCommand.Flags().BoolVar(&runOffTopicOverride, "off-topic-override", false, "Proceed even when pasted text does not look like a job listing")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Optional web grounding for company research
	runCommand.Flags().StringVar(&runSearchKey, "search-key", "", "Google Custom Search API key (optional, defaults to GOOGLE_SEARCH_API_KEY env var)")
	runCommand.Flags().StringVar(&runSearchCX, "search-cx", "", "Google Custom Search engine id (optional, defaults to GOOGLE_SEARCH_CX env var)")

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	// Stage cache flags for resuming a prior session
	runCommand.Flags().StringVar(&runResumeSession, "resume-session", "", "Session ID whose stored artifacts may be reused")
	runCommand.Flags().BoolVar(&runCachedScrape, "use-cached-scrape", false, "Reuse a fresh scraped listing instead of fetching")
	runCommand.Flags().BoolVar(&runCachedProfile, "use-cached-profile", false, "Reuse the stored job profile from --resume-session")
	runCommand.Flags().BoolVar(&runCachedResearch, "use-cached-research", false, "Reuse the stored research reports from --resume-session")
	runCommand.Flags().BoolVar(&runCachedCandidate, "use-cached-candidate-context", false, "Reuse the stored candidate context from --resume-session")
	runCommand.Flags().BoolVar(&runCachedGuide, "use-cached-guide", false, "Reuse the stored interview guide from --resume-session")

	rootCmd.AddCommand(runCommand)
}

func runInterviewCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("job") {
		cfg.Job = runJob
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = runJobURL
	}
	if cmd.Flags().Changed("file") {
		cfg.Files = runFiles
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("search-key") {
		cfg.GoogleSearchKey = runSearchKey
	}
	if cmd.Flags().Changed("search-cx") {
		cfg.GoogleSearchCX = runSearchCX
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("off-topic-override") {
		cfg.OffTopicOverride = runOffTopicOverride
	}
	if cmd.Flags().Changed("use-cached-scrape") {
		cfg.Stages.UseCachedScrape = runCachedScrape
	}
	if cmd.Flags().Changed("use-cached-profile") {
		cfg.Stages.UseCachedProfile = runCachedProfile
	}
	if cmd.Flags().Changed("use-cached-research") {
		cfg.Stages.UseCachedResearch = runCachedResearch
	}
	if cmd.Flags().Changed("use-cached-candidate-context") {
		cfg.Stages.UseCachedCandidateContext = runCachedCandidate
	}
	if cmd.Flags().Changed("use-cached-guide") {
		cfg.Stages.UseCachedGuide = runCachedGuide
	}

	// Step 3: Environment fallbacks for credentials
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.GoogleSearchKey == "" {
		cfg.GoogleSearchKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if cfg.GoogleSearchCX == "" {
		cfg.GoogleSearchCX = os.Getenv("GOOGLE_SEARCH_CX")
	}

	// Step 4: Validate the merged configuration
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Job == "" && cfg.JobURL == "" {
		return fmt.Errorf("either --job or --job-url must be provided (via flag or config)")
	}

	var resumeSessionID uuid.UUID
	if runResumeSession != "" {
		var err error
		resumeSessionID, err = uuid.Parse(runResumeSession)
		if err != nil {
			return fmt.Errorf("invalid --resume-session format: %w", err)
		}
	}

	client, err := llm.NewClient(ctx, nil, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	result, err := pipeline.Prepare(ctx, client, pipeline.PrepareOptions{
		JobPath:          cfg.Job,
		JobURL:           cfg.JobURL,
		Files:            cfg.Files,
		OffTopicOverride: cfg.OffTopicOverride,
		GoogleSearchKey:  cfg.GoogleSearchKey,
		GoogleSearchCX:   cfg.GoogleSearchCX,
		UseBrowser:       cfg.UseBrowser,
		Verbose:          cfg.Verbose,
		DatabaseURL:      cfg.DatabaseURL,
		Stages:           cfg.Stages,
		ResumeSessionID:  resumeSessionID,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.UserMessage(err))
		return err
	}

	transcript, err := conductInterview(ctx, client, result)
	if err != nil {
		return err
	}
	if len(transcript) == 0 {
		fmt.Println("No answered questions; skipping evaluation.")
		return nil
	}

	// Reconnect for evaluation persistence; preparation managed its own handle
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database, evaluation will not be persisted: %v\n", err)
			database = nil
		} else {
			defer database.Close()
		}
	}

	aggregated, err := pipeline.Evaluate(ctx, client, evaluation.Inputs{
		Profile:          result.Profile,
		Reports:          result.Reports,
		Guide:            result.Guide,
		Transcript:       transcript,
		CandidateContext: result.CandidateContext,
	}, pipeline.EvaluateOptions{
		SessionID: result.SessionID,
		Database:  database,
		Verbose:   cfg.Verbose,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.UserMessage(err))
		return err
	}

	printReport(aggregated, transcript)
	return nil
}

// conductInterview runs the interactive loop on stdin. The candidate types
// answers; /end (or EOF) closes the interview and returns the transcript.
func conductInterview(ctx context.Context, client llm.Client, result *pipeline.PrepareResult) (types.Transcript, error) {
	conductor := interview.NewConductor(client, result.Profile, result.Guide)

	fmt.Println()
	fmt.Println("Mock interview starting. Answer each question, or type /end to finish.")
	fmt.Println()

	opening, err := conductor.Open(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.UserMessage(err))
		return nil, err
	}
	fmt.Printf("Interviewer: %s\n\n", opening)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		if answer == "/end" {
			break
		}

		reply, err := conductor.Submit(ctx, answer)
		if err != nil {
			// The answer was rolled back; the candidate can try again
			fmt.Fprintf(os.Stderr, "%s\n", pipeline.UserMessage(err))
			continue
		}
		fmt.Printf("\nInterviewer: %s\n\n", reply)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	transcript, err := conductor.End()
	if err != nil {
		return nil, err
	}
	fmt.Printf("\nInterview finished: %d answered questions.\n", len(transcript))
	return transcript, nil
}

func printReport(aggregated *types.AggregatedEvaluation, transcript types.Transcript) {
	fmt.Println()
	fmt.Println("=== Coaching Report ===")
	fmt.Println()
	fmt.Println("What went well:")
	fmt.Println(aggregated.WhatWentWellSummary)
	fmt.Println()
	fmt.Println("Ways to improve:")
	fmt.Println(aggregated.WaysToImproveSummary)

	for _, fb := range aggregated.ConsolidatedFeedbackByMessage {
		fmt.Println()
		if pair := transcript.Pair(fb.MessageID); pair != nil {
			fmt.Printf("Question %d: %s\n", fb.MessageID, pair.InterviewerQuestion)
		} else {
			fmt.Printf("Question %d:\n", fb.MessageID)
		}
		for _, item := range fb.ConsolidatedFeedback.ReasonsWhyThisIsGood {
			fmt.Printf("  + %s\n", item)
		}
		for _, item := range fb.ConsolidatedFeedback.ReasonsWhyThisIsBad {
			fmt.Printf("  - %s\n", item)
		}
		for _, item := range fb.ConsolidatedFeedback.WaysToImproveResponse {
			fmt.Printf("  > %s\n", item)
		}
	}
}
