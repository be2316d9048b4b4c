package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jonathan/interview-pilot/internal/db"
	"github.com/jonathan/interview-pilot/internal/evaluation"
	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/observability"
	"github.com/jonathan/interview-pilot/internal/types"
)

// EvaluateOptions holds configuration for the evaluation pipeline.
type EvaluateOptions struct {
	// SessionID and Database enable persistence; both may be zero.
	SessionID  uuid.UUID
	Database   *db.DB
	Verbose    bool
	OnProgress ProgressCallback
}

// Evaluate runs the judge fan-out over a finished transcript and aggregates
// the feedback into the final coaching report.
func Evaluate(ctx context.Context, client llm.Client, in evaluation.Inputs, opts EvaluateOptions) (*types.AggregatedEvaluation, error) {
	printer := observability.NewPrinter(os.Stdout)

	emit := func(stage, message string, content any) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{
				Stage:     stage,
				Category:  db.CategoryEvaluation,
				Message:   message,
				SessionID: opts.SessionID.String(),
				Content:   content,
			})
		}
	}

	persist := opts.Database != nil && opts.SessionID != uuid.Nil
	if persist {
		_ = opts.Database.SaveArtifact(ctx, opts.SessionID, db.StageTranscript, db.CategoryInterview, in.Transcript)
	}

	judgeCount := 5
	if in.CandidateContext != "" {
		judgeCount = 6
	}
	fmt.Printf("Step 1/2: Running %d evaluation judges...\n", judgeCount)
	set, err := evaluation.RunJudges(ctx, client, in)
	if err != nil {
		if persist {
			_ = opts.Database.UpdateSessionStatus(ctx, opts.SessionID, db.SessionStatusFailed)
		}
		return nil, err
	}
	if opts.Verbose {
		printer.PrintEvaluationSet(set)
	}
	emit(db.StageEvaluations, "All judges completed", nil)
	if persist {
		_ = opts.Database.SaveArtifact(ctx, opts.SessionID, db.StageEvaluations, db.CategoryEvaluation, set)
	}

	fmt.Printf("Step 2/2: Aggregating judge feedback...\n")
	aggregated, err := evaluation.Aggregate(ctx, client, set, in.Transcript, in.Profile)
	if err != nil {
		if persist {
			_ = opts.Database.UpdateSessionStatus(ctx, opts.SessionID, db.SessionStatusFailed)
		}
		return nil, err
	}
	if opts.Verbose {
		printer.PrintAggregated(aggregated)
	}
	emit(db.StageAggregated, "Aggregated evaluation ready", aggregated)
	if persist {
		_ = opts.Database.SaveArtifact(ctx, opts.SessionID, db.StageAggregated, db.CategoryEvaluation, aggregated)
		_ = opts.Database.UpdateSessionStatus(ctx, opts.SessionID, db.SessionStatusEvaluated)
	}

	return aggregated, nil
}
