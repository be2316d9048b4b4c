// Package steps defines the stage dependency graph of the interview pipeline
// and validates stage ordering against a session's stored artifacts.
package steps

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	dbpkg "github.com/jonathan/interview-pilot/internal/db"
)

// StageDefinition defines metadata for a pipeline stage
type StageDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
}

// StageRegistry holds all stage definitions
var StageRegistry = map[string]StageDefinition{
	dbpkg.StageScrapedListing: {
		Name:         dbpkg.StageScrapedListing,
		Category:     dbpkg.CategoryIntake,
		Dependencies: []string{},
		Optional:     []string{},
	},
	dbpkg.StageGuardrailVerdict: {
		Name:         dbpkg.StageGuardrailVerdict,
		Category:     dbpkg.CategoryIntake,
		Dependencies: []string{dbpkg.StageScrapedListing},
		Optional:     []string{},
	},
	dbpkg.StageJobProfile: {
		Name:         dbpkg.StageJobProfile,
		Category:     dbpkg.CategoryIntake,
		Dependencies: []string{dbpkg.StageGuardrailVerdict},
		Optional:     []string{},
	},
	dbpkg.StageResearchReports: {
		Name:         dbpkg.StageResearchReports,
		Category:     dbpkg.CategoryResearch,
		Dependencies: []string{dbpkg.StageJobProfile},
		Optional:     []string{},
	},
	dbpkg.StageCandidateContext: {
		Name:         dbpkg.StageCandidateContext,
		Category:     dbpkg.CategoryResearch,
		Dependencies: []string{},
		Optional:     []string{},
	},
	dbpkg.StageInterviewGuide: {
		Name:         dbpkg.StageInterviewGuide,
		Category:     dbpkg.CategoryInterview,
		Dependencies: []string{dbpkg.StageResearchReports},
		Optional:     []string{dbpkg.StageCandidateContext},
	},
	dbpkg.StageTranscript: {
		Name:         dbpkg.StageTranscript,
		Category:     dbpkg.CategoryInterview,
		Dependencies: []string{dbpkg.StageInterviewGuide},
		Optional:     []string{},
	},
	dbpkg.StageEvaluations: {
		Name:         dbpkg.StageEvaluations,
		Category:     dbpkg.CategoryEvaluation,
		Dependencies: []string{dbpkg.StageTranscript},
		Optional:     []string{dbpkg.StageCandidateContext},
	},
	dbpkg.StageAggregated: {
		Name:         dbpkg.StageAggregated,
		Category:     dbpkg.CategoryEvaluation,
		Dependencies: []string{dbpkg.StageEvaluations},
		Optional:     []string{},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s is missing dependencies: %v", e.Stage, e.MissingDependencies)
}

// CheckDependencies validates a stage's dependencies against a set of
// completed stage names.
func CheckDependencies(stageName string, completed map[string]bool) error {
	def, ok := StageRegistry[stageName]
	if !ok {
		return fmt.Errorf("unknown stage: %s", stageName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Stage:               stageName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// CompletedStages loads the set of stages a session has artifacts for.
func CompletedStages(ctx context.Context, db *dbpkg.DB, sessionID uuid.UUID) (map[string]bool, error) {
	artifacts, err := db.ListArtifacts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session artifacts: %w", err)
	}

	completed := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		completed[a.Stage] = true
	}
	return completed, nil
}

// ValidateDependencies checks a stage's dependencies against a session's
// stored artifacts.
func ValidateDependencies(ctx context.Context, db *dbpkg.DB, sessionID uuid.UUID, stageName string) error {
	completed, err := CompletedStages(ctx, db, sessionID)
	if err != nil {
		return err
	}
	return CheckDependencies(stageName, completed)
}

// AvailableStages returns the stages whose dependencies are met but which
// have no artifact yet.
func AvailableStages(completed map[string]bool) []string {
	var available []string
	for name := range StageRegistry {
		if completed[name] {
			continue
		}
		if err := CheckDependencies(name, completed); err == nil {
			available = append(available, name)
		}
	}
	return available
}
