package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "github.com/jonathan/interview-pilot/internal/db"
)

func TestCheckDependencies(t *testing.T) {
	tests := []struct {
		name        string
		stage       string
		completed   map[string]bool
		wantMissing []string
	}{
		{
			name:      "scrape has no dependencies",
			stage:     dbpkg.StageScrapedListing,
			completed: map[string]bool{},
		},
		{
			name:        "guide requires research",
			stage:       dbpkg.StageInterviewGuide,
			completed:   map[string]bool{dbpkg.StageJobProfile: true},
			wantMissing: []string{dbpkg.StageResearchReports},
		},
		{
			name:  "guide without optional candidate context",
			stage: dbpkg.StageInterviewGuide,
			completed: map[string]bool{
				dbpkg.StageResearchReports: true,
			},
		},
		{
			name:        "aggregation requires evaluations",
			stage:       dbpkg.StageAggregated,
			completed:   map[string]bool{dbpkg.StageTranscript: true},
			wantMissing: []string{dbpkg.StageEvaluations},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDependencies(tt.stage, tt.completed)
			if tt.wantMissing == nil {
				assert.NoError(t, err)
				return
			}
			var derr *DependencyError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.wantMissing, derr.MissingDependencies)
		})
	}
}

func TestCheckDependencies_UnknownStage(t *testing.T) {
	err := CheckDependencies("publish_report", map[string]bool{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestAvailableStages(t *testing.T) {
	completed := map[string]bool{
		dbpkg.StageScrapedListing:   true,
		dbpkg.StageGuardrailVerdict: true,
	}

	available := AvailableStages(completed)
	assert.Contains(t, available, dbpkg.StageJobProfile)
	assert.Contains(t, available, dbpkg.StageCandidateContext)
	assert.NotContains(t, available, dbpkg.StageInterviewGuide, "research not done yet")
	assert.NotContains(t, available, dbpkg.StageScrapedListing, "already completed")
}

func TestRegistryIsAcyclic(t *testing.T) {
	// Every dependency must resolve to a registered stage.
	for name, def := range StageRegistry {
		for _, dep := range def.Dependencies {
			_, ok := StageRegistry[dep]
			assert.True(t, ok, "stage %s depends on unregistered stage %s", name, dep)
		}
	}

	// Walking dependencies from any stage must terminate.
	var walk func(stage string, seen map[string]bool) bool
	walk = func(stage string, seen map[string]bool) bool {
		if seen[stage] {
			return false
		}
		seen[stage] = true
		for _, dep := range StageRegistry[stage].Dependencies {
			if !walk(dep, seen) {
				return false
			}
		}
		delete(seen, stage)
		return true
	}
	for name := range StageRegistry {
		assert.True(t, walk(name, map[string]bool{}), "cycle reachable from %s", name)
	}
}
