// Package guide synthesizes the interview guide from the job profile and
// research reports, and enforces its structural contract.
package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/types"
)

// sectionHeaders are the required top-level sections, in order.
var sectionHeaders = []string{
	"## Context",
	"## Areas to Probe",
	"## Question Ideas",
	"## Candidate-Specific Hooks",
}

// questionCategory is one H3 group under Question Ideas with its allowed
// question count range.
type questionCategory struct {
	header string
	min    int
	max    int
}

var questionCategories = []questionCategory{
	{"### Job-Specific Questions", 2, 4},
	{"### Behavioral Questions", 2, 4},
	{"### Situational Questions", 2, 4},
	{"### Culture and Values Questions", 1, 2},
}

// sequencingPhrases turn a question pool into a script and are forbidden.
var sequencingPhrases = []string{
	"first, ask",
	"then ask",
	"then move",
	"next, ask",
	"after that",
	"start by asking",
	"finally, ask",
}

// rubricPattern matches scoring language the guide must not contain.
var rubricPattern = regexp.MustCompile(`(?i)signals of a strong answer|\b(scores?|scoring|scored|rubrics?|grading)\b`)

// NotProvided marks the candidate section when no candidate profile exists.
const NotProvided = "Not provided"

// Synthesize generates the interview guide in a single call and validates its
// shape. Malformed output is a hard failure; there is no fallback guide.
func Synthesize(ctx context.Context, client llm.Client, profile *types.JobProfile, reports *types.ResearchReportSet, candidateProfile string) (*types.InterviewGuide, error) {
	if !reports.Complete() {
		return nil, &SynthesisError{Message: "research report set is incomplete"}
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, &SynthesisError{Message: "failed to encode job profile", Cause: err}
	}

	candidateSection := strings.TrimSpace(candidateProfile)
	if candidateSection == "" {
		candidateSection = NotProvided
	}

	prompt := prompts.Format(prompts.MustGet("guide.json", "synthesize-guide"), map[string]string{
		"JobProfileJSON":   string(profileJSON),
		"ResearchReports":  reports.Combined(),
		"CandidateContext": candidateSection,
	})

	markdown, err := client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &SynthesisError{Message: "guide generation failed", Cause: err}
	}

	markdown = strings.TrimSpace(markdown)
	if err := ValidateShape(markdown, candidateProfile == ""); err != nil {
		return nil, err
	}

	return &types.InterviewGuide{Markdown: markdown}, nil
}

// ValidateShape checks the structural contract of a generated guide: the four
// section headers in order, the per-category question counts, the absence of
// sequencing and scoring language, and the candidate section marker when no
// candidate profile was supplied.
func ValidateShape(markdown string, noCandidateProfile bool) error {
	if strings.TrimSpace(markdown) == "" {
		return &ShapeError{Problem: "guide is empty"}
	}

	sections, err := splitSections(markdown)
	if err != nil {
		return err
	}

	if err := validateQuestionCounts(sections["## Question Ideas"]); err != nil {
		return err
	}

	lower := strings.ToLower(markdown)
	for _, phrase := range sequencingPhrases {
		if strings.Contains(lower, phrase) {
			return &ShapeError{Problem: fmt.Sprintf("guide contains sequencing language %q", phrase)}
		}
	}
	if m := rubricPattern.FindString(markdown); m != "" {
		return &ShapeError{Problem: fmt.Sprintf("guide contains scoring language %q", m)}
	}

	if noCandidateProfile {
		hooks := sections["## Candidate-Specific Hooks"]
		if !strings.Contains(hooks, NotProvided) {
			return &ShapeError{Problem: "candidate section must read \"Not provided\" when no candidate profile exists"}
		}
	}

	return nil
}

// splitSections verifies the four H2 headers appear exactly once, in order,
// with nothing before the first, and returns each section's body.
func splitSections(markdown string) (map[string]string, error) {
	positions := make([]int, len(sectionHeaders))
	for i, header := range sectionHeaders {
		first := indexOfHeader(markdown, header)
		if first < 0 {
			return nil, &ShapeError{Problem: fmt.Sprintf("missing section %q", header)}
		}
		if indexOfHeader(markdown[first+len(header):], header) >= 0 {
			return nil, &ShapeError{Problem: fmt.Sprintf("duplicate section %q", header)}
		}
		positions[i] = first
	}

	for i := 1; i < len(positions); i++ {
		if positions[i] < positions[i-1] {
			return nil, &ShapeError{Problem: fmt.Sprintf("section %q is out of order", sectionHeaders[i])}
		}
	}
	if strings.TrimSpace(markdown[:positions[0]]) != "" {
		return nil, &ShapeError{Problem: "unexpected content before the first section"}
	}

	// Reject extra H2 sections beyond the required four.
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") && !isKnownHeader(trimmed) {
			return nil, &ShapeError{Problem: fmt.Sprintf("unexpected section %q", trimmed)}
		}
	}

	sections := make(map[string]string, len(sectionHeaders))
	for i, header := range sectionHeaders {
		start := positions[i] + len(header)
		end := len(markdown)
		if i+1 < len(positions) {
			end = positions[i+1]
		}
		sections[header] = markdown[start:end]
	}
	return sections, nil
}

func isKnownHeader(line string) bool {
	for _, header := range sectionHeaders {
		if line == header {
			return true
		}
	}
	return false
}

// indexOfHeader finds a header at the start of a line, so "## Context" never
// matches inside body text.
func indexOfHeader(text, header string) int {
	if strings.HasPrefix(text, header) {
		return 0
	}
	idx := strings.Index(text, "\n"+header)
	if idx < 0 {
		return -1
	}
	return idx + 1
}

// validateQuestionCounts checks each question category header exists, in
// order, with a bullet count inside its allowed range.
func validateQuestionCounts(questionIdeas string) error {
	lastPos := -1
	for _, cat := range questionCategories {
		pos := indexOfHeader(questionIdeas, cat.header)
		if pos < 0 {
			return &ShapeError{Problem: fmt.Sprintf("missing question category %q", cat.header)}
		}
		if pos < lastPos {
			return &ShapeError{Problem: fmt.Sprintf("question category %q is out of order", cat.header)}
		}
		lastPos = pos
	}

	for i, cat := range questionCategories {
		start := indexOfHeader(questionIdeas, cat.header) + len(cat.header)
		end := len(questionIdeas)
		if i+1 < len(questionCategories) {
			end = indexOfHeader(questionIdeas, questionCategories[i+1].header)
		}
		count := countBullets(questionIdeas[start:end])
		if count < cat.min || count > cat.max {
			return &ShapeError{Problem: fmt.Sprintf("category %q has %d questions, want %d-%d", cat.header, count, cat.min, cat.max)}
		}
	}
	return nil
}

// countBullets counts top-level markdown list items in a block.
func countBullets(block string) int {
	count := 0
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			count++
		}
	}
	return count
}
