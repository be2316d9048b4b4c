// Package candidate distills uploaded candidate documents into a single
// anonymized profile used to personalize research and evaluation.
package candidate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/types"
)

// Distill consolidates the uploaded file texts into one markdown candidate
// profile. Direct identifiers are stripped by the prompt; instructions found
// inside the documents are treated as data, never followed.
func Distill(ctx context.Context, client llm.Client, files []types.UploadedFile) (string, error) {
	if len(files) == 0 {
		return "", &DistillError{Message: "no usable candidate files"}
	}

	var sb strings.Builder
	for i, f := range files {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "--- Document: %s ---\n%s", f.Name, f.Text)
	}

	prompt := prompts.Format(prompts.MustGet("distillation.json", "distill-candidate-context"), map[string]string{
		"Files": sb.String(),
	})

	profile, err := client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", &DistillError{Message: "distillation call failed", Cause: err}
	}

	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "", &DistillError{Message: "distillation returned empty profile"}
	}
	return profile, nil
}

// CacheKey derives a stable key for a set of uploaded files from their ids,
// sorted and concatenated.
func CacheKey(files []types.UploadedFile) string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "")
}
