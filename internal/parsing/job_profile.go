// Package parsing extracts a structured JobProfile from scraped listing text using LLM extraction.
package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/schemas"
	"github.com/jonathan/interview-pilot/internal/types"
)

// ExtractJobProfile extracts a structured JobProfile from cleaned listing text.
// Extraction is verbatim: fields hold the listing's own wording, bullets keep
// their original granularity, and ungroundable fields carry the Unknown
// sentinel. An empty or unparseable model response is a hard failure.
func ExtractJobProfile(ctx context.Context, client llm.Client, listingMarkdown string) (*types.JobProfile, error) {
	if strings.TrimSpace(listingMarkdown) == "" {
		return nil, &ValidationError{Message: "listing text is empty"}
	}

	prompt := buildExtractionPrompt(listingMarkdown)

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate job profile",
			Cause:   err,
		}
	}

	responseText = llm.CleanJSONBlock(responseText)
	if responseText == "" {
		return nil, &ParseError{Message: "model returned an empty response"}
	}

	profile, err := parseJSONResponse(responseText)
	if err != nil {
		return nil, err
	}

	postProcessProfile(profile)

	// Schema check after post-processing so normalized sentinels count as content
	normalized, err := json.Marshal(profile)
	if err != nil {
		return nil, &ParseError{Message: "failed to re-encode profile", Cause: err}
	}
	if err := schemas.Validate(schemas.SchemaJobProfile, string(normalized)); err != nil {
		return nil, &ValidationError{
			Message: "profile failed schema validation: " + err.Error(),
		}
	}

	return profile, nil
}

// buildExtractionPrompt constructs the prompt for structured extraction
func buildExtractionPrompt(listingMarkdown string) string {
	template := prompts.MustGet("parsing.json", "extract-job-profile")
	return prompts.Format(template, map[string]string{
		"ListingMarkdown": listingMarkdown,
	})
}

// parseJSONResponse parses the JSON response into a JobProfile
func parseJSONResponse(jsonText string) (*types.JobProfile, error) {
	var profile types.JobProfile
	if err := json.Unmarshal([]byte(jsonText), &profile); err != nil {
		return nil, &ParseError{
			Message: "failed to parse JSON response",
			Cause:   err,
		}
	}
	return &profile, nil
}

// postProcessProfile normalizes whitespace and fills blank fields with the
// Unknown sentinel so downstream stages see a uniform shape.
func postProcessProfile(profile *types.JobProfile) {
	fields := []*string{
		&profile.JobTitle,
		&profile.JobLocation,
		&profile.JobDescription,
		&profile.WorkSchedule,
		&profile.CompanyName,
		&profile.ExpectationsAndResponsibilities,
		&profile.Requirements,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if *f == "" {
			*f = types.UnknownField
		}
	}
}
