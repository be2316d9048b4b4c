// Package guardrail classifies untrusted content before it enters the pipeline.
// Content is always treated as data: the classifier prompt never executes
// instructions found inside the checked text.
package guardrail

import (
	"context"
	"encoding/json"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/schemas"
	"github.com/jonathan/interview-pilot/internal/types"
)

// Category identifies which kind of untrusted content is being checked.
// The category selects the classifier prompt and the response shape.
type Category string

const (
	// CategoryManualInput is job listing text typed directly by the user
	CategoryManualInput Category = "manual_input"
	// CategoryUploadedFile is text extracted from a user-uploaded document
	CategoryUploadedFile Category = "uploaded_file"
	// CategoryWebsiteContent is text scraped from a submitted listing URL
	CategoryWebsiteContent Category = "website_content"
)

// manualResponse is the wire shape for manual-input classifications.
type manualResponse struct {
	Reason      string `json:"reason"`
	SafetyFlags struct {
		ContainsAnyMaliciousContent          bool `json:"contains_any_malicious_content"`
		ContainsSignificantlyOffTopicContent bool `json:"contains_significantly_off_topic_content"`
	} `json:"safety_flags"`
}

// contentResponse is the wire shape for file and website classifications.
type contentResponse struct {
	Reason                      string `json:"reason"`
	ContainsAnyMaliciousContent bool   `json:"contains_any_malicious_content"`
}

// Check classifies one piece of untrusted content. A classifier failure is
// transient and returned as an error; it is never treated as a pass.
func Check(ctx context.Context, client llm.Client, category Category, content string) (*types.Classification, error) {
	template, schemaName, err := promptFor(category)
	if err != nil {
		return nil, err
	}

	prompt := prompts.Format(template, map[string]string{
		"Content": content,
	})

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &ClassifierError{
			Category: category,
			Message:  "classifier call failed",
			Cause:    err,
		}
	}

	if err := schemas.Validate(schemaName, responseText); err != nil {
		return nil, &ClassifierError{
			Category: category,
			Message:  "classifier returned malformed verdict",
			Cause:    err,
		}
	}

	return parseClassification(category, responseText)
}

// promptFor resolves the classifier prompt and response schema for a category.
func promptFor(category Category) (template, schemaName string, err error) {
	switch category {
	case CategoryManualInput:
		return prompts.MustGet("guardrail.json", "classify-manual-input"), schemas.SchemaGuardrailManual, nil
	case CategoryUploadedFile:
		return prompts.MustGet("guardrail.json", "classify-uploaded-file"), schemas.SchemaGuardrailContent, nil
	case CategoryWebsiteContent:
		return prompts.MustGet("guardrail.json", "classify-website-content"), schemas.SchemaGuardrailContent, nil
	default:
		return "", "", &ClassifierError{Category: category, Message: "unknown content category"}
	}
}

// parseClassification decodes the category-specific wire shape into the
// shared Classification type.
func parseClassification(category Category, responseText string) (*types.Classification, error) {
	if category == CategoryManualInput {
		var resp manualResponse
		if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
			return nil, &ClassifierError{
				Category: category,
				Message:  "failed to parse classifier verdict",
				Cause:    err,
			}
		}
		offTopic := resp.SafetyFlags.ContainsSignificantlyOffTopicContent
		return &types.Classification{
			Reason:    resp.Reason,
			Malicious: resp.SafetyFlags.ContainsAnyMaliciousContent,
			OffTopic:  &offTopic,
		}, nil
	}

	var resp contentResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		return nil, &ClassifierError{
			Category: category,
			Message:  "failed to parse classifier verdict",
			Cause:    err,
		}
	}
	return &types.Classification{
		Reason:    resp.Reason,
		Malicious: resp.ContainsAnyMaliciousContent,
	}, nil
}

// Decision applies gate policy to a classification. Malicious content is a
// hard rejection regardless of override. Off-topic content (manual input
// only) is a soft warning the user may override.
func Decision(c *types.Classification, override bool) error {
	if c.Malicious {
		return &RejectionError{Reason: c.Reason}
	}
	if c.IsOffTopic() && !override {
		return &OffTopicError{Reason: c.Reason}
	}
	return nil
}
