package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Well-known schema names used at LLM response boundaries.
const (
	SchemaJobProfile           = "job_profile"
	SchemaGuardrailManual      = "guardrail_manual"
	SchemaGuardrailContent     = "guardrail_content"
	SchemaInterviewerTurn      = "interviewer_turn"
	SchemaJudgeEvaluation      = "judge_evaluation"
	SchemaConsolidatedFeedback = "consolidated_feedback"
	SchemaAggregatedSummary    = "aggregated_summary"
)

// Load returns the embedded schema content by name (without extension).
func Load(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{
			Path:    name,
			Message: "embedded schema not found",
			Cause:   err,
		}
	}
	return string(data), nil
}

// MustLoad returns the embedded schema content by name, panicking if absent.
// Schema files ship with the binary, so a miss is a build defect.
func MustLoad(name string) string {
	content, err := Load(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load schema: %v", err))
	}
	return content
}

// Validate checks a JSON document against the named embedded schema.
func Validate(name, jsonContent string) error {
	schema, err := Load(name)
	if err != nil {
		return err
	}
	return ValidateJSONString(schema, jsonContent)
}
