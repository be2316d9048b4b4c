package pipeline

import (
	"errors"
	"strings"

	"github.com/jonathan/interview-pilot/internal/evaluation"
	"github.com/jonathan/interview-pilot/internal/fetch"
	"github.com/jonathan/interview-pilot/internal/guardrail"
	"github.com/jonathan/interview-pilot/internal/guide"
	"github.com/jonathan/interview-pilot/internal/interview"
	"github.com/jonathan/interview-pilot/internal/parsing"
)

// UserMessage maps a pipeline error to a short message safe to show the
// user. Internal detail stays in the error chain for logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rejection *guardrail.RejectionError
	if errors.As(err, &rejection) {
		return "The provided content was rejected by the safety check. Please supply a different job listing or document."
	}

	var offTopic *guardrail.OffTopicError
	if errors.As(err, &offTopic) {
		return "The provided text does not look like a job listing. Review it, or re-run with the off-topic override to proceed anyway."
	}

	var classifier *guardrail.ClassifierError
	if errors.As(err, &classifier) {
		return "The safety check could not complete. This is usually temporary; please try again."
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		if strings.Contains(fetchErr.Message, fetch.UnsupportedBoardMessage) {
			return fetch.UnsupportedBoardMessage
		}
		return "The job listing could not be fetched. Check the URL, or paste the listing text directly."
	}

	var parseErr *parsing.ParseError
	if errors.As(err, &parseErr) {
		return "The job listing could not be parsed into a profile. Please try again, or paste a cleaner copy of the listing."
	}

	var shapeErr *guide.ShapeError
	if errors.As(err, &shapeErr) {
		return "The interview guide came back malformed. Please re-run the preparation."
	}

	if errors.Is(err, interview.ErrGenerationInFlight) {
		return "A response is still being generated. Wait for it to finish before sending another answer."
	}
	if errors.Is(err, interview.ErrInterviewEnded) {
		return "This interview has already ended."
	}

	var turnErr *interview.TurnError
	if errors.As(err, &turnErr) {
		return "The interviewer's next message could not be generated. Your answer was not recorded; please resend it."
	}

	var judgeErr *evaluation.JudgeError
	if errors.As(err, &judgeErr) {
		return "Evaluation failed before all judges finished. Please re-run the evaluation."
	}
	if errors.Is(err, evaluation.ErrEmptyAggregation) {
		return "The evaluation produced no usable feedback. Please re-run the evaluation."
	}
	var aggErr *evaluation.AggregationError
	if errors.As(err, &aggErr) {
		return "The feedback report could not be assembled. Please re-run the evaluation."
	}

	return "Something went wrong. Please try again."
}
