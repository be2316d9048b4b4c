// Package interview holds the live interview state machine: an append-only
// role-tagged message log advanced one generated interviewer turn at a time.
package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/prompts"
	"github.com/jonathan/interview-pilot/internal/schemas"
	"github.com/jonathan/interview-pilot/internal/types"
)

// Conductor runs one mock interview. At most one generation is in flight at
// a time; concurrent submissions are rejected, never queued.
type Conductor struct {
	client  llm.Client
	profile *types.JobProfile
	guide   *types.InterviewGuide

	mu       sync.Mutex
	log      []types.Message
	ended    bool
	inFlight atomic.Bool
}

// NewConductor creates a conductor for one interview session. Every turn
// generation sees the job profile alongside the guide, so the interviewer
// can ground questions in the role's location, schedule, and requirements.
func NewConductor(client llm.Client, profile *types.JobProfile, guide *types.InterviewGuide) *Conductor {
	return &Conductor{
		client:  client,
		profile: profile,
		guide:   guide,
	}
}

// Open generates the interviewer's opening line. The synthetic opening
// trigger is never appended to the log; only the generated line is.
func (c *Conductor) Open(ctx context.Context) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", ErrGenerationInFlight
	}
	defer c.inFlight.Store(false)

	if err := c.checkOpen(true); err != nil {
		return "", err
	}

	message, err := c.generateTurn(ctx)
	if err != nil {
		return "", err
	}

	c.append(types.Message{Role: types.RoleInterviewer, Text: message})
	return message, nil
}

// Submit appends the candidate's answer and generates the next interviewer
// message. A failed generation rolls the candidate message back, leaving the
// log exactly as it was so the same turn can be retried.
func (c *Conductor) Submit(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &TurnError{Message: "candidate message is empty"}
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return "", ErrGenerationInFlight
	}
	defer c.inFlight.Store(false)

	if err := c.checkOpen(false); err != nil {
		return "", err
	}

	c.append(types.Message{Role: types.RoleCandidate, Text: text})

	message, err := c.generateTurn(ctx)
	if err != nil {
		c.dropLast()
		return "", err
	}

	c.append(types.Message{Role: types.RoleInterviewer, Text: message})
	return message, nil
}

// End finishes the interview and pairs the log into a Transcript. The
// conductor accepts no further turns; the raw log is discarded.
func (c *Conductor) End() (types.Transcript, error) {
	if c.inFlight.Load() {
		return nil, ErrGenerationInFlight
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return nil, ErrInterviewEnded
	}
	c.ended = true

	transcript := PairMessages(c.log)
	c.log = nil
	return transcript, nil
}

// Log returns a copy of the current message log.
func (c *Conductor) Log() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Message, len(c.log))
	copy(out, c.log)
	return out
}

// checkOpen validates the conductor state for the next turn.
func (c *Conductor) checkOpen(opening bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return ErrInterviewEnded
	}
	if opening && len(c.log) > 0 {
		return &TurnError{Message: "interview is already open"}
	}
	if !opening && len(c.log) == 0 {
		return &TurnError{Message: "interview has not been opened"}
	}
	return nil
}

func (c *Conductor) append(msg types.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, msg)
}

func (c *Conductor) dropLast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.log) > 0 {
		c.log = c.log[:len(c.log)-1]
	}
}

// generateTurn produces the next interviewer message from the full log.
// Purpose is internal rationale and never leaves this function.
func (c *Conductor) generateTurn(ctx context.Context) (string, error) {
	profileJSON, err := json.MarshalIndent(c.profile, "", "  ")
	if err != nil {
		return "", &TurnError{Message: "failed to encode job profile", Cause: err}
	}

	prompt := prompts.Format(prompts.MustGet("interview.json", "next-message"), map[string]string{
		"JobProfileJSON": string(profileJSON),
		"Guide":          c.guide.Markdown,
		"Conversation":   c.renderConversation(),
	})

	responseText, err := c.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", &TurnError{Message: "turn generation failed", Cause: err}
	}

	if err := schemas.Validate(schemas.SchemaInterviewerTurn, responseText); err != nil {
		return "", &TurnError{Message: "malformed interviewer turn", Cause: err}
	}

	var turn types.InterviewerTurn
	if err := json.Unmarshal([]byte(responseText), &turn); err != nil {
		return "", &TurnError{Message: "failed to parse interviewer turn", Cause: err}
	}

	message := strings.TrimSpace(turn.Message)
	if message == "" {
		return "", &TurnError{Message: "interviewer turn has no message"}
	}
	return message, nil
}

// renderConversation serializes the log for the prompt. An empty string
// signals the model to open the interview.
func (c *Conductor) renderConversation() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.log) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for _, msg := range c.log {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Text)
	}
	return sb.String()
}
