package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-pilot/internal/guardrail"
	"github.com/jonathan/interview-pilot/internal/interview"
	"github.com/jonathan/interview-pilot/internal/llm"
	"github.com/jonathan/interview-pilot/internal/pipeline"
	"github.com/jonathan/interview-pilot/internal/types"
)

// fakeClient returns a canned interviewer turn for every generation
type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

// scriptedClient routes each generation through a per-prompt handler
type scriptedClient struct {
	generate func(prompt string) (string, error)
}

func (f *scriptedClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return f.generate(prompt)
}

func (f *scriptedClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return f.generate(prompt)
}

func (f *scriptedClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *scriptedClient) Close() error                    { return nil }

func turnJSON(message string) string {
	return fmt.Sprintf(`{"purpose": "explore experience", "message": %q}`, message)
}

// newTestServer builds a server with no database and a fake LLM client
func newTestServer(client llm.Client) *Server {
	return &Server{
		client:   client,
		sessions: newSessionRegistry(),
	}
}

func preparedSession(s *Server) uuid.UUID {
	id := uuid.New()
	s.sessions.add(id, &liveSession{
		prepared: &pipeline.PrepareResult{
			Profile: &types.JobProfile{CompanyName: "Acme", JobTitle: "Engineer"},
			Reports: &types.ResearchReportSet{
				CompanyStrategyReport: "strategy",
				RoleSuccessReport:     "success",
				TeamCultureReport:     "culture",
				DomainKnowledgeReport: "domain",
			},
			Guide: &types.InterviewGuide{Markdown: "## Context\nAcme hires engineers."},
		},
	})
	return id
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStartInterview(t *testing.T) {
	client := &fakeClient{response: turnJSON("Welcome! Tell me about yourself.")}
	s := newTestServer(client)
	id := preparedSession(s)
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+id.String()+"/start", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp.SessionID)
	assert.Equal(t, "Welcome! Tell me about yourself.", resp.Message)
}

func TestSubmitTurn(t *testing.T) {
	client := &fakeClient{response: turnJSON("Interesting. What was the hardest part?")}
	s := newTestServer(client)
	id := preparedSession(s)
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+id.String()+"/start", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, mux, "/sessions/"+id.String()+"/turns", TurnRequest{Message: "I built a scheduler."})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Interesting. What was the hardest part?", resp.Message)
}

func TestStartInterview_Twice(t *testing.T) {
	client := &fakeClient{response: turnJSON("Welcome!")}
	s := newTestServer(client)
	id := preparedSession(s)
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+id.String()+"/start", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, mux, "/sessions/"+id.String()+"/start", map[string]string{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitTurn_BeforeStart(t *testing.T) {
	s := newTestServer(&fakeClient{})
	id := preparedSession(s)
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+id.String()+"/turns", TurnRequest{Message: "Hello"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitTurn_EmptyMessage(t *testing.T) {
	client := &fakeClient{response: turnJSON("Welcome!")}
	s := newTestServer(client)
	id := preparedSession(s)
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+id.String()+"/start", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, mux, "/sessions/"+id.String()+"/turns", TurnRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitTurn_UnknownSession(t *testing.T) {
	s := newTestServer(&fakeClient{})
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+uuid.New().String()+"/turns", TurnRequest{Message: "Hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitTurn_InvalidSessionID(t *testing.T) {
	s := newTestServer(&fakeClient{})
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/not-a-uuid/turns", TurnRequest{Message: "Hello"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinishInterview_NoAnsweredQuestions(t *testing.T) {
	client := &fakeClient{response: turnJSON("Welcome!")}
	s := newTestServer(client)
	id := preparedSession(s)
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+id.String()+"/start", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	// Ending with only the unanswered opening question leaves nothing to judge
	rec = postJSON(t, mux, "/sessions/"+id.String()+"/finish", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

const finishJudgeJSON = `{
  "feedback": [
    {
      "transcript_message_id": 0,
      "type": "good",
      "title": "Concrete project",
      "evaluation_explanation": "The answer names a real system.",
      "context_best_practices": "Ground claims in specifics.",
      "improved_example": "Naming the scheduler made this credible."
    }
  ],
  "summary": "Specific, grounded answers."
}`

const finishConsolidationJSON = `{"reasons_why_this_is_good": ["Concrete and direct: \"built a scheduler\" names the system."], "reasons_why_this_is_bad": [], "ways_to_improve_response": []}`

const finishSummaryJSON = `{"what_went_well_summary": "You named real systems.", "ways_to_improve_summary": "Quantify the impact."}`

func TestFinishInterview_RetryAfterEvaluationFailure(t *testing.T) {
	judgesDown := true
	client := &scriptedClient{generate: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "conversation so far"):
			return turnJSON("Tell me about a hard bug."), nil
		case strings.Contains(prompt, "consolidating feedback"):
			return finishConsolidationJSON, nil
		case strings.Contains(prompt, "interview evaluation judge"):
			if judgesDown {
				return "", errors.New("model overloaded")
			}
			return finishJudgeJSON, nil
		case strings.Contains(prompt, "closing summary"):
			return finishSummaryJSON, nil
		}
		return "", fmt.Errorf("unexpected prompt: %.60s", prompt)
	}}
	s := newTestServer(client)
	id := preparedSession(s)
	mux := s.routes()

	rec := postJSON(t, mux, "/sessions/"+id.String()+"/start", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postJSON(t, mux, "/sessions/"+id.String()+"/turns", TurnRequest{Message: "I built a scheduler."})
	require.Equal(t, http.StatusOK, rec.Code)

	// First finish fails in the judge fan-out; the session must survive it
	rec = postJSON(t, mux, "/sessions/"+id.String()+"/finish", map[string]string{})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// A retried finish reuses the transcript from the first attempt instead
	// of ending the interview a second time
	judgesDown = false
	rec = postJSON(t, mux, "/sessions/"+id.String()+"/finish", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SessionID  string                      `json:"session_id"`
		Evaluation *types.AggregatedEvaluation `json:"evaluation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp.SessionID)
	require.NotNil(t, resp.Evaluation)
	assert.Equal(t, "You named real systems.", resp.Evaluation.WhatWentWellSummary)

	// Success releases the session
	rec = postJSON(t, mux, "/sessions/"+id.String()+"/finish", map[string]string{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSession_Validation(t *testing.T) {
	s := newTestServer(&fakeClient{})
	mux := s.routes()

	tests := []struct {
		name string
		req  CreateSessionRequest
	}{
		{name: "no source", req: CreateSessionRequest{}},
		{name: "both sources", req: CreateSessionRequest{JobURL: "https://example.com/job", ListingText: "Engineer wanted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, mux, "/sessions", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeClient{})
	mux := s.routes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "session not found", err: &ErrSessionNotFound{SessionID: uuid.New()}, want: http.StatusNotFound},
		{name: "interview not started", err: &ErrInterviewNotStarted{SessionID: uuid.New()}, want: http.StatusConflict},
		{name: "validation", err: &ErrValidation{Field: "job_url", Message: "invalid"}, want: http.StatusBadRequest},
		{name: "generation in flight", err: interview.ErrGenerationInFlight, want: http.StatusConflict},
		{name: "interview ended", err: interview.ErrInterviewEnded, want: http.StatusConflict},
		{name: "safety rejection", err: &guardrail.RejectionError{Reason: "prompt injection"}, want: http.StatusUnprocessableEntity},
		{name: "off topic", err: &guardrail.OffTopicError{Reason: "recipe"}, want: http.StatusUnprocessableEntity},
		{name: "wrapped rejection", err: fmt.Errorf("step 2: %w", &guardrail.RejectionError{Reason: "x"}), want: http.StatusUnprocessableEntity},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestSessionRegistry(t *testing.T) {
	r := newSessionRegistry()
	id := uuid.New()

	assert.Nil(t, r.get(id))

	r.add(id, &liveSession{})
	assert.NotNil(t, r.get(id))

	r.remove(id)
	assert.Nil(t, r.get(id))
}
