package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/interview-pilot/internal/db"
	"github.com/jonathan/interview-pilot/internal/evaluation"
	"github.com/jonathan/interview-pilot/internal/interview"
	"github.com/jonathan/interview-pilot/internal/pipeline"
	"github.com/jonathan/interview-pilot/internal/types"
)

// liveSession holds the in-memory state of one prepared session: the
// preparation artifacts and, once the interview opens, its conductor. The
// paired transcript is kept after the interview ends so a finish request
// that failed on a transient provider error can be retried.
type liveSession struct {
	prepared   *pipeline.PrepareResult
	conductor  *interview.Conductor
	ended      bool
	transcript types.Transcript
}

// sessionRegistry maps session IDs to live sessions. Sessions live here from
// preparation until finish or delete; restarts lose unfinished interviews.
type sessionRegistry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*liveSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{entries: make(map[uuid.UUID]*liveSession)}
}

func (r *sessionRegistry) add(id uuid.UUID, s *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = s
}

func (r *sessionRegistry) get(id uuid.UUID) *liveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}

func (r *sessionRegistry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// UploadedFileRequest is one candidate document supplied inline with the
// session request, already extracted to text by the caller.
type UploadedFileRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// CreateSessionRequest represents the request body for POST /sessions
type CreateSessionRequest struct {
	JobURL           string                `json:"job_url,omitempty"`
	ListingText      string                `json:"listing_text,omitempty"`
	Files            []UploadedFileRequest `json:"files,omitempty"`
	OffTopicOverride bool                  `json:"off_topic_override,omitempty"`
	UseBrowser       bool                  `json:"use_browser,omitempty"`
}

// TurnRequest represents the request body for POST /sessions/{id}/turns
type TurnRequest struct {
	Message string `json:"message"`
}

// TurnResponse carries the next interviewer message
type TurnResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleCreateSession runs the preparation pipeline and streams progress
// via SSE. The terminal event carries the session ID to interview against.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.JobURL == "" && strings.TrimSpace(req.ListingText) == "" {
		s.errorResponse(w, http.StatusBadRequest, "Either job_url or listing_text is required")
		return
	}
	if req.JobURL != "" && strings.TrimSpace(req.ListingText) != "" {
		s.errorResponse(w, http.StatusBadRequest, "job_url and listing_text are mutually exclusive")
		return
	}

	var files []types.UploadedFile
	for _, f := range req.Files {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		files = append(files, types.UploadedFile{
			ID:   uuid.New().String(),
			Name: f.Name,
			Text: f.Text,
		})
	}

	// Setup SSE writer
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting session preparation...")

	opts := pipeline.PrepareOptions{
		JobURL:           req.JobURL,
		ListingText:      req.ListingText,
		UploadedFiles:    files,
		OffTopicOverride: req.OffTopicOverride,
		GoogleSearchKey:  s.searchKey,
		GoogleSearchCX:   s.searchCX,
		UseBrowser:       req.UseBrowser,
		DatabaseURL:      s.databaseURL,
		OnProgress: func(event pipeline.ProgressEvent) {
			if err := sse.WriteEvent("stage", event); err != nil {
				log.Printf("Error writing SSE event: %v", err)
			}
		},
	}

	result, err := pipeline.Prepare(r.Context(), s.client, opts)
	if err != nil {
		log.Printf("Session preparation failed: %v", err)
		sse.WriteError(pipeline.UserMessage(err))
		return
	}

	// Sessions prepared without a database never got an ID from it
	sessionID := result.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}
	s.sessions.add(sessionID, &liveSession{prepared: result})

	sse.WriteComplete(sessionID.String(), db.SessionStatusReady)
	log.Printf("Session %s prepared", sessionID)
}

// handleStartInterview opens the interview and returns the opening message
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	sessionID, live, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	s.sessions.mu.Lock()
	if live.conductor != nil {
		s.sessions.mu.Unlock()
		s.errorResponse(w, http.StatusConflict, "Interview already started for this session.")
		return
	}
	conductor := interview.NewConductor(s.client, live.prepared.Profile, live.prepared.Guide)
	live.conductor = conductor
	s.sessions.mu.Unlock()

	opening, err := conductor.Open(r.Context())
	if err != nil {
		// A failed opening leaves nothing in the log; allow another start
		s.sessions.mu.Lock()
		live.conductor = nil
		s.sessions.mu.Unlock()
		s.interviewError(w, err)
		return
	}

	if s.db != nil {
		if err := s.db.UpdateSessionStatus(r.Context(), sessionID, db.SessionStatusInterviewing); err != nil {
			log.Printf("Warning: failed to update session status: %v", err)
		}
	}

	s.jsonResponse(w, http.StatusOK, TurnResponse{
		SessionID: sessionID.String(),
		Message:   opening,
	})
}

// handleSubmitTurn accepts a candidate answer and returns the next
// interviewer message. A generation already in flight yields 409.
func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	sessionID, live, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	if live.conductor == nil {
		err := &ErrInterviewNotStarted{SessionID: sessionID}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	reply, err := live.conductor.Submit(r.Context(), req.Message)
	if err != nil {
		s.interviewError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, TurnResponse{
		SessionID: sessionID.String(),
		Message:   reply,
	})
}

// handleFinishInterview ends the interview, runs the evaluation fan-out,
// and returns the aggregated coaching report.
func (s *Server) handleFinishInterview(w http.ResponseWriter, r *http.Request) {
	sessionID, live, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	s.sessions.mu.Lock()
	conductor := live.conductor
	ended := live.ended
	transcript := live.transcript
	s.sessions.mu.Unlock()

	if conductor == nil {
		err := &ErrInterviewNotStarted{SessionID: sessionID}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	// End consumes the log exactly once; a retried finish after a failed
	// evaluation reuses the transcript stashed from the first attempt
	if !ended {
		var err error
		transcript, err = conductor.End()
		if err != nil {
			s.interviewError(w, err)
			return
		}
		s.sessions.mu.Lock()
		live.ended = true
		live.transcript = transcript
		s.sessions.mu.Unlock()
	}
	if len(transcript) == 0 {
		s.errorResponse(w, http.StatusUnprocessableEntity, "Interview ended with no answered questions; nothing to evaluate.")
		return
	}

	log.Printf("Evaluating session %s (%d answered questions)", sessionID, len(transcript))

	in := evaluation.Inputs{
		Profile:          live.prepared.Profile,
		Reports:          live.prepared.Reports,
		Guide:            live.prepared.Guide,
		Transcript:       transcript,
		CandidateContext: live.prepared.CandidateContext,
	}
	aggregated, err := pipeline.Evaluate(r.Context(), s.client, in, pipeline.EvaluateOptions{
		SessionID: live.prepared.SessionID,
		Database:  s.db,
	})
	if err != nil {
		log.Printf("Evaluation failed for session %s: %v", sessionID, err)
		s.errorResponse(w, HTTPStatus(err), pipeline.UserMessage(err))
		return
	}

	s.sessions.remove(sessionID)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID.String(),
		"evaluation": aggregated,
	})
}

// handleListSessions returns recent sessions from the database
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}

	sessions, err := s.db.ListSessions(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// handleGetSession returns one session's stored record
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathSessionID(w, r)
	if !ok {
		return
	}

	session, err := s.db.GetSession(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if session == nil {
		s.errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, session)
}

// handleDeleteSession drops the live session and its stored artifacts
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathSessionID(w, r)
	if !ok {
		return
	}

	s.sessions.remove(sessionID)

	if s.db != nil {
		if err := s.db.DeleteSession(r.Context(), sessionID); err != nil {
			s.errorResponse(w, http.StatusNotFound, "Session not found")
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"session_id": sessionID.String(),
		"status":     "deleted",
	})
}

// handleListSessionArtifacts lists stored artifacts for a session
func (s *Server) handleListSessionArtifacts(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathSessionID(w, r)
	if !ok {
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID.String(),
		"artifacts":  artifacts,
	})
}

// pathSessionID parses the {id} path segment, writing the error response
// itself on failure
func (s *Server) pathSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Session ID is required")
		return uuid.Nil, false
	}

	sessionID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return sessionID, true
}

// liveSession resolves the path session ID to a live session, writing the
// error response itself on failure
func (s *Server) liveSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, *liveSession, bool) {
	sessionID, ok := s.pathSessionID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}

	live := s.sessions.get(sessionID)
	if live == nil {
		err := &ErrSessionNotFound{SessionID: sessionID}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return uuid.Nil, nil, false
	}
	return sessionID, live, true
}

// interviewError maps a conductor error to its HTTP response
func (s *Server) interviewError(w http.ResponseWriter, err error) {
	log.Printf("Interview error: %v", err)
	s.errorResponse(w, HTTPStatus(err), pipeline.UserMessage(err))
}
