package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Session is one interview preparation session: a listing, its derived
// artifacts, and the interview conducted against it.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	CompanyName string     `json:"company_name"`
	JobTitle    string     `json:"job_title"`
	ListingURL  string     `json:"listing_url"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Session status values.
const (
	SessionStatusPreparing    = "preparing"
	SessionStatusReady        = "ready"
	SessionStatusInterviewing = "interviewing"
	SessionStatusEvaluated    = "evaluated"
	SessionStatusFailed       = "failed"
)

// CreateSession creates a new session record and returns its ID
func (db *DB) CreateSession(ctx context.Context, companyName, jobTitle, listingURL string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO sessions (company_name, job_title, listing_url, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		companyName, jobTitle, listingURL, SessionStatusPreparing,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// UpdateSessionStatus moves a session to a new status. Setting a terminal
// status stamps the completion time.
func (db *DB) UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status string) error {
	var err error
	if status == SessionStatusEvaluated || status == SessionStatusFailed {
		_, err = db.pool.Exec(ctx,
			`UPDATE sessions SET status = $1, completed_at = NOW() WHERE id = $2`,
			status, sessionID,
		)
	} else {
		_, err = db.pool.Exec(ctx,
			`UPDATE sessions SET status = $1 WHERE id = $2`,
			status, sessionID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, or nil if not found
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	var s Session
	err := db.pool.QueryRow(ctx,
		`SELECT id, company_name, job_title, listing_url, status, created_at, completed_at
		 FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&s.ID, &s.CompanyName, &s.JobTitle, &s.ListingURL, &s.Status, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// ListSessions retrieves recent sessions
func (db *DB) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit == 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, company_name, job_title, listing_url, status, created_at, completed_at
		 FROM sessions ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.CompanyName, &s.JobTitle, &s.ListingURL, &s.Status, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// DeleteSession deletes a session and all its artifacts (via cascade)
func (db *DB) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}
