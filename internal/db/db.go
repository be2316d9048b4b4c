// Package db provides PostgreSQL persistence for interview sessions and
// stage artifacts.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// SaveArtifact stores a JSON stage artifact for a session. Artifacts are
// snapshots keyed by (session, stage); a re-run overwrites the previous
// snapshot (last writer wins).
func (db *DB) SaveArtifact(ctx context.Context, sessionID uuid.UUID, stage, category string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (session_id, stage, category, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, stage) DO UPDATE SET category = $3, content = $4, created_at = NOW()`,
		sessionID, stage, category, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", stage, err)
	}
	return nil
}

// SaveTextArtifact stores a text stage artifact (markdown reports, guides)
// for a session.
func (db *DB) SaveTextArtifact(ctx context.Context, sessionID uuid.UUID, stage, category, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO artifacts (session_id, stage, category, text_content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, stage) DO UPDATE SET category = $3, text_content = $4, created_at = NOW()`,
		sessionID, stage, category, text,
	)
	if err != nil {
		return fmt.Errorf("failed to save text artifact %s: %w", stage, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by session ID and stage
func (db *DB) GetArtifact(ctx context.Context, sessionID uuid.UUID, stage string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE session_id = $1 AND stage = $2`,
		sessionID, stage,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", stage, err)
	}
	return content, nil
}

// GetTextArtifact retrieves a text artifact by session ID and stage
func (db *DB) GetTextArtifact(ctx context.Context, sessionID uuid.UUID, stage string) (string, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT text_content FROM artifacts WHERE session_id = $1 AND stage = $2`,
		sessionID, stage,
	).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get text artifact %s: %w", stage, err)
	}
	return text, nil
}

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Stage     string    `json:"stage"`
	Category  string    `json:"category"`
	CreatedAt string    `json:"created_at"`
	HasJSON   bool      `json:"has_json"`
	HasText   bool      `json:"has_text"`
}

// ListArtifacts retrieves artifact summaries for a session
func (db *DB) ListArtifacts(ctx context.Context, sessionID uuid.UUID) ([]ArtifactSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, stage, COALESCE(category, ''), created_at,
		        content IS NOT NULL as has_json, text_content IS NOT NULL as has_text
		 FROM artifacts WHERE session_id = $1 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []ArtifactSummary
	for rows.Next() {
		var a ArtifactSummary
		var createdAt any
		if err := rows.Scan(&a.ID, &a.Stage, &a.Category, &createdAt, &a.HasJSON, &a.HasText); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		if t, ok := createdAt.(interface{ String() string }); ok {
			a.CreatedAt = t.String()
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}
