// Package sqldb implements ports.Archive on database/sql. SQLite (modernc.org/sqlite,
// driver "sqlite") and MySQL (github.com/go-sql-driver/mysql, driver "mysql") are
// registered by this package.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// timeLayout is fixed-width so archived_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const transcriptsSchema = `
CREATE TABLE IF NOT EXISTS transcripts (
    session_id   VARCHAR(64) NOT NULL PRIMARY KEY,
    outcome      VARCHAR(16) NOT NULL,
    final_offer  INTEGER NOT NULL,
    concessions  INTEGER NOT NULL,
    body         TEXT NOT NULL,
    archived_at  VARCHAR(40) NOT NULL
)`

// Archive persists transcripts in a SQL table. The summary columns make the
// table queryable by hand; body holds the full JSON transcript.
type Archive struct {
	db *sql.DB
}

// Open connects to driver/dsn, verifies the connection and ensures the schema.
// MySQL DSNs are validated and normalized first.
func Open(ctx context.Context, driver, dsn string) (*Archive, error) {
	switch driver {
	case DriverSQLite:
	case DriverMySQL:
		normalized, err := NormalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		dsn = normalized
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	archive, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return archive, nil
}

// New wraps an open database and creates the transcripts table if needed.
func New(ctx context.Context, db *sql.DB) (*Archive, error) {
	if _, err := db.ExecContext(ctx, transcriptsSchema); err != nil {
		return nil, fmt.Errorf("failed to create transcripts table: %w", err)
	}
	return &Archive{db: db}, nil
}

// NormalizeMySQLDSN parses a go-sql-driver DSN and renders it back in canonical form.
func NormalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	return cfg.FormatDSN(), nil
}

// Put replaces the row of the session inside one transaction.
// Delete followed by insert keeps the statement portable across dialects.
func (a *Archive) Put(ctx context.Context, transcript *domain.Transcript) error {
	body, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE session_id = ?`, transcript.SessionID); err != nil {
		return fmt.Errorf("failed to replace transcript: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO transcripts
		(session_id, outcome, final_offer, concessions, body, archived_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		transcript.SessionID,
		string(transcript.Outcome),
		transcript.FinalOffer,
		transcript.Concessions,
		string(body),
		transcript.ArchivedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}
	return tx.Commit()
}

// Get loads a transcript by session ID.
func (a *Archive) Get(ctx context.Context, sessionID string) (*domain.Transcript, error) {
	var body string
	err := a.db.QueryRowContext(ctx, `SELECT body FROM transcripts WHERE session_id = ?`, sessionID).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}

	var transcript domain.Transcript
	if err := json.Unmarshal([]byte(body), &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return &transcript, nil
}

// Delete removes a transcript row.
func (a *Archive) Delete(ctx context.Context, sessionID string) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM transcripts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

// List returns archived session IDs, most recent first.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT session_id FROM transcripts ORDER BY archived_at DESC, session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}
