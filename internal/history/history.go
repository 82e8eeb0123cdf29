// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite record of every paper a digest run
// delivered, so past digests can be searched and exported.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const defaultLimit = 50

// Store manages the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started TEXT NOT NULL,
			queries INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS digests (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			query TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			published TEXT,
			avg_score REAL NOT NULL,
			accept_rate REAL NOT NULL,
			summary TEXT,
			recorded_at TEXT NOT NULL,
			UNIQUE (run_id, query, paper_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_digests_paper_id ON digests(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_digests_recorded_at ON digests(recorded_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores every summarized paper of rep and returns how many rows it
// wrote. Recording the same run twice replaces its rows.
func (s *Store) Record(ctx context.Context, rep types.RunReport) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, started, queries, failed) VALUES (?, ?, ?, ?)`,
		rep.RunID, rep.Started.UTC().Format(time.RFC3339), len(rep.Outcomes), rep.Failed(),
	); err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO digests
		(run_id, query, paper_id, title, authors, published, avg_score, accept_rate, summary, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	recorded := s.now().UTC().Format(time.RFC3339)
	n := 0
	for _, res := range rep.Results() {
		for _, sum := range res.Summaries {
			sc := sum.Score
			authors, _ := json.Marshal(sc.Paper.Authors)
			if _, err := stmt.ExecContext(ctx,
				rep.RunID, res.Query, sc.PaperID, sc.Paper.Title, string(authors),
				sc.Paper.Published.UTC().Format(time.RFC3339), sc.AvgScore, sc.AcceptRate,
				sc.Round1.Summary, recorded,
			); err != nil {
				return 0, fmt.Errorf("recording %s: %w", sc.PaperID, err)
			}
			n++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing history: %w", err)
	}
	return n, nil
}

// Options filters Search.
type Options struct {
	// Text matches title or summary, case-insensitively.
	Text string

	// Query restricts to one configured research query.
	Query string

	PaperID  string
	Since    time.Time
	MinScore float64

	// Limit caps the result count. Zero uses a default of 50; negative
	// means no cap.
	Limit int
}

// Entry is one delivered paper.
type Entry struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Query      string    `json:"query" yaml:"query"`
	PaperID    string    `json:"paper_id" yaml:"paper_id"`
	Title      string    `json:"title" yaml:"title"`
	Authors    []string  `json:"authors" yaml:"authors"`
	Published  time.Time `json:"published" yaml:"published"`
	AvgScore   float64   `json:"avg_score" yaml:"avg_score"`
	AcceptRate float64   `json:"accept_rate" yaml:"accept_rate"`
	Summary    string    `json:"summary" yaml:"summary"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// Search returns matching entries, most recently recorded first and by
// descending score within a run.
func (s *Store) Search(ctx context.Context, opts Options) ([]Entry, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT run_id, query, paper_id, title, authors, published,
			avg_score, accept_rate, summary, recorded_at
		FROM digests WHERE 1=1`)

	if opts.Text != "" {
		like := "%" + strings.ToLower(opts.Text) + "%"
		qb.WriteString(` AND (lower(title) LIKE ? OR lower(summary) LIKE ?)`)
		args = append(args, like, like)
	}
	if opts.Query != "" {
		qb.WriteString(` AND query = ?`)
		args = append(args, opts.Query)
	}
	if opts.PaperID != "" {
		qb.WriteString(` AND paper_id = ?`)
		args = append(args, opts.PaperID)
	}
	if !opts.Since.IsZero() {
		qb.WriteString(` AND recorded_at >= ?`)
		args = append(args, opts.Since.UTC().Format(time.RFC3339))
	}
	if opts.MinScore > 0 {
		qb.WriteString(` AND avg_score >= ?`)
		args = append(args, opts.MinScore)
	}

	qb.WriteString(` ORDER BY recorded_at DESC, avg_score DESC, paper_id`)

	limit := opts.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                   Entry
			title, summary      sql.NullString
			authorsJSON         sql.NullString
			published, recorded string
		)
		if err := rows.Scan(&e.RunID, &e.Query, &e.PaperID, &title, &authorsJSON, &published,
			&e.AvgScore, &e.AcceptRate, &summary, &recorded); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Title = title.String
		e.Summary = summary.String
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &e.Authors)
		}
		e.Published, _ = time.Parse(time.RFC3339, published)
		e.RecordedAt, _ = time.Parse(time.RFC3339, recorded)
		out = append(out, e)
	}
	return out, rows.Err()
}
