// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores downloaded PDFs and their converted text on disk,
// with a SQLite index of what is cached. Files are written through a temp
// file and a rename, so concurrent writers of the same paper leave one
// complete copy (last writer wins) and readers never see a partial file.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	markdownDir = "markdown_cache"
	chunksDir   = "json_cache"
	pdfDir      = "pdf"
	dbFile      = "index.db"
)

var errMiss = errors.New("cache miss")

// Entry is one index row.
type Entry struct {
	PaperID      string    `json:"paper_id"`
	Title        string    `json:"title"`
	Pages        int       `json:"pages"`
	MarkdownPath string    `json:"markdown_path"`
	PDFPath      string    `json:"pdf_path,omitempty"`
	CachedAt     time.Time `json:"cached_at"`
}

// Chunks is the per-page JSON document stored next to the markdown.
type Chunks struct {
	PaperID string  `json:"paper_id"`
	Pages   []Chunk `json:"pages"`
}

// Chunk is the text of one 1-based page.
type Chunk struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Cache is safe for concurrent use.
type Cache struct {
	dir string
	db  *sql.DB
	now func() time.Time
}

// Open creates the cache layout under dir if needed and opens the index.
func Open(dir string) (*Cache, error) {
	for _, sub := range []string{markdownDir, chunksDir, pdfDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache index: %w", err)
	}
	c := &Cache{dir: dir, db: db, now: time.Now}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the index connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT,
		pages INTEGER NOT NULL DEFAULT 0,
		markdown_path TEXT NOT NULL,
		pdf_path TEXT,
		cached_at TEXT NOT NULL
	)`)
	return err
}

// SafeID makes an arXiv id usable as a file name. Old-style ids such as
// "cs/0112017v1" contain a slash.
func SafeID(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}

// MarkdownPath is where the paper's full text is cached.
func (c *Cache) MarkdownPath(id string) string {
	return filepath.Join(c.dir, markdownDir, SafeID(id)+".md")
}

// PDFPath is where the paper's PDF is cached.
func (c *Cache) PDFPath(id string) string {
	return filepath.Join(c.dir, pdfDir, SafeID(id)+".pdf")
}

func (c *Cache) chunksPath(id string) string {
	return filepath.Join(c.dir, chunksDir, SafeID(id)+".json")
}

// Markdown returns the cached full text. Absence, or an empty file, is a
// miss and not an error.
func (c *Cache) Markdown(id string) (string, bool, error) {
	b, err := readFile(c.MarkdownPath(id))
	if errors.Is(err, errMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", false, nil
	}
	return string(b), true, nil
}

// Pages returns the cached per-page text.
func (c *Cache) Pages(id string) ([]string, bool, error) {
	b, err := readFile(c.chunksPath(id))
	if errors.Is(err, errMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var chunks Chunks
	if err := json.Unmarshal(b, &chunks); err != nil {
		return nil, false, fmt.Errorf("decoding page chunks of %s: %w", id, err)
	}
	pages := make([]string, len(chunks.Pages))
	for i, ch := range chunks.Pages {
		pages[i] = ch.Text
	}
	return pages, len(pages) > 0, nil
}

// HasPDF reports whether the paper's PDF is cached.
func (c *Cache) HasPDF(id string) bool {
	info, err := os.Stat(c.PDFPath(id))
	return err == nil && info.Size() > 0
}

// StorePDF copies r into the PDF cache and returns the file path.
func (c *Cache) StorePDF(id string, r io.Reader) (string, error) {
	path := c.PDFPath(id)
	if err := writeAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	}); err != nil {
		return "", fmt.Errorf("caching PDF of %s: %w", id, err)
	}
	return path, nil
}

// Store writes the paper's pages as markdown and JSON chunks, then records
// the paper in the index. It returns the markdown path.
func (c *Cache) Store(ctx context.Context, paper types.Paper, pages []string) (string, error) {
	mdPath := c.MarkdownPath(paper.ID)
	if err := writeAtomic(mdPath, func(w io.Writer) error {
		_, err := io.WriteString(w, renderMarkdown(paper, pages))
		return err
	}); err != nil {
		return "", fmt.Errorf("caching markdown of %s: %w", paper.ID, err)
	}

	chunks := Chunks{PaperID: paper.ID, Pages: make([]Chunk, len(pages))}
	for i, p := range pages {
		chunks.Pages[i] = Chunk{Page: i + 1, Text: p}
	}
	if err := writeAtomic(c.chunksPath(paper.ID), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}); err != nil {
		return "", fmt.Errorf("caching page chunks of %s: %w", paper.ID, err)
	}

	var pdfPath sql.NullString
	if c.HasPDF(paper.ID) {
		pdfPath = sql.NullString{String: c.PDFPath(paper.ID), Valid: true}
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO papers (id, title, pages, markdown_path, pdf_path, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   pages = excluded.pages,
		   markdown_path = excluded.markdown_path,
		   pdf_path = excluded.pdf_path,
		   cached_at = excluded.cached_at`,
		paper.ID, paper.Title, len(pages), mdPath, pdfPath, c.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("indexing %s: %w", paper.ID, err)
	}
	return mdPath, nil
}

// Entry returns the index row for id.
func (c *Cache) Entry(ctx context.Context, id string) (Entry, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, title, pages, markdown_path, pdf_path, cached_at FROM papers WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading index row %s: %w", id, err)
	}
	return e, true, nil
}

// List returns every indexed paper, most recently cached first.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, title, pages, markdown_path, pdf_path, cached_at FROM papers ORDER BY cached_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing cache index: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e        Entry
		title    sql.NullString
		pdf      sql.NullString
		cachedAt string
	)
	if err := s.Scan(&e.PaperID, &title, &e.Pages, &e.MarkdownPath, &pdf, &cachedAt); err != nil {
		return Entry{}, err
	}
	e.Title = title.String
	e.PDFPath = pdf.String
	e.CachedAt, _ = time.Parse(time.RFC3339, cachedAt)
	return e, nil
}

// renderMarkdown lays out the cached text: a title heading, then each page
// under a page marker agents can refer to.
func renderMarkdown(paper types.Paper, pages []string) string {
	var b strings.Builder
	if paper.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", paper.Title)
	}
	for i, p := range pages {
		fmt.Fprintf(&b, "<!-- page %d -->\n\n%s\n\n", i+1, strings.TrimSpace(p))
	}
	return b.String()
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return b, nil
}

// writeAtomic writes path through a sibling temp file and a rename.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
