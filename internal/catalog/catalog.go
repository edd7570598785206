// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog maintains a derived SQLite index over the persisted
// verdicts so a batch's findings can be searched and summarized without
// re-reading every summary file. The JSON files remain the source of truth;
// the catalog re-ingests changed files by modification time and can always
// be rebuilt from scratch.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/opposition-engine/pkg/types"
)

// Catalog wraps the verdict index database.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at dbPath, creating the schema
// as needed.
func Open(dbPath string) (*Catalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS verdicts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT NOT NULL UNIQUE,
			has_evidence INTEGER NOT NULL,
			opposition_types TEXT,
			summary TEXT,
			confidence REAL,
			sources TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verdicts_has_evidence ON verdicts(has_evidence)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			project_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over the summaries, kept in sync by triggers.
	var ftsExists int
	if err := c.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='verdicts_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE verdicts_fts USING fts5(summary, content=verdicts, content_rowid=rowid)`,
			`CREATE TRIGGER verdicts_ai AFTER INSERT ON verdicts BEGIN
				INSERT INTO verdicts_fts(rowid, summary) VALUES (new.rowid, new.summary);
			END`,
			`CREATE TRIGGER verdicts_ad AFTER DELETE ON verdicts BEGIN
				INSERT INTO verdicts_fts(verdicts_fts, rowid, summary) VALUES('delete', old.rowid, old.summary);
			END`,
			`CREATE TRIGGER verdicts_au AFTER UPDATE ON verdicts BEGIN
				INSERT INTO verdicts_fts(verdicts_fts, rowid, summary) VALUES('delete', old.rowid, old.summary);
				INSERT INTO verdicts_fts(rowid, summary) VALUES (new.rowid, new.summary);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := c.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of summary files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads verdict files from the summary directory and indexes them.
// Files unchanged since their last ingest (by modification time) are
// skipped; changed verdicts replace their previous rows.
func (c *Catalog) Ingest(ctx context.Context, summaryDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(summaryDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading summary directory %s: %w", summaryDir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		projectID := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(summaryDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", projectID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = c.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE project_id = ?`, projectID,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", projectID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", projectID, err)
			summary.Failed++
			continue
		}

		var verdict types.OppositionVerdict
		if err := json.Unmarshal(data, &verdict); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", projectID, err)
			summary.Failed++
			continue
		}

		if err := c.ingestVerdict(ctx, projectID, verdict, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", projectID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", projectID)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", projectID)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

func (c *Catalog) ingestVerdict(ctx context.Context, projectID string, v types.OppositionVerdict, modTime string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete-then-insert keeps the FTS triggers simple.
	if _, err := tx.ExecContext(ctx, `DELETE FROM verdicts WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("deleting old verdict: %w", err)
	}

	typesJSON, _ := json.Marshal(v.OppositionTypes)
	sourcesJSON, _ := json.Marshal(v.Sources)
	hasEvidence := 0
	if v.HasEvidence {
		hasEvidence = 1
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO verdicts (project_id, has_evidence, opposition_types, summary, confidence, sources)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		projectID, hasEvidence, string(typesJSON), v.Summary, v.Confidence, string(sourcesJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting verdict: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (project_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		projectID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}

// Entry is one indexed verdict.
type Entry struct {
	ProjectID       string   `json:"project_id"`
	HasEvidence     bool     `json:"has_evidence"`
	OppositionTypes []string `json:"opposition_types"`
	Summary         string   `json:"summary"`
	Confidence      float64  `json:"confidence"`
	Sources         []string `json:"sources"`
}

// Search runs an FTS5 full-text query over the verdict summaries, returning
// matches in relevance order.
func (c *Catalog) Search(ctx context.Context, queryText string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT v.project_id, v.has_evidence, v.opposition_types, v.summary, v.confidence, v.sources
		 FROM verdicts_fts
		 JOIN verdicts v ON v.rowid = verdicts_fts.rowid
		 WHERE verdicts_fts MATCH ?
		 ORDER BY verdicts_fts.rank
		 LIMIT ?`,
		queryText, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Stats summarizes the indexed verdicts.
type Stats struct {
	Total         int     `json:"total"`
	WithEvidence  int     `json:"with_evidence"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Stats reports the indexed verdict counts and the mean confidence.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var avg sql.NullFloat64
	err := c.db.QueryRowContext(ctx,
		`SELECT count(*), coalesce(sum(has_evidence), 0), avg(confidence) FROM verdicts`,
	).Scan(&s.Total, &s.WithEvidence, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("querying catalog stats: %w", err)
	}
	if avg.Valid {
		s.AvgConfidence = avg.Float64
	}
	return s, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			hasEvidence int
			typesJSON   sql.NullString
			sourcesJSON sql.NullString
		)
		if err := rows.Scan(&e.ProjectID, &hasEvidence, &typesJSON, &e.Summary, &e.Confidence, &sourcesJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.HasEvidence = hasEvidence != 0
		if typesJSON.Valid {
			json.Unmarshal([]byte(typesJSON.String), &e.OppositionTypes)
		}
		if sourcesJSON.Valid {
			json.Unmarshal([]byte(sourcesJSON.String), &e.Sources)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
