// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact persists each pipeline stage's output as one JSON
// document per project under the four stage directories. Writes are atomic
// (temp file + rename), so a consumer reading summary/<id>.json never sees
// partial JSON. Re-running a project overwrites its stage files; nothing is
// appended or deleted during normal operation.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/opposition-engine/pkg/types"
)

// Stage directory names under the base data dir.
const (
	searchDir  = "search"
	resultDir  = "result"
	contentDir = "content"
	summaryDir = "summary"
)

// Store owns the stage directories for persisted artifacts.
type Store struct {
	baseDir string
}

// NewStore builds a store rooted at the configured data directory.
func NewStore(cfg types.StoreConfig) *Store {
	base := cfg.DataDir
	if base == "" {
		base = "data"
	}
	return &Store{baseDir: base}
}

// BaseDir returns the data directory the store is rooted at.
func (s *Store) BaseDir() string { return s.baseDir }

// SummaryDir returns the directory holding the persisted verdicts. The
// catalog ingests from here.
func (s *Store) SummaryDir() string { return filepath.Join(s.baseDir, summaryDir) }

// WriteQueryPair persists the query-synthesis stage output.
func (s *Store) WriteQueryPair(projectID string, pair types.QueryPair) error {
	return s.writeJSON(searchDir, projectID, pair)
}

// ReadQueryPair loads a previously persisted query pair.
func (s *Store) ReadQueryPair(projectID string) (types.QueryPair, error) {
	var pair types.QueryPair
	err := s.readJSON(searchDir, projectID, &pair)
	return pair, err
}

// WriteSearches persists both language result sets and their merged view.
func (s *Store) WriteSearches(projectID string, cs types.CombinedSearch) error {
	return s.writeJSON(resultDir, projectID, cs)
}

// ReadSearches loads a previously persisted search stage output.
func (s *Store) ReadSearches(projectID string) (types.CombinedSearch, error) {
	var cs types.CombinedSearch
	err := s.readJSON(resultDir, projectID, &cs)
	return cs, err
}

// WriteArtifacts persists the content-extraction stage output.
func (s *Store) WriteArtifacts(projectID string, artifacts []types.ContentArtifact) error {
	if artifacts == nil {
		artifacts = []types.ContentArtifact{}
	}
	return s.writeJSON(contentDir, projectID, artifacts)
}

// ReadArtifacts loads a previously persisted extraction stage output.
func (s *Store) ReadArtifacts(projectID string) ([]types.ContentArtifact, error) {
	var artifacts []types.ContentArtifact
	err := s.readJSON(contentDir, projectID, &artifacts)
	return artifacts, err
}

// WriteVerdict persists the analysis stage output. This file is the
// contract with the dashboard: when present it is always complete.
func (s *Store) WriteVerdict(projectID string, verdict types.OppositionVerdict) error {
	return s.writeJSON(summaryDir, projectID, verdict)
}

// ReadVerdict loads a previously persisted verdict.
func (s *Store) ReadVerdict(projectID string) (types.OppositionVerdict, error) {
	var verdict types.OppositionVerdict
	err := s.readJSON(summaryDir, projectID, &verdict)
	return verdict, err
}

// HasVerdict reports whether a verdict file exists for the project.
func (s *Store) HasVerdict(projectID string) bool {
	_, err := os.Stat(s.path(summaryDir, projectID+".json"))
	return err == nil
}

// WriteRaw persists one URL's raw extractor output next to the content
// stage JSON, as content/<id>_<n>.md.
func (s *Store) WriteRaw(projectID string, index int, data []byte) error {
	dir := filepath.Join(s.baseDir, contentDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("%s_%d.md", projectID, index)
	return writeAtomic(filepath.Join(dir, name), data)
}

func (s *Store) path(stage, name string) string {
	return filepath.Join(s.baseDir, stage, name)
}

// writeJSON marshals v as indented, HTML-unescaped JSON and writes it
// atomically to <base>/<stage>/<id>.json. Indentation and escaping are part
// of the wire contract: Bangla text stays readable in the files, and
// identical inputs produce byte-identical output across runs.
func (s *Store) writeJSON(stage, projectID string, v any) error {
	dir := filepath.Join(s.baseDir, stage)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := MarshalIndent(v)
	if err != nil {
		return fmt.Errorf("marshaling %s artifact: %w", stage, err)
	}
	return writeAtomic(s.path(stage, projectID+".json"), data)
}

func (s *Store) readJSON(stage, projectID string, v any) error {
	path := s.path(stage, projectID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s artifact: %w", stage, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes data to path via a temp file and rename so readers
// never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// MarshalIndent renders v in the store's wire encoding: two-space indent,
// HTML escaping off, trailing newline. The CLI uses the same encoding for
// reports printed to stdout.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
