// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/opposition-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(types.StoreConfig{DataDir: t.TempDir()})
}

func TestQueryPairRoundTrip(t *testing.T) {
	s := newTestStore(t)
	pair := types.QueryPair{
		EnglishQuery: "solar park Pabna conflict",
		BanglaQuery:  "সোলার পার্ক পাবনা সংঘাত",
	}

	if err := s.WriteQueryPair("351", pair); err != nil {
		t.Fatalf("WriteQueryPair: %v", err)
	}
	got, err := s.ReadQueryPair("351")
	if err != nil {
		t.Fatalf("ReadQueryPair: %v", err)
	}
	if got != pair {
		t.Errorf("got %+v, want %+v", got, pair)
	}
}

func TestBanglaStoredUnescaped(t *testing.T) {
	s := newTestStore(t)
	pair := types.QueryPair{EnglishQuery: "q", BanglaQuery: "সংঘাত"}
	if err := s.WriteQueryPair("1", pair); err != nil {
		t.Fatalf("WriteQueryPair: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.BaseDir(), "search", "1.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "সংঘাত") {
		t.Errorf("Bangla text escaped in file:\n%s", data)
	}
	if strings.Contains(string(data), `\u`) {
		t.Errorf("unicode escapes in file:\n%s", data)
	}
	// Indented, human-readable layout.
	if !strings.Contains(string(data), "{\n  \"english_query\"") {
		t.Errorf("file not indented:\n%s", data)
	}
}

func TestURLsStoredUnescaped(t *testing.T) {
	s := newTestStore(t)
	v := types.OppositionVerdict{
		OppositionTypes: []string{},
		Summary:         "s",
		Sources:         []string{"https://example.com/a?x=1&y=2"},
	}
	if err := s.WriteVerdict("2", v); err != nil {
		t.Fatalf("WriteVerdict: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.BaseDir(), "summary", "2.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), `&`) {
		t.Errorf("ampersand HTML-escaped:\n%s", data)
	}
}

func TestOverwriteIsByteIdentical(t *testing.T) {
	s := newTestStore(t)
	cs := types.CombinedSearch{
		EnglishSearch:   types.EmptyResultSet("en q", "en"),
		BanglaSearch:    types.EmptyResultSet("bn q", "bn"),
		CombinedResults: types.MergeSearches(types.EmptyResultSet("en q", "en"), types.EmptyResultSet("bn q", "bn")),
	}

	if err := s.WriteSearches("7", cs); err != nil {
		t.Fatalf("WriteSearches: %v", err)
	}
	path := filepath.Join(s.BaseDir(), "result", "7.json")
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if err := s.WriteSearches("7", cs); err != nil {
		t.Fatalf("WriteSearches (rerun): %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("rewrite changed bytes:\n--- first\n%s\n--- second\n%s", first, second)
	}
}

func TestArtifactsNilBecomesEmptyArray(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteArtifacts("3", nil); err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.BaseDir(), "content", "3.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("nil artifacts persisted as %q, want []", data)
	}
}

func TestWriteRaw(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteRaw("351", 2, []byte("raw reader output")); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.BaseDir(), "content", "351_2.md"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "raw reader output" {
		t.Errorf("raw file = %q", data)
	}
}

func TestHasVerdict(t *testing.T) {
	s := newTestStore(t)
	if s.HasVerdict("351") {
		t.Error("HasVerdict true before write")
	}
	if err := s.WriteVerdict("351", types.OppositionVerdict{OppositionTypes: []string{}, Sources: []string{}}); err != nil {
		t.Fatalf("WriteVerdict: %v", err)
	}
	if !s.HasVerdict("351") {
		t.Error("HasVerdict false after write")
	}
}

func TestReadMissingArtifact(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ReadQueryPair("nope"); err == nil {
		t.Error("ReadQueryPair on missing file returned nil error")
	}
	if _, err := s.ReadSearches("nope"); err == nil {
		t.Error("ReadSearches on missing file returned nil error")
	}
	if _, err := s.ReadArtifacts("nope"); err == nil {
		t.Error("ReadArtifacts on missing file returned nil error")
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteQueryPair("1", types.QueryPair{EnglishQuery: "a", BanglaQuery: "b"}); err != nil {
		t.Fatalf("WriteQueryPair: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(s.BaseDir(), "search"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
