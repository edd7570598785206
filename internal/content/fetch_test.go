// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/opposition-engine/internal/httputil"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	m.Run()
}

func swapReaderBase(t *testing.T, url string) {
	t.Helper()
	old := readerAPIBase
	readerAPIBase = url
	t.Cleanup(func() { readerAPIBase = old })
}

// memorySink captures raw writes in memory.
type memorySink struct {
	writes map[string][]byte
	err    error
}

func (s *memorySink) WriteRaw(projectID string, index int, data []byte) error {
	if s.err != nil {
		return s.err
	}
	if s.writes == nil {
		s.writes = make(map[string][]byte)
	}
	s.writes[fmt.Sprintf("%s_%d", projectID, index)] = data
	return nil
}

func resultSet(links ...string) types.SearchResultSet {
	set := types.SearchResultSet{Language: "mixed"}
	for i, link := range links {
		set.Results = append(set.Results, types.SearchResult{
			Title:    fmt.Sprintf("Result %d", i+1),
			Link:     link,
			Position: i + 1,
		})
	}
	set.TotalCount = len(set.Results)
	return set
}

func newFetcher(reader *httptest.Server, raw RawSink) *Fetcher {
	return &Fetcher{
		Config: types.ContentConfig{MaxChars: 15000},
		HTTP:   reader.Client(),
		Raw:    raw,
	}
}

func TestExtractViaReaderProxy(t *testing.T) {
	var gotPath, gotUA string
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "Villagers protested the land survey for the\nproposed solar plant near their paddy fields.")
	}))
	defer reader.Close()
	swapReaderBase(t, reader.URL)

	sink := &memorySink{}
	f := newFetcher(reader, sink)

	artifacts := f.Extract(context.Background(), resultSet("https://example.com/article"), "351", io.Discard)

	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(artifacts))
	}
	a := artifacts[0]
	if !a.Success || a.Error != "" {
		t.Fatalf("artifact = %+v", a)
	}
	if a.URL != "https://example.com/article" || a.Title != "Result 1" {
		t.Errorf("artifact identity = %q / %q", a.URL, a.Title)
	}
	// Reflowed: the soft wrap is gone.
	if strings.Contains(a.Text, "\n") {
		t.Errorf("text not reflowed: %q", a.Text)
	}

	if gotPath != "/https://example.com/article" {
		t.Errorf("reader path = %q", gotPath)
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q", gotUA)
	}

	// Raw output persisted pre-reflow, under <id>_<n>.
	raw, ok := sink.writes["351_1"]
	if !ok {
		t.Fatalf("raw output not persisted; writes = %v", sink.writes)
	}
	if !strings.Contains(string(raw), "survey for the\nproposed") {
		t.Errorf("raw output was reflowed: %q", raw)
	}
}

func TestExtractFallsBackToReadability(t *testing.T) {
	// Target page served directly; readability should find the article text.
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<html><head><title>Protest news</title></head><body><article><p>Farmers protested land acquisition for the solar project in 2021. The district administration suspended the survey after three days of demonstrations by affected families.</p></article></body></html>`)
	}))
	defer page.Close()

	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer reader.Close()
	swapReaderBase(t, reader.URL)

	f := newFetcher(page, &memorySink{})
	artifacts := f.Extract(context.Background(), resultSet(page.URL), "77", io.Discard)

	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(artifacts))
	}
	a := artifacts[0]
	if !a.Success {
		t.Fatalf("artifact failed: %+v", a)
	}
	if !strings.Contains(a.Text, "Farmers protested land acquisition") {
		t.Errorf("text = %q", a.Text)
	}
}

func TestExtractBothPathsFail(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer reader.Close()
	swapReaderBase(t, reader.URL)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer page.Close()

	sink := &memorySink{}
	f := newFetcher(page, sink)
	artifacts := f.Extract(context.Background(), resultSet(page.URL), "9", io.Discard)

	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(artifacts))
	}
	a := artifacts[0]
	if a.Success || a.Text != "" || a.Error == "" {
		t.Errorf("artifact = %+v, want failed with error", a)
	}
	if len(sink.writes) != 0 {
		t.Errorf("raw output written for a fully failed URL: %v", sink.writes)
	}
}

func TestExtractIsolatesPerURLFailures(t *testing.T) {
	// Reader succeeds only for /good; the direct fallback always 404s.
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/good") {
			io.WriteString(w, "Readable article content about the project site and its surroundings.")
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer reader.Close()
	swapReaderBase(t, reader.URL)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer page.Close()

	set := resultSet(page.URL+"/bad1", page.URL+"/good", page.URL+"/bad2")
	f := newFetcher(page, &memorySink{})
	artifacts := f.Extract(context.Background(), set, "12", io.Discard)

	if len(artifacts) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(artifacts))
	}
	// Order preserved, one artifact per input.
	for i, a := range artifacts {
		if a.URL != set.Results[i].Link {
			t.Errorf("artifact %d url = %q, want %q", i, a.URL, set.Results[i].Link)
		}
	}
	if artifacts[0].Success || !artifacts[1].Success || artifacts[2].Success {
		t.Errorf("success flags = %v %v %v, want false true false",
			artifacts[0].Success, artifacts[1].Success, artifacts[2].Success)
	}
}

func TestExtractRawWriteFailureIsWarning(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "Article content that extracts fine regardless of raw persistence.")
	}))
	defer reader.Close()
	swapReaderBase(t, reader.URL)

	sink := &memorySink{err: fmt.Errorf("disk full")}
	f := newFetcher(reader, sink)

	var log strings.Builder
	artifacts := f.Extract(context.Background(), resultSet("https://example.com/x"), "5", &log)

	if !artifacts[0].Success {
		t.Errorf("raw write failure marked the artifact failed: %+v", artifacts[0])
	}
	if !strings.Contains(log.String(), "warning") {
		t.Errorf("no warning logged: %q", log.String())
	}
}

func TestExtractTruncatesLongContent(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, strings.Repeat("word ", 200))
	}))
	defer reader.Close()
	swapReaderBase(t, reader.URL)

	f := newFetcher(reader, nil)
	f.Config.MaxChars = 50
	artifacts := f.Extract(context.Background(), resultSet("https://example.com/long"), "3", io.Discard)

	if !strings.HasSuffix(artifacts[0].Text, "... [Content truncated]") {
		t.Errorf("text not truncated: %q", artifacts[0].Text)
	}
}

func TestExtractAppliesDelayAfterEveryURL(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "Some article content long enough to pass through extraction.")
	}))
	defer reader.Close()
	swapReaderBase(t, reader.URL)

	f := newFetcher(reader, nil)
	f.Config.FetchDelay = 30 * time.Millisecond

	start := time.Now()
	f.Extract(context.Background(), resultSet("https://example.com/a", "https://example.com/b"), "1", io.Discard)
	elapsed := time.Since(start)

	// Two URLs, delay after each including the last.
	if elapsed < 60*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 60ms of pacing", elapsed)
	}
}

func TestExtractEmptySet(t *testing.T) {
	f := &Fetcher{Config: types.ContentConfig{}}
	artifacts := f.Extract(context.Background(), types.SearchResultSet{}, "0", io.Discard)
	if len(artifacts) != 0 {
		t.Errorf("got %d artifacts, want 0", len(artifacts))
	}
}
