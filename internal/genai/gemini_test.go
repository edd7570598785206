// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/opposition-engine/internal/httputil"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	m.Run()
}

func geminiReply(texts ...string) string {
	type part struct {
		Text string `json:"text"`
	}
	parts := make([]part, len(texts))
	for i, txt := range texts {
		parts[i] = part{Text: txt}
	}
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts, "role": "model"}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, geminiReply(`{"english_query": "q1", "bangla_query": "q2"}`))
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	g := &Gemini{APIKey: "test-key", Model: "gemini-2.0-flash-exp", Client: ts.Client()}
	text, err := g.Generate(context.Background(), "generate queries")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if text != `{"english_query": "q1", "bangla_query": "q2"}` {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash-exp:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("x-goog-api-key = %q", gotKey)
	}
	if !strings.Contains(string(gotBody), "generate queries") {
		t.Errorf("request body missing prompt: %s", gotBody)
	}
}

func TestGeminiGenerateJoinsParts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, geminiReply("first ", "second"))
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	g := &Gemini{APIKey: "k", Model: "m", Client: ts.Client()}
	text, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "first second" {
		t.Errorf("text = %q, want %q", text, "first second")
	}
}

func TestGeminiGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"server error", http.StatusInternalServerError, `{"error": "boom"}`, "returned 500"},
		{"invalid json", http.StatusOK, "not json", "decoding Gemini response"},
		{"no candidates", http.StatusOK, `{"candidates": []}`, "no candidates"},
		{"empty text", http.StatusOK, geminiReply("   "), "empty text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			old := geminiAPIBase
			geminiAPIBase = ts.URL
			defer func() { geminiAPIBase = old }()

			g := &Gemini{APIKey: "k", Model: "m", Client: ts.Client()}
			_, err := g.Generate(context.Background(), "p")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("err = %q, want it to contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestGeminiGenerateRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, geminiReply("recovered"))
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	g := &Gemini{APIKey: "k", Model: "m", MaxRetries: 2, Client: ts.Client()}
	text, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q", text)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}
