// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/opposition-engine/pkg/types"
)

// BatchSummary holds the outcome of a batch run.
type BatchSummary struct {
	Analyzed int
	Failed   int
	Reports  []types.ProjectReport
}

// Total returns the number of projects processed.
func (s BatchSummary) Total() int {
	return s.Analyzed + s.Failed
}

// HasFailures reports whether any project ended in an error report.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// RunBatch processes the records one by one (or parallel at a time, when
// parallel > 1), printing per-project progress and a final summary.
// Duplicate project ids are dropped after their first occurrence — artifacts
// are keyed by id, and the same id must never run concurrently. A failed
// project produces an error report and the batch continues.
func (p *Pipeline) RunBatch(ctx context.Context, records []types.ProjectRecord, parallel int, w io.Writer) BatchSummary {
	records = dedupeByID(records, w)

	reports := make([]types.ProjectReport, len(records))

	if parallel <= 1 {
		for i, rec := range records {
			fmt.Fprintf(w, "[%d/%d] project %s: %s\n", i+1, len(records), rec.ProjectID, rec.ProjectName)
			reports[i] = p.Run(ctx, rec, w)
		}
	} else {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallel)

		for i, rec := range records {
			i, rec := i, rec
			g.Go(func() error {
				var buf lockedWriter
				report := p.Run(gctx, rec, &buf)

				mu.Lock()
				fmt.Fprintf(w, "[%d/%d] project %s: %s\n", i+1, len(records), rec.ProjectID, rec.ProjectName)
				w.Write(buf.Bytes())
				mu.Unlock()

				reports[i] = report
				return nil
			})
		}
		g.Wait()
	}

	var summary BatchSummary
	summary.Reports = reports
	for _, r := range reports {
		if r.Failed() {
			summary.Failed++
		} else {
			summary.Analyzed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d analyzed, %d failed (total: %d)\n",
		summary.Analyzed, summary.Failed, summary.Total())
	return summary
}

// dedupeByID keeps the first record for each project id.
func dedupeByID(records []types.ProjectRecord, w io.Writer) []types.ProjectRecord {
	seen := make(map[string]bool, len(records))
	kept := records[:0:0]
	for _, rec := range records {
		if seen[rec.ProjectID] {
			fmt.Fprintf(w, "warning: duplicate project id %s, keeping first occurrence\n", rec.ProjectID)
			continue
		}
		seen[rec.ProjectID] = true
		kept = append(kept, rec)
	}
	return kept
}

// lockedWriter buffers a parallel worker's progress output so project logs
// are printed contiguously rather than interleaved.
type lockedWriter struct {
	mu  sync.Mutex
	buf []byte
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = append(l.buf, p...)
	return len(p), nil
}

func (l *lockedWriter) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf
}
