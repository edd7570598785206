// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the four analysis stages for one project and
// persists each stage's output before the next begins. Stage failures are
// absorbed by the stages themselves; anything unexpected that still escapes
// is caught at the project boundary so one broken project never aborts a
// batch.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/opposition-engine/internal/analyze"
	"github.com/pdiddy/opposition-engine/internal/artifact"
	"github.com/pdiddy/opposition-engine/internal/content"
	"github.com/pdiddy/opposition-engine/internal/genai"
	"github.com/pdiddy/opposition-engine/internal/query"
	"github.com/pdiddy/opposition-engine/internal/search"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

// Pipeline wires the stages for one or more projects.
type Pipeline struct {
	Synthesizer *query.Synthesizer
	Search      *search.Client
	Fetcher     *content.Fetcher
	Analyzer    *analyze.Analyzer
	Store       *artifact.Store

	// Resume loads a stage's persisted artifact instead of recomputing it
	// when the file already exists. Off by default: a plain run recomputes
	// and overwrites every stage.
	Resume bool
}

// New assembles a pipeline from the configuration and a model backend. The
// artifact store doubles as the fetcher's raw-output sink.
func New(cfg types.PipelineConfig, model genai.Model) *Pipeline {
	store := artifact.NewStore(cfg.Store)
	return &Pipeline{
		Synthesizer: &query.Synthesizer{Model: model},
		Search:      search.NewClient(cfg.Search),
		Fetcher:     content.NewFetcher(cfg.Content, store),
		Analyzer:    &analyze.Analyzer{Model: model},
		Store:       store,
	}
}

// Run executes the full pipeline for one project and returns its report.
// The stages themselves never fail; a store write error or a bug escaping a
// stage is converted into an error report rather than propagated.
func (p *Pipeline) Run(ctx context.Context, rec types.ProjectRecord, w io.Writer) (report types.ProjectReport) {
	rec = rec.Normalized()
	report = types.ProjectReport{
		ProjectID:   rec.ProjectID,
		ProjectName: rec.ProjectName,
	}

	defer func() {
		if r := recover(); r != nil {
			report.Error = fmt.Sprintf("panic: %v", r)
			report.Verdict = nil
			fmt.Fprintf(w, "failed %s: %s\n", rec.ProjectID, report.Error)
		}
	}()

	verdict, found, extracted, err := p.runStages(ctx, rec, w)
	if err != nil {
		report.Error = err.Error()
		fmt.Fprintf(w, "failed %s: %v\n", rec.ProjectID, err)
		return report
	}

	report.Verdict = &verdict
	report.URLsFound = found
	report.URLsExtracted = extracted
	return report
}

func (p *Pipeline) runStages(ctx context.Context, rec types.ProjectRecord, w io.Writer) (types.OppositionVerdict, int, int, error) {
	id := rec.ProjectID

	// Stage 1: query synthesis.
	pair, loaded := p.loadQueries(id)
	if loaded {
		fmt.Fprintf(w, "resume %s: loaded queries\n", id)
	} else {
		fmt.Fprintf(w, "synthesizing queries for %s\n", id)
		pair = p.Synthesizer.Synthesize(ctx, rec, w)
		if err := p.Store.WriteQueryPair(id, pair); err != nil {
			return types.OppositionVerdict{}, 0, 0, err
		}
	}

	// Stage 2: both language searches, sequential, then merge.
	cs, loaded := p.loadSearches(id)
	if loaded {
		fmt.Fprintf(w, "resume %s: loaded %d search results\n", id, cs.CombinedResults.TotalCount)
	} else {
		fmt.Fprintf(w, "searching (en): %s\n", pair.EnglishQuery)
		english := p.Search.Search(ctx, pair.EnglishQuery, "en", w)
		fmt.Fprintf(w, "searching (bn): %s\n", pair.BanglaQuery)
		bangla := p.Search.Search(ctx, pair.BanglaQuery, "bn", w)

		cs = types.CombinedSearch{
			EnglishSearch:   english,
			BanglaSearch:    bangla,
			CombinedResults: types.MergeSearches(english, bangla),
		}
		if err := p.Store.WriteSearches(id, cs); err != nil {
			return types.OppositionVerdict{}, 0, 0, err
		}
	}
	merged := cs.CombinedResults

	// Stage 3: content extraction over the merged results.
	artifacts, loaded := p.loadArtifacts(id)
	if loaded {
		fmt.Fprintf(w, "resume %s: loaded %d content artifacts\n", id, len(artifacts))
	} else {
		artifacts = p.Fetcher.Extract(ctx, merged, id, w)
		if err := p.Store.WriteArtifacts(id, artifacts); err != nil {
			return types.OppositionVerdict{}, 0, 0, err
		}
	}

	// Stage 4: evidence analysis.
	verdict, loaded := p.loadVerdict(id)
	if loaded {
		fmt.Fprintf(w, "resume %s: loaded verdict\n", id)
	} else {
		fmt.Fprintf(w, "analyzing %d artifacts for %s\n", len(artifacts), id)
		verdict = p.Analyzer.Analyze(ctx, rec, artifacts, w)
		if err := p.Store.WriteVerdict(id, verdict); err != nil {
			return types.OppositionVerdict{}, 0, 0, err
		}
	}

	extracted := 0
	for _, a := range artifacts {
		if a.Success {
			extracted++
		}
	}
	return verdict, len(merged.Results), extracted, nil
}

func (p *Pipeline) loadQueries(id string) (types.QueryPair, bool) {
	if !p.Resume {
		return types.QueryPair{}, false
	}
	pair, err := p.Store.ReadQueryPair(id)
	return pair, err == nil
}

func (p *Pipeline) loadSearches(id string) (types.CombinedSearch, bool) {
	if !p.Resume {
		return types.CombinedSearch{}, false
	}
	cs, err := p.Store.ReadSearches(id)
	return cs, err == nil
}

func (p *Pipeline) loadArtifacts(id string) ([]types.ContentArtifact, bool) {
	if !p.Resume {
		return nil, false
	}
	artifacts, err := p.Store.ReadArtifacts(id)
	return artifacts, err == nil
}

func (p *Pipeline) loadVerdict(id string) (types.OppositionVerdict, bool) {
	if !p.Resume {
		return types.OppositionVerdict{}, false
	}
	verdict, err := p.Store.ReadVerdict(id)
	return verdict, err == nil
}
