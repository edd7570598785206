// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns a project record into a bilingual search-query pair.
// The model is asked for one English and one Bangla query biased toward
// land-conflict and protest terminology; when the model call or its reply is
// unusable the package degrades to deterministic queries instead of failing.
package query

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/template"

	"github.com/pdiddy/opposition-engine/internal/genai"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

// queryPromptTmpl asks the model for the two search queries. The queries are
// kept deliberately broad: overly specific queries miss news coverage, EIA
// documents, and financial reporting about the project.
var queryPromptTmpl = template.Must(template.New("queries").Parse(`Based on the following renewable energy project information, generate two simple search queries to find any information about this project:

Project Name: {{.ProjectName}}
Location: {{.Location}}
Capacity: {{.Capacity}}
Agency: {{.Agency}}
Status: {{.PresentStatus}}

Generate:
1. An English search query with just the project name, location, and conflict - keep it simple and general, NO QUOTES
2. A Bangla search query with the project name, location, and conflict in Bangla - keep it simple and general, NO QUOTES

The queries should be broad enough to find any information about this project including news articles, reports, EIA documents, financial information, PPA details, tariff rates, or any other project-related content. Don't make them too specific. Do not use quotes around any part of the query.

Return the queries in JSON format with fields "english_query" and "bangla_query".
`))

// Synthesizer generates the query pair for one project.
type Synthesizer struct {
	Model genai.Model
}

// Synthesize produces the bilingual query pair for a project. It never
// fails: a model error, an unparseable reply, or a reply with a blank query
// all degrade to the deterministic fallback pair, so both returned fields
// are always non-empty.
func (s *Synthesizer) Synthesize(ctx context.Context, rec types.ProjectRecord, w io.Writer) types.QueryPair {
	var buf bytes.Buffer
	if err := queryPromptTmpl.Execute(&buf, rec); err != nil {
		fmt.Fprintf(w, "warning: rendering query prompt: %v\n", err)
		return FallbackQueries(rec)
	}

	reply, err := s.Model.Generate(ctx, buf.String())
	if err != nil {
		fmt.Fprintf(w, "warning: query generation failed: %v\n", err)
		return FallbackQueries(rec)
	}

	var pair types.QueryPair
	if err := genai.DecodeJSON(reply, &pair); err != nil {
		fmt.Fprintf(w, "warning: could not parse query reply: %v\n", err)
		return FallbackQueries(rec)
	}
	if pair.EnglishQuery == "" || pair.BanglaQuery == "" {
		fmt.Fprintf(w, "warning: model returned a blank query, using fallback\n")
		return FallbackQueries(rec)
	}
	return pair
}

// FallbackQueries builds the deterministic query pair used when the model
// cannot. Low quality is acceptable here; a blank query is not.
func FallbackQueries(rec types.ProjectRecord) types.QueryPair {
	return types.QueryPair{
		EnglishQuery: fmt.Sprintf("%s %s conflict", rec.ProjectName, rec.Location),
		BanglaQuery:  fmt.Sprintf("%s %s সংঘাত", rec.ProjectName, rec.Location),
	}
}
