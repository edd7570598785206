// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze judges extracted web content for evidence of opposition
// to a project. All successful extractions are aggregated into one model
// prompt; the reply is decoded into a structured verdict. The stage never
// fails — unusable model output degrades to a deterministic fallback
// verdict with zero confidence.
package analyze

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/opposition-engine/internal/genai"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

// noContentSummary is the short-circuit verdict summary when nothing was
// extracted. The model is deliberately not called in that case.
const noContentSummary = "No content could be extracted from search results to analyze."

// analysisPromptTmpl asks the model for the opposition verdict over the
// aggregated evidence.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`Analyze the following content for any information related to this renewable energy project, including opposition, conflict, or any other project details:

PROJECT INFORMATION:
Project Name: {{.Record.ProjectName}}
Location: {{.Record.Location}}
Capacity: {{.Record.Capacity}}
Agency: {{.Record.Agency}}
Status: {{.Record.PresentStatus}}

EXTRACTED CONTENT:
{{.Evidence}}

Please analyze this content and determine:
1. Is there evidence of opposition or conflict related to this specific project?
2. What types of opposition are mentioned (e.g., land acquisition protests, environmental concerns, farmer protests, etc.)?
3. What other project information is available (EIA reports, financial details, tariff rates, PPA information, etc.)?
4. Provide a detailed summary of all findings
5. Rate your confidence in this analysis (0.0 to 1.0)
6. List the specific URLs that contained evidence

Return your analysis in JSON format with these fields:
- has_evidence: boolean
- opposition_types: array of strings
- summary: detailed string
- confidence: number between 0.0 and 1.0
- sources: array of URLs that contained evidence

Be specific about the project name and location when making your analysis. Include any relevant project information found, not just opposition.
`))

// Analyzer produces the opposition verdict for one project.
type Analyzer struct {
	Model genai.Model
}

// Analyze filters the artifacts to successful, non-empty extractions and
// asks the model to judge them. With nothing to analyze it short-circuits
// to a no-evidence verdict without a model call. Model errors and
// unparseable replies degrade to a fallback verdict; Analyze never fails.
func (a *Analyzer) Analyze(ctx context.Context, rec types.ProjectRecord, artifacts []types.ContentArtifact, w io.Writer) types.OppositionVerdict {
	evidence := buildEvidence(artifacts)
	if strings.TrimSpace(evidence) == "" {
		fmt.Fprintf(w, "no extracted content, skipping model analysis\n")
		return fallbackVerdict(noContentSummary)
	}

	var buf bytes.Buffer
	err := analysisPromptTmpl.Execute(&buf, struct {
		Record   types.ProjectRecord
		Evidence string
	}{rec, evidence})
	if err != nil {
		fmt.Fprintf(w, "warning: rendering analysis prompt: %v\n", err)
		return fallbackVerdict(fmt.Sprintf("Error during analysis: %v", err))
	}

	reply, err := a.Model.Generate(ctx, buf.String())
	if err != nil {
		fmt.Fprintf(w, "warning: analysis failed: %v\n", err)
		return fallbackVerdict(fmt.Sprintf("Error during analysis: %v", err))
	}

	var verdict types.OppositionVerdict
	if err := genai.DecodeJSON(reply, &verdict); err != nil {
		fmt.Fprintf(w, "warning: could not parse analysis reply: %v\n", err)
		return fallbackVerdict("Could not parse analysis results")
	}

	return normalize(verdict)
}

// buildEvidence concatenates all successful artifacts into one labeled
// evidence block.
func buildEvidence(artifacts []types.ContentArtifact) string {
	var sb strings.Builder
	for _, art := range artifacts {
		if !art.Success || art.Text == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n\n--- Content from %s ---\n", art.URL)
		fmt.Fprintf(&sb, "Title: %s\n", art.Title)
		fmt.Fprintf(&sb, "Content: %s\n", art.Text)
	}
	return sb.String()
}

// fallbackVerdict is the deterministic no-evidence verdict carrying an
// explanatory summary.
func fallbackVerdict(summary string) types.OppositionVerdict {
	return types.OppositionVerdict{
		HasEvidence:     false,
		OppositionTypes: []string{},
		Summary:         summary,
		Confidence:      0.0,
		Sources:         []string{},
	}
}

// normalize keeps the verdict within its contract: slices are never nil
// (the persisted JSON shows [] rather than null) and confidence stays in
// [0, 1].
func normalize(v types.OppositionVerdict) types.OppositionVerdict {
	if v.OppositionTypes == nil {
		v.OppositionTypes = []string{}
	}
	if v.Sources == nil {
		v.Sources = []string{}
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	return v
}
