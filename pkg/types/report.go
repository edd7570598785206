// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProjectReport is the externally visible unit of work: one per project,
// returned by the orchestrator and printed by the CLI. Exactly one of
// Verdict and Error is set — Error only when an unexpected failure escaped
// the per-stage recovery and the project as a whole could not be analyzed.
type ProjectReport struct {
	ProjectID   string `json:"project_id" yaml:"project_id"`
	ProjectName string `json:"project_name" yaml:"project_name"`

	// Verdict is the analysis outcome; nil when Error is set.
	Verdict *OppositionVerdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`

	// Error is the project-level failure message; empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// URLsFound counts the merged search results fed to extraction.
	URLsFound int `json:"urls_found" yaml:"urls_found"`

	// URLsExtracted counts the content artifacts extracted successfully.
	URLsExtracted int `json:"urls_extracted" yaml:"urls_extracted"`
}

// Failed reports whether this project ended in a project-level error.
func (r ProjectReport) Failed() bool { return r.Error != "" }
