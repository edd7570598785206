// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OppositionVerdict is the structured opposition-evidence judgment for one
// project, persisted as summary/<id>.json. The dashboard reads these files
// directly; when the file exists it is always a complete, well-formed
// verdict, never partial JSON.
type OppositionVerdict struct {
	// HasEvidence reports whether the analyzed content documents opposition
	// or conflict related to this project.
	HasEvidence bool `json:"has_evidence" yaml:"has_evidence"`

	// OppositionTypes categorizes the opposition found (e.g. "land
	// acquisition protests", "environmental concerns", "farmer protests").
	OppositionTypes []string `json:"opposition_types" yaml:"opposition_types"`

	// Summary is a detailed account of all findings, opposition or otherwise.
	Summary string `json:"summary" yaml:"summary"`

	// Confidence is the model's confidence in the judgment, in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Sources lists the URLs the judgment drew evidence from. Expected to be
	// a subset of the successful content artifacts' URLs; the analyzer does
	// not mechanically enforce this.
	Sources []string `json:"sources" yaml:"sources"`
}
