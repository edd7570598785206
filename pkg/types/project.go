// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the opposition-engine
// pipeline: the immutable project record, the per-stage artifacts (query
// pair, search results, content artifacts, verdict), the per-project report,
// and the stage configuration structs.
package types

// Unknown is the placeholder value for project fields the upstream scraper
// did not supply.
const Unknown = "Unknown"

// ProjectRecord is the immutable input describing one renewable-energy
// project. Records come from the upstream scraper's CSV export or from a
// YAML project file; the project id is the identity key for every persisted
// artifact. Records are never mutated by the pipeline.
type ProjectRecord struct {
	// ProjectID identifies the project across all stages and artifacts.
	ProjectID string `json:"project_id" yaml:"project_id"`

	// ProjectName is the project's listed name (e.g. "100 MW Solar Park ...").
	ProjectName string `json:"project_name" yaml:"project_name"`

	// Location is the project site (upazila, district).
	Location string `json:"location" yaml:"location"`

	// Capacity is the listed generation capacity (free-form, e.g. "140 kWp").
	Capacity string `json:"capacity" yaml:"capacity"`

	// Agency is the implementing agency (e.g. "BPDB").
	Agency string `json:"agency" yaml:"agency"`

	// PresentStatus is the project's listed status (e.g. "Completed & Running").
	PresentStatus string `json:"present_status" yaml:"present_status"`
}

// Normalized returns a copy of the record with every blank field replaced by
// Unknown. ProjectID is left as-is: a record without an id is rejected at
// load time rather than silently renamed.
func (r ProjectRecord) Normalized() ProjectRecord {
	fill := func(s string) string {
		if s == "" {
			return Unknown
		}
		return s
	}
	r.ProjectName = fill(r.ProjectName)
	r.Location = fill(r.Location)
	r.Capacity = fill(r.Capacity)
	r.Agency = fill(r.Agency)
	r.PresentStatus = fill(r.PresentStatus)
	return r
}
