// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project loads project records from the upstream scraper's CSV
// export and from single-project YAML files. Fields the source leaves blank
// are normalized to "Unknown"; a record without a project id is rejected,
// since the id keys every persisted artifact.
package project

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/opposition-engine/pkg/types"
)

// csvColumns maps the scraper's header names to record fields. Extra
// columns in the CSV are ignored; missing ones leave the field blank, which
// normalizes to "Unknown".
var csvColumns = map[string]func(*types.ProjectRecord, string){
	"project_id":     func(r *types.ProjectRecord, v string) { r.ProjectID = v },
	"project_name":   func(r *types.ProjectRecord, v string) { r.ProjectName = v },
	"location":       func(r *types.ProjectRecord, v string) { r.Location = v },
	"capacity":       func(r *types.ProjectRecord, v string) { r.Capacity = v },
	"agency":         func(r *types.ProjectRecord, v string) { r.Agency = v },
	"present_status": func(r *types.ProjectRecord, v string) { r.PresentStatus = v },
}

// LoadCSV reads the scraper's header-driven CSV export. Rows with a blank
// project id are skipped with a warning; all other rows are normalized and
// returned in file order.
func LoadCSV(path string, w io.Writer) ([]types.ProjectRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening project CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // the scraper's rows are not always rectangular

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	setters := make([]func(*types.ProjectRecord, string), len(header))
	sawID := false
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		setters[i] = csvColumns[key]
		if key == "project_id" {
			sawID = true
		}
	}
	if !sawID {
		return nil, fmt.Errorf("CSV %s has no project_id column", path)
	}

	var records []types.ProjectRecord
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", line, err)
		}

		var rec types.ProjectRecord
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&rec, strings.TrimSpace(value))
			}
		}

		if rec.ProjectID == "" {
			fmt.Fprintf(w, "warning: row %d has no project id, skipping\n", line)
			continue
		}
		records = append(records, rec.Normalized())
	}

	return records, nil
}

// LoadYAML reads a single-project YAML file with the same keys as the CSV
// columns.
func LoadYAML(path string) (types.ProjectRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ProjectRecord{}, fmt.Errorf("reading project file: %w", err)
	}

	var rec types.ProjectRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return types.ProjectRecord{}, fmt.Errorf("parsing project file: %w", err)
	}
	if strings.TrimSpace(rec.ProjectID) == "" {
		return types.ProjectRecord{}, fmt.Errorf("project file %s has no project_id", path)
	}
	return rec.Normalized(), nil
}
