// Package trace reports requirement coverage over a generated scaffold
// by scanning for "REQ:" traceability tags.
package trace

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/specforge-dev/specforge/pkg/spec"
)

// textExts limits the scan to file types the generator writes tags into.
var textExts = map[string]struct{}{
	".py": {}, ".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {},
	".html": {}, ".md": {}, ".yml": {}, ".yaml": {}, ".ini": {},
	".txt": {}, ".json": {},
}

// tagPattern matches one REQ tag, which may carry a comma-separated ID
// list.
var tagPattern = regexp.MustCompile(`REQ:\s*([A-Z]-\d{4}(?:\s*,\s*[A-Z]-\d{4})*)`)

// RequirementCoverage is the per-requirement entry of a report.
type RequirementCoverage struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Priority  string   `json:"priority"`
	Component string   `json:"component"`
	Files     []string `json:"files"`
	Covered   bool     `json:"covered"`
}

// Summary aggregates a report.
type Summary struct {
	Total       int     `json:"total"`
	Covered     int     `json:"covered"`
	CoveragePct float64 `json:"coverage_pct"`
}

// Report maps every specification requirement to the generated files
// that reference it.
type Report struct {
	Summary      Summary               `json:"summary"`
	Requirements []RequirementCoverage `json:"requirements"`
}

// Coverage builds the report for a generated project. The requirement
// list comes from docs/spec.json inside the project; a missing spec
// yields an empty report rather than an error.
func Coverage(projectRoot string) (*Report, error) {
	requirements, err := loadRequirements(projectRoot)
	if err != nil {
		return nil, err
	}
	tags, err := scanTags(projectRoot)
	if err != nil {
		return nil, err
	}

	report := &Report{Requirements: []RequirementCoverage{}}
	for _, r := range requirements {
		files := tags[r.ID]
		if files == nil {
			files = []string{}
		}
		priority := r.Priority
		if priority == "" {
			priority = "P2"
		}
		component := r.Component
		if component == "" {
			component = "any"
		}
		report.Requirements = append(report.Requirements, RequirementCoverage{
			ID:        r.ID,
			Text:      r.Text,
			Priority:  priority,
			Component: component,
			Files:     files,
			Covered:   len(files) > 0,
		})
	}

	covered := 0
	for _, e := range report.Requirements {
		if e.Covered {
			covered++
		}
	}
	total := len(report.Requirements)
	denom := total
	if denom == 0 {
		denom = 1
	}
	report.Summary = Summary{
		Total:       total,
		Covered:     covered,
		CoveragePct: 100.0 * float64(covered) / float64(denom),
	}
	return report, nil
}

func loadRequirements(projectRoot string) ([]spec.Requirement, error) {
	raw, err := os.ReadFile(filepath.Join(projectRoot, "docs", "spec.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read spec.json: %w", err)
	}
	var s spec.Specification
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse spec.json: %w", err)
	}
	return s.Requirements, nil
}

// scanTags walks the project and collects, per requirement ID, the
// relative paths of files tagged with it.
func scanTags(projectRoot string) (map[string][]string, error) {
	hits := make(map[string]map[string]struct{})
	err := filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := textExts[filepath.Ext(path)]; !ok {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			// Unreadable files are skipped, matching the scan's
			// best-effort contract.
			return nil
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		for _, m := range tagPattern.FindAllStringSubmatch(string(content), -1) {
			for _, rid := range strings.Split(m[1], ",") {
				rid = strings.TrimSpace(rid)
				if hits[rid] == nil {
					hits[rid] = make(map[string]struct{})
				}
				hits[rid][rel] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}

	out := make(map[string][]string, len(hits))
	for rid, set := range hits {
		files := make([]string, 0, len(set))
		for f := range set {
			files = append(files, f)
		}
		sort.Strings(files)
		out[rid] = files
	}
	return out, nil
}
