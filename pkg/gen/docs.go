package gen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/specforge-dev/specforge/pkg/spec"
)

// renderDocs produces the docs/ tree: the PRD copy, the serialized spec
// and the human-readable digests.
func (g *Generator) renderDocs(s *spec.Specification, prdText string) (map[string]string, error) {
	specJSON, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal spec for docs: %w", err)
	}
	docs := map[string]string{
		"docs/spec.json":         string(specJSON),
		"docs/workflows.md":      docWorkflows(s.Workflows),
		"docs/requirements.md":   docRequirements(s.Requirements),
		"docs/business_rules.md": docRules(s.BusinessRules),
	}
	if prdText != "" {
		docs["docs/PRD.md"] = prdText
	}
	return docs, nil
}

func docWorkflows(flows []spec.Workflow) string {
	lines := []string{"# Workflows"}
	for _, f := range flows {
		lines = append(lines, "## "+f.Name)
		if f.Trigger != "" {
			lines = append(lines, "*Trigger:* "+f.Trigger)
		}
		for _, act := range f.Actions {
			lines = append(lines, "- "+act)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func docRequirements(reqs []spec.Requirement) string {
	lines := []string{"# Requirements"}
	for _, r := range reqs {
		lines = append(lines, "## "+r.ID, r.Text)
		if len(r.Acceptance) > 0 {
			lines = append(lines, "### Acceptance Criteria")
			for _, a := range r.Acceptance {
				lines = append(lines, "- "+a)
			}
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func docRules(rules []spec.BusinessRule) string {
	lines := []string{"# Business Rules"}
	for _, r := range rules {
		lines = append(lines, fmt.Sprintf("- %s: %s %s", r.ID, r.Target, r.Expr))
	}
	return strings.Join(lines, "\n") + "\n"
}
