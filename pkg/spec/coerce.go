package spec

import (
	"regexp"
	"strings"

	"github.com/specforge-dev/specforge/pkg/textnorm"
)

var (
	namePattern = regexp.MustCompile(`(?i)(?:name|project|product)[:\-]\s*([A-Za-z0-9_\- ]+)`)
	slugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// NameFromPRD derives a project name from a name:/project:/product: label
// line in the PRD, defaulting to "my-app".
func NameFromPRD(prdText string) string {
	name := "my-app"
	if m := namePattern.FindStringSubmatch(prdText); m != nil {
		name = strings.TrimSpace(m[1])
	}
	return Slugify(name)
}

// Slugify lowercases and collapses non-alphanumeric runs to hyphens.
func Slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// Coerce builds a specification draft from an arbitrary, possibly
// malformed object. Every top-level key the schema requires is present in
// the result with a type-correct leaf; missing stack fields take the
// Unspecified sentinel and a missing meta.name is derived from the PRD.
// Coerce never fails; it only fills gaps.
func Coerce(raw any, prdText string) *Specification {
	data := asMap(raw)

	meta := asMap(data["meta"])
	name := strings.TrimSpace(textnorm.FlexibleString(meta["name"]))
	if name == "" {
		name = NameFromPRD(prdText)
	}
	s := &Specification{
		Meta: Meta{
			Name:    name,
			Domain:  stringOr(meta, "domain", "App"),
			Version: stringOr(meta, "version", "0.1.0"),
		},
	}

	stacks := asMap(data["stacks"])
	s.Stacks = Stacks{
		Backend:  coerceStack(stacks["backend"], "framework", "lang", "orm", "runtime"),
		Frontend: coerceStack(stacks["frontend"], "framework", "lang", "ui"),
		Database: coerceStack(stacks["database"], "type", "version"),
		Infra:    coerceStack(stacks["infra"], "orchestrator", "cloud"),
	}

	s.Entities = CoerceEntities(data["entities"])
	s.Workflows = CoerceWorkflows(data["workflows"])
	s.Requirements = CoerceRequirements(data["requirements"])
	s.BusinessRules = CoerceRules(data["business_rules"])
	s.Integrations = asMap(data["integrations"])
	s.NonFunctional = asMap(data["non_functional"])
	s.CICD = asMap(data["ci_cd"])
	s.Constraints = asMap(data["constraints"])
	return s
}

// coerceStack reads a loose stack object, keeping whatever string-valued
// keys it carries and guaranteeing the required keys exist.
func coerceStack(raw any, required ...string) map[string]string {
	m := asMap(raw)
	out := make(map[string]string, len(m)+len(required))
	for k, v := range m {
		out[k] = textnorm.FlexibleString(v)
	}
	for _, k := range required {
		if strings.TrimSpace(out[k]) == "" {
			out[k] = Unspecified
		}
	}
	return out
}

// CoerceEntities cleans a loose entity list. Entries without a non-empty
// string name are discarded; field names are unique within an entity,
// first occurrence wins.
func CoerceEntities(raw any) []Entity {
	items, ok := raw.([]any)
	if !ok {
		return []Entity{}
	}
	out := make([]Entity, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, ok := m["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		ent := Entity{Name: name, Fields: []Field{}}
		fields, _ := m["fields"].([]any)
		seen := make(map[string]struct{})
		for _, f := range fields {
			fm, ok := f.(map[string]any)
			if !ok {
				continue
			}
			fname, ok := fm["name"].(string)
			if !ok || strings.TrimSpace(fname) == "" {
				continue
			}
			if _, dup := seen[fname]; dup {
				continue
			}
			seen[fname] = struct{}{}
			field := Field{Name: fname, Type: stringOr(fm, "type", "string")}
			if _, has := fm["pk"]; has {
				field.PK = textnorm.FlexibleBool(fm["pk"])
			}
			if _, has := fm["unique"]; has {
				field.Unique = textnorm.FlexibleBool(fm["unique"])
			}
			if fm["fk"] != nil {
				field.FK = textnorm.FlexibleString(fm["fk"])
			}
			ent.Fields = append(ent.Fields, field)
		}
		out = append(out, ent)
	}
	return DedupeEntities(out)
}

// CoerceWorkflows cleans a loose workflow list. Names are capped at 80
// characters; a string-valued actions field becomes a single-action list.
func CoerceWorkflows(raw any) []Workflow {
	items, ok := raw.([]any)
	if !ok {
		return []Workflow{}
	}
	out := make([]Workflow, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := textnorm.FlexibleString(m["name"])
		trigger := textnorm.FlexibleString(m["trigger"])
		if name == "" {
			name = trigger
		}
		if name == "" {
			name = "Workflow"
		}
		name = textnorm.TruncateRunes(name, 80)
		var actions []string
		switch a := m["actions"].(type) {
		case string:
			if t := strings.TrimSpace(a); t != "" {
				actions = []string{t}
			}
		case []any:
			for _, v := range a {
				if t := strings.TrimSpace(textnorm.FlexibleString(v)); t != "" {
					actions = append(actions, t)
				}
			}
		}
		if actions == nil {
			actions = []string{}
		}
		out = append(out, Workflow{Name: name, Trigger: trigger, Actions: actions})
	}
	return DedupeWorkflows(out)
}

// CoerceRequirements cleans a loose requirement list, keeping only entries
// with non-empty text. IDs and defaults are finalized by the extractor's
// post-pass, not here.
func CoerceRequirements(raw any) []Requirement {
	items, ok := raw.([]any)
	if !ok {
		return []Requirement{}
	}
	out := make([]Requirement, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text := strings.TrimSpace(textnorm.FlexibleString(m["text"]))
		if text == "" {
			continue
		}
		req := Requirement{
			ID:         textnorm.FlexibleString(m["id"]),
			Text:       text,
			Component:  stringOr(m, "component", "any"),
			Priority:   stringOr(m, "priority", "P2"),
			Acceptance: []string{},
		}
		if acc, ok := m["acceptance"].([]any); ok {
			for _, a := range acc {
				if t := strings.TrimSpace(textnorm.FlexibleString(a)); t != "" {
					req.Acceptance = append(req.Acceptance, t)
				}
			}
		}
		out = append(out, req)
	}
	return out
}

// CoerceRules cleans a loose business-rule list, keeping only entries
// with a non-empty expr.
func CoerceRules(raw any) []BusinessRule {
	items, ok := raw.([]any)
	if !ok {
		return []BusinessRule{}
	}
	out := make([]BusinessRule, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		expr := strings.TrimSpace(textnorm.FlexibleString(m["expr"]))
		if expr == "" {
			continue
		}
		out = append(out, BusinessRule{
			ID:      textnorm.FlexibleString(m["id"]),
			Target:  textnorm.FlexibleString(m["target"]),
			Kind:    stringOr(m, "kind", KindConstraint),
			Expr:    expr,
			Message: textnorm.FlexibleString(m["message"]),
		})
	}
	return out
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func stringOr(m map[string]any, key, fallback string) string {
	if s := strings.TrimSpace(textnorm.FlexibleString(m[key])); s != "" {
		return s
	}
	return fallback
}
