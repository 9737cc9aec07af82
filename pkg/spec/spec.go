// Package spec defines the normalized specification produced from a PRD
// and the coercion/validation machinery that guarantees its shape. The
// specification is the single contract between extraction and the
// planner/generator stages; it is built once per run and never mutated
// after validation.
package spec

import "encoding/json"

// Unspecified is the sentinel for stack fields the PRD did not mention.
const Unspecified = "unspecified"

// Specification is the root artifact of a PRD run.
type Specification struct {
	Meta          Meta           `json:"meta"`
	Stacks        Stacks         `json:"stacks"`
	Entities      []Entity       `json:"entities"`
	Workflows     []Workflow     `json:"workflows"`
	Requirements  []Requirement  `json:"requirements"`
	BusinessRules []BusinessRule `json:"business_rules"`
	Integrations  map[string]any `json:"integrations"`
	NonFunctional map[string]any `json:"non_functional"`
	CICD          map[string]any `json:"ci_cd"`
	Constraints   map[string]any `json:"constraints"`
}

// Meta identifies the project. Name is always present, derived from the
// PRD when the model output omits it.
type Meta struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	Version string `json:"version"`
}

// Stacks holds the technology choices. Each stack is an open string-keyed
// record; unset fields carry the Unspecified sentinel.
type Stacks struct {
	Backend  map[string]string `json:"backend"`
	Frontend map[string]string `json:"frontend"`
	Database map[string]string `json:"database"`
	Infra    map[string]string `json:"infra"`
}

// Entity is a domain record with uniquely named fields.
type Entity struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field describes one entity attribute. Type is free-form; uuid/string/
// int/integer/bool/boolean have canonical downstream mappings, everything
// else is treated as string.
type Field struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	PK     bool   `json:"pk,omitempty"`
	Unique bool   `json:"unique,omitempty"`
	FK     string `json:"fk,omitempty"`
}

// Workflow is a trigger with an ordered action list.
type Workflow struct {
	Name    string   `json:"name"`
	Trigger string   `json:"trigger"`
	Actions []string `json:"actions"`
}

// Requirement is one atomic, testable statement extracted from the PRD.
type Requirement struct {
	ID         string   `json:"id"` // R-#### sequential
	Text       string   `json:"text"`
	Component  string   `json:"component"` // default "any"
	Priority   string   `json:"priority"`  // default "P2"
	Acceptance []string `json:"acceptance"`
}

// BusinessRule is one atomic constraint or derivation over entity fields.
type BusinessRule struct {
	ID      string `json:"id"`     // BR-#### sequential
	Target  string `json:"target"` // Entity.field
	Kind    string `json:"kind"`   // constraint | derivation | transition
	Expr    string `json:"expr"`
	Message string `json:"message"`
}

// Rule kinds.
const (
	KindConstraint = "constraint"
	KindDerivation = "derivation"
	KindTransition = "transition"
)

// StructuralKey returns a canonical serialized form used for dedup by
// structural equality. Two entities with the same name but different field
// sets produce different keys and are both retained.
func StructuralKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// DedupeEntities removes structurally equal duplicates, first wins.
func DedupeEntities(in []Entity) []Entity {
	seen := make(map[string]struct{}, len(in))
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		k := StructuralKey(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

// DedupeWorkflows removes structurally equal duplicates, first wins.
func DedupeWorkflows(in []Workflow) []Workflow {
	seen := make(map[string]struct{}, len(in))
	out := make([]Workflow, 0, len(in))
	for _, w := range in {
		k := StructuralKey(w)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out
}
