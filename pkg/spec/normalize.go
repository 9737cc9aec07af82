package spec

import "strings"

// tokenAliases maps loose stack spellings to canonical lowercase tokens.
var tokenAliases = map[string]string{
	"node.js":     "node",
	"nodejs":      "node",
	"node js":     "node",
	"javascript":  "js",
	"typescript":  "ts",
	"postgresql":  "postgres",
	"postgre":     "postgres",
	"kubernetes":  "k8s",
	"next.js":     "nextjs",
	"material ui": "material-ui",
	"mui":         "material-ui",
}

// NormalizeToken lowercases a stack token and maps known aliases to their
// canonical form. Empty input becomes the Unspecified sentinel.
func NormalizeToken(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return Unspecified
	}
	if canonical, ok := tokenAliases[t]; ok {
		return canonical
	}
	return t
}

// NormalizeStacks canonicalizes the backend and frontend framework/lang
// tokens in place.
func (s *Specification) NormalizeStacks() {
	for _, key := range []string{"framework", "lang"} {
		s.Stacks.Backend[key] = NormalizeToken(s.Stacks.Backend[key])
		s.Stacks.Frontend[key] = NormalizeToken(s.Stacks.Frontend[key])
	}
}

// ApplyDefaults fills the system's only supported default stack into any
// still-unspecified backend/frontend slots: fastapi/python and react/ts.
// A frontend UI library is additionally inferred from PRD keywords. This
// is a policy default, not a parsing fact.
func ApplyDefaults(s *Specification, prdText string) *Specification {
	be, fe := s.Stacks.Backend, s.Stacks.Frontend
	if isUnset(be["framework"]) {
		be["framework"] = "fastapi"
	}
	if isUnset(be["lang"]) {
		be["lang"] = "python"
	}
	if isUnset(fe["framework"]) {
		fe["framework"] = "react"
	}
	if isUnset(fe["lang"]) {
		fe["lang"] = "ts"
	}
	if isUnset(fe["ui"]) {
		t := strings.ToLower(prdText)
		if strings.Contains(t, "material-ui") || strings.Contains(t, "material ui") || strings.Contains(t, "mui") {
			fe["ui"] = "material-ui"
		}
	}
	return s
}

func isUnset(v string) bool {
	return v == "" || v == Unspecified
}
