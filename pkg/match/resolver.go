package match

import (
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/specforge-dev/specforge/pkg/spec"
)

// irregularPlurals is the fixed table checked in both directions before
// any generic inflection.
var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"foot":   "feet",
	"tooth":  "teeth",
	"mouse":  "mice",
	"man":    "men",
	"woman":  "women",
}

// ResolveEntity resolves a file-system-derived name fragment back to a
// declared entity. Resolution order: exact case-insensitive match;
// candidate equals entity name with trailing 's' added or removed; the
// irregular-plural table in both directions; finally generic singular/
// plural inflection. A miss returns nil; callers treat that as "skip
// generation for this file", not an error.
func ResolveEntity(entities []spec.Entity, candidate string) *spec.Entity {
	cand := strings.ToLower(strings.TrimSpace(candidate))
	if cand == "" {
		return nil
	}

	for i := range entities {
		name := strings.ToLower(entities[i].Name)
		if matchesName(name, cand) {
			return &entities[i]
		}
	}
	return nil
}

func matchesName(name, cand string) bool {
	if name == cand {
		return true
	}
	if name+"s" == cand || name == cand+"s" {
		return true
	}
	if irregularPlurals[name] == cand || irregularPlurals[cand] == name {
		return true
	}
	// Generic fallback for plural forms beyond the fixed table
	// ("categories", "statuses").
	if inflection.Singular(cand) == name || inflection.Plural(name) == cand {
		return true
	}
	return false
}
