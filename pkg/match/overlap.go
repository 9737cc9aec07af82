// Package match scores name-to-text relevance and resolves loose name
// fragments back to declared entities. The overlap scorer is a lossy
// bag-of-stems similarity used to decide what each generated artifact
// documents; false positives and negatives are acceptable.
package match

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"

	"github.com/specforge-dev/specforge/pkg/spec"
)

// DefaultThreshold is the fixed overlap ratio above which a requirement or
// rule is considered "about" a given name. Keep 0.3 for behavioral parity.
const DefaultThreshold = 0.3

var wordPattern = regexp.MustCompile(`\w+`)

// TokenOverlap returns |tokens(name) ∩ tokens(text)| / |tokens(name)|,
// tokenizing on non-word boundaries and lowercasing. A name with no
// tokens yields 0. The result is always in [0, 1].
func TokenOverlap(name, text string) float64 {
	nameTokens := tokenSet(name, false)
	if len(nameTokens) == 0 {
		return 0
	}
	textTokens := tokenSet(text, false)
	return intersectRatio(nameTokens, textTokens)
}

// StemmedOverlap is TokenOverlap with each token reduced to its stemmed
// root before intersection, so "orders" matches "order".
func StemmedOverlap(name, text string) float64 {
	nameTokens := tokenSet(name, true)
	if len(nameTokens) == 0 {
		return 0
	}
	textTokens := tokenSet(text, true)
	return intersectRatio(nameTokens, textTokens)
}

func tokenSet(s string, stemmed bool) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		if stemmed {
			tok = english.Stem(tok, false)
		}
		out[tok] = struct{}{}
	}
	return out
}

func intersectRatio(name, text map[string]struct{}) float64 {
	hits := 0
	for tok := range name {
		if _, ok := text[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(name))
}

// Matcher associates requirements and rules to entity/workflow names.
// The zero value is not usable; construct with NewMatcher.
type Matcher struct {
	Threshold float64
	Stemmed   bool
}

// NewMatcher returns a matcher with the fixed default threshold.
func NewMatcher() *Matcher {
	return &Matcher{Threshold: DefaultThreshold}
}

// Relevant reports whether text is about name.
func (m *Matcher) Relevant(name, text string) bool {
	if m.Stemmed {
		return StemmedOverlap(name, text) >= m.Threshold
	}
	return TokenOverlap(name, text) >= m.Threshold
}

// RequirementsFor returns the requirements whose text is about name,
// preserving order.
func (m *Matcher) RequirementsFor(reqs []spec.Requirement, name string) []spec.Requirement {
	var out []spec.Requirement
	for _, r := range reqs {
		if m.Relevant(name, r.Text) {
			out = append(out, r)
		}
	}
	return out
}

// RulesFor returns the business rules whose target is about name,
// preserving order.
func (m *Matcher) RulesFor(rules []spec.BusinessRule, name string) []spec.BusinessRule {
	var out []spec.BusinessRule
	for _, r := range rules {
		if m.Relevant(name, r.Target) {
			out = append(out, r)
		}
	}
	return out
}
