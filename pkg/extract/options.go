// Package extract turns unstructured PRD text into the normalized
// specification: stack detection, requirement and business-rule
// extraction, and entity/workflow enrichment. Every extractor has a pure
// heuristic path that never fails and an optional model-assisted path
// that falls back to the heuristics on any failure.
package extract

import "regexp"

// Options configures the model-assisted extraction paths. Passing the
// options explicitly (instead of reading ambient process state) keeps
// fallback behavior unit-testable.
type Options struct {
	// ModelAssisted enables the model paths. With false, or with no
	// client wired, every extractor runs heuristics only.
	ModelAssisted bool

	// Model is the model name the pipeline uses when constructing the
	// client. Extractors do not read it; the wired client already
	// carries its model.
	Model string

	// Temperature for model calls.
	Temperature float64

	// MaxRetries bounds the validate-and-reprompt loops (spec synthesis
	// and enrichment). Each retry re-sends the prior failure description.
	MaxRetries int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ModelAssisted: false,
		Model:         "gpt-4o-mini",
		Temperature:   0,
		MaxRetries:    3,
	}
}

// Identifier formats for extracted records.
var (
	requirementIDPattern = regexp.MustCompile(`^R-\d{4}$`)
	ruleIDPattern        = regexp.MustCompile(`^BR-\d{4}$`)
)
