// Package apperrors defines the error taxonomy shared across the pipeline.
//
// Heuristic extraction and schema coercion never fail; the only fatal
// conditions are final schema validation after coercion and retry
// exhaustion during model-assisted spec synthesis. Everything else is
// either recoverable (parse failures fall back to heuristics) or a normal
// no-op outcome (resolution misses return nil, not an error).
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates structured text could not be parsed as JSON or
	// YAML after normalization. Always recoverable by heuristic fallback.
	ErrParse = errors.New("structured parse failed")

	// ErrRetryExhausted indicates model-assisted spec synthesis could not
	// produce a schema-valid specification within the retry budget.
	ErrRetryExhausted = errors.New("retries exhausted")
)

// ParseError wraps a JSON/YAML parse failure with the offending snippet.
type ParseError struct {
	Snippet string // leading fragment of the unparseable text
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("parse structured text %q: %v", e.Snippet, e.Cause)
	}
	return fmt.Sprintf("parse structured text: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NewParseError builds a ParseError, trimming the snippet to a loggable size.
func NewParseError(text string, cause error) *ParseError {
	const maxSnippet = 60
	if len(text) > maxSnippet {
		text = text[:maxSnippet]
	}
	return &ParseError{Snippet: text, Cause: cause}
}

// SchemaValidationError reports a specification that fails schema
// validation after coercion. Path and Message are fed back into the next
// corrective prompt during model-assisted synthesis.
type SchemaValidationError struct {
	Path    string // JSON pointer-ish location of the violation
	Message string // validator's message
	Cause   error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("specification schema violation at %s: %s", e.Path, e.Message)
}

func (e *SchemaValidationError) Unwrap() error { return e.Cause }

// StageError tags a fatal error with the pipeline stage that produced it,
// so the top level can report which stage failed.
type StageError struct {
	Stage string // "spec synthesis", "planning", "generation"
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }
