package textnorm

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specforge-dev/specforge/pkg/apperrors"
)

// LoadStructured sanitizes text and parses it into an untyped tree.
// JSON-shaped input (leading '{' or '[') is tried as JSON first; anything
// else, or a failed JSON parse, goes through YAML. Returns a ParseError
// when both fail.
func LoadStructured(text string) (any, error) {
	s := Sanitize(text)
	trimmed := strings.TrimLeft(s, " \n")
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v, nil
		}
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, apperrors.NewParseError(s, err)
	}
	return v, nil
}

// ExtractJSON recovers the first balanced JSON value from a response that
// may contain surrounding prose or formatting. Objects are preferred over
// arrays when both appear; as a last resort the whole trimmed response is
// checked. Returns a ParseError when no valid JSON is found.
func ExtractJSON(response string) (string, error) {
	objStart := strings.IndexByte(response, '{')
	arrStart := strings.IndexByte(response, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if s, ok := extractBalanced(response, '{', '}'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}
	if arrStart >= 0 {
		if s, ok := extractBalanced(response, '[', ']'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}

	trimmed := strings.TrimSpace(response)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	return "", apperrors.NewParseError(response, apperrors.ErrParse)
}

// extractBalanced finds the first balanced structure starting with openChar,
// counting bracket depth and skipping string literals.
func extractBalanced(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
