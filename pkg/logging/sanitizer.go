// Package logging redacts credentials from text before it reaches log
// output. Provider errors can echo back request URLs and headers, so
// every model-call error is sanitized before logging.
package logging

import "regexp"

// RedactedText replaces sensitive data.
const RedactedText = "[REDACTED]"

var (
	// api_key=xxx, apikey: xxx, key=xxx with a long value
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)[=:]\s*[A-Za-z0-9-_]{20,}`)

	// Bearer tokens and raw sk-/anthropic-style keys
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_.]+`)
	skKeyPattern  = regexp.MustCompile(`\bsk-[A-Za-z0-9-_]{16,}\b`)

	// user:pass@host in endpoint URLs
	credentialURLPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)
)

// Sanitize removes credential material from s.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = apiKeyPattern.ReplaceAllString(s, "${1}="+RedactedText)
	s = bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	s = skKeyPattern.ReplaceAllString(s, RedactedText)
	s = credentialURLPattern.ReplaceAllString(s, "://"+RedactedText+"@"+RedactedText)
	return s
}

// SanitizeError sanitizes an error message for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}
