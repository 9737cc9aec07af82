package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		errType   ErrorType
		retryable bool
	}{
		{"401", errors.New("HTTP 401 unauthorized"), ErrorTypeAuth, false},
		{"model missing", errors.New("model gpt-x not found"), ErrorTypeModel, false},
		{"404", errors.New("HTTP 404"), ErrorTypeEndpoint, false},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorTypeEndpoint, true},
		{"timeout", errors.New("context deadline exceeded"), ErrorTypeEndpoint, true},
		{"rate limit", errors.New("HTTP 429 rate limit"), ErrorTypeUnknown, true},
		{"503", errors.New("HTTP 503 service unavailable"), ErrorTypeEndpoint, true},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got.Type != tt.errType {
				t.Errorf("type = %s, expected %s", got.Type, tt.errType)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("retryable = %v, expected %v", got.Retryable, tt.retryable)
			}
		})
	}
}

func TestClassifyError_PreservesExistingError(t *testing.T) {
	orig := NewError(ErrorTypeAuth, "authentication failed", false, errors.New("HTTP 401"))
	wrapped := fmt.Errorf("call failed: %w", orig)
	got := ClassifyError(wrapped)
	if got != orig {
		t.Errorf("expected original *Error back, got %v", got)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
	if !IsRetryable(NewError(ErrorTypeEndpoint, "server error", true, nil)) {
		t.Error("expected retryable")
	}
}
