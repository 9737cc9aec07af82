package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/llm"
	"github.com/specforge-dev/specforge/pkg/spec"
)

func newSpecBuilder(client llm.Client, opts Options) *SpecBuilder {
	return NewSpecBuilder(client, opts, zap.NewNop())
}

func buildSpec(t *testing.T, prd string) *spec.Specification {
	t.Helper()
	s, err := newSpecBuilder(nil, DefaultOptions()).Build(context.Background(), prd)
	require.NoError(t, err)
	return s
}

func TestSpecBuilder_DetectsStacks(t *testing.T) {
	prd := "Project: shop\nBuild with FastAPI and Python, a React frontend, PostgreSQL storage, deployed on Kubernetes in AWS."
	got := buildSpec(t, prd)

	assert.Equal(t, "fastapi", got.Stacks.Backend["framework"])
	assert.Equal(t, "python", got.Stacks.Backend["lang"])
	assert.Equal(t, "react", got.Stacks.Frontend["framework"])
	assert.Equal(t, "postgres", got.Stacks.Database["type"])
	assert.Equal(t, "k8s", got.Stacks.Infra["orchestrator"])
	assert.Equal(t, "aws", got.Stacks.Infra["cloud"])
}

func TestSpecBuilder_NameFromPRD(t *testing.T) {
	got := buildSpec(t, "Project: Invoice Tracker\nsome text")
	assert.Equal(t, "invoice-tracker", got.Meta.Name)
}

func TestSpecBuilder_EmptyPRDDefaults(t *testing.T) {
	got := buildSpec(t, "")

	assert.Equal(t, "my-app", got.Meta.Name)
	assert.Equal(t, "App", got.Meta.Domain)
	assert.Equal(t, "0.1.0", got.Meta.Version)
	// Policy defaults for the only supported scaffold.
	assert.Equal(t, "fastapi", got.Stacks.Backend["framework"])
	assert.Equal(t, "python", got.Stacks.Backend["lang"])
	assert.Equal(t, "react", got.Stacks.Frontend["framework"])
	assert.Equal(t, "ts", got.Stacks.Frontend["lang"])
	assert.Equal(t, spec.Unspecified, got.Stacks.Database["type"])
}

func TestSpecBuilder_UIInference(t *testing.T) {
	got := buildSpec(t, "Frontend uses MUI components")
	assert.Equal(t, "material-ui", got.Stacks.Frontend["ui"])
}

func TestSpecBuilder_AlwaysSchemaValid(t *testing.T) {
	prds := []string{"", "Project: x", "total = a + b\nwhen y: z", "###"}
	for _, prd := range prds {
		got := buildSpec(t, prd)
		assert.NoError(t, spec.Validate(got), "prd %q", prd)
	}
}

func TestSpecBuilder_ModelResultCoercedAndValidated(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		return `{"meta":{"name":"ledger"},"stacks":{"backend":{"framework":"Django","lang":"Python"}}}`, nil
	}
	opts := DefaultOptions()
	opts.ModelAssisted = true
	got, err := newSpecBuilder(mock, opts).Build(context.Background(), "prd")
	require.NoError(t, err)

	assert.Equal(t, "ledger", got.Meta.Name)
	assert.Equal(t, "django", got.Stacks.Backend["framework"])
	// Missing slots coerced then defaulted.
	assert.Equal(t, "react", got.Stacks.Frontend["framework"])
	assert.NoError(t, spec.Validate(got))
}

func TestSpecBuilder_ModelBadJSONRepromptsThenSucceeds(t *testing.T) {
	mock := llm.NewMockClient()
	responses := []string{
		"this is prose, not JSON",
		`{"meta":{"name":"second-try"},"stacks":{}}`,
	}
	mock.GenerateResponseFunc = func(_ context.Context, prompt, _ string, _ float64) (string, error) {
		r := responses[0]
		responses = responses[1:]
		if len(responses) == 0 {
			assert.Contains(t, prompt, "Not valid JSON")
		}
		return r, nil
	}
	opts := DefaultOptions()
	opts.ModelAssisted = true
	got, err := newSpecBuilder(mock, opts).Build(context.Background(), "prd")
	require.NoError(t, err)

	assert.Equal(t, 2, mock.GenerateResponseCalls)
	assert.Equal(t, "second-try", got.Meta.Name)
}

func TestSpecBuilder_ModelErrorFallsBackToHeuristics(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		return "", errors.New("unreachable")
	}
	opts := DefaultOptions()
	opts.ModelAssisted = true
	got, err := newSpecBuilder(mock, opts).Build(context.Background(), "Project: fallback\nfastapi")
	require.NoError(t, err)

	assert.Equal(t, "fallback", got.Meta.Name)
	assert.Equal(t, "fastapi", got.Stacks.Backend["framework"])
}

func TestSpecBuilder_ModelExhaustionFallsBack(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		return "still not json", nil
	}
	opts := DefaultOptions()
	opts.ModelAssisted = true
	opts.MaxRetries = 2
	got, err := newSpecBuilder(mock, opts).Build(context.Background(), "Project: retries")
	require.NoError(t, err)

	assert.Equal(t, 2, mock.GenerateResponseCalls)
	assert.Equal(t, "retries", got.Meta.Name)
}
