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

func newRuleExtractor(client llm.Client, opts Options) *RuleExtractor {
	return NewRuleExtractor(client, opts, zap.NewNop())
}

func extractRules(t *testing.T, prd string) []spec.BusinessRule {
	t.Helper()
	return newRuleExtractor(nil, DefaultOptions()).Extract(context.Background(), prd)
}

func TestRules_Negation(t *testing.T) {
	got := extractRules(t, "Amount cannot be negative")

	require.Len(t, got, 1)
	assert.Equal(t, "BR-0001", got[0].ID)
	assert.Equal(t, "Amount.amount", got[0].Target)
	assert.Equal(t, spec.KindConstraint, got[0].Kind)
	assert.Equal(t, "amount >= 0", got[0].Expr)
}

func TestRules_Enumeration(t *testing.T) {
	got := extractRules(t, "status can be one of: draft, active, closed")

	require.Len(t, got, 1)
	assert.Equal(t, "status in ['draft', 'active', 'closed']", got[0].Expr)
	assert.Equal(t, "Status.status", got[0].Target)
}

func TestRules_ComparisonPhrases(t *testing.T) {
	tests := []struct {
		line string
		expr string
	}{
		{"price must be at least 10", "price >= 10"},
		{"quantity must be no more than 100", "quantity <= 100"},
		{"score must be greater than 0", "score > 0"},
		{"age must be less than 120", "age < 120"},
		{"total must be at most 9.5", "total <= 9.5"},
	}
	for _, tt := range tests {
		got := extractRules(t, tt.line)
		require.Len(t, got, 1, "line %q", tt.line)
		assert.Equal(t, tt.expr, got[0].Expr, "line %q", tt.line)
		assert.Equal(t, spec.KindConstraint, got[0].Kind)
	}
}

func TestRules_ComparisonBareOperator(t *testing.T) {
	got := extractRules(t, "price >= 10")

	require.Len(t, got, 1)
	assert.Equal(t, "price >= 10", got[0].Expr)
	assert.Equal(t, "Price.price", got[0].Target)
}

func TestRules_Uniqueness(t *testing.T) {
	got := extractRules(t, "email must be unique")

	require.Len(t, got, 1)
	assert.Equal(t, "unique(email)", got[0].Expr)
	assert.Equal(t, "Email.email", got[0].Target)
}

func TestRules_NonEmpty(t *testing.T) {
	got := extractRules(t, "name is required")

	require.Len(t, got, 1)
	assert.Equal(t, "name not in (None, '')", got[0].Expr)
}

func TestRules_EqualityDerivation(t *testing.T) {
	got := extractRules(t, "total = price * quantity")

	require.Len(t, got, 1)
	assert.Equal(t, spec.KindDerivation, got[0].Kind)
	assert.Equal(t, "total", got[0].Target)
	assert.Equal(t, "total == price * quantity", got[0].Expr)
}

func TestRules_EqualityDoesNotEatComparison(t *testing.T) {
	// ">=" must never match the equality pattern.
	got := extractRules(t, "price >= 10")
	require.Len(t, got, 1)
	assert.Equal(t, spec.KindConstraint, got[0].Kind)
}

func TestRules_FirstMatchPerLineWins(t *testing.T) {
	// Line matches negation and, in principle, comparison; negation is
	// earlier in the table.
	got := extractRules(t, "total cannot be negative and must be at least 1")
	require.Len(t, got, 1)
	assert.Equal(t, "amount >= 0", got[0].Expr)
}

func TestRules_SequentialIDs(t *testing.T) {
	prd := "email must be unique\nname is required\nprice must be at least 10"
	got := extractRules(t, prd)

	require.Len(t, got, 3)
	assert.Equal(t, "BR-0001", got[0].ID)
	assert.Equal(t, "BR-0002", got[1].ID)
	assert.Equal(t, "BR-0003", got[2].ID)
}

func TestRules_NoMatchesEmptySlice(t *testing.T) {
	got := extractRules(t, "just some prose\nnothing actionable")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRules_ModelBackfill(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		return `[{"target":"Invoice.total","expr":"total >= 0"},{"id":"BR-0007","kind":"derivation","target":"t","expr":"t == a + b"}]`, nil
	}
	opts := DefaultOptions()
	opts.ModelAssisted = true
	got := newRuleExtractor(mock, opts).Extract(context.Background(), "prd")

	require.Len(t, got, 2)
	assert.Equal(t, "BR-0001", got[0].ID)
	assert.Equal(t, spec.KindConstraint, got[0].Kind)
	assert.Equal(t, "BR-0007", got[1].ID)
	assert.Equal(t, spec.KindDerivation, got[1].Kind)
}

func TestRules_ModelFailureFallsBack(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		return "", errors.New("boom")
	}
	opts := DefaultOptions()
	opts.ModelAssisted = true
	got := newRuleExtractor(mock, opts).Extract(context.Background(), "email must be unique")

	require.Len(t, got, 1)
	assert.Equal(t, "unique(email)", got[0].Expr)
}

func TestRules_Deterministic(t *testing.T) {
	prd := "email must be unique\nprice must be at least 10"
	first := extractRules(t, prd)
	second := extractRules(t, prd)
	assert.Equal(t, first, second)
}
