package spec

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_EmptyObject(t *testing.T) {
	s := Coerce(map[string]any{}, "")

	assert.Equal(t, "my-app", s.Meta.Name)
	assert.Equal(t, "App", s.Meta.Domain)
	assert.Equal(t, "0.1.0", s.Meta.Version)
	assert.Equal(t, Unspecified, s.Stacks.Backend["framework"])
	assert.Equal(t, Unspecified, s.Stacks.Backend["lang"])
	assert.Equal(t, Unspecified, s.Stacks.Frontend["ui"])
	assert.Equal(t, Unspecified, s.Stacks.Database["type"])
	assert.Equal(t, Unspecified, s.Stacks.Infra["orchestrator"])
	assert.NotNil(t, s.Entities)
	assert.NotNil(t, s.Workflows)
	assert.NotNil(t, s.Requirements)
	assert.NotNil(t, s.Integrations)
}

func TestCoerce_Nil(t *testing.T) {
	s := Coerce(nil, "project: PulseCheck")
	assert.Equal(t, "pulsecheck", s.Meta.Name)
}

func TestCoerce_NameDerivedFromPRD(t *testing.T) {
	tests := []struct {
		prd      string
		expected string
	}{
		{"name: Eva AI Agent", "eva-ai-agent"},
		{"Product: Shop_2 Go", "shop-2-go"},
		{"no label here", "my-app"},
	}
	for _, tt := range tests {
		s := Coerce(nil, tt.prd)
		assert.Equal(t, tt.expected, s.Meta.Name, "prd: %s", tt.prd)
	}
}

func TestCoerce_KeepsExtraStackKeys(t *testing.T) {
	raw := map[string]any{
		"stacks": map[string]any{
			"backend": map[string]any{"framework": "django", "queue": "celery"},
		},
	}
	s := Coerce(raw, "")
	assert.Equal(t, "django", s.Stacks.Backend["framework"])
	assert.Equal(t, "celery", s.Stacks.Backend["queue"])
	assert.Equal(t, Unspecified, s.Stacks.Backend["orm"])
}

func TestCoerceEntities_DropsMalformed(t *testing.T) {
	raw := []any{
		map[string]any{"name": "Order", "fields": []any{
			map[string]any{"name": "id", "type": "uuid", "pk": true},
			map[string]any{"name": "id", "type": "string"}, // duplicate field name
			map[string]any{"type": "string"},               // missing name
			"not a field",
		}},
		map[string]any{"fields": []any{}}, // missing name
		map[string]any{"name": "  "},      // blank name
		"not an entity",
	}
	ents := CoerceEntities(raw)
	require.Len(t, ents, 1)
	assert.Equal(t, "Order", ents[0].Name)
	require.Len(t, ents[0].Fields, 1)
	assert.True(t, ents[0].Fields[0].PK)
}

func TestCoerceEntities_SameNameDifferentFieldsBothRetained(t *testing.T) {
	raw := []any{
		map[string]any{"name": "Order", "fields": []any{map[string]any{"name": "id"}}},
		map[string]any{"name": "Order", "fields": []any{map[string]any{"name": "total"}}},
	}
	ents := CoerceEntities(raw)
	assert.Len(t, ents, 2)
}

func TestCoerceWorkflows_StringActions(t *testing.T) {
	raw := []any{
		map[string]any{"trigger": "user signs up", "actions": "send welcome email"},
	}
	flows := CoerceWorkflows(raw)
	require.Len(t, flows, 1)
	assert.Equal(t, "user signs up", flows[0].Name)
	assert.Equal(t, []string{"send welcome email"}, flows[0].Actions)
}

func TestCoerceWorkflows_NameCapped(t *testing.T) {
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}
	flows := CoerceWorkflows([]any{map[string]any{"name": string(long)}})
	require.Len(t, flows, 1)
	assert.Len(t, flows[0].Name, 80)
}

func TestCoerceWorkflows_NameCapKeepsRunesIntact(t *testing.T) {
	flows := CoerceWorkflows([]any{map[string]any{"name": strings.Repeat("é", 120)}})
	require.Len(t, flows, 1)
	assert.Equal(t, strings.Repeat("é", 80), flows[0].Name)
	assert.True(t, utf8.ValidString(flows[0].Name))
}

func TestCoerceRequirements_DropsEmptyText(t *testing.T) {
	raw := []any{
		map[string]any{"id": "R-0001", "text": "Users can log in"},
		map[string]any{"id": "R-0002", "text": "  "},
		map[string]any{"id": "R-0003"},
	}
	reqs := CoerceRequirements(raw)
	require.Len(t, reqs, 1)
	assert.Equal(t, "any", reqs[0].Component)
	assert.Equal(t, "P2", reqs[0].Priority)
	assert.Empty(t, reqs[0].Acceptance)
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, expected string }{
		{"My App", "my-app"},
		{"Eva AI Agent:PulseCheck", "eva-ai-agent-pulsecheck"},
		{"--Weird__name--", "weird-name"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Slugify(tt.in))
	}
}
