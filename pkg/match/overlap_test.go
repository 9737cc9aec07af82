package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specforge-dev/specforge/pkg/spec"
)

func TestTokenOverlap_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"", "anything"},
		{"order", ""},
		{"order item", "the order"},
		{"order", "order order order"},
		{"a b c d", "a"},
	}
	for _, p := range pairs {
		got := TokenOverlap(p[0], p[1])
		assert.GreaterOrEqual(t, got, 0.0, "pair %v", p)
		assert.LessOrEqual(t, got, 1.0, "pair %v", p)
	}
}

func TestTokenOverlap_EmptyName(t *testing.T) {
	assert.Equal(t, 0.0, TokenOverlap("", "anything"))
	assert.Equal(t, 0.0, TokenOverlap("!!!", "anything"))
}

func TestTokenOverlap_FullMatch(t *testing.T) {
	assert.Equal(t, 1.0, TokenOverlap("Order", "Users can cancel an order"))
}

func TestTokenOverlap_Partial(t *testing.T) {
	got := TokenOverlap("order item", "the order was shipped")
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestStemmedOverlap_PluralMatches(t *testing.T) {
	assert.Equal(t, 1.0, StemmedOverlap("Order", "Users can cancel orders"))
	// Unstemmed misses the plural.
	assert.Equal(t, 0.0, TokenOverlap("Order", "Users can cancel orders"))
}

func TestMatcher_RequirementsFor(t *testing.T) {
	m := NewMatcher()
	reqs := []spec.Requirement{
		{ID: "R-0001", Text: "Users can cancel an order"},
		{ID: "R-0002", Text: "Dashboard shows revenue"},
	}
	got := m.RequirementsFor(reqs, "Order")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "R-0001", got[0].ID)
	}
}

func TestMatcher_RulesFor(t *testing.T) {
	m := NewMatcher()
	rules := []spec.BusinessRule{
		{ID: "BR-0001", Target: "Order.total"},
		{ID: "BR-0002", Target: "Invoice.amount"},
	}
	got := m.RulesFor(rules, "Order")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "BR-0001", got[0].ID)
	}
}

func TestResolveEntity_PluralSymmetry(t *testing.T) {
	entities := []spec.Entity{{Name: "Order"}}
	byPlural := ResolveEntity(entities, "orders")
	bySingular := ResolveEntity(entities, "order")
	assert.NotNil(t, byPlural)
	assert.NotNil(t, bySingular)
	assert.Equal(t, byPlural.Name, bySingular.Name)
}

func TestResolveEntity_Irregulars(t *testing.T) {
	tests := []struct {
		entity    string
		candidate string
	}{
		{"Person", "people"},
		{"People", "person"},
		{"Child", "children"},
		{"Mouse", "mice"},
		{"Woman", "women"},
	}
	for _, tt := range tests {
		got := ResolveEntity([]spec.Entity{{Name: tt.entity}}, tt.candidate)
		assert.NotNil(t, got, "%s -> %s", tt.candidate, tt.entity)
	}
}

func TestResolveEntity_Miss(t *testing.T) {
	assert.Nil(t, ResolveEntity([]spec.Entity{{Name: "Order"}}, "invoice"))
	assert.Nil(t, ResolveEntity(nil, "order"))
	assert.Nil(t, ResolveEntity([]spec.Entity{{Name: "Order"}}, ""))
}

func TestResolveEntity_CaseInsensitive(t *testing.T) {
	got := ResolveEntity([]spec.Entity{{Name: "OrderItem"}}, "orderitem")
	assert.NotNil(t, got)
}
