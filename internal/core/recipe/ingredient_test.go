package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredientLine(t *testing.T) {
	tests := []struct {
		line     string
		name     string
		quantity *float64
		unit     *string
	}{
		{"2 cups flour", "flour", f(2), s("cups")},
		{"1 cup butter", "butter", f(1), s("cup")},
		{"- 1 cup butter", "butter", f(1), s("cup")},
		{"* 2 tbsp sugar", "sugar", f(2), s("tablespoon")},
		{"2 cups of flour", "flour", f(2), s("cups")},
		{"2 large eggs", "large eggs", f(2), nil},
		{"1 1/2 tsp vanilla extract", "vanilla extract", f(1.5), s("teaspoon")},
		{"½ cup milk", "milk", f(0.5), s("cup")},
		{"salt", "salt", nil, nil},
		{"a pinch of salt", "a pinch of salt", nil, nil},
		{"10-12 shrimp", "shrimp", f(12), nil},
		{"10 to 12 shrimp", "shrimp", f(12), nil},
	}
	for _, tt := range tests {
		got, ok := ParseIngredientLine(tt.line)
		require.True(t, ok, "line %q", tt.line)
		assert.Equal(t, tt.name, got.Name, "line %q", tt.line)
		if tt.quantity == nil {
			assert.Nil(t, got.Quantity, "line %q", tt.line)
		} else {
			require.NotNil(t, got.Quantity, "line %q", tt.line)
			assert.InDelta(t, *tt.quantity, *got.Quantity, 1e-9, "line %q", tt.line)
		}
		if tt.unit == nil {
			assert.Nil(t, got.Unit, "line %q", tt.line)
		} else {
			require.NotNil(t, got.Unit, "line %q", tt.line)
			assert.Equal(t, *tt.unit, *got.Unit, "line %q", tt.line)
		}
	}
}

func TestParseIngredientLineUnitSpellingPreserved(t *testing.T) {
	plural, ok := ParseIngredientLine("2 cups flour")
	require.True(t, ok)
	singular, ok := ParseIngredientLine("1 cup butter")
	require.True(t, ok)
	assert.Equal(t, "cups", *plural.Unit)
	assert.Equal(t, "cup", *singular.Unit)
}

func TestParseIngredientLineRejectsEmpty(t *testing.T) {
	for _, line := range []string{"", "   ", "- "} {
		_, ok := ParseIngredientLine(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParseIngredientLineDurationRangeNotQuantity(t *testing.T) {
	got, ok := ParseIngredientLine("10-12 minutes")
	require.True(t, ok)
	assert.Nil(t, got.Quantity)
	assert.Equal(t, "10-12 minutes", got.Name)
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }
func i(v int) *int         { return &v }
