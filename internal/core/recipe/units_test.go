package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		in         string
		want       string
		recognized bool
	}{
		{"cup", "cup", true},
		{"cups", "cups", true},
		{"Cups", "cups", true},
		{"tbsp", "tablespoon", true},
		{"tbsp.", "tablespoon", true},
		{"tsp", "teaspoon", true},
		{"oz", "ounce", true},
		{"lbs", "pounds", true},
		{"g", "gram", true},
		{"ml", "milliliter", true},
		{"handful", "handful", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeUnit(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.recognized, ok, "input %q", tt.in)
	}
}

func TestNormalizeUnitIdempotent(t *testing.T) {
	for _, in := range []string{"cups", "tbsp", "Teaspoons", "oz", "handful"} {
		once, _ := NormalizeUnit(in)
		twice, _ := NormalizeUnit(once)
		assert.Equal(t, once, twice, "normalizing %q twice changed the result", in)
	}
}

func TestUnitBase(t *testing.T) {
	assert.Equal(t, "cup", UnitBase("cups"))
	assert.Equal(t, "cup", UnitBase("cup"))
	assert.Equal(t, "tablespoon", UnitBase("tablespoons"))
	assert.Equal(t, "handful", UnitBase("handful"))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2", 2},
		{"1.5", 1.5},
		{"1/2", 0.5},
		{"3/4", 0.75},
		{"1 1/2", 1.5},
		{"½", 0.5},
		{"1½", 1.5},
		{"2 ½", 2.5},
	}
	for _, tt := range tests {
		got, err := ParseQuantity(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
	}
}

func TestParseQuantityRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1/0", "1 x/2"} {
		_, err := ParseQuantity(in)
		assert.Error(t, err, "input %q", in)
	}
}
