package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecordCookieScenario(t *testing.T) {
	rec := BuildRecord(ClassifyLines(cookieText))

	assert.Equal(t, "Chocolate Chip Cookies", rec.Title)
	assert.Empty(t, rec.Description)

	require.Len(t, rec.Ingredients, 2)
	assert.Equal(t, IngredientLine{Name: "flour", Quantity: f(2), Unit: s("cups")}, rec.Ingredients[0])
	assert.Equal(t, IngredientLine{Name: "butter", Quantity: f(1), Unit: s("cup")}, rec.Ingredients[1])

	require.Len(t, rec.Instructions, 2)
	assert.Equal(t, "Mix the flour and butter.", rec.Instructions[0])
	assert.Equal(t, "Bake for 10-12 minutes.", rec.Instructions[1])

	// "Bake for 10-12 minutes." is a duration range; upper bound wins.
	require.NotNil(t, rec.CookingTimeMinutes)
	assert.Equal(t, 12, *rec.CookingTimeMinutes)
	assert.Nil(t, rec.PreparationTimeMinutes)
	assert.Nil(t, rec.Servings)
}

func TestBuildRecordTimesAndServings(t *testing.T) {
	text := `Stew

Ingredients:
1 pound beef

Instructions:
Marinate the beef for 30 minutes.
Simmer for 2 hours.
Serves 4.`

	rec := BuildRecord(ClassifyLines(text))

	require.NotNil(t, rec.PreparationTimeMinutes)
	assert.Equal(t, 30, *rec.PreparationTimeMinutes)
	require.NotNil(t, rec.CookingTimeMinutes)
	assert.Equal(t, 120, *rec.CookingTimeMinutes)
	require.NotNil(t, rec.Servings)
	assert.Equal(t, 4, *rec.Servings)
}

func TestBuildRecordConflictingTimesStayNull(t *testing.T) {
	text := `Stew

Instructions:
Simmer for 20 minutes.
Boil for 45 minutes.`

	rec := BuildRecord(ClassifyLines(text))
	assert.Nil(t, rec.CookingTimeMinutes)
}

func TestBuildRecordDescription(t *testing.T) {
	text := `Pancakes

Fluffy weekend pancakes.

Ingredients:
2 cups flour`

	rec := BuildRecord(ClassifyLines(text))
	assert.Equal(t, "Pancakes", rec.Title)
	assert.Equal(t, "Fluffy weekend pancakes.", rec.Description)
}

func TestParseRoundTripIdempotent(t *testing.T) {
	first := BuildRecord(ClassifyLines(cookieText))
	second := BuildRecord(ClassifyLines(FormatRecord(first)))
	assert.Equal(t, first, second)
}

func TestFormatIngredientLine(t *testing.T) {
	assert.Equal(t, "2 cups flour", FormatIngredientLine(IngredientLine{Name: "flour", Quantity: f(2), Unit: s("cups")}))
	assert.Equal(t, "1.5 teaspoon vanilla", FormatIngredientLine(IngredientLine{Name: "vanilla", Quantity: f(1.5), Unit: s("teaspoon")}))
	assert.Equal(t, "salt", FormatIngredientLine(IngredientLine{Name: "salt"}))
	assert.Equal(t, "2 large eggs", FormatIngredientLine(IngredientLine{Name: "large eggs", Quantity: f(2)}))
}
