package recipe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-ai-service/internal/core/ai/service"
	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

// scriptedBackend replays fixed completions for the orchestrator.
type scriptedBackend struct {
	replies []string
	errs    []error
	calls   int
}

func (f *scriptedBackend) Complete(_ context.Context, _ string) (string, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	return f.replies[idx], f.errs[idx]
}

func (f *scriptedBackend) Model() string { return "test-model" }

func testCfg(backendEnabled bool) *config.Config {
	return &config.Config{
		OpenRouter: config.OpenRouterConfig{Enabled: backendEnabled, Model: "test-model"},
		AI: config.AIConfig{
			MaxAttempts:   3,
			BackoffBase:   time.Millisecond,
			BackoffFactor: 2.0,
			RequestBudget: 5 * time.Second,
		},
	}
}

func backedService(cfg *config.Config, backend *scriptedBackend) *service.Service {
	return service.NewServiceWithCompleter(cfg, backend, nil)
}

func TestParseRecipeLocalPipeline(t *testing.T) {
	svc := NewParseService(testCfg(false), nil)

	rec, err := svc.ParseRecipe(context.Background(), &ParseRequest{RawText: cookieText})
	require.NoError(t, err)

	assert.Equal(t, "Chocolate Chip Cookies", rec.Title)
	require.Len(t, rec.Ingredients, 2)
	assert.Equal(t, "flour", rec.Ingredients[0].Name)
	assert.Equal(t, "cups", *rec.Ingredients[0].Unit)
	assert.Len(t, rec.Instructions, 2)
	assert.Equal(t, 12, *rec.CookingTimeMinutes)
	// Locally parsed records never carry a confidence score.
	assert.Nil(t, rec.ConfidenceScore)
}

func TestParseRecipeSingleLineInstructionsSplit(t *testing.T) {
	svc := NewParseService(testCfg(false), nil)

	text := "Chocolate Chip Cookies\n\nIngredients:\n2 cups flour\n1 cup butter\n\nInstructions:\nPreheat oven to 350F. Bake for 10-12 minutes."
	rec, err := svc.ParseRecipe(context.Background(), &ParseRequest{RawText: text})
	require.NoError(t, err)

	assert.Equal(t, "Chocolate Chip Cookies", rec.Title)
	require.Len(t, rec.Ingredients, 2)
	// A one-line instructions region splits into sentences.
	require.Equal(t, []string{
		"Preheat oven to 350F.",
		"Bake for 10-12 minutes.",
	}, rec.Instructions)
	require.NotNil(t, rec.CookingTimeMinutes)
	assert.Equal(t, 12, *rec.CookingTimeMinutes)
}

func TestParseRecipeEmptyTextRejected(t *testing.T) {
	svc := NewParseService(testCfg(false), nil)

	_, err := svc.ParseRecipe(context.Background(), &ParseRequest{RawText: "   \n  "})
	require.Error(t, err)
	assert.True(t, common.IsInputError(err))
}

func TestParseRecipeUnusableTextRejectedWithoutBackend(t *testing.T) {
	svc := NewParseService(testCfg(false), nil)

	_, err := svc.ParseRecipe(context.Background(), &ParseRequest{RawText: "Mystery dish"})
	require.Error(t, err)
	assert.True(t, common.IsValidationRejected(err))
}

func TestParseRecipeFallsBackToBackend(t *testing.T) {
	backend := &scriptedBackend{
		replies: []string{`{
			"title": "Mystery Dish",
			"description": "",
			"ingredients": [
				{"name": "rice", "quantity": 1, "unit": "cup"},
				{"name": "water", "quantity": 2, "unit": "cups"}
			],
			"instructions": ["Cook the rice."],
			"cooking_time_minutes": 20,
			"preparation_time_minutes": null,
			"servings": 2
		}`},
		errs: []error{nil},
	}
	cfg := testCfg(true)
	svc := NewParseService(cfg, backedService(cfg, backend))

	rec, err := svc.ParseRecipe(context.Background(), &ParseRequest{RawText: "Mystery dish"})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "Mystery Dish", rec.Title)
	// Backend-produced records are scored.
	require.NotNil(t, rec.ConfidenceScore)
	assert.Equal(t, 1.0, *rec.ConfidenceScore)
}

func TestParseRecipeKeepsLocalRecordWhenFallbackFails(t *testing.T) {
	backend := &scriptedBackend{
		replies: []string{"", "", ""},
		errs: []error{
			common.NewBackendTransientError("timeout", nil),
			common.NewBackendTransientError("timeout", nil),
			common.NewBackendTransientError("timeout", nil),
		},
	}
	cfg := testCfg(true)
	svc := NewParseService(cfg, backedService(cfg, backend))

	text := "Tomato Soup\n\nInstructions:\nSimmer the tomatoes.\nBlend and serve."
	rec, err := svc.ParseRecipe(context.Background(), &ParseRequest{RawText: text})
	require.NoError(t, err)
	assert.Equal(t, 3, backend.calls)

	// The partial local parse survives an exhausted fallback.
	assert.Equal(t, "Tomato Soup", rec.Title)
	assert.Empty(t, rec.Ingredients)
	assert.Len(t, rec.Instructions, 2)
	assert.Nil(t, rec.ConfidenceScore)
}

func TestParseRecipeDoesNotFallBackWhenLocalSucceeds(t *testing.T) {
	backend := &scriptedBackend{replies: []string{"unused"}, errs: []error{nil}}
	cfg := testCfg(true)
	svc := NewParseService(cfg, backedService(cfg, backend))

	_, err := svc.ParseRecipe(context.Background(), &ParseRequest{RawText: cookieText})
	require.NoError(t, err)
	assert.Equal(t, 0, backend.calls)
}
