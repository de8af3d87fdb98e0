package recipe

import (
	"sort"
	"strings"

	"recipe-ai-service/internal/pkg/common"
)

// RecipeRecord is the structured recipe shape shared by the text-parsing
// path and the generation path. Numeric fields are null when unknown, never
// omitted; confidence_score is present only on generation-path results.
type RecipeRecord struct {
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	Ingredients            []IngredientLine `json:"ingredients"`
	Instructions           []string         `json:"instructions"`
	CookingTimeMinutes     *int             `json:"cooking_time_minutes"`
	PreparationTimeMinutes *int             `json:"preparation_time_minutes"`
	Servings               *int             `json:"servings"`
	ConfidenceScore        *float64         `json:"confidence_score,omitempty"`
}

// IngredientLine is one ingredient with optional quantity and unit. A nil
// unit means the ingredient is a count ("2 eggs").
type IngredientLine struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

// ParseRequest is the text-parsing input.
type ParseRequest struct {
	RawText string `json:"recipe_text"`
}

// Validate rejects empty input before any work is done.
func (r *ParseRequest) Validate() error {
	if strings.TrimSpace(r.RawText) == "" {
		return common.NewInputError("recipe_text must not be empty")
	}
	return nil
}

// SuggestionRequest is the generation-path input.
type SuggestionRequest struct {
	Ingredients         []string `json:"ingredients"`
	DietaryPreferences  []string `json:"dietary_preferences"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
}

// Validate normalizes and checks the request: at least one ingredient,
// case-insensitive deduplication, and no overlap between the include and
// exclude lists. Overlap is an error, never silently resolved.
func (r *SuggestionRequest) Validate() error {
	r.Ingredients = dedupeFold(r.Ingredients)
	r.ExcludedIngredients = dedupeFold(r.ExcludedIngredients)

	if len(r.Ingredients) == 0 {
		return common.NewInputError("at least one ingredient is required")
	}

	excluded := make(map[string]struct{}, len(r.ExcludedIngredients))
	for _, e := range r.ExcludedIngredients {
		excluded[strings.ToLower(e)] = struct{}{}
	}
	var overlap []string
	for _, ing := range r.Ingredients {
		if _, ok := excluded[strings.ToLower(ing)]; ok {
			overlap = append(overlap, ing)
		}
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return common.NewInputError("ingredients overlap excluded_ingredients: " + strings.Join(overlap, ", "))
	}
	return nil
}

// dedupeFold removes case-insensitive duplicates and blank entries,
// keeping first occurrences in order.
func dedupeFold(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// RegionKind labels a classified span of source text.
type RegionKind string

const (
	RegionTitle              RegionKind = "title"
	RegionDescription        RegionKind = "description"
	RegionIngredientsHeader  RegionKind = "ingredients_header"
	RegionIngredientLine     RegionKind = "ingredient_line"
	RegionInstructionsHeader RegionKind = "instructions_header"
	RegionInstructionLine    RegionKind = "instruction_line"
	RegionMetadataLine       RegionKind = "metadata_line"
	RegionBlank              RegionKind = "blank"
)

// Region is one classified line (or sentence) of source text.
type Region struct {
	Kind RegionKind
	Text string
}

// Provenance records which path produced a candidate record.
type Provenance string

const (
	ProvenanceParsed    Provenance = "parsed"
	ProvenanceGenerated Provenance = "generated"
)

// Repair is one explicit, attributable coercion applied by the validator.
type Repair struct {
	Field  string
	Action string
}

// PlaceholderTitle is the repaired title for candidates that arrive without one.
const PlaceholderTitle = "Untitled Recipe"
