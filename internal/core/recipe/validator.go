package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"recipe-ai-service/internal/pkg/common"
)

// Repair actions. Only step (2)/(3) actions feed the confidence scorer;
// type coercions and markers are attributable but free.
const (
	RepairPlaceholder = "placeholder"       // required field replaced (step 2)
	RepairDropped     = "dropped"           // out-of-range value nulled (step 3)
	RepairCoerced     = "coerced"           // stringified value converted (step 1)
	RepairNulled      = "nulled"            // null-like string became null (step 1)
	RepairUnknownUnit = "unrecognized_unit" // unit kept verbatim with marker
)

// looseRecord is the lenient decode target for backend replies whose field
// types drift from the contract.
type looseRecord struct {
	Title                  any               `json:"title"`
	Description            any               `json:"description"`
	Ingredients            []looseIngredient `json:"ingredients"`
	Instructions           any               `json:"instructions"`
	CookingTimeMinutes     any               `json:"cooking_time_minutes"`
	PreparationTimeMinutes any               `json:"preparation_time_minutes"`
	Servings               any               `json:"servings"`
}

type looseIngredient struct {
	Name     any `json:"name"`
	Quantity any `json:"quantity"`
	Unit     any `json:"unit"`
}

// DecodeCandidate turns one backend JSON object into an unvalidated
// candidate record: strict decode first, lenient field-by-field extraction
// as the fallback. A backend-supplied confidence_score is always discarded.
func DecodeCandidate(text string) (RecipeRecord, []Repair, error) {
	var rec RecipeRecord
	if err := common.ParseJSON(text, &rec); err == nil {
		rec.ConfidenceScore = nil
		return rec, nil, nil
	}

	var loose looseRecord
	if err := common.ParseJSON(text, &loose); err != nil {
		// Models occasionally emit javascript-style objects with bare keys.
		quoted := common.QuoteJSONKeys(text)
		rec = RecipeRecord{}
		if err := common.ParseJSON(quoted, &rec); err == nil {
			rec.ConfidenceScore = nil
			return rec, nil, nil
		}
		loose = looseRecord{}
		if err := common.ParseJSON(quoted, &loose); err != nil {
			return RecipeRecord{}, nil, fmt.Errorf("candidate is not a JSON object: %w", err)
		}
	}

	var repairs []Repair
	rec = RecipeRecord{}

	rec.Title, repairs = coerceStringField(loose.Title, "title", repairs)
	rec.Description, repairs = coerceStringField(loose.Description, "description", repairs)

	for i, li := range loose.Ingredients {
		var ing IngredientLine
		ing.Name, repairs = coerceStringField(li.Name, fmt.Sprintf("ingredients[%d].name", i), repairs)
		ing.Quantity, repairs = coerceNumberField(li.Quantity, fmt.Sprintf("ingredients[%d].quantity", i), repairs)
		unit, rs := coerceStringField(li.Unit, fmt.Sprintf("ingredients[%d].unit", i), repairs)
		repairs = rs
		if unit != "" {
			ing.Unit = &unit
		}
		rec.Ingredients = append(rec.Ingredients, ing)
	}

	switch steps := loose.Instructions.(type) {
	case []any:
		for i, s := range steps {
			step, rs := coerceStringField(s, fmt.Sprintf("instructions[%d]", i), repairs)
			repairs = rs
			if step != "" {
				rec.Instructions = append(rec.Instructions, step)
			}
		}
	case string:
		// A single prose blob instead of a list: split into sentences.
		rec.Instructions = splitSentences(steps)
		repairs = append(repairs, Repair{Field: "instructions", Action: RepairCoerced})
	}

	rec.CookingTimeMinutes, repairs = coerceIntField(loose.CookingTimeMinutes, "cooking_time_minutes", repairs)
	rec.PreparationTimeMinutes, repairs = coerceIntField(loose.PreparationTimeMinutes, "preparation_time_minutes", repairs)
	rec.Servings, repairs = coerceIntField(loose.Servings, "servings", repairs)

	return rec, repairs, nil
}

// ValidateRecord enforces the structural contract on a candidate from
// either producer, repairing where possible. It returns the repaired record
// and the full repair list, or a rejection when nothing usable remains.
// Earlier decode-stage repairs are passed in and extended.
func ValidateRecord(rec RecipeRecord, prov Provenance, repairs []Repair) (RecipeRecord, []Repair, error) {
	out := RecipeRecord{}

	// Step 2: required fields.
	title := strings.TrimSpace(rec.Title)
	if isNullLike(title) {
		title = ""
	}
	if title == "" {
		title = PlaceholderTitle
		repairs = append(repairs, Repair{Field: "title", Action: RepairPlaceholder})
	}
	out.Title = title

	desc := strings.TrimSpace(rec.Description)
	if isNullLike(desc) {
		desc = ""
	}
	out.Description = desc

	// Steps 2–3 over ingredients.
	for i, ing := range rec.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if isNullLike(name) || name == "" {
			repairs = append(repairs, Repair{Field: fmt.Sprintf("ingredients[%d]", i), Action: RepairDropped})
			continue
		}
		line := IngredientLine{Name: name}

		if ing.Quantity != nil {
			q := *ing.Quantity
			if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
				// Dropped to null, not clamped.
				repairs = append(repairs, Repair{Field: fmt.Sprintf("ingredients[%d].quantity", i), Action: RepairDropped})
			} else {
				line.Quantity = &q
			}
		}

		if ing.Unit != nil {
			unit := strings.TrimSpace(*ing.Unit)
			if unit == "" || isNullLike(unit) {
				line.Unit = nil
			} else if canonical, ok := NormalizeUnit(unit); ok {
				line.Unit = &canonical
			} else {
				// Pass through verbatim with a marker rather than drop.
				line.Unit = &unit
				repairs = append(repairs, Repair{Field: fmt.Sprintf("ingredients[%d].unit", i), Action: RepairUnknownUnit})
			}
		}

		out.Ingredients = append(out.Ingredients, line)
	}

	// Instructions preserve source ordering; steps are never reordered or
	// merged, only blank steps fall away.
	for _, step := range rec.Instructions {
		step = strings.TrimSpace(step)
		if step == "" || isNullLike(step) {
			continue
		}
		out.Instructions = append(out.Instructions, step)
	}

	if len(out.Ingredients) == 0 && len(out.Instructions) == 0 {
		return RecipeRecord{}, repairs, common.NewValidationRejected("candidate has no usable ingredients or instructions")
	}

	out.CookingTimeMinutes, repairs = enforceRange(rec.CookingTimeMinutes, "cooking_time_minutes", false, repairs)
	out.PreparationTimeMinutes, repairs = enforceRange(rec.PreparationTimeMinutes, "preparation_time_minutes", false, repairs)
	out.Servings, repairs = enforceRange(rec.Servings, "servings", true, repairs)

	out.Ingredients = dedupeIngredients(out.Ingredients)

	// confidence_score is computed by the scorer, never carried through.
	out.ConfidenceScore = nil

	return out, repairs, nil
}

// enforceRange drops out-of-range integers to null.
func enforceRange(v *int, field string, requirePositive bool, repairs []Repair) (*int, []Repair) {
	if v == nil {
		return nil, repairs
	}
	if *v < 0 || (requirePositive && *v == 0) {
		return nil, append(repairs, Repair{Field: field, Action: RepairDropped})
	}
	n := *v
	return &n, repairs
}

// dedupeIngredients merges entries with the same lowercased name and the
// same base unit by summing quantities; entries with differing units stay
// distinct.
func dedupeIngredients(in []IngredientLine) []IngredientLine {
	type key struct {
		name string
		unit string
	}
	index := make(map[key]int, len(in))
	out := make([]IngredientLine, 0, len(in))
	for _, ing := range in {
		k := key{name: strings.ToLower(ing.Name)}
		if ing.Unit != nil {
			k.unit = UnitBase(*ing.Unit)
		}
		if at, ok := index[k]; ok {
			if ing.Quantity != nil {
				if out[at].Quantity == nil {
					q := *ing.Quantity
					out[at].Quantity = &q
				} else {
					sum := *out[at].Quantity + *ing.Quantity
					out[at].Quantity = &sum
				}
			}
			continue
		}
		index[k] = len(out)
		out = append(out, ing)
	}
	return out
}

// CountScoredRepairs reports how many repairs count against confidence:
// required-field and range repairs, excluding the title placeholder which
// carries its own weight.
func CountScoredRepairs(repairs []Repair) int {
	n := 0
	for _, r := range repairs {
		if r.Action == RepairDropped {
			n++
		}
	}
	return n
}

// HasTitlePlaceholder reports whether the title was repaired to the
// placeholder.
func HasTitlePlaceholder(repairs []Repair) bool {
	for _, r := range repairs {
		if r.Field == "title" && r.Action == RepairPlaceholder {
			return true
		}
	}
	return false
}

var nullLikeValues = map[string]struct{}{
	"n/a": {}, "na": {}, "null": {}, "none": {}, "unknown": {}, "nil": {},
}

func isNullLike(s string) bool {
	_, ok := nullLikeValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// --- lenient coercion helpers ---

func coerceStringField(v any, field string, repairs []Repair) (string, []Repair) {
	switch t := v.(type) {
	case nil:
		return "", repairs
	case string:
		if isNullLike(t) {
			if strings.TrimSpace(t) != "" {
				repairs = append(repairs, Repair{Field: field, Action: RepairNulled})
			}
			return "", repairs
		}
		return t, repairs
	case json.Number:
		return t.String(), append(repairs, Repair{Field: field, Action: RepairCoerced})
	case float64:
		return FormatQuantity(t), append(repairs, Repair{Field: field, Action: RepairCoerced})
	default:
		return "", repairs
	}
}

func coerceNumberField(v any, field string, repairs []Repair) (*float64, []Repair) {
	switch t := v.(type) {
	case nil:
		return nil, repairs
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f, repairs
		}
		return nil, append(repairs, Repair{Field: field, Action: RepairNulled})
	case float64:
		return &t, repairs
	case string:
		if isNullLike(t) || strings.TrimSpace(t) == "" {
			return nil, repairs
		}
		if f, err := ParseQuantity(t); err == nil {
			return &f, append(repairs, Repair{Field: field, Action: RepairCoerced})
		}
		return nil, append(repairs, Repair{Field: field, Action: RepairNulled})
	default:
		return nil, repairs
	}
}

func coerceIntField(v any, field string, repairs []Repair) (*int, []Repair) {
	f, repairs := coerceNumberField(v, field, repairs)
	if f == nil {
		return nil, repairs
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil, append(repairs, Repair{Field: field, Action: RepairDropped})
	}
	n := int(math.Round(*f))
	return &n, repairs
}
