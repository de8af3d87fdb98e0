package recipe

// Fixed confidence deductions. The scorer starts at 1.0 and subtracts;
// weights are deliberately not configurable so scores stay comparable
// across deployments.
const (
	deductMissingTime     = 0.15
	deductMissingServings = 0.15
	deductPerRepair       = 0.10
	deductRepairCap       = 0.30
	deductFewIngredients  = 0.20
	deductNoInstructions  = 0.20
	deductPlaceholder     = 0.30
)

// Score computes the confidence score for a validated record, given the
// repairs the validator applied. The result is clamped to [0, 1]; only a
// record with zero deductions scores 1.0.
func Score(rec RecipeRecord, repairs []Repair) float64 {
	score := 1.0

	if rec.CookingTimeMinutes == nil && rec.PreparationTimeMinutes == nil {
		score -= deductMissingTime
	}
	if rec.Servings == nil {
		score -= deductMissingServings
	}

	// The placeholder title carries its own weight, so it is excluded from
	// the per-repair count.
	penalty := float64(CountScoredRepairs(repairs)) * deductPerRepair
	if penalty > deductRepairCap {
		penalty = deductRepairCap
	}
	score -= penalty

	if len(rec.Ingredients) < 2 {
		score -= deductFewIngredients
	}
	if len(rec.Instructions) == 0 {
		score -= deductNoInstructions
	}
	if HasTitlePlaceholder(repairs) {
		score -= deductPlaceholder
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
