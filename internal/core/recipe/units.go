package recipe

import (
	"fmt"
	"strconv"
	"strings"
)

// unitVocabulary is the controlled set of canonical unit tokens. Plural and
// singular forms are distinct members so the source spelling survives
// normalization.
var unitVocabulary = map[string]struct{}{
	"cup": {}, "cups": {},
	"tablespoon": {}, "tablespoons": {},
	"teaspoon": {}, "teaspoons": {},
	"ounce": {}, "ounces": {},
	"pound": {}, "pounds": {},
	"gram": {}, "grams": {},
	"kilogram": {}, "kilograms": {},
	"milliliter": {}, "milliliters": {},
	"liter": {}, "liters": {},
	"piece": {}, "pieces": {},
	"clove": {}, "cloves": {},
	"pinch": {}, "pinches": {},
	"slice": {}, "slices": {},
	"can": {}, "cans": {},
	"dash": {}, "dashes": {},
}

// unitAbbreviations maps common abbreviations to canonical tokens.
var unitAbbreviations = map[string]string{
	"tbsp": "tablespoon",
	"tbs":  "tablespoon",
	"tsp":  "teaspoon",
	"oz":   "ounce",
	"lb":   "pound",
	"lbs":  "pounds",
	"g":    "gram",
	"kg":   "kilogram",
	"ml":   "milliliter",
	"l":    "liter",
	"c":    "cup",
}

// unitBaseForms collapses plural vocabulary members to a singular base,
// used when comparing units for deduplication.
var unitBaseForms = map[string]string{
	"cups": "cup", "tablespoons": "tablespoon", "teaspoons": "teaspoon",
	"ounces": "ounce", "pounds": "pound", "grams": "gram",
	"kilograms": "kilogram", "milliliters": "milliliter", "liters": "liter",
	"pieces": "piece", "cloves": "clove", "pinches": "pinch",
	"slices": "slice", "cans": "can", "dashes": "dash",
}

// NormalizeUnit canonicalizes a unit token. Unknown tokens pass through
// lowercased with recognized=false; they are flagged, not dropped.
func NormalizeUnit(raw string) (string, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	token = strings.TrimSuffix(token, ".")
	if token == "" {
		return "", false
	}
	if _, ok := unitVocabulary[token]; ok {
		return token, true
	}
	if full, ok := unitAbbreviations[token]; ok {
		return full, true
	}
	return token, false
}

// UnitBase returns the singular comparison form of a canonical unit.
func UnitBase(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if base, ok := unitBaseForms[unit]; ok {
		return base
	}
	return unit
}

// IsUnitToken reports whether the token is an exact vocabulary or
// abbreviation match. Unit recognition never fires on anything looser.
func IsUnitToken(raw string) bool {
	_, ok := NormalizeUnit(raw)
	return ok
}

var unicodeFractions = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3.0, '⅔': 2.0 / 3.0,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8,
	'⅙': 1.0 / 6.0, '⅚': 5.0 / 6.0,
}

// ParseQuantity converts one numeric expression to a float: integers,
// decimals, ASCII fractions, unicode fraction glyphs, and mixed numbers
// ("1 1/2", "1½"). Range expressions are resolved to their upper bound by
// the caller before reaching here.
func ParseQuantity(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	// Trailing unicode fraction glyph, with or without a leading whole part.
	runes := []rune(text)
	if frac, ok := unicodeFractions[runes[len(runes)-1]]; ok {
		whole := strings.TrimSpace(string(runes[:len(runes)-1]))
		if whole == "" {
			return frac, nil
		}
		n, err := strconv.ParseFloat(whole, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed mixed number %q", text)
		}
		return n + frac, nil
	}

	// Mixed number: "1 1/2".
	if fields := strings.Fields(text); len(fields) == 2 && strings.Contains(fields[1], "/") {
		whole, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("malformed mixed number %q", text)
		}
		frac, err := parseFraction(fields[1])
		if err != nil {
			return 0, err
		}
		return whole + frac, nil
	}

	if strings.Contains(text, "/") {
		return parseFraction(text)
	}

	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed quantity %q", text)
	}
	return n, nil
}

func parseFraction(text string) (float64, error) {
	parts := strings.SplitN(text, "/", 2)
	num, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed fraction %q", text)
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed fraction %q", text)
	}
	if den == 0 {
		return 0, fmt.Errorf("fraction %q has zero denominator", text)
	}
	return num / den, nil
}

// FormatQuantity renders a quantity the way the builder re-serializes it.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
