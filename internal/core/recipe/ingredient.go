package recipe

import (
	"regexp"
	"strings"
)

var (
	numberPattern      = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	fractionPattern    = regexp.MustCompile(`^\d+/\d+$`)
	inlineRangePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)[-–](\d+(?:\.\d+)?)$`)
)

// timeWords are nouns that mark a range as a duration, not a quantity.
var timeWords = map[string]struct{}{
	"minute": {}, "minutes": {}, "min": {}, "mins": {},
	"hour": {}, "hours": {}, "hr": {}, "hrs": {},
	"second": {}, "seconds": {}, "sec": {}, "secs": {},
}

// ParseIngredientLine converts one line of ingredient text into a
// quantity/unit/name triple. It returns false when the line has no usable
// name, which the classifier treats as "not an ingredient line".
func ParseIngredientLine(line string) (IngredientLine, bool) {
	line = strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			line = strings.TrimSpace(line[len(marker):])
			break
		}
	}
	if line == "" {
		return IngredientLine{}, false
	}

	fields := strings.Fields(line)
	quantity, consumed := consumeQuantity(fields)

	var unit *string
	rest := fields[consumed:]
	if quantity != nil && len(rest) > 1 {
		// Unit recognition fires only on an exact vocabulary or
		// abbreviation match; "large" in "2 large eggs" stays in the name.
		if canonical, ok := NormalizeUnit(rest[0]); ok {
			unit = &canonical
			rest = rest[1:]
		}
	}

	// Drop the connector between unit and name ("2 cups of flour").
	if len(rest) > 1 && strings.EqualFold(rest[0], "of") {
		rest = rest[1:]
	}

	name := strings.TrimSpace(strings.Join(rest, " "))
	if name == "" {
		return IngredientLine{}, false
	}

	return IngredientLine{Name: name, Quantity: quantity, Unit: unit}, true
}

// consumeQuantity recognizes a leading quantity expression and reports how
// many tokens it spans. Ranges collapse to their upper bound, and only count
// as a quantity when followed by a unit or a countable noun; a range that
// reads as a duration is left in the text untouched.
func consumeQuantity(fields []string) (*float64, int) {
	if len(fields) == 0 {
		return nil, 0
	}
	first := fields[0]

	// Inline range: "10-12".
	if m := inlineRangePattern.FindStringSubmatch(first); m != nil {
		if !rangeIsQuantity(fields[1:]) {
			return nil, 0
		}
		if upper, err := ParseQuantity(m[2]); err == nil {
			return &upper, 1
		}
		return nil, 0
	}

	// Worded range: "10 to 12".
	if len(fields) >= 3 && numberPattern.MatchString(first) && strings.EqualFold(fields[1], "to") && numberPattern.MatchString(fields[2]) {
		if !rangeIsQuantity(fields[3:]) {
			return nil, 0
		}
		if upper, err := ParseQuantity(fields[2]); err == nil {
			return &upper, 3
		}
		return nil, 0
	}

	// Mixed number: "1 1/2".
	if len(fields) >= 2 && numberPattern.MatchString(first) && fractionPattern.MatchString(fields[1]) {
		if q, err := ParseQuantity(first + " " + fields[1]); err == nil {
			return &q, 2
		}
		return nil, 0
	}

	if numberPattern.MatchString(first) || fractionPattern.MatchString(first) || hasUnicodeFraction(first) {
		if q, err := ParseQuantity(first); err == nil {
			return &q, 1
		}
	}

	return nil, 0
}

// rangeIsQuantity checks the token after a range expression: a unit or a
// plain countable noun confirms the range as a quantity, a duration word
// (or nothing) rejects it.
func rangeIsQuantity(after []string) bool {
	if len(after) == 0 {
		return false
	}
	next := strings.ToLower(strings.TrimSuffix(after[0], "."))
	if _, isTime := timeWords[next]; isTime {
		return false
	}
	return true
}

func hasUnicodeFraction(token string) bool {
	for _, r := range token {
		if _, ok := unicodeFractions[r]; ok {
			return true
		}
	}
	return false
}
