package recipe

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	timeMentionPattern = regexp.MustCompile(`(?i)(\d+)(?:\s*(?:-|–|to)\s*(\d+))?\s*(minutes?|mins?|hours?|hrs?)\b`)
	servesPattern      = regexp.MustCompile(`(?i)\bserves\s+(\d+)\b`)
	servingsPattern    = regexp.MustCompile(`(?i)\b(\d+)\s+servings?\b`)
)

var cookingKeywords = []string{"bake", "cook", "simmer", "boil", "roast", "fry", "grill"}
var prepKeywords = []string{"prep", "prepare", "chill", "rest", "marinate"}

// BuildRecord assembles classified regions into a candidate RecipeRecord.
// Title defaulting is left to the validator so every repair flows through
// one attributable channel.
func BuildRecord(regions []Region) RecipeRecord {
	var rec RecipeRecord
	var descLines []string
	var scanText []string

	for _, region := range regions {
		switch region.Kind {
		case RegionTitle:
			if rec.Title == "" {
				rec.Title = region.Text
			}
		case RegionDescription:
			descLines = append(descLines, region.Text)
		case RegionIngredientLine:
			if line, ok := ParseIngredientLine(region.Text); ok {
				rec.Ingredients = append(rec.Ingredients, line)
			}
		case RegionInstructionLine:
			rec.Instructions = append(rec.Instructions, region.Text)
			scanText = append(scanText, region.Text)
		case RegionMetadataLine:
			scanText = append(scanText, region.Text)
		}
	}

	description := strings.TrimSpace(strings.Join(descLines, " "))
	if description != "" && !strings.EqualFold(description, rec.Title) {
		rec.Description = description
	}

	rec.CookingTimeMinutes = extractTime(scanText, cookingKeywords, prepKeywords)
	rec.PreparationTimeMinutes = extractTime(scanText, prepKeywords, cookingKeywords)
	rec.Servings = extractServings(scanText)

	return rec
}

// extractTime finds minute mentions near the category's keywords. Mentions
// whose line also matches the other category are ambiguous and skipped;
// distinct conflicting values leave the field null rather than guessing.
func extractTime(lines []string, keywords, otherKeywords []string) *int {
	var values []int
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !containsAny(lower, keywords) || containsAny(lower, otherKeywords) {
			continue
		}
		for _, m := range timeMentionPattern.FindAllStringSubmatch(line, -1) {
			val := m[1]
			if m[2] != "" {
				// Range: store the upper bound.
				val = m[2]
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				continue
			}
			if strings.HasPrefix(strings.ToLower(m[3]), "h") {
				n *= 60
			}
			values = append(values, n)
		}
	}
	if len(values) == 0 {
		return nil
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return nil
		}
	}
	return &values[0]
}

func extractServings(lines []string) *int {
	for _, line := range lines {
		m := servesPattern.FindStringSubmatch(line)
		if m == nil {
			m = servingsPattern.FindStringSubmatch(line)
		}
		if m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return &n
			}
		}
	}
	return nil
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// FormatRecord re-serializes a record to recipe text. Parsing this output
// classifies back into the same regions, which keeps the parse path
// idempotent.
func FormatRecord(rec RecipeRecord) string {
	var b strings.Builder
	title := rec.Title
	if title == "" {
		title = PlaceholderTitle
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	if rec.Description != "" {
		b.WriteString(rec.Description)
		b.WriteString("\n\n")
	}

	if len(rec.Ingredients) > 0 {
		b.WriteString("Ingredients:\n")
		for _, ing := range rec.Ingredients {
			b.WriteString(FormatIngredientLine(ing))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(rec.Instructions) > 0 {
		b.WriteString("Instructions:\n")
		for _, step := range rec.Instructions {
			b.WriteString(step)
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatIngredientLine renders one ingredient as source text.
func FormatIngredientLine(ing IngredientLine) string {
	var parts []string
	if ing.Quantity != nil {
		parts = append(parts, FormatQuantity(*ing.Quantity))
	}
	if ing.Unit != nil && *ing.Unit != "" {
		parts = append(parts, *ing.Unit)
	}
	parts = append(parts, ing.Name)
	return strings.Join(parts, " ")
}
