package recipe

import (
	"strings"
)

var ingredientHeaders = map[string]struct{}{
	"ingredients": {},
}

var instructionHeaders = map[string]struct{}{
	"instructions": {},
	"directions":   {},
	"steps":        {},
	"method":       {},
}

// headerKind reports whether a line is a region header and which one.
func headerKind(line string) (RegionKind, bool) {
	token := strings.ToLower(strings.TrimSpace(line))
	token = strings.TrimSuffix(token, ":")
	token = strings.TrimSpace(token)
	if _, ok := ingredientHeaders[token]; ok {
		return RegionIngredientsHeader, true
	}
	if _, ok := instructionHeaders[token]; ok {
		return RegionInstructionsHeader, true
	}
	return "", false
}

// ClassifyLines splits raw recipe text into ordered labeled regions. The
// first non-blank, non-header line is the title; header lines switch the
// active region; a body without any header falls back to a single
// instructions region after the title.
func ClassifyLines(raw string) []Region {
	lines := splitLines(raw)

	hasHeader := false
	for _, line := range lines {
		if _, ok := headerKind(line); ok {
			hasHeader = true
			break
		}
	}

	var regions []Region
	var instructionBuf []string
	active := RegionDescription // region for lines after the title, before a header
	titleSeen := false
	lastBlank := false

	flushInstructions := func() {
		if len(instructionBuf) == 0 {
			return
		}
		// A single unbroken paragraph is split into sentences; list-style
		// regions keep one step per line.
		if len(instructionBuf) == 1 {
			for _, sentence := range splitSentences(instructionBuf[0]) {
				regions = append(regions, Region{Kind: RegionInstructionLine, Text: sentence})
			}
		} else {
			for _, line := range instructionBuf {
				regions = append(regions, Region{Kind: RegionInstructionLine, Text: line})
			}
		}
		instructionBuf = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			// Collapse runs of blank lines to a single separator.
			if !lastBlank && titleSeen {
				regions = append(regions, Region{Kind: RegionBlank})
				lastBlank = true
			}
			continue
		}
		lastBlank = false

		if kind, ok := headerKind(trimmed); ok {
			flushInstructions()
			regions = append(regions, Region{Kind: kind, Text: trimmed})
			if kind == RegionIngredientsHeader {
				active = RegionIngredientLine
			} else {
				active = RegionInstructionLine
			}
			continue
		}

		if !titleSeen {
			titleSeen = true
			regions = append(regions, Region{Kind: RegionTitle, Text: trimmed})
			if !hasHeader {
				active = RegionInstructionLine
			}
			continue
		}

		switch active {
		case RegionIngredientLine:
			if _, ok := ParseIngredientLine(trimmed); ok {
				regions = append(regions, Region{Kind: RegionIngredientLine, Text: trimmed})
			} else {
				// Never silently drop non-conforming content.
				regions = append(regions, Region{Kind: RegionMetadataLine, Text: trimmed})
			}
		case RegionInstructionLine:
			instructionBuf = append(instructionBuf, trimmed)
		default:
			regions = append(regions, Region{Kind: RegionDescription, Text: trimmed})
		}
	}

	flushInstructions()
	return regions
}

// splitLines normalizes line endings and splits the text.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return strings.Split(raw, "\n")
}

// splitSentences breaks a paragraph at sentence-ending punctuation followed
// by whitespace, keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\t' {
				if s := strings.TrimSpace(b.String()); s != "" {
					sentences = append(sentences, s)
				}
				b.Reset()
			}
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
