package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"recipe-ai-service/internal/core/ai/service"
	"recipe-ai-service/internal/pkg/common"
)

// SuggestionService asks the generation backend for recipes built from the
// caller's available ingredients, then validates and scores each candidate.
type SuggestionService struct {
	aiService *service.Service
}

// NewSuggestionService creates the suggestion service.
func NewSuggestionService(aiService *service.Service) *SuggestionService {
	return &SuggestionService{aiService: aiService}
}

// scoredCandidate pairs a validated record with its repair trail.
type scoredCandidate struct {
	record  RecipeRecord
	repairs []Repair
}

// SuggestRecipes validates the request, runs one orchestrated backend call,
// and returns the surviving candidates sorted by confidence. Rejected
// candidates are dropped; only when every candidate is rejected does the
// whole request fail.
func (s *SuggestionService) SuggestRecipes(ctx context.Context, req *SuggestionRequest) ([]RecipeRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt := s.buildPrompt(req)

	var accepted []scoredCandidate
	var rejected int
	allRejected := false

	decode := func(content string) error {
		allRejected = false
		candidates, err := decodeCandidateList(content)
		if err != nil {
			return err
		}

		accepted = accepted[:0]
		rejected = 0
		for _, text := range candidates {
			candidate, decodeRepairs, err := DecodeCandidate(text)
			if err != nil {
				rejected++
				continue
			}
			record, repairs, err := ValidateRecord(candidate, ProvenanceGenerated, decodeRepairs)
			if err != nil {
				rejected++
				continue
			}
			accepted = append(accepted, scoredCandidate{record: record, repairs: repairs})
		}

		if len(accepted) == 0 {
			// Nothing usable in this reply; retry as if it were malformed.
			allRejected = true
			return fmt.Errorf("all %d candidates rejected", rejected)
		}
		return nil
	}

	envelope, err := s.aiService.ProcessRequest(ctx, prompt, decode)
	if err != nil {
		if common.IsBackendTransientError(err) && allRejected {
			// The backend answered, just never with a usable recipe.
			return nil, common.NewValidationRejected("no suggestion candidate survived validation")
		}
		return nil, err
	}

	results := make([]RecipeRecord, 0, len(accepted))
	for _, c := range accepted {
		score := Score(c.record, c.repairs)
		rec := c.record
		rec.ConfidenceScore = &score
		results = append(results, rec)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].ConfidenceScore > *results[j].ConfidenceScore
	})

	common.LogInfo("recipe suggestions generated",
		zap.Int("count", len(results)),
		zap.Int("dropped", rejected),
		zap.Int("attempts", envelope.Attempts),
		zap.Bool("cache_hit", envelope.CacheHit),
	)
	return results, nil
}

// buildPrompt renders the suggestion request into the backend prompt.
func (s *SuggestionService) buildPrompt(req *SuggestionRequest) string {
	var b strings.Builder
	b.WriteString("Suggest up to 3 recipes using the available ingredients below.\n\n")
	b.WriteString("Available ingredients:\n")
	for _, ing := range req.Ingredients {
		b.WriteString("- " + ing + "\n")
	}
	if len(req.DietaryPreferences) > 0 {
		b.WriteString("\nDietary preferences:\n")
		for _, p := range req.DietaryPreferences {
			b.WriteString("- " + p + "\n")
		}
	}
	if len(req.ExcludedIngredients) > 0 {
		b.WriteString("\nNever use these ingredients:\n")
		for _, e := range req.ExcludedIngredients {
			b.WriteString("- " + e + "\n")
		}
	}
	b.WriteString(fmt.Sprintf(`
Return a JSON array of recipe objects, each with this shape:
%s

Rules:
1. Return only the JSON array, no markdown fences or commentary.
2. Prefer the listed ingredients; common pantry staples are allowed.
3. Use null for any numeric field you cannot determine. Do not guess.
4. instructions is an array of strings, one step per element.
`, recordContract))
	return b.String()
}

// decodeCandidateList splits a backend reply into per-candidate JSON
// strings. A reply may be a JSON array or a single object.
func decodeCandidateList(content string) ([]string, error) {
	text := common.ExtractJSON(content)
	if text == "" {
		return nil, fmt.Errorf("reply contains no JSON")
	}

	if strings.HasPrefix(text, "[") {
		var items []interface{}
		if err := common.ParseJSON(text, &items); err != nil {
			return nil, fmt.Errorf("malformed candidate array: %w", err)
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			encoded, err := common.ToJSON(item)
			if err != nil {
				continue
			}
			out = append(out, encoded)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("candidate array is empty")
		}
		return out, nil
	}

	return []string{text}, nil
}
