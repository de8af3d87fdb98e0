package recipe

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipe-ai-service/internal/core/ai/service"
	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

// recordContract is the JSON shape the backend is asked to return. Shared
// by the parse fallback and the suggestion prompt so both paths decode the
// same way.
const recordContract = `{
  "title": "string",
  "description": "string",
  "ingredients": [{"name": "string", "quantity": 1.5, "unit": "cup"}],
  "instructions": ["string"],
  "cooking_time_minutes": 30,
  "preparation_time_minutes": 10,
  "servings": 4
}`

// ParseService turns raw recipe text into a validated RecipeRecord. The
// local pipeline runs first; the generation backend is only consulted when
// local parsing yields nothing usable.
type ParseService struct {
	config    *config.Config
	aiService *service.Service
}

// NewParseService creates the text-parsing service. aiService may be nil
// when the generation backend is disabled; the local pipeline still works.
func NewParseService(cfg *config.Config, aiService *service.Service) *ParseService {
	return &ParseService{
		config:    cfg,
		aiService: aiService,
	}
}

// ParseRecipe runs the local pipeline: classify, parse, build, validate.
// When the local result is rejected or has no ingredients and the backend
// is enabled, one generation pass over the raw text is attempted before
// giving up. Parse-path results carry no confidence score.
func (s *ParseService) ParseRecipe(ctx context.Context, req *ParseRequest) (*RecipeRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	regions := ClassifyLines(req.RawText)
	candidate := BuildRecord(regions)

	record, repairs, err := ValidateRecord(candidate, ProvenanceParsed, nil)
	if err == nil && len(record.Ingredients) > 0 {
		common.LogDebug("recipe parsed locally",
			zap.Int("ingredients", len(record.Ingredients)),
			zap.Int("instructions", len(record.Instructions)),
			zap.Int("repairs", len(repairs)),
		)
		return &record, nil
	}

	if s.aiService == nil || !s.config.OpenRouter.Enabled {
		if err != nil {
			return nil, err
		}
		// Usable instructions but no ingredients, and no backend to ask.
		return &record, nil
	}

	common.LogInfo("local parse insufficient, falling back to generation",
		zap.Bool("rejected", err != nil),
	)
	generated, genErr := s.parseViaBackend(ctx, req.RawText)
	if genErr != nil {
		if err == nil {
			// The local record is partial but usable; a failed fallback
			// must not discard it.
			common.LogWarn("generation fallback failed, keeping local parse",
				zap.Error(genErr),
			)
			return &record, nil
		}
		return nil, genErr
	}
	return generated, nil
}

// parseViaBackend asks the generation backend to structure the text and
// validates its single candidate. The fallback result is generated content,
// so it carries a confidence score.
func (s *ParseService) parseViaBackend(ctx context.Context, rawText string) (*RecipeRecord, error) {
	prompt := fmt.Sprintf(`Extract the recipe below into exactly one JSON object with this shape:
%s

Rules:
1. Return only the JSON object, no markdown fences or commentary.
2. Use null for any numeric field you cannot determine. Do not guess.
3. Keep ingredient names as written in the text.
4. instructions is an array of strings, one step per element.

Recipe text:
%s`, recordContract, rawText)

	var record RecipeRecord
	var repairs []Repair

	decode := func(content string) error {
		candidate, decodeRepairs, err := DecodeCandidate(common.ExtractJSON(content))
		if err != nil {
			return err
		}
		record, repairs, err = ValidateRecord(candidate, ProvenanceGenerated, decodeRepairs)
		return err
	}

	envelope, err := s.aiService.ProcessRequest(ctx, prompt, decode)
	if err != nil {
		return nil, err
	}

	score := Score(record, repairs)
	record.ConfidenceScore = &score
	common.LogInfo("recipe parsed via backend",
		zap.Int("attempts", envelope.Attempts),
		zap.Bool("cache_hit", envelope.CacheHit),
		zap.Float64("confidence", score),
	)
	return &record, nil
}
