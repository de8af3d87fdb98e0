package recipe

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	recipecore "recipe-ai-service/internal/core/recipe"
	"recipe-ai-service/internal/pkg/common"
)

// ParseResponse is the parsing endpoint payload. processing_time is
// seconds, mirrored in the X-Process-Time header.
type ParseResponse struct {
	ParsedRecipe   *recipecore.RecipeRecord `json:"parsed_recipe"`
	ProcessingTime float64                  `json:"processing_time"`
}

// SuggestionResponse is the suggestion endpoint payload.
type SuggestionResponse struct {
	Suggestions    []recipecore.RecipeRecord `json:"suggestions"`
	ProcessingTime float64                   `json:"processing_time"`
}

// Handler serves the two AI recipe endpoints.
type Handler struct {
	parseService      *recipecore.ParseService
	suggestionService *recipecore.SuggestionService
}

// NewHandler creates the recipe handler.
func NewHandler(parseService *recipecore.ParseService, suggestionService *recipecore.SuggestionService) *Handler {
	return &Handler{
		parseService:      parseService,
		suggestionService: suggestionService,
	}
}

// HandleRecipeParsing parses raw recipe text into a structured record.
func (h *Handler) HandleRecipeParsing(c *gin.Context) {
	start := time.Now()
	requestID := ensureRequestID(c)

	var req recipecore.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid parse request body",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(common.ErrInvalidRequest.Status, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrInvalidRequest.Code,
		})
		return
	}

	record, err := h.parseService.ParseRecipe(c.Request.Context(), &req)
	if err != nil {
		writeError(c, requestID, "recipe parsing failed", err)
		return
	}

	elapsed := time.Since(start).Seconds()
	setProcessTime(c, elapsed)
	common.LogInfo("recipe parsed",
		zap.String("request_id", requestID),
		zap.String("title", record.Title),
		zap.Float64("processing_time", elapsed),
	)
	c.JSON(http.StatusOK, ParseResponse{
		ParsedRecipe:   record,
		ProcessingTime: elapsed,
	})
}

// HandleRecipeSuggestions generates recipe suggestions from available
// ingredients.
func (h *Handler) HandleRecipeSuggestions(c *gin.Context) {
	start := time.Now()
	requestID := ensureRequestID(c)

	if h.suggestionService == nil {
		c.JSON(common.ErrServiceUnavailable.Status, gin.H{
			"error": "generation backend is disabled",
			"code":  common.ErrServiceUnavailable.Code,
		})
		return
	}

	var req recipecore.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid suggestion request body",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(common.ErrInvalidRequest.Status, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrInvalidRequest.Code,
		})
		return
	}

	suggestions, err := h.suggestionService.SuggestRecipes(c.Request.Context(), &req)
	if err != nil {
		writeError(c, requestID, "recipe suggestion failed", err)
		return
	}

	elapsed := time.Since(start).Seconds()
	setProcessTime(c, elapsed)
	common.LogInfo("recipe suggestions served",
		zap.String("request_id", requestID),
		zap.Int("count", len(suggestions)),
		zap.Float64("processing_time", elapsed),
	)
	c.JSON(http.StatusOK, SuggestionResponse{
		Suggestions:    suggestions,
		ProcessingTime: elapsed,
	})
}

// ensureRequestID echoes the caller's request ID or mints one.
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

func setProcessTime(c *gin.Context, seconds float64) {
	c.Header("X-Process-Time", fmt.Sprintf("%.6f", seconds))
}

// writeError maps a pipeline error onto the HTTP edge.
func writeError(c *gin.Context, requestID, msg string, err error) {
	status, code := common.HTTPStatusFor(err)
	if status >= 500 {
		common.LogError(msg,
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.Int("status", status),
		)
	} else {
		common.LogWarn(msg,
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.Int("status", status),
		)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}
