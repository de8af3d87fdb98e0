package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

// OpenRouterService is the chat-completion transport to the generation
// backend. Failures are classified at this layer: transient ones carry a
// BackendTransientError and are retried upstream, fatal ones abort the
// attempt loop immediately.
type OpenRouterService struct {
	config *config.Config
	client *resty.Client
}

// NewOpenRouterService creates the backend transport.
func NewOpenRouterService(cfg *config.Config) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.OpenRouter.BaseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("Content-Type", "application/json")

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// Model reports the configured backend model.
func (s *OpenRouterService) Model() string {
	return s.config.OpenRouter.Model
}

// Complete sends one prompt and returns the raw completion text.
func (s *OpenRouterService) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]interface{}{
		"model": s.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": s.config.OpenRouter.MaxTokens,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")

	if err != nil {
		// Cancellation is the caller's deadline, not a backend failure.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Transport errors (timeout, connection refused, DNS) are retryable.
		return "", common.NewBackendTransientError("backend request failed", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", classifyStatus(resp.StatusCode(), resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", common.NewBackendTransientError("malformed backend envelope", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", common.NewBackendTransientError("backend returned no choices", nil)
	}

	return result.Choices[0].Message.Content, nil
}

// classifyStatus splits backend HTTP failures into transient and fatal.
func classifyStatus(status int, body string) error {
	if len(body) > 200 {
		body = body[:200]
	}
	common.LogWarn("backend returned error status",
		zap.Int("status", status),
		zap.String("body", body),
	)

	switch {
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return common.NewBackendTransientError(fmt.Sprintf("backend status %d", status), nil)
	case status >= 500:
		return common.NewBackendTransientError(fmt.Sprintf("backend status %d", status), nil)
	default:
		// 400/401/402/403 and the rest of 4xx: retrying cannot help.
		return common.NewBackendFatalError(fmt.Sprintf("backend status %d", status), nil)
	}
}
