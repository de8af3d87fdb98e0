package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"recipe-ai-service/internal/core/ai/cache"
	openrouter "recipe-ai-service/internal/core/service"
	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

// Completer sends one prompt to the generation backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Envelope is the result of one orchestrated backend request.
type Envelope struct {
	Content  string
	Attempts int
	Latency  time.Duration
	CacheHit bool
}

// DecodeFunc validates a raw completion. A decode failure counts as a
// transient attempt failure, so malformed backend output is retried like a
// timeout would be.
type DecodeFunc func(content string) error

// Service drives the backend attempt loop: bounded retries with
// exponential backoff and jitter, a hard per-request budget, and a cache
// in front of the whole thing.
type Service struct {
	config     *config.Config
	completer  Completer
	cacheStore cache.Cache
}

// NewService creates the orchestrator with the default backend transport.
func NewService(cfg *config.Config, cacheStore cache.Cache) *Service {
	return &Service{
		config:     cfg,
		completer:  openrouter.NewOpenRouterService(cfg),
		cacheStore: cacheStore,
	}
}

// NewServiceWithCompleter creates the orchestrator with an explicit
// backend, used by tests and alternative transports.
func NewServiceWithCompleter(cfg *config.Config, completer Completer, cacheStore cache.Cache) *Service {
	return &Service{
		config:     cfg,
		completer:  completer,
		cacheStore: cacheStore,
	}
}

// ProcessRequest runs the attempt loop for one prompt. Only completions
// that pass decode are cached or returned; transient failures back off and
// retry up to the attempt cap, fatal failures and caller cancellation stop
// the loop immediately.
func (s *Service) ProcessRequest(ctx context.Context, prompt string, decode DecodeFunc) (*Envelope, error) {
	start := time.Now()

	if s.cacheStore != nil && s.config.AI.EnableCache {
		if content, err := s.cacheStore.Get(ctx, prompt); err == nil && content != "" {
			// Cached content passed decode when stored, but the caller's
			// decode also captures the result, so it runs here too.
			if decodeErr := decode(content); decodeErr == nil {
				return &Envelope{
					Content:  content,
					Attempts: 0,
					Latency:  time.Since(start),
					CacheHit: true,
				}, nil
			}
		}
	}

	// The whole loop, backoff sleeps included, runs inside one budget.
	ctx, cancel := context.WithTimeout(ctx, s.config.AI.RequestBudget)
	defer cancel()

	var lastErr error
	attempt := 0
	for attempt < s.config.AI.MaxAttempts {
		attempt++

		content, err := s.completer.Complete(ctx, prompt)
		if err == nil {
			if decodeErr := decode(content); decodeErr != nil {
				err = common.NewBackendTransientError("backend reply failed to decode", decodeErr)
			}
		}

		if err == nil {
			if s.cacheStore != nil && s.config.AI.EnableCache {
				if cacheErr := s.cacheStore.Set(ctx, prompt, content); cacheErr != nil {
					common.LogWarn("failed to cache completion", zap.Error(cacheErr))
				}
			}
			latency := time.Since(start)
			common.LogAICall(latency, attempt, nil)
			return &Envelope{
				Content:  content,
				Attempts: attempt,
				Latency:  latency,
			}, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			// Budget exhausted or caller gone; surface as transient so the
			// API edge maps it to 503.
			common.LogAICall(time.Since(start), attempt, ctx.Err())
			return nil, common.NewBackendTransientError("request budget exhausted", ctx.Err())
		}
		if common.IsBackendFatalError(err) {
			common.LogAICall(time.Since(start), attempt, err)
			return nil, err
		}
		if attempt >= s.config.AI.MaxAttempts {
			break
		}

		delay := s.backoffDelay(attempt)
		common.LogWarn("backend attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			common.LogAICall(time.Since(start), attempt, ctx.Err())
			return nil, common.NewBackendTransientError("request budget exhausted", ctx.Err())
		}
	}

	common.LogAICall(time.Since(start), attempt, lastErr)
	if lastErr == nil {
		lastErr = common.NewBackendTransientError("backend attempts exhausted", nil)
	}
	if !common.IsBackendTransientError(lastErr) && !common.IsBackendFatalError(lastErr) {
		lastErr = common.NewBackendTransientError("backend attempts exhausted", lastErr)
	}
	return nil, lastErr
}

// backoffDelay computes the sleep before the next attempt: base doubled per
// attempt, with ±25% jitter to spread concurrent retries.
func (s *Service) backoffDelay(attempt int) time.Duration {
	delay := float64(s.config.AI.BackoffBase)
	for i := 1; i < attempt; i++ {
		delay *= s.config.AI.BackoffFactor
	}
	jitter := 0.75 + rand.Float64()*0.5
	return time.Duration(delay * jitter)
}

// Model reports the backend model in use.
func (s *Service) Model() string {
	return s.completer.Model()
}
