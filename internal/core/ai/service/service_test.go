package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-ai-service/internal/core/ai/cache"
	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

// scriptedCompleter replays a fixed sequence of replies and errors.
type scriptedCompleter struct {
	replies []string
	errs    []error
	calls   int
}

func (f *scriptedCompleter) Complete(_ context.Context, _ string) (string, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	return f.replies[idx], f.errs[idx]
}

func (f *scriptedCompleter) Model() string { return "test-model" }

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			MaxAttempts:   3,
			BackoffBase:   time.Millisecond,
			BackoffFactor: 2.0,
			RequestBudget: 5 * time.Second,
			EnableCache:   false,
		},
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         10,
			TTL:             time.Minute,
			CleanupInterval: time.Minute,
		},
	}
}

func acceptAll(string) error { return nil }

func TestProcessRequestSucceedsFirstAttempt(t *testing.T) {
	fake := &scriptedCompleter{replies: []string{"ok"}, errs: []error{nil}}
	svc := NewServiceWithCompleter(testConfig(), fake, nil)

	env, err := svc.ProcessRequest(context.Background(), "prompt", acceptAll)
	require.NoError(t, err)
	assert.Equal(t, "ok", env.Content)
	assert.Equal(t, 1, env.Attempts)
	assert.False(t, env.CacheHit)
}

func TestProcessRequestRetriesTransientFailures(t *testing.T) {
	fake := &scriptedCompleter{
		replies: []string{"", "", "ok"},
		errs: []error{
			common.NewBackendTransientError("status 503", nil),
			common.NewBackendTransientError("timeout", nil),
			nil,
		},
	}
	svc := NewServiceWithCompleter(testConfig(), fake, nil)

	env, err := svc.ProcessRequest(context.Background(), "prompt", acceptAll)
	require.NoError(t, err)
	assert.Equal(t, 3, env.Attempts)
	assert.Equal(t, 3, fake.calls)
}

func TestProcessRequestRetriesMalformedReplies(t *testing.T) {
	// Two garbage replies, then a decodable one: the decode failure is
	// treated like any other transient fault.
	fake := &scriptedCompleter{
		replies: []string{"garbage", "still garbage", "valid"},
		errs:    []error{nil, nil, nil},
	}
	svc := NewServiceWithCompleter(testConfig(), fake, nil)

	decode := func(content string) error {
		if content != "valid" {
			return assert.AnError
		}
		return nil
	}

	env, err := svc.ProcessRequest(context.Background(), "prompt", decode)
	require.NoError(t, err)
	assert.Equal(t, 3, env.Attempts)
	assert.Equal(t, "valid", env.Content)
}

func TestProcessRequestExhaustsAttempts(t *testing.T) {
	fake := &scriptedCompleter{
		replies: []string{"", "", ""},
		errs: []error{
			common.NewBackendTransientError("status 503", nil),
			common.NewBackendTransientError("status 503", nil),
			common.NewBackendTransientError("status 503", nil),
		},
	}
	svc := NewServiceWithCompleter(testConfig(), fake, nil)

	_, err := svc.ProcessRequest(context.Background(), "prompt", acceptAll)
	require.Error(t, err)
	assert.True(t, common.IsBackendTransientError(err))
	assert.Equal(t, 3, fake.calls)
}

func TestProcessRequestFatalErrorNotRetried(t *testing.T) {
	fake := &scriptedCompleter{
		replies: []string{""},
		errs:    []error{common.NewBackendFatalError("status 401", nil)},
	}
	svc := NewServiceWithCompleter(testConfig(), fake, nil)

	_, err := svc.ProcessRequest(context.Background(), "prompt", acceptAll)
	require.Error(t, err)
	assert.True(t, common.IsBackendFatalError(err))
	assert.Equal(t, 1, fake.calls)
}

func TestProcessRequestCancelledNotRetried(t *testing.T) {
	fake := &scriptedCompleter{
		replies: []string{""},
		errs:    []error{common.NewBackendTransientError("timeout", nil)},
	}
	svc := NewServiceWithCompleter(testConfig(), fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessRequest(ctx, "prompt", acceptAll)
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestProcessRequestCachesSuccessfulReplies(t *testing.T) {
	cfg := testConfig()
	cfg.AI.EnableCache = true
	store, err := cache.New(cfg)
	require.NoError(t, err)
	defer store.Close()

	fake := &scriptedCompleter{replies: []string{"ok"}, errs: []error{nil}}
	svc := NewServiceWithCompleter(cfg, fake, store)

	first, err := svc.ProcessRequest(context.Background(), "prompt", acceptAll)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.ProcessRequest(context.Background(), "prompt", acceptAll)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, 0, second.Attempts)
	assert.Equal(t, 1, fake.calls)
}

func TestBackoffDelayGrowsWithJitter(t *testing.T) {
	cfg := testConfig()
	cfg.AI.BackoffBase = 100 * time.Millisecond
	svc := NewServiceWithCompleter(cfg, &scriptedCompleter{replies: []string{""}, errs: []error{nil}}, nil)

	for attempt := 1; attempt <= 3; attempt++ {
		expected := float64(cfg.AI.BackoffBase)
		for i := 1; i < attempt; i++ {
			expected *= cfg.AI.BackoffFactor
		}
		for trial := 0; trial < 20; trial++ {
			delay := svc.backoffDelay(attempt)
			assert.GreaterOrEqual(t, float64(delay), expected*0.75)
			assert.LessOrEqual(t, float64(delay), expected*1.25)
		}
	}
}
