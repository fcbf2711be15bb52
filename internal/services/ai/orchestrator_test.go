// File: internal/services/ai/orchestrator_test.go
package ai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	available    bool
	respondFn    func(ctx context.Context, instructions, prompt string) (string, error)
	respondCalls int64
}

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return f.available }

func (f *fakeProvider) Respond(ctx context.Context, instructions, prompt string) (string, error) {
	atomic.AddInt64(&f.respondCalls, 1)
	if f.respondFn != nil {
		return f.respondFn(ctx, instructions, prompt)
	}
	return "ok", nil
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = 2 * time.Second
	return cfg
}

func newTestOrchestrator(t *testing.T, provider ModelProvider) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(testConfig(), provider, &noopLogger{})
	require.NoError(t, err)
	return o
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

func TestCompleteReturnsReplyVerbatim(t *testing.T) {
	provider := &fakeProvider{available: true, respondFn: func(ctx context.Context, instructions, prompt string) (string, error) {
		assert.Equal(t, DefaultInstructions, instructions)
		assert.Equal(t, "hello", prompt)
		return "  a reply, untouched  ", nil
	}}

	o := newTestOrchestrator(t, provider)
	reply, err := o.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "  a reply, untouched  ", reply)
}

func TestCompleteFailsWhenModelUnavailable(t *testing.T) {
	provider := &fakeProvider{available: false}

	o := newTestOrchestrator(t, provider)
	_, err := o.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))

	// No session is constructed when the capability is not ready.
	assert.EqualValues(t, 0, atomic.LoadInt64(&provider.respondCalls))
}

func TestCompleteWrapsProviderFailure(t *testing.T) {
	provider := &fakeProvider{available: true, respondFn: func(ctx context.Context, instructions, prompt string) (string, error) {
		return "", errors.New("backend exploded")
	}}

	o := newTestOrchestrator(t, provider)
	_, err := o.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, IsCompletionFailed(err))
	assert.False(t, IsUnavailable(err))
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	provider := &fakeProvider{available: true}

	o := newTestOrchestrator(t, provider)
	_, err := o.Complete(context.Background(), "   ")
	require.Error(t, err)
	assert.EqualValues(t, 0, atomic.LoadInt64(&provider.respondCalls))
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	var calls int64
	provider := &fakeProvider{available: true, respondFn: func(ctx context.Context, instructions, prompt string) (string, error) {
		if atomic.AddInt64(&calls, 1) < 3 {
			return "", errors.New("transient")
		}
		return "third time lucky", nil
	}}

	cfg := testConfig()
	cfg.MaxRetries = 3
	o, err := NewOrchestrator(cfg, provider, &noopLogger{})
	require.NoError(t, err)

	reply, err := o.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", reply)
	assert.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestCompleteHonorsTimeout(t *testing.T) {
	provider := &fakeProvider{available: true, respondFn: func(ctx context.Context, instructions, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	o, err := NewOrchestrator(cfg, provider, &noopLogger{})
	require.NoError(t, err)

	start := time.Now()
	_, err = o.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, IsCompletionFailed(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

// Two in-flight calls must make progress concurrently: neither may block
// on the other's session.
func TestCompleteAllowsConcurrentCalls(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})

	provider := &fakeProvider{available: true, respondFn: func(ctx context.Context, instructions, prompt string) (string, error) {
		entered <- struct{}{}
		select {
		case <-release:
			return "done: " + prompt, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}

	o := newTestOrchestrator(t, provider)

	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)
	for i, prompt := range []string{"one", "two"} {
		wg.Add(1)
		go func(i int, prompt string) {
			defer wg.Done()
			results[i], errs[i] = o.Complete(context.Background(), prompt)
		}(i, prompt)
	}

	// Both calls must be inside the provider before either is released.
	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case <-time.After(time.Second):
			t.Fatal("calls did not run concurrently")
		}
	}
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.ElementsMatch(t, []string{"done: one", "done: two"}, results)
}
