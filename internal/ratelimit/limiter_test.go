package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_New(t *testing.T) {
	limiter := New(10, time.Second)

	assert.NotNil(t, limiter)
}

func TestRateLimiter_WaitWithinBurst(t *testing.T) {
	limiter := New(5, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	for i := 0; i < 5; i++ {
		assert.NoError(t, limiter.Wait(ctx), "request %d should pass", i+1)
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	limiter := New(5, 100*time.Millisecond)

	for i := 0; i < 10; i++ {
		err := limiter.Wait(context.Background())
		assert.NoError(t, err)
	}
}

func TestRateLimiter_Wait_DeadlineTooShort(t *testing.T) {
	limiter := New(1, time.Minute)

	err := limiter.Wait(context.Background())
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = limiter.Wait(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimiter_Wait_Cancelled(t *testing.T) {
	limiter := New(1, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, limiter.Wait(ctx))
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := New(100, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- limiter.Wait(ctx) == nil
		}()
	}

	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}

	assert.Equal(t, 100, allowed, "only the burst should pass before the deadline")
}
