package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		MaxBurst:         3,
	})

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Fatal("request beyond burst should be denied")
	}

	// A different source has its own bucket
	if !rl.Allow("client-b") {
		t.Fatal("independent source should not be affected")
	}
}

func TestRefillTokens(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 10, // 0.01 tokens per millisecond
		MaxBurst:         5,
	}).(*RateLimiter)

	tests := []struct {
		name      string
		state     bucketState
		elapsedMs int64
		want      int
	}{
		{"no time passed", bucketState{tokens: 2, lastFill: 0}, 0, 2},
		{"partial refill", bucketState{tokens: 0, lastFill: 0}, 250, 2},
		{"caps at burst", bucketState{tokens: 4, lastFill: 0}, 10_000, 5},
		{"fractional tokens floor", bucketState{tokens: 0, lastFill: 0}, 150, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := rl.refillTokens(tc.state, tc.state.lastFill+tc.elapsedMs)
			if got.tokens != tc.want {
				t.Fatalf("expected %d tokens, got %d", tc.want, got.tokens)
			}
		})
	}
}

func TestGetSourceKeyPrefersHeader(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		SourceHeaderKey:  "X-Forwarded-For",
	})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1")
	if got := rl.GetSourceKey(r); got != "10.0.0.1" {
		t.Fatalf("expected header value, got %q", got)
	}

	r.Header.Del("X-Forwarded-For")
	if got := rl.GetSourceKey(r); got != r.RemoteAddr {
		t.Fatalf("expected remote addr fallback, got %q", got)
	}
}

func TestInMemoryCacheExpiration(t *testing.T) {
	cache := NewInMemory()
	defer cache.Close()

	if err := cache.SetWithExpiration("k", 7, 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := cache.Get("k")
	if err != nil || got != 7 {
		t.Fatalf("expected 7 before expiry, got %d (%v)", got, err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get("k"); err != ErrCacheMiss {
		t.Fatalf("expected cache miss after expiry, got %v", err)
	}
}

func TestInMemoryCacheNoExpiration(t *testing.T) {
	cache := NewInMemory()
	defer cache.Close()

	if err := cache.Set("k", 1); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got, err := cache.Get("k"); err != nil || got != 1 {
		t.Fatalf("expected value without expiry, got %d (%v)", got, err)
	}
}
