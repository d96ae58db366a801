package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	if policy.GroupSize != 3 {
		t.Errorf("GroupSize = %d, want 3", policy.GroupSize)
	}
	if policy.Cooldown != 500*time.Millisecond {
		t.Errorf("Cooldown = %v, want 500ms", policy.Cooldown)
	}
}

func TestPolicy_Partition(t *testing.T) {
	tests := []struct {
		name      string
		groupSize int
		n         int
		expected  [][2]int
	}{
		{
			name:      "seven keys in groups of three",
			groupSize: 3,
			n:         7,
			expected:  [][2]int{{0, 3}, {3, 6}, {6, 7}},
		},
		{
			name:      "exact multiple",
			groupSize: 3,
			n:         6,
			expected:  [][2]int{{0, 3}, {3, 6}},
		},
		{
			name:      "fewer keys than group size",
			groupSize: 5,
			n:         2,
			expected:  [][2]int{{0, 2}},
		},
		{
			name:      "zero keys",
			groupSize: 3,
			n:         0,
			expected:  nil,
		},
		{
			name:      "invalid group size falls back to default",
			groupSize: 0,
			n:         4,
			expected:  [][2]int{{0, 3}, {3, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := Policy{GroupSize: tt.groupSize}
			got := policy.Partition(tt.n)

			if len(got) != len(tt.expected) {
				t.Fatalf("got %d groups, want %d (%v)", len(got), len(tt.expected), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("group %d = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLimiter_NilPerformsNoWaiting(t *testing.T) {
	var limiter *Limiter

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("nil limiter waited %v, want ~0", elapsed)
	}
}

func TestLimiter_EnforcesRate(t *testing.T) {
	// 10 rps, burst 1: three requests need at least ~200ms.
	limiter := NewLimiter(10, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("three requests took %v, want >= 150ms", elapsed)
	}
}

func TestLimiter_ContextCancellation(t *testing.T) {
	limiter := NewLimiter(0.1, 1) // one request per 10s
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// First request consumes the burst token.
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	err := limiter.Wait(ctx)
	if err == nil {
		t.Fatal("Expected context error, got nil")
	}
}
