package limiter

import (
	"context"
	"testing"
	"time"
)

func TestNew_Unlimited(t *testing.T) {
	t.Parallel()
	l := New(0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 1000; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unlimited Wait: %v", err)
		}
	}
}

func TestNew_Throttles(t *testing.T) {
	t.Parallel()
	l := New(1, 1)
	ctx := context.Background()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(short); err == nil {
		t.Fatalf("second Wait within the same second must not pass before deadline")
	}
}

func TestNew_BurstFloor(t *testing.T) {
	t.Parallel()
	l := New(5, 0)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("burst must be at least 1: %v", err)
	}
}
