package httpclient

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDelayDoublesPerAttempt(t *testing.T) {
	p := RetryPolicy{BaseDelay: 2 * time.Second, Multiplier: 2, MaxDelay: 16 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 16 * time.Second}, // capped
	}
	for _, tc := range cases {
		if got := p.Delay(tc.attempt); got != tc.want {
			t.Errorf("Delay(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	var slept []time.Duration
	p := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2,
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &FetchError{URL: "u", StatusCode: 503, Retryable: true}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	// Backoff schedule: base delay, then base*2.
	if len(slept) != 2 || slept[0] != 2*time.Second || slept[1] != 4*time.Second {
		t.Fatalf("slept = %v, want [2s 4s]", slept)
	}
}

func TestDoStopsOnTerminalError(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(_ context.Context, _ time.Duration) error {
			t.Fatalf("should not sleep on terminal error")
			return nil
		},
	}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return &FetchError{URL: "u", StatusCode: 404, Retryable: false}
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		Sleep:       func(_ context.Context, _ time.Duration) error { return nil },
	}

	calls := 0
	boom := &FetchError{URL: "u", StatusCode: 500, Retryable: true}
	err := p.Do(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want last attempt error", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
	err := p.Do(ctx, func() error {
		t.Fatalf("fn should not run on cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryableDefaultsTrueForPlainErrors(t *testing.T) {
	if !IsRetryable(errors.New("transport broke")) {
		t.Fatalf("plain errors should be retryable")
	}
	if IsRetryable(&FetchError{Retryable: false}) {
		t.Fatalf("terminal FetchError should not be retryable")
	}
}
