package ratelimiter

import (
	"testing"
	"time"
)

// TestRateLimiter_UnderLimit は上限未満の呼び出しが待機しないことを検証します。
func TestRateLimiter_UnderLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)

	start := time.Now()
	for i := 0; i < 3; i++ {
		rl.WaitIfNeeded()
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("calls under the limit must not sleep, took %v", elapsed)
	}
}

// TestRateLimiter_OverLimit は上限超過時にウィンドウ末尾まで待機することを検証します。
func TestRateLimiter_OverLimit(t *testing.T) {
	t.Parallel()

	interval := 200 * time.Millisecond
	rl := NewRateLimiter(2, interval)

	rl.WaitIfNeeded()
	rl.WaitIfNeeded()

	start := time.Now()
	rl.WaitIfNeeded() // 3回目はウィンドウ明けまで待つ
	if elapsed := time.Since(start); elapsed < interval/2 {
		t.Errorf("expected sleep of roughly %v, got %v", interval, elapsed)
	}
}
