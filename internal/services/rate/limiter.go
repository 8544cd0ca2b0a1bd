package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// WindowStore is the redis-backed fixed-window counter the limiter
// builds on.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// window is one fixed counting window. A swipe is counted against
// every configured window; the longest remaining TTL among exhausted
// windows becomes the retry hint.
type window struct {
	label string
	span  time.Duration
	limit int64
}

// Limiter throttles swipes with two stacked windows: a short burst
// window that absorbs spam-clicking, and a minute window that caps
// sustained throughput. A window with limit 0 is disabled.
type Limiter struct {
	store   WindowStore
	windows []window
}

func NewLimiter(store WindowStore, perMinute, perBurst int) *Limiter {
	l := &Limiter{store: store}
	if perBurst > 0 {
		l.windows = append(l.windows, window{label: "burst", span: 10 * time.Second, limit: int64(perBurst)})
	}
	if perMinute > 0 {
		l.windows = append(l.windows, window{label: "minute", span: time.Minute, limit: int64(perMinute)})
	}
	return l
}

// AllowSwipe counts one swipe against every window. The swipe is
// denied when any window overflows; the returned retry hint is the
// longest wait among the overflowed windows, in whole seconds.
func (l *Limiter) AllowSwipe(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, w := range l.windows {
		count, ttl, err := l.store.IncrementWindow(ctx, l.key(w, userID), w.span)
		if err != nil {
			return 0, false, fmt.Errorf("count swipe in %s window: %w", w.label, err)
		}
		if count > w.limit {
			retryAfterSec = max(retryAfterSec, retryHint(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfterSwipe reports the current wait without consuming a slot,
// for surfacing cooldown state on reads.
func (l *Limiter) RetryAfterSwipe(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, w := range l.windows {
		count, ttl, err := l.store.WindowState(ctx, l.key(w, userID))
		if err != nil {
			return 0, fmt.Errorf("read %s window state: %w", w.label, err)
		}
		if count >= w.limit {
			retryAfterSec = max(retryAfterSec, retryHint(ttl))
		}
	}

	return retryAfterSec, nil
}

func (l *Limiter) key(w window, userID int64) string {
	return "swipes:" + w.label + ":" + strconv.FormatInt(userID, 10)
}

// retryHint rounds a TTL up to whole seconds, never below one: a
// Retry-After of zero would invite an immediate retry into the same
// window.
func retryHint(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 1
	}
	return int64((ttl + time.Second - 1) / time.Second)
}
