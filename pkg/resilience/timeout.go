package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/errors"
)

// WithTimeout runs fn under a deadline. When the deadline fires first the
// result is apperrors.ErrTimeout; fn keeps running on its derived context
// and its result is discarded. A non-positive timeout runs fn inline.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(timeoutCtx)
		done <- result{val: v, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err == nil || timeoutCtx.Err() == nil {
			return r.val, r.err
		}
	case <-timeoutCtx.Done():
	}
	if ctx.Err() != nil {
		return zero, fmt.Errorf("%s: %w", name, ctx.Err())
	}
	return zero, fmt.Errorf("%s exceeded %v: %w", name, timeout, apperrors.ErrTimeout)
}
