package shared

import (
	"context"
	"errors"
	"time"
)

// WithStorageDeadline bounds a unit of store work. A non-positive timeout
// only adds cancellation.
func WithStorageDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// TranslateStorageError maps an expired deadline to ErrStorageTimeout and
// returns every other error unchanged.
func TranslateStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrStorageTimeout) {
		return ErrStorageTimeout
	}
	return err
}
