package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/valpere/locflow/internal/platform"
)

// RetryPolicy is a bounded exponential backoff: MaxAttempts tries in total,
// delays doubling from InitialDelay up to MaxDelay. Sleep is injectable so
// tests run without wall-clock waits.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Sleep        func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy mirrors the platform's tolerances: three attempts,
// 2s/4s pauses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 2 * time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 60 * time.Second
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

// Do runs op until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts, or ctx is done. The last error is returned on exhaustion.
// attempts reports how many times op actually ran.
func (p RetryPolicy) Do(ctx context.Context, retryable func(error) bool, op func() error) (attempts int, err error) {
	p = p.normalized()

	delay := p.InitialDelay
	for attempts = 1; ; attempts++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err == nil {
				err = ctxErr
			}
			return attempts - 1, err
		}

		err = op()
		if err == nil || !retryable(err) || attempts >= p.MaxAttempts {
			return attempts, err
		}

		wait := delay
		// A throttled platform may name its own pause; honor it when longer.
		var rl *platform.RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}

		if sleepErr := p.Sleep(ctx, wait); sleepErr != nil {
			return attempts, err
		}

		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}

// sleepContext pauses for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
