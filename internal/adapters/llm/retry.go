package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/PabloGalante/productibot/internal/domain"
	"github.com/PabloGalante/productibot/internal/observability"
)

// Retrying wraps a Generator with bounded exponential backoff.
// The caller still receives a *domain.ProviderError once attempts run out.
type Retrying struct {
	next        domain.Generator
	maxAttempts int

	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewRetrying returns next unchanged when maxAttempts <= 1.
func NewRetrying(next domain.Generator, maxAttempts int) domain.Generator {
	if maxAttempts <= 1 {
		return next
	}
	return &Retrying{
		next:            next,
		maxAttempts:     maxAttempts,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     8 * time.Second,
	}
}

// WithIntervals overrides the backoff timing.
func (r *Retrying) WithIntervals(initial, max time.Duration) *Retrying {
	r.initialInterval = initial
	r.maxInterval = max
	return r
}

func (r *Retrying) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	log := observability.LoggerFromContext(ctx)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.initialInterval
	eb.MaxInterval = r.maxInterval
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.maxAttempts-1)), ctx)

	var (
		text    string
		attempt int
	)
	op := func() error {
		attempt++
		out, err := r.next.Generate(ctx, prompt, cfg)
		if err == nil {
			text = out
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		log.Warn("generation attempt failed", "attempt", attempt, "max_attempts", r.maxAttempts, "error", err)
		return err
	}

	if err := backoff.Retry(op, policy); err != nil {
		return "", domain.NewProviderError("retry", err)
	}
	return text, nil
}
