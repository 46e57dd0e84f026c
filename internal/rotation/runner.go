package rotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoCredentials indicates the pool holds no usable credentials.
var ErrNoCredentials = errors.New("no credentials configured")

// Action performs one upstream call with the given credential and returns
// the resulting text.
type Action func(ctx context.Context, key string) (string, error)

// Runner executes actions against the credential pool, rotating to the next
// credential on failure.
type Runner struct {
	rotator *Rotator
	logger  *slog.Logger
}

// NewRunner builds a Runner over the given rotator.
func NewRunner(rotator *Rotator, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{rotator: rotator, logger: log}
}

// Execute attempts fn up to pool-size+1 times, acquiring a fresh credential
// for each attempt. The first success wins; each failure rotates the cursor
// past the failing credential. When every attempt fails, the last observed
// error is wrapped and returned. This bounds retries to one full lap of the
// pool plus one, tolerating a single transient failure per credential.
func (r *Runner) Execute(ctx context.Context, fn Action) (string, error) {
	attempts := r.rotator.Size() + 1
	if attempts < 2 {
		attempts = 2
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		key, ok := r.rotator.Acquire()
		if !ok {
			return "", ErrNoCredentials
		}
		result, err := fn(ctx, key)
		if err == nil {
			r.rotator.ReportSuccess(key)
			return result, nil
		}
		lastErr = err
		r.logger.Warn("upstream call failed, rotating credential",
			slog.String("key_prefix", keyPrefix(key)),
			slog.Int("attempt", i+1),
			slog.Any("error", err))
		r.rotator.ReportFailure(key)
	}
	return "", fmt.Errorf("all credentials exhausted: %w", lastErr)
}

// keyPrefix returns the first few characters of a credential for log lines,
// never the whole key.
func keyPrefix(key string) string {
	if len(key) > 4 {
		return key[:4]
	}
	return key
}
