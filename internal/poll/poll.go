// Package poll implements a bounded blocking wait on asynchronous extraction
// jobs. The wait is a small state machine: Submitted -> Polling -> one of
// {Succeeded, Failed, TimedOut}. Exceeding the wait budget is reported as its
// own state so callers can tell "job failed" from "we stopped waiting".
package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/velora-health/docenrich/internal/common"
)

// State is the poller's terminal (or in-flight) state for one job.
type State string

const (
	StateSubmitted State = "SUBMITTED"
	StatePolling   State = "POLLING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateTimedOut  State = "TIMED_OUT"
)

// Verdict is the check function's reading of one status response.
type Verdict int

const (
	VerdictPending Verdict = iota
	VerdictSucceeded
	VerdictFailed
)

// CheckFunc fetches the job's current status payload and classifies it.
type CheckFunc[T any] func(ctx context.Context) (T, Verdict, error)

// Config bounds the wait. MaxWait of zero falls back to a 10 minute budget so
// a misconfigured environment can never block an invocation forever.
type Config struct {
	Interval time.Duration
	MaxWait  time.Duration
}

var errStillRunning = errors.New("job still in progress")

// Wait blocks until check reports a terminal verdict, the wait budget runs
// out, or ctx is cancelled. It returns the last payload seen together with the
// terminal state.
func Wait[T any](ctx context.Context, cfg Config, logger *slog.Logger, check CheckFunc[T]) (T, State, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 10 * time.Minute
	}

	logger.Debug("awaiting async job", "state", StateSubmitted, "max_wait", cfg.MaxWait)

	var last T
	attempts := 0

	op := func() error {
		attempts++
		payload, verdict, err := check(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = payload
		switch verdict {
		case VerdictSucceeded:
			return nil
		case VerdictFailed:
			return backoff.Permanent(common.ErrJobFailed)
		default:
			logger.Debug("job still in progress", "state", StatePolling, "attempts", attempts)
			return errStillRunning
		}
	}

	b := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(cfg.Interval),
		backoff.WithMaxInterval(5*cfg.Interval),
		backoff.WithMaxElapsedTime(cfg.MaxWait),
	), ctx)

	err := backoff.Retry(op, b)
	switch {
	case err == nil:
		return last, StateSucceeded, nil
	case errors.Is(err, errStillRunning):
		logger.Warn("poll wait budget exceeded", "max_wait", cfg.MaxWait, "attempts", attempts)
		return last, StateTimedOut, common.ErrWaitBudgetExceeded
	default:
		return last, StateFailed, err
	}
}
