package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"csmedia/internal/logging"
	"csmedia/internal/mediadb"
)

const (
	defaultLockTimeout = 30 * time.Second
	lockRetryDelay     = 100 * time.Millisecond
)

// ErrLocked reports that another process held a cache lock past the timeout.
var ErrLocked = errors.New("media cache is locked by another process")

// Plan lists the caches to refresh and how.
type Plan struct {
	Stores []mediadb.Library
	// Force rebuilds caches that are already up to date.
	Force       bool
	Workers     int
	LockTimeout time.Duration
	Reporter    Reporter
	Logger      *slog.Logger
}

// Status is what happened to one cache.
type Status string

const (
	StatusUpdated  Status = "updated"
	StatusUpToDate Status = "up_to_date"
	StatusFailed   Status = "failed"
)

// Outcome describes the result for one cache.
type Outcome struct {
	Kind     mediadb.Kind  `json:"kind"`
	Status   Status        `json:"status"`
	Version  string        `json:"version,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Result summarizes a run. Outcomes follow the order of Plan.Stores.
type Result struct {
	RunID    string    `json:"run_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Failed lists the kinds whose rebuild failed.
func (r Result) Failed() []mediadb.Kind {
	var failed []mediadb.Kind
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusFailed {
			failed = append(failed, outcome.Kind)
		}
	}
	return failed
}

// Run refreshes every stale cache in plan, or every cache when forced. All
// workers run to completion; the returned error joins each failure.
func Run(ctx context.Context, plan Plan) (Result, error) {
	result := Result{RunID: uuid.NewString(), Outcomes: make([]Outcome, len(plan.Stores))}
	ctx = logging.ContextWithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(plan.Logger, "updater"))

	reporter := plan.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	workers := plan.Workers
	if workers < 1 {
		workers = 1
	}
	lockTimeout := plan.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}

	started := time.Now()
	logger.Info("media cache update run started",
		logging.Int("stores", len(plan.Stores)),
		logging.Int("workers", workers),
		logging.Bool("force", plan.Force),
	)

	var group errgroup.Group
	group.SetLimit(workers)
	for i, store := range plan.Stores {
		group.Go(func() error {
			w := worker{
				store:       store,
				force:       plan.Force,
				lockTimeout: lockTimeout,
				reporter:    reporter,
				logger:      logger.With(logging.String(logging.FieldKind, string(store.Kind()))),
			}
			result.Outcomes[i] = w.run(ctx)
			return nil
		})
	}
	_ = group.Wait()

	var errs []error
	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			errs = append(errs, fmt.Errorf("update %s: %w", outcome.Kind, outcome.Err))
		}
	}
	logger.Info("media cache update run finished",
		logging.Int("failed", len(errs)),
		logging.Duration("duration", time.Since(started)),
	)
	return result, errors.Join(errs...)
}

type worker struct {
	store       mediadb.Library
	force       bool
	lockTimeout time.Duration
	reporter    Reporter
	logger      *slog.Logger
}

func (w worker) run(ctx context.Context) Outcome {
	started := time.Now()
	outcome := Outcome{Kind: w.store.Kind()}
	finish := func(status Status, err error) Outcome {
		outcome.Status = status
		outcome.Duration = time.Since(started)
		if err != nil {
			outcome.Err = err
			outcome.Error = err.Error()
		}
		if version, verr := w.store.Version(ctx); verr == nil {
			outcome.Version = version.String()
		}
		return outcome
	}

	if !w.force {
		upToDate, err := w.store.UpToDate(ctx)
		if err != nil {
			return finish(StatusFailed, err)
		}
		if upToDate {
			w.logger.Debug("media cache already up to date")
			return finish(StatusUpToDate, nil)
		}
	}

	unlock, err := acquireLock(ctx, w.store, w.lockTimeout, w.logger)
	if err != nil {
		return finish(StatusFailed, err)
	}
	defer unlock()

	// Another process may have rebuilt the cache while we waited.
	if !w.force {
		if upToDate, err := w.store.UpToDate(ctx); err == nil && upToDate {
			w.logger.Info("media cache rebuilt by another process")
			return finish(StatusUpToDate, nil)
		}
	}

	w.reporter.Start(outcome.Kind, defsSize(w.store.DefsPath()))
	err = w.store.Update(ctx, func(position, size int64) {
		w.reporter.Progress(outcome.Kind, position, size)
	})
	w.reporter.Done(outcome.Kind, err)
	if err != nil {
		return finish(StatusFailed, err)
	}
	return finish(StatusUpdated, nil)
}

// Reset clears one cache while holding the same lock as Run, so a reset
// never interleaves with another process's rebuild.
func Reset(ctx context.Context, store mediadb.Library, lockTimeout time.Duration, logger *slog.Logger) error {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	logger = logging.NewComponentLogger(logger, "updater").With(logging.String(logging.FieldKind, string(store.Kind())))
	unlock, err := acquireLock(ctx, store, lockTimeout, logger)
	if err != nil {
		return err
	}
	defer unlock()

	if err := store.Reset(ctx); err != nil {
		return err
	}
	logger.Info("media cache reset")
	return nil
}

// acquireLock takes <db>.lock, retrying until lockTimeout, and returns the
// release func.
func acquireLock(ctx context.Context, store mediadb.Library, lockTimeout time.Duration, logger *slog.Logger) (func(), error) {
	lock := flock.New(store.Path() + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if !ok {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire lock %s: %w", lock.Path(), err)
		}
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release media cache lock", logging.Error(err))
		}
	}, nil
}

func defsSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
