package updater

import (
	"log/slog"
	"sync"

	"csmedia/internal/logging"
	"csmedia/internal/mediadb"
)

// Reporter receives progress for each cache being rebuilt. Calls for
// different kinds arrive from different goroutines.
type Reporter interface {
	Start(kind mediadb.Kind, total int64)
	Progress(kind mediadb.Kind, current, total int64)
	Done(kind mediadb.Kind, err error)
}

type nopReporter struct{}

func (nopReporter) Start(mediadb.Kind, int64) {}

func (nopReporter) Progress(mediadb.Kind, int64, int64) {}

func (nopReporter) Done(mediadb.Kind, error) {}

// LogReporter writes sampled progress lines, one every bucket percent per
// kind.
type LogReporter struct {
	logger   *slog.Logger
	bucket   float64
	mu       sync.Mutex
	samplers map[mediadb.Kind]*logging.ProgressSampler
}

// NewLogReporter returns a reporter logging every bucket percent.
func NewLogReporter(logger *slog.Logger, bucket float64) *LogReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogReporter{
		logger:   logger,
		bucket:   bucket,
		samplers: make(map[mediadb.Kind]*logging.ProgressSampler),
	}
}

func (r *LogReporter) Start(kind mediadb.Kind, total int64) {
	r.mu.Lock()
	r.samplers[kind] = logging.NewProgressSampler(r.bucket)
	r.mu.Unlock()
	r.logger.Info("rebuilding media cache",
		logging.String(logging.FieldKind, string(kind)),
		logging.Int64("defs_bytes", total),
	)
}

func (r *LogReporter) Progress(kind mediadb.Kind, current, total int64) {
	percent := logging.Percent(current, total)
	r.mu.Lock()
	sampler := r.samplers[kind]
	emit := sampler.ShouldLog(percent, "")
	r.mu.Unlock()
	if !emit {
		return
	}
	r.logger.Info("media cache progress",
		logging.String(logging.FieldKind, string(kind)),
		logging.Float64("percent", percent),
	)
}

func (r *LogReporter) Done(kind mediadb.Kind, err error) {
	r.mu.Lock()
	delete(r.samplers, kind)
	r.mu.Unlock()
	if err != nil {
		r.logger.Error("media cache rebuild failed",
			logging.String(logging.FieldKind, string(kind)),
			logging.Error(err),
		)
		return
	}
	r.logger.Info("media cache rebuilt", logging.String(logging.FieldKind, string(kind)))
}
