package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"csmedia/internal/config"
	"csmedia/internal/logging"
	"csmedia/internal/mediadb"
	"csmedia/internal/updater"
)

// barReporter draws one progress bar summing the defs bytes consumed across
// every cache being rebuilt.
type barReporter struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	total    int64
	position map[mediadb.Kind]int64
	active   map[mediadb.Kind]bool
}

func newBarReporter(w io.Writer) *barReporter {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("updating"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &barReporter{
		bar:      bar,
		position: make(map[mediadb.Kind]int64),
		active:   make(map[mediadb.Kind]bool),
	}
}

func (r *barReporter) Start(kind mediadb.Kind, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if total > 0 {
		r.total += total
		r.bar.ChangeMax64(r.total)
	}
	r.active[kind] = true
	r.describe()
}

func (r *barReporter) Progress(kind mediadb.Kind, current, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position[kind] = current
	var sum int64
	for _, position := range r.position {
		sum += position
	}
	_ = r.bar.Set64(sum)
}

func (r *barReporter) Done(kind mediadb.Kind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, kind)
	if len(r.active) == 0 {
		_ = r.bar.Finish()
		return
	}
	r.describe()
}

func (r *barReporter) describe() {
	kinds := make([]string, 0, len(r.active))
	for kind := range r.active {
		kinds = append(kinds, string(kind))
	}
	slices.Sort(kinds)
	r.bar.Describe(fmt.Sprintf("updating %s", strings.Join(kinds, ", ")))
}

// newReporter picks a progress bar for interactive runs and sampled log
// lines otherwise.
func newReporter(ctx *commandContext, cfg *config.Config, stderr io.Writer) updater.Reporter {
	if cfg.Update.ProgressBar && !ctx.jsonOutput() {
		if file, ok := stderr.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
			return newBarReporter(stderr)
		}
	}
	return updater.NewLogReporter(logging.NewComponentLogger(ctx.loggerValue(), "update"), 10)
}
