package knngraph

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Progress is the collaborator through which the builder reports completed
// work units and polls for a cooperative abort. The total unit count for a
// build is N·trees + N + N·maxIter.
//
// Implementations must be safe for concurrent use; Increment is called from
// every worker.
type Progress interface {
	// Increment records n completed work units.
	Increment(n int)

	// Aborted reports whether the build should stop. Workers poll it and
	// exit promptly when it returns true; the build then yields an empty
	// graph.
	Aborted() bool
}

// NopProgress ignores all reports and never aborts.
type NopProgress struct{}

func (NopProgress) Increment(int) {}
func (NopProgress) Aborted() bool { return false }

// CountingProgress counts completed work units and carries an abort flag.
// The zero value is ready to use.
type CountingProgress struct {
	count   atomic.Int64
	aborted atomic.Bool
}

// Increment records n completed work units.
func (p *CountingProgress) Increment(n int) {
	p.count.Add(int64(n))
}

// Count returns the number of work units recorded so far.
func (p *CountingProgress) Count() int64 {
	return p.count.Load()
}

// Abort signals the builder to stop.
func (p *CountingProgress) Abort() {
	p.aborted.Store(true)
}

// Aborted reports whether Abort has been called.
func (p *CountingProgress) Aborted() bool {
	return p.aborted.Load()
}

// loggingProgress decorates a Progress with throttled completion logging.
// Worker increments arrive far faster than anyone wants log lines, so
// reports are rate-limited rather than batched.
type loggingProgress struct {
	inner   Progress
	logger  *Logger
	total   int64
	count   atomic.Int64
	limiter *rate.Limiter
}

func newLoggingProgress(inner Progress, logger *Logger, total int64) *loggingProgress {
	return &loggingProgress{
		inner:   inner,
		logger:  logger,
		total:   total,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (p *loggingProgress) Increment(n int) {
	p.inner.Increment(n)
	done := p.count.Add(int64(n))
	if p.limiter.Allow() {
		p.logger.Info("build progress", "done", done, "total", p.total)
	}
}

func (p *loggingProgress) Aborted() bool {
	return p.inner.Aborted()
}
