package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports progress of a long pass on a single terminal line.
type ProgressTracker struct {
	writer         io.Writer
	unit           string
	total          int
	reportInterval int

	mu           sync.Mutex
	current      int
	initial      int // Already done before Start, excluded from the rate
	lastReported int
	startTime    time.Time
	started      bool
}

// NewProgressTracker creates a tracker that writes to writer every
// reportInterval items. unit names the items, for example "points".
func NewProgressTracker(writer io.Writer, total, reportInterval int, unit string) *ProgressTracker {
	if reportInterval <= 0 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		unit:           unit,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins tracking with done items already processed by an earlier run.
func (p *ProgressTracker) Start(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = min(done, p.total)
	p.initial = p.current
	p.lastReported = p.current
}

// Update sets the number of processed items, capped at the total.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current = min(current, p.total)
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish prints the final line. Items not seen by Update are not counted.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
}

// Processed returns the items processed during this run.
func (p *ProgressTracker) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current - p.initial
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := 0.0
	if secs := time.Since(p.startTime).Seconds(); secs > 0 {
		rate = float64(p.current-p.initial) / secs
	}

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d %s (%.1f%%) - %.1f %s/s",
		p.current, p.total, p.unit, percentage, rate, p.unit)
}
