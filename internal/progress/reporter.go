package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer

	// UpdateInterval is how often to redraw the progress line.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter periodically redraws a single terminal line from a Gauge.
type Reporter struct {
	opts  Options
	gauge *Gauge

	label     atomic.Value
	startTime time.Time
	stopCh    chan struct{}

	mu      sync.Mutex
	stopped bool
}

// NewReporter creates a reporter that renders gauge.
func NewReporter(gauge *Gauge, opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	r := &Reporter{
		opts:   opts,
		gauge:  gauge,
		stopCh: make(chan struct{}),
	}
	r.label.Store("")
	return r
}

// SetLabel sets the name shown next to the percentage, typically the
// file currently transferring. Last writer wins, like the gauge itself.
func (r *Reporter) SetLabel(label string) {
	r.label.Store(label)
}

// Start begins redrawing the progress line.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	go r.updateLoop()
}

// Stop halts redrawing and prints the elapsed time. Safe to call more
// than once.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printLine()
			fmt.Fprintf(r.opts.Output, "\n[xossdb] Total time: %s\n", formatDuration(time.Since(r.startTime)))
			return
		case <-ticker.C:
			r.printLine()
		}
	}
}

func (r *Reporter) printLine() {
	label, _ := r.label.Load().(string)
	if label != "" {
		label = " | " + label
	}

	pct, known := r.gauge.Value()
	if !known {
		fmt.Fprintf(r.opts.Output, "\r[xossdb] Progress: ---%%%s    ", label)
		return
	}
	fmt.Fprintf(r.opts.Output, "\r[xossdb] Progress: %.1f%%%s    ", pct, label)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}
