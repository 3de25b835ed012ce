package progress

import (
	"math"
	"sync/atomic"
)

// Gauge is the shared batch progress value, a percentage in [0, 100].
// Every in-flight download writes to the same gauge and the most recent
// write wins; no per-task value is kept. A download without a known total
// size marks the gauge indeterminate until the next percentage write.
type Gauge struct {
	bits          atomic.Uint64
	indeterminate atomic.Bool
}

// Set stores a percentage, clamped to [0, 100], and clears the
// indeterminate flag.
func (g *Gauge) Set(pct float64) {
	if pct < 0 || math.IsNaN(pct) {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	g.bits.Store(math.Float64bits(pct))
	g.indeterminate.Store(false)
}

// SetIndeterminate marks the gauge as having no meaningful percentage.
func (g *Gauge) SetIndeterminate() {
	g.indeterminate.Store(true)
}

// Reset returns the gauge to zero. Runs after every batch.
func (g *Gauge) Reset() {
	g.bits.Store(0)
	g.indeterminate.Store(false)
}

// Value returns the current percentage and whether it is meaningful
// (false while the gauge is indeterminate).
func (g *Gauge) Value() (float64, bool) {
	return math.Float64frombits(g.bits.Load()), !g.indeterminate.Load()
}
