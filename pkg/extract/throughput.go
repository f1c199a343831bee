package extract

import "time"

// ThroughputGuard tracks completed-job throughput and projects whether the
// pending backlog will clear within the retention horizon (spec.md §4.6):
// if projected lag exceeds LagWarnRatio of the horizon, the guard recommends
// raising worker parallelism up to Config.MaxParallelism, never beyond it.
type ThroughputGuard struct {
	cfg *Config

	windowStart time.Time
	completed   int
}

// NewThroughputGuard starts a fresh measurement window at now.
func NewThroughputGuard(cfg *Config, now time.Time) *ThroughputGuard {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ThroughputGuard{cfg: cfg, windowStart: now}
}

// RecordCompletion registers one finished job in the current window.
func (g *ThroughputGuard) RecordCompletion() {
	g.completed++
}

// Reset starts a new measurement window, discarding the prior count.
func (g *ThroughputGuard) Reset(now time.Time) {
	g.windowStart = now
	g.completed = 0
}

// ThroughputPerSecond returns completed jobs per second since windowStart, as
// measured at now. Returns 0 if the window has not yet elapsed any time.
func (g *ThroughputGuard) ThroughputPerSecond(now time.Time) float64 {
	elapsed := now.Sub(g.windowStart).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(g.completed) / elapsed
}

// ProjectedLagHours estimates how many hours it would take to drain pending
// jobs at the current throughput. A throughput of 0 is treated as an
// infinitesimally small rate so the projection stays finite but very large,
// rather than dividing by zero.
func (g *ThroughputGuard) ProjectedLagHours(now time.Time, pending int) float64 {
	const epsilon = 1e-6
	rate := g.ThroughputPerSecond(now)
	if rate < epsilon {
		rate = epsilon
	}
	return float64(pending) / rate / 3600
}

// RecommendParallelism returns the worker count the pool should run at given
// the current backlog: current unchanged if projected lag is within
// LagWarnRatio of the retention horizon, otherwise current+1 bounded by
// MaxParallelism.
func (g *ThroughputGuard) RecommendParallelism(now time.Time, pending, current int) int {
	warnThreshold := g.cfg.RetentionHorizonHours * g.cfg.LagWarnRatio
	if g.ProjectedLagHours(now, pending) <= warnThreshold {
		return current
	}
	if current >= g.cfg.MaxParallelism {
		return g.cfg.MaxParallelism
	}
	return current + 1
}
