package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for a run.
const (
	PhaseSample   = "sample"
	PhaseSolve    = "solve"
	PhaseAccuracy = "accuracy"
	PhaseExport   = "export"
)

// PhaseTimer records wall time per phase of a single run. Phases are
// sequential: starting one ends the previous.
type PhaseTimer struct {
	start      time.Time
	phaseStart time.Time
	lastPhase  string
	order      []string
	phases     map[string]time.Duration
	total      time.Duration
}

// NewPhaseTimer creates a timer and starts the clock.
func NewPhaseTimer() *PhaseTimer {
	now := time.Now()
	return &PhaseTimer{
		start:  now,
		phases: make(map[string]time.Duration),
	}
}

// StartPhase begins timing a specific phase.
func (p *PhaseTimer) StartPhase(phase string) {
	now := time.Now()
	p.endPhase(now)
	if _, seen := p.phases[phase]; !seen {
		p.order = append(p.order, phase)
		p.phases[phase] = 0
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// Stop ends the current phase and the run.
func (p *PhaseTimer) Stop() {
	now := time.Now()
	p.endPhase(now)
	p.lastPhase = ""
	p.total = now.Sub(p.start)
}

func (p *PhaseTimer) endPhase(now time.Time) {
	if p.lastPhase != "" {
		p.phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
}

// PhaseRecord is one row of phases.csv.
type PhaseRecord struct {
	Phase  string  `csv:"phase"`
	Millis float64 `csv:"millis"`
	Pct    float64 `csv:"pct"`
}

// Records returns one record per phase in the order phases were first
// started. Call Stop first.
func (p *PhaseTimer) Records() []PhaseRecord {
	out := make([]PhaseRecord, 0, len(p.order))
	for _, name := range p.order {
		d := p.phases[name]
		r := PhaseRecord{Phase: name, Millis: float64(d) / float64(time.Millisecond)}
		if p.total > 0 {
			r.Pct = float64(d) / float64(p.total) * 100
		}
		out = append(out, r)
	}
	return out
}

// Total returns the run's wall time. Valid after Stop.
func (p *PhaseTimer) Total() time.Duration {
	return p.total
}

// LogStats logs phase timings.
func (p *PhaseTimer) LogStats(log *slog.Logger) {
	attrs := []any{"total_ms", p.total.Milliseconds()}
	for _, r := range p.Records() {
		attrs = append(attrs, r.Phase+"_ms", r.Millis)
	}
	log.Info("perf", attrs...)
}
