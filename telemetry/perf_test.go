package telemetry

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestPhaseTimer_BasicTiming(t *testing.T) {
	pt := NewPhaseTimer()
	pt.StartPhase(PhaseSample)
	time.Sleep(100 * time.Microsecond)
	pt.StartPhase(PhaseSolve)
	time.Sleep(200 * time.Microsecond)
	pt.Stop()

	records := pt.Records()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Phase != PhaseSample || records[1].Phase != PhaseSolve {
		t.Errorf("phases out of order: %+v", records)
	}
	for _, r := range records {
		if r.Millis <= 0 {
			t.Errorf("phase %s has no duration", r.Phase)
		}
	}
	if pt.Total() <= 0 {
		t.Error("expected positive total")
	}
}

func TestPhaseTimer_RepeatedPhaseAccumulates(t *testing.T) {
	pt := NewPhaseTimer()
	pt.StartPhase(PhaseSolve)
	time.Sleep(100 * time.Microsecond)
	pt.StartPhase(PhaseExport)
	pt.StartPhase(PhaseSolve)
	time.Sleep(100 * time.Microsecond)
	pt.Stop()

	records := pt.Records()
	if len(records) != 2 {
		t.Fatalf("got %d records, want one per distinct phase", len(records))
	}
	if records[0].Millis < 0.2 {
		t.Errorf("solve = %vms, want both intervals summed", records[0].Millis)
	}
}

func TestPhaseTimer_Percentages(t *testing.T) {
	pt := NewPhaseTimer()
	pt.StartPhase(PhaseSample)
	time.Sleep(time.Millisecond)
	pt.StartPhase(PhaseSolve)
	time.Sleep(time.Millisecond)
	pt.Stop()

	var total float64
	for _, r := range pt.Records() {
		if r.Pct <= 0 || r.Pct > 100 {
			t.Errorf("phase %s pct = %v", r.Phase, r.Pct)
		}
		total += r.Pct
	}
	if total > 100.0001 {
		t.Errorf("percentages sum to %v", total)
	}

	// Logging must not panic.
	pt.LogStats(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPhaseTimer_Empty(t *testing.T) {
	pt := NewPhaseTimer()
	pt.Stop()
	if n := len(pt.Records()); n != 0 {
		t.Errorf("got %d records from an empty timer", n)
	}
}
