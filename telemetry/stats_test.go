package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.0},
		{"clamped high", []float64{1, 2, 3}, 1.5, 3.0},
		{"clamped low", []float64{1, 2, 3}, -1, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeAccuracy(t *testing.T) {
	want := []float64{0, 0, 0, 0}
	got := []float64{1, -3, 0, math.NaN()}

	a := ComputeAccuracy(got, want, nil)
	if a.Samples != 3 {
		t.Errorf("samples = %d, want 3 (NaN skipped)", a.Samples)
	}
	if math.Abs(a.Mean-4.0/3) > 1e-12 {
		t.Errorf("mean = %v, want 4/3", a.Mean)
	}
	if a.Max != 3 {
		t.Errorf("max = %v, want 3", a.Max)
	}
	if math.Abs(a.RMS-math.Sqrt(10.0/3)) > 1e-12 {
		t.Errorf("rms = %v, want sqrt(10/3)", a.RMS)
	}
	if a.P50 != 1 {
		t.Errorf("p50 = %v, want 1", a.P50)
	}
}

func TestComputeAccuracyBand(t *testing.T) {
	ref := []float64{-2, -0.5, 0, 0.5, 2}
	got := []float64{-1, -0.5, 0.1, 0.5, 9}

	a := ComputeAccuracy(got, ref, Band(ref, 0.5))
	if a.Samples != 3 {
		t.Fatalf("samples = %d, want the 3 points within the band", a.Samples)
	}
	if math.Abs(a.Max-0.1) > 1e-12 {
		t.Errorf("max = %v, want 0.1", a.Max)
	}
}

func TestComputeAccuracyEmpty(t *testing.T) {
	a := ComputeAccuracy(nil, nil, nil)
	if a != (Accuracy{}) {
		t.Errorf("got %+v, want zero value", a)
	}
}

func TestConvergenceOrder(t *testing.T) {
	tests := []struct {
		name   string
		h      []float64
		errs   []float64
		want   float64
		wantOK bool
	}{
		{"first order", []float64{0.4, 0.2, 0.1}, []float64{0.8, 0.4, 0.2}, 1, true},
		{"second order", []float64{0.2, 0.1}, []float64{0.04, 0.01}, 2, true},
		{"single level", []float64{0.1}, []float64{0.3}, 0, false},
		{"exact solution skipped", []float64{0.2, 0.1}, []float64{0, 0.01}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvergenceOrder(tt.h, tt.errs)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}
