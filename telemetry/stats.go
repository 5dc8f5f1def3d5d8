package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Accuracy summarizes the absolute error of a computed field against a
// reference field over the points that were compared.
type Accuracy struct {
	Samples int     `csv:"samples"`
	Mean    float64 `csv:"mean_abs_err"`
	RMS     float64 `csv:"rms_err"`
	Max     float64 `csv:"max_abs_err"`
	P50     float64 `csv:"p50_abs_err"`
	P90     float64 `csv:"p90_abs_err"`
	P99     float64 `csv:"p99_abs_err"`
}

// LogValue implements slog.LogValuer for structured logging.
func (a Accuracy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", a.Samples),
		slog.Float64("mean", a.Mean),
		slog.Float64("rms", a.RMS),
		slog.Float64("max", a.Max),
		slog.Float64("p50", a.P50),
		slog.Float64("p90", a.P90),
		slog.Float64("p99", a.P99),
	)
}

// ComputeAccuracy compares got with want at every index where keep returns
// true. A nil keep compares every index. Non-finite values in got are
// skipped.
func ComputeAccuracy(got, want []float64, keep func(idx int) bool) Accuracy {
	n := min(len(got), len(want))
	errs := make([]float64, 0, n)
	for i := range n {
		if keep != nil && !keep(i) {
			continue
		}
		if math.IsNaN(got[i]) || math.IsInf(got[i], 0) {
			continue
		}
		errs = append(errs, math.Abs(got[i]-want[i]))
	}
	if len(errs) == 0 {
		return Accuracy{}
	}

	sort.Float64s(errs)
	return Accuracy{
		Samples: len(errs),
		Mean:    stat.Mean(errs, nil),
		RMS:     math.Sqrt(floats.Dot(errs, errs) / float64(len(errs))),
		Max:     floats.Max(errs),
		P50:     Percentile(errs, 0.5),
		P90:     Percentile(errs, 0.9),
		P99:     Percentile(errs, 0.99),
	}
}

// Percentile returns the p-th quantile of a sorted slice, p in [0, 1].
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = max(0, min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Band returns a keep function selecting points whose reference value lies
// within width of the interface.
func Band(ref []float64, width float64) func(idx int) bool {
	return func(idx int) bool {
		return math.Abs(ref[idx]) <= width
	}
}

// ConvergenceOrder fits err = C h^p by least squares in log space and
// returns p. Levels with a non-positive spacing or error are ignored; ok is
// false when fewer than two remain.
func ConvergenceOrder(h, errs []float64) (p float64, ok bool) {
	var xs, ys []float64
	for i := range min(len(h), len(errs)) {
		if h[i] <= 0 || errs[i] <= 0 {
			continue
		}
		xs = append(xs, math.Log(h[i]))
		ys = append(ys, math.Log(errs[i]))
	}
	if len(xs) < 2 {
		return 0, false
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0, false // every level at the same spacing
	}
	return beta, true
}
