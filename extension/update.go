package extension

import (
	"math"

	"github.com/pthm-cable/levelset/fmm"
	"github.com/pthm-cable/levelset/grid"
)

// UpdateGridPoint computes the distance at c from its finalized neighbours
// with the first-order upwind scheme, stores it together with the
// transported extension values, and returns it.
func (k *firstOrder) UpdateGridPoint(c grid.Coord, status fmm.StatusView) float64 {
	g, f := k.grid, k.fields
	idx := g.Index(c)

	var (
		upwind    [grid.NumDims]float64
		upwindIdx [grid.NumDims]int
		used      [grid.NumDims]bool
		contribs  int
	)

	// Coefficients of A d^2 + B d + C = 0.
	var phiA, phiB, phiC float64

	for axis := 0; axis < grid.NumDims; axis++ {
		upwind[axis] = unset

		for _, step := range [2]int{-1, 1} {
			nb := c.Offset(axis, step)
			if !g.InBounds(nb) {
				continue
			}
			nbIdx := g.Index(nb)
			if status.At(nbIdx) != fmm.Finalized {
				continue
			}
			// The neighbour nearer the interface is upwind.
			u := f.Distance[nbIdx]
			if !used[axis] || math.Abs(u) < math.Abs(upwind[axis]) {
				upwind[axis] = u
				upwindIdx[axis] = nbIdx
				used[axis] = true
			}
		}

		if !used[axis] {
			continue
		}
		// A neighbour finalized after a negative discriminant holds the
		// sentinel; squaring it would turn the discriminant into NaN.
		if math.Abs(upwind[axis]) >= unset {
			used[axis] = false
			k.anomalies.UnsetUpwindValues++
			k.logger.Warn("skipping upwind neighbour without a distance", "coord", c, "axis", axis)
			continue
		}
		contribs++
		invDxSq := 1 / g.Spacing[axis] / g.Spacing[axis]
		phiA += invDxSq
		phiB += upwind[axis] * invDxSq
		phiC += upwind[axis] * upwind[axis] * invDxSq
	}

	if contribs == 0 {
		k.anomalies.NoUpwindNeighbors++
		k.logger.Warn("distance update without finalized neighbours", "coord", c)
		return f.Distance[idx]
	}

	phiB *= -2
	phiC -= 1 // unit speed for a distance function

	discriminant := phiB*phiB - 4*phiA*phiC
	var distUpdated float64
	switch {
	case discriminant < 0:
		// No real root. The fallback is a sentinel carrying the sign of the
		// neighbours, not a meaningful distance.
		k.anomalies.NegativeDiscriminants++
		k.logger.Warn("negative discriminant in distance update",
			"coord", c,
			"discriminant", discriminant,
		)
		distUpdated = unset
		if phiB > 0 {
			distUpdated = -distUpdated
		}
	case phiB < 0: // neighbours are positive
		distUpdated = (-phiB + math.Sqrt(discriminant)) / 2 / phiA
	case phiB > 0: // neighbours are negative
		distUpdated = (-phiB - math.Sqrt(discriminant)) / 2 / phiA
	default: // on the interface
		distUpdated = 0
	}

	f.Distance[idx] = distUpdated
	if discriminant < 0 {
		k.averageUpwind(idx, &upwindIdx, &used)
	} else {
		k.transport(c, idx, distUpdated, &upwind, &upwindIdx, &used)
	}
	return distUpdated
}

// transport sets the extension values at idx so that grad F . grad d = 0
// holds to first order: a blend of the upwind neighbours' values weighted
// by the distance gained from each.
func (k *firstOrder) transport(c grid.Coord, idx int, dist float64, upwind *[grid.NumDims]float64, upwindIdx *[grid.NumDims]int, used *[grid.NumDims]bool) {
	f := k.fields
	m := f.NumExtensionFields()
	if m == 0 {
		return
	}

	numerator := make([]float64, m)
	var denominator float64
	var contribs int
	for axis := 0; axis < grid.NumDims; axis++ {
		if !used[axis] {
			continue
		}
		contribs++
		distDiff := dist - upwind[axis]
		denominator += distDiff
		for n := range m {
			numerator[n] += f.Extensions[n][upwindIdx[axis]] * distDiff
		}
	}

	if denominator != 0 {
		for n := range m {
			f.Extensions[n][idx] = numerator[n] / denominator
		}
		return
	}

	// Every upwind neighbour sits at the updated distance.
	k.anomalies.DegenerateTransports++
	k.logger.Debug("degenerate extension transport", "coord", c, "neighbours", contribs)
	k.averageUpwind(idx, upwindIdx, used)
}

// averageUpwind sets the extension values at idx to the plain mean of the
// upwind neighbours' values.
func (k *firstOrder) averageUpwind(idx int, upwindIdx *[grid.NumDims]int, used *[grid.NumDims]bool) {
	f := k.fields
	for n := range f.NumExtensionFields() {
		var sum float64
		var count int
		for axis := 0; axis < grid.NumDims; axis++ {
			if used[axis] {
				sum += f.Extensions[n][upwindIdx[axis]]
				count++
			}
		}
		f.Extensions[n][idx] = sum / float64(count)
	}
}
