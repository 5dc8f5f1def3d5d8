package extension

import (
	"math"

	"github.com/pthm-cable/levelset/fmm"
	"github.com/pthm-cable/levelset/grid"
)

// InitializeFront sweeps the grid for points on or within one cell of the
// zero level set of phi, gives them first-order distance and extension
// values and seeds them into the front.
//
// Along each axis the distance to the interface is found by linear
// interpolation of phi towards a neighbour of opposite sign. Per axis the
// nearer of the two crossings is used, and the axes are combined as
// 1/d^2 = sum 1/d_axis^2. Extension values are the matching inverse square
// distance weighted blend of the interpolated source values.
func (k *firstOrder) InitializeFront(seeder fmm.Seeder, status fmm.StatusView) {
	g, f := k.grid, k.fields
	m := f.NumExtensionFields()

	extCur := make([]float64, m)
	extWeighted := make([]float64, m) // sum ext/d^2
	extMinus := make([]float64, m)
	extPlus := make([]float64, m)

	g.ForEach(func(c grid.Coord, idx int) {
		if status.At(idx) == fmm.OutsideDomain {
			return
		}

		phiCur := f.Phi[idx]
		for n := range m {
			extCur[n] = f.Sources[n][idx]
			extWeighted[n] = 0
		}

		// A zero of phi is a crossing in every direction.
		onInterface := phiCur == 0
		bordersInterface := false
		invDistSq := 0.0

		for axis := 0; axis < grid.NumDims && !onInterface; axis++ {
			distMinus := k.crossing(c, axis, -1, phiCur, extCur, extMinus, status)
			distPlus := k.crossing(c, axis, 1, phiCur, extCur, extPlus, status)
			if distMinus == unset && distPlus == unset {
				continue
			}
			bordersInterface = true

			dist, ext := distMinus, extMinus
			if distPlus < distMinus {
				dist, ext = distPlus, extPlus
			}

			w := 1 / dist / dist
			invDistSq += w
			for n := range m {
				extWeighted[n] += ext[n] * w
			}
		}

		switch {
		case onInterface:
			f.Distance[idx] = 0
			for n := range m {
				f.Extensions[n][idx] = extCur[n]
			}
		case bordersInterface:
			d := 1 / math.Sqrt(invDistSq)
			if phiCur < 0 {
				d = -d
			}
			f.Distance[idx] = d
			for n := range m {
				f.Extensions[n][idx] = extWeighted[n] / invDistSq
			}
		default:
			return
		}

		seeder.SetInitialFrontPoint(c, f.Distance[idx])
	})
}

// crossing returns the distance from c to the interface along axis in the
// direction of step, or unset when phi does not change sign there. ext
// receives the source values interpolated to the crossing. c must not lie
// on the interface.
func (k *firstOrder) crossing(c grid.Coord, axis, step int, phiCur float64, extCur, ext []float64, status fmm.StatusView) float64 {
	g, f := k.grid, k.fields
	for n := range ext {
		ext[n] = 0
	}

	nb := c.Offset(axis, step)
	if !g.InBounds(nb) {
		return unset
	}
	nbIdx := g.Index(nb)
	if status.At(nbIdx) == fmm.OutsideDomain {
		return unset
	}
	phiNb := f.Phi[nbIdx]
	if phiNb*phiCur > 0 {
		return unset
	}

	// phiCur != 0 and phiNb has the other sign or is zero, so the
	// denominator is nonzero and t lies in (0, 1].
	t := phiCur / (phiCur - phiNb)
	for n := range ext {
		ext[n] = extCur[n] + t*(f.Sources[n][nbIdx]-extCur[n])
	}
	return t * g.Spacing[axis]
}
