// Package extension computes signed distance functions and extension
// fields on 3-D grids with the fast marching method.
//
// The numerical work is split between a front initializer, which finds the
// grid points next to the zero level set of phi and gives them first-order
// distance and extension values, and a grid point updater, which solves the
// upwind Eikonal equation |grad d| = 1 and the transport equation
// grad F . grad d = 0 at a point from its finalized neighbours. Package fmm
// decides the order in which points are updated.
package extension

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/levelset/fmm"
	"github.com/pthm-cable/levelset/grid"
)

// Order is the spatial discretization order of the finite differences.
type Order int

const (
	Order1 Order = 1
	Order2 Order = 2 // reserved, not implemented
)

// unset marks a missing crossing or upwind value.
const unset = math.MaxFloat64

// Discretization is a front initializer and point updater pair for one
// discretization order.
type Discretization interface {
	fmm.FrontInitializer
	fmm.PointUpdater

	// Anomalies returns the numerical anomalies seen so far.
	Anomalies() Anomalies
}

// Anomalies counts non-fatal numerical problems met during a run.
type Anomalies struct {
	NegativeDiscriminants int // Eikonal solve had no real root
	NoUpwindNeighbors     int // update requested with no finalized neighbour
	DegenerateTransports  int // extension weights summed to zero
	UnsetUpwindValues     int // upwind neighbour held the no-root sentinel
}

func checkOrder(order Order) error {
	switch order {
	case Order1:
		return nil
	case Order2:
		return ErrSecondOrderUnsupported
	}
	return fmt.Errorf("%w: %d (only first- and second-order finite differences supported)", ErrInvalidDiscretizationOrder, order)
}

// NewDiscretization returns the kernel for order, working on fields laid out
// on g. A nil logger uses slog.Default().
func NewDiscretization(order Order, g grid.Grid, fields *FieldData, logger *slog.Logger) (Discretization, error) {
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &firstOrder{grid: g, fields: fields, logger: logger}, nil
}

// firstOrder is the O(h) kernel.
type firstOrder struct {
	grid      grid.Grid
	fields    *FieldData
	logger    *slog.Logger
	anomalies Anomalies
}

func (k *firstOrder) Anomalies() Anomalies {
	return k.anomalies
}
