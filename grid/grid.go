// Package grid describes the regular 3-D Cartesian grids the fast marching
// solver runs on.
package grid

import (
	"errors"
	"fmt"
)

// NumDims is the number of spatial dimensions of every grid.
const NumDims = 3

// ErrInvalidGrid is returned when dimensions or spacing are not positive.
var ErrInvalidGrid = errors.New("grid: invalid grid")

// Coord is an (i, j, k) grid index.
type Coord [NumDims]int

// Offset returns the coordinate step cells away along axis.
func (c Coord) Offset(axis, step int) Coord {
	c[axis] += step
	return c
}

// Grid is an immutable description of a grid: the number of nodes along
// each axis and the physical spacing between nodes.
type Grid struct {
	Dims    [NumDims]int
	Spacing [NumDims]float64
}

// New validates and returns a grid.
func New(dims [NumDims]int, spacing [NumDims]float64) (Grid, error) {
	for axis := 0; axis < NumDims; axis++ {
		if dims[axis] <= 0 {
			return Grid{}, fmt.Errorf("%w: dims[%d] = %d", ErrInvalidGrid, axis, dims[axis])
		}
		if !(spacing[axis] > 0) {
			return Grid{}, fmt.Errorf("%w: spacing[%d] = %g", ErrInvalidGrid, axis, spacing[axis])
		}
	}
	return Grid{Dims: dims, Spacing: spacing}, nil
}

// Len returns the number of grid points.
func (g Grid) Len() int {
	return g.Dims[0] * g.Dims[1] * g.Dims[2]
}

// Index flattens c as i + Nx*j + Nx*Ny*k.
func (g Grid) Index(c Coord) int {
	return c[0] + g.Dims[0]*c[1] + g.Dims[0]*g.Dims[1]*c[2]
}

// Coord is the inverse of Index.
func (g Grid) Coord(idx int) Coord {
	nx, ny := g.Dims[0], g.Dims[1]
	return Coord{idx % nx, (idx / nx) % ny, idx / (nx * ny)}
}

// InBounds reports whether c addresses a node of the grid.
func (g Grid) InBounds(c Coord) bool {
	for axis := 0; axis < NumDims; axis++ {
		if c[axis] < 0 || c[axis] >= g.Dims[axis] {
			return false
		}
	}
	return true
}

// Neighbors calls fn for each in-bounds face neighbour of c, axis by axis,
// minus direction before plus.
func (g Grid) Neighbors(c Coord, fn func(axis, step int, n Coord)) {
	for axis := 0; axis < NumDims; axis++ {
		for _, step := range [2]int{-1, 1} {
			n := c.Offset(axis, step)
			if g.InBounds(n) {
				fn(axis, step, n)
			}
		}
	}
}

// Position returns the physical location of node c for a grid whose first
// node sits at origin.
func (g Grid) Position(c Coord, origin [NumDims]float64) [NumDims]float64 {
	var p [NumDims]float64
	for axis := 0; axis < NumDims; axis++ {
		p[axis] = origin[axis] + float64(c[axis])*g.Spacing[axis]
	}
	return p
}

// ForEach visits every node in storage order (i fastest, then j, then k).
func (g Grid) ForEach(fn func(c Coord, idx int)) {
	idx := 0
	for k := 0; k < g.Dims[2]; k++ {
		for j := 0; j < g.Dims[1]; j++ {
			for i := 0; i < g.Dims[0]; i++ {
				fn(Coord{i, j, k}, idx)
				idx++
			}
		}
	}
}
