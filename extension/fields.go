package extension

import (
	"fmt"

	"github.com/pthm-cable/levelset/grid"
)

// defaultUpdateValue is what outputs hold before the front reaches them.
const defaultUpdateValue = 0

// FieldData bundles the fields of one computation. Phi and Sources are
// read, Distance and Extensions are written. Extensions[m] is the extension
// of Sources[m]. The bundle is owned by one driver call and must not be
// driven concurrently.
type FieldData struct {
	Phi        []float64
	Distance   []float64
	Sources    [][]float64
	Extensions [][]float64
}

// NumExtensionFields returns the number of fields being extended.
func (f *FieldData) NumExtensionFields() int {
	return len(f.Extensions)
}

// Validate checks that every field has one value per grid point.
func (f *FieldData) Validate(g grid.Grid) error {
	n := g.Len()
	if len(f.Phi) != n {
		return fmt.Errorf("phi has %d values, grid has %d points", len(f.Phi), n)
	}
	if len(f.Distance) != n {
		return fmt.Errorf("distance has %d values, grid has %d points", len(f.Distance), n)
	}
	if len(f.Sources) != len(f.Extensions) {
		return fmt.Errorf("%d source fields for %d extension fields", len(f.Sources), len(f.Extensions))
	}
	for m := range f.Extensions {
		if len(f.Sources[m]) != n {
			return fmt.Errorf("source field %d has %d values, grid has %d points", m, len(f.Sources[m]), n)
		}
		if len(f.Extensions[m]) != n {
			return fmt.Errorf("extension field %d has %d values, grid has %d points", m, len(f.Extensions[m]), n)
		}
	}
	return nil
}

// reset sets every output value to the default.
func (f *FieldData) reset() {
	for i := range f.Distance {
		f.Distance[i] = defaultUpdateValue
	}
	for _, ext := range f.Extensions {
		for i := range ext {
			ext[i] = defaultUpdateValue
		}
	}
}
