package extension

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDiscretizationOrder is returned for any order other than 1.
	ErrInvalidDiscretizationOrder = errors.New("extension: invalid spatial discretization order")

	// ErrSecondOrderUnsupported is returned for order 2, which is reserved.
	ErrSecondOrderUnsupported = fmt.Errorf("%w: second-order spatial derivatives currently unsupported", ErrInvalidDiscretizationOrder)

	// ErrDataCreation is returned when the grid, field bundle or scheduler
	// cannot be built.
	ErrDataCreation = errors.New("extension: fast marching data creation failed")
)

// StatusCode is the coarse result of a driver call.
type StatusCode int

const (
	StatusSuccess StatusCode = iota
	StatusDataCreationError
	StatusInvalidDiscretizationOrder
)

func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusDataCreationError:
		return "data_creation_error"
	case StatusInvalidDiscretizationOrder:
		return "invalid_discretization_order"
	}
	return "unknown"
}

// StatusOf maps an error returned by the driver to its status code.
func StatusOf(err error) StatusCode {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrInvalidDiscretizationOrder):
		return StatusInvalidDiscretizationOrder
	default:
		return StatusDataCreationError
	}
}
