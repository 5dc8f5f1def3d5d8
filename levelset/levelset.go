// Package levelset builds the grid fields fed to the fast marching solver
// from implicit surfaces: phi from a signed distance function, masks from a
// domain shape and simple source fields.
package levelset

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/pthm-cable/levelset/grid"
)

// ErrUnknownShape is returned for a shape kind New does not know.
var ErrUnknownShape = errors.New("levelset: unknown shape")

// Shape kinds understood by New.
const (
	KindSphere   = "sphere"
	KindBox      = "box"
	KindCylinder = "cylinder"
	KindPlane    = "plane"
	KindSpheres  = "spheres" // union of two spheres
)

// Params describes a shape in physical coordinates.
type Params struct {
	Kind   string
	Center [3]float64
	Radius float64    // sphere, cylinder, spheres
	Size   [3]float64 // box edge lengths
	Height float64    // cylinder, along z
	Round  float64    // box/cylinder edge rounding
	Normal [3]float64 // plane
	Second [3]float64 // center of the second sphere
}

// New builds the signed distance function described by p.
func New(p Params) (sdf.SDF3, error) {
	var (
		s   sdf.SDF3
		err error
	)
	switch p.Kind {
	case KindSphere:
		s, err = sphere(p.Center, p.Radius)
	case KindBox:
		if p.Size[0] <= 0 || p.Size[1] <= 0 || p.Size[2] <= 0 {
			return nil, fmt.Errorf("levelset: box size %v must be positive", p.Size)
		}
		s, err = sdf.Box3D(vec(p.Size), p.Round)
		if err == nil {
			s = sdf.Transform3D(s, sdf.Translate3d(vec(p.Center)))
		}
	case KindCylinder:
		if p.Radius <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("levelset: cylinder radius %g and height %g must be positive", p.Radius, p.Height)
		}
		s, err = sdf.Cylinder3D(p.Height, p.Radius, p.Round)
		if err == nil {
			s = sdf.Transform3D(s, sdf.Translate3d(vec(p.Center)))
		}
	case KindPlane:
		return NewPlane(p.Center, p.Normal)
	case KindSpheres:
		var a, b sdf.SDF3
		if a, err = sphere(p.Center, p.Radius); err != nil {
			return nil, err
		}
		if b, err = sphere(p.Second, p.Radius); err != nil {
			return nil, err
		}
		s = sdf.Union3D(a, b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, p.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("levelset: building %s: %w", p.Kind, err)
	}
	return s, nil
}

func sphere(center [3]float64, radius float64) (sdf.SDF3, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("levelset: sphere radius %g must be positive", radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.Translate3d(vec(center))), nil
}

func vec(a [3]float64) v3.Vec {
	return v3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// Plane is the half space on the negative side of a plane through a point.
// It implements sdf.SDF3.
type Plane struct {
	point  v3.Vec
	normal v3.Vec // unit length
}

// NewPlane returns the signed distance to the plane through point with the
// given normal; it is positive on the side the normal points to.
func NewPlane(point, normal [3]float64) (*Plane, error) {
	n := vec(normal)
	l := n.Length()
	if l == 0 || math.IsNaN(l) {
		return nil, fmt.Errorf("levelset: plane normal %v has no direction", normal)
	}
	return &Plane{point: vec(point), normal: n.DivScalar(l)}, nil
}

// Evaluate returns the signed distance from p to the plane.
func (pl *Plane) Evaluate(p v3.Vec) float64 {
	return p.Sub(pl.point).Dot(pl.normal)
}

// BoundingBox returns an unbounded box.
func (pl *Plane) BoundingBox() sdf.Box3 {
	inf := math.Inf(1)
	return sdf.Box3{
		Min: v3.Vec{X: -inf, Y: -inf, Z: -inf},
		Max: v3.Vec{X: inf, Y: inf, Z: inf},
	}
}

// Sample evaluates s at every node of g, whose first node sits at origin.
func Sample(g grid.Grid, origin [3]float64, s sdf.SDF3) []float64 {
	out := make([]float64, g.Len())
	g.ForEach(func(c grid.Coord, idx int) {
		out[idx] = s.Evaluate(vec(g.Position(c, origin)))
	})
	return out
}

// Mask returns a mask that is negative outside domain, excluding those
// points from the computation.
func Mask(g grid.Grid, origin [3]float64, domain sdf.SDF3) []float64 {
	out := Sample(g, origin, domain)
	for i := range out {
		out[i] = -out[i]
	}
	return out
}

// Coordinate returns the physical coordinate along axis at every node.
func Coordinate(g grid.Grid, origin [3]float64, axis int) []float64 {
	out := make([]float64, g.Len())
	g.ForEach(func(c grid.Coord, idx int) {
		out[idx] = g.Position(c, origin)[axis]
	})
	return out
}

// Constant returns a field holding v everywhere.
func Constant(g grid.Grid, v float64) []float64 {
	out := make([]float64, g.Len())
	for i := range out {
		out[i] = v
	}
	return out
}
