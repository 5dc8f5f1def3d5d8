package levelset

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/pthm-cable/levelset/grid"
)

func mustGrid(t *testing.T, dims [3]int, h float64) grid.Grid {
	t.Helper()
	g, err := grid.New(dims, [3]float64{h, h, h})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestShapes(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		at   [3]float64
		want float64
	}{
		{"sphere center", Params{Kind: KindSphere, Center: [3]float64{1, 1, 1}, Radius: 0.5}, [3]float64{1, 1, 1}, -0.5},
		{"sphere outside", Params{Kind: KindSphere, Radius: 1}, [3]float64{0, 3, 0}, 2},
		{"box center", Params{Kind: KindBox, Size: [3]float64{2, 4, 6}}, [3]float64{0, 0, 0}, -1},
		{"box face", Params{Kind: KindBox, Center: [3]float64{1, 0, 0}, Size: [3]float64{2, 2, 2}}, [3]float64{3, 0, 0}, 1},
		{"cylinder axis", Params{Kind: KindCylinder, Radius: 1, Height: 4}, [3]float64{0, 0, 0}, -1},
		{"cylinder side", Params{Kind: KindCylinder, Radius: 1, Height: 4}, [3]float64{3, 0, 1}, 2},
		{"plane", Params{Kind: KindPlane, Center: [3]float64{0, 0, 1}, Normal: [3]float64{0, 0, 2}}, [3]float64{5, 5, 3}, 2},
		{"spheres first", Params{Kind: KindSpheres, Radius: 1, Second: [3]float64{4, 0, 0}}, [3]float64{0, 0, 0}, -1},
		{"spheres between", Params{Kind: KindSpheres, Radius: 1, Second: [3]float64{4, 0, 0}}, [3]float64{2, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.p)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got := s.Evaluate(v3.Vec{X: tt.at[0], Y: tt.at[1], Z: tt.at[2]})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"unknown", Params{Kind: "torus"}},
		{"sphere radius", Params{Kind: KindSphere}},
		{"box size", Params{Kind: KindBox, Size: [3]float64{1, 0, 1}}},
		{"cylinder height", Params{Kind: KindCylinder, Radius: 1}},
		{"plane normal", Params{Kind: KindPlane}},
		{"spheres radius", Params{Kind: KindSpheres, Radius: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.p); err == nil {
				t.Errorf("expected error for %+v", tt.p)
			}
		})
	}

	_, err := New(Params{Kind: "torus"})
	if !errors.Is(err, ErrUnknownShape) {
		t.Errorf("unknown kind error = %v, want ErrUnknownShape", err)
	}
}

func TestSampleMatchesAnalyticSphere(t *testing.T) {
	g := mustGrid(t, [3]int{9, 9, 9}, 0.25)
	origin := [3]float64{-1, -1, -1}
	s, err := New(Params{Kind: KindSphere, Radius: 0.6})
	if err != nil {
		t.Fatal(err)
	}

	phi := Sample(g, origin, s)
	if len(phi) != g.Len() {
		t.Fatalf("len = %d, want %d", len(phi), g.Len())
	}
	g.ForEach(func(c grid.Coord, idx int) {
		p := g.Position(c, origin)
		want := math.Sqrt(p[0]*p[0]+p[1]*p[1]+p[2]*p[2]) - 0.6
		if math.Abs(phi[idx]-want) > 1e-9 {
			t.Errorf("phi%v = %v, want %v", c, phi[idx], want)
		}
	})
}

func TestMaskIsNegativeOutsideDomain(t *testing.T) {
	g := mustGrid(t, [3]int{5, 1, 1}, 1)
	domain, err := NewPlane([3]float64{2.5, 0, 0}, [3]float64{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	mask := Mask(g, [3]float64{}, domain)
	for i, m := range mask {
		outside := float64(i) > 2.5
		if (m < 0) != outside {
			t.Errorf("mask[%d] = %v, outside = %v", i, m, outside)
		}
	}
}

func TestSourceFields(t *testing.T) {
	g := mustGrid(t, [3]int{3, 4, 2}, 0.5)
	origin := [3]float64{1, 2, 3}

	for axis := range 3 {
		f := Coordinate(g, origin, axis)
		g.ForEach(func(c grid.Coord, idx int) {
			if want := origin[axis] + 0.5*float64(c[axis]); f[idx] != want {
				t.Errorf("axis %d at %v = %v, want %v", axis, c, f[idx], want)
			}
		})
	}

	for i, v := range Constant(g, 7) {
		if v != 7 {
			t.Fatalf("constant[%d] = %v", i, v)
		}
	}
}
