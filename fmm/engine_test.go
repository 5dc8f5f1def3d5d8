package fmm

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/levelset/grid"
)

// seedAt seeds a fixed set of points.
type seedAt struct {
	seeds map[grid.Coord]float64
	calls int
}

func (s *seedAt) InitializeFront(sd Seeder, _ StatusView) {
	s.calls++
	for c, v := range s.seeds {
		sd.SetInitialFrontPoint(c, v)
	}
}

// manhattan updates a point as one more than its smallest finalized
// neighbour and remembers which points it read.
type manhattan struct {
	g      grid.Grid
	values []float64
	reads  map[int]bool
}

func newManhattan(g grid.Grid) *manhattan {
	return &manhattan{g: g, values: make([]float64, g.Len()), reads: map[int]bool{}}
}

func (m *manhattan) UpdateGridPoint(c grid.Coord, status StatusView) float64 {
	best := math.MaxFloat64
	m.g.Neighbors(c, func(_, _ int, n grid.Coord) {
		idx := m.g.Index(n)
		if status.At(idx) != Finalized {
			return
		}
		m.reads[idx] = true
		if m.values[idx]+1 < best {
			best = m.values[idx] + 1
		}
	})
	m.values[m.g.Index(c)] = best
	return best
}

func mustGrid(t *testing.T, n int) grid.Grid {
	t.Helper()
	g, err := grid.New([3]int{n, n, n}, [3]float64{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func run(e *Engine) {
	e.InitializeFront()
	for e.MoreToUpdate() {
		e.AdvanceFront()
	}
}

func TestNewRejectsNilCallbacks(t *testing.T) {
	g := mustGrid(t, 2)
	if _, err := New(g, nil, newManhattan(g)); !errors.Is(err, ErrNilCallback) {
		t.Errorf("expected ErrNilCallback, got %v", err)
	}
	if _, err := New(g, &seedAt{}, nil); !errors.Is(err, ErrNilCallback) {
		t.Errorf("expected ErrNilCallback, got %v", err)
	}
}

func TestEngineFinalizesEverything(t *testing.T) {
	g := mustGrid(t, 5)
	upd := newManhattan(g)
	origin := grid.Coord{0, 0, 0}
	init := &seedAt{seeds: map[grid.Coord]float64{origin: 0}}

	e, err := New(g, init, upd)
	if err != nil {
		t.Fatal(err)
	}
	run(e)

	if init.calls != 1 {
		t.Errorf("initializer called %d times, want 1", init.calls)
	}

	status := e.Status()
	g.ForEach(func(c grid.Coord, idx int) {
		if status.At(idx) != Finalized {
			t.Errorf("point %v has status %v, want finalized", c, status.At(idx))
		}
		want := float64(c[0] + c[1] + c[2])
		if c != origin && upd.values[idx] != want {
			t.Errorf("value at %v = %v, want %v", c, upd.values[idx], want)
		}
	})

	counts := e.Counts()
	if counts.Seeds != 1 || counts.Finalized != g.Len() || counts.Advances != g.Len()-1 {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestEngineFinalizesInIncreasingOrder(t *testing.T) {
	g := mustGrid(t, 6)
	upd := newManhattan(g)
	init := &seedAt{seeds: map[grid.Coord]float64{{2, 3, 1}: 0}}
	e, _ := New(g, init, upd)

	e.InitializeFront()
	seen := make([]bool, g.Len())
	g.ForEach(func(_ grid.Coord, idx int) {
		seen[idx] = e.Status().At(idx) == Finalized
	})

	last := 0.0
	for e.MoreToUpdate() {
		e.AdvanceFront()
		newlyFinalized := 0
		g.ForEach(func(c grid.Coord, idx int) {
			if seen[idx] || e.Status().At(idx) != Finalized {
				return
			}
			seen[idx] = true
			newlyFinalized++
			if upd.values[idx] < last {
				t.Errorf("point %v finalized at %v after %v", c, upd.values[idx], last)
			}
			last = upd.values[idx]
		})
		if newlyFinalized != 1 {
			t.Fatalf("advance finalized %d points, want 1", newlyFinalized)
		}
	}
}

func TestMaskedPointsAreNeverTouched(t *testing.T) {
	g := mustGrid(t, 5)
	upd := newManhattan(g)
	init := &seedAt{seeds: map[grid.Coord]float64{{0, 0, 0}: 0, {2, 2, 2}: 0}}
	e, _ := New(g, init, upd)

	// Wall off the plane i == 2. The seed at (2,2,2) lands on the wall and
	// must be ignored.
	for j := 0; j < 5; j++ {
		for k := 0; k < 5; k++ {
			e.MarkOutsideDomain(grid.Coord{2, j, k})
		}
	}
	run(e)

	status := e.Status()
	g.ForEach(func(c grid.Coord, idx int) {
		switch {
		case c[0] == 2:
			if status.At(idx) != OutsideDomain {
				t.Errorf("masked point %v has status %v", c, status.At(idx))
			}
			if upd.reads[idx] {
				t.Errorf("masked point %v was read as a neighbour", c)
			}
		case c[0] < 2:
			if status.At(idx) != Finalized {
				t.Errorf("reachable point %v has status %v", c, status.At(idx))
			}
		default:
			// Disconnected from the only live seed.
			if status.At(idx) != NotReached {
				t.Errorf("unreachable point %v has status %v", c, status.At(idx))
			}
		}
	})

	if got := e.Counts().Outside; got != 25 {
		t.Errorf("outside count = %d, want 25", got)
	}
}

func TestInitializeFrontRunsOnce(t *testing.T) {
	g := mustGrid(t, 3)
	init := &seedAt{seeds: map[grid.Coord]float64{{1, 1, 1}: 0}}
	e, _ := New(g, init, newManhattan(g))

	e.InitializeFront()
	e.InitializeFront()
	if init.calls != 1 {
		t.Errorf("initializer called %d times, want 1", init.calls)
	}
}

func TestMarkOutsideDomainRemovesCandidate(t *testing.T) {
	g := mustGrid(t, 3)
	init := &seedAt{seeds: map[grid.Coord]float64{{0, 0, 0}: 0}}
	e, _ := New(g, init, newManhattan(g))
	e.InitializeFront()

	c := grid.Coord{1, 0, 0}
	if e.Status().At(g.Index(c)) != Candidate {
		t.Fatalf("expected %v to be a candidate", c)
	}
	e.MarkOutsideDomain(c)
	if e.Status().At(g.Index(c)) != OutsideDomain {
		t.Errorf("expected %v to be outside the domain", c)
	}
	for e.MoreToUpdate() {
		e.AdvanceFront()
	}
	if e.Status().At(g.Index(c)) != OutsideDomain {
		t.Errorf("masked candidate %v was finalized", c)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{NotReached, "not_reached"},
		{Candidate, "candidate"},
		{Finalized, "finalized"},
		{OutsideDomain, "outside_domain"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
