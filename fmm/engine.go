// Package fmm is the fast marching scheduler: it owns point status and the
// candidate heap, and drives caller-supplied front initialization and
// point update callbacks until every reachable point is finalized.
package fmm

import (
	"container/heap"
	"errors"
	"log/slog"

	"github.com/pthm-cable/levelset/grid"
)

// ErrNilCallback is returned by New when a callback is missing.
var ErrNilCallback = errors.New("fmm: nil callback")

// Seeder receives the initial front points found by a FrontInitializer.
type Seeder interface {
	SetInitialFrontPoint(c grid.Coord, value float64)
}

// FrontInitializer locates the interface and seeds the front. It is called
// exactly once per engine.
type FrontInitializer interface {
	InitializeFront(s Seeder, status StatusView)
}

// PointUpdater computes the value of a point from its finalized neighbours
// and returns it.
type PointUpdater interface {
	UpdateGridPoint(c grid.Coord, status StatusView) float64
}

// Counts summarizes what an engine has done so far.
type Counts struct {
	Seeds     int
	Finalized int // includes seeds
	Outside   int
	Advances  int
}

// Engine is the scheduler state for one grid. It is not safe for concurrent
// use.
type Engine struct {
	grid   grid.Grid
	init   FrontInitializer
	update PointUpdater

	status []Status
	values []float64
	nodes  []*frontNode // heap node per flat index, nil when not a candidate
	open   *frontHeap

	seeds       []int
	initialized bool
	counts      Counts
	logger      *slog.Logger
}

// New creates an engine sized to g.
func New(g grid.Grid, init FrontInitializer, update PointUpdater) (*Engine, error) {
	if init == nil || update == nil {
		return nil, ErrNilCallback
	}
	n := g.Len()
	return &Engine{
		grid:   g,
		init:   init,
		update: update,
		status: make([]Status, n),
		values: make([]float64, n),
		nodes:  make([]*frontNode, n),
		open:   &frontHeap{},
		logger: slog.Default(),
	}, nil
}

// SetLogger sets the logger used for scheduler diagnostics.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Status returns a read-only view of the point status array.
func (e *Engine) Status() StatusView {
	return statusView{s: e.status}
}

// Counts returns the engine counters.
func (e *Engine) Counts() Counts {
	return e.counts
}

// MarkOutsideDomain excludes c from the computation. A point already in the
// heap is removed from it.
func (e *Engine) MarkOutsideDomain(c grid.Coord) {
	if !e.grid.InBounds(c) {
		return
	}
	idx := e.grid.Index(c)
	switch e.status[idx] {
	case OutsideDomain:
		return
	case Finalized:
		e.logger.Warn("fmm: masking finalized point", "coord", c)
		e.counts.Finalized--
	case Candidate:
		heap.Remove(e.open, e.nodes[idx].index)
		e.nodes[idx] = nil
	}
	e.status[idx] = OutsideDomain
	e.values[idx] = 0
	e.counts.Outside++
}

// SetInitialFrontPoint seeds c with a final value. Points outside the grid
// or the domain are ignored.
func (e *Engine) SetInitialFrontPoint(c grid.Coord, value float64) {
	if !e.grid.InBounds(c) {
		return
	}
	idx := e.grid.Index(c)
	switch e.status[idx] {
	case OutsideDomain:
		return
	case Finalized:
		e.values[idx] = value
		return
	case Candidate:
		heap.Remove(e.open, e.nodes[idx].index)
		e.nodes[idx] = nil
	}
	e.status[idx] = Finalized
	e.values[idx] = value
	e.seeds = append(e.seeds, idx)
	e.counts.Seeds++
	e.counts.Finalized++
}

// InitializeFront runs the front initializer and turns the neighbours of
// every seed into candidates.
func (e *Engine) InitializeFront() {
	if e.initialized {
		e.logger.Warn("fmm: front already initialized")
		return
	}
	e.initialized = true

	e.init.InitializeFront(e, e.Status())

	for _, idx := range e.seeds {
		e.grid.Neighbors(e.grid.Coord(idx), func(_, _ int, n grid.Coord) {
			e.consider(n)
		})
	}
	e.seeds = nil
}

// MoreToUpdate reports whether any candidate remains.
func (e *Engine) MoreToUpdate() bool {
	return e.open.Len() > 0
}

// AdvanceFront finalizes the candidate closest to the interface and updates
// its unresolved neighbours.
func (e *Engine) AdvanceFront() {
	if e.open.Len() == 0 {
		return
	}
	node := heap.Pop(e.open).(*frontNode)
	idx := node.idx
	e.nodes[idx] = nil

	c := e.grid.Coord(idx)
	e.values[idx] = e.update.UpdateGridPoint(c, e.Status())
	e.status[idx] = Finalized
	e.counts.Finalized++
	e.counts.Advances++

	e.grid.Neighbors(c, func(_, _ int, n grid.Coord) {
		e.consider(n)
	})
}

// Release drops the scheduler storage. The engine must not be used after.
func (e *Engine) Release() {
	e.status = nil
	e.values = nil
	e.nodes = nil
	e.open = &frontHeap{}
	e.seeds = nil
}

// consider recomputes the tentative value of an unresolved point and
// inserts or repositions it in the heap.
func (e *Engine) consider(c grid.Coord) {
	idx := e.grid.Index(c)
	st := e.status[idx]
	if st == Finalized || st == OutsideDomain {
		return
	}

	v := e.update.UpdateGridPoint(c, e.Status())
	e.values[idx] = v

	if st == Candidate {
		node := e.nodes[idx]
		node.priority = priorityOf(v)
		heap.Fix(e.open, node.index)
		return
	}

	node := &frontNode{idx: idx, priority: priorityOf(v)}
	e.nodes[idx] = node
	e.status[idx] = Candidate
	heap.Push(e.open, node)
}
