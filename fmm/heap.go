package fmm

import "math"

// frontNode is a candidate point in the marching heap.
type frontNode struct {
	idx      int     // flat grid index
	priority float64 // |tentative value|
	index    int     // heap index
}

// frontHeap implements heap.Interface ordered by |value|, ties broken by
// flat index so runs are reproducible.
type frontHeap []*frontNode

func (h frontHeap) Len() int { return len(h) }
func (h frontHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].idx < h[j].idx
}
func (h frontHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *frontHeap) Push(x any) {
	n := x.(*frontNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *frontHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

func priorityOf(v float64) float64 {
	return math.Abs(v)
}
