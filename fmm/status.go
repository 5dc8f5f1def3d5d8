package fmm

// Status is the fast marching state of a grid point.
type Status uint8

const (
	NotReached    Status = iota // not yet touched by the front
	Candidate                   // has a tentative value and sits in the heap
	Finalized                   // value is final
	OutsideDomain               // masked out, never updated or read
)

func (s Status) String() string {
	switch s {
	case NotReached:
		return "not_reached"
	case Candidate:
		return "candidate"
	case Finalized:
		return "finalized"
	case OutsideDomain:
		return "outside_domain"
	}
	return "unknown"
}

// StatusView is a read-only view of the per-point status array, indexed by
// flat grid index.
type StatusView interface {
	At(idx int) Status
	Len() int
}

// statusView hides the backing slice so callbacks cannot mutate it.
type statusView struct {
	s []Status
}

func (v statusView) At(idx int) Status { return v.s[idx] }
func (v statusView) Len() int          { return len(v.s) }
