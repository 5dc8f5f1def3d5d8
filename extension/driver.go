package extension

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/levelset/fmm"
	"github.com/pthm-cable/levelset/grid"
)

// Request describes one distance/extension computation. Outputs must be
// allocated by the caller with one value per grid point; they are zeroed
// before the run. Extensions[m] receives the extension of Sources[m]. Mask
// may be nil; points where it is negative are outside the domain. Status is
// optional; when set it receives the final status of every point.
type Request struct {
	Distance   []float64
	Extensions [][]float64
	Status     []fmm.Status

	Phi     []float64
	Mask    []float64
	Sources [][]float64

	Order   Order
	Dims    [grid.NumDims]int
	Spacing [grid.NumDims]float64
}

// Stats summarizes a completed run.
type Stats struct {
	Points     int `csv:"points"`
	Seeds      int `csv:"seeds"`
	Finalized  int `csv:"finalized"`
	Outside    int `csv:"outside"`
	NotReached int `csv:"not_reached"`

	NegativeDiscriminants int `csv:"negative_discriminants"`
	NoUpwindNeighbors     int `csv:"no_upwind_neighbors"`
	DegenerateTransports  int `csv:"degenerate_transports"`
	UnsetUpwindValues     int `csv:"unset_upwind_values"`

	Duration time.Duration `csv:"-"`
	Millis   float64       `csv:"millis"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("points", s.Points),
		slog.Int("seeds", s.Seeds),
		slog.Int("finalized", s.Finalized),
		slog.Int("outside", s.Outside),
		slog.Int("not_reached", s.NotReached),
		slog.Int("negative_discriminants", s.NegativeDiscriminants),
		slog.Int("no_upwind_neighbors", s.NoUpwindNeighbors),
		slog.Int("degenerate_transports", s.DegenerateTransports),
		slog.Int("unset_upwind_values", s.UnsetUpwindValues),
		slog.Duration("duration", s.Duration),
	)
}

// Driver runs computations. The zero value logs to slog.Default().
// A Driver holds no per-run state, so one may serve concurrent calls on
// distinct field bundles.
type Driver struct {
	Logger *slog.Logger
}

// NewDriver returns a driver logging to logger.
func NewDriver(logger *slog.Logger) *Driver {
	return &Driver{Logger: logger}
}

func (d *Driver) logger() *slog.Logger {
	if d == nil || d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Run validates req, marches the front over the whole reachable domain and
// fills req.Distance and req.Extensions.
func (d *Driver) Run(req Request) (Stats, error) {
	log := d.logger()
	start := time.Now()

	if err := checkOrder(req.Order); err != nil {
		log.Error("rejecting discretization order", "order", int(req.Order), "error", err)
		return Stats{}, err
	}

	g, err := grid.New(req.Dims, req.Spacing)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrDataCreation, err)
	}

	fields := &FieldData{
		Phi:        req.Phi,
		Distance:   req.Distance,
		Sources:    req.Sources,
		Extensions: req.Extensions,
	}
	if err := fields.Validate(g); err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrDataCreation, err)
	}
	if req.Mask != nil && len(req.Mask) != g.Len() {
		return Stats{}, fmt.Errorf("%w: mask has %d values, grid has %d points", ErrDataCreation, len(req.Mask), g.Len())
	}
	if req.Status != nil && len(req.Status) != g.Len() {
		return Stats{}, fmt.Errorf("%w: status has %d values, grid has %d points", ErrDataCreation, len(req.Status), g.Len())
	}
	fields.reset()

	kernel, err := NewDiscretization(req.Order, g, fields, log)
	if err != nil {
		return Stats{}, err
	}
	engine, err := fmm.New(g, kernel, kernel)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrDataCreation, err)
	}
	engine.SetLogger(log)
	defer engine.Release()

	if req.Mask != nil {
		g.ForEach(func(c grid.Coord, idx int) {
			if req.Mask[idx] < 0 {
				engine.MarkOutsideDomain(c)
			}
		})
	}

	engine.InitializeFront()
	for engine.MoreToUpdate() {
		engine.AdvanceFront()
	}

	if req.Status != nil {
		status := engine.Status()
		for idx := range req.Status {
			req.Status[idx] = status.At(idx)
		}
	}

	counts := engine.Counts()
	anomalies := kernel.Anomalies()
	stats := Stats{
		Points:                g.Len(),
		Seeds:                 counts.Seeds,
		Finalized:             counts.Finalized,
		Outside:               counts.Outside,
		NotReached:            g.Len() - counts.Finalized - counts.Outside,
		NegativeDiscriminants: anomalies.NegativeDiscriminants,
		NoUpwindNeighbors:     anomalies.NoUpwindNeighbors,
		DegenerateTransports:  anomalies.DegenerateTransports,
		UnsetUpwindValues:     anomalies.UnsetUpwindValues,
		Duration:              time.Since(start),
	}
	stats.Millis = float64(stats.Duration) / float64(time.Millisecond)

	log.Debug("fast marching complete", "stats", stats)
	return stats, nil
}

// ComputeExtensionFields3d computes the signed distance to the zero level
// set of phi and extends each source field off the interface. See Request
// for the meaning of the arguments.
func ComputeExtensionFields3d(
	distance []float64,
	extensions [][]float64,
	phi []float64,
	mask []float64,
	sources [][]float64,
	order Order,
	dims [grid.NumDims]int,
	spacing [grid.NumDims]float64,
) error {
	_, err := (&Driver{}).Run(Request{
		Distance:   distance,
		Extensions: extensions,
		Phi:        phi,
		Mask:       mask,
		Sources:    sources,
		Order:      order,
		Dims:       dims,
		Spacing:    spacing,
	})
	return err
}

// ComputeDistanceFunction3d is ComputeExtensionFields3d with no extension
// fields.
func ComputeDistanceFunction3d(
	distance []float64,
	phi []float64,
	mask []float64,
	order Order,
	dims [grid.NumDims]int,
	spacing [grid.NumDims]float64,
) error {
	return ComputeExtensionFields3d(distance, nil, phi, mask, nil, order, dims, spacing)
}
