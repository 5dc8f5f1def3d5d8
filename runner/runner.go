// Package runner wires configuration, input sampling, the solver and
// telemetry into a single run.
package runner

import (
	"fmt"
	"log/slog"

	"github.com/deadsy/sdfx/sdf"

	"github.com/pthm-cable/levelset/config"
	"github.com/pthm-cable/levelset/extension"
	"github.com/pthm-cable/levelset/fmm"
	"github.com/pthm-cable/levelset/grid"
	"github.com/pthm-cable/levelset/levelset"
	"github.com/pthm-cable/levelset/telemetry"
)

// Inputs are the sampled fields for one run.
type Inputs struct {
	Grid    grid.Grid
	Origin  [3]float64
	Shape   sdf.SDF3
	Phi     []float64
	Mask    []float64 // nil when the mask is disabled
	Sources [][]float64
}

// Result holds a run's outputs and diagnostics.
type Result struct {
	Inputs
	Distance   []float64
	Extensions [][]float64
	Status     []fmm.Status
	Stats      extension.Stats
	Accuracy   telemetry.Accuracy // over every finalized point
	Band       telemetry.Accuracy // finalized points within two cells of the interface
}

// Options control a run beyond what the config holds.
type Options struct {
	OutputDir string // overrides cfg.Output.Dir when set
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ShapeParams converts the shape section of cfg.
func ShapeParams(s config.ShapeConfig) levelset.Params {
	return levelset.Params{
		Kind:   s.Kind,
		Center: s.Center,
		Radius: s.Radius,
		Size:   s.Size,
		Height: s.Height,
		Round:  s.Round,
		Normal: s.Normal,
		Second: s.Second,
	}
}

// BuildInputs samples phi, the mask and every source field on the
// configured grid.
func BuildInputs(cfg *config.Config) (Inputs, error) {
	g, err := grid.New(cfg.Grid.Dims, cfg.Grid.Spacing)
	if err != nil {
		return Inputs{}, err
	}
	shape, err := levelset.New(ShapeParams(cfg.Shape))
	if err != nil {
		return Inputs{}, err
	}

	in := Inputs{
		Grid:   g,
		Origin: cfg.Grid.Origin,
		Shape:  shape,
		Phi:    levelset.Sample(g, cfg.Grid.Origin, shape),
	}

	if cfg.Mask.Radius > 0 {
		domain, err := levelset.New(levelset.Params{
			Kind:   levelset.KindSphere,
			Center: cfg.Mask.Center,
			Radius: cfg.Mask.Radius,
		})
		if err != nil {
			return Inputs{}, fmt.Errorf("building mask: %w", err)
		}
		in.Mask = levelset.Mask(g, cfg.Grid.Origin, domain)
	}

	for i, src := range cfg.Extension.Sources {
		var f []float64
		switch src.Kind {
		case "coordinate_x":
			f = levelset.Coordinate(g, cfg.Grid.Origin, 0)
		case "coordinate_y":
			f = levelset.Coordinate(g, cfg.Grid.Origin, 1)
		case "coordinate_z":
			f = levelset.Coordinate(g, cfg.Grid.Origin, 2)
		case "constant":
			f = levelset.Constant(g, src.Value)
		case "phi":
			f = append([]float64(nil), in.Phi...)
		default:
			return Inputs{}, fmt.Errorf("extension source %d: unknown kind %q", i, src.Kind)
		}
		in.Sources = append(in.Sources, f)
	}
	return in, nil
}

// Solve runs the solver on in and scores the result.
func Solve(in Inputs, order extension.Order, log *slog.Logger) (*Result, error) {
	res, err := solve(in, order, log)
	if err != nil {
		return nil, err
	}
	res.Score()
	return res, nil
}

func solve(in Inputs, order extension.Order, log *slog.Logger) (*Result, error) {
	res := &Result{
		Inputs:     in,
		Distance:   make([]float64, in.Grid.Len()),
		Extensions: make([][]float64, len(in.Sources)),
		Status:     make([]fmm.Status, in.Grid.Len()),
	}
	for i := range res.Extensions {
		res.Extensions[i] = make([]float64, in.Grid.Len())
	}

	stats, err := extension.NewDriver(log).Run(extension.Request{
		Distance:   res.Distance,
		Extensions: res.Extensions,
		Phi:        in.Phi,
		Mask:       in.Mask,
		Sources:    in.Sources,
		Status:     res.Status,
		Order:      order,
		Dims:       in.Grid.Dims,
		Spacing:    in.Grid.Spacing,
	})
	if err != nil {
		return nil, err
	}
	res.Stats = stats
	return res, nil
}

// Score compares the distance with phi, which is the exact signed distance
// for the shapes levelset builds. Points the front never reached keep their
// default and are left out.
func (r *Result) Score() {
	finalized := func(idx int) bool { return r.Status[idx] == fmm.Finalized }
	r.Accuracy = telemetry.ComputeAccuracy(r.Distance, r.Phi, finalized)

	h := max(r.Grid.Spacing[0], r.Grid.Spacing[1], r.Grid.Spacing[2])
	band := telemetry.Band(r.Phi, 2*h)
	r.Band = telemetry.ComputeAccuracy(r.Distance, r.Phi, func(idx int) bool {
		return finalized(idx) && band(idx)
	})
}

// Run executes one configured run: sample, solve, score and export.
func Run(cfg *config.Config, opts Options) (*Result, error) {
	results, err := Sweep(cfg, []int{1}, opts)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Sweep repeats the configured run with the grid refined by each factor,
// keeping the physical extent fixed, and writes one runs.csv row per level.
// It is the convergence study for the first-order scheme.
func Sweep(cfg *config.Config, factors []int, opts Options) ([]*Result, error) {
	log := opts.logger()

	dir := cfg.Output.Dir
	if opts.OutputDir != "" {
		dir = opts.OutputDir
	}
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		return nil, err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return nil, err
	}

	timer := telemetry.NewPhaseTimer()
	results := make([]*Result, 0, len(factors))
	hs := make([]float64, 0, len(factors))
	for i, f := range factors {
		if f < 1 {
			return nil, fmt.Errorf("refinement factor %d must be at least 1", f)
		}
		level := refine(cfg, f)

		timer.StartPhase(telemetry.PhaseSample)
		in, err := BuildInputs(level)
		if err != nil {
			return nil, err
		}

		timer.StartPhase(telemetry.PhaseSolve)
		res, err := solve(in, extension.Order(level.Solver.Order), log)
		if err != nil {
			return nil, err
		}

		timer.StartPhase(telemetry.PhaseAccuracy)
		res.Score()

		log.Info("run complete",
			"shape", level.Shape.Kind,
			"dims", level.Grid.Dims,
			"points", level.Derived.Points,
			"h", level.Derived.MinH,
			"stats", res.Stats,
			"accuracy", res.Accuracy,
			"band", res.Band,
		)

		timer.StartPhase(telemetry.PhaseExport)
		if err := om.WriteRun(telemetry.NewRunRecord(level.Shape.Kind, in.Grid, res.Stats, res.Accuracy, res.Band)); err != nil {
			return nil, err
		}
		// Fields are only exported for the last level.
		if level.Output.Fields && i == len(factors)-1 {
			if err := om.WriteFields(telemetry.Fields{
				Grid:       in.Grid,
				Origin:     in.Origin,
				Phi:        in.Phi,
				Distance:   res.Distance,
				Exact:      in.Phi,
				Sources:    in.Sources,
				Extensions: res.Extensions,
			}); err != nil {
				return nil, err
			}
		}
		results = append(results, res)
		hs = append(hs, level.Derived.MinH)
	}
	timer.Stop()
	timer.LogStats(log)

	if len(results) > 1 {
		means := make([]float64, len(results))
		for i, r := range results {
			means[i] = r.Accuracy.Mean
		}
		if p, ok := telemetry.ConvergenceOrder(hs, means); ok {
			log.Info("convergence", "levels", len(results), "order", p)
		}
	}
	if err := om.WritePhases(timer.Records()); err != nil {
		return nil, err
	}
	return results, nil
}

// refine returns a copy of cfg whose grid has f times as many cells along
// each axis over the same extent.
func refine(cfg *config.Config, f int) *config.Config {
	out := *cfg
	for axis := range 3 {
		out.Grid.Dims[axis] = (cfg.Grid.Dims[axis]-1)*f + 1
		out.Grid.Spacing[axis] = cfg.Grid.Spacing[axis] / float64(f)
	}
	out.Derived.Points = out.Grid.Dims[0] * out.Grid.Dims[1] * out.Grid.Dims[2]
	out.Derived.MinH = min(out.Grid.Spacing[0], out.Grid.Spacing[1], out.Grid.Spacing[2])
	return &out
}
