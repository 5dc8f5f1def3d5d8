package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/levelset/config"
	"github.com/pthm-cable/levelset/extension"
	"github.com/pthm-cable/levelset/grid"
)

// RunRecord is one row of runs.csv: solver counters plus accuracy against
// the exact distance.
type RunRecord struct {
	Shape      string  `csv:"shape"`
	Nx         int     `csv:"nx"`
	Ny         int     `csv:"ny"`
	Nz         int     `csv:"nz"`
	H          float64 `csv:"h"`
	Points     int     `csv:"points"`
	Seeds      int     `csv:"seeds"`
	Finalized  int     `csv:"finalized"`
	Outside    int     `csv:"outside"`
	NotReached int     `csv:"not_reached"`
	Anomalies  int     `csv:"anomalies"`
	SolveMs    float64 `csv:"solve_ms"`

	DistMeanErr float64 `csv:"dist_mean_err"`
	DistMaxErr  float64 `csv:"dist_max_err"`
	DistRMSErr  float64 `csv:"dist_rms_err"`
	BandMaxErr  float64 `csv:"band_max_err"`
}

// NewRunRecord assembles a run row.
func NewRunRecord(shape string, g grid.Grid, s extension.Stats, all, band Accuracy) RunRecord {
	return RunRecord{
		Shape:       shape,
		Nx:          g.Dims[0],
		Ny:          g.Dims[1],
		Nz:          g.Dims[2],
		H:           min(g.Spacing[0], g.Spacing[1], g.Spacing[2]),
		Points:      s.Points,
		Seeds:       s.Seeds,
		Finalized:   s.Finalized,
		Outside:     s.Outside,
		NotReached:  s.NotReached,
		Anomalies:   s.NegativeDiscriminants + s.NoUpwindNeighbors + s.DegenerateTransports + s.UnsetUpwindValues,
		SolveMs:     s.Millis,
		DistMeanErr: all.Mean,
		DistMaxErr:  all.Max,
		DistRMSErr:  all.RMS,
		BandMaxErr:  band.Max,
	}
}

// FieldRecord is one grid point in fields.csv.
type FieldRecord struct {
	I        int     `csv:"i"`
	J        int     `csv:"j"`
	K        int     `csv:"k"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	Phi      float64 `csv:"phi"`
	Distance float64 `csv:"distance"`
	Exact    float64 `csv:"exact"`
}

// ExtensionRecord is one grid point of one extension field.
type ExtensionRecord struct {
	I         int     `csv:"i"`
	J         int     `csv:"j"`
	K         int     `csv:"k"`
	Source    float64 `csv:"source"`
	Extension float64 `csv:"extension"`
}

// Fields bundles the arrays exported per point.
type Fields struct {
	Grid       grid.Grid
	Origin     [3]float64
	Phi        []float64
	Distance   []float64
	Exact      []float64
	Sources    [][]float64
	Extensions [][]float64
}

// OutputManager handles structured run output with CSV files.
type OutputManager struct {
	dir     string
	runFile *os.File

	runHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "runs.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating runs.csv: %w", err)
	}
	return &OutputManager{dir: dir, runFile: f}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteRun appends a run record to runs.csv.
func (om *OutputManager) WriteRun(r RunRecord) error {
	if om == nil {
		return nil
	}

	records := []RunRecord{r}
	if !om.runHeaderWritten {
		if err := gocsv.Marshal(records, om.runFile); err != nil {
			return fmt.Errorf("writing run: %w", err)
		}
		om.runHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.runFile); err != nil {
			return fmt.Errorf("writing run: %w", err)
		}
	}
	return nil
}

// WritePhases writes phase timings to phases.csv.
func (om *OutputManager) WritePhases(records []PhaseRecord) error {
	if om == nil {
		return nil
	}
	return writeCSV(filepath.Join(om.dir, "phases.csv"), records)
}

// WriteFields writes fields.csv and one extension_<n>.csv per extension
// field.
func (om *OutputManager) WriteFields(f Fields) error {
	if om == nil {
		return nil
	}

	g := f.Grid
	rows := make([]FieldRecord, 0, g.Len())
	g.ForEach(func(c grid.Coord, idx int) {
		p := g.Position(c, f.Origin)
		r := FieldRecord{
			I: c[0], J: c[1], K: c[2],
			X: p[0], Y: p[1], Z: p[2],
			Phi:      f.Phi[idx],
			Distance: f.Distance[idx],
		}
		if f.Exact != nil {
			r.Exact = f.Exact[idx]
		}
		rows = append(rows, r)
	})
	if err := writeCSV(filepath.Join(om.dir, "fields.csv"), rows); err != nil {
		return err
	}

	for n := range f.Extensions {
		ext := make([]ExtensionRecord, 0, g.Len())
		g.ForEach(func(c grid.Coord, idx int) {
			ext = append(ext, ExtensionRecord{
				I: c[0], J: c[1], K: c[2],
				Source:    f.Sources[n][idx],
				Extension: f.Extensions[n][idx],
			})
		})
		name := fmt.Sprintf("extension_%d.csv", n)
		if err := writeCSV(filepath.Join(om.dir, name), ext); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := gocsv.MarshalFile(records, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil || om.runFile == nil {
		return nil
	}
	return om.runFile.Close()
}
