package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pthm-cable/levelset/config"
	"github.com/pthm-cable/levelset/runner"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV files and config snapshot (overrides output.dir)")
	shape := flag.String("shape", "", "Override shape.kind (sphere, box, cylinder, plane, spheres)")
	fields := flag.Bool("fields", false, "Write per-point field CSVs")
	sweep := flag.String("sweep", "", "Comma-separated refinement factors for a convergence study, e.g. 1,2,4")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *shape != "" {
		cfg.Shape.Kind = *shape
	}
	if *fields {
		cfg.Output.Fields = true
	}

	logger, closer := runner.NewLogger(cfg.Log, os.Stdout)
	defer closer.Close()
	slog.SetDefault(logger)

	factors := []int{1}
	if *sweep != "" {
		var err error
		if factors, err = parseFactors(*sweep); err != nil {
			slog.Error("invalid -sweep", "value", *sweep, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("starting run",
		"shape", cfg.Shape.Kind,
		"dims", cfg.Grid.Dims,
		"spacing", cfg.Grid.Spacing,
		"points", cfg.Derived.Points,
		"sources", cfg.Derived.NumExt,
		"masked", cfg.Derived.Masked,
		"factors", factors,
	)

	if _, err := runner.Sweep(cfg, factors, runner.Options{OutputDir: *outputDir, Logger: logger}); err != nil {
		slog.Error("run failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func parseFactors(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
