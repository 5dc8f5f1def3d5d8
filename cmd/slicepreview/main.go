// Distance field slice viewer - interactive visualization with sliders.
//
// Usage: go run ./cmd/slicepreview [-config run.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/levelset/config"
	"github.com/pthm-cable/levelset/extension"
	"github.com/pthm-cable/levelset/grid"
	"github.com/pthm-cable/levelset/runner"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// view selects the field drawn in the preview.
type view int

const (
	viewDistance view = iota
	viewError
	viewExtension
	numViews
)

func (v view) String() string {
	switch v {
	case viewDistance:
		return "distance"
	case viewError:
		return "error |d - phi|"
	case viewExtension:
		return "extension 0"
	}
	return "?"
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rl.InitWindow(windowWidth, windowHeight, "Distance Field Slice Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	res, err := solve(cfg, log)
	if err != nil {
		slog.Error("initial solve failed", "error", err)
		os.Exit(1)
	}

	nx, ny := res.Grid.Dims[0], res.Grid.Dims[1]
	img := rl.GenImageColor(nx, ny, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	slice := res.Grid.Dims[2] / 2
	current := viewDistance
	radius := float32(cfg.Shape.Radius)
	needsRedraw := true

	for !rl.WindowShouldClose() {
		if needsRedraw {
			updateTexture(texture, sliceValues(res, current, slice))
			needsRedraw = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(nx), Height: float32(ny)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		s := res.Stats
		rl.DrawText(fmt.Sprintf("Finalized: %d  Outside: %d  Not reached: %d", s.Finalized, s.Outside, s.NotReached), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Max err: %.4f  Band max err: %.4f  Solve: %.1f ms", res.Accuracy.Max, res.Band.Max, s.Millis), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Anomalies: neg disc %d  no upwind %d  degenerate %d  unset upwind %d",
			s.NegativeDiscriminants, s.NoUpwindNeighbors, s.DegenerateTransports, s.UnsetUpwindValues), 15, statsY+40, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Fast Marching Slice", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Slice slider
		rl.DrawText("Slice (k index)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSlice := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", fmt.Sprintf("%d", res.Grid.Dims[2]-1),
			float32(slice), 0, float32(res.Grid.Dims[2]-1),
		)
		rl.DrawText(fmt.Sprintf("%d", slice), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newSlice) != slice {
			slice = int(newSlice)
			needsRedraw = true
		}
		panelY += 35

		// Radius slider, applied on Solve
		rl.DrawText("Shape radius", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		radius = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.05", "1.0",
			radius, 0.05, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", radius), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Solve") {
			cfg.Shape.Radius = float64(radius)
			if next, err := solve(cfg, log); err != nil {
				slog.Warn("solve failed", "error", err)
			} else {
				res = next
				needsRedraw = true
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Next View") {
			current = (current + 1) % numViews
			needsRedraw = true
		}
		panelY += 45

		rl.DrawText(fmt.Sprintf("View: %s", current), int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(fmt.Sprintf("Shape: %s", cfg.Shape.Kind), int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 20
		rl.DrawText(fmt.Sprintf("Grid: %v  h: %.3f", res.Grid.Dims, res.Grid.Spacing[0]), int32(panelX), int32(panelY), 16, rl.DarkGray)

		rl.DrawText("Blue = negative, red = positive, dark = interface", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		rl.EndDrawing()
	}
}

func solve(cfg *config.Config, log *slog.Logger) (*runner.Result, error) {
	in, err := runner.BuildInputs(cfg)
	if err != nil {
		return nil, err
	}
	return runner.Solve(in, extension.Order(cfg.Solver.Order), log)
}

// sliceValues extracts the k-th z slice of the selected field, row major in
// (i, j).
func sliceValues(res *runner.Result, v view, k int) []float64 {
	g := res.Grid
	out := make([]float64, 0, g.Dims[0]*g.Dims[1])
	for j := range g.Dims[1] {
		for i := range g.Dims[0] {
			idx := g.Index(grid.Coord{i, j, k})
			switch v {
			case viewError:
				out = append(out, math.Abs(res.Distance[idx]-res.Phi[idx]))
			case viewExtension:
				if len(res.Extensions) == 0 {
					out = append(out, 0)
					continue
				}
				out = append(out, res.Extensions[0][idx])
			default:
				out = append(out, res.Distance[idx])
			}
		}
	}
	return out
}

// updateTexture updates the GPU texture from slice values with a diverging
// colormap scaled to the largest magnitude.
func updateTexture(texture rl.Texture2D, values []float64) {
	var scale float64
	for _, x := range values {
		scale = math.Max(scale, math.Abs(x))
	}
	if scale == 0 {
		scale = 1
	}

	pixels := make([]color.RGBA, len(values))
	for i, x := range values {
		t := x / scale
		var r, g, b uint8
		if t >= 0 {
			r = uint8(40 + t*215)
			g = uint8(40 + t*80)
			b = 40
		} else {
			r = 40
			g = uint8(40 - t*120)
			b = uint8(40 - t*215)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
