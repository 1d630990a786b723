package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/cjeanneret/DepthMount/internal/catalog"
	"github.com/cjeanneret/DepthMount/internal/config"
	"github.com/cjeanneret/DepthMount/internal/debug"
	"github.com/cjeanneret/DepthMount/internal/i18n"
	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
	"github.com/cjeanneret/DepthMount/internal/logic/placement"
	"github.com/cjeanneret/DepthMount/internal/render"
)

// Overrides are operator inputs that take precedence over the config file.
// Zero values mean "use config".
type Overrides struct {
	Sensor          string
	Scene           string
	Resolution      string
	HeightM         float64
	Mode            geometry.DistanceMode
	ManualDistanceM float64
	Language        string
}

// outputs lists optional files to write after planning.
type outputs struct {
	JSON      bool
	PlotPath  string
	ChartPath string
	STLPath   string
	MeshCells int
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("depthmount: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("depthmount", flag.ContinueOnError)
	fs.SetOutput(stderr)

	mode := &modeFlag{}
	cfgPath := fs.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	sensor := fs.String("sensor", "", "override sensor id from the catalog")
	scene := fs.String("scene", "", "override scene id; resets height to the scene's default unless -height is set")
	resolution := fs.String("resolution", "", "override depth resolution label (e.g. 848x480)")
	height := fs.Float64("height", 0, "override mounting height in meters (0.1-10)")
	fs.Var(mode, "mode", "distance mode: auto or manual")
	distance := fs.Float64("distance", 0, "override manual distance in meters (0.1-100)")
	lang := fs.String("lang", "", "output language (ja, en, ko or any BCP 47 tag)")
	var out outputs
	fs.BoolVar(&out.JSON, "json", false, "print the report as JSON")
	fs.StringVar(&out.PlotPath, "plot", "", "write side/top views (extension selects format, e.g. views.png)")
	fs.StringVar(&out.ChartPath, "chart", "", "write an HTML chart of angular span vs distance")
	fs.StringVar(&out.STLPath, "stl", "", "write an ASCII STL of volume, sensor and frustum")
	fs.IntVar(&out.MeshCells, "cells", render.DefaultMeshCells, "marching cubes cells for -stl")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Load configuration
	baseCfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}

	// Validate CLI overrides (only non-zero values are applied; zero means "use config default")
	if err := validateCLIOverrides(*height, *distance); err != nil {
		return fmt.Errorf("invalid CLI override: %w", err)
	}
	overrides := Overrides{
		Sensor:          *sensor,
		Scene:           *scene,
		Resolution:      *resolution,
		HeightM:         *height,
		Mode:            mode.mode,
		ManualDistanceM: *distance,
		Language:        *lang,
	}
	cfg := applyOverridesToCopy(baseCfg, overrides)

	// Initialize debug system. Logs go to stderr; stdout carries the report.
	debug.SetOutput(stderr)
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	if cfg.IsManual() {
		debug.Value("Manual distance (m)", cfg.Mount.ManualDistanceM)
	}

	debug.Step(1, "Loading catalog")
	catPath := cfg.CatalogPath(*cfgPath)
	cat, err := catalog.Load(catPath)
	if err != nil {
		return fmt.Errorf("load catalog failed: %w", err)
	}
	debug.Value("Catalog", catPath)
	debug.Value("Sensors", cat.SensorIDs())
	debug.Value("Scenes", cat.SceneIDs())

	debug.Step(2, "Resolving selection")
	req, err := resolveRequest(cfg, cat, overrides)
	if err != nil {
		return err
	}

	rep, err := placement.Plan(req, cfg.SearchOptions())
	if err != nil {
		return err
	}

	debug.Summary(debug.Fmt("%s: %d warning(s)", rep.SceneID, len(rep.Warnings)))

	lng := i18n.Match(cfg.Defaults.Language)
	if out.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		printReport(stdout, rep, req, lng)
	}

	return writeOutputs(out, rep, req)
}

// resolveRequest picks sensor, scene and resolution from the catalog and
// builds the mounting parameters.
func resolveRequest(cfg *config.Config, cat *catalog.Catalog, overrides Overrides) (placement.Request, error) {
	var req placement.Request

	sensor := cat.DefaultSensor()
	if id := cfg.Selection.Sensor; id != "" {
		s, err := cat.Sensor(id)
		if err != nil {
			return req, err
		}
		sensor = s
	}
	scene := cat.DefaultScene()
	if id := cfg.Selection.Scene; id != "" {
		s, err := cat.Scene(id)
		if err != nil {
			return req, err
		}
		scene = s
	}

	// A sensor override clears the configured label, so this picks the
	// sensor's first mode unless -resolution names one.
	res, err := sensor.Resolution(cfg.Selection.Resolution)
	if err == nil {
		req.Resolution = &res
	} else if overrides.Resolution != "" {
		return req, err
	}

	mount := cfg.MountingParameters()
	if overrides.Scene != "" && overrides.HeightM == 0 {
		if h, ok := scene.DefaultHeight(); ok {
			mount.HeightM = h
			debug.Info("Height reset to scene default: %.2f m", h)
		}
	}

	req.Sensor = sensor
	req.Scene = scene
	req.Mount = mount
	debug.Value("Selection", debug.Fmt("%s / %s", sensor.ID, scene.ID))
	if req.Resolution != nil {
		debug.Live("Depth resolution %s", req.Resolution.Name())
	}
	return req, nil
}

func printReport(w io.Writer, rep *placement.Report, req placement.Request, lng i18n.Lang) {
	m := i18n.For(lng)
	p := lng.Printer()

	modeLabel := m.ModeAuto
	if rep.Verdict.Mode == geometry.DistanceManual {
		modeLabel = m.ModeManual
	}

	fmt.Fprintf(w, "%s\n", m.AppName)
	fmt.Fprintf(w, "%s: %s (%s)\n", m.SensorLabel, req.Sensor.Name, rep.SensorID)
	fmt.Fprintf(w, "%s: %s (%s)\n", m.SceneLabel, req.Scene.Name, rep.SceneID)
	fmt.Fprintf(w, "%s: %s\n\n", m.ModeLabel, modeLabel)

	if sol := rep.Verdict.Solution; sol != nil {
		fmt.Fprintf(w, "%s\n", m.OverlayTitle)
		fmt.Fprint(w, p.Sprintf("  %s %d %s\n", m.AxisX, placement.RoundMm(sol.LocalOffsetM.X), m.DistanceUnit))
		fmt.Fprint(w, p.Sprintf("  %s %d %s\n", m.AxisY, placement.RoundMm(sol.LocalOffsetM.Y), m.DistanceUnit))
		fmt.Fprint(w, p.Sprintf("  %s %d %s\n", m.AxisZ, placement.RoundMm(sol.LocalOffsetM.Z), m.DistanceUnit))
		fmt.Fprintf(w, "  %s %.1f%s\n", m.TiltLabel, sol.TiltDeg, m.AngleUnit)
		fmt.Fprint(w, p.Sprintf("  %s %d %s\n", m.RequiredRangeLabel, placement.RoundMm(rep.RequiredRangeM), m.DistanceUnit))
		fmt.Fprint(w, p.Sprintf("  %s %d %s\n", m.MaxRangeLabel, placement.RoundMm(rep.SensorMaxRangeM), m.DistanceUnit))
		if fp := rep.Footprint; fp != nil {
			fmt.Fprintf(w, "  %s: %.1f × %.1f mm/px\n", rep.Resolution, fp.HorizontalMm, fp.VerticalMm)
		}
	}
	fmt.Fprintf(w, "%s: %s\n", m.CoverageLabel, i18n.FormatCoverage(rep.CoverageRatio, lng))

	for _, warn := range rep.Warnings {
		fmt.Fprintln(w, warningText(m, warn))
	}
}

func warningText(m i18n.Messages, w placement.Warning) string {
	switch w {
	case placement.WarnCoverageGap:
		return m.CoverageGap
	case placement.WarnNoSolution:
		return m.NoSolution
	case placement.WarnOutOfRange:
		return m.OutOfRange
	case placement.WarnBeyondRecommended:
		return m.BeyondRecommended
	case placement.WarnTooClose:
		return m.TooClose
	default:
		return string(w)
	}
}

// writeOutputs renders the optional files. Renders that need a frustum are
// skipped when there is no solution.
func writeOutputs(out outputs, rep *placement.Report, req placement.Request) error {
	sol := rep.Verdict.Solution
	debug.Trace("outputs: plot=%q chart=%q stl=%q cells=%d", out.PlotPath, out.ChartPath, out.STLPath, out.MeshCells)

	if out.PlotPath != "" && sol != nil {
		files, err := render.SaveViews(out.PlotPath, rep.Box, *sol)
		if err != nil {
			return err
		}
		for _, f := range files {
			debug.Export("view", f)
		}
	}

	if out.ChartPath != "" {
		samples, err := geometry.CalculateSweep(rep.Box, rep.FOV, req.Mount, geometry.DefaultSweepPlan(rep.Box, rep.FOV))
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s / %s", rep.SceneID, rep.SensorID)
		if err := writeFile(out.ChartPath, func(w io.Writer) error {
			return render.WriteSweepChart(w, title, samples, rep.FOV)
		}); err != nil {
			return err
		}
		debug.Export("chart", out.ChartPath)
	}

	if out.STLPath != "" && sol != nil {
		var facets int
		if err := writeFile(out.STLPath, func(w io.Writer) error {
			n, err := render.WriteSTL(w, rep.Box, *sol, out.MeshCells)
			facets = n
			return err
		}); err != nil {
			return err
		}
		debug.Export("mesh", fmt.Sprintf("%s (%d facets)", out.STLPath, facets))
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// validateCLIOverrides checks that non-zero CLI overrides are within valid ranges.
// Zero values are ignored (they mean "use config default").
func validateCLIOverrides(height, distance float64) error {
	if height != 0 {
		if math.IsNaN(height) || math.IsInf(height, 0) || height < 0.1 || height > config.MaxHeightM {
			return fmt.Errorf("height must be between 0.1 and %.0f, got %g", config.MaxHeightM, height)
		}
	}
	if distance != 0 {
		if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0.1 || distance > geometry.DefaultCeiling {
			return fmt.Errorf("distance must be between 0.1 and %.0f, got %g", geometry.DefaultCeiling, distance)
		}
	}
	return nil
}

// applyOverrides mutates cfg with overrides. Only non-zero override values are applied.
func applyOverrides(cfg *config.Config, overrides Overrides) {
	if overrides.Sensor != "" {
		cfg.Selection.Sensor = overrides.Sensor
		cfg.Selection.Resolution = ""
	}
	if overrides.Scene != "" {
		cfg.Selection.Scene = overrides.Scene
	}
	if overrides.Resolution != "" {
		cfg.Selection.Resolution = overrides.Resolution
	}
	if overrides.HeightM > 0 {
		cfg.Mount.HeightM = overrides.HeightM
	}
	if overrides.Mode != "" {
		cfg.Mount.DistanceMode = string(overrides.Mode)
	}
	if overrides.ManualDistanceM > 0 {
		cfg.Mount.ManualDistanceM = overrides.ManualDistanceM
		// A distance without a mode means the operator wants manual placement.
		if overrides.Mode == "" {
			cfg.Mount.DistanceMode = string(geometry.DistanceManual)
		}
	}
	if overrides.Language != "" {
		cfg.Defaults.Language = overrides.Language
	}
}

// applyOverridesToCopy returns a new config with overrides applied.
// Zero values in overrides mean "use base config".
func applyOverridesToCopy(baseCfg *config.Config, overrides Overrides) *config.Config {
	cfg := *baseCfg
	applyOverrides(&cfg, overrides)
	return &cfg
}

// modeFlag implements flag.Value for -mode: empty = use config, otherwise auto or manual.
type modeFlag struct {
	mode geometry.DistanceMode
}

func (m *modeFlag) String() string {
	return string(m.mode)
}

func (m *modeFlag) Set(s string) error {
	if s == "" {
		return fmt.Errorf("mode must be auto or manual")
	}
	v, err := geometry.ParseDistanceMode(s)
	if err != nil {
		return err
	}
	m.mode = v
	return nil
}
