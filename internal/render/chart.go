package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
)

// WriteSweepChart renders an HTML line chart of the yaw and pitch spans
// against distance, with the sensor's apertures as flat limit lines.
func WriteSweepChart(w io.Writer, title string, samples []geometry.SweepSample, fov geometry.FieldOfView) error {
	if len(samples) == 0 {
		return errors.New("sweep chart: no samples")
	}

	x := make([]string, len(samples))
	yaw := make([]opts.LineData, len(samples))
	pitch := make([]opts.LineData, len(samples))
	hLimit := make([]opts.LineData, len(samples))
	vLimit := make([]opts.LineData, len(samples))
	covered := 0
	for i, s := range samples {
		x[i] = fmt.Sprintf("%.2f", s.Distance)
		yaw[i] = opts.LineData{Value: s.YawSpanDeg}
		pitch[i] = opts.LineData{Value: s.PitchSpanDeg}
		hLimit[i] = opts.LineData{Value: fov.HorizontalDeg}
		vLimit[i] = opts.LineData{Value: fov.VerticalDeg}
		if s.Covered {
			covered++
		}
	}

	subtitle := fmt.Sprintf("FOV %.0f°×%.0f°, %d/%d distances cover the volume", fov.HorizontalDeg, fov.VerticalDeg, covered, len(samples))
	if first, ok := geometry.FirstCovered(samples); ok {
		subtitle += fmt.Sprintf(", first at %.2f m", first.Distance)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Span (°)", NameLocation: "middle", NameGap: 35}),
	)
	line.SetXAxis(x).
		AddSeries("yaw span", yaw).
		AddSeries("pitch span", pitch).
		AddSeries("horizontal FOV", hLimit, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})).
		AddSeries("vertical FOV", vLimit, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render sweep chart: %w", err)
	}
	return nil
}
