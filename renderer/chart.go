package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/etnz/treasury"
	charts "github.com/vicanso/go-charts/v2"
)

// FanChart renders the percentile bands of a simulation as a PNG line
// chart, one line per band level. derived selects the equity bands over
// the base asset ones.
func FanChart(r *treasury.SimulationResult, ticker string, derived bool) ([]byte, error) {
	if r.Bands == nil {
		return nil, errors.New("simulation has no percentile bands")
	}
	bands := r.Bands.Base
	if derived {
		bands = r.Bands.Derived
	}
	if len(bands) == 0 || len(bands[0]) < 2 {
		return nil, errors.New("not enough days to chart")
	}

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, band := range bands {
		for _, v := range band {
			yMin = math.Min(yMin, v)
			yMax = math.Max(yMax, v)
		}
	}
	pad := (yMax - yMin) * 0.05
	yMin = math.Max(0, yMin-pad)
	yMax += pad

	days := len(bands[0])
	xLabels := make([]string, days)
	for i := range xLabels {
		xLabels[i] = fmt.Sprintf("d%d", i)
	}
	names := make([]string, len(r.Bands.Levels))
	for i, c := range r.Bands.Levels {
		names[i] = percentile(c)
	}
	split := 12
	if days-1 < split {
		split = days - 1
	}

	title := fmt.Sprintf("%s • %s • %d paths", ticker, r.Scenario.Name, r.Request.NumPaths)
	painter, err := charts.LineRender(bands,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
