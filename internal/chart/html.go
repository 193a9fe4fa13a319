package chart

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

const (
	// chartID is fixed so repeated renders are byte-identical.
	chartID        = "punctuation_frequency"
	pixelsPerInch  = 96
	labelRotation  = 45
	htmlLineWidth  = 2
	htmlSymbolSize = 7
)

// RenderHTML renders the same chart as RenderPNG as an interactive
// ECharts page.
func (r *Renderer) RenderHTML(records []punctuation.Record, categories []punctuation.Category) ([]byte, error) {
	data, err := Build(records, categories)
	if err != nil {
		return nil, err
	}

	line := r.newLine(data)

	var buf bytes.Buffer

	err = line.Render(&buf)
	if err != nil {
		return nil, fmt.Errorf("render html chart: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) newLine(data Data) *charts.Line {
	theme := SchemeFor(r.opts.Theme)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       r.opts.Title,
			ChartID:         chartID,
			Width:           pixels(r.opts.WidthInches),
			Height:          pixels(r.opts.HeightInches),
			BackgroundColor: theme.Background,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      r.opts.Title,
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: theme.Text},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Type:      "scroll",
			Top:       "8%",
			TextStyle: &opts.TextStyle{Color: theme.TextMuted},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: r.opts.XLabel,
			AxisLabel: &opts.AxisLabel{
				Color:    theme.TextMuted,
				Rotate:   labelRotation,
				Interval: "0",
			},
			AxisLine: &opts.AxisLine{LineStyle: &opts.LineStyle{Color: theme.Axis}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      r.opts.YLabel,
			AxisLabel: &opts.AxisLabel{Color: theme.TextMuted},
			AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: theme.Axis}},
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Color: theme.Grid},
			},
		}),
		charts.WithGridOpts(opts.Grid{Top: "18%", Bottom: "20%", ContainLabel: opts.Bool(true)}),
	)
	line.SetXAxis(data.Labels)

	for _, s := range data.Series {
		points := make([]opts.LineData, len(s.Values))
		for j, v := range s.Values {
			points[j] = opts.LineData{Value: v}
		}

		c := theme.CategoryColor(s.Category)
		line.AddSeries(s.Name, points,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(true),
				Symbol:     "circle",
				SymbolSize: htmlSymbolSize,
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: c}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: c, Width: htmlLineWidth}),
		)
	}

	return line
}

func pixels(inches float64) string {
	return strconv.Itoa(int(inches*pixelsPerInch)) + "px"
}
