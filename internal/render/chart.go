// internal/render/chart.go
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"mcp-tpn-planner/internal/models"
)

// HTML writes one line chart per schedule category, each nutrient a series
// over the schedule days. Rows without any numeric value are left out.
func HTML(w io.Writer, schedules ...*models.Schedule) error {
	page := components.NewPage()
	for _, s := range schedules {
		for _, line := range categoryCharts(s) {
			page.AddCharts(line)
		}
	}
	return page.Render(w)
}

func categoryCharts(s *models.Schedule) []*charts.Line {
	xAxis := make([]string, s.TotalDays)
	for i := range xAxis {
		xAxis[i] = "Day " + strconv.Itoa(i+1)
	}

	var out []*charts.Line
	byCategory := make(map[string]*charts.Line)
	for _, row := range s.Rows {
		data, ok := lineData(row)
		if !ok {
			continue
		}
		line, exists := byCategory[row.Category]
		if !exists {
			line = charts.NewLine()
			line.SetGlobalOptions(
				charts.WithTitleOpts(opts.Title{
					Title:    fmt.Sprintf("%s: %s", s.Patient.Name, row.Category),
					Subtitle: fmt.Sprintf("%s, reference weight %g kg", s.Patient.Variant, s.Patient.ReferenceValue),
				}),
				charts.WithTooltipOpts(opts.Tooltip{
					Show: opts.Bool(true),
				}),
				charts.WithLegendOpts(opts.Legend{
					Show: opts.Bool(true),
				}),
			)
			line.SetXAxis(xAxis)
			byCategory[row.Category] = line
			out = append(out, line)
		}
		line.AddSeries(fmt.Sprintf("%s (%s)", row.Nutrient, row.Unit), data)
	}
	return out
}

func lineData(row models.Row) ([]opts.LineData, bool) {
	data := make([]opts.LineData, len(row.Cells))
	hasValue := false
	for i, c := range row.Cells {
		if c.Value == nil {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		hasValue = true
		data[i] = opts.LineData{Value: *c.Value}
	}
	return data, hasValue
}
