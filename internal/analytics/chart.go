package analytics

import (
	"fmt"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Mode says how a chart's values were computed.
type Mode int

const (
	// ModePoints plots one point per brew.
	ModePoints Mode = iota
	// ModeMean averages a numeric axis per group or bucket.
	ModeMean
	// ModeCount counts brews per group or bucket; used when neither axis
	// is numeric.
	ModeCount
)

// ChartData is the render-ready result of a chart configuration. Exactly
// one of Points, Groups or Buckets is populated, according to ChartType.
type ChartData struct {
	ChartType domain.ChartType
	Mode      Mode
	Title     string
	XTitle    string
	YTitle    string

	Points  []Point
	Groups  []Group
	Buckets []Bucket

	Average *float64 // set when the average line is requested and data exists
	Trend   *Trend   // scatter plots only
}

// Empty reports whether there is nothing to plot.
func (d *ChartData) Empty() bool {
	return len(d.Points) == 0 && len(d.Groups) == 0 && len(d.Buckets) == 0
}

// Trend is a least-squares line y = Slope*x + Intercept.
type Trend struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at x.
func (t Trend) At(x float64) float64 { return t.Slope*x + t.Intercept }

// Build computes chart data for a configuration over brews. The chart type
// is always re-derived from the axes. Only unknown axes are an error.
func Build(cfg *domain.ChartConfiguration, brews []*domain.Brew, cal Calendar) (*ChartData, error) {
	x, err := AxisFor(cfg.XAxis)
	if err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	y, err := AxisFor(cfg.YAxis)
	if err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}

	data := &ChartData{
		ChartType: cfg.ChartType(),
		Title:     cfg.Title,
		XTitle:    x.Title(),
		YTitle:    y.Title(),
	}
	if data.Title == "" {
		data.Title = y.Title() + " by " + x.Title()
	}

	switch xa := x.(type) {
	case NumericAxis:
		switch ya := y.(type) {
		case NumericAxis:
			data.Mode = ModePoints
			data.Points = Scatter(xa, ya, brews)
		case CategoricalAxis:
			data.Mode = ModeMean
			data.Groups = GroupByCategory(ya, xa, brews)
		case TemporalAxis:
			data.Mode = ModeMean
			data.Buckets = BucketByTime(ya, xa, brews, cal)
		}
	case CategoricalAxis:
		switch ya := y.(type) {
		case NumericAxis:
			data.Mode = ModeMean
			data.Groups = GroupByCategory(xa, ya, brews)
		default:
			data.Mode = ModeCount
			data.Groups = CountByCategory(xa, y, brews, cal)
		}
	case TemporalAxis:
		switch ya := y.(type) {
		case NumericAxis:
			data.Mode = ModeMean
			data.Buckets = BucketByTime(xa, ya, brews, cal)
		case CategoricalAxis:
			data.Mode = ModeCount
			data.Groups = bucketsAsGroups(CountByTime(xa, y, brews, cal))
		case TemporalAxis:
			data.Mode = ModeCount
			data.Buckets = CountByTime(xa, y, brews, cal)
		}
	}

	if cfg.ShowAverageLine {
		data.Average = data.average()
	}
	if cfg.ShowTrendLine && data.ChartType == domain.ChartScatter {
		data.Trend = fitTrend(data.Points)
	}
	return data, nil
}

// bucketsAsGroups keeps chronological order for bar charts over time.
func bucketsAsGroups(buckets []Bucket) []Group {
	out := make([]Group, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, Group{Label: b.Label, Value: b.Value, Count: b.Count})
	}
	return out
}

// average is the member-weighted mean of plotted values in mean mode, the
// mean y in point mode, and the mean count per group in count mode.
func (d *ChartData) average() *float64 {
	var sum, n float64
	switch {
	case len(d.Points) > 0:
		for _, p := range d.Points {
			sum += p.Y
			n++
		}
	case len(d.Groups) > 0:
		for _, g := range d.Groups {
			if d.Mode == ModeMean {
				sum += g.Value * float64(g.Count)
				n += float64(g.Count)
			} else {
				sum += g.Value
				n++
			}
		}
	case len(d.Buckets) > 0:
		for _, b := range d.Buckets {
			if d.Mode == ModeMean {
				sum += b.Value * float64(b.Count)
				n += float64(b.Count)
			} else {
				sum += b.Value
				n++
			}
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / n
	return &avg
}

// fitTrend returns the least-squares line through points, or nil when the
// x values do not vary.
func fitTrend(points []Point) *Trend {
	if len(points) < 2 {
		return nil
	}
	var sx, sy, sxx, sxy float64
	n := float64(len(points))
	for _, p := range points {
		sx += p.X
		sy += p.Y
		sxx += p.X * p.X
		sxy += p.X * p.Y
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return nil
	}
	slope := (n*sxy - sx*sy) / den
	return &Trend{Slope: slope, Intercept: (sy - slope*sx) / n}
}
