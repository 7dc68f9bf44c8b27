package domain

import (
	"fmt"
	"strings"
	"time"
)

// AxisKind is the kind of value an axis extracts from a brew.
type AxisKind int

const (
	AxisNumeric AxisKind = iota
	AxisCategorical
	AxisTemporal
)

// String returns a human-readable axis kind.
func (k AxisKind) String() string {
	switch k {
	case AxisNumeric:
		return "numeric"
	case AxisCategorical:
		return "categorical"
	case AxisTemporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// AxisRef identifies an axis by kind and field name, e.g. numeric/rating.
type AxisRef struct {
	Kind  AxisKind
	Field string
}

// String renders the ref as "kind/field".
func (a AxisRef) String() string {
	return a.Kind.String() + "/" + a.Field
}

// ParseAxisKind converts a kind name to an AxisKind.
func ParseAxisKind(name string) (AxisKind, error) {
	switch strings.ToLower(name) {
	case "numeric":
		return AxisNumeric, nil
	case "categorical":
		return AxisCategorical, nil
	case "temporal":
		return AxisTemporal, nil
	default:
		return 0, fmt.Errorf("unknown axis kind %q", name)
	}
}

// ChartType is the presentation shape chosen for an axis pair.
type ChartType int

const (
	ChartScatter ChartType = iota
	ChartBar
	ChartTimeSeries
)

// String returns the chart type name.
func (c ChartType) String() string {
	switch c {
	case ChartScatter:
		return "scatterPlot"
	case ChartBar:
		return "barChart"
	case ChartTimeSeries:
		return "timeSeries"
	default:
		return "unknown"
	}
}

// ResolveChartType maps an axis kind pair to a chart type. It is total:
// every combination resolves, with bar charts as the default.
func ResolveChartType(x, y AxisKind) ChartType {
	switch {
	case x == AxisNumeric && y == AxisNumeric:
		return ChartScatter
	case x == AxisTemporal && y == AxisNumeric,
		x == AxisNumeric && y == AxisTemporal,
		x == AxisTemporal && y == AxisTemporal:
		return ChartTimeSeries
	default:
		return ChartBar
	}
}

// ChartConfiguration is a saved chart the user has built.
type ChartConfiguration struct {
	ID              string
	Title           string
	XAxis           AxisRef
	YAxis           AxisRef
	ShowAverageLine bool
	ShowTrendLine   bool
	CreatedAt       time.Time
}

// ChartType derives the chart type from the current axes. It is never stored.
func (c *ChartConfiguration) ChartType() ChartType {
	return ResolveChartType(c.XAxis.Kind, c.YAxis.Kind)
}
