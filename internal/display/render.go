package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hammamikhairi/ottobrew/internal/analytics"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/recipe"
)

// barWidth is the length of the longest bar in a bar chart.
const barWidth = 32

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(sepStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return primaryStyle.Padding(0, 1)
		})
}

// RenderRecipeList renders recipe summaries as a table.
func RenderRecipeList(recipes []domain.RecipeSummary) string {
	if len(recipes) == 0 {
		return secondaryStyle.Render("No recipes yet.")
	}
	t := newTable("#", "Name", "Coffee", "Ratio", "Water", "Stages", "ID")
	for i, r := range recipes {
		t.Row(
			strconv.Itoa(i+1), r.Name,
			fmt.Sprintf("%d g", r.Grams), recipe.FormatRatio(r.Ratio),
			fmt.Sprintf("%d ml", r.WaterAmount), strconv.Itoa(r.StageCount), r.ID,
		)
	}
	return t.String()
}

// RenderRecipe renders a recipe with its stages, the running scale target
// after each stage, and the water balance.
func RenderRecipe(r *domain.Recipe) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(r.Name))
	b.WriteByte('\n')
	b.WriteString(secondaryStyle.Render(fmt.Sprintf("%d g · %s · %d ml · %s · grind %d · v%d",
		r.Grams, recipe.FormatRatio(r.Ratio), r.WaterAmount, formatTemp(r.Temperature), r.GrindSize, r.Version)))
	b.WriteByte('\n')

	comp := recipe.NewComposition(r.Stages)
	t := newTable("#", "Stage", "Time", "Water", "Scale")
	for i, st := range comp.Stages() {
		water := "-"
		if st.WaterAmount > 0 {
			water = fmt.Sprintf("+%d ml", st.WaterAmount)
		}
		t.Row(
			strconv.Itoa(i+1), st.Type.String(),
			fmtDuration(time.Duration(st.Seconds)*time.Second),
			water, fmt.Sprintf("%d ml", comp.CumulativeWaterThrough(i)),
		)
	}
	b.WriteString(t.String())
	b.WriteByte('\n')
	b.WriteString(RenderBalance(comp.Balance(r.WaterAmount)))
	b.WriteByte('\n')
	b.WriteString(secondaryStyle.Render("Total time " + fmtDuration(time.Duration(comp.TotalSeconds())*time.Second)))
	return b.String()
}

// RenderBalance renders a water balance in green when exact, red otherwise.
func RenderBalance(bal recipe.Balance) string {
	if bal.OK() {
		return okStyle.Render("✓ " + bal.Message())
	}
	return urgentOutputStyle.Render("✗ " + bal.Message())
}

func formatTemp(c float64) string {
	if c <= 0 {
		return "temp not set"
	}
	return strconv.FormatFloat(c, 'f', -1, 64) + "°C"
}

// RenderRoasters renders roasters as a table.
func RenderRoasters(roasters []*domain.Roaster) string {
	if len(roasters) == 0 {
		return secondaryStyle.Render("No roasters yet.")
	}
	t := newTable("Name", "Country", "Website", "ID")
	for _, r := range roasters {
		t.Row(r.Name, r.Country, r.Website, r.ID)
	}
	return t.String()
}

// RenderGrinders renders grinders as a table.
func RenderGrinders(grinders []*domain.Grinder) string {
	if len(grinders) == 0 {
		return secondaryStyle.Render("No grinders yet.")
	}
	t := newTable("Name", "Type", "Burrs", "Notes", "ID")
	for _, g := range grinders {
		t.Row(g.Name, g.GrinderType, g.BurrType, g.Notes, g.ID)
	}
	return t.String()
}

// RenderBrews renders brew history, dates shown in loc.
func RenderBrews(brews []*domain.Brew, loc *time.Location) string {
	if len(brews) == 0 {
		return secondaryStyle.Render("No brews logged yet.")
	}
	t := newTable("Date", "Recipe", "Roaster", "Rating", "Time", "TDS", "Notes", "ID")
	for _, br := range brews {
		tds := ""
		if br.TDS != nil {
			tds = strconv.FormatFloat(*br.TDS, 'f', 2, 64)
		}
		t.Row(
			br.Date.In(loc).Format("2006-01-02 15:04"),
			br.RecipeName, br.RoasterName,
			stars(br.Rating),
			fmtDuration(time.Duration(br.ActualDurationSeconds)*time.Second),
			tds, br.Notes, br.ID,
		)
	}
	return t.String()
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// RenderAxes lists every chart axis grouped by kind.
func RenderAxes(axes []analytics.Axis) string {
	t := newTable("Kind", "Field", "Title")
	for _, a := range axes {
		ref := a.Ref()
		t.Row(ref.Kind.String(), ref.Field, a.Title())
	}
	return t.String()
}

// RenderChart draws chart data for the terminal: horizontal bars for bar
// and time-series charts, a character grid for scatter plots.
func RenderChart(d *analytics.ChartData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(d.Title))
	b.WriteByte('\n')
	b.WriteString(secondaryStyle.Render(fmt.Sprintf("%s · x: %s · y: %s · %s", d.ChartType, d.XTitle, d.YTitle, modeLabel(d.Mode))))
	b.WriteByte('\n')

	if d.Empty() {
		b.WriteString(secondaryStyle.Render("Nothing to plot yet."))
		return b.String()
	}

	switch d.ChartType {
	case domain.ChartScatter:
		b.WriteString(renderScatter(d.Points))
	case domain.ChartTimeSeries:
		rows := make([]barRow, 0, len(d.Buckets))
		for _, bk := range d.Buckets {
			rows = append(rows, barRow{bk.Label, bk.Value, bk.Count})
		}
		b.WriteString(renderBars(rows, d.Mode))
	default:
		rows := make([]barRow, 0, len(d.Groups))
		for _, g := range d.Groups {
			rows = append(rows, barRow{g.Label, g.Value, g.Count})
		}
		b.WriteString(renderBars(rows, d.Mode))
	}

	if d.Average != nil {
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render(fmt.Sprintf("average %.2f", *d.Average)))
	}
	if d.Trend != nil {
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render(fmt.Sprintf("trend y = %.3fx %+.3f", d.Trend.Slope, d.Trend.Intercept)))
	}
	return b.String()
}

func modeLabel(m analytics.Mode) string {
	switch m {
	case analytics.ModePoints:
		return "one point per brew"
	case analytics.ModeCount:
		return "brew count"
	default:
		return "mean"
	}
}

type barRow struct {
	label string
	value float64
	count int
}

func renderBars(rows []barRow, mode analytics.Mode) string {
	labelW, maxV := 0, 0.0
	for _, r := range rows {
		if w := lipgloss.Width(r.label); w > labelW {
			labelW = w
		}
		maxV = math.Max(maxV, r.value)
	}

	var b strings.Builder
	for i, r := range rows {
		n := 0
		if maxV > 0 {
			n = int(math.Round(r.value / maxV * barWidth))
		}
		value := fmt.Sprintf("%.2f (n=%d)", r.value, r.count)
		if mode == analytics.ModeCount {
			value = strconv.Itoa(r.count)
		}
		pad := strings.Repeat(" ", labelW-lipgloss.Width(r.label))
		b.WriteString(labelStyle.Render(r.label+pad) + " " + barStyle.Render(strings.Repeat("█", n)) + " " + primaryStyle.Render(value))
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const (
	gridW = 48
	gridH = 12
)

func renderScatter(points []analytics.Point) string {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	grid := make([][]rune, gridH)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", gridW))
	}
	scale := func(v, lo, hi float64, n int) int {
		if hi == lo {
			return n / 2
		}
		return int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	}
	for _, p := range points {
		col := scale(p.X, minX, maxX, gridW)
		row := gridH - 1 - scale(p.Y, minY, maxY, gridH)
		if grid[row][col] == '•' {
			grid[row][col] = '●'
		} else if grid[row][col] != '●' {
			grid[row][col] = '•'
		}
	}

	var b strings.Builder
	for i, line := range grid {
		tick := "      "
		switch i {
		case 0:
			tick = fmt.Sprintf("%6.2f", maxY)
		case gridH - 1:
			tick = fmt.Sprintf("%6.2f", minY)
		}
		b.WriteString(labelStyle.Render(tick) + sepStyle.Render(" │") + barStyle.Render(string(line)))
		b.WriteByte('\n')
	}
	b.WriteString(sepStyle.Render("       └" + strings.Repeat("─", gridW)))
	b.WriteByte('\n')
	left := fmt.Sprintf("%.2f", minX)
	right := fmt.Sprintf("%.2f", maxX)
	gap := gridW - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(labelStyle.Render("        " + left + strings.Repeat(" ", gap) + right))
	return b.String()
}

// RenderSummary renders headline statistics.
func RenderSummary(s analytics.Summary) string {
	if !s.HasBrews() {
		return secondaryStyle.Render("No brews logged yet.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Brew statistics"))
	b.WriteByte('\n')
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)) + primaryStyle.Render(value))
		b.WriteByte('\n')
	}
	line("Brews", strconv.Itoa(s.TotalBrews))
	line("Average rating", fmt.Sprintf("%.2f", s.AverageRating))
	if s.AverageDuration > 0 {
		line("Average time", fmtDuration(time.Duration(s.AverageDuration*float64(time.Second))))
	}
	line("Most brewed", fmt.Sprintf("%s (%d)", s.MostBrewed, s.MostBrewedCount))
	line("Best rated", fmt.Sprintf("%s (%.2f)", s.BestRated, s.BestRatedMean))
	line("Very good or up", fmt.Sprintf("%.0f%%", s.PercentAbove(4)))

	for _, f := range []analytics.NumericField{analytics.Acidity, analytics.Bitterness, analytics.Body, analytics.Sweetness, analytics.TDS} {
		if v, ok := s.Tasting[f]; ok {
			line(analytics.NumericAxis{Field: f}.Title(), fmt.Sprintf("%.2f", v))
		}
	}

	rows := make([]barRow, 0, len(s.RatingBreakdown))
	for _, g := range s.RatingBreakdown {
		rows = append(rows, barRow{g.Label, float64(g.Count), g.Count})
	}
	b.WriteString(renderBars(rows, analytics.ModeCount))
	return b.String()
}
