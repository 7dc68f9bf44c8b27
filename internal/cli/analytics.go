package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/analytics"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

const dateLayout = "2006-01-02"

// brewFilter is the set of flags that narrow the brews a command reads.
type brewFilter struct {
	since     string
	until     string
	recipeID  string
	minRating int
}

func (f *brewFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.since, "since", "", "only brews on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "only brews before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.recipeID, "recipe", "", "only brews of this recipe id")
	cmd.Flags().IntVar(&f.minRating, "min-rating", 0, "only brews rated at least this")
}

// query turns the flags into a BrewQuery, reading dates in the
// configured timezone.
func (f *brewFilter) query(a *app) (domain.BrewQuery, error) {
	loc := a.catalog.Calendar().Location
	if loc == nil {
		loc = time.Local
	}
	q := domain.BrewQuery{RecipeID: f.recipeID, MinRating: f.minRating}
	if f.since != "" {
		t, err := time.ParseInLocation(dateLayout, f.since, loc)
		if err != nil {
			return q, fmt.Errorf("--since: %w", err)
		}
		q.Since = t
	}
	if f.until != "" {
		t, err := time.ParseInLocation(dateLayout, f.until, loc)
		if err != nil {
			return q, fmt.Errorf("--until: %w", err)
		}
		q.Until = t
	}
	return q, nil
}

// NewChartCommand creates the chart command.
func NewChartCommand(opts *RootOptions) *cobra.Command {
	var (
		filter  brewFilter
		average bool
		trend   bool
		save    bool
		title   string
	)

	cmd := &cobra.Command{
		Use:   "chart <x-axis> <y-axis>",
		Short: "Chart one brew attribute against another",
		Long: "Aggregate brews along two axes and draw the result. Axes are field names such as " +
			"rating, roasterName or brewDate, or kind/field such as numeric/temperature. Run 'ottobrew axes' " +
			"to list them. The chart type follows from the axis kinds.",
		Args: cobra.ExactArgs(2),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			x, err := analytics.ParseAxis(args[0])
			if err != nil {
				return fmt.Errorf("x axis: %w", err)
			}
			y, err := analytics.ParseAxis(args[1])
			if err != nil {
				return fmt.Errorf("y axis: %w", err)
			}
			q, err := filter.query(a)
			if err != nil {
				return err
			}

			cfg := &domain.ChartConfiguration{
				Title:           title,
				XAxis:           x.Ref(),
				YAxis:           y.Ref(),
				ShowAverageLine: average,
				ShowTrendLine:   trend,
			}
			if save {
				if cfg, err = a.catalog.SaveChart(ctx, *cfg); err != nil {
					return err
				}
			}

			data, err := a.catalog.ChartData(ctx, cfg, q)
			if err != nil {
				return err
			}
			a.out.Println(display.RenderChart(data))
			if save {
				a.out.PrintHint("Saved chart " + cfg.ID)
			}
			return nil
		}),
	}

	filter.register(cmd)
	cmd.Flags().BoolVar(&average, "average", false, "show the average line")
	cmd.Flags().BoolVar(&trend, "trend", false, "show the trend line")
	cmd.Flags().BoolVar(&save, "save", false, "save the chart configuration")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	return cmd
}

// NewChartsCommand creates the charts command, which draws every saved chart.
func NewChartsCommand(opts *RootOptions) *cobra.Command {
	var filter brewFilter
	cmd := &cobra.Command{
		Use:   "charts [id...]",
		Short: "Draw saved charts",
		Args:  cobra.ArbitraryArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			q, err := filter.query(a)
			if err != nil {
				return err
			}
			charts, err := a.catalog.Charts(ctx)
			if err != nil {
				return err
			}
			want := make(map[string]bool, len(args))
			for _, id := range args {
				want[id] = true
			}

			drawn := 0
			for _, cfg := range charts {
				if len(want) > 0 && !want[cfg.ID] {
					continue
				}
				data, err := a.catalog.ChartData(ctx, cfg, q)
				if err != nil {
					return fmt.Errorf("chart %s: %w", cfg.ID, err)
				}
				if drawn > 0 {
					a.out.Println("")
				}
				a.out.Println(display.RenderChart(data))
				a.out.PrintHint(cfg.ID)
				drawn++
			}
			if drawn == 0 {
				a.out.PrintHint("No saved charts. Use 'ottobrew chart <x> <y> --save'.")
			}
			return nil
		}),
	}
	filter.register(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved chart",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.catalog.DeleteChart(ctx, args[0])
		}),
	})
	return cmd
}

// NewAxesCommand creates the axes command.
func NewAxesCommand(_ *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "axes",
		Short: "List the axes a chart can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			axes := analytics.AllAxes()
			if kind != "" {
				k, err := domain.ParseAxisKind(kind)
				if err != nil {
					return err
				}
				filtered := axes[:0]
				for _, a := range axes {
					if a.Ref().Kind == k {
						filtered = append(filtered, a)
					}
				}
				axes = filtered
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.RenderAxes(axes))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only axes of this kind (numeric, categorical, temporal)")
	return cmd
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	var filter brewFilter
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize brew history",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			q, err := filter.query(a)
			if err != nil {
				return err
			}
			s, err := a.catalog.Stats(ctx, q)
			if err != nil {
				return err
			}
			a.out.Println(display.RenderSummary(s))
			return nil
		}),
	}
	filter.register(cmd)
	return cmd
}
