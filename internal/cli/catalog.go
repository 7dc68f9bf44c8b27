package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/recipe"
)

// NewRecipesCommand creates the recipes command group.
func NewRecipesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List, inspect and create recipes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			recipes, err := a.catalog.Recipes(ctx)
			if err != nil {
				return err
			}
			a.out.Println(display.RenderRecipeList(recipes))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe with its stages",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			r, err := a.catalog.Recipe(ctx, args[0])
			if err != nil {
				return fmt.Errorf("recipe %s: %w", args[0], err)
			}
			a.out.Println(display.RenderRecipe(r))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <id>",
		Short: "Check that a recipe's stages add up to its water",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			bal, err := a.catalog.RecipeBalance(ctx, args[0])
			if err != nil {
				return fmt.Errorf("recipe %s: %w", args[0], err)
			}
			a.out.Println(display.RenderBalance(bal))
			return nil
		}),
	})

	cmd.AddCommand(newRecipeCommand(opts))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe; its brews keep their snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			if err := a.catalog.DeleteRecipe(ctx, args[0]); err != nil {
				return err
			}
			a.out.PrintHint("Deleted recipe " + args[0])
			return nil
		}),
	})

	return cmd
}

func newRecipeCommand(opts *RootOptions) *cobra.Command {
	var (
		grams       int
		ratio       float64
		water       int
		temperature float64
		grind       int
		roasterID   string
		grinderID   string
		stages      []string
	)

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a recipe",
		Long: "Create a recipe from its dose and stages. Each --stage is type:seconds[:water], " +
			"for example --stage fast:10:50 --stage wait:30 --stage slow:40:250. Water defaults " +
			"to grams times ratio and the stages must add up to it.",
		Args: cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("grams") {
				grams = a.cfg.Brewing.DefaultGrams
			}
			if !cmd.Flags().Changed("ratio") {
				ratio = a.cfg.Brewing.DefaultRatio
			}

			form := recipe.NewRecipeForm(grams, ratio)
			form.Name = strings.Join(args, " ")
			if water > 0 {
				form.Math.SetWater(water)
			}
			form.Temperature = temperature
			form.GrindSize = grind
			form.RoasterID = roasterID
			form.GrinderID = grinderID
			for _, def := range stages {
				typ, seconds, amount, err := parseStage(def)
				if err != nil {
					return err
				}
				form.Stages.Append(typ, amount, seconds)
			}

			r, err := a.catalog.SaveRecipe(ctx, form)
			if err != nil {
				return err
			}
			a.out.Println(display.RenderRecipe(r))
			return nil
		}),
	}

	cmd.Flags().IntVar(&grams, "grams", 0, "coffee dose in grams (default from config)")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "water to coffee ratio (default from config)")
	cmd.Flags().IntVar(&water, "water", 0, "total water in ml, overriding grams times ratio")
	cmd.Flags().Float64Var(&temperature, "temp", 0, "water temperature in °C")
	cmd.Flags().IntVar(&grind, "grind", 0, "grind setting")
	cmd.Flags().StringVar(&roasterID, "roaster", "", "roaster id")
	cmd.Flags().StringVar(&grinderID, "grinder", "", "grinder id")
	cmd.Flags().StringArrayVar(&stages, "stage", nil, "stage as type:seconds[:water], repeatable")
	return cmd
}

// parseStage reads "type:seconds[:water]".
func parseStage(def string) (domain.StageType, int, int, error) {
	parts := strings.Split(def, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("stage %q: want type:seconds[:water]", def)
	}
	typ, ok := domain.StageTypeFromString(strings.ToLower(parts[0]))
	if !ok {
		return 0, 0, 0, fmt.Errorf("stage %q: unknown type %q (fast, slow or wait)", def, parts[0])
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("stage %q: seconds: %w", def, err)
	}
	water := 0
	if len(parts) == 3 {
		if water, err = strconv.Atoi(parts[2]); err != nil {
			return 0, 0, 0, fmt.Errorf("stage %q: water: %w", def, err)
		}
	}
	return typ, seconds, water, nil
}

// NewRoastersCommand creates the roasters command group.
func NewRoastersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roasters",
		Short: "Manage roasters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List roasters",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			roasters, err := a.catalog.Roasters(ctx)
			if err != nil {
				return err
			}
			a.out.Println(display.RenderRoasters(roasters))
			return nil
		}),
	})

	var form recipe.RoasterForm
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a roaster",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			form.Name = strings.Join(args, " ")
			r, err := a.catalog.SaveRoaster(ctx, form)
			if err != nil {
				return err
			}
			a.out.PrintHint(fmt.Sprintf("Added roaster %s (%s)", r.Name, r.ID))
			return nil
		}),
	}
	add.Flags().StringVar(&form.Country, "country", "", "country of the roaster")
	add.Flags().StringVar(&form.Website, "website", "", "roaster website")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a roaster; recipes using it are unlinked",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.catalog.DeleteRoaster(ctx, args[0])
		}),
	})

	return cmd
}

// NewGrindersCommand creates the grinders command group.
func NewGrindersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grinders",
		Short: "Manage grinders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List grinders",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			grinders, err := a.catalog.Grinders(ctx)
			if err != nil {
				return err
			}
			a.out.Println(display.RenderGrinders(grinders))
			return nil
		}),
	})

	var form recipe.GrinderForm
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a grinder",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			form.Name = strings.Join(args, " ")
			form.GrinderType = canonicalOption(form.GrinderType, domain.GrinderTypes)
			form.BurrType = canonicalOption(form.BurrType, domain.BurrTypes)
			g, err := a.catalog.SaveGrinder(ctx, form)
			if err != nil {
				return err
			}
			a.out.PrintHint(fmt.Sprintf("Added grinder %s (%s)", g.Name, g.ID))
			return nil
		}),
	}
	add.Flags().StringVar(&form.GrinderType, "type", "", "grinder type: "+strings.Join(domain.GrinderTypes, ", ")+" or free text")
	add.Flags().StringVar(&form.BurrType, "burr", "", "burr type: "+strings.Join(domain.BurrTypes, ", ")+" or free text")
	add.Flags().StringVar(&form.Notes, "notes", "", "free-form notes")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a grinder; recipes using it are unlinked",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.catalog.DeleteGrinder(ctx, args[0])
		}),
	})

	return cmd
}

// NewBrewsCommand creates the brews command group.
func NewBrewsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brews",
		Short: "Browse and review brew history",
	}

	var filter brewFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List logged brews, oldest first",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			q, err := filter.query(a)
			if err != nil {
				return err
			}
			brews, err := a.catalog.Brews(ctx, q)
			if err != nil {
				return err
			}
			a.out.Println(display.RenderBrews(brews, a.catalog.Calendar().Location))
			return nil
		}),
	}
	filter.register(list)
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "rate <id> <rating> [notes...]",
		Short: "Change the rating and notes of a brew",
		Args:  cobra.MinimumNArgs(2),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rating %q: %w", args[1], err)
			}
			b, err := a.store.GetBrew(ctx, args[0])
			if err != nil {
				return fmt.Errorf("brew %s: %w", args[0], err)
			}
			notes := b.Notes
			if len(args) > 2 {
				notes = strings.Join(args[2:], " ")
			}
			if err := a.catalog.ReviewBrew(ctx, b.ID, rating, notes); err != nil {
				return err
			}
			a.out.PrintHint(fmt.Sprintf("Rated %s %d/5", b.RecipeName, rating))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a brew from history",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.catalog.DeleteBrew(ctx, args[0])
		}),
	})

	return cmd
}

// canonicalOption returns the suggested spelling of v when it names one of
// options, ignoring case, and v unchanged otherwise.
func canonicalOption(v string, options []string) string {
	v = strings.TrimSpace(v)
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return o
		}
	}
	return v
}
