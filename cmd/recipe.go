// ABOUTME: Recipe commands for the recipes CLI
// ABOUTME: Fetches scaled recipes and lets admins add, delete, and bulk import recipes

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/markalston/recipe-scaler/internal/client"
	"github.com/markalston/recipe-scaler/internal/gate"
	"github.com/markalston/recipe-scaler/internal/recipefile"
	"github.com/markalston/recipe-scaler/internal/recipeview"
	"github.com/markalston/recipe-scaler/internal/tui/recipecard"
)

var (
	childrenCount  string
	ingredientArgs []string
	recipeFile     string
	freeform       bool
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Fetch and manage recipes",
}

var recipeGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Get a recipe scaled for a number of children",
	Long: `Get a recipe with ingredient quantities scaled by the server for the
given number of children.

Example:
  recipes recipe get Pancakes --children 12`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, d *deps) int {
			return runRecipeGet(ctx, os.Stdout, d, args[0], childrenCount)
		})
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored recipe",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, d *deps) int {
			return runRecipeList(ctx, os.Stdout, d)
		})
	},
}

var recipeAddCmd = &cobra.Command{
	Use:   "add [NAME]",
	Short: "Add a recipe (admin)",
	Long: `Add a recipe from --ingredient flags or from a YAML/JSON file.

Ingredients are given as name=grams. With --freeform the quantity is kept as
text instead ("salt=a pinch").

Example:
  recipes recipe add Soup --ingredient water=500 --ingredient salt=5
  recipes recipe add Soup --freeform --ingredient "salt=to taste"
  recipes recipe add --file soup.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		runWithDeps(func(ctx context.Context, d *deps) int {
			return runRecipeAdd(ctx, os.Stdout, d, name, ingredientArgs, freeform, recipeFile)
		})
	},
}

var recipeDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a recipe (admin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, d *deps) int {
			return runRecipeDelete(ctx, os.Stdout, d, args[0])
		})
	},
}

var recipeImportCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Add every recipe found in one or more files (admin)",
	Long: `Import recipes from YAML or JSON files. Requests run concurrently,
bounded by RECIPES_IMPORT_CONCURRENCY.

Example:
  recipes recipe import samples/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, d *deps) int {
			return runRecipeImport(ctx, os.Stdout, d, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeGetCmd, recipeListCmd, recipeAddCmd, recipeDeleteCmd, recipeImportCmd)

	recipeGetCmd.Flags().StringVarP(&childrenCount, "children", "c", "1", "Number of children to scale for")
	recipeAddCmd.Flags().StringArrayVarP(&ingredientArgs, "ingredient", "i", nil, "Ingredient as name=quantity (repeatable)")
	recipeAddCmd.Flags().StringVarP(&recipeFile, "file", "f", "", "Read the recipe from a YAML or JSON file")
	recipeAddCmd.Flags().BoolVar(&freeform, "freeform", false, "Keep quantities as free text instead of grams")
}

// runWithDeps sets up signal handling and dependencies, then exits with the
// code returned by fn
func runWithDeps(fn func(ctx context.Context, d *deps) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := newDeps()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitLocal)
	}

	if exitCode := fn(ctx, d); exitCode != 0 {
		os.Exit(exitCode)
	}
}

// runRecipeGet fetches one scaled recipe and returns exit code
func runRecipeGet(ctx context.Context, w io.Writer, d *deps, name, children string) int {
	s, code := d.authorize(w, gate.RouteAuthenticated)
	if code != exitOK {
		return code
	}

	d.controller.Forms.GetRecipe = recipeview.GetRecipeForm{Name: name, Children: children}
	st := d.controller.Run(ctx, recipeview.ActionGetRecipe, s)
	if st.Status == recipeview.StatusError {
		return report(w, st)
	}

	recipe := d.controller.Fetched()
	if IsJSONOutput() {
		return writeJSON(w, recipe)
	}
	fmt.Fprintf(w, "%s (for %s)\n\n", recipe.Name, recipecard.ChildrenLabel(d.controller.FetchedChildren()))
	writeIngredients(w, recipe.Ingredients)
	return exitOK
}

// runRecipeList prints every stored recipe and returns exit code
func runRecipeList(ctx context.Context, w io.Writer, d *deps) int {
	if _, code := d.authorize(w, gate.RouteAuthenticated); code != exitOK {
		return code
	}

	recipes, err := d.client.ListRecipes(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", client.Message(err))
		return exitRejected
	}

	if IsJSONOutput() {
		return writeJSON(w, recipes)
	}
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes")
		return exitOK
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tINGREDIENTS")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%s\t%d\n", r.Name, len(r.Ingredients))
	}
	tw.Flush()
	return exitOK
}

// runRecipeAdd adds one recipe and returns exit code
func runRecipeAdd(ctx context.Context, w io.Writer, d *deps, name string, ingredients []string, asFreeform bool, file string) int {
	s, code := d.authorize(w, gate.RouteAdminOnly)
	if code != exitOK {
		return code
	}

	if file != "" {
		recipes, err := recipefile.Load(file)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitLocal
		}
		if len(recipes) != 1 {
			fmt.Fprintf(w, "Error: %s holds %d recipes (use 'recipes recipe import')\n", file, len(recipes))
			return exitLocal
		}
		d.controller.LoadRecipe(recipes[0])
		if name != "" {
			d.controller.Forms.AddRecipe.Name = name
		}
	} else {
		kind := client.QuantityWeight
		if asFreeform {
			kind = client.QuantityFreeform
		}
		d.controller.Forms.AddRecipe = recipeview.AddRecipeForm{
			Name:        name,
			Kind:        kind,
			Ingredients: recipeview.ParseIngredientLines(strings.Join(ingredients, "\n")),
		}
	}

	return report(w, d.controller.Run(ctx, recipeview.ActionAddRecipe, s))
}

// runRecipeDelete deletes one recipe and returns exit code
func runRecipeDelete(ctx context.Context, w io.Writer, d *deps, name string) int {
	s, code := d.authorize(w, gate.RouteAdminOnly)
	if code != exitOK {
		return code
	}

	d.controller.Forms.DeleteRecipe = recipeview.DeleteRecipeForm{Name: name}
	return report(w, d.controller.Run(ctx, recipeview.ActionDeleteRecipe, s))
}

// runRecipeImport adds every recipe from files concurrently and returns exit code
func runRecipeImport(ctx context.Context, w io.Writer, d *deps, files []string) int {
	if _, code := d.authorize(w, gate.RouteAdminOnly); code != exitOK {
		return code
	}

	var recipes []client.Recipe
	for _, f := range files {
		loaded, err := recipefile.Load(f)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitLocal
		}
		recipes = append(recipes, loaded...)
	}

	results := recipefile.Import(ctx, d.client.AddRecipe, recipes, d.cfg.ImportConcurrency)
	failed := recipefile.Failed(results)
	d.logger.Info("Import finished", "recipes", len(results), "failed", failed)

	if IsJSONOutput() {
		writeJSON(w, results)
	} else {
		for _, res := range results {
			mark := "ok"
			if !res.OK {
				mark = "FAILED"
			}
			fmt.Fprintf(w, "%-6s %s: %s\n", mark, res.Name, res.Message)
		}
		fmt.Fprintf(w, "\nImported %d of %d recipes\n", len(results)-failed, len(results))
	}

	if failed > 0 {
		return exitRejected
	}
	return exitOK
}

// writeIngredients prints ingredients as an aligned table with grams
// grouped by thousands
func writeIngredients(w io.Writer, ingredients []client.Ingredient) {
	if len(ingredients) == 0 {
		fmt.Fprintln(w, "  (no ingredients)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ing := range ingredients {
		fmt.Fprintf(tw, "  %s\t%s\t\n", ing.Name, recipecard.FormatQuantity(ing))
	}
	tw.Flush()
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitLocal
	}
	return exitOK
}
