// ABOUTME: Form input types for the recipe view controller
// ABOUTME: Turns raw ingredient text into typed ingredients for either quantity kind

package recipeview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/markalston/recipe-scaler/internal/client"
)

// Forms holds the raw input of every form
type Forms struct {
	SignIn       SignInForm
	AddRecipe    AddRecipeForm
	DeleteRecipe DeleteRecipeForm
	GetRecipe    GetRecipeForm
	CreateUser   CreateUserForm
}

type SignInForm struct {
	ID       string
	Password string
}

// AddRecipeForm authors a recipe. Kind applies to every ingredient row:
// weights in grams for the authoring flow, free text for the admin flow.
type AddRecipeForm struct {
	Name        string
	Kind        client.QuantityKind
	Ingredients []IngredientInput
}

// IngredientInput is one row as typed
type IngredientInput struct {
	Name     string
	Quantity string
}

type DeleteRecipeForm struct {
	Name string
}

// GetRecipeForm keeps Children as text so bad input survives for correction
type GetRecipeForm struct {
	Name     string
	Children string
}

type CreateUserForm struct {
	ID       string
	Password string
	IsAdmin  bool
}

// Recipe builds the recipe the form describes
func (f AddRecipeForm) Recipe() (client.Recipe, error) {
	ingredients, err := BuildIngredients(f.Kind, f.Ingredients)
	if err != nil {
		return client.Recipe{}, err
	}
	return client.Recipe{Name: strings.TrimSpace(f.Name), Ingredients: ingredients}, nil
}

// BuildIngredients converts rows to ingredients of the given kind. Blank rows
// are skipped. Weight rows need a name and are read by their leading
// integer ("12 grams" is 12, "1.5" is 1); text without one counts as 0 and
// negative weights are rejected. Freeform rows missing a name or a value
// are dropped.
func BuildIngredients(kind client.QuantityKind, rows []IngredientInput) ([]client.Ingredient, error) {
	out := make([]client.Ingredient, 0, len(rows))
	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		qty := strings.TrimSpace(row.Quantity)
		if name == "" && qty == "" {
			continue
		}

		if kind == client.QuantityFreeform {
			if name == "" || qty == "" {
				continue
			}
			out = append(out, client.Freeform(name, qty))
			continue
		}

		if name == "" {
			return nil, invalid(ActionAddRecipe, fmt.Sprintf("Ingredient %d has no name", i+1))
		}
		grams, err := leadingInt(qty)
		if err != nil {
			return nil, invalid(ActionAddRecipe, fmt.Sprintf("Weight for %s is too large", name))
		}
		if grams < 0 {
			return nil, invalid(ActionAddRecipe, fmt.Sprintf("Weight for %s must not be negative", name))
		}
		out = append(out, client.Weight(name, grams))
	}
	return out, nil
}

// leadingInt reads an optionally signed integer from the start of s and
// ignores whatever follows. Text that does not start with digits is 0.
func leadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, nil
	}
	return strconv.Atoi(s[:end])
}

// ParseIngredientLines reads one "name = quantity" row per line. A line
// without "=" is a name with no quantity. Empty lines are ignored.
func ParseIngredientLines(text string) []IngredientInput {
	var rows []IngredientInput
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, qty, _ := strings.Cut(line, "=")
		rows = append(rows, IngredientInput{
			Name:     strings.TrimSpace(name),
			Quantity: strings.TrimSpace(qty),
		})
	}
	return rows
}

// FormatIngredientLines is the inverse of ParseIngredientLines
func FormatIngredientLines(rows []IngredientInput) string {
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(row.Name)
		sb.WriteString(" = ")
		sb.WriteString(row.Quantity)
		sb.WriteString("\n")
	}
	return sb.String()
}

// LoadRecipe fills the add form from an existing recipe. A recipe with any
// freeform ingredient loads as freeform, with weights rendered as text.
func (c *Controller) LoadRecipe(r client.Recipe) {
	kind := client.QuantityWeight
	for _, ing := range r.Ingredients {
		if ing.Kind == client.QuantityFreeform {
			kind = client.QuantityFreeform
			break
		}
	}

	rows := make([]IngredientInput, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		qty := ing.Value
		if ing.Kind == client.QuantityWeight {
			qty = strconv.Itoa(ing.WeightGrams)
			if kind == client.QuantityFreeform {
				qty = ing.Quantity()
			}
		}
		rows = append(rows, IngredientInput{Name: ing.Name, Quantity: qty})
	}

	c.Forms.AddRecipe = AddRecipeForm{Name: r.Name, Kind: kind, Ingredients: rows}
	c.Reset(ActionAddRecipe)
}
