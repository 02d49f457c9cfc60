// ABOUTME: Recipe card component displaying a fetched, scaled recipe
// ABOUTME: Lists ingredients with grams grouped by thousands and a total weight

package recipecard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/markalston/recipe-scaler/internal/client"
	"github.com/markalston/recipe-scaler/internal/tui/icons"
	"github.com/markalston/recipe-scaler/internal/tui/styles"
)

const minNameWidth = 12

// Card displays one recipe
type Card struct {
	recipe   *client.Recipe
	children int
	width    int
}

// New creates a card for recipe scaled for children
func New(recipe *client.Recipe, children, width int) *Card {
	return &Card{recipe: recipe, children: children, width: width}
}

// SetSize updates the card width
func (c *Card) SetSize(width int) {
	c.width = width
}

// Recipe returns the displayed recipe
func (c *Card) Recipe() *client.Recipe {
	return c.recipe
}

// View renders the card
func (c *Card) View() string {
	if c.recipe == nil {
		return styles.Panel.Width(c.width).Render("No recipe loaded")
	}

	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Recipe.String() + " " + c.recipe.Name))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(icons.Scale.String() + " Scaled for " + ChildrenLabel(c.children)))
	sb.WriteString("\n")

	if len(c.recipe.Ingredients) == 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("(no ingredients)"))
		return styles.ActivePanel.Width(c.width).Render(sb.String())
	}

	nameWidth := 0
	for _, ing := range c.recipe.Ingredients {
		nameWidth = max(nameWidth, ansi.StringWidth(ing.Name))
	}
	nameWidth = min(nameWidth, c.maxNameWidth())
	nameStyle := lipgloss.NewStyle().Width(nameWidth + 2)

	total := 0
	weighed := 0
	for _, ing := range c.recipe.Ingredients {
		name := ing.Name
		if ansi.StringWidth(name) > nameWidth {
			name = ansi.Truncate(name, nameWidth, "…")
		}
		sb.WriteString(nameStyle.Render(name))
		sb.WriteString(styles.ValueStyle.Render(FormatQuantity(ing)))
		sb.WriteString("\n")
		if ing.Kind == client.QuantityWeight {
			total += ing.WeightGrams
			weighed++
		}
	}

	if weighed > 0 {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Total weight: %s", styles.StatusOK.Render(humanize.Comma(int64(total))+" g")))
		if weighed > 1 && total >= 1000 {
			sb.WriteString(fmt.Sprintf(" (%s kg)", humanize.FtoaWithDigits(float64(total)/1000, 2)))
		}
	}

	return styles.ActivePanel.Width(c.width).Render(sb.String())
}

// maxNameWidth keeps the quantity column on screen for long ingredient names
func (c *Card) maxNameWidth() int {
	return max(minNameWidth, c.width/2)
}

// FormatQuantity renders weights with thousands separators and freeform
// values as given
func FormatQuantity(ing client.Ingredient) string {
	if ing.Kind == client.QuantityFreeform {
		return ing.Value
	}
	return humanize.Comma(int64(ing.WeightGrams)) + " g"
}

// ChildrenLabel renders a children count as "1 child" or "N children"
func ChildrenLabel(children int) string {
	if children == 1 {
		return "1 child"
	}
	return humanize.Comma(int64(children)) + " children"
}
