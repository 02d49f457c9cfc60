// ABOUTME: Input forms for each recipe view action as bubbletea models
// ABOUTME: Binds huh fields to the controller's form input and reports submit or cancel

package forms

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/recipe-scaler/internal/client"
	"github.com/markalston/recipe-scaler/internal/recipeview"
	"github.com/markalston/recipe-scaler/internal/tui/icons"
	"github.com/markalston/recipe-scaler/internal/tui/styles"
	"github.com/markalston/recipe-scaler/internal/tui/widgets"
)

// SubmittedMsg is sent when the user completes a form
type SubmittedMsg struct {
	Action recipeview.Action
}

// CancelledMsg is sent when the user leaves a form with esc
type CancelledMsg struct {
	Action recipeview.Action
}

// Form edits the controller input for one action
type Form struct {
	action recipeview.Action
	ctrl   *recipeview.Controller
	form   *huh.Form
	width  int

	// Ingredient rows are edited as "name = quantity" lines
	ingredients string
}

// createTheme returns a huh theme in the application palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	amber := lipgloss.Color("#D97706")
	orange := lipgloss.Color("#F97316")
	blue := lipgloss.Color("#3B82F6")
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")
	slate := lipgloss.Color("#334155")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(amber).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(amber)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(orange).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(amber).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(amber).
		Bold(true)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(amber)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(amber)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(blue).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

var kindOptions = []huh.Option[client.QuantityKind]{
	huh.NewOption("Weight in grams", client.QuantityWeight),
	huh.NewOption("Free text (\"a pinch\", \"2 cups\")", client.QuantityFreeform),
}

// New creates the form for action, prefilled from the controller's input
func New(action recipeview.Action, ctrl *recipeview.Controller) *Form {
	f := &Form{action: action, ctrl: ctrl}
	f.form = f.build().WithTheme(createTheme())
	return f
}

// Action returns the action this form edits
func (f *Form) Action() recipeview.Action {
	return f.action
}

func (f *Form) build() *huh.Form {
	in := &f.ctrl.Forms

	switch f.action {
	case recipeview.ActionSignIn:
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("User ID").
					Value(&in.SignIn.ID),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&in.SignIn.Password),
			).Title("Sign in").
				Description("Sign in to browse recipes"),
		)

	case recipeview.ActionGetRecipe:
		if in.GetRecipe.Children == "" {
			in.GetRecipe.Children = "1"
		}
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Recipe name").
					Placeholder("e.g., Pancakes").
					Value(&in.GetRecipe.Name),
				huh.NewInput().
					Title("Number of children").
					Description("Quantities are scaled by the server").
					CharLimit(6).
					Value(&in.GetRecipe.Children),
			).Title("Get recipe"),
		)

	case recipeview.ActionAddRecipe:
		f.ingredients = recipeview.FormatIngredientLines(in.AddRecipe.Ingredients)
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Recipe name").
					Value(&in.AddRecipe.Name),
				huh.NewSelect[client.QuantityKind]().
					Title("Quantities").
					Options(kindOptions...).
					Value(&in.AddRecipe.Kind),
				huh.NewText().
					Title("Ingredients").
					Description("One per line as name = quantity (alt+enter for a new line)").
					Placeholder("flour = 250\nmilk = 300").
					Lines(8).
					Value(&f.ingredients),
			).Title("Add recipe"),
		)

	case recipeview.ActionDeleteRecipe:
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Recipe name").
					Value(&in.DeleteRecipe.Name),
			).Title("Delete recipe"),
		)

	case recipeview.ActionCreateUser:
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("User ID").
					Value(&in.CreateUser.ID),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&in.CreateUser.Password),
				huh.NewConfirm().
					Title("Administrator?").
					Affirmative("Yes").
					Negative("No").
					Value(&in.CreateUser.IsAdmin),
			).Title("Create user"),
		)
	}

	return huh.NewForm(huh.NewGroup(huh.NewNote().Title("Unknown action")))
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			f.sync()
			action := f.action
			return f, func() tea.Msg { return CancelledMsg{Action: action} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.sync()
		action := f.action
		return f, func() tea.Msg { return SubmittedMsg{Action: action} }
	}

	return f, cmd
}

// sync copies fields not bound directly back into the controller input
func (f *Form) sync() {
	if f.action == recipeview.ActionAddRecipe {
		f.ctrl.Forms.AddRecipe.Ingredients = recipeview.ParseIngredientLines(f.ingredients)
	}
}

// SetWidth sets the form width for rendering
func (f *Form) SetWidth(width int) {
	f.width = width
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(f.renderBanner())
	sb.WriteString("\n\n")
	sb.WriteString(f.form.View())
	return sb.String()
}

// renderBanner renders a boxed title with the last outcome of this action
func (f *Form) renderBanner() string {
	width := f.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	title := titleIcon(f.action) + " " + strings.ToUpper(f.action.String()[:1]) + f.action.String()[1:]
	styledTitle := titleStyle.Render(title)

	// "┌─ " + title + " " + fill + "┐"
	topFill := max(0, width-5-lipgloss.Width(title))
	top := "┌─ " + styledTitle + " " + strings.Repeat("─", topFill) + "┐"

	status := widgets.FormStatus(f.ctrl.State(f.action))
	if status == "" {
		status = lipgloss.NewStyle().Foreground(styles.Muted).Render("Enter to continue, Esc to cancel")
	}
	pad := max(0, width-4-lipgloss.Width(status))
	line := "│ " + status + strings.Repeat(" ", pad) + " │"

	bottom := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{top, line, bottom}, "\n"))
}

func titleIcon(a recipeview.Action) string {
	switch a {
	case recipeview.ActionSignIn:
		return icons.Lock.String()
	case recipeview.ActionCreateUser:
		return icons.User.String()
	case recipeview.ActionGetRecipe:
		return icons.Scale.String()
	default:
		return icons.Recipe.String()
	}
}
