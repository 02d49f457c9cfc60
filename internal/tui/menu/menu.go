// ABOUTME: Action menu shown on each screen of the TUI
// ABOUTME: Cursor list that reports the chosen item to the parent model

package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/recipe-scaler/internal/tui/styles"
)

// Choice identifies a menu item
type Choice int

const (
	ChoiceSignIn Choice = iota
	ChoiceGetRecipe
	ChoiceAdmin
	ChoiceAddRecipe
	ChoiceDeleteRecipe
	ChoiceCreateUser
	ChoiceImport
	ChoiceBack
	ChoiceSignOut
	ChoiceQuit
)

// String returns the item label
func (c Choice) String() string {
	switch c {
	case ChoiceSignIn:
		return "Sign in"
	case ChoiceGetRecipe:
		return "Get recipe"
	case ChoiceAdmin:
		return "Admin tools"
	case ChoiceAddRecipe:
		return "Add recipe"
	case ChoiceDeleteRecipe:
		return "Delete recipe"
	case ChoiceCreateUser:
		return "Create user"
	case ChoiceImport:
		return "Import recipe file"
	case ChoiceBack:
		return "Back to recipes"
	case ChoiceSignOut:
		return "Sign out"
	case ChoiceQuit:
		return "Quit"
	default:
		return "unknown"
	}
}

// SelectedMsg is sent when the user picks an item
type SelectedMsg struct {
	Choice Choice
}

// Menu is a vertical list of choices
type Menu struct {
	title   string
	choices []Choice
	cursor  int
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	selectedStyle = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(styles.Text)
)

// New creates a menu with the cursor on the first choice
func New(title string, choices ...Choice) *Menu {
	return &Menu{title: title, choices: choices}
}

// Choices returns the items in display order
func (m *Menu) Choices() []Choice {
	return m.choices
}

// Selected returns the choice under the cursor
func (m *Menu) Selected() Choice {
	if len(m.choices) == 0 {
		return ChoiceQuit
	}
	return m.choices[m.cursor]
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.choices) == 0 {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter":
		choice := m.Selected()
		return m, func() tea.Msg { return SelectedMsg{Choice: choice} }
	}
	return m, nil
}

// View implements tea.Model
func (m *Menu) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteString("\n\n")
	}
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString("> " + selectedStyle.Render(c.String()) + "\n")
		} else {
			b.WriteString("  " + normalStyle.Render(c.String()) + "\n")
		}
	}
	return b.String()
}
