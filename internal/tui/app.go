// ABOUTME: Root bubbletea model for the recipe TUI
// ABOUTME: Re-runs the access gate on every navigation and drives controller actions

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/recipe-scaler/internal/gate"
	"github.com/markalston/recipe-scaler/internal/recipefile"
	"github.com/markalston/recipe-scaler/internal/recipeview"
	"github.com/markalston/recipe-scaler/internal/session"
	"github.com/markalston/recipe-scaler/internal/tui/filepicker"
	"github.com/markalston/recipe-scaler/internal/tui/forms"
	"github.com/markalston/recipe-scaler/internal/tui/icons"
	"github.com/markalston/recipe-scaler/internal/tui/menu"
	"github.com/markalston/recipe-scaler/internal/tui/recentfiles"
	"github.com/markalston/recipe-scaler/internal/tui/recipecard"
	"github.com/markalston/recipe-scaler/internal/tui/samples"
	"github.com/markalston/recipe-scaler/internal/tui/styles"
	"github.com/markalston/recipe-scaler/internal/tui/widgets"
)

// Screen is what the frame currently shows
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenForm
	ScreenFilePicker
)

// Layout constants
const (
	minTerminalWidth = 80
	menuWidth        = 28
)

// Config wires the TUI to the rest of the application
type Config struct {
	Controller  *recipeview.Controller
	Store       session.Store
	AddRecipe   recipefile.AddFunc
	ImportLimit int
	BaseURL     string
	ConfigDir   string
	SamplesPath string
	BasePath    string
	Logger      *slog.Logger
}

// jobDoneMsg carries a finished controller job back to the update loop
type jobDoneMsg struct {
	result recipeview.Result
}

// importDoneMsg is sent when a multi-recipe import finishes
type importDoneMsg struct {
	path    string
	results []recipefile.Result
}

// App is the root model for the TUI
type App struct {
	ctx    context.Context
	cfg    Config
	ctrl   *recipeview.Controller
	store  session.Store
	logger *slog.Logger

	route   gate.Route
	session session.Session
	screen  Screen
	width   int
	height  int

	// Outcome of the last action, shown under the menu
	notice       string
	noticeFailed bool

	busy      bool
	busyLabel string
	spinner   spinner.Model

	// Child models
	menu       *menu.Menu
	form       *forms.Form
	filePicker *filepicker.FilePicker
	card       *recipecard.Card

	recentFiles *recentfiles.RecentFiles
}

// New creates the TUI and resolves the landing route from the stored session
func New(ctx context.Context, cfg Config) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = session.DefaultConfigDir()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	a := &App{
		ctx:         ctx,
		cfg:         cfg,
		ctrl:        cfg.Controller,
		store:       cfg.Store,
		logger:      cfg.Logger,
		spinner:     sp,
		recentFiles: recentfiles.New(cfg.ConfigDir),
	}
	a.navigate(gate.PathPublic)
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Route returns the route currently rendered
func (a *App) Route() gate.Route {
	return a.route
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.card != nil {
			a.card.SetSize(a.cardWidth())
		}
		if a.filePicker != nil {
			a.filePicker.Update(msg)
		}
		if a.form != nil {
			a.form.SetWidth(a.frameWidth())
			return a.updateForm(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.busy {
			return a, nil
		}

		switch a.screen {
		case ScreenMenu:
			if msg.String() == "q" {
				return a, tea.Quit
			}
			model, cmd := a.menu.Update(msg)
			a.menu = model.(*menu.Menu)
			return a, cmd
		case ScreenForm:
			return a.updateForm(msg)
		case ScreenFilePicker:
			model, cmd := a.filePicker.Update(msg)
			a.filePicker = model.(*filepicker.FilePicker)
			return a, cmd
		}

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case menu.SelectedMsg:
		return a.handleChoice(msg.Choice)

	case forms.SubmittedMsg:
		return a.submit(msg.Action)

	case forms.CancelledMsg:
		a.navigate(a.route.Path())
		return a, nil

	case jobDoneMsg:
		return a.handleJobDone(msg.result)

	case filepicker.FileSelectedMsg:
		return a.handleFileSelected(msg)

	case filepicker.CancelledMsg:
		a.navigate(a.route.Path())
		return a, nil

	case importDoneMsg:
		return a.handleImportDone(msg)

	default:
		// huh forms need their internal messages
		if a.screen == ScreenForm && a.form != nil {
			return a.updateForm(msg)
		}
	}

	return a, nil
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.form == nil {
		return a, nil
	}
	model, cmd := a.form.Update(msg)
	a.form = model.(*forms.Form)
	return a, cmd
}

// currentSession reads the store. A read failure counts as signed out.
func (a *App) currentSession() session.Session {
	s, err := a.store.Get()
	if err != nil {
		a.logger.Warn("Reading session failed", "error", err)
		return session.Session{}
	}
	return s.Normalize()
}

// navigate re-reads the session and lets the gate pick the route to render
// for path. Child screens are closed.
func (a *App) navigate(path string) {
	s := a.currentSession()
	route := gate.Navigate(path, s)
	if requested, ok := gate.RouteForPath(path); ok && requested != route {
		a.logger.Debug("Navigation redirected", "requested", requested.String(), "route", route.String())
	}

	a.session = s
	a.route = route
	a.screen = ScreenMenu
	a.form = nil
	a.filePicker = nil
	a.menu = a.buildMenu()
	if route == gate.RoutePublic {
		a.card = nil
	}
}

func (a *App) buildMenu() *menu.Menu {
	switch a.route {
	case gate.RouteAuthenticated:
		choices := []menu.Choice{menu.ChoiceGetRecipe}
		if a.session.IsAdmin {
			choices = append(choices, menu.ChoiceAdmin)
		}
		choices = append(choices, menu.ChoiceSignOut, menu.ChoiceQuit)
		return menu.New("Recipes", choices...)
	case gate.RouteAdminOnly:
		return menu.New("Admin tools",
			menu.ChoiceAddRecipe,
			menu.ChoiceDeleteRecipe,
			menu.ChoiceCreateUser,
			menu.ChoiceImport,
			menu.ChoiceBack,
			menu.ChoiceSignOut,
			menu.ChoiceQuit,
		)
	default:
		return menu.New("Welcome", menu.ChoiceSignIn, menu.ChoiceQuit)
	}
}

func (a *App) handleChoice(c menu.Choice) (tea.Model, tea.Cmd) {
	a.notice = ""

	switch c {
	case menu.ChoiceSignIn:
		return a, a.openForm(recipeview.ActionSignIn)
	case menu.ChoiceGetRecipe:
		return a, a.openForm(recipeview.ActionGetRecipe)
	case menu.ChoiceAddRecipe:
		return a, a.openForm(recipeview.ActionAddRecipe)
	case menu.ChoiceDeleteRecipe:
		return a, a.openForm(recipeview.ActionDeleteRecipe)
	case menu.ChoiceCreateUser:
		return a, a.openForm(recipeview.ActionCreateUser)
	case menu.ChoiceAdmin:
		a.navigate(gate.PathAdmin)
	case menu.ChoiceBack:
		a.navigate(gate.PathAuthenticated)
	case menu.ChoiceImport:
		a.openFilePicker()
	case menu.ChoiceSignOut:
		if err := a.ctrl.SignOut(); err != nil {
			a.logger.Error("Sign out failed", "error", err)
			a.setNotice("Failed to sign out", true)
		} else {
			a.setNotice("Signed out", false)
		}
		a.card = nil
		a.navigate(gate.PathPublic)
	case menu.ChoiceQuit:
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) setNotice(text string, failed bool) {
	a.notice = text
	a.noticeFailed = failed
}

func (a *App) openForm(action recipeview.Action) tea.Cmd {
	a.form = forms.New(action, a.ctrl)
	a.form.SetWidth(a.frameWidth())
	a.screen = ScreenForm
	return a.form.Init()
}

// submit hands a completed form to the controller and starts its job
func (a *App) submit(action recipeview.Action) (tea.Model, tea.Cmd) {
	job := a.ctrl.Submit(action, a.currentSession())
	if job == nil {
		if a.ctrl.State(action).Status == recipeview.StatusError {
			return a, a.openForm(action)
		}
		// Privileged action without an admin session: nothing was sent
		a.navigate(a.route.Path())
		return a, nil
	}

	a.busy = true
	a.busyLabel = busyLabel(action)
	ctx := a.ctx
	return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
		return jobDoneMsg{result: job(ctx)}
	})
}

func busyLabel(action recipeview.Action) string {
	switch action {
	case recipeview.ActionSignIn:
		return "Signing in..."
	case recipeview.ActionGetRecipe:
		return "Fetching recipe..."
	case recipeview.ActionAddRecipe:
		return "Adding recipe..."
	case recipeview.ActionDeleteRecipe:
		return "Deleting recipe..."
	case recipeview.ActionCreateUser:
		return "Creating user..."
	default:
		return "Working..."
	}
}

func (a *App) handleJobDone(r recipeview.Result) (tea.Model, tea.Cmd) {
	a.busy = false
	a.ctrl.Apply(r)

	st := a.ctrl.State(r.Action)
	if st.Status == recipeview.StatusError {
		if r.Action == recipeview.ActionGetRecipe {
			a.card = nil
		}
		return a, a.openForm(r.Action)
	}

	a.setNotice(st.Message, false)
	switch r.Action {
	case recipeview.ActionSignIn:
		a.navigate(gate.PathAuthenticated)
	case recipeview.ActionGetRecipe:
		a.card = recipecard.New(a.ctrl.Fetched(), a.ctrl.FetchedChildren(), a.cardWidth())
		a.notice = ""
		a.navigate(a.route.Path())
	default:
		a.navigate(a.route.Path())
	}
	return a, nil
}

func (a *App) openFilePicker() {
	recent, err := a.recentFiles.Load()
	if err != nil {
		a.logger.Warn("Loading recent files failed", "error", err)
	}

	var sampleFiles []samples.SampleFile
	if dir := samples.FindSamplesDir(a.cfg.SamplesPath, a.cfg.BasePath); dir != "" {
		sampleFiles, err = samples.Discover(dir)
		if err != nil {
			a.logger.Warn("Discovering samples failed", "dir", dir, "error", err)
		}
	}

	a.filePicker = filepicker.New(recent, sampleFiles)
	a.filePicker.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	a.screen = ScreenFilePicker
}

// handleFileSelected opens a single recipe in the add form for review, or
// imports every recipe of a multi-recipe file
func (a *App) handleFileSelected(msg filepicker.FileSelectedMsg) (tea.Model, tea.Cmd) {
	recipes, err := recipefile.Parse(msg.Data)
	if err != nil {
		if a.filePicker != nil {
			a.filePicker.SetError(err.Error())
		}
		return a, nil
	}

	if err := a.recentFiles.Add(msg.Path); err != nil {
		a.logger.Warn("Saving recent files failed", "error", err)
	}

	if len(recipes) == 1 {
		a.filePicker = nil
		a.ctrl.LoadRecipe(recipes[0])
		return a, a.openForm(recipeview.ActionAddRecipe)
	}

	if !gate.Decide(gate.RouteAdminOnly, a.currentSession()).Allowed || a.cfg.AddRecipe == nil {
		a.navigate(a.route.Path())
		return a, nil
	}

	a.busy = true
	a.busyLabel = fmt.Sprintf("Importing %d recipes...", len(recipes))
	ctx, add, limit := a.ctx, a.cfg.AddRecipe, a.cfg.ImportLimit
	return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
		return importDoneMsg{path: msg.Path, results: recipefile.Import(ctx, add, recipes, limit)}
	})
}

func (a *App) handleImportDone(msg importDoneMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	failed := recipefile.Failed(msg.results)
	for _, r := range msg.results {
		if !r.OK {
			a.logger.Warn("Import failed", "recipe", r.Name, "error", r.Message)
		}
	}
	a.logger.Info("Import finished", "file", msg.path, "recipes", len(msg.results), "failed", failed)

	a.navigate(a.route.Path())
	a.setNotice(fmt.Sprintf("Imported %d of %d recipes from %s",
		len(msg.results)-failed, len(msg.results), filepath.Base(msg.path)), failed > 0)
	return a, nil
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch {
	case a.busy:
		content = "\n  " + a.spinner.View() + " " + a.busyLabel + "\n"
	case a.screen == ScreenForm && a.form != nil:
		content = a.form.View()
	case a.screen == ScreenFilePicker && a.filePicker != nil:
		content = a.filePicker.View()
	default:
		content = a.viewMenu()
	}
	return a.wrapWithFrame(content)
}

func (a *App) viewMenu() string {
	body := lipgloss.NewStyle().Width(menuWidth).Render(a.menu.View())
	if a.card != nil && a.route != gate.RoutePublic {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, a.card.View())
	}
	if a.notice != "" {
		body += "\n\n" + widgets.StatusText(a.notice, noticeLevel(a.noticeFailed))
	}
	return body
}

func noticeLevel(failed bool) widgets.StatusLevel {
	if failed {
		return widgets.StatusCritical
	}
	return widgets.StatusOK
}

// frameWidth is the terminal width minus one column to prevent wrapping,
// clamped to minTerminalWidth
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

func (a *App) cardWidth() int {
	return max(a.frameWidth()-menuWidth-4, 30)
}

// renderHeader creates the header with the title and signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	userStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Recipe Scaler"))

	rightText := " " + widgets.RoleBadge(a.session.Role()) + " "
	if a.session.SignedIn() && a.session.UserID != "" {
		rightText = " " + userStyle.Render(a.session.UserID) + rightText
	}

	// -4 for ╭─ and ─╮
	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText))
	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╭─") + leftText + fill + rightText + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and the backend
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch {
	case a.busy:
		shortcuts = []string{"ctrl+c Quit"}
	case a.screen == ScreenForm:
		shortcuts = []string{"Tab Next", "Enter Confirm", "Esc Cancel"}
	case a.screen == ScreenFilePicker:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "b Back"}
	default:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	}

	var styled []string
	for _, s := range shortcuts {
		key, label, _ := strings.Cut(s, " ")
		styled = append(styled, styles.KeyStyle.Render(key)+" "+labelStyle.Render(label))
	}
	leftText := " " + strings.Join(styled, "  ")

	rightText := ""
	if a.cfg.BaseURL != "" {
		rightText = statusStyle.Render(a.cfg.BaseURL) + " "
	}

	// -4 for ╰─ and ─╯
	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText))
	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╰─") + leftText + fill + rightText + borderStyle.Render("─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, cfg Config) error {
	if cfg.BasePath == "" {
		cfg.BasePath = findBasePath()
	}

	p := tea.NewProgram(
		New(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

// findBasePath returns the working directory when it holds a samples
// directory
func findBasePath() string {
	if cwd, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(cwd, "samples")); err == nil {
			return cwd
		}
	}
	return ""
}
