// ABOUTME: Integration tests for the TUI app
// ABOUTME: Tests gate-driven navigation, form submission, and recipe import

package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/recipe-scaler/internal/client"
	"github.com/markalston/recipe-scaler/internal/gate"
	"github.com/markalston/recipe-scaler/internal/logger"
	"github.com/markalston/recipe-scaler/internal/recipeview"
	"github.com/markalston/recipe-scaler/internal/session"
	"github.com/markalston/recipe-scaler/internal/tui/filepicker"
	"github.com/markalston/recipe-scaler/internal/tui/forms"
	"github.com/markalston/recipe-scaler/internal/tui/menu"
)

type fakeAPI struct {
	calls  int
	signIn *client.SignInResult
	recipe *client.Recipe
	err    error
}

func (f *fakeAPI) SignIn(ctx context.Context, cred client.Credential) (*client.SignInResult, error) {
	f.calls++
	return f.signIn, f.err
}

func (f *fakeAPI) AddRecipe(ctx context.Context, recipe client.Recipe) (string, error) {
	f.calls++
	return "Recipe added", f.err
}

func (f *fakeAPI) DeleteRecipe(ctx context.Context, name string) (string, error) {
	f.calls++
	return "Recipe deleted", f.err
}

func (f *fakeAPI) GetRecipe(ctx context.Context, name string, childrenCount int) (*client.Recipe, error) {
	f.calls++
	return f.recipe, f.err
}

func (f *fakeAPI) CreateUser(ctx context.Context, req client.NewUserRequest) (string, error) {
	f.calls++
	return "User created successfully", f.err
}

var (
	adminSession = session.Session{Token: "t", IsAdmin: true, UserID: "root"}
	userSession  = session.Session{Token: "t", UserID: "alice"}
)

func newTestApp(t *testing.T, api *fakeAPI, s session.Session) (*App, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(s)
	log := logger.Discard()
	app := New(context.Background(), Config{
		Controller: recipeview.New(api, store, log),
		Store:      store,
		AddRecipe:  api.AddRecipe,
		BaseURL:    "http://localhost:8080",
		ConfigDir:  t.TempDir(),
		Logger:     log,
	})
	app.width = 100
	app.height = 40
	return app, store
}

// drain runs cmd and feeds every message it yields back into the app,
// skipping spinner ticks
func drain(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drain(app, c)
		}
		return
	}
	switch msg.(type) {
	case jobDoneMsg, importDoneMsg, menu.SelectedMsg, forms.SubmittedMsg:
		_, next := app.Update(msg)
		drain(app, next)
	}
}

func TestAppLandsOnPublicWhenSignedOut(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, session.Session{})

	if app.Route() != gate.RoutePublic {
		t.Errorf("expected public route, got %s", app.Route())
	}
	if app.screen != ScreenMenu {
		t.Errorf("expected menu screen, got %d", app.screen)
	}
	choices := app.menu.Choices()
	if len(choices) != 2 || choices[0] != menu.ChoiceSignIn {
		t.Errorf("unexpected choices %v", choices)
	}
}

func TestAppLandsOnRecipesWhenSignedIn(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, userSession)

	if app.Route() != gate.RouteAuthenticated {
		t.Errorf("expected authenticated route, got %s", app.Route())
	}
	for _, c := range app.menu.Choices() {
		if c == menu.ChoiceAdmin {
			t.Error("admin tools must not be offered to a non-admin")
		}
	}
}

func TestAppAdminToolsForAdmin(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, adminSession)

	found := false
	for _, c := range app.menu.Choices() {
		if c == menu.ChoiceAdmin {
			found = true
		}
	}
	if !found {
		t.Fatal("expected admin tools for an admin")
	}

	app.Update(menu.SelectedMsg{Choice: menu.ChoiceAdmin})
	if app.Route() != gate.RouteAdminOnly {
		t.Errorf("expected admin route, got %s", app.Route())
	}

	app.Update(menu.SelectedMsg{Choice: menu.ChoiceBack})
	if app.Route() != gate.RouteAuthenticated {
		t.Errorf("expected authenticated route after back, got %s", app.Route())
	}
}

func TestAppAdminPathRedirectsNonAdmin(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, userSession)

	app.navigate(gate.PathAdmin)
	if app.Route() != gate.RouteAuthenticated {
		t.Errorf("expected redirect to authenticated route, got %s", app.Route())
	}
}

func TestAppSignIn(t *testing.T) {
	api := &fakeAPI{signIn: &client.SignInResult{Token: "tok", IsAdmin: true}}
	app, store := newTestApp(t, api, session.Session{})

	app.Update(menu.SelectedMsg{Choice: menu.ChoiceSignIn})
	if app.screen != ScreenForm {
		t.Fatalf("expected form screen, got %d", app.screen)
	}

	app.ctrl.Forms.SignIn = recipeview.SignInForm{ID: "root", Password: "pw"}
	_, cmd := app.Update(forms.SubmittedMsg{Action: recipeview.ActionSignIn})
	if !app.busy {
		t.Error("expected app to be busy while signing in")
	}
	drain(app, cmd)

	if app.busy {
		t.Error("expected app to be idle after sign-in")
	}
	s, _ := store.Get()
	if s.Token != "tok" || !s.IsAdmin || s.UserID != "root" {
		t.Errorf("unexpected stored session %+v", s)
	}
	if app.Route() != gate.RouteAuthenticated {
		t.Errorf("expected authenticated route, got %s", app.Route())
	}
	if !strings.Contains(app.View(), "Signed in as root") {
		t.Error("expected sign-in notice in view")
	}
}

func TestAppSignInRejected(t *testing.T) {
	api := &fakeAPI{err: &client.Error{Kind: client.KindAuthentication, Message: client.InvalidCredentialsMessage}}
	app, store := newTestApp(t, api, session.Session{})

	app.ctrl.Forms.SignIn = recipeview.SignInForm{ID: "root", Password: "bad"}
	_, cmd := app.Update(forms.SubmittedMsg{Action: recipeview.ActionSignIn})
	drain(app, cmd)

	if app.Route() != gate.RoutePublic {
		t.Errorf("expected to stay on public route, got %s", app.Route())
	}
	if app.screen != ScreenForm {
		t.Errorf("expected sign-in form to reopen, got %d", app.screen)
	}
	if s, _ := store.Get(); s.SignedIn() {
		t.Error("expected session to stay signed out")
	}
	if !strings.Contains(app.View(), client.InvalidCredentialsMessage) {
		t.Error("expected invalid credentials message in view")
	}
}

func TestAppInvalidInputSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, userSession)

	app.ctrl.Forms.GetRecipe = recipeview.GetRecipeForm{Name: "Soup", Children: "-2"}
	_, cmd := app.Update(forms.SubmittedMsg{Action: recipeview.ActionGetRecipe})
	drain(app, cmd)

	if api.calls != 0 {
		t.Errorf("expected no request, got %d", api.calls)
	}
	if app.screen != ScreenForm {
		t.Errorf("expected form to reopen with the error, got %d", app.screen)
	}
}

func TestAppGetRecipeShowsCard(t *testing.T) {
	api := &fakeAPI{recipe: &client.Recipe{
		Name:        "Pancakes",
		Ingredients: []client.Ingredient{client.Weight("flour", 1500)},
	}}
	app, _ := newTestApp(t, api, userSession)

	app.ctrl.Forms.GetRecipe = recipeview.GetRecipeForm{Name: "Pancakes", Children: "5"}
	_, cmd := app.Update(forms.SubmittedMsg{Action: recipeview.ActionGetRecipe})
	drain(app, cmd)

	if app.card == nil {
		t.Fatal("expected recipe card")
	}
	view := app.View()
	for _, want := range []string{"Pancakes", "5 children", "1,500 g"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestAppPrivilegedSubmitWithoutAdminSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, userSession)

	app.ctrl.Forms.DeleteRecipe.Name = "Soup"
	_, cmd := app.Update(forms.SubmittedMsg{Action: recipeview.ActionDeleteRecipe})

	if cmd != nil {
		t.Error("expected no command")
	}
	if api.calls != 0 {
		t.Errorf("expected no request, got %d", api.calls)
	}
	if app.busy {
		t.Error("expected app to stay idle")
	}
}

func TestAppAdminSessionRevokedBeforeSubmit(t *testing.T) {
	api := &fakeAPI{}
	app, store := newTestApp(t, api, adminSession)
	app.navigate(gate.PathAdmin)

	store.Set(userSession)
	app.ctrl.Forms.DeleteRecipe.Name = "Soup"
	app.Update(forms.SubmittedMsg{Action: recipeview.ActionDeleteRecipe})

	if api.calls != 0 {
		t.Errorf("expected no request, got %d", api.calls)
	}
	if app.Route() != gate.RouteAuthenticated {
		t.Errorf("expected gate to redirect off the admin route, got %s", app.Route())
	}
}

func TestAppSignOut(t *testing.T) {
	app, store := newTestApp(t, &fakeAPI{}, adminSession)

	app.Update(menu.SelectedMsg{Choice: menu.ChoiceSignOut})

	if s, _ := store.Get(); s.SignedIn() {
		t.Error("expected session to be cleared")
	}
	if app.Route() != gate.RoutePublic {
		t.Errorf("expected public route, got %s", app.Route())
	}
	if !strings.Contains(app.View(), "Signed out") {
		t.Error("expected sign-out notice")
	}
}

func TestAppCancelRerunsGate(t *testing.T) {
	app, store := newTestApp(t, &fakeAPI{}, userSession)
	app.Update(menu.SelectedMsg{Choice: menu.ChoiceGetRecipe})

	// Session cleared elsewhere, e.g. by "recipes logout"
	store.Clear()
	app.Update(forms.CancelledMsg{Action: recipeview.ActionGetRecipe})

	if app.Route() != gate.RoutePublic {
		t.Errorf("expected public route after external sign-out, got %s", app.Route())
	}
}

func TestAppBusyIgnoresKeys(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, userSession)
	app.busy = true

	if _, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd != nil {
		t.Error("expected keys to be ignored while busy")
	}
}

func TestAppImportMultipleRecipes(t *testing.T) {
	var added atomic.Int32
	api := &fakeAPI{}
	app, _ := newTestApp(t, api, adminSession)
	app.cfg.AddRecipe = func(ctx context.Context, r client.Recipe) (string, error) {
		added.Add(1)
		return "Recipe added", nil
	}
	app.navigate(gate.PathAdmin)
	app.Update(menu.SelectedMsg{Choice: menu.ChoiceImport})
	if app.screen != ScreenFilePicker {
		t.Fatalf("expected file picker, got %d", app.screen)
	}

	path := filepath.Join(t.TempDir(), "lunch.yaml")
	data := []byte("recipes:\n  - name: Soup\n    ingredients: [{name: water, weight: 500}]\n  - name: Bread\n    ingredients: [{name: flour, weight: 300}]\n")
	os.WriteFile(path, data, 0644)

	_, cmd := app.Update(filepicker.FileSelectedMsg{Path: path, Data: data})
	drain(app, cmd)

	if added.Load() != 2 {
		t.Errorf("expected 2 recipes added, got %d", added.Load())
	}
	if !strings.Contains(app.View(), "Imported 2 of 2 recipes from lunch.yaml") {
		t.Error("expected import summary")
	}
	if recent := app.recentFiles.List(); len(recent) != 1 || recent[0] != path {
		t.Errorf("expected %s in recent files, got %v", path, recent)
	}
}

func TestAppImportSingleRecipeOpensAddForm(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, adminSession)
	app.navigate(gate.PathAdmin)
	app.Update(menu.SelectedMsg{Choice: menu.ChoiceImport})

	data := []byte("name: Soup\ningredients:\n  - name: salt\n    value: a pinch\n")
	app.Update(filepicker.FileSelectedMsg{Path: filepath.Join(t.TempDir(), "soup.yaml"), Data: data})

	if app.screen != ScreenForm || app.form.Action() != recipeview.ActionAddRecipe {
		t.Fatalf("expected add recipe form, got screen %d", app.screen)
	}
	if app.ctrl.Forms.AddRecipe.Name != "Soup" || app.ctrl.Forms.AddRecipe.Kind != client.QuantityFreeform {
		t.Errorf("unexpected add form %+v", app.ctrl.Forms.AddRecipe)
	}
}

func TestAppImportParseError(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, adminSession)
	app.navigate(gate.PathAdmin)
	app.Update(menu.SelectedMsg{Choice: menu.ChoiceImport})

	app.Update(filepicker.FileSelectedMsg{Path: "/tmp/empty.yaml", Data: []byte("recipes: []\n")})

	if app.screen != ScreenFilePicker {
		t.Errorf("expected to stay in file picker, got %d", app.screen)
	}
	if !strings.Contains(app.View(), "no recipes found") {
		t.Error("expected parse error in picker view")
	}
}

func TestAppViewReturnsContent(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, userSession)

	view := app.View()
	for _, want := range []string{"Recipe Scaler", "alice", "Get recipe", "http://localhost:8080", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
