// ABOUTME: Tests for the root command, global flags, and shared helpers
// ABOUTME: Provides an in-memory recipe backend used by the command tests

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/markalston/recipe-scaler/internal/client"
	"github.com/markalston/recipe-scaler/internal/config"
	"github.com/markalston/recipe-scaler/internal/gate"
	"github.com/markalston/recipe-scaler/internal/logger"
	"github.com/markalston/recipe-scaler/internal/recipeview"
	"github.com/markalston/recipe-scaler/internal/session"
)

var (
	adminSession = session.Session{Token: "admin-token", IsAdmin: true, UserID: "root"}
	userSession  = session.Session{Token: "user-token", UserID: "alice"}
)

// fakeBackend is a small recipe service: weights are scaled by the
// children count, and only the admin token may write
type fakeBackend struct {
	mu       sync.Mutex
	recipes  map[string]client.Recipe
	order    []string
	requests atomic.Int32
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{recipes: make(map[string]client.Recipe)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signin", b.signIn)
	mux.HandleFunc("GET /api/recipes/get", b.requireToken(false, b.get))
	mux.HandleFunc("POST /api/recipes/add", b.requireToken(true, b.add))
	mux.HandleFunc("DELETE /api/recipes/delete", b.requireToken(true, b.delete))
	mux.HandleFunc("POST /api/admin/create", b.requireToken(true, func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]string{"message": "User created successfully"})
	}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return b, server
}

func (b *fakeBackend) seed(r client.Recipe) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.recipes[r.Name]; !ok {
		b.order = append(b.order, r.Name)
	}
	b.recipes[r.Name] = r
}

func (b *fakeBackend) has(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.recipes[name]
	return ok
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) requireToken(admin bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		switch {
		case auth == "Bearer "+adminSession.Token:
		case auth == "Bearer "+userSession.Token && !admin:
		case auth == "Bearer "+userSession.Token:
			writeTestJSON(w, http.StatusForbidden, map[string]string{"message": "Admin access required"})
			return
		default:
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) signIn(w http.ResponseWriter, r *http.Request) {
	var cred client.Credential
	json.NewDecoder(r.Body).Decode(&cred)
	switch {
	case cred.ID == "root" && cred.Password == "pw":
		writeTestJSON(w, http.StatusOK, client.SignInResult{Token: adminSession.Token, IsAdmin: true})
	case cred.ID == "alice" && cred.Password == "pw":
		writeTestJSON(w, http.StatusOK, client.SignInResult{Token: userSession.Token})
	default:
		writeTestJSON(w, http.StatusUnauthorized, map[string]string{"message": "wrong password"})
	}
}

func (b *fakeBackend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := r.URL.Query().Get("name")
	if name == "" {
		list := make([]client.Recipe, 0, len(b.order))
		for _, n := range b.order {
			list = append(list, b.recipes[n])
		}
		writeTestJSON(w, http.StatusOK, list)
		return
	}

	recipe, ok := b.recipes[name]
	if !ok {
		writeTestJSON(w, http.StatusNotFound, map[string]string{"message": "Recipe not found"})
		return
	}
	children, _ := strconv.Atoi(r.URL.Query().Get("children"))
	scaled := client.Recipe{Name: recipe.Name}
	for _, ing := range recipe.Ingredients {
		if ing.Kind == client.QuantityWeight {
			ing.WeightGrams *= children
		}
		scaled.Ingredients = append(scaled.Ingredients, ing)
	}
	writeTestJSON(w, http.StatusOK, scaled)
}

func (b *fakeBackend) add(w http.ResponseWriter, r *http.Request) {
	var recipe client.Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		writeTestJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid recipe"})
		return
	}
	if b.has(recipe.Name) {
		writeTestJSON(w, http.StatusConflict, map[string]string{"message": "Recipe already exists"})
		return
	}
	b.seed(recipe)
	writeTestJSON(w, http.StatusOK, map[string]string{"message": "Recipe added"})
}

func (b *fakeBackend) delete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := r.URL.Query().Get("recipeName")
	if _, ok := b.recipes[name]; !ok {
		writeTestJSON(w, http.StatusNotFound, map[string]string{"message": "Recipe not found"})
		return
	}
	delete(b.recipes, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// testDeps points the global flags at serverURL and a temporary session file
// holding s
func testDeps(t *testing.T, serverURL string, s session.Session) *deps {
	t.Helper()
	apiURL = serverURL
	sessionFile = filepath.Join(t.TempDir(), "session.json")
	t.Cleanup(func() {
		apiURL = ""
		sessionFile = ""
		jsonOutput = false
	})

	cfg := &config.Config{
		APIURL:            config.DefaultAPIURL,
		Timeout:           5,
		ImportConcurrency: 2,
	}
	d := newDepsWithLogger(cfg, logger.Discard())
	if err := d.store.Set(s); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return d
}

func TestGetAPIURL_Default(t *testing.T) {
	apiURL = ""
	cfg := &config.Config{APIURL: config.DefaultAPIURL}

	if url := GetAPIURL(cfg); url != "http://localhost:8080" {
		t.Errorf("expected default URL http://localhost:8080, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesConfig(t *testing.T) {
	apiURL = "recipes.example.com:9000/"
	defer func() { apiURL = "" }()
	cfg := &config.Config{APIURL: "http://from-env.example.com"}

	if url := GetAPIURL(cfg); url != "http://recipes.example.com:9000" {
		t.Errorf("expected flag to override config, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestSessionPath(t *testing.T) {
	defer func() { sessionFile = "" }()

	sessionFile = ""
	cfg := &config.Config{SessionFile: "/from/env/session.json"}
	if got := sessionPath(cfg); got != "/from/env/session.json" {
		t.Errorf("expected config path, got %s", got)
	}

	sessionFile = "/from/flag/session.json"
	if got := sessionPath(cfg); got != "/from/flag/session.json" {
		t.Errorf("expected flag path, got %s", got)
	}
}

func TestNormalizeFlagName(t *testing.T) {
	if got := normalizeFlagName(nil, "api_url"); got != "api-url" {
		t.Errorf("expected api-url, got %s", got)
	}
	if got := normalizeFlagName(nil, "session-file"); got != "session-file" {
		t.Errorf("expected session-file unchanged, got %s", got)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name     string
		state    recipeview.FormState
		expected int
	}{
		{"success", recipeview.FormState{Status: recipeview.StatusSuccess}, exitOK},
		{"validation", recipeview.FormState{Status: recipeview.StatusError, Err: &client.Error{Kind: client.KindValidation}}, exitLocal},
		{"remote", recipeview.FormState{Status: recipeview.StatusError, Err: &client.Error{Kind: client.KindRemote}}, exitRejected},
		{"auth", recipeview.FormState{Status: recipeview.StatusError, Err: &client.Error{Kind: client.KindAuthentication}}, exitRejected},
		{"other", recipeview.FormState{Status: recipeview.StatusError, Err: errors.New("disk full")}, exitLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.state); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	_, server := newFakeBackend(t)

	tests := []struct {
		name     string
		session  session.Session
		route    gate.Route
		code     int
		contains string
	}{
		{"public always", session.Session{}, gate.RoutePublic, exitOK, ""},
		{"signed out", session.Session{}, gate.RouteAuthenticated, exitLocal, "not signed in"},
		{"user", userSession, gate.RouteAuthenticated, exitOK, ""},
		{"user on admin", userSession, gate.RouteAdminOnly, exitLocal, "requires an admin account"},
		{"admin", adminSession, gate.RouteAdminOnly, exitOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDeps(t, server.URL, tt.session)
			var buf bytes.Buffer

			_, code := d.authorize(&buf, tt.route)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
			if tt.contains != "" && !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("expected output to contain %q, got %q", tt.contains, buf.String())
			}
		})
	}
}

func TestReportJSON(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	var buf bytes.Buffer
	code := report(&buf, recipeview.FormState{Status: recipeview.StatusSuccess, Message: "Recipe added"})
	if code != exitOK {
		t.Errorf("expected exit 0, got %d", code)
	}

	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if out["message"] != "Recipe added" {
		t.Errorf("unexpected message %q", out["message"])
	}
}
