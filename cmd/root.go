// ABOUTME: Root command for the recipes CLI
// ABOUTME: Handles global flags, configuration, and shared dependencies

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/markalston/recipe-scaler/internal/client"
	"github.com/markalston/recipe-scaler/internal/config"
	"github.com/markalston/recipe-scaler/internal/gate"
	"github.com/markalston/recipe-scaler/internal/logger"
	"github.com/markalston/recipe-scaler/internal/recipeview"
	"github.com/markalston/recipe-scaler/internal/session"
)

var (
	apiURL      string
	jsonOutput  bool
	sessionFile string
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1 // the server or sign-in rejected the request
	exitLocal    = 2 // validation, authorization, config, or I/O failure
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "recipes",
	Short: "CLI for the recipe scaling service",
	Long: `recipes is a command-line client for the recipe scaling service.

It signs in, fetches recipes scaled to a number of children, and lets
administrators manage recipes and users.

Environment Variables:
  RECIPES_API_URL       Backend API URL (default: http://localhost:8080)
  RECIPES_SESSION_FILE  Session file (default: ~/.config/recipe-scaler/session.json)
  RECIPES_TIMEOUT       Request timeout in seconds (default: 30)
  LOG_LEVEL             debug, info, warn, error (default: info)
  LOG_FORMAT            text, json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	logger.Init()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides RECIPES_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Session file (overrides RECIPES_SESSION_FILE)")
	rootCmd.PersistentFlags().SetNormalizeFunc(normalizeFlagName)
}

// normalizeFlagName accepts underscores in flag names (--api_url)
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL(cfg *config.Config) string {
	if apiURL != "" {
		return config.EnsureScheme(apiURL)
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// deps bundles what a command needs to talk to the backend
type deps struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      session.Store
	client     *client.Client
	controller *recipeview.Controller
}

// newDeps loads configuration and wires the session store, client, and
// controller. Logs go to stderr.
func newDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newDepsWithLogger(cfg, logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)), nil
}

func newDepsWithLogger(cfg *config.Config, log *slog.Logger) *deps {
	store := session.NewFileStore(sessionPath(cfg), log)
	c := client.New(GetAPIURL(cfg),
		client.WithSession(store),
		client.WithTimeout(cfg.RequestTimeout()),
		client.WithLogger(log),
	)
	return &deps{
		cfg:        cfg,
		logger:     log,
		store:      store,
		client:     c,
		controller: recipeview.New(c, store, log),
	}
}

func sessionPath(cfg *config.Config) string {
	switch {
	case sessionFile != "":
		return sessionFile
	case cfg.SessionFile != "":
		return cfg.SessionFile
	default:
		return session.DefaultPath()
	}
}

// authorize reads the session and runs the gate for route. A denial prints a
// notice and returns a non-zero exit code.
func (d *deps) authorize(w io.Writer, route gate.Route) (session.Session, int) {
	s, err := d.store.Get()
	if err != nil {
		fmt.Fprintf(w, "Error: reading session: %v\n", err)
		return session.Session{}, exitLocal
	}
	if decision := gate.Decide(route, s); !decision.Allowed {
		if route == gate.RouteAdminOnly && s.SignedIn() {
			fmt.Fprintln(w, "Error: this command requires an admin account")
		} else {
			fmt.Fprintln(w, "Error: not signed in (run 'recipes login' first)")
		}
		return s, exitLocal
	}
	return s, exitOK
}

// exitCodeFor maps a failed form state to an exit code
func exitCodeFor(st recipeview.FormState) int {
	if st.Status != recipeview.StatusError {
		return exitOK
	}
	if client.IsValidation(st.Err) {
		return exitLocal
	}
	if client.IsRemote(st.Err) || client.IsAuthentication(st.Err) {
		return exitRejected
	}
	return exitLocal
}

// report prints the outcome of a controller action and returns its exit code
func report(w io.Writer, st recipeview.FormState) int {
	if st.Status == recipeview.StatusError {
		fmt.Fprintf(w, "Error: %s\n", st.Message)
		return exitCodeFor(st)
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]string{"message": st.Message})
	}
	if st.Message != "" {
		fmt.Fprintln(w, st.Message)
	}
	return exitOK
}
