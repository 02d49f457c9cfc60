// ABOUTME: Login, logout, and whoami commands for the recipes CLI
// ABOUTME: Signs in through the view controller and reports gate decisions per route

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/markalston/recipe-scaler/internal/gate"
	"github.com/markalston/recipe-scaler/internal/recipeview"
)

var (
	loginID       string
	passwordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the recipe service",
	Long: `Sign in with a user ID and password. The password is prompted without
echo when stdin is a terminal, or read from the first line of stdin with
--password-stdin.

Example:
  recipes login --id alice
  echo "$PASSWORD" | recipes login --id alice --password-stdin`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		d, err := newDeps()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitLocal)
		}

		password, err := readPassword(os.Stdin, passwordStdin, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitLocal)
		}

		if exitCode := runLogin(ctx, os.Stdout, d, loginID, password); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		d, err := newDeps()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitLocal)
		}
		if exitCode := runLogout(os.Stdout, d); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session and which routes it can reach",
	Run: func(cmd *cobra.Command, args []string) {
		d, err := newDeps()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitLocal)
		}
		if exitCode := runWhoami(os.Stdout, d); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	loginCmd.Flags().StringVar(&loginID, "id", "", "User ID")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.MarkFlagRequired("id")
}

// readPassword reads a password from the first line of in, or prompts on
// the terminal without echo
func readPassword(in *os.File, fromStdin bool, prompt io.Writer) (string, error) {
	if fromStdin {
		return readPasswordLine(in)
	}

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for password prompt (use --password-stdin)")
	}
	fmt.Fprint(prompt, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, d *deps, id, password string) int {
	current, err := d.store.Get()
	if err != nil {
		fmt.Fprintf(w, "Error: reading session: %v\n", err)
		return exitLocal
	}

	d.controller.Forms.SignIn = recipeview.SignInForm{ID: id, Password: password}
	st := d.controller.Run(ctx, recipeview.ActionSignIn, current)
	if st.Status == recipeview.StatusError {
		return report(w, st)
	}

	s, err := d.store.Get()
	if err != nil {
		fmt.Fprintf(w, "Error: reading session: %v\n", err)
		return exitLocal
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(s.UserID, s.Role()))
		return exitOK
	}
	fmt.Fprintf(w, "%s (%s)\n", st.Message, s.Role())
	return exitOK
}

// runLogout clears the session and returns exit code
func runLogout(w io.Writer, d *deps) int {
	if err := d.controller.SignOut(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitLocal
	}
	fmt.Fprintln(w, "Signed out")
	return exitOK
}

// runWhoami prints the session and the gate decision for every route
func runWhoami(w io.Writer, d *deps) int {
	s, err := d.store.Get()
	if err != nil {
		fmt.Fprintf(w, "Error: reading session: %v\n", err)
		return exitLocal
	}

	if IsJSONOutput() {
		routes := make(map[string]bool)
		for _, r := range gate.Routes() {
			routes[r.String()] = gate.Decide(r, s).Allowed
		}
		output := map[string]interface{}{
			"user_id":   s.UserID,
			"role":      s.Role(),
			"signed_in": s.SignedIn(),
			"routes":    routes,
		}
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	user := s.UserID
	if !s.SignedIn() {
		user = "(not signed in)"
	}
	fmt.Fprintf(w, "User:    %s\n", user)
	fmt.Fprintf(w, "Role:    %s\n", s.Role())
	fmt.Fprintf(w, "Backend: %s\n", d.client.BaseURL())
	fmt.Fprintln(w, "Routes:")
	for _, r := range gate.Routes() {
		decision := gate.Decide(r, s)
		status := "allowed"
		if !decision.Allowed {
			status = "redirects to " + decision.Redirect.Path()
		}
		fmt.Fprintf(w, "  %-8s %s\n", r.Path(), status)
	}
	return exitOK
}

// formatSessionJSON formats a signed-in session as JSON
func formatSessionJSON(userID, role string) string {
	output := map[string]interface{}{
		"user_id": userID,
		"role":    role,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
