// ABOUTME: User administration command for the recipes CLI
// ABOUTME: Creates users through the admin-only endpoint

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/recipe-scaler/internal/gate"
	"github.com/markalston/recipe-scaler/internal/recipeview"
)

var newUserAdmin bool

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users (admin)",
}

var userCreateCmd = &cobra.Command{
	Use:   "create ID",
	Short: "Create a user",
	Long: `Create a user with the given ID. The password is prompted without echo,
or read from stdin with --password-stdin.

Example:
  recipes user create bob
  recipes user create carol --admin --password-stdin < password.txt`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, d *deps) int {
			password, err := readPassword(os.Stdin, passwordStdin, os.Stderr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return exitLocal
			}
			return runUserCreate(ctx, os.Stdout, d, args[0], password, newUserAdmin)
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().BoolVar(&newUserAdmin, "admin", false, "Grant the new user admin rights")
	userCreateCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
}

// runUserCreate creates a user and returns exit code
func runUserCreate(ctx context.Context, w io.Writer, d *deps, id, password string, admin bool) int {
	s, code := d.authorize(w, gate.RouteAdminOnly)
	if code != exitOK {
		return code
	}

	d.controller.Forms.CreateUser = recipeview.CreateUserForm{ID: id, Password: password, IsAdmin: admin}
	return report(w, d.controller.Run(ctx, recipeview.ActionCreateUser, s))
}
