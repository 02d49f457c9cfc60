// ABOUTME: Interactive terminal UI command
// ABOUTME: Launches the TUI with logs written to a file under the config directory

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/recipe-scaler/internal/config"
	"github.com/markalston/recipe-scaler/internal/logger"
	"github.com/markalston/recipe-scaler/internal/session"
	"github.com/markalston/recipe-scaler/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	Long: `Start the interactive terminal UI. Signed-out users see the sign-in
screen, signed-in users the recipe screen, and admins also get the admin
tools. Logs go to debug.log in the config directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitLocal)
		}
		if exitCode := runTUI(ctx, os.Stderr, cfg); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiConfig builds the TUI wiring from shared dependencies
func tuiConfig(d *deps) tui.Config {
	return tui.Config{
		Controller:  d.controller,
		Store:       d.store,
		AddRecipe:   d.client.AddRecipe,
		ImportLimit: d.cfg.ImportConcurrency,
		BaseURL:     d.client.BaseURL(),
		ConfigDir:   configDir(d.cfg),
		SamplesPath: d.cfg.SamplesPath,
		Logger:      d.logger,
	}
}

func configDir(cfg *config.Config) string {
	if cfg.ConfigDir != "" {
		return cfg.ConfigDir
	}
	return session.DefaultConfigDir()
}

// runTUI opens the log file and runs the TUI until the user quits
func runTUI(ctx context.Context, w io.Writer, cfg *config.Config) int {
	logPath := filepath.Join(configDir(cfg), "debug.log")
	log, closer, err := logger.OpenFile(logPath, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(w, "Warning: %v (logging disabled)\n", err)
		log = logger.Discard()
	} else {
		defer closer.Close()
	}

	d := newDepsWithLogger(cfg, log)
	d.logger.Info("Starting TUI", "api_url", d.client.BaseURL())

	if err := tui.Run(ctx, tuiConfig(d)); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitLocal
	}
	return exitOK
}
