// ABOUTME: Entry point for the recipes CLI
// ABOUTME: Signs in, fetches scaled recipes, and administers the recipe service

package main

import (
	"fmt"
	"os"

	"github.com/markalston/recipe-scaler/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
