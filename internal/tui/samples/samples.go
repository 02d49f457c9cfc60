// ABOUTME: Discovers sample recipe files shipped with the repository
// ABOUTME: Looks in RECIPES_SAMPLES_PATH or ./samples for YAML and JSON files

package samples

import (
	"os"
	"path/filepath"
	"strings"
)

// SampleFile represents a discovered sample file
type SampleFile struct {
	Name string // Filename (e.g., "pancakes.yaml")
	Path string // Full path to the file
}

var recipeExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// IsRecipeFile reports whether path has a recipe file extension
func IsRecipeFile(path string) bool {
	return recipeExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover finds all recipe files in the given directory
func Discover(dir string) ([]SampleFile, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []SampleFile{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []SampleFile
	for _, entry := range entries {
		if entry.IsDir() || !IsRecipeFile(entry.Name()) {
			continue
		}
		files = append(files, SampleFile{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	return files, nil
}

// FindSamplesDir locates the samples directory.
// Checks in order:
// 1. override (from RECIPES_SAMPLES_PATH)
// 2. ./samples relative to basePath
func FindSamplesDir(override, basePath string) string {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	samplesDir := filepath.Join(basePath, "samples")
	if _, err := os.Stat(samplesDir); err == nil {
		return samplesDir
	}
	return ""
}
