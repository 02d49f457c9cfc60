// ABOUTME: Remembers the recipe files most recently imported from the TUI
// ABOUTME: Keeps absolute recipe file paths in recent.json under the config directory

package recentfiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/markalston/recipe-scaler/internal/tui/samples"
)

// MaxRecentFiles is how many imported recipe files are remembered
const MaxRecentFiles = 5

const fileName = "recent.json"

// RecentFiles is the list of recently imported recipe files, newest first
type RecentFiles struct {
	configDir string
	files     []string
}

type recentData struct {
	Files []string `json:"files"`
}

// New creates a list stored under configDir
func New(configDir string) *RecentFiles {
	return &RecentFiles{configDir: configDir}
}

func (rf *RecentFiles) path() string {
	return filepath.Join(rf.configDir, fileName)
}

// Load reads the list from disk. Entries that are gone, are directories, or
// are not recipe files are dropped, as are repeats. A missing or unreadable
// list loads as empty.
func (rf *RecentFiles) Load() ([]string, error) {
	rf.files = []string{}

	data, err := os.ReadFile(rf.path())
	if os.IsNotExist(err) {
		return rf.files, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recent files: %w", err)
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		return rf.files, nil
	}

	rf.files = usable(recent.Files)
	return rf.files, nil
}

// usable keeps the paths that still point at recipe files, first
// occurrence wins
func usable(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] || !samples.IsRecipeFile(p) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Save replaces the list on disk with at most MaxRecentFiles entries
func (rf *RecentFiles) Save(files []string) error {
	if len(files) > MaxRecentFiles {
		files = files[:MaxRecentFiles]
	}

	if err := os.MkdirAll(rf.configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory %s: %w", rf.configDir, err)
	}
	data, err := json.MarshalIndent(recentData{Files: files}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding recent files: %w", err)
	}

	tmp := rf.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing recent files: %w", err)
	}
	if err := os.Rename(tmp, rf.path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing recent files: %w", err)
	}

	rf.files = files
	return nil
}

// Add moves path to the front of the list. The path is stored absolute;
// anything that is not a recipe file is refused.
func (rf *RecentFiles) Add(path string) error {
	if !samples.IsRecipeFile(path) {
		return fmt.Errorf("not a recipe file: %s", filepath.Base(path))
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if rf.files == nil {
		if _, err := rf.Load(); err != nil {
			rf.files = []string{}
		}
	}

	files := []string{path}
	for _, f := range rf.files {
		if f != path {
			files = append(files, f)
		}
	}
	return rf.Save(files)
}

// List returns the list, loading it on first use
func (rf *RecentFiles) List() []string {
	if rf.files == nil {
		rf.Load()
	}
	return rf.files
}
