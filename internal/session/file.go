// ABOUTME: File-backed session store emulating browser local storage
// ABOUTME: Keeps token, is_admin, and user_id under fixed keys in a JSON file

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Well-known storage keys. Absence of KeyToken is the signed-out state.
const (
	KeyToken   = "token"
	KeyIsAdmin = "is_admin"
	KeyUserID  = "user_id"
)

// FileStore persists the session as a flat JSON object of string values
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// DefaultPath returns the session file location.
// Checks RECIPES_SESSION_FILE first, then the XDG config directory.
func DefaultPath() string {
	if envPath := os.Getenv("RECIPES_SESSION_FILE"); envPath != "" {
		return envPath
	}
	return filepath.Join(DefaultConfigDir(), "session.json")
}

// DefaultConfigDir returns the config directory following the XDG spec
func DefaultConfigDir() string {
	if dir := os.Getenv("RECIPES_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "recipe-scaler")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "recipe-scaler")
	}
	return filepath.Join(home, ".config", "recipe-scaler")
}

// Path returns the backing file path
func (fs *FileStore) Path() string {
	return fs.path
}

// Get reads the session. A missing file is the signed-out state; a file that
// is not a JSON object is treated the same way rather than failing.
func (fs *FileStore) Get() (Session, error) {
	values, err := fs.load()
	if err != nil {
		return Session{}, err
	}
	return fromValues(values), nil
}

// Set overwrites the stored session
func (fs *FileStore) Set(s Session) error {
	s = s.Normalize()
	if !s.SignedIn() {
		return fs.Clear()
	}

	admin, err := json.Marshal(s.IsAdmin)
	if err != nil {
		return fmt.Errorf("encoding admin flag: %w", err)
	}
	values := map[string]string{
		KeyToken:   s.Token,
		KeyIsAdmin: string(admin),
	}
	if s.UserID != "" {
		values[KeyUserID] = s.UserID
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}

	// Write to a sibling file and rename so a reader never sees half a session.
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing session file %s: %w", fs.path, err)
	}
	return nil
}

// Clear removes every stored field
func (fs *FileStore) Clear() error {
	err := os.Remove(fs.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file %s: %w", fs.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		fs.logger.Warn("Ignoring unreadable session file", "path", fs.path, "error", err)
		return nil, nil
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			// Non-string entries are kept verbatim so the admin flag can
			// still be parsed from e.g. a bare true.
			s = string(value)
		}
		values[key] = s
	}
	return values, nil
}

// fromValues builds a Session from stored key/value pairs
func fromValues(values map[string]string) Session {
	s := Session{
		Token:   values[KeyToken],
		UserID:  values[KeyUserID],
		IsAdmin: ParseAdminFlag(values[KeyIsAdmin]),
	}
	return s.Normalize()
}

// ParseAdminFlag decodes a stored admin flag. Anything other than the JSON
// boolean true, including malformed text, is false.
func ParseAdminFlag(raw string) bool {
	if raw == "" {
		return false
	}
	var v bool
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return false
	}
	return v
}
