package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// File and directory permissions for the token cache. Tokens are bearer
// credentials; nothing but the owner may read them.
const (
	cacheFilePerms = 0o600
	cacheDirPerms  = 0o700
)

// Account identifies a cached Microsoft identity.
type Account struct {
	Username      string `json:"username"`
	Name          string `json:"name,omitempty"`
	HomeAccountID string `json:"home_account_id"`
	Environment   string `json:"environment,omitempty"`
}

// Record pairs an account with its OAuth token in the cache file.
type Record struct {
	Account Account       `json:"account"`
	Token   *oauth2.Token `json:"token"`
}

// FileStore persists the multi-account token cache as a single JSON file.
type FileStore struct {
	path string
}

// cacheFile is the on-disk format.
type cacheFile struct {
	Accounts []Record `json:"accounts"`
}

// NewFileStore creates a store at path, creating the parent directory with
// 0700 permissions.
func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, cacheDirPerms); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("checking cache directory %s: %w", dir, err)
	}
	if perm := info.Mode().Perm(); perm != cacheDirPerms {
		slog.Warn("token cache directory has open permissions — should be 0700",
			"dir", dir,
			"perm", fmt.Sprintf("%04o", perm),
		)
	}

	return &FileStore{path: path}, nil
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads all cached account records. A missing cache file is not an
// error — it just means nobody has logged in yet.
func (s *FileStore) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token cache %s: %w", s.path, err)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing token cache %s: %w", s.path, err)
	}
	return cf.Accounts, nil
}

// Save writes all account records atomically (write-to-temp + rename,
// same directory so the rename stays on one filesystem) at 0600.
func (s *FileStore) Save(records []Record) error {
	data, err := json.MarshalIndent(cacheFile{Accounts: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(cacheFilePerms); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting cache file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing token cache %s: %w", s.path, err)
	}
	return nil
}
