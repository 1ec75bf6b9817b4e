package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/fixpoint/internal/record"
)

// fileExt is the storage suffix for artifact files.
const fileExt = ".fixpoint"

// validName matches acceptable artifact names. Names are used directly as
// file names, so path metacharacters are rejected outright.
var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store is a directory of fixpoint artifacts, one file per artifact.
//
// Concurrent readers of a stored artifact are safe: artifacts are never
// mutated in place after Save. Concurrent writers to the same name are not;
// serializing writers is the calling convention's responsibility.
type Store struct {
	dir string
}

// Open creates or opens an artifact store rooted at dir.
// The directory is created if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Exists checks storage for an artifact under name without loading it.
func (s *Store) Exists(name string) (bool, error) {
	path, err := s.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Load reads and decodes the artifact stored under name.
// Returns ErrNotFound if absent, a CorruptArtifactError if the stored form
// is malformed.
func (s *Store) Load(name string) (*record.Artifact, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return Decode(name, data)
}

// Save encodes and writes the artifact atomically (temp file, fsync, rename).
// Zero-row tables are stripped by the encoder. Save writes unconditionally;
// workflows that must not overwrite an existing artifact check Exists first.
func (s *Store) Save(a *record.Artifact) error {
	path, err := s.path(a.Name)
	if err != nil {
		return err
	}
	data, err := Encode(a)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// List returns the names of all stored artifacts in sorted order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.dir, name+fileExt), nil
}

// writeAtomic writes data using the temp-file, fsync, rename pattern so a
// crash never leaves a half-written artifact under its final name.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fixpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
