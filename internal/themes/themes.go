// Package themes stores the HTML templates used to render the summary card
// on the blog. Each theme is a <name>.html file in one directory.
package themes

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FallbackTheme is served when the requested theme does not exist.
const FallbackTheme = "light"

var (
	// ErrNotFound is returned when a theme file does not exist.
	ErrNotFound = errors.New("theme not found")

	// ErrInvalidName is returned for names that are not safe file names.
	ErrInvalidName = errors.New("invalid theme name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

//go:embed defaults/*.html
var defaultsFS embed.FS

// Store is a directory of theme files.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating the directory if needed and
// writing any built-in theme that is missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating themes directory %q: %w", dir, err)
	}

	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil, fmt.Errorf("reading built-in themes: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checking theme %q: %w", path, err)
		}

		data, err := defaultsFS.ReadFile("defaults/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading built-in theme %q: %w", entry.Name(), err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing built-in theme %q: %w", path, err)
		}
		slog.Info("installed built-in theme", "path", path)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the names of all themes, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing themes: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), ".html")
		if !ok || !validName.MatchString(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the content of the named theme.
func (s *Store) Get(name string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading theme %q: %w", name, err)
	}
	return string(data), nil
}

// Put creates or replaces the named theme. The file is replaced atomically
// so readers never see a partial template.
func (s *Store) Put(name, content string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for theme %q: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // removing after rename is a no-op

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing theme %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing theme %q: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting mode of theme %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving theme %q: %w", name, err)
	}
	return nil
}

// Delete removes the named theme.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting theme %q: %w", name, err)
	}
	return nil
}

// Card returns the template for the named theme. A missing or invalid theme
// falls back to the light theme, and to the built-in copy of it if that file
// was removed too.
func (s *Store) Card(name string) (string, error) {
	content, err := s.Get(name)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidName) {
		return "", err
	}
	slog.Warn("theme unavailable, using fallback", "theme", name, "fallback", FallbackTheme)

	content, err = s.Get(FallbackTheme)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	data, err := defaultsFS.ReadFile("defaults/" + FallbackTheme + ".html")
	if err != nil {
		return "", fmt.Errorf("reading built-in theme: %w", err)
	}
	return string(data), nil
}

// ValidName reports whether name may be used as a theme name.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

func (s *Store) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+".html"), nil
}
