package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"kgen/internal/ports"
)

// ErrAccessDenied is returned for paths outside the directories kgen may touch.
var ErrAccessDenied = errors.New("access denied: path is outside the allowed directories")

// OsFileSystem reads and writes files below a fixed set of root directories:
// the project directory and ~/.kgen. Symlinks are resolved before the check.
type OsFileSystem struct {
	roots []string
}

func ProvideOsFileSystem() *OsFileSystem {
	var roots []string
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".kgen"))
	}
	return NewOsFileSystem(roots...)
}

// NewOsFileSystem returns a file system confined to roots.
func NewOsFileSystem(roots ...string) *OsFileSystem {
	return &OsFileSystem{roots: roots}
}

func (f *OsFileSystem) ReadFile(path string) ([]byte, error) {
	resolved, err := f.validatePath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(resolved)
}

func (f *OsFileSystem) WriteFile(path string, content []byte, accessMode ports.AccessMode) error {
	resolved, err := f.validatePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), getOsFileModeForAccessMode(ports.ReadWriteExecute)); err != nil {
		return fmt.Errorf("failed to ensure directory exists: %w", err)
	}

	mode := getOsFileModeForAccessMode(accessMode)
	if err := os.WriteFile(resolved, content, mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(resolved, mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	return nil
}

func (f *OsFileSystem) FileExists(path string) (bool, error) {
	resolved, err := f.validatePath(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(resolved)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if file exists: %w", err)
}

func (f *OsFileSystem) MkdirAll(path string, accessMode ports.AccessMode) error {
	resolved, err := f.validatePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(resolved, getOsFileModeForAccessMode(accessMode)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

func (f *OsFileSystem) RemoveAll(path string) error {
	resolved, err := f.validatePath(path)
	if err != nil {
		return err
	}
	for _, root := range f.resolvedRoots() {
		if pathsEqual(resolved, root) {
			return fmt.Errorf("%w: refusing to remove %s", ErrAccessDenied, path)
		}
	}
	if err := os.RemoveAll(resolved); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// validatePath expands, absolutises and resolves path and checks that it stays
// below one of the roots.
func (f *OsFileSystem) validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrAccessDenied)
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	resolved := resolveExisting(filepath.Clean(abs))

	for _, root := range f.resolvedRoots() {
		if pathsEqual(resolved, root) || pathHasPrefix(resolved, root+string(filepath.Separator)) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
}

func (f *OsFileSystem) resolvedRoots() []string {
	out := make([]string, 0, len(f.roots))
	for _, root := range f.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		out = append(out, resolveExisting(filepath.Clean(abs)))
	}
	return out
}

// resolveExisting evaluates symlinks in the longest existing prefix of path and
// appends the remaining, not yet created, elements.
func resolveExisting(path string) string {
	existing := path
	var rest []string
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...)
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return path
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}

func expandPath(path string) (string, error) {
	path = normalizePathSeparators(path)
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func normalizePathSeparators(path string) string {
	sep := string(filepath.Separator)
	path = strings.ReplaceAll(path, "/", sep)
	return strings.ReplaceAll(path, "\\", sep)
}

func pathsEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func pathHasPrefix(path, prefix string) bool {
	if len(path) < len(prefix) {
		return false
	}
	return pathsEqual(path[:len(prefix)], prefix)
}

func getOsFileModeForAccessMode(accessMode ports.AccessMode) os.FileMode {
	switch accessMode {
	case ports.ReadWrite:
		return 0600
	case ports.ReadWriteExecute:
		return 0700
	case ports.ReadAllWriteOwner:
		return 0644
	default:
		return 0600
	}
}
