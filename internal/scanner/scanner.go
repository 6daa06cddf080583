// internal/scanner/scanner.go
package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// ContentPattern matches the recognized content extensions in one directory.
const ContentPattern = "*.{yaml,yml}"

// File is one content file found by Scan.
type File struct {
	Name      string // base name, e.g. "boardgame_vol_1.yaml"
	Path      string // Name joined to the scanned directory
	SizeBytes int64
}

// Options configures a Scanner.
type Options struct {
	// IgnoreFile names a gitignore-style file inside the directory whose
	// patterns exclude content files. Empty disables it.
	IgnoreFile string
}

// Scanner enumerates content files in a single directory, non-recursively.
type Scanner struct {
	dir    string
	ignore gitignore.GitIgnore
}

// New prepares a scanner for dir, creating the directory if it does not
// exist so a fresh project indexes as empty.
func New(dir string, opts Options) (*Scanner, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	s := &Scanner{dir: dir}
	if opts.IgnoreFile != "" {
		s.ignore = loadIgnoreFile(filepath.Join(dir, opts.IgnoreFile), dir)
	}
	return s, nil
}

// Dir returns the scanned directory.
func (s *Scanner) Dir() string {
	return s.dir
}

// Scan returns the content files currently in the directory. No ordering
// is guaranteed.
func (s *Scanner) Scan() ([]File, error) {
	names, err := doublestar.Glob(os.DirFS(s.dir), ContentPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.dir, err)
	}

	files := make([]File, 0, len(names))
	for _, name := range names {
		if s.isIgnored(name) {
			continue
		}
		path := filepath.Join(s.dir, name)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		files = append(files, File{Name: name, Path: path, SizeBytes: info.Size()})
	}
	return files, nil
}

// Count returns how many content files Scan would return.
func (s *Scanner) Count() (int, error) {
	files, err := s.Scan()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

func (s *Scanner) isIgnored(name string) bool {
	if s.ignore == nil {
		return false
	}
	match := s.ignore.Relative(name, false)
	return match != nil && match.Ignore()
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// A missing file yields nil, which ignores nothing.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
