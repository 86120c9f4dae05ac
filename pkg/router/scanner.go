package router

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Scanner walks an app directory for special route files.
type Scanner struct {
	rootDir string
}

// NewScanner creates a new route scanner.
func NewScanner(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// Scan returns every special Go file under the root in walk order. Other
// extensions (page.css), test files, hidden entries and underscore-prefixed
// entries are skipped.
func (s *Scanner) Scan() ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(s.rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if p != s.rootDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			return nil
		}

		kind, ok := kindAliases[strings.TrimSuffix(name, ".go")]
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(s.rootDir, p)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(rel)
		files = append(files, ScannedFile{Dir: path.Dir(id), Kind: kind, ID: id})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("scanning %s: %w", s.rootDir, err)
	}
	return files, nil
}

// Exists reports whether the root is an existing directory.
func (s *Scanner) Exists() bool {
	info, err := os.Stat(s.rootDir)
	return err == nil && info.IsDir()
}
