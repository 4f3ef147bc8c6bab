// Package locator enumerates candidate Python source files under a
// project root. Enumeration order is not guaranteed; downstream stages
// sort their own output.
package locator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pycmerrors "pycm/internal/errors"
	"pycm/internal/logging"
)

// SourceFile identifies one candidate file.
type SourceFile struct {
	// Path is the project-relative, slash-separated path.
	Path string
	// AbsPath is the absolute filesystem path.
	AbsPath string
}

// Locator walks a project root collecting .py files.
type Locator struct {
	root            string
	excludePatterns []string
	maxFileSize     int64
	logger          *logging.Logger
}

// NewLocator creates a locator for the given root. excludePatterns are
// matched as substrings of the slash-separated relative path.
func NewLocator(root string, excludePatterns []string, maxFileSize int64, logger *logging.Logger) *Locator {
	return &Locator{
		root:            root,
		excludePatterns: excludePatterns,
		maxFileSize:     maxFileSize,
		logger:          logger,
	}
}

// Locate returns every non-excluded .py file under the root.
func (l *Locator) Locate(ctx context.Context) ([]SourceFile, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.InvalidInput, "project root does not exist: "+l.root, err)
	}
	if !info.IsDir() {
		return nil, pycmerrors.New(pycmerrors.InvalidInput, "project root is not a directory: "+l.root)
	}

	var files []SourceFile
	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Unreadable directory entries are skipped, not fatal.
			l.logger.Warn("skipping unreadable path", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(l.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && l.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".py") || l.excluded(rel) {
			return nil
		}

		if l.maxFileSize > 0 {
			if fi, statErr := d.Info(); statErr == nil && fi.Size() > l.maxFileSize {
				l.logger.Debug("skipping file: too large", map[string]interface{}{
					"file": rel,
					"size": fi.Size(),
				})
				return nil
			}
		}

		files = append(files, SourceFile{Path: rel, AbsPath: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("source enumeration completed", map[string]interface{}{
		"root":  l.root,
		"files": len(files),
	})

	return files, nil
}

func (l *Locator) excluded(rel string) bool {
	for _, pattern := range l.excludePatterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}
