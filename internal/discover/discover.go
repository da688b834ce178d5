// Package discover lists the source files a harness instruments: files
// under a set of roots with a recognised extension, filtered by glob
// patterns. Inside a git work tree it honours .gitignore.
package discover

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jward/hookscope/internal/logging"
)

// skipDirs are never descended into by the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
}

// Finder discovers files. The zero value is ready to use.
type Finder struct {
	Logger *slog.Logger

	// NoGit forces the filesystem walk even inside a git work tree.
	NoGit bool
}

// Discover returns the files under roots whose extension is in extensions
// and that match include (when non-empty) and no pattern in exclude.
// Patterns use doublestar syntax and are matched against slash-separated
// paths relative to their root, and against the full path. The result is
// sorted and free of duplicates.
func (f *Finder) Discover(roots, extensions, include, exclude []string) ([]string, error) {
	if err := ValidatePatterns(include); err != nil {
		return nil, err
	}
	if err := ValidatePatterns(exclude); err != nil {
		return nil, err
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, root := range roots {
		paths, err := f.list(root)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			if !exts[strings.ToLower(filepath.Ext(path))] || seen[path] {
				continue
			}
			if !Selected(root, path, include, exclude) {
				continue
			}
			seen[path] = true
			out = append(out, path)
		}
	}
	sort.Strings(out)
	f.logger().Debug("discovered files", "roots", roots, "files", len(out))
	return out, nil
}

func (f *Finder) logger() *slog.Logger {
	if f.Logger == nil {
		return logging.NewNop()
	}
	return f.Logger
}

// list returns every file under root. git ls-files is used when root is in
// a work tree; otherwise, or when git is unavailable, the filesystem is
// walked.
func (f *Finder) list(root string) ([]string, error) {
	if !f.NoGit {
		paths, err := gitListFiles(root)
		if err == nil {
			return paths, nil
		}
		f.logger().Debug("git listing unavailable, walking", "root", root, "error", err)
	}
	return walkListFiles(root)
}

// gitListFiles lists tracked and untracked, non-ignored files under root.
func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paths = append(paths, filepath.Join(root, line))
	}
	return paths, nil
}

// walkListFiles walks root, skipping hidden directories and skipDirs.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}

// ValidatePatterns reports the first malformed glob pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("discover: invalid pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// Selected reports whether path, found under root, passes the include and
// exclude patterns. An empty include list selects everything; exclude wins
// over include.
func Selected(root, path string, include, exclude []string) bool {
	candidates := []string{filepath.ToSlash(path)}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		candidates = append(candidates, filepath.ToSlash(rel))
	}
	if len(include) > 0 && !matchAny(include, candidates) {
		return false
	}
	return !matchAny(exclude, candidates)
}

func matchAny(patterns, candidates []string) bool {
	for _, p := range patterns {
		for _, c := range candidates {
			if ok, _ := doublestar.Match(p, c); ok {
				return true
			}
		}
	}
	return false
}
