// Package discover finds source files to scan in a directory tree.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path string // Relative to the scanned root
}

// Options controls discovery.
type Options struct {
	// Extensions lists accepted file extensions, including the dot.
	Extensions []string
	// Exclude lists glob patterns matched against slash-separated relative
	// paths. "**" crosses directories.
	Exclude []string
}

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".vs":          {},
	"bin":          {},
	"obj":          {},
	"node_modules": {},
	"packages":     {},
}

type excludeMatcher []glob.Glob

func compileExcludes(patterns []string) (excludeMatcher, error) {
	var m excludeMatcher
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		m = append(m, g)
		// "**/x" should also match "x" at the root.
		if strings.HasPrefix(p, "**/") {
			g, err := glob.Compile(strings.TrimPrefix(p, "**/"), '/')
			if err == nil {
				m = append(m, g)
			}
		}
	}
	return m, nil
}

func (m excludeMatcher) match(rel string) bool {
	for _, g := range m {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Files discovers source files under root. The result is sorted by path;
// callers treat that order as canonical.
func Files(root string, opts Options) ([]FileEntry, error) {
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	excludes, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			rel, err := filepath.Rel(root, path)
			if err == nil && excludes.match(filepath.ToSlash(rel)+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if _, ok := exts[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if excludes.match(filepath.ToSlash(rel)) {
			return nil
		}

		results = append(results, FileEntry{Path: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// -z keeps non-ASCII paths unquoted.
	cmd := exec.CommandContext(ctx, "git", "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, name := range strings.Split(string(out), "\x00") {
		if name != "" {
			files[name] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
