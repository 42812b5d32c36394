package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

// ErrNoInputs is returned when the given paths expand to no files.
var ErrNoInputs = errors.New("no input files")

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// target is one file to process. rel is its path relative to the argument it
// was found under, which is where it lands below Options.OutDir.
type target struct {
	path string
	rel  string
}

// Expand resolves paths into the list of files Run would process, in order.
func (r *Runner) Expand(paths []string) ([]string, error) {
	targets, err := r.expand(paths)
	if err != nil {
		return nil, err
	}

	files := make([]string, len(targets))
	for i, t := range targets {
		files[i] = t.path
	}

	return files, nil
}

func (r *Runner) expand(paths []string) ([]target, error) {
	seen := make(map[string]bool)

	var targets []target

	add := func(t target) {
		if !seen[t.path] {
			seen[t.path] = true
			targets = append(targets, t)
		}
	}

	for _, arg := range paths {
		root := filepath.Clean(arg)

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		// Files named explicitly bypass include and exclude.
		if !info.IsDir() {
			add(target{path: root, rel: filepath.Base(root)})

			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}

			if d.IsDir() {
				if path != root && r.skipDir(d.Name(), path, rel) {
					return filepath.SkipDir
				}

				return nil
			}

			if d.Type().IsRegular() && r.wantFile(d.Name(), rel) {
				add(target{path: path, rel: rel})
			}

			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, walkErr)
		}
	}

	if len(targets) == 0 {
		return nil, ErrNoInputs
	}

	return targets, nil
}

func (r *Runner) skipDir(name, path, rel string) bool {
	if skippedDirs[name] {
		return true
	}

	// Output from an earlier run must not be fed back in.
	if r.opts.OutDir != "" && sameDir(path, r.opts.OutDir) {
		return true
	}

	return r.opts.SkipVendor && enry.IsVendor(filepath.ToSlash(rel)+"/")
}

func (r *Runner) wantFile(name, rel string) bool {
	if !r.included(name) {
		return false
	}

	for _, pattern := range r.opts.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return false
		}
	}

	return !r.opts.SkipVendor || !enry.IsVendor(filepath.ToSlash(rel))
}

func (r *Runner) included(name string) bool {
	lower := strings.ToLower(name)

	return slices.ContainsFunc(r.opts.Include, func(ext string) bool {
		return strings.HasSuffix(lower, strings.ToLower(ext))
	})
}

func sameDir(a, b string) bool {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false
	}

	absB, err := filepath.Abs(b)
	if err != nil {
		return false
	}

	return absA == absB
}
