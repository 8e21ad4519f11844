package script

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// SelectFile lists the entries of opts.DefaultPath that match the
// filters. A DefaultPath naming a file selects that file. An empty
// match reports Canceled, like a dismissed dialog.
func (b *Backend) SelectFile(ctx context.Context, opts backend.FileOptions) (backend.FileResult, error) {
	if opts.DefaultPath == "" {
		return backend.FileResult{Result: backend.OK(), Canceled: true}, nil
	}

	info, err := os.Stat(opts.DefaultPath)
	if err != nil {
		return backend.FileResult{Result: backend.Fail(err.Error())}, nil
	}
	if !info.IsDir() {
		if opts.Directory {
			return backend.FileResult{Result: backend.OK(), Canceled: true}, nil
		}
		return backend.FileResult{Result: backend.OK(), FilePaths: []string{opts.DefaultPath}}, nil
	}
	if opts.Directory {
		return backend.FileResult{Result: backend.OK(), FilePaths: []string{opts.DefaultPath}}, nil
	}

	entries, err := os.ReadDir(opts.DefaultPath)
	if err != nil {
		return backend.FileResult{Result: backend.Fail(err.Error())}, nil
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !matchesFilters(e.Name(), opts.Filters) {
			continue
		}
		paths = append(paths, filepath.Join(opts.DefaultPath, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return backend.FileResult{Result: backend.OK(), Canceled: true}, nil
	}
	if !opts.Multiple {
		paths = paths[:1]
	}
	return backend.FileResult{Result: backend.OK(), FilePaths: paths}, nil
}

func matchesFilters(name string, filters []backend.FileFilter) bool {
	if len(filters) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, f := range filters {
		for _, want := range f.Extensions {
			if want == "*" || strings.EqualFold(want, ext) {
				return true
			}
		}
	}
	return false
}

// LoadProject reads a YAML or JSON project file.
func (b *Backend) LoadProject(ctx context.Context, path string) (backend.ProjectResult, error) {
	snap, err := project.LoadFile(path)
	if err != nil {
		return backend.ProjectResult{Result: backend.Fail(err.Error()), Path: path}, nil
	}
	return backend.ProjectResult{Result: backend.OK(), Path: path, Project: snap}, nil
}

// ReadFile reads a file from disk.
func (b *Backend) ReadFile(ctx context.Context, path string) (backend.FileContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return backend.FileContent{Result: backend.Fail(err.Error())}, nil
	}
	return backend.FileContent{Result: backend.OK(), Content: data}, nil
}
