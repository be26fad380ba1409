package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oshokin/project-packager/internal/logger"
)

const (
	// DefaultFileMode is used for generated files.
	DefaultFileMode os.FileMode = 0o644

	// DefaultDirMode is used for directories created on demand.
	DefaultDirMode os.FileMode = 0o755

	// diffContextLines is the number of unchanged lines around each diff hunk.
	diffContextLines = 3
)

// Repository writes generated files below a root directory.
type Repository struct {
	// root is the directory all names are resolved against.
	root string
}

// NewRepository creates a repository rooted at root.
func NewRepository(root string) *Repository {
	return &Repository{
		root: filepath.Clean(root),
	}
}

// Path resolves a slash-separated root-relative name.
func (r *Repository) Path(name string) string {
	return filepath.Join(r.root, filepath.FromSlash(name))
}

// Overwrite replaces the file called name with content and returns its path.
func (r *Repository) Overwrite(ctx context.Context, name, content string) (string, error) {
	path := r.Path(name)

	previous, err := os.ReadFile(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.DebugKV(ctx, "Creating generated file", "path", name)
	case err != nil:
		return "", fmt.Errorf("read %s: %w", name, err)
	case string(previous) == content:
		logger.DebugKV(ctx, "Generated file is up to date", "path", name)
	default:
		logger.DebugKV(ctx, "Overwriting generated file", "path", name, "diff", unifiedDiff(name, string(previous), content))
	}

	if err = os.WriteFile(path, []byte(content), DefaultFileMode); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return path, nil
}

// EnsurePlaceholder makes sure dir exists and holds an empty file called name.
// An existing placeholder is truncated; other files in dir are left alone.
func (r *Repository) EnsurePlaceholder(ctx context.Context, dir, name string) (string, error) {
	dirPath := r.Path(dir)
	if err := os.MkdirAll(dirPath, DefaultDirMode); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dirPath, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, DefaultFileMode)
	if err != nil {
		return "", fmt.Errorf("create placeholder: %w", err)
	}

	if err = file.Close(); err != nil {
		return "", fmt.Errorf("close placeholder: %w", err)
	}

	logger.DebugKV(ctx, "Placeholder is in place", "path", filepath.ToSlash(filepath.Join(dir, name)))

	return path, nil
}

// unifiedDiff renders the change from before to after.
func unifiedDiff(name, before, after string) string {
	//nolint:exhaustruct // Remaining fields have usable zero values.
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name + " (previous)",
		ToFile:   name,
		Context:  diffContextLines,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err.Error()
	}

	return text
}
