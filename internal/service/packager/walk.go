package packager

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/project-packager/internal/archive"
	"github.com/oshokin/project-packager/internal/domain/exclusion"
)

// visitFunc receives every file that survives the exclusion rules.
type visitFunc func(entry archive.Entry) error

// walk visits root top-down in lexical order. Excluded and hidden directories
// are pruned before descending; files are skipped by basename, including any
// file named like the archive being written. Symlinks to directories are not
// followed, symlinks to files are reported as files.
func walk(ctx context.Context, root string, excludes *exclusion.Set, archiveName string, visit visitFunc) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		// The root itself is never pruned, even when it is ".".
		if path == root {
			return nil
		}

		name := entry.Name()

		if entry.IsDir() {
			if excludes.SkipDir(name) {
				return filepath.SkipDir
			}

			return nil
		}

		if excludes.SkipFile(name) || name == archiveName {
			return nil
		}

		regular, err := isRegularFile(path, entry)
		if err != nil {
			return err
		}

		if !regular {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		return visit(archive.Entry{
			SourcePath: path,
			Name:       filepath.ToSlash(rel),
		})
	})
}

// isRegularFile resolves symlinks and reports whether path ends at a regular file.
func isRegularFile(path string, entry fs.DirEntry) (bool, error) {
	mode := entry.Type()
	if mode.IsRegular() {
		return true, nil
	}

	if mode&fs.ModeSymlink == 0 {
		// Sockets, pipes and devices.
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("resolve symlink %s: %w", path, err)
	}

	return info.Mode().IsRegular(), nil
}
