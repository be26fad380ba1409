package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/project-packager/internal/config"
	"github.com/oshokin/project-packager/internal/logger"
	"github.com/oshokin/project-packager/internal/service/common"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// Root is the project directory to package. Empty means the working directory.
	Root string
	// ConfigPath is an optional settings file; defaults are used when empty.
	ConfigPath string
	// Config overrides ConfigPath when set.
	Config *config.Config
	// OutputDir overrides the configured output directory when set.
	OutputDir string
	// DryRun regenerates the project files and lists the entries without writing the archive.
	DryRun bool
	// Force skips the check for other running packager processes.
	Force bool
	// Now returns the invocation time. Defaults to time.Now.
	Now func() time.Time
}

// Result describes a finished packaging run.
type Result struct {
	// ArchiveName is the file name of the archive, e.g. multimodal_ai_assistant_20240305_070809.zip.
	ArchiveName string
	// ArchivePath is the absolute location of the archive.
	ArchivePath string
	// Entries lists the archive-internal names in walk order.
	Entries []string
	// Size is the total uncompressed size of the archived files.
	Size int64
	// Checksum is the base64 SHA-512 of the archive. Empty for dry runs.
	Checksum string
	// DryRun reports that no archive was written.
	DryRun bool
}

// CreatePackage runs the packaging workflow and returns what it produced.
func CreatePackage(ctx context.Context, opts *Options) (*Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "project-packager")

	if opts == nil {
		opts = new(Options)
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		if err = ensureNoOtherInstance(); err != nil {
			return nil, err
		}
	}

	pkg, err := newPackager(opts, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize packager: %w", err)
	}

	result, err := pkg.Run(logger.WithKV(ctx, "root", pkg.root))
	if err != nil {
		return nil, fmt.Errorf("packager failed: %w", err)
	}

	return result, nil
}

// resolveConfig picks explicit settings, a settings file or the defaults.
func resolveConfig(opts *Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if opts.Config != nil {
		cfg = opts.Config
		if err = config.Validate(cfg); err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.OutputDir != "" {
		cloned := *cfg
		cloned.OutputDir = opts.OutputDir
		cfg = &cloned
	}

	return cfg, nil
}

// ensureNoOtherInstance refuses to run next to another packager process.
func ensureNoOtherInstance() error {
	name, err := common.CurrentExecutable()
	if err != nil {
		return err
	}

	return common.EnsureSingleInstance(name)
}

// resolveRoot returns the absolute project root.
func resolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("working directory: %w", err)
		}

		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	// WalkDir does not descend into a symlinked root, and $PWD may be one.
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat root: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", abs, errRootNotDirectory)
	}

	return abs, nil
}
