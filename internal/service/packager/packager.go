package packager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/project-packager/internal/archive"
	"github.com/oshokin/project-packager/internal/config"
	"github.com/oshokin/project-packager/internal/domain/exclusion"
	"github.com/oshokin/project-packager/internal/logger"
	"github.com/oshokin/project-packager/internal/repository/artifact"
)

// packager builds one package for one root.
// It is unexported; callers should use CreatePackage, which resolves settings and guards.
type packager struct {
	// cfg holds the resolved settings.
	cfg *config.Config
	// root is the absolute project directory.
	root string
	// outputDir is the absolute directory receiving the archive.
	outputDir string
	// excludes decides which names are pruned during the walk.
	excludes *exclusion.Set
	// artifacts writes the generated project files.
	artifacts *artifact.Repository
	// now is the clock used for the archive name.
	now func() time.Time
	// dryRun disables writing the archive.
	dryRun bool
}

// errRootNotDirectory indicates that the packaged root is a file.
var errRootNotDirectory = errors.New("root is not a directory")

// newPackager creates a packager for the root named in opts.
func newPackager(opts *Options, cfg *config.Config) (*packager, error) {
	root, err := resolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	outputDir := cfg.OutputDir

	switch {
	case outputDir == "":
		outputDir = root
	case !filepath.IsAbs(outputDir):
		outputDir = filepath.Join(root, outputDir)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &packager{
		cfg:       cfg,
		root:      root,
		outputDir: filepath.Clean(outputDir),
		excludes:  exclusion.New(cfg.Excludes, cfg.HiddenPrefix),
		artifacts: artifact.NewRepository(root),
		now:       now,
		dryRun:    opts.DryRun,
	}, nil
}

// Run regenerates the project files and writes the archive.
func (p *packager) Run(ctx context.Context) (*Result, error) {
	logger.Info(ctx, "Preparing generated files")

	if err := p.prepareGeneratedFiles(ctx); err != nil {
		return nil, err
	}

	name := archive.Name(p.cfg.Prefix, p.now())
	result := &Result{
		ArchiveName: name,
		ArchivePath: filepath.Join(p.outputDir, name),
		DryRun:      p.dryRun,
	}

	ctx = logger.WithKV(ctx, "archive", name)

	logger.DebugKV(ctx, "Walking project", "excludes", p.excludes.Names())

	if p.dryRun {
		return p.plan(ctx, result)
	}

	if err := p.write(ctx, result); err != nil {
		return nil, err
	}

	p.printNextSteps(ctx, result)

	return result, nil
}

// prepareGeneratedFiles writes the placeholder, README and manifest before the walk
// so they are archived like any other file.
func (p *packager) prepareGeneratedFiles(ctx context.Context) error {
	if _, err := p.artifacts.EnsurePlaceholder(ctx, p.cfg.UploadDir, p.cfg.PlaceholderName); err != nil {
		return err
	}

	if _, err := p.artifacts.Overwrite(ctx, p.cfg.ReadmeName, p.cfg.ReadmeContent); err != nil {
		return err
	}

	if _, err := p.artifacts.Overwrite(ctx, p.cfg.ManifestName, p.cfg.ManifestContent()); err != nil {
		return err
	}

	return nil
}

// plan collects the entries that would be archived.
func (p *packager) plan(ctx context.Context, result *Result) (*Result, error) {
	err := walk(ctx, p.root, p.excludes, result.ArchiveName, func(entry archive.Entry) error {
		logger.DebugKV(ctx, "Would archive", "entry", entry.Name)

		result.Entries = append(result.Entries, entry.Name)

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Dry run finished, no archive written", "files", len(result.Entries))

	return result, nil
}

// write creates the archive and streams every walked entry into it.
func (p *packager) write(ctx context.Context, result *Result) error {
	if err := os.MkdirAll(p.outputDir, artifact.DefaultDirMode); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	writer, err := archive.Create(result.ArchivePath)
	if err != nil {
		return err
	}

	// Close is idempotent; this covers the error paths.
	defer func() {
		_ = writer.Close()
	}()

	err = walk(ctx, p.root, p.excludes, result.ArchiveName, func(entry archive.Entry) error {
		logger.DebugKV(ctx, "Archiving", "entry", entry.Name)

		if addErr := writer.Add(entry); addErr != nil {
			return addErr
		}

		result.Entries = append(result.Entries, entry.Name)

		return nil
	})
	if err != nil {
		return err
	}

	if err = writer.Close(); err != nil {
		return err
	}

	result.Size = writer.Size()

	logger.DebugKV(ctx, "Archive finalized", "files", writer.Count(), "bytes", result.Size)

	checksum, err := archive.Checksum(result.ArchivePath)
	if err != nil {
		return fmt.Errorf("archive checksum: %w", err)
	}

	result.Checksum = base64.StdEncoding.EncodeToString(checksum)

	return nil
}

// printNextSteps logs where the package is and how to get it.
func (p *packager) printNextSteps(ctx context.Context, result *Result) {
	logger.DebugKV(ctx, "Archive details",
		"files", len(result.Entries),
		"bytes", result.Size,
		"sha512", result.Checksum,
	)
	logger.Infof(ctx, "Package created: %s", result.ArchiveName)
	logger.Infof(ctx, "You can download this file from %s", p.outputDir)
}
