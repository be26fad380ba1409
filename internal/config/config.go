package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/project-packager/internal/domain/exclusion"
)

// Config holds the packager settings.
type Config struct {
	// Prefix is the archive name prefix, joined to the timestamp with an underscore.
	Prefix string `yaml:"prefix"`
	// OutputDir is where the archive is written. Relative paths resolve against the root.
	// Empty means the root itself.
	OutputDir string `yaml:"output_dir,omitempty"`
	// UploadDir is the root-relative directory that receives the placeholder file.
	UploadDir string `yaml:"upload_dir"`
	// PlaceholderName is the empty marker file kept inside UploadDir.
	PlaceholderName string `yaml:"placeholder_name"`
	// ReadmeName is the documentation file generated at the root.
	ReadmeName string `yaml:"readme_name"`
	// ReadmeContent is written verbatim to ReadmeName.
	ReadmeContent string `yaml:"readme_content"`
	// ManifestName is the dependency manifest generated at the root.
	ManifestName string `yaml:"manifest_name"`
	// Requirements are written to ManifestName, one per line.
	Requirements []string `yaml:"requirements"`
	// Excludes are basenames skipped wherever they appear in the tree.
	Excludes []string `yaml:"excludes"`
	// HiddenPrefix prunes every directory whose name starts with it. Empty disables the rule.
	HiddenPrefix string `yaml:"hidden_prefix"`
}

const (
	// DefaultConfigFilename is the settings file written by init-config.
	DefaultConfigFilename = "project-packager.yaml"

	// DefaultPrefix is the archive name prefix.
	DefaultPrefix = "multimodal_ai_assistant"

	// DefaultUploadDir is the directory receiving the placeholder file.
	DefaultUploadDir = "uploads"

	// DefaultPlaceholderName keeps the upload directory in version control.
	DefaultPlaceholderName = ".gitkeep"

	// DefaultReadmeName is the generated documentation file.
	DefaultReadmeName = "README.md"

	// DefaultManifestName is the generated dependency manifest.
	DefaultManifestName = "requirements.txt"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

//go:embed defaults/README.md
var defaultReadme string

// defaultRequirements lists the packages the packaged application needs.
//
//nolint:gochecknoglobals // Read-only default data.
var defaultRequirements = []string{
	"flask",
	"flask-cors",
	"google-generativeai",
	"pypdf2",
	"gunicorn",
	"psycopg2-binary",
	"email-validator",
	"flask-sqlalchemy",
}

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPrefixRequired is returned when the archive prefix is empty.
	errPrefixRequired = errors.New("archive prefix must be provided")
	// errBareName is returned when a field expecting a file name contains a path.
	errBareName = errors.New("must be a plain file name")
	// errUploadDirOutsideRoot is returned when the upload directory escapes the root.
	errUploadDirOutsideRoot = errors.New("upload directory must stay inside the root")
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Prefix:          DefaultPrefix,
		UploadDir:       DefaultUploadDir,
		PlaceholderName: DefaultPlaceholderName,
		ReadmeName:      DefaultReadmeName,
		ReadmeContent:   defaultReadme,
		ManifestName:    DefaultManifestName,
		Requirements:    append([]string(nil), defaultRequirements...),
		Excludes:        exclusion.DefaultNames(),
		HiddenPrefix:    exclusion.DefaultHiddenPrefix,
	}
}

// Load reads settings from path on top of Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.Prefix) == "" {
		return errPrefixRequired
	}

	bareNames := map[string]string{
		"prefix":           cfg.Prefix,
		"placeholder_name": cfg.PlaceholderName,
		"readme_name":      cfg.ReadmeName,
		"manifest_name":    cfg.ManifestName,
	}

	for field, value := range bareNames {
		if value == "" || strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
			return fmt.Errorf("%s %q: %w", field, value, errBareName)
		}
	}

	upload := filepath.Clean(filepath.FromSlash(cfg.UploadDir))
	if cfg.UploadDir == "" || filepath.IsAbs(upload) || upload == "." ||
		upload == ".." || strings.HasPrefix(upload, ".."+string(filepath.Separator)) {
		return fmt.Errorf("upload_dir %q: %w", cfg.UploadDir, errUploadDirOutsideRoot)
	}

	return nil
}

// ManifestContent renders the dependency manifest, one requirement per line.
func (c *Config) ManifestContent() string {
	if len(c.Requirements) == 0 {
		return ""
	}

	return strings.Join(c.Requirements, "\n") + "\n"
}
