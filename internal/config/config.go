package config

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for a collection run.
type Paths struct {
	SourceDir    string `toml:"source_dir"`
	CompletedDir string `toml:"completed_dir"`
	WorkDir      string `toml:"work_dir"`
	LogDir       string `toml:"log_dir"`
}

// Catalog contains connection settings for the archival description API.
type Catalog struct {
	BaseURL        string `toml:"base_url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	RepositoryID   int    `toml:"repository_id"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Storage contains object storage settings for preservation derivatives.
type Storage struct {
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	ForcePathStyle  bool   `toml:"force_path_style"`
}

// Tools names the external binaries the verifier shells out to.
type Tools struct {
	MagickBinary   string `toml:"magick_binary"`
	ExifToolBinary string `toml:"exiftool_binary"`
}

// Ingest contains collection-independent ingestion policy.
type Ingest struct {
	// CollapsePrefixes lists collection prefixes whose legacy four-part
	// directory names collapse to three parts before normalization.
	CollapsePrefixes []string `toml:"collapse_prefixes"`
	Publisher        string   `toml:"publisher"`
	Rights           string   `toml:"rights"`
	UseStatement     string   `toml:"use_statement"`
}

// Workflow contains run timing settings.
type Workflow struct {
	HeartbeatInterval int `toml:"heartbeat_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for Distillery.
//
// Configuration sections by subsystem:
//   - Paths: source, completed, work, and log directories
//   - Catalog: archival description API connection
//   - Storage: preservation bucket and credentials
//   - Tools: external conversion and metadata binaries
//   - Ingest: identifier normalization and descriptive boilerplate
//   - Workflow: heartbeat cadence while external tools run
//   - Logging: log format and level
//   - Notifications: ntfy push notification settings
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	Storage       Storage       `toml:"storage"`
	Tools         Tools         `toml:"tools"`
	Ingest        Ingest        `toml:"ingest"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/distillery/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config %q: %w", expanded, err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if os.IsNotExist(err) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config %q: %w", defaultPath, err)
	}
	return defaultPath, true, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file %q already exists", expanded)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config %q: %w", expanded, err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), fs.FileMode(0o644)); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories a collection run writes into.
// SourceDir is deliberately not created: a missing source tree is a setup
// error the pipeline must report, not silently paper over.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CompletedDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeStorage()
	c.normalizeTools()
	c.normalizeIngest()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.CompletedDir, err = expandPath(c.Paths.CompletedDir); err != nil {
		return fmt.Errorf("paths.completed_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	if c.Catalog.Username == "" {
		if value, ok := os.LookupEnv("DISTILLERY_CATALOG_USERNAME"); ok {
			c.Catalog.Username = value
		}
	}
	if c.Catalog.Password == "" {
		if value, ok := os.LookupEnv("DISTILLERY_CATALOG_PASSWORD"); ok {
			c.Catalog.Password = value
		}
	}
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.RequestTimeout <= 0 {
		c.Catalog.RequestTimeout = defaultCatalogRequestTimeout
	}
	if c.Catalog.RepositoryID <= 0 {
		c.Catalog.RepositoryID = defaultCatalogRepositoryID
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultStorageRegion
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.MagickBinary) == "" {
		c.Tools.MagickBinary = defaultMagickBinary
	}
	if strings.TrimSpace(c.Tools.ExifToolBinary) == "" {
		c.Tools.ExifToolBinary = defaultExifToolBinary
	}
}

func (c *Config) normalizeIngest() {
	trimmed := make([]string, 0, len(c.Ingest.CollapsePrefixes))
	for _, prefix := range c.Ingest.CollapsePrefixes {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			trimmed = append(trimmed, prefix)
		}
	}
	c.Ingest.CollapsePrefixes = trimmed
	if strings.TrimSpace(c.Ingest.UseStatement) == "" {
		c.Ingest.UseStatement = defaultUseStatement
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
