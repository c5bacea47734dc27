package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return errors.New("paths.source_dir must be set")
	}
	if strings.TrimSpace(c.Paths.CompletedDir) == "" {
		return errors.New("paths.completed_dir must be set")
	}
	if c.Paths.CompletedDir == c.Paths.SourceDir {
		return errors.New("paths.completed_dir must differ from paths.source_dir")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/distillery/config.toml"
		}
		return fmt.Errorf("catalog.base_url is required. Edit %s (create with 'distillery config init')", defaultPath)
	}
	if strings.TrimSpace(c.Catalog.Username) == "" {
		return errors.New("catalog.username is required. Set DISTILLERY_CATALOG_USERNAME or edit the config file")
	}
	if strings.TrimSpace(c.Catalog.Password) == "" {
		return errors.New("catalog.password is required. Set DISTILLERY_CATALOG_PASSWORD or edit the config file")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage.bucket must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
