package config

import (
	"errors"
	"fmt"
	"os"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateUpdate(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if c.Paths.InstallDir != "" {
		info, err := os.Stat(c.Paths.InstallDir)
		if err == nil && !info.IsDir() {
			return fmt.Errorf("paths.install_dir %q is not a directory", c.Paths.InstallDir)
		}
	}
	return nil
}

func (c *Config) validateUpdate() error {
	if c.Update.Workers < 1 {
		return errors.New("update.workers must be positive")
	}
	if c.Update.LockTimeoutSeconds < 1 {
		return errors.New("update.lock_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
