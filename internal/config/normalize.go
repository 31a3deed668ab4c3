package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeUpdate()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.InstallDir) == "" {
		if value, ok := os.LookupEnv(installDirEnv); ok {
			c.Paths.InstallDir = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Paths.InstallDir, err = expandPath(strings.TrimSpace(c.Paths.InstallDir)); err != nil {
		return fmt.Errorf("paths.install_dir: %w", err)
	}

	roots := c.Paths.SearchRoots[:0]
	for _, root := range c.Paths.SearchRoots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		expanded, err := expandPath(root)
		if err != nil {
			return fmt.Errorf("paths.search_roots: %w", err)
		}
		roots = append(roots, expanded)
	}
	c.Paths.SearchRoots = roots

	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeUpdate() {
	if c.Update.Workers == 0 {
		c.Update.Workers = defaultUpdateWorkers
	}
	if c.Update.LockTimeoutSeconds == 0 {
		c.Update.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
