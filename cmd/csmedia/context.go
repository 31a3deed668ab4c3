package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"csmedia/internal/config"
	"csmedia/internal/install"
	"csmedia/internal/logging"
	"csmedia/internal/mediadb"
)

type commandContext struct {
	configFlag   *string
	jsonFlag     *bool
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.logger = logger
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) loggerValue() *slog.Logger {
	if c.logger == nil {
		return logging.NewNop()
	}
	return c.logger
}

// layout resolves the vendor install. An explicit install_dir must be
// complete; otherwise the search roots are probed in order.
func (c *commandContext) layout() (install.Layout, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return install.Layout{}, err
	}
	if cfg.Paths.InstallDir != "" {
		layout, err := install.Locate(cfg.Paths.InstallDir)
		if err != nil {
			return install.Layout{}, err
		}
		if err := layout.Validate(); err != nil {
			return install.Layout{}, err
		}
		return layout, nil
	}
	return install.Detect(cfg.InstallCandidates())
}

func (c *commandContext) openStores(ctx context.Context, kinds []mediadb.Kind, writable bool) ([]mediadb.Library, error) {
	layout, err := c.layout()
	if err != nil {
		return nil, err
	}
	return install.OpenStores(ctx, layout, c.config.Paths.CacheDir, kinds, writable, c.loggerValue())
}

// openBrowseStore opens one cache read-only and warns on stderr when it is
// missing or stale.
func (c *commandContext) openBrowseStore(cmd *cobra.Command, kind mediadb.Kind) (mediadb.Library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	path := install.CachePath(cfg.Paths.CacheDir, kind)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s cache has not been built; run `csmedia update %s`", kind, kind)
	}
	stores, err := c.openStores(cmd.Context(), []mediadb.Kind{kind}, false)
	if err != nil {
		return nil, err
	}
	store := stores[0]
	if upToDate, err := store.UpToDate(cmd.Context()); err == nil && !upToDate {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s cache is stale; run `csmedia update %s`\n", kind, kind)
	}
	return store, nil
}

// parseKinds resolves kind arguments, defaulting to every kind.
func parseKinds(args []string) ([]mediadb.Kind, error) {
	if len(args) == 0 {
		return append([]mediadb.Kind(nil), mediadb.Kinds...), nil
	}
	seen := make(map[mediadb.Kind]bool, len(args))
	kinds := make([]mediadb.Kind, 0, len(args))
	for _, arg := range args {
		kind, err := mediadb.ParseKind(arg)
		if err != nil {
			return nil, err
		}
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

func kindNames() []string {
	names := make([]string, len(mediadb.Kinds))
	for i, kind := range mediadb.Kinds {
		names[i] = string(kind)
	}
	return names
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
