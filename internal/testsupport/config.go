package testsupport

import (
	"path/filepath"
	"testing"

	"csmedia/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Search roots are cleared so tests never probe the real home directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SearchRoots = nil
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = ""
	cfgVal.Update.LockTimeoutSeconds = 2

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithInstall writes a complete install fixture and points install_dir at it.
func WithInstall(fixture InstallFixture) ConfigOption {
	return func(b *configBuilder) {
		root := filepath.Join(b.baseDir, "install")
		WriteInstall(b.t, root, fixture)
		b.cfg.Paths.InstallDir = root
	}
}

// WithWorkers overrides the update worker count.
func WithWorkers(workers int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Update.Workers = workers
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
