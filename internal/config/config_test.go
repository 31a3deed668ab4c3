package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"csmedia/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CSMEDIA_INSTALL_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if want := filepath.Join(tempHome, ".config", "csmedia", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, ".cache", "csmedia"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "csmedia", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, want)
	}
	if cfg.Paths.InstallDir != "" {
		t.Fatalf("expected empty install dir, got %q", cfg.Paths.InstallDir)
	}
	if len(cfg.Paths.SearchRoots) == 0 || !strings.HasPrefix(cfg.Paths.SearchRoots[0], tempHome) {
		t.Fatalf("expected search roots expanded under HOME, got %v", cfg.Paths.SearchRoots)
	}
	if cfg.Update.Workers != config.Default().Update.Workers {
		t.Fatalf("unexpected workers: %d", cfg.Update.Workers)
	}
	if cfg.LockTimeout() != 30*time.Second {
		t.Fatalf("unexpected lock timeout: %s", cfg.LockTimeout())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "csmedia.toml")

	type payload struct {
		Paths struct {
			InstallDir string `toml:"install_dir"`
			CacheDir   string `toml:"cache_dir"`
		} `toml:"paths"`
		Update struct {
			Workers int `toml:"workers"`
		} `toml:"update"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.InstallDir = filepath.Join(tempDir, "install")
	custom.Paths.CacheDir = filepath.Join(tempDir, "cache")
	custom.Update.Workers = 2
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected %q to be loaded, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Paths.InstallDir != custom.Paths.InstallDir {
		t.Fatalf("unexpected install dir: %q", cfg.Paths.InstallDir)
	}
	if cfg.Paths.CacheDir != custom.Paths.CacheDir {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Update.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Update.Workers)
	}
	if cfg.Update.LockTimeoutSeconds != config.Default().Update.LockTimeoutSeconds {
		t.Fatalf("expected default lock timeout, got %d", cfg.Update.LockTimeoutSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	candidates := cfg.InstallCandidates()
	if len(candidates) == 0 || candidates[0] != custom.Paths.InstallDir {
		t.Fatalf("expected install dir first among candidates, got %v", candidates)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "csmedia.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\ncache_directory = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestInstallDirFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	installDir := t.TempDir()
	t.Setenv("CSMEDIA_INSTALL_DIR", installDir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.InstallDir != installDir {
		t.Fatalf("expected install dir from env, got %q", cfg.Paths.InstallDir)
	}
}

func TestConfigFileOverridesEnvInstallDir(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("CSMEDIA_INSTALL_DIR", filepath.Join(tempDir, "from-env"))
	fromFile := filepath.Join(tempDir, "from-file")
	configPath := filepath.Join(tempDir, "csmedia.toml")
	contents := "[paths]\ninstall_dir = \"" + filepath.ToSlash(fromFile) + "\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.InstallDir != fromFile {
		t.Fatalf("expected file value to win, got %q", cfg.Paths.InstallDir)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "CSMEDIA_INSTALL_DIR") {
		t.Fatalf("sample config missing env hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.CacheDir, "csmedia") {
		t.Fatalf("expected cache dir to contain csmedia, got %q", cfg.Paths.CacheDir)
	}
	if cfg.Update.Workers != config.Default().Update.Workers {
		t.Fatalf("sample workers drifted from defaults: %d", cfg.Update.Workers)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal encoded: %v", err)
	}
	if decoded.Update != cfg.Update || decoded.Logging != cfg.Logging {
		t.Fatalf("encoded config lost values: %+v", decoded)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero workers", func(c *config.Config) { c.Update.Workers = 0 }},
		{"negative lock timeout", func(c *config.Config) { c.Update.LockTimeoutSeconds = -1 }},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"empty cache dir", func(c *config.Config) { c.Paths.CacheDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cfg := config.Default()
	cfg.Paths.InstallDir = file
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when install dir is a file")
	}
}
