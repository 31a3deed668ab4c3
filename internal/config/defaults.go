package config

const (
	defaultCacheDir           = "~/.cache/csmedia"
	defaultLogDir             = "~/.local/share/csmedia/logs"
	defaultUpdateWorkers      = 4
	defaultLockTimeoutSeconds = 30
	defaultProgressBar        = true
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	installDirEnv = "CSMEDIA_INSTALL_DIR"
)

var defaultSearchRoots = []string{
	"~/.wine/drive_c/Program Files/ETC/ETCCSPersEdit",
	"~/.wine/drive_c/Program Files (x86)/ETC/ETCCSPersEdit",
	"/opt/etc/ETCCSPersEdit",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SearchRoots: append([]string(nil), defaultSearchRoots...),
			CacheDir:    defaultCacheDir,
			LogDir:      defaultLogDir,
		},
		Update: Update{
			Workers:            defaultUpdateWorkers,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
			ProgressBar:        defaultProgressBar,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
