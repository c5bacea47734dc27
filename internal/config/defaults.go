package config

const (
	defaultSourceDir             = "~/distillery/source"
	defaultCompletedDir          = "~/distillery/completed"
	defaultWorkDir               = "~/.local/share/distillery/work"
	defaultLogDir                = "~/.local/share/distillery/logs"
	defaultCatalogRequestTimeout = 30
	defaultCatalogRepositoryID   = 2
	defaultStorageRegion         = "us-west-2"
	defaultMagickBinary          = "magick"
	defaultExifToolBinary        = "exiftool"
	defaultUseStatement          = "image-master"
	defaultHeartbeatInterval     = 1
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultNtfyRequestTimeout    = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:    defaultSourceDir,
			CompletedDir: defaultCompletedDir,
			WorkDir:      defaultWorkDir,
			LogDir:       defaultLogDir,
		},
		Catalog: Catalog{
			RepositoryID:   defaultCatalogRepositoryID,
			RequestTimeout: defaultCatalogRequestTimeout,
		},
		Storage: Storage{
			Region: defaultStorageRegion,
		},
		Tools: Tools{
			MagickBinary:   defaultMagickBinary,
			ExifToolBinary: defaultExifToolBinary,
		},
		Ingest: Ingest{
			UseStatement: defaultUseStatement,
		},
		Workflow: Workflow{
			HeartbeatInterval: defaultHeartbeatInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
	}
}
