package config

const (
	defaultAuthMode           = "personal"
	defaultServiceAccountFile = "service-account.json"
	defaultGmailCheckInterval = 60
	defaultDriveBackend       = "drive"
	defaultDriveCheckInterval = 300
	defaultIdentityColumn     = "Nombre"
	defaultDownloadDir        = "~/.local/share/itti/downloads"
	defaultStateDir           = "~/.local/share/itti/state"
	defaultLogDir             = "~/.local/share/itti/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultErrorRetryInterval = 10
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Auth: Auth{
			Mode:               defaultAuthMode,
			ServiceAccountFile: defaultServiceAccountFile,
		},
		Gmail: Gmail{
			CheckInterval: defaultGmailCheckInterval,
		},
		Drive: Drive{
			Backend:       defaultDriveBackend,
			CheckInterval: defaultDriveCheckInterval,
		},
		Ingest: Ingest{
			IdentityColumn: defaultIdentityColumn,
			CreateFolders:  true,
			FoldCase:       true,
			MimeAllowList:  nil, // filled by normalize from the spreadsheet mime set
		},
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			NewCustomers:   true,
			Attachments:    true,
			Errors:         true,
		},
		Workflow: Workflow{
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
