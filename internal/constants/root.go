package constants

const (
	AppName            = "hotset"
	DefaultKeyringUser = "database-connection"
	DefaultDBPath      = "~/.config/hotset/hotset.db"
	DefaultConfigFile  = "~/.config/hotset/policy.yaml"
	Version            = "v0.3.0"

	// EnvDBConnection overrides the database location when no --db flag is given
	EnvDBConnection = "HOTSET_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "hotset-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "hotset-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.hotset"
	TrayExecutablePrefix   = "hotset-tray"

	// HTTP API defaults
	DefaultListenAddr = "127.0.0.1:8750"
)
