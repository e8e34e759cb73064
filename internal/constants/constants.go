package constants

const (
	AppName            = "daynote"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/daynote/daynote.db"
	Version            = "v0.1.0"

	// DateFormat is the canonical date format for CLI input (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Environment variables
	EnvConfig       = "DAYNOTE_CONFIG"
	EnvDebug        = "DAYNOTE_DEBUG"
	EnvDBConnection = "DAYNOTE_DB_CONNECTION"

	// Persisted layout
	DaysKeyspace  = "days"
	DateIndexName = "days_date_idx"

	// Settings keys
	SettingLocale = "locale"

	// Default settings values
	DefaultLocale = "es"
)
