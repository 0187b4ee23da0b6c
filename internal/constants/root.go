package constants

const (
	AppName            = "hourplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/hourplan"
	DefaultDBPath      = "~/.config/hourplan/hourplan.db"
	DefaultConfigFile  = "~/.config/hourplan/config.yaml"
	Version            = "v0.3.0"

	// KeyringSentinel as the --db value reads the PostgreSQL connection string from the OS keyring
	KeyringSentinel = "keyring"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Engine defaults
	DefaultWeekendHours  = 8.0
	DefaultMaxExtraHours = 8.0
	DefaultHorizonDays   = 730
	DefaultWeekdayHours  = 8.0

	// HourGranularity is the smallest unit of allocation
	HourGranularity = 0.5
	// HourEpsilon absorbs floating point drift when comparing hour totals
	HourEpsilon = 1e-4

	// UrgentColor marks urgent blocks in rendered output
	UrgentColor = "#eb0d0d"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "hourplan-"
	BackupFileSuffix = ".db"

	// Server defaults
	DefaultServerAddr = ":8080"

	// Environment
	EnvPrefix          = "HOURPLAN_"
	EnvPostgresTestURL = "POSTGRES_TEST_URL"
)
