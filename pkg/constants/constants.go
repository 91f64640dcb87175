// Package constants provides shared constants used throughout the docledger codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for requests to the script service.
	// The service contract defines no timeout of its own, so this is the only bound.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// RefreshContextTimeout bounds a single background refresh of the ledgers
	RefreshContextTimeout = 2 * time.Minute

	// DefaultRefreshInterval is the default interval between automatic refreshes
	DefaultRefreshInterval = 5 * time.Minute

	// ShutdownTimeout is how long the CLI waits for graceful shutdown
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like the session file (rw-------)
	SecureFilePermissions = 0600

	// SecureDirPermissions is for directories holding sensitive files (rwx------)
	SecureDirPermissions = 0700
)

// Dashboard and view limits
const (
	// RecentWindow is how far back a document counts as recently added
	RecentWindow = 7 * 24 * time.Hour

	// RecentListLimit is the number of documents in the dashboard recent list
	RecentListLimit = 10

	// RenewalListLimit is the number of documents in the dashboard renewal list
	RenewalListLimit = 5

	// SerialDigits is the zero-padded width of serial sequences
	SerialDigits = 3
)

// Session and token constants
const (
	// TokenTTL is the lifetime of API session tokens
	TokenTTL = 24 * time.Hour

	// TokenIssuer is the issuer claim for API session tokens
	TokenIssuer = "docledger"
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached API data
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// Path constants
const (
	// DefaultDataDir is the per-user directory for docledger state
	DefaultDataDir = "~/.docledger"

	// DefaultSessionFile is the default session file inside DefaultDataDir
	DefaultSessionFile = "session.yaml"
)

// Format constants
const (
	// SheetDateTimeLayout is the DD/MM/YYYY HH:mm layout written to the sheets
	SheetDateTimeLayout = "02/01/2006 15:04"

	// SheetDateLayout is the DD/MM/YYYY layout written to the sheets
	SheetDateLayout = "02/01/2006"

	// ISOTimestampLayout is the UTC millisecond timestamp written with renewal amendments
	ISOTimestampLayout = "2006-01-02T15:04:05.000Z"

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
