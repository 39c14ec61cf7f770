package config

import "mtracecli/pkg/contracts"

// Application constants
const (
	// Application Info
	AppName    = "mtrace"
	AppVersion = contracts.Version

	// Analysis defaults
	DefaultTopN      = 10
	DefaultWorkers   = 4
	DefaultChunkSize = 512

	// HTTP limits
	DefaultMaxUploadBytes = 256 << 20 // 256MB
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20

	// File Paths (relative to the working directory)
	DefaultOutputDir = "out"
	DefaultLogsDir   = "logs"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Export formats accepted by the analyze command.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportFormats lists every supported export format.
var ExportFormats = []string{FormatJSON, FormatCSV, FormatXLSX}
