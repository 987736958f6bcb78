package config

// Version system:
// vMAJOR.MINOR.PATCH

// Centralized version control
const (
	// Executible
	Main_version = "v1.1.0"

	// Pipeline stages
	Builder   = "v1.0.0"
	Generator = "v1.0.0"
	Runner    = "v1.1.0" // Added per-invocation timeout
	Stats     = "v1.1.0" // Added linear fit
	Reporter  = "v1.2.0" // Added HTML chart, CSV and metrics exports
	Benchmark = "v1.0.0"
)
