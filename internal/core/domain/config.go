package domain

import "time"

// FallbackPolicy decides what happens when the host cannot enforce a sandbox.
type FallbackPolicy string

const (
	// FallbackStrict refuses to run a stage without a sandbox.
	FallbackStrict FallbackPolicy = "strict"
	// FallbackWarn runs the stage unsandboxed after logging a warning.
	FallbackWarn FallbackPolicy = "warn"
)

// LogFormat selects how log records are written.
type LogFormat string

const (
	// LogPretty writes colored, human-readable lines.
	LogPretty LogFormat = "pretty"
	// LogJSON writes one JSON object per record.
	LogJSON LogFormat = "json"
)

// Config is the resolved guard configuration.
type Config struct {
	Analysis AnalysisConfig
	Sandbox  SandboxConfig
	Log      LogConfig
	Exit     ExitConfig
	// Path is the file the configuration was read from; empty for defaults.
	Path string
}

// AnalysisConfig holds the analysis service settings.
type AnalysisConfig struct {
	URL     string
	Token   string
	Project string
	Group   string
	// Timeout bounds each HTTP request; zero means no timeout.
	Timeout time.Duration
}

// SandboxConfig holds sandbox settings shared by every stage.
type SandboxConfig struct {
	Fallback FallbackPolicy
	// Writable lists extra paths every stage may write to.
	Writable []string
	// Runnable lists extra commands the resolve stages may execute.
	Runnable []string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Format LogFormat
}

// ExitConfig controls how stage failures map to exit codes.
type ExitConfig struct {
	// StageCodes reports the stage exit code even when the package manager
	// returned its own status, which is usually 1 for every failure.
	StageCodes bool
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Sandbox: SandboxConfig{Fallback: FallbackStrict},
		Log:     LogConfig{Format: LogPretty},
	}
}
