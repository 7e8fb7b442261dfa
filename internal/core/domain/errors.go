package domain

import "go.trai.ch/zerr"

var (
	// ErrLeadingFlags is returned when options are placed before the package manager subcommand.
	ErrLeadingFlags = zerr.New("arguments before the first subcommand are not supported")

	// ErrUnknownManager is returned when the requested package manager is not supported.
	ErrUnknownManager = zerr.New("unsupported package manager")

	// ErrRootNotFound is returned when no project root could be found from the working directory.
	ErrRootNotFound = zerr.New("could not find project root")

	// ErrSnapshotFailed is returned when a package manager state file cannot be captured.
	ErrSnapshotFailed = zerr.New("failed to snapshot package manager state")

	// ErrDryRunFailed is returned when the lockfile-only package manager run fails.
	ErrDryRunFailed = zerr.New("lockfile update failed")

	// ErrCacheFailed is returned when downloading packages into the cache fails.
	ErrCacheFailed = zerr.New("package download failed")

	// ErrSandboxFailed is returned when the sandboxed installation fails.
	ErrSandboxFailed = zerr.New("sandboxed installation failed")

	// ErrSandboxSetupFailed is returned when the sandbox could not be set up for a stage.
	ErrSandboxSetupFailed = zerr.New("failed to set up sandbox")

	// ErrPolicyFailure is returned when the analysis service rejects the dependency set.
	ErrPolicyFailure = zerr.New("dependencies failed the policy evaluation")

	// ErrAnalysisIncomplete is returned when some packages have not been analyzed yet.
	ErrAnalysisIncomplete = zerr.New("analysis is incomplete")

	// ErrAnalysisNotConfigured is returned when no analysis service URL is configured.
	ErrAnalysisNotConfigured = zerr.New("analysis service URL is not configured")

	// ErrAnalysisRequestFailed is returned when a request to the analysis service fails.
	ErrAnalysisRequestFailed = zerr.New("failed to make analysis service request")

	// ErrAnalysisUnauthorized is returned when the analysis service rejects the credentials.
	ErrAnalysisUnauthorized = zerr.New("analysis service rejected the API token")

	// ErrAnalysisParseFailed is returned when an analysis service response cannot be decoded.
	ErrAnalysisParseFailed = zerr.New("failed to parse analysis service response")

	// ErrLockfileReadFailed is returned when a lockfile cannot be read.
	ErrLockfileReadFailed = zerr.New("failed to read lockfile")

	// ErrLockfileParseFailed is returned when a lockfile cannot be parsed.
	ErrLockfileParseFailed = zerr.New("failed to parse lockfile")

	// ErrUnknownLockfileFormat is returned when the lockfile format cannot be determined.
	ErrUnknownLockfileFormat = zerr.New("unknown lockfile format")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidFallback is returned when the sandbox fallback setting is not recognized.
	ErrInvalidFallback = zerr.New("invalid sandbox fallback, expected 'strict' or 'warn'")

	// ErrInvalidLogFormat is returned when the log format setting is not recognized.
	ErrInvalidLogFormat = zerr.New("invalid log format, expected 'pretty' or 'json'")

	// ErrInvalidExitCodes is returned when the exit code mode is not recognized.
	ErrInvalidExitCodes = zerr.New("invalid exit codes mode, expected 'manager' or 'stage'")

	// ErrCommandStartFailed is returned when a package manager process cannot be started.
	ErrCommandStartFailed = zerr.New("failed to start command")
)
