package domain

// ExitCode is a process exit status returned by guard.
//
// Every terminal outcome has its own value so that calling automation can
// branch on the cause. Stage failures prefer the package manager's own exit
// status and fall back to the stage constant when none is available.
type ExitCode int

const (
	// ExitOK means the command completed successfully.
	ExitOK ExitCode = 0

	// ExitGeneric is used for failures that have no more specific code.
	ExitGeneric ExitCode = 1

	// ExitUsage means the arguments or configuration were invalid.
	ExitUsage ExitCode = 2

	// ExitRootNotFound means no project root was found.
	ExitRootNotFound ExitCode = 3

	// ExitDryRunFailed means the lockfile update stage failed.
	ExitDryRunFailed ExitCode = 4

	// ExitAnalysisFailed means the analysis service could not be reached or understood.
	ExitAnalysisFailed ExitCode = 5

	// ExitIncomplete means some packages are still being analyzed; retry later.
	ExitIncomplete ExitCode = 6

	// ExitCacheFailed means downloading packages into the cache failed.
	ExitCacheFailed ExitCode = 7

	// ExitSandboxFailed means the sandboxed installation failed.
	ExitSandboxFailed ExitCode = 8

	// ExitPolicyFailure means the analysis found dependencies that violate policy.
	ExitPolicyFailure ExitCode = 100
)

// Int returns the exit code as a plain int for os.Exit.
func (c ExitCode) Int() int {
	return int(c)
}
