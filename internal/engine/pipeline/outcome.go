package pipeline

import (
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
)

// Kind tags how a pipeline run ended.
type Kind int

const (
	// KindOK means every stage succeeded.
	KindOK Kind = iota
	// KindPassthrough means the invocation was handed to the package manager.
	KindPassthrough
	// KindUsage means the arguments or configuration were rejected.
	KindUsage
	// KindRootNotFound means no project root was found.
	KindRootNotFound
	// KindSafeFailure means a stage failed before any package code ran.
	KindSafeFailure
	// KindRiskFailure means the sandboxed build failed while package code was running.
	KindRiskFailure
	// KindPolicyFailure means the analysis rejected the dependency set.
	KindPolicyFailure
	// KindIncomplete means some packages have not been analyzed yet.
	KindIncomplete
	// KindAnalysisError means the analysis service could not be used.
	KindAnalysisError
	// KindError covers failures with no more specific kind.
	KindError
)

var kindNames = map[Kind]string{
	KindOK:            "ok",
	KindPassthrough:   "passthrough",
	KindUsage:         "usage",
	KindRootNotFound:  "root-not-found",
	KindSafeFailure:   "safe-failure",
	KindRiskFailure:   "risk-failure",
	KindPolicyFailure: "policy-failure",
	KindIncomplete:    "incomplete",
	KindAnalysisError: "analysis-error",
	KindError:         "error",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the terminal result of one invocation.
type Outcome struct {
	Kind Kind
	// Stage is the stage that produced the outcome; meaningful for stage failures.
	Stage domain.Stage
	// Process is the exit of the last process run for a stage or passthrough.
	Process domain.StageOutcome
	Err     error
	// StageCodes makes stage failures report the stage constant instead of
	// the package manager's status.
	StageCodes bool
}

// ExitCode maps an outcome to the process exit status.
//
// Stage failures prefer the package manager's own exit status unless
// StageCodes is set.
func ExitCode(o Outcome) domain.ExitCode {
	switch o.Kind {
	case KindOK:
		return domain.ExitOK
	case KindPassthrough:
		if o.Process.ExitCode == nil {
			return domain.ExitGeneric
		}
		return domain.ExitCode(*o.Process.ExitCode)
	case KindUsage:
		return domain.ExitUsage
	case KindRootNotFound:
		return domain.ExitRootNotFound
	case KindSafeFailure, KindRiskFailure:
		if o.StageCodes {
			return stageExitCode(o.Stage)
		}
		return o.Process.CodeOr(stageExitCode(o.Stage))
	case KindPolicyFailure:
		return domain.ExitPolicyFailure
	case KindIncomplete:
		return domain.ExitIncomplete
	case KindAnalysisError:
		return domain.ExitAnalysisFailed
	default:
		return domain.ExitGeneric
	}
}

func stageExitCode(s domain.Stage) domain.ExitCode {
	switch s {
	case domain.StageDryRun:
		return domain.ExitDryRunFailed
	case domain.StageCache:
		return domain.ExitCacheFailed
	default:
		return domain.ExitSandboxFailed
	}
}

// ExitError carries a non-successful outcome out of the command layer.
// The outcome has already been reported when an ExitError is created.
type ExitError struct {
	Outcome Outcome
}

// Error implements error.
func (e *ExitError) Error() string {
	if e.Outcome.Err != nil {
		return e.Outcome.Err.Error()
	}
	return e.Outcome.Kind.String()
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Outcome.Err
}

// Code returns the exit status for the wrapped outcome.
func (e *ExitError) Code() domain.ExitCode {
	return ExitCode(e.Outcome)
}

// Report logs the underlying error and returns e. It is used for outcomes
// decided outside the pipeline.
func (e *ExitError) Report(logger ports.Logger) error {
	if e.Outcome.Err != nil {
		logger.Error(e.Outcome.Err)
	}
	return e
}

// AsError returns nil when o maps to a zero exit status, otherwise an *ExitError.
func (o Outcome) AsError() error {
	if ExitCode(o) == domain.ExitOK {
		return nil
	}
	return &ExitError{Outcome: o}
}
