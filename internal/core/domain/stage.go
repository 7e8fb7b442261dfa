package domain

// Stage names one sandboxed step of the install pipeline.
type Stage int

const (
	// StageDryRun resolves dependencies and writes only the lockfile.
	StageDryRun Stage = iota
	// StageCache downloads packages without running build scripts.
	StageCache
	// StageBuild performs the real installation with the network disabled.
	StageBuild
)

// Stages lists the sandboxed stages in execution order.
func Stages() []Stage {
	return []Stage{StageDryRun, StageCache, StageBuild}
}

// String returns a short identifier for the stage.
func (s Stage) String() string {
	switch s {
	case StageDryRun:
		return "dry-run"
	case StageCache:
		return "cache"
	case StageBuild:
		return "build"
	default:
		return "unknown"
	}
}

// SandboxPolicy is the set of exceptions granted to one stage's process.
// A policy is built once per stage and never modified afterwards.
type SandboxPolicy struct {
	CanReadAll     bool     `yaml:"canReadAll"`
	WritablePaths  []string `yaml:"writablePaths"`
	AllCommands    bool     `yaml:"allCommands"`
	RunnableCmds   []string `yaml:"runnableCommands,omitempty"`
	NetworkAllowed bool     `yaml:"networkAllowed"`
	// AllowUnsandboxed lets the stage run without enforcement on hosts that
	// cannot provide a sandbox.
	AllowUnsandboxed bool `yaml:"allowUnsandboxed,omitempty"`
}

// Command is a process invocation handed to an executor.
type Command struct {
	// Name is the program to run, resolved against PATH when relative.
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the inherited environment.
	Env []string
}

// StageOutcome is the result of running one stage's process.
type StageOutcome struct {
	Succeeded bool
	// ExitCode is the process exit status; nil when the process did not
	// report one (e.g. killed by a signal or never started).
	ExitCode *int
}

// Success returns a successful outcome with exit status 0.
func Success() StageOutcome {
	code := 0
	return StageOutcome{Succeeded: true, ExitCode: &code}
}

// Failed returns a failed outcome with the given exit status.
func Failed(code int) StageOutcome {
	return StageOutcome{Succeeded: false, ExitCode: &code}
}

// FailedWithoutCode returns a failed outcome that carries no exit status.
func FailedWithoutCode() StageOutcome {
	return StageOutcome{}
}

// CodeOr returns the outcome's exit status, or fallback when none was reported.
func (o StageOutcome) CodeOr(fallback ExitCode) ExitCode {
	if o.ExitCode == nil || *o.ExitCode == 0 {
		return fallback
	}
	return ExitCode(*o.ExitCode)
}
