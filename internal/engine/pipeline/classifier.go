package pipeline

import (
	"slices"
	"strings"

	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/zerr"
)

// Decision tells the orchestrator whether to guard an invocation.
type Decision int

const (
	// Passthrough hands the invocation to the real package manager untouched.
	Passthrough Decision = iota
	// Intercept runs the invocation through the sandboxed-install pipeline.
	Intercept
)

// String returns the decision name.
func (d Decision) String() string {
	if d == Intercept {
		return "intercept"
	}
	return "passthrough"
}

// informationalFlags never install anything, even for managers whose bare
// invocation does.
var informationalFlags = []string{"--version", "-v", "--help", "-h"}

// Classify decides how to handle args for manager.
//
// Options placed before the subcommand are rejected so that a flag cannot
// hide an install from the pipeline.
func Classify(manager domain.PackageManager, args []string) (Decision, error) {
	pos := slices.IndexFunc(args, func(a string) bool {
		return !strings.HasPrefix(a, "-")
	})

	switch {
	case pos > 0:
		return Passthrough, zerr.With(domain.ErrLeadingFlags, "arguments", strings.Join(args[:pos], " "))
	case pos < 0:
		if !manager.InterceptBare {
			return Passthrough, nil
		}
		if slices.ContainsFunc(args, func(a string) bool { return slices.Contains(informationalFlags, a) }) {
			return Passthrough, nil
		}
		return Intercept, nil
	case manager.Intercepts(args[0]):
		return Intercept, nil
	default:
		return Passthrough, nil
	}
}
