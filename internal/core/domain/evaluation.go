package domain

import "strings"

// Severity ranks how serious a rejection is.
type Severity int

const (
	// SeverityInfo is informational.
	SeverityInfo Severity = iota
	// SeverityLow is a low risk.
	SeverityLow
	// SeverityMedium is a medium risk.
	SeverityMedium
	// SeverityHigh is a high risk.
	SeverityHigh
	// SeverityCritical is a critical risk.
	SeverityCritical
)

// ParseSeverity converts a severity name to a Severity.
// Unknown names are treated as informational.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "info"
	}
}

// Rejection is one policy violation reported for a dependency.
type Rejection struct {
	Title      string
	Suppressed bool
	Severity   Severity
	// Domain is the risk domain (e.g. "malicious", "license"); empty when absent.
	Domain string
}

// DependencyFinding groups the rejections reported for one dependency.
type DependencyFinding struct {
	Registry   string
	Name       string
	Version    string
	Rejections []Rejection
}

// Visible returns the rejections that are not suppressed, in input order.
func (f DependencyFinding) Visible() []Rejection {
	var visible []Rejection
	for _, r := range f.Rejections {
		if !r.Suppressed {
			visible = append(visible, r)
		}
	}
	return visible
}

// PolicyEvaluationResult is the analysis service's verdict for a dependency set.
type PolicyEvaluationResult struct {
	IsFailure       bool
	IncompleteCount int
	// JobLink points at the analysis report; empty when absent.
	JobLink      string
	Dependencies []DependencyFinding
}

// Verdict is the overall result of a policy evaluation.
type Verdict int

const (
	// VerdictSuccess means every package passed.
	VerdictSuccess Verdict = iota
	// VerdictIncomplete means some packages have not been analyzed yet.
	VerdictIncomplete
	// VerdictFailure means at least one package violates policy.
	VerdictFailure
)

// String returns the uppercase verdict label.
func (v Verdict) String() string {
	switch v {
	case VerdictFailure:
		return "FAILURE"
	case VerdictIncomplete:
		return "INCOMPLETE"
	default:
		return "SUCCESS"
	}
}

// Verdict returns the overall result. Failure takes priority over incomplete.
func (r *PolicyEvaluationResult) Verdict() Verdict {
	switch {
	case r.IsFailure:
		return VerdictFailure
	case r.IncompleteCount > 0:
		return VerdictIncomplete
	default:
		return VerdictSuccess
	}
}

// AnalysisRequest is what guard submits to the analysis service.
type AnalysisRequest struct {
	// Ecosystem is the lockfile format the dependencies came from.
	Ecosystem LockfileFormat
	// Label describes the invocation (e.g. "npm install leftpad").
	Label        string
	Project      string
	Group        string
	Dependencies DependencySet
}
