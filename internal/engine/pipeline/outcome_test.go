package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/engine/pipeline"
)

func TestExitCode_TerminalOutcomesAreDistinct(t *testing.T) {
	outcomes := map[string]pipeline.Outcome{
		"success":      {Kind: pipeline.KindOK},
		"usage":        {Kind: pipeline.KindUsage},
		"root":         {Kind: pipeline.KindRootNotFound},
		"dry-run":      {Kind: pipeline.KindSafeFailure, Stage: domain.StageDryRun, Process: domain.FailedWithoutCode()},
		"policy":       {Kind: pipeline.KindPolicyFailure},
		"incomplete":   {Kind: pipeline.KindIncomplete},
		"cache":        {Kind: pipeline.KindSafeFailure, Stage: domain.StageCache, Process: domain.FailedWithoutCode()},
		"sandbox":      {Kind: pipeline.KindRiskFailure, Stage: domain.StageBuild, Process: domain.FailedWithoutCode()},
		"analysis":     {Kind: pipeline.KindAnalysisError},
		"unclassified": {Kind: pipeline.KindError},
	}

	seen := make(map[domain.ExitCode]string, len(outcomes))
	for name, o := range outcomes {
		code := pipeline.ExitCode(o)
		if other, dup := seen[code]; dup {
			t.Fatalf("%s and %s both map to exit code %d", name, other, code)
		}
		seen[code] = name
	}

	assert.Equal(t, domain.ExitOK, pipeline.ExitCode(outcomes["success"]))
	assert.Equal(t, domain.ExitSandboxFailed, pipeline.ExitCode(outcomes["sandbox"]))
}

func TestExitCode_PrefersProcessCode(t *testing.T) {
	o := pipeline.Outcome{Kind: pipeline.KindRiskFailure, Stage: domain.StageBuild, Process: domain.Failed(42)}
	assert.Equal(t, domain.ExitCode(42), pipeline.ExitCode(o))

	pass := pipeline.Outcome{Kind: pipeline.KindPassthrough, Process: domain.Success()}
	assert.Equal(t, domain.ExitOK, pipeline.ExitCode(pass))

	killed := pipeline.Outcome{Kind: pipeline.KindPassthrough, Process: domain.FailedWithoutCode()}
	assert.Equal(t, domain.ExitGeneric, pipeline.ExitCode(killed))
}

func TestOutcome_AsError(t *testing.T) {
	require.NoError(t, pipeline.Outcome{Kind: pipeline.KindOK}.AsError())
	require.NoError(t, pipeline.Outcome{Kind: pipeline.KindPassthrough, Process: domain.Success()}.AsError())

	cause := errors.New("boom")
	err := pipeline.Outcome{Kind: pipeline.KindAnalysisError, Err: cause}.AsError()
	require.Error(t, err)

	var exitErr *pipeline.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, domain.ExitAnalysisFailed, exitErr.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "boom", err.Error())

	incomplete := pipeline.Outcome{Kind: pipeline.KindIncomplete}.AsError()
	assert.Equal(t, "incomplete", incomplete.Error())
}

func TestExitCode_StageCodes(t *testing.T) {
	stages := map[domain.Stage]domain.ExitCode{
		domain.StageDryRun: domain.ExitDryRunFailed,
		domain.StageCache:  domain.ExitCacheFailed,
		domain.StageBuild:  domain.ExitSandboxFailed,
	}

	for stage, want := range stages {
		t.Run(stage.String(), func(t *testing.T) {
			// npm exits 1 for nearly every failure.
			o := pipeline.Outcome{Kind: pipeline.KindSafeFailure, Stage: stage, Process: domain.Failed(1)}
			assert.Equal(t, domain.ExitGeneric, pipeline.ExitCode(o))

			o.StageCodes = true
			assert.Equal(t, want, pipeline.ExitCode(o))
		})
	}
}
