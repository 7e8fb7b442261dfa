package shell_test

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/guard/internal/adapters/shell"
	"go.trai.ch/guard/internal/core/domain"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
}

func TestExecutor_Execute(t *testing.T) {
	skipWithoutShell(t)

	tests := []struct {
		name     string
		script   string
		want     domain.StageOutcome
		wantOut  string
		extraEnv []string
	}{
		{
			name:    "success",
			script:  "echo ok",
			want:    domain.Success(),
			wantOut: "ok\n",
		},
		{
			name:   "exit code is passed through",
			script: "exit 3",
			want:   domain.Failed(3),
		},
		{
			name:     "extra environment",
			script:   `printf "%s" "$GUARD_TEST_VALUE"`,
			want:     domain.Success(),
			wantOut:  "hello",
			extraEnv: []string{"GUARD_TEST_VALUE=hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			exe := shell.NewExecutor(shell.Stdio{Stdout: &stdout, Stderr: &stdout})

			got, err := exe.Execute(context.Background(), domain.Command{
				Name: "sh",
				Args: []string{"-c", tt.script},
				Dir:  t.TempDir(),
				Env:  tt.extraEnv,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOut, stdout.String())
		})
	}
}

func TestExecutor_KilledBySignal(t *testing.T) {
	skipWithoutShell(t)

	exe := shell.NewExecutor(shell.Stdio{})
	got, err := exe.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "kill -9 $$"},
	})
	require.NoError(t, err)
	assert.False(t, got.Succeeded)
	assert.Nil(t, got.ExitCode)
}

func TestExecutor_MissingBinary(t *testing.T) {
	exe := shell.NewExecutor(shell.Stdio{})
	got, err := exe.Execute(context.Background(), domain.Command{Name: "guard-definitely-missing-binary"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrCommandStartFailed.Error())
	assert.False(t, got.Succeeded)
}

func TestOutcome_Nil(t *testing.T) {
	got, err := shell.Outcome(nil, "npm")
	require.NoError(t, err)
	assert.True(t, got.Succeeded)

	_, err = shell.Outcome(errors.New("boom"), "npm")
	require.Error(t, err)
}

func TestMergeEnvironment(t *testing.T) {
	got := shell.MergeEnvironment(
		[]string{"PATH=/usr/bin", "HOME=/home/me", "broken"},
		[]string{"HOME=/tmp/home", "npm_config_cache=/tmp/cache"},
	)

	assert.Equal(t, []string{
		"HOME=/tmp/home",
		"PATH=/usr/bin",
		"npm_config_cache=/tmp/cache",
	}, got)
}
