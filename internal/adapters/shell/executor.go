// Package shell runs package manager processes directly on the host.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/zerr"
)

// Stdio holds the streams a child process is attached to.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultStdio attaches children to the current process streams.
func DefaultStdio() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Executor implements ports.Executor without any sandboxing. It is used for
// package manager commands that do not touch dependency state.
type Executor struct {
	stdio Stdio
}

// NewExecutor creates an Executor attached to the given streams.
func NewExecutor(stdio Stdio) *Executor {
	return &Executor{stdio: stdio}
}

// Execute runs the command to completion and reports how it exited.
func (e *Executor) Execute(ctx context.Context, command domain.Command) (domain.StageOutcome, error) {
	cmd := BuildCommand(ctx, command, e.stdio)
	return Outcome(cmd.Run(), command.Name)
}

// BuildCommand creates the exec.Cmd for command with the given streams.
func BuildCommand(ctx context.Context, command domain.Command, stdio Stdio) *exec.Cmd {
	env := MergeEnvironment(os.Environ(), command.Env)

	executable := command.Name
	if !filepath.IsAbs(executable) {
		if lp, err := lookPath(executable, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, command.Args...) //nolint:gosec // user provided command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = command.Name
	}
	cmd.Dir = command.Dir
	cmd.Env = env
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	return cmd
}

// Outcome converts the result of running a process into a StageOutcome.
// Only a failure to start the process is returned as an error.
func Outcome(runErr error, name string) (domain.StageOutcome, error) {
	if runErr == nil {
		return domain.Success(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal.
		if code := exitErr.ExitCode(); code >= 0 {
			return domain.Failed(code), nil
		}
		return domain.FailedWithoutCode(), nil
	}

	err := zerr.With(zerr.Wrap(runErr, domain.ErrCommandStartFailed.Error()), "command", name)
	return domain.FailedWithoutCode(), err
}

// MergeEnvironment applies KEY=VALUE overrides on top of the inherited
// environment. The result is sorted for stable process environments.
func MergeEnvironment(sysEnv, overrides []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entries := range [][]string{sysEnv, overrides} {
		for _, entry := range entries {
			if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
				envMap[k] = v
			}
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env rather than the current process environment.
func lookPath(file string, env []string) (string, error) {
	if strings.ContainsRune(file, filepath.Separator) {
		return file, nil
	}

	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
