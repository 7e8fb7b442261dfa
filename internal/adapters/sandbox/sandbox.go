// Package sandbox runs package manager stages under OS-level isolation using agentbox.
package sandbox

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zhangyunhao116/agentbox"
	"go.trai.ch/guard/internal/adapters/shell"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxFileDescriptors is raised above the agentbox default; installs with
// large dependency trees keep many tarballs open at once.
const maxFileDescriptors = 8192

// ManagerFactory creates an agentbox manager for one stage.
type ManagerFactory func(cfg *agentbox.Config) (agentbox.Manager, error)

// Sandbox implements ports.Sandbox.
type Sandbox struct {
	logger     ports.Logger
	stdio      shell.Stdio
	newManager ManagerFactory
}

// New creates a Sandbox attached to the current process streams.
func New(logger ports.Logger) *Sandbox {
	return NewWithFactory(logger, shell.DefaultStdio(), agentbox.NewManager)
}

// NewWithFactory creates a Sandbox with custom streams and manager factory.
func NewWithFactory(logger ports.Logger, stdio shell.Stdio, factory ManagerFactory) *Sandbox {
	return &Sandbox{logger: logger, stdio: stdio, newManager: factory}
}

// Run executes command inside a sandbox that grants exactly what policy allows.
func (s *Sandbox) Run(ctx context.Context, command domain.Command, policy domain.SandboxPolicy) (domain.StageOutcome, error) {
	cfg := Config(policy, s.logger)
	mgr, err := s.newManager(cfg)
	if err != nil {
		return domain.FailedWithoutCode(), setupError(err, command)
	}
	defer func() {
		if cleanupErr := mgr.Cleanup(context.WithoutCancel(ctx)); cleanupErr != nil {
			s.logger.Warn("failed to release sandbox: " + cleanupErr.Error())
		}
	}()

	cmd := shell.BuildCommand(ctx, command, s.stdio)
	if err := mgr.Wrap(ctx, cmd, agentbox.WithClassifier(cfg.Classifier)); err != nil {
		return domain.FailedWithoutCode(), setupError(err, command)
	}

	return shell.Outcome(cmd.Run(), command.Name)
}

// Config translates a stage policy into an agentbox configuration.
func Config(policy domain.SandboxPolicy, logger ports.Logger) *agentbox.Config {
	cfg := agentbox.DefaultConfig()

	// Cache directories live under $HOME, so the default home deny-list
	// would conflict with the writable roots.
	cfg.Filesystem.DenyWrite = nil
	cfg.Filesystem.WritableRoots = append([]string(nil), policy.WritablePaths...)
	if policy.CanReadAll {
		cfg.Filesystem.DenyRead = nil
	}

	cfg.Network = agentbox.NetworkConfig{Mode: agentbox.NetworkBlocked}
	if policy.NetworkAllowed {
		cfg.Network.Mode = agentbox.NetworkAllowed
	}

	cfg.Classifier = NewClassifier(policy)

	cfg.FallbackPolicy = agentbox.FallbackStrict
	if policy.AllowUnsandboxed {
		cfg.FallbackPolicy = agentbox.FallbackWarn
	}

	limits := *agentbox.DefaultResourceLimits()
	limits.MaxFileDescriptors = maxFileDescriptors
	cfg.ResourceLimits = &limits

	if logger != nil {
		cfg.Logger = slog.New(newLogHandler(logger))
	}

	return cfg
}

func setupError(err error, command domain.Command) error {
	var reason string
	switch {
	case errors.Is(err, agentbox.ErrUnsupportedPlatform):
		reason = "sandboxing is not available on this system; set sandbox.fallback to warn to run unsandboxed"
	case errors.Is(err, agentbox.ErrForbiddenCommand):
		reason = "command is not runnable in this stage"
	case errors.Is(err, agentbox.ErrConfigInvalid):
		reason = "sandbox configuration is invalid"
	default:
		reason = "sandbox could not wrap the command"
	}

	wrapped := zerr.Wrap(err, domain.ErrSandboxSetupFailed.Error()+": "+reason)
	return zerr.With(wrapped, "command", command.Name)
}
