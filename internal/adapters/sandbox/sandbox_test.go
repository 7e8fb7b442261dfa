package sandbox_test

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhangyunhao116/agentbox"
	"go.trai.ch/guard/internal/adapters/sandbox"
	"go.trai.ch/guard/internal/adapters/shell"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestConfig_ResolvePolicy(t *testing.T) {
	policy := domain.SandboxPolicy{
		CanReadAll:     true,
		WritablePaths:  []string{"/proj", "/home/me/.npm"},
		RunnableCmds:   []string{"npm", "node"},
		NetworkAllowed: true,
	}

	cfg := sandbox.Config(policy, nil)

	assert.Equal(t, []string{"/proj", "/home/me/.npm"}, cfg.Filesystem.WritableRoots)
	assert.Empty(t, cfg.Filesystem.DenyWrite)
	assert.Empty(t, cfg.Filesystem.DenyRead)
	assert.Equal(t, agentbox.NetworkAllowed, cfg.Network.Mode)
	assert.Equal(t, agentbox.FallbackStrict, cfg.FallbackPolicy)
	assert.Nil(t, cfg.Logger)
	require.NoError(t, cfg.Validate())
}

func TestConfig_BuildPolicy(t *testing.T) {
	policy := domain.SandboxPolicy{
		CanReadAll:       true,
		WritablePaths:    []string{"/proj"},
		AllCommands:      true,
		AllowUnsandboxed: true,
	}

	cfg := sandbox.Config(policy, mocks.NewMockLogger(gomock.NewController(t)))

	assert.Equal(t, agentbox.NetworkBlocked, cfg.Network.Mode)
	assert.Equal(t, agentbox.FallbackWarn, cfg.FallbackPolicy)
	assert.NotNil(t, cfg.Logger)
	assert.Equal(t, agentbox.Sandboxed, cfg.Classifier.ClassifyArgs("node-gyp", []string{"rebuild"}).Decision)
}

func TestConfig_RestrictedReads(t *testing.T) {
	cfg := sandbox.Config(domain.SandboxPolicy{}, nil)
	assert.NotEmpty(t, cfg.Filesystem.DenyRead)
}

func TestClassifier(t *testing.T) {
	c := sandbox.NewClassifier(domain.SandboxPolicy{RunnableCmds: []string{"npm", "/usr/bin/node"}})

	assert.Equal(t, agentbox.Sandboxed, c.ClassifyArgs("npm", []string{"install"}).Decision)
	assert.Equal(t, agentbox.Sandboxed, c.ClassifyArgs("/usr/local/bin/node", nil).Decision)
	assert.Equal(t, agentbox.Sandboxed, c.Classify("node index.js").Decision)

	forbidden := c.ClassifyArgs("curl", []string{"https://example.com"})
	assert.Equal(t, agentbox.Forbidden, forbidden.Decision)
	assert.Contains(t, forbidden.Reason, "curl")

	assert.Equal(t, agentbox.Forbidden, c.Classify("   ").Decision)
}

func nopFactory(captured **agentbox.Config) sandbox.ManagerFactory {
	return func(cfg *agentbox.Config) (agentbox.Manager, error) {
		*captured = cfg
		return agentbox.NewNopManager(), nil
	}
}

func TestSandbox_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}

	var captured *agentbox.Config
	var stdout bytes.Buffer
	ctrl := gomock.NewController(t)
	sb := sandbox.NewWithFactory(mocks.NewMockLogger(ctrl), shell.Stdio{Stdout: &stdout}, nopFactory(&captured))

	dir := t.TempDir()
	outcome, err := sb.Run(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo building; exit 4"},
		Dir:  dir,
	}, domain.SandboxPolicy{CanReadAll: true, WritablePaths: []string{dir}, AllCommands: true})

	require.NoError(t, err)
	assert.Equal(t, domain.Failed(4), outcome)
	assert.Equal(t, "building\n", stdout.String())
	require.NotNil(t, captured)
	assert.Equal(t, []string{dir}, captured.Filesystem.WritableRoots)
	assert.Equal(t, agentbox.NetworkBlocked, captured.Network.Mode)
}

func TestSandbox_Run_ForbiddenCommand(t *testing.T) {
	var captured *agentbox.Config
	ctrl := gomock.NewController(t)
	sb := sandbox.NewWithFactory(mocks.NewMockLogger(ctrl), shell.Stdio{}, nopFactory(&captured))

	outcome, err := sb.Run(context.Background(), domain.Command{Name: "curl"},
		domain.SandboxPolicy{RunnableCmds: []string{"npm", "node"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrSandboxSetupFailed.Error())
	assert.False(t, outcome.Succeeded)
	assert.Nil(t, outcome.ExitCode)
}

func TestSandbox_Run_Unavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	sb := sandbox.NewWithFactory(mocks.NewMockLogger(ctrl), shell.Stdio{},
		func(_ *agentbox.Config) (agentbox.Manager, error) {
			return nil, agentbox.ErrUnsupportedPlatform
		})

	_, err := sb.Run(context.Background(), domain.Command{Name: "npm"}, domain.SandboxPolicy{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrSandboxSetupFailed.Error())
	assert.Contains(t, err.Error(), "sandbox.fallback")
}

func TestConfig_LoggerForwardsWarnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	lg := mocks.NewMockLogger(ctrl)
	lg.EXPECT().Warn("sandbox platform unavailable, running without sandboxing")

	cfg := sandbox.Config(domain.SandboxPolicy{}, lg)
	cfg.Logger.Info("dropped")
	cfg.Logger.Warn("sandbox platform unavailable, running without sandboxing")
}
