package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/guard/internal/adapters/telemetry"
	"go.trai.ch/guard/internal/app"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
	"go.trai.ch/guard/internal/core/ports/mocks"
	"go.trai.ch/guard/internal/engine/pipeline"
	"go.trai.ch/guard/internal/engine/policy"
	"go.uber.org/mock/gomock"
)

type appMocks struct {
	loader    *mocks.MockConfigLoader
	sandbox   *mocks.MockSandbox
	executor  *mocks.MockExecutor
	parser    *mocks.MockLockfileParser
	snapshots *mocks.MockSnapshotStore
	reporter  *mocks.MockReporter
	analyzer  *mocks.MockAnalyzer
	logger    *jsonLogger
}

// jsonLogger records SetJSON calls on top of the generated mock.
type jsonLogger struct {
	*mocks.MockLogger
	json bool
}

func (l *jsonLogger) SetJSON(enable bool) { l.json = enable }

func setup(t *testing.T, dir string) (*app.App, *appMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &appMocks{
		loader:    mocks.NewMockConfigLoader(ctrl),
		sandbox:   mocks.NewMockSandbox(ctrl),
		executor:  mocks.NewMockExecutor(ctrl),
		parser:    mocks.NewMockLockfileParser(ctrl),
		snapshots: mocks.NewMockSnapshotStore(ctrl),
		reporter:  mocks.NewMockReporter(ctrl),
		analyzer:  mocks.NewMockAnalyzer(ctrl),
		logger:    &jsonLogger{MockLogger: mocks.NewMockLogger(ctrl)},
	}

	a := app.New(m.loader, m.sandbox, m.executor, m.parser, m.snapshots, m.reporter, m.logger,
		telemetry.NewNoopTracer()).
		WithWorkingDir(dir).
		WithHost(policy.Host{Home: "/home/dev", TempDir: "/tmp"}).
		WithAnalyzerFactory(func(domain.AnalysisConfig) ports.Analyzer { return m.analyzer })

	return a, m
}

func exitCode(t *testing.T, err error) domain.ExitCode {
	t.Helper()
	if err == nil {
		return domain.ExitOK
	}
	var exitErr *pipeline.ExitError
	require.ErrorAs(t, err, &exitErr)
	return exitErr.Code()
}

func TestApp_Install_UnknownManager(t *testing.T) {
	a, m := setup(t, t.TempDir())
	m.logger.EXPECT().Error(gomock.Any()).Times(1)

	err := a.Install(context.Background(), "cargo", []string{"add", "serde"})

	assert.Equal(t, domain.ExitUsage, exitCode(t, err))
	assert.Contains(t, err.Error(), domain.ErrUnknownManager.Error())
}

func TestApp_Install_ConfigError(t *testing.T) {
	dir := t.TempDir()
	a, m := setup(t, dir)
	m.loader.EXPECT().Load(dir).Return(nil, domain.ErrInvalidFallback)
	m.logger.EXPECT().Error(gomock.Any()).Times(1)

	err := a.Install(context.Background(), "npm", []string{"install"})

	assert.Equal(t, domain.ExitUsage, exitCode(t, err))
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Install_Passthrough(t *testing.T) {
	dir := t.TempDir()
	a, m := setup(t, dir)

	cfg := domain.DefaultConfig()
	cfg.Log.Format = domain.LogJSON
	m.loader.EXPECT().Load(dir).Return(cfg, nil)
	m.executor.EXPECT().
		Execute(gomock.Any(), domain.Command{Name: "pnpm", Args: []string{"run", "lint"}, Dir: dir}).
		Return(domain.Failed(2), nil)

	err := a.Install(context.Background(), "pnpm", []string{"run", "lint"})

	assert.Equal(t, domain.ExitCode(2), exitCode(t, err))
	assert.True(t, m.logger.json)
}

func TestApp_Install_Guarded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yarn.lock"), nil, domain.FilePerm))
	a, m := setup(t, dir)

	cfg := domain.DefaultConfig()
	cfg.Analysis.Project = "web"
	cfg.Sandbox.Fallback = domain.FallbackWarn
	m.loader.EXPECT().Load(dir).Return(cfg, nil)
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	snap := &domain.FileSnapshot{Path: filepath.Join(dir, "yarn.lock"), Content: []byte{}}
	m.snapshots.EXPECT().Capture(filepath.Join(dir, "yarn.lock")).Return(snap, nil)
	m.snapshots.EXPECT().Capture(filepath.Join(dir, "package.json")).Return(&domain.FileSnapshot{}, nil)
	m.snapshots.EXPECT().Restore(gomock.Any()).AnyTimes()

	var stages []domain.SandboxPolicy
	m.sandbox.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, _ domain.Command, p domain.SandboxPolicy) (domain.StageOutcome, error) {
			stages = append(stages, p)
			return domain.Success(), nil
		})
	m.parser.EXPECT().Parse(filepath.Join(dir, "yarn.lock"), domain.FormatYarn).
		Return(domain.DependencySet{{Name: "leftpad", Version: "1.0.0", Registry: "npm"}}, nil)
	m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.AnalysisRequest) (*domain.PolicyEvaluationResult, error) {
			assert.Equal(t, "web", req.Project)
			assert.Equal(t, domain.FormatYarn, req.Ecosystem)
			return &domain.PolicyEvaluationResult{}, nil
		})
	m.reporter.EXPECT().Report(gomock.Any())

	err := a.Install(context.Background(), "yarn", nil)

	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.True(t, stages[0].NetworkAllowed)
	assert.False(t, stages[2].NetworkAllowed)
	assert.True(t, stages[2].AllowUnsandboxed)
	assert.False(t, m.logger.json)
}

func TestApp_Check(t *testing.T) {
	dir := t.TempDir()
	a, m := setup(t, dir)

	m.loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil)
	m.parser.EXPECT().Parse(filepath.Join(dir, "sub", "pnpm-lock.yaml"), domain.FormatPNPM).
		Return(domain.DependencySet{{Name: "a", Version: "1.0.0", Registry: "npm"}}, nil)
	m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		Return(&domain.PolicyEvaluationResult{IncompleteCount: 1}, nil)
	m.reporter.EXPECT().Report(gomock.Any())
	m.logger.EXPECT().Warn(gomock.Any())

	err := a.Check(context.Background(), filepath.Join("sub", "pnpm-lock.yaml"), app.CheckOptions{})

	assert.Equal(t, domain.ExitIncomplete, exitCode(t, err))
}

func TestApp_Check_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	a, m := setup(t, dir)
	m.loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil).Times(2)
	m.logger.EXPECT().Error(gomock.Any()).Times(2)

	err := a.Check(context.Background(), "Cargo.lock", app.CheckOptions{})
	assert.Equal(t, domain.ExitUsage, exitCode(t, err))

	err = a.Check(context.Background(), "deps.lock", app.CheckOptions{Format: "cargo"})
	assert.Equal(t, domain.ExitUsage, exitCode(t, err))
}

func TestApp_Check_FormatOverride(t *testing.T) {
	dir := t.TempDir()
	a, m := setup(t, dir)
	m.loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil)
	m.parser.EXPECT().Parse(filepath.Join(dir, "deps.lock"), domain.FormatYarn).Return(nil, nil)
	m.logger.EXPECT().Info("no dependencies to analyze")

	err := a.Check(context.Background(), "deps.lock", app.CheckOptions{Format: "yarn"})

	require.NoError(t, err)
}

func TestApp_Policies(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), domain.FilePerm))
	nested := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(nested, 0o750))

	a, m := setup(t, nested)
	m.loader.EXPECT().Load(nested).Return(domain.DefaultConfig(), nil)

	got, err := a.Policies("npm", "")

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got[0].Policy.WritablePaths, dir)
	assert.Contains(t, got[0].Policy.WritablePaths, "/home/dev/.npm")
}

func TestApp_Policies_RootNotFound(t *testing.T) {
	dir := t.TempDir()
	a, m := setup(t, dir)
	m.loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil)
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	_, err := a.Policies("npm", "")
	if err == nil {
		// A package.json above the temp dir makes the lookup succeed.
		t.Skip("found a project root above the temp directory")
	}
	assert.Equal(t, domain.ExitRootNotFound, exitCode(t, err))
}

func TestApp_Policies_ExplicitRoot(t *testing.T) {
	dir := t.TempDir()
	a, m := setup(t, dir)
	m.loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil)

	got, err := a.Policies("pnpm", "/srv/app")

	require.NoError(t, err)
	assert.Contains(t, got[2].Policy.WritablePaths, "/srv/app")
	assert.True(t, got[2].Policy.AllCommands)
}
