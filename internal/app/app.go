// Package app implements the application layer for guard.
package app

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/guard/internal/adapters/analysis"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
	"go.trai.ch/guard/internal/engine/pipeline"
	"go.trai.ch/guard/internal/engine/policy"
	"go.trai.ch/zerr"
)

// AnalyzerFactory creates the analysis client once the configuration is known.
type AnalyzerFactory func(domain.AnalysisConfig) ports.Analyzer

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	sandbox      ports.Sandbox
	executor     ports.Executor
	parser       ports.LockfileParser
	snapshots    ports.SnapshotStore
	reporter     ports.Reporter
	logger       ports.Logger
	tracer       ports.Tracer

	newAnalyzer AnalyzerFactory
	host        func() policy.Host
	getwd       func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	sandbox ports.Sandbox,
	executor ports.Executor,
	parser ports.LockfileParser,
	snapshots ports.SnapshotStore,
	reporter ports.Reporter,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		sandbox:      sandbox,
		executor:     executor,
		parser:       parser,
		snapshots:    snapshots,
		reporter:     reporter,
		logger:       log,
		tracer:       tracer,
		newAnalyzer:  analysis.NewClient,
		host:         policy.CurrentHost,
		getwd:        os.Getwd,
	}
}

// WithAnalyzerFactory replaces the HTTP analysis client.
// This is primarily used for testing.
func (a *App) WithAnalyzerFactory(f AnalyzerFactory) *App {
	a.newAnalyzer = f
	return a
}

// WithHost fixes the host paths used by sandbox policies.
func (a *App) WithHost(h policy.Host) *App {
	a.host = func() policy.Host { return h }
	return a
}

// WithWorkingDir fixes the directory commands start from.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// Install runs args for the named package manager, guarding
// dependency-mutating subcommands.
func (a *App) Install(ctx context.Context, managerName string, args []string) error {
	manager, cwd, cfg, err := a.prepare(managerName)
	if err != nil {
		return err
	}

	out := a.pipeline(cfg).Run(ctx, pipeline.Request{
		Manager:  manager,
		Args:     slices.Clone(args),
		Dir:      cwd,
		Policies: policy.NewBuilder(cfg.Sandbox, a.host()),
		Project:  cfg.Analysis.Project,
		Group:    cfg.Analysis.Group,
	})
	return out.AsError()
}

// CheckOptions configuration for the Check method.
type CheckOptions struct {
	// Format overrides the format inferred from the lockfile name.
	Format string
}

// Check analyzes an existing lockfile and reports the evaluation.
func (a *App) Check(ctx context.Context, lockfile string, opts CheckOptions) error {
	cwd, cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	format, err := lockfileFormat(lockfile, opts.Format)
	if err != nil {
		return a.usage(err)
	}

	path := lockfile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	out := a.pipeline(cfg).Check(ctx, path, format, domain.AnalysisRequest{
		Label:   "check " + filepath.Base(path),
		Project: cfg.Analysis.Project,
		Group:   cfg.Analysis.Group,
	})
	return out.AsError()
}

// Policies returns the sandbox policy of every stage for the named manager.
// An empty root is resolved from the working directory.
func (a *App) Policies(managerName, root string) ([]policy.StagePolicy, error) {
	manager, cwd, cfg, err := a.prepare(managerName)
	if err != nil {
		return nil, err
	}

	if root == "" {
		found, ok := pipeline.LocateRoot(cwd, manager)
		if !ok {
			return nil, (&pipeline.ExitError{Outcome: pipeline.Outcome{
				Kind: pipeline.KindRootNotFound,
				Err:  zerr.With(domain.ErrRootNotFound, "dir", cwd),
			}}).Report(a.logger)
		}
		root = found
	} else if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return policy.NewBuilder(cfg.Sandbox, a.host()).All(manager, root), nil
}

func (a *App) prepare(managerName string) (domain.PackageManager, string, *domain.Config, error) {
	manager, ok := domain.LookupManager(managerName)
	if !ok {
		return domain.PackageManager{}, "", nil, a.usage(zerr.With(domain.ErrUnknownManager, "manager", managerName))
	}

	cwd, cfg, err := a.loadConfig()
	if err != nil {
		return domain.PackageManager{}, "", nil, err
	}
	return manager, cwd, cfg, nil
}

func (a *App) loadConfig() (string, *domain.Config, error) {
	cwd, err := a.getwd()
	if err != nil {
		return "", nil, a.fail(pipeline.KindError, zerr.Wrap(err, "failed to get working directory"))
	}

	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return "", nil, a.usage(zerr.Wrap(err, "failed to load configuration"))
	}

	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(cfg.Log.Format == domain.LogJSON)
	}
	return cwd, cfg, nil
}

func (a *App) pipeline(cfg *domain.Config) *pipeline.Pipeline {
	return pipeline.New(
		a.sandbox,
		a.executor,
		a.parser,
		a.snapshots,
		a.newAnalyzer(cfg.Analysis),
		a.reporter,
		a.logger,
		a.tracer,
	).WithStageCodes(cfg.Exit.StageCodes)
}

func (a *App) usage(err error) error {
	return a.fail(pipeline.KindUsage, err)
}

func (a *App) fail(kind pipeline.Kind, err error) error {
	return (&pipeline.ExitError{Outcome: pipeline.Outcome{Kind: kind, Err: err}}).Report(a.logger)
}

func lockfileFormat(path, override string) (domain.LockfileFormat, error) {
	if override == "" {
		format, ok := domain.FormatForLockfile(path)
		if !ok {
			return "", zerr.With(domain.ErrUnknownLockfileFormat, "path", path)
		}
		return format, nil
	}

	format := domain.LockfileFormat(override)
	for _, m := range domain.Managers() {
		if m.Format == format {
			return format, nil
		}
	}
	return "", zerr.With(domain.ErrUnknownLockfileFormat, "format", override)
}
