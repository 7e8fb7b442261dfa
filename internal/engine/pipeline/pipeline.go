// Package pipeline runs package manager invocations through the
// sandboxed-install workflow.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
	"go.trai.ch/zerr"
)

// PolicyBuilder produces the sandbox policy for a stage.
type PolicyBuilder interface {
	Build(stage domain.Stage, manager domain.PackageManager, root string) domain.SandboxPolicy
}

// Request describes one invocation.
type Request struct {
	Manager domain.PackageManager
	Args    []string
	// Dir is the directory the root search starts from.
	Dir      string
	Policies PolicyBuilder
	Project  string
	Group    string
}

// Label describes the invocation for the analysis service.
func (r Request) Label() string {
	return strings.TrimSpace(r.Manager.Name + " " + strings.Join(r.Args, " "))
}

// Pipeline sequences the dry-run, analysis, cache and build stages.
type Pipeline struct {
	sandbox   ports.Sandbox
	executor  ports.Executor
	parser    ports.LockfileParser
	snapshots ports.SnapshotStore
	analyzer  ports.Analyzer
	reporter  ports.Reporter
	logger    ports.Logger
	tracer    ports.Tracer

	stageCodes bool
}

// New creates a Pipeline with the given collaborators.
func New(
	sandbox ports.Sandbox,
	executor ports.Executor,
	parser ports.LockfileParser,
	snapshots ports.SnapshotStore,
	analyzer ports.Analyzer,
	reporter ports.Reporter,
	logger ports.Logger,
	tracer ports.Tracer,
) *Pipeline {
	return &Pipeline{
		sandbox:   sandbox,
		executor:  executor,
		parser:    parser,
		snapshots: snapshots,
		analyzer:  analyzer,
		reporter:  reporter,
		logger:    logger,
		tracer:    tracer,
	}
}

// WithStageCodes makes failed stages exit with the stage code rather than
// the package manager's status.
func (p *Pipeline) WithStageCodes(enabled bool) *Pipeline {
	p.stageCodes = enabled
	return p
}

// Run classifies req and either passes it through or guards it.
// Every outcome other than success has been reported to the user when Run returns.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	decision, err := Classify(req.Manager, req.Args)
	if err != nil {
		return p.fail(Outcome{Kind: KindUsage, Err: err})
	}
	if decision == Passthrough {
		return p.passthrough(ctx, req)
	}

	root, ok := LocateRoot(req.Dir, req.Manager)
	if !ok {
		return p.fail(Outcome{
			Kind: KindRootNotFound,
			Err: zerr.With(zerr.With(domain.ErrRootNotFound, "dir", req.Dir),
				"markers", req.Manager.Lockfile+", "+req.Manager.Manifest),
		})
	}

	guard, err := captureState(p.snapshots, req.Manager.LockfilePath(root), req.Manager.ManifestPath(root))
	if err != nil {
		return p.fail(Outcome{Kind: KindError, Err: err})
	}
	defer guard.Release()

	deps, out := p.resolve(ctx, req, root, guard)
	if out.Kind != KindOK {
		return p.fail(out)
	}

	if len(deps) == 0 {
		p.logger.Info("no dependencies to analyze")
	} else {
		out = p.Analyze(ctx, domain.AnalysisRequest{
			Ecosystem:    req.Manager.Format,
			Label:        req.Label(),
			Project:      req.Project,
			Group:        req.Group,
			Dependencies: deps,
		})
		if out.Kind != KindOK {
			return out
		}
	}

	for _, stage := range []domain.Stage{domain.StageCache, domain.StageBuild} {
		if stageOut := p.runStage(ctx, stage, req, root); stageOut.Kind != KindOK {
			return p.fail(stageOut)
		}
	}

	guard.Commit()
	return Outcome{Kind: KindOK, Stage: domain.StageBuild, Process: domain.Success()}
}

// resolve runs the dry-run and parses the lockfile it wrote. The captured
// state is restored before resolve returns, whatever the result.
func (p *Pipeline) resolve(
	ctx context.Context,
	req Request,
	root string,
	guard *stateGuard,
) (domain.DependencySet, Outcome) {
	defer guard.Restore()

	if out := p.runStage(ctx, domain.StageDryRun, req, root); out.Kind != KindOK {
		return nil, out
	}

	deps, err := p.parser.Parse(req.Manager.LockfilePath(root), req.Manager.Format)
	if err != nil {
		return nil, Outcome{Kind: KindSafeFailure, Stage: domain.StageDryRun, Err: err}
	}
	return deps, Outcome{Kind: KindOK, Stage: domain.StageDryRun}
}

// Check analyzes an existing lockfile without running the package manager.
func (p *Pipeline) Check(
	ctx context.Context,
	lockfile string,
	format domain.LockfileFormat,
	req domain.AnalysisRequest,
) Outcome {
	deps, err := p.parser.Parse(lockfile, format)
	if err != nil {
		return p.fail(Outcome{Kind: KindError, Err: err})
	}
	if len(deps) == 0 {
		p.logger.Info("no dependencies to analyze")
		return Outcome{Kind: KindOK}
	}

	req.Ecosystem = format
	req.Dependencies = deps
	return p.Analyze(ctx, req)
}

// Analyze submits req, renders the evaluation and maps the verdict.
func (p *Pipeline) Analyze(ctx context.Context, req domain.AnalysisRequest) Outcome {
	ctx, span := p.tracer.Start(ctx, "analyze")
	defer span.End()
	span.SetAttribute("guard.dependencies", len(req.Dependencies))

	result, err := p.analyzer.Analyze(ctx, req)
	if err != nil {
		span.RecordError(err)
		return p.fail(Outcome{Kind: KindAnalysisError, Err: err})
	}

	p.reporter.Report(result)

	switch result.Verdict() {
	case domain.VerdictFailure:
		err := zerr.With(domain.ErrPolicyFailure, "dependencies", len(req.Dependencies))
		span.RecordError(err)
		return p.fail(Outcome{Kind: KindPolicyFailure, Err: err})
	case domain.VerdictIncomplete:
		span.SetAttribute("guard.incomplete", result.IncompleteCount)
		return p.fail(Outcome{Kind: KindIncomplete})
	default:
		return Outcome{Kind: KindOK}
	}
}

func (p *Pipeline) runStage(ctx context.Context, stage domain.Stage, req Request, root string) Outcome {
	ctx, span := p.tracer.Start(ctx, stage.String())
	defer span.End()
	span.SetAttribute("guard.manager", req.Manager.Name)

	cmd := stageCommand(stage, req.Manager, req.Args, root)
	policy := req.Policies.Build(stage, req.Manager, root)

	res, err := p.sandbox.Run(ctx, cmd, policy)
	if err != nil {
		span.RecordError(err)
		return Outcome{Kind: KindSafeFailure, Stage: stage, Process: domain.FailedWithoutCode(), Err: err}
	}
	if res.Succeeded {
		return Outcome{Kind: KindOK, Stage: stage, Process: res}
	}

	err = stageError(stage, res)
	span.RecordError(err)

	kind := KindSafeFailure
	if stage == domain.StageBuild {
		kind = KindRiskFailure
	}
	return Outcome{Kind: kind, Stage: stage, Process: res, Err: err}
}

func (p *Pipeline) passthrough(ctx context.Context, req Request) Outcome {
	res, err := p.executor.Execute(ctx, domain.Command{
		Name: req.Manager.Name,
		Args: slices.Clone(req.Args),
		Dir:  req.Dir,
	})
	if err != nil {
		return p.fail(Outcome{Kind: KindError, Process: res, Err: err})
	}
	return Outcome{Kind: KindPassthrough, Process: res}
}

// fail reports o to the user and returns it unchanged.
func (p *Pipeline) fail(o Outcome) Outcome {
	o.StageCodes = p.stageCodes
	if o.Err != nil {
		p.logger.Error(o.Err)
	}

	switch o.Kind {
	case KindSafeFailure:
		p.logger.Info(safeFailureNotice(o.Stage))
	case KindRiskFailure:
		p.logger.Warn("the install failed inside the sandbox. A package may have tried to reach " +
			"the network or write outside the project. Do not rerun it without guard; " +
			"please report this failure")
	case KindIncomplete:
		p.logger.Warn("some packages are still being analyzed, retry later")
	}
	return o
}

func safeFailureNotice(stage domain.Stage) string {
	switch stage {
	case domain.StageDryRun:
		return "no package was installed and no install script ran; the lockfile and manifest were restored"
	case domain.StageCache:
		return "downloading packages failed before any install script ran; nothing was executed"
	default:
		return "the sandbox could not be started, so no install script ran"
	}
}

func stageCommand(stage domain.Stage, manager domain.PackageManager, args []string, root string) domain.Command {
	var extra []string
	switch stage {
	case domain.StageDryRun:
		extra = manager.DryRunArgs
	case domain.StageCache:
		extra = manager.CacheArgs
	case domain.StageBuild:
		extra = manager.BuildArgs
	}

	full := make([]string, 0, len(args)+len(extra))
	full = append(full, args...)
	full = append(full, extra...)

	return domain.Command{Name: manager.Name, Args: full, Dir: root}
}

func stageError(stage domain.Stage, res domain.StageOutcome) error {
	var err error
	switch stage {
	case domain.StageDryRun:
		err = domain.ErrDryRunFailed
	case domain.StageCache:
		err = domain.ErrCacheFailed
	default:
		err = domain.ErrSandboxFailed
	}
	if res.ExitCode != nil {
		return zerr.With(err, "exit_code", fmt.Sprint(*res.ExitCode))
	}
	return err
}
