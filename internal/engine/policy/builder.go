// Package policy builds the sandbox policy for each stage of the install pipeline.
package policy

import (
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/guard/internal/core/domain"
)

// Host describes the machine-specific paths a policy refers to.
type Host struct {
	Home    string
	TempDir string
	// LookupEnv reads cache location overrides such as npm_config_cache.
	LookupEnv func(string) (string, bool)
}

// CurrentHost returns the Host of the running process.
func CurrentHost() Host {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return Host{
		Home:      home,
		TempDir:   os.TempDir(),
		LookupEnv: os.LookupEnv,
	}
}

// Builder produces one SandboxPolicy per stage.
type Builder struct {
	cfg  domain.SandboxConfig
	host Host
}

// NewBuilder creates a Builder for the given sandbox settings.
func NewBuilder(cfg domain.SandboxConfig, host Host) *Builder {
	if host.LookupEnv == nil {
		host.LookupEnv = func(string) (string, bool) { return "", false }
	}
	return &Builder{cfg: cfg, host: host}
}

// Build returns the policy for stage. Every call returns a fresh value.
//
// The resolve stages may reach the registry but only run the package
// manager and its runtime. The build stage runs any command offline.
func (b *Builder) Build(stage domain.Stage, manager domain.PackageManager, root string) domain.SandboxPolicy {
	vars := b.variables(root)

	policy := domain.SandboxPolicy{
		CanReadAll:       true,
		AllowUnsandboxed: b.cfg.Fallback == domain.FallbackWarn,
	}

	writable := []string{b.host.TempDir, root}
	writable = append(writable, b.cfg.Writable...)

	switch stage {
	case domain.StageDryRun, domain.StageCache:
		policy.NetworkAllowed = true
		writable = append(writable, b.cacheDirs(manager)...)
		policy.RunnableCmds = normalizeCommands(append([]string{manager.Name, manager.Runtime}, b.cfg.Runnable...))
	case domain.StageBuild:
		policy.NetworkAllowed = false
		policy.AllCommands = true
	}

	policy.WritablePaths = normalizePaths(vars, writable)
	return policy
}

// All returns the policies of every stage in execution order.
func (b *Builder) All(manager domain.PackageManager, root string) []StagePolicy {
	stages := domain.Stages()
	out := make([]StagePolicy, 0, len(stages))
	for _, s := range stages {
		out = append(out, StagePolicy{Stage: s.String(), Policy: b.Build(s, manager, root)})
	}
	return out
}

// StagePolicy pairs a stage name with its policy.
type StagePolicy struct {
	Stage  string               `yaml:"stage"`
	Policy domain.SandboxPolicy `yaml:"policy"`
}

func (b *Builder) cacheDirs(manager domain.PackageManager) []string {
	dirs := slices.Clone(manager.CacheDirs)
	if manager.CacheEnv == "" {
		return dirs
	}
	if v, ok := b.host.LookupEnv(manager.CacheEnv); ok && v != "" {
		dirs = append([]string{v}, dirs...)
	}
	return dirs
}

func (b *Builder) variables(root string) map[string]string {
	return map[string]string{
		"HOME": b.host.Home,
		"ROOT": root,
	}
}

// normalizePaths expands ${HOME} and ${ROOT}, drops entries that expand to
// nothing and returns a sorted set of clean paths.
func normalizePaths(vars map[string]string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		missing := false
		expanded := os.Expand(p, func(name string) string {
			v, ok := vars[name]
			if !ok || v == "" {
				missing = true
			}
			return v
		})
		if missing || expanded == "" {
			continue
		}
		out = append(out, filepath.Clean(expanded))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeCommands(cmds []string) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		if c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
