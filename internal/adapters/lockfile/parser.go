// Package lockfile extracts resolved dependencies from npm, yarn and pnpm lockfiles.
package lockfile

import (
	"cmp"
	"errors"
	iofs "io/fs"
	"os"
	"slices"
	"strings"

	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/zerr"
)

// Parser implements ports.LockfileParser.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the lockfile at path. A missing lockfile yields an empty set.
func (p *Parser) Parse(path string, format domain.LockfileFormat) (domain.DependencySet, error) {
	// #nosec G304 -- path is the lockfile under the project root or given on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return domain.DependencySet{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockfileReadFailed.Error()), "path", path)
	}

	var deps []domain.Dependency
	switch format {
	case domain.FormatNPM:
		deps, err = parseNPM(data)
	case domain.FormatYarn:
		deps, err = parseYarn(data)
	case domain.FormatPNPM:
		deps, err = parsePNPM(data)
	default:
		return nil, zerr.With(domain.ErrUnknownLockfileFormat, "format", string(format))
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockfileParseFailed.Error()), "path", path)
	}

	return normalize(deps), nil
}

// normalize drops duplicates and orders the set by name, then version.
func normalize(deps []domain.Dependency) domain.DependencySet {
	seen := make(map[domain.Dependency]struct{}, len(deps))
	out := make(domain.DependencySet, 0, len(deps))
	for _, d := range deps {
		if d.Name == "" || d.Version == "" {
			continue
		}
		if d.Registry == "" {
			d.Registry = domain.RegistryNPM
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	slices.SortFunc(out, func(a, b domain.Dependency) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Version, b.Version)
	})
	return out
}

// splitSpec splits "name@range" at the version separator, keeping a leading
// scope "@" as part of the name.
func splitSpec(spec string) (name, rest string, ok bool) {
	if len(spec) < 2 {
		return "", "", false
	}
	idx := strings.Index(spec[1:], "@")
	if idx < 0 {
		return "", "", false
	}
	idx++
	return spec[:idx], spec[idx+1:], true
}

// unalias resolves "npm:real@1.0.0" references to the real package.
func unalias(name, version string) (string, string) {
	ref, ok := strings.CutPrefix(version, "npm:")
	if !ok {
		return name, version
	}
	if realName, realVersion, ok := splitSpec(ref); ok {
		return realName, realVersion
	}
	return name, ref
}

// isLocal reports whether a version reference points outside the registry.
func isLocal(ref string) bool {
	for _, prefix := range []string{"file:", "link:", "workspace:", "portal:", "patch:", "exec:"} {
		if strings.HasPrefix(ref, prefix) {
			return true
		}
	}
	return false
}
