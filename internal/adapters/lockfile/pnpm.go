package lockfile

import (
	"strings"

	"go.trai.ch/guard/internal/core/domain"
	"gopkg.in/yaml.v3"
)

type pnpmLockfile struct {
	LockfileVersion any                    `yaml:"lockfileVersion"`
	Packages        map[string]pnpmPackage `yaml:"packages"`
}

type pnpmPackage struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func parsePNPM(data []byte) ([]domain.Dependency, error) {
	var lock pnpmLockfile
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, err
	}

	deps := make([]domain.Dependency, 0, len(lock.Packages))
	for key, pkg := range lock.Packages {
		name, version, ok := parsePNPMKey(key)
		if pkg.Name != "" && pkg.Version != "" {
			name, version, ok = pkg.Name, pkg.Version, true
		}
		if !ok {
			continue
		}
		deps = append(deps, domain.Dependency{Name: name, Version: version, Registry: domain.RegistryNPM})
	}
	return deps, nil
}

// parsePNPMKey understands the three key shapes pnpm has used:
// "/name/1.0.0_peer" (v5), "/name@1.0.0(peer)" (v6) and "name@1.0.0(peer)" (v9).
func parsePNPMKey(key string) (string, string, bool) {
	if isLocal(key) || strings.Contains(key, "://") {
		return "", "", false
	}

	key = strings.TrimPrefix(key, "/")
	if idx := strings.Index(key, "("); idx >= 0 {
		key = key[:idx]
	}

	name, version, ok := splitSpec(key)
	if !ok || !validPackageName(name) {
		// v5: the version is the last path segment.
		idx := strings.LastIndex(key, "/")
		if idx <= 0 {
			return "", "", false
		}
		name, version = key[:idx], key[idx+1:]
		if peer := strings.Index(version, "_"); peer >= 0 {
			version = version[:peer]
		}
	}

	if version == "" || version[0] < '0' || version[0] > '9' {
		return "", "", false
	}
	return name, version, true
}

// validPackageName rejects names that still contain a v5 version segment.
func validPackageName(name string) bool {
	slashes := strings.Count(name, "/")
	if strings.HasPrefix(name, "@") {
		return slashes == 1
	}
	return slashes == 0
}
