package lockfile

import (
	"encoding/json"
	"strings"

	"go.trai.ch/guard/internal/core/domain"
)

type npmLockfile struct {
	LockfileVersion int                      `json:"lockfileVersion"`
	Packages        map[string]npmPackage    `json:"packages"`
	Dependencies    map[string]npmDependency `json:"dependencies"`
}

type npmPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Link    bool   `json:"link"`
}

type npmDependency struct {
	Version      string                   `json:"version"`
	Dependencies map[string]npmDependency `json:"dependencies"`
}

const nodeModules = "node_modules/"

func parseNPM(data []byte) ([]domain.Dependency, error) {
	var lock npmLockfile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, err
	}

	// v2 carries both shapes; the packages map is authoritative.
	if len(lock.Packages) > 0 {
		return npmPackages(lock.Packages), nil
	}

	var deps []domain.Dependency
	walkNPMDependencies(lock.Dependencies, &deps)
	return deps, nil
}

func npmPackages(packages map[string]npmPackage) []domain.Dependency {
	deps := make([]domain.Dependency, 0, len(packages))
	for key, pkg := range packages {
		if key == "" || pkg.Link || pkg.Version == "" {
			continue
		}
		idx := strings.LastIndex(key, nodeModules)
		if idx < 0 {
			// Workspace members live outside node_modules.
			continue
		}
		if isLocal(pkg.Version) {
			continue
		}

		name := pkg.Name
		if name == "" {
			name = key[idx+len(nodeModules):]
		}
		name, version := unalias(name, pkg.Version)
		deps = append(deps, domain.Dependency{Name: name, Version: version, Registry: domain.RegistryNPM})
	}
	return deps
}

func walkNPMDependencies(tree map[string]npmDependency, deps *[]domain.Dependency) {
	for name, dep := range tree {
		if dep.Version != "" && !isLocal(dep.Version) {
			realName, version := unalias(name, dep.Version)
			*deps = append(*deps, domain.Dependency{Name: realName, Version: version, Registry: domain.RegistryNPM})
		}
		walkNPMDependencies(dep.Dependencies, deps)
	}
}
