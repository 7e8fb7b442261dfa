package domain

// Dependency is one resolved package from a lockfile.
type Dependency struct {
	Name     string `json:"name"     yaml:"name"`
	Version  string `json:"version"  yaml:"version"`
	Registry string `json:"registry" yaml:"registry"`
}

// String returns the dependency as name@version.
func (d Dependency) String() string {
	return d.Name + "@" + d.Version
}

// DependencySet is the ordered list of packages a lockfile resolves to.
// An empty set is valid and means there is nothing to analyze.
type DependencySet []Dependency
