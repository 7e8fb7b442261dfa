package domain

import (
	"path/filepath"
	"slices"
)

// LockfileFormat identifies how a lockfile is encoded.
type LockfileFormat string

const (
	// FormatNPM is the package-lock.json format.
	FormatNPM LockfileFormat = "npm"
	// FormatYarn is the yarn.lock format (classic and berry).
	FormatYarn LockfileFormat = "yarn"
	// FormatPNPM is the pnpm-lock.yaml format.
	FormatPNPM LockfileFormat = "pnpm"
)

// RegistryNPM is the registry every JavaScript package manager resolves against.
const RegistryNPM = "npm"

// PackageManager describes how guard drives one package manager.
//
// Cache directories may reference ${HOME} and ${ROOT}; they are expanded by
// the policy builder once the project root is known.
type PackageManager struct {
	// Name is the command name the user types (e.g. "npm").
	Name string

	// Lockfile is the lockfile name at the project root.
	Lockfile string

	// Manifest is the manifest name at the project root.
	Manifest string

	// Format is the lockfile encoding.
	Format LockfileFormat

	// Subcommands lists every subcommand (and alias) that mutates dependency state.
	Subcommands []string

	// InterceptBare reports whether running the manager without arguments installs.
	InterceptBare bool

	// DryRunArgs are appended to resolve dependencies and write only the lockfile.
	DryRunArgs []string

	// CacheArgs are appended to download packages without running build scripts.
	CacheArgs []string

	// BuildArgs are appended for the real installation inside the offline sandbox.
	BuildArgs []string

	// CacheDirs lists the directories the manager writes its package cache to.
	CacheDirs []string

	// CacheEnv names an environment variable that overrides the cache location.
	CacheEnv string

	// Runtime is the interpreter the manager runs on.
	Runtime string
}

// Intercepts reports whether subcommand mutates dependency state.
func (m PackageManager) Intercepts(subcommand string) bool {
	return slices.Contains(m.Subcommands, subcommand)
}

// LockfilePath returns the lockfile path under root.
func (m PackageManager) LockfilePath(root string) string {
	return filepath.Join(root, m.Lockfile)
}

// ManifestPath returns the manifest path under root.
func (m PackageManager) ManifestPath(root string) string {
	return filepath.Join(root, m.Manifest)
}

var managers = []PackageManager{
	{
		Name:     "npm",
		Lockfile: "package-lock.json",
		Manifest: "package.json",
		Format:   FormatNPM,
		Subcommands: []string{
			"install", "i", "in", "ins", "inst", "insta", "instal",
			"isnt", "isnta", "isntal", "isntall",
			"add",
			"update", "up", "upgrade", "udpate",
			"dedupe", "ddp",
			"uninstall", "remove", "rm", "r", "un", "unlink",
		},
		DryRunArgs: []string{"--package-lock-only", "--ignore-scripts"},
		CacheArgs:  []string{"--ignore-scripts"},
		BuildArgs:  []string{"--offline"},
		CacheDirs:  []string{"${HOME}/.npm"},
		CacheEnv:   "npm_config_cache",
		Runtime:    "node",
	},
	{
		Name:          "yarn",
		Lockfile:      "yarn.lock",
		Manifest:      "package.json",
		Format:        FormatYarn,
		Subcommands:   []string{"add", "install", "up", "upgrade", "dedupe", "remove"},
		InterceptBare: true,
		DryRunArgs:    []string{"--mode=update-lockfile"},
		CacheArgs:     []string{"--mode=skip-build"},
		CacheDirs: []string{
			"${HOME}/.yarn",
			"${HOME}/.cache/yarn",
			"${HOME}/Library/Caches/Yarn",
			"${ROOT}/.yarn",
		},
		CacheEnv: "YARN_CACHE_FOLDER",
		Runtime:  "node",
	},
	{
		Name:     "pnpm",
		Lockfile: "pnpm-lock.yaml",
		Manifest: "package.json",
		Format:   FormatPNPM,
		Subcommands: []string{
			"add", "install", "i",
			"update", "up", "upgrade",
			"remove", "rm", "uninstall", "un",
			"dedupe",
		},
		DryRunArgs: []string{"--lockfile-only", "--ignore-scripts"},
		CacheArgs:  []string{"--ignore-scripts"},
		BuildArgs:  []string{"--offline"},
		CacheDirs: []string{
			"${HOME}/.local/share/pnpm",
			"${HOME}/.cache/pnpm",
			"${HOME}/Library/pnpm",
			"${HOME}/Library/Caches/pnpm",
		},
		CacheEnv: "PNPM_HOME",
		Runtime:  "node",
	},
}

// Managers returns every supported package manager.
func Managers() []PackageManager {
	return slices.Clone(managers)
}

// LookupManager returns the package manager with the given command name.
func LookupManager(name string) (PackageManager, bool) {
	for _, m := range managers {
		if m.Name == name {
			return m, true
		}
	}
	return PackageManager{}, false
}

// FormatForLockfile infers the lockfile format from its file name.
func FormatForLockfile(path string) (LockfileFormat, bool) {
	base := filepath.Base(path)
	for _, m := range managers {
		if m.Lockfile == base {
			return m.Format, true
		}
	}
	// npm writes the same format to the shrinkwrap file.
	if base == "npm-shrinkwrap.json" {
		return FormatNPM, true
	}
	return "", false
}
