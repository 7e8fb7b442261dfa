package lockfile

import (
	"bufio"
	"bytes"
	"strings"

	"go.trai.ch/guard/internal/core/domain"
	"gopkg.in/yaml.v3"
)

type berryEntry struct {
	Version    string `yaml:"version"`
	Resolution string `yaml:"resolution"`
}

func parseYarn(data []byte) ([]domain.Dependency, error) {
	if bytes.Contains(data, []byte("__metadata:")) {
		return parseYarnBerry(data)
	}
	return parseYarnClassic(data)
}

// parseYarnBerry reads the YAML lockfile written by yarn 2 and later.
func parseYarnBerry(data []byte) ([]domain.Dependency, error) {
	var entries map[string]berryEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	deps := make([]domain.Dependency, 0, len(entries))
	for key, entry := range entries {
		if key == "__metadata" || entry.Resolution == "" {
			continue
		}
		name, ref, ok := splitSpec(entry.Resolution)
		if !ok {
			continue
		}
		version, ok := strings.CutPrefix(ref, "npm:")
		if !ok {
			// workspace:, link:, portal:, patch: and git resolutions.
			continue
		}
		if entry.Version != "" {
			version = entry.Version
		}
		deps = append(deps, domain.Dependency{Name: name, Version: version, Registry: domain.RegistryNPM})
	}
	return deps, nil
}

// parseYarnClassic reads the line-oriented yarn v1 lockfile. yaml.v3 cannot
// parse it: headers list several comma-separated keys and values are not
// separated from keys by a colon.
func parseYarnClassic(data []byte) ([]domain.Dependency, error) {
	var (
		deps    []domain.Dependency
		name    string
		skip    bool
		scanner = bufio.NewScanner(bytes.NewReader(data))
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.HasPrefix(line, " ") {
			name, skip = classicHeader(line)
			continue
		}

		if name == "" || skip || !strings.HasPrefix(line, "  version ") {
			continue
		}
		version := unquote(strings.TrimSpace(strings.TrimPrefix(line, "  version ")))
		deps = append(deps, domain.Dependency{Name: name, Version: version, Registry: domain.RegistryNPM})
		name = ""
	}

	return deps, scanner.Err()
}

// classicHeader returns the package name of an entry header such as
// `"@babel/core@^7.0.0", "@babel/core@^7.1.0":`.
func classicHeader(line string) (string, bool) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ":")
	first, _, _ := strings.Cut(line, ",")
	spec := unquote(strings.TrimSpace(first))

	name, ref, ok := splitSpec(spec)
	if !ok {
		return "", true
	}
	if realRef, isAlias := strings.CutPrefix(ref, "npm:"); isAlias {
		if realName, _, ok := splitSpec(realRef); ok {
			name = realName
		}
		return name, false
	}
	return name, isLocal(ref)
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
