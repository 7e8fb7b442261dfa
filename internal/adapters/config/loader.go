// Package config provides the configuration loader for guard.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file.
const (
	EnvAPIURL    = "GUARD_API_URL"
	EnvAPIToken  = "GUARD_API_TOKEN"
	EnvProject   = "GUARD_PROJECT"
	EnvGroup     = "GUARD_GROUP"
	EnvLogFormat = "GUARD_LOG_FORMAT"
	EnvExitCodes = "GUARD_EXIT_CODES"
)

// Loader implements ports.ConfigLoader using YAML files and the environment.
type Loader struct {
	// LookupEnv reads an environment variable.
	LookupEnv func(key string) (string, bool)
	// UserConfigDir returns the per-user configuration directory.
	UserConfigDir func() (string, error)
}

// NewLoader creates a Loader backed by the process environment.
func NewLoader() *Loader {
	return &Loader{
		LookupEnv:     os.LookupEnv,
		UserConfigDir: os.UserConfigDir,
	}
}

// Load reads the nearest .guard.yaml above cwd, falling back to the user
// config file, then applies environment overrides.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := l.findConfiguration(cwd)
	if path != "" {
		var file File
		if err := readAndUnmarshalYAML(path, &file); err != nil {
			return nil, zerr.With(err, "path", path)
		}
		if err := apply(cfg, &file); err != nil {
			return nil, zerr.With(err, "path", path)
		}
		cfg.Path = path
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) findConfiguration(cwd string) string {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	if l.UserConfigDir == nil {
		return ""
	}
	dir, err := l.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	candidate := filepath.Join(dir, domain.UserConfigDirName, domain.UserConfigFileName)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}

func apply(cfg *domain.Config, file *File) error {
	cfg.Analysis = domain.AnalysisConfig{
		URL:     strings.TrimRight(file.Analysis.URL, "/"),
		Token:   file.Analysis.Token,
		Project: file.Analysis.Project,
		Group:   file.Analysis.Group,
		Timeout: file.Analysis.Timeout,
	}

	if file.Sandbox.Fallback != "" {
		fallback, err := parseFallback(file.Sandbox.Fallback)
		if err != nil {
			return err
		}
		cfg.Sandbox.Fallback = fallback
	}
	cfg.Sandbox.Writable = file.Sandbox.Writable
	cfg.Sandbox.Runnable = file.Sandbox.Runnable

	if file.Log.Format != "" {
		format, err := parseLogFormat(file.Log.Format)
		if err != nil {
			return err
		}
		cfg.Log.Format = format
	}

	if file.Exit.Codes != "" {
		stageCodes, err := parseExitCodes(file.Exit.Codes)
		if err != nil {
			return err
		}
		cfg.Exit.StageCodes = stageCodes
	}

	return nil
}

func (l *Loader) applyEnv(cfg *domain.Config) error {
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.Analysis.URL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup(EnvAPIToken); ok && v != "" {
		cfg.Analysis.Token = v
	}
	if v, ok := lookup(EnvProject); ok && v != "" {
		cfg.Analysis.Project = v
	}
	if v, ok := lookup(EnvGroup); ok && v != "" {
		cfg.Analysis.Group = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		format, err := parseLogFormat(v)
		if err != nil {
			return zerr.With(err, "env", EnvLogFormat)
		}
		cfg.Log.Format = format
	}
	if v, ok := lookup(EnvExitCodes); ok && v != "" {
		stageCodes, err := parseExitCodes(v)
		if err != nil {
			return zerr.With(err, "env", EnvExitCodes)
		}
		cfg.Exit.StageCodes = stageCodes
	}

	return nil
}

// parseExitCodes accepts "stage" (always report the stage code) or
// "manager" (prefer the package manager's status).
func parseExitCodes(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stage":
		return true, nil
	case "manager":
		return false, nil
	default:
		return false, zerr.With(domain.ErrInvalidExitCodes, "exit_codes", s)
	}
}

func parseFallback(s string) (domain.FallbackPolicy, error) {
	switch p := domain.FallbackPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case domain.FallbackStrict, domain.FallbackWarn:
		return p, nil
	default:
		return "", zerr.With(domain.ErrInvalidFallback, "fallback", s)
	}
}

func parseLogFormat(s string) (domain.LogFormat, error) {
	switch f := domain.LogFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case domain.LogPretty, domain.LogJSON:
		return f, nil
	default:
		return "", zerr.With(domain.ErrInvalidLogFormat, "format", s)
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking from the working directory
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
