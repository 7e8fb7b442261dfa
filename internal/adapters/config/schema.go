package config

import "time"

// File is the structure of .guard.yaml and the user-level config.yaml.
type File struct {
	Analysis AnalysisDTO `yaml:"analysis"`
	Sandbox  SandboxDTO  `yaml:"sandbox"`
	Log      LogDTO      `yaml:"log"`
	Exit     ExitDTO     `yaml:"exit"`
}

// AnalysisDTO configures the risk-analysis service.
type AnalysisDTO struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Project string        `yaml:"project"`
	Group   string        `yaml:"group"`
	Timeout time.Duration `yaml:"timeout"`
}

// SandboxDTO configures sandbox enforcement.
type SandboxDTO struct {
	Fallback string   `yaml:"fallback"`
	Writable []string `yaml:"writable"`
	Runnable []string `yaml:"runnable"`
}

// LogDTO configures the logger.
type LogDTO struct {
	Format string `yaml:"format"`
}

// ExitDTO configures exit-code reporting.
type ExitDTO struct {
	// Codes is "manager" (default) or "stage".
	Codes string `yaml:"codes"`
}
