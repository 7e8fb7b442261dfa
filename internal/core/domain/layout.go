// Package domain contains the core types of guard.
package domain

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = ".guard.yaml"

	// UserConfigDirName is the directory under the user config dir holding config.yaml.
	UserConfigDirName = "guard"

	// UserConfigFileName is the name of the user-level configuration file.
	UserConfigFileName = "config.yaml"

	// MaxRootDepth bounds how many directories the root locator inspects.
	MaxRootDepth = 32

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
