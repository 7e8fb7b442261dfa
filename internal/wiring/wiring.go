// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/guard/internal/adapters/config"
	_ "go.trai.ch/guard/internal/adapters/fs"
	_ "go.trai.ch/guard/internal/adapters/lockfile"
	_ "go.trai.ch/guard/internal/adapters/logger"
	_ "go.trai.ch/guard/internal/adapters/report"
	_ "go.trai.ch/guard/internal/adapters/sandbox"
	_ "go.trai.ch/guard/internal/adapters/shell"
	_ "go.trai.ch/guard/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/guard/internal/app"
)
