// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pcell/internal/adapters/config"
	_ "go.trai.ch/pcell/internal/adapters/layoutio"
	_ "go.trai.ch/pcell/internal/adapters/logger"
	_ "go.trai.ch/pcell/internal/adapters/session"
	_ "go.trai.ch/pcell/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/pcell/internal/app"
)
