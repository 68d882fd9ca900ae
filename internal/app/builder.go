package app

import (
	"go.trai.ch/pcell/internal/core/ports"
)

// Components contains the initialized application components. It provides
// controlled access to the pieces the CLI layer needs.
type Components struct {
	App    *App
	Logger ports.Logger
}
