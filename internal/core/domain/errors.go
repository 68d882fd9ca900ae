package domain

import "go.trai.ch/zerr"

var (
	// ErrEncoding is returned when a parameter value cannot be converted to
	// the canonical hashable representation.
	ErrEncoding = zerr.New("unsupported parameter value")

	// ErrNameSynthesis is returned when a synthesized cell name is too long
	// or contains characters that are illegal in the target layout.
	ErrNameSynthesis = zerr.New("cell name synthesis failed")

	// ErrCellNameTaken is returned when a distinct live cell already owns the
	// requested name and overwriting was not requested.
	ErrCellNameTaken = zerr.New("cell name already taken")

	// ErrPortCollision is returned when a built cell carries two or more
	// ports sharing a name.
	ErrPortCollision = zerr.New("duplicate port names")

	// ErrOffGridInstance is returned under the Raise policy when a cell
	// contains instances placed off the layout grid.
	ErrOffGridInstance = zerr.New("off-grid instances")

	// ErrCrossLayout is returned when a builder hands back a cell owned by a
	// different layout than the factory's. Never disabled.
	ErrCrossLayout = zerr.New("cell belongs to a different layout")

	// ErrLocked is returned on any mutation of a locked cell. Duplicate the
	// cell first to modify it.
	ErrLocked = zerr.New("cell is locked")

	// ErrBuildCycle is returned when a builder re-enters a build of the same
	// cache key, which can only recurse forever.
	ErrBuildCycle = zerr.New("reentrant build of the same cell")

	// ErrCellNotFound is returned when a requested cell does not exist in
	// the layout.
	ErrCellNotFound = zerr.New("cell not found")

	// ErrUnknownParameter is returned when a build call passes a parameter
	// the factory does not declare.
	ErrUnknownParameter = zerr.New("unknown parameter")
)
