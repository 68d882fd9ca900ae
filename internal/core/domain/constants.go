package domain

import "path/filepath"

const (
	// PcellDirName is the name of the internal workspace directory.
	PcellDirName = ".pcell"

	// SessionDirName is the name of the persisted layout session store.
	SessionDirName = "session"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "pcell.yaml"

	// LayoutFileName is the file name a stashed layout is stored under.
	LayoutFileName = "layout.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultSessionPath returns the default root directory for the persisted
// layout session store. It joins .pcell and session.
func DefaultSessionPath() string {
	return filepath.Join(PcellDirName, SessionDirName)
}
