package ports

// SessionStore is the persisted artifact store: an on-disk cache of
// previously written layouts keyed by the hash of their path and the hash
// of their byte content. Lookup is exact-match only.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type SessionStore interface {
	// Stash copies the layout file at path into the store and returns the
	// store location it was filed under.
	Stash(path string) (string, error)

	// Lookup reports whether the current content of the file at path is
	// already stashed, returning the store location on a hit.
	Lookup(path string) (string, bool, error)

	// Clean removes every stashed layout.
	Clean() error
}
