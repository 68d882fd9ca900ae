package ports

import "go.trai.ch/pcell/internal/core/domain"

// LayoutCodec persists layouts to disk and reads them back.
//
//go:generate mockgen -source=codec.go -destination=mocks/mock_codec.go -package=mocks
type LayoutCodec interface {
	// Write serializes the layout to the given path.
	Write(l *domain.Layout, path string) error

	// ReadInto merges the cells stored at path into the layout.
	ReadInto(l *domain.Layout, path string) error
}
