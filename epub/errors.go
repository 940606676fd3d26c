package epub

import "errors"

var (
	// ErrNotEpub is returned when the file is not a valid EPUB container.
	ErrNotEpub = errors.New("epub: not an epub container")
	// ErrNoRootFile is returned when container.xml does not point to a usable package document.
	ErrNoRootFile = errors.New("epub: no package document")
	// ErrEncrypted is returned for containers with DRM encryption.
	ErrEncrypted = errors.New("epub: container is encrypted")
	// ErrMissingEntry is returned when a requested archive entry does not exist.
	ErrMissingEntry = errors.New("epub: no such entry")
	// ErrEntryTooLarge is returned when an entry inflates over the safety limit.
	ErrEntryTooLarge = errors.New("epub: entry exceeds decompression limit")
	// ErrNoCover is returned when the package declares no usable cover image.
	ErrNoCover = errors.New("epub: no cover image")
)
