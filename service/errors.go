package service

import "errors"

// Sentinel markers for the failure classes callers branch on with
// errors.Is. Returned errors wrap both the marker and the cause.
var (
	// ErrNotFound covers unknown virtual book ids, catalog rows whose
	// backing container is gone from disk, and bundle URLs naming a
	// missing archive entry.
	ErrNotFound = errors.New("service: virtual book not found")

	// ErrExtraction covers slicer failures, interrupted extractions and
	// cache writes that could not be completed.
	ErrExtraction = errors.New("service: extraction failed")

	// ErrResourceAccess covers cache files that cannot be opened after a
	// successful extraction.
	ErrResourceAccess = errors.New("service: resource access failed")
)
