package services

import "errors"

// Failure taxonomy for downloads and follow sync. Callers match with
// errors.Is; the wrapped chain carries the underlying cause.
var (
	// ErrFetchFailed: the chapter's page list could not be retrieved
	// (or was empty). Nothing was written.
	ErrFetchFailed = errors.New("page list fetch failed")

	// ErrTransferFailed: one or more page transfers failed. No
	// manifest entry was committed; the partial directory is left on
	// disk for diagnostics.
	ErrTransferFailed = errors.New("page transfer failed")

	// ErrPersistenceFailed: the local store rejected a read or write.
	ErrPersistenceFailed = errors.New("local persistence failed")

	// ErrRemoteSyncFailed: the best-effort remote follow sync did not
	// complete. The local mutation already succeeded and stands.
	ErrRemoteSyncFailed = errors.New("remote follow sync failed")
)
