package ark

import "errors"

// Sentinel errors for the archive engine. Callers match them with errors.Is;
// operations wrap them with context via fmt.Errorf and %w.
var (
	// ErrInvalidScheme is returned when an archive URL does not use the ark scheme.
	ErrInvalidScheme = errors.New("invalid scheme")

	// ErrInvalidArgument is returned for malformed inputs: bad keys, unknown
	// encodings, undecodable payloads.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a path does not exist at the queried version,
	// or exists but is of the wrong type for the operation.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an operation requires its target path
	// to be vacant but a node already exists there.
	ErrAlreadyExists = errors.New("already exists")

	// ErrParentMissing is returned when the immediate parent of the target path
	// does not exist as a directory.
	ErrParentMissing = errors.New("parent directory missing")

	// ErrNotEmpty is returned by Rmdir when the directory still has descendants.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrInvalidRange is returned by History/Slice when the requested window
	// is empty or inverted.
	ErrInvalidRange = errors.New("invalid range")

	// ErrPermissionDenied is returned by every mutating operation on an
	// archive that is not locally owned.
	ErrPermissionDenied = errors.New("permission denied")
)
