package filesim

import "errors"

// Package-specific error variables that can be used with errors.Is() for error handling.
var (
	// ErrNotFound is returned when a path component or directory entry cannot be resolved.
	ErrNotFound = errors.New("filesim: no such file or directory")

	// ErrExists is returned when a create/move/link/copy target name is already taken.
	ErrExists = errors.New("filesim: name already exists in directory")

	// ErrPermissionDenied is returned when an operation requires a permission bit the inode lacks.
	ErrPermissionDenied = errors.New("filesim: permission denied")

	// ErrOutOfInodes is returned when the inode table has no free slot left.
	ErrOutOfInodes = errors.New("filesim: no free inode")

	// ErrOutOfBlocks is returned when the block bitmap has no free block left.
	ErrOutOfBlocks = errors.New("filesim: no free block")

	// ErrOutOfEntries is returned when a directory record has no free entry left.
	ErrOutOfEntries = errors.New("filesim: directory is full")

	// ErrInvalidDescriptor is returned when an open-file descriptor is out of range or closed.
	ErrInvalidDescriptor = errors.New("filesim: invalid file descriptor")

	// ErrInvalidArgument is returned for a negative size, unknown seek whence, or offset past end.
	ErrInvalidArgument = errors.New("filesim: invalid argument")

	// ErrWrongType is returned when an operation expects a file where it finds a directory, or vice versa.
	ErrWrongType = errors.New("filesim: wrong inode type for this operation")

	// ErrTooManyOpenFiles is returned when the open-file table has no free slot left.
	ErrTooManyOpenFiles = errors.New("filesim: too many open files")

	// ErrCorrupt is returned when an on-disk invariant is violated in a way callers cannot repair.
	ErrCorrupt = errors.New("filesim: on-disk structure is corrupt")
)
