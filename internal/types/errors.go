package types

import "fmt"

// MissingDirectoryError reports a required directory that does not exist.
type MissingDirectoryError struct {
	Path string
	Err  error
}

func (e *MissingDirectoryError) Error() string {
	return fmt.Sprintf("missing directory: %s", e.Path)
}

func (e *MissingDirectoryError) Unwrap() error { return e.Err }

// DecodeError reports a source that could not be read as an image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidSizeError reports a non-positive canvas edge length.
type InvalidSizeError struct {
	Size int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid canvas size %d: must be > 0", e.Size)
}

// WriteError reports a destination that could not be written.
// Any previous file under Path is left as it was.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// RenameError reports a failed replace of the temporary file onto Path.
type RenameError struct {
	Path string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("replace %s: %v", e.Path, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// DeletionError reports a file the synchronizer could not remove.
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }
