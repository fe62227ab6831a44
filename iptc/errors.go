package iptc

import (
	"errors"
	"fmt"
)

// ErrNotOpen is returned when an operation is attempted on an adapter
// that is not in the opened state. This is a caller bug, not an
// operational failure.
var ErrNotOpen = errors.New("iptc: adapter is not open")

// ErrAlreadyOpened is returned when Open is called on an adapter that
// already attempted an open. A failed open is terminal; build a new
// adapter to retry.
var ErrAlreadyOpened = errors.New("iptc: adapter was already opened")

// OpenError reports that a file could not be opened as a supported
// image. The adapter that produced it is permanently unusable.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("iptc: open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError reports that persisting the record set to storage failed.
// The in-memory record set has already been mutated when this is
// returned, so memory and disk disagree; reopen before retrying.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("iptc: write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
