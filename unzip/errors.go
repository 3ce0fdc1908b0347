package unzip

import (
	"fmt"
)

// ErrorKind discriminates what went wrong with an archive.
type ErrorKind int

const (
	// ErrorKindUndefined is reserved for parser failures worth telling
	// apart from plain corruption; nothing maps to it yet
	ErrorKindUndefined ErrorKind = iota

	// ErrorKindCorruptZip is an archive-level parse failure
	ErrorKindCorruptZip
)

// ExtractError wraps a raw parser error with its classified kind. The
// original error is preserved as the cause, for diagnostics.
type ExtractError struct {
	Kind  ErrorKind
	cause error
}

func (e *ExtractError) Error() string {
	if e.Kind == ErrorKindCorruptZip {
		return fmt.Sprintf("Corrupt ZIP: %s", e.cause.Error())
	}
	return e.cause.Error()
}

// Cause returns the underlying parser error
func (e *ExtractError) Cause() error {
	return e.cause
}

func (e *ExtractError) Unwrap() error {
	return e.cause
}

// toExtractError classifies a raw archive parser error. Every parser
// failure counts as a corrupt archive for now; this is the seam where
// other causes would be discriminated into their own kinds.
func toExtractError(err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*ExtractError); ok {
		return ee
	}
	return &ExtractError{
		Kind:  ErrorKindCorruptZip,
		cause: err,
	}
}

// NotFoundError reports that an archive contains no entry with the
// requested name.
type NotFoundError struct {
	EntryPath string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found inside zip", e.EntryPath)
}
