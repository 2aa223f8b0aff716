package model

import (
	"errors"
	"fmt"
)

var (
	ErrWalletNotConnected = errors.New("please connect your wallet")
	ErrImageRequired      = errors.New("please provide an image URL")
	ErrImageNotHTTP       = errors.New("please provide a valid image URL (starting with http)")
	ErrPreviewIncomplete  = errors.New("please fill in all fields to preview")
	ErrAlreadyMinted      = errors.New("this image URL is already minted")
	ErrPackageRequired    = errors.New("package id is required")
	ErrPackageNotHex      = errors.New("package id must start with 0x")
	ErrModuleRequired     = errors.New("module name is required")
	ErrFunctionRequired   = errors.New("function name is required")
	ErrImageTooLarge      = errors.New("image exceeds the 10 MiB upload limit")
	ErrNotAnImage         = errors.New("file is not an image")
)

// ValidationError reports missing or malformed user input. It blocks the
// requested action before any network call is made.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// QueryError reports a read-endpoint transport or decoding failure.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// SubmissionError reports that the wallet or the network rejected a
// transaction. Message carries the underlying text verbatim.
type SubmissionError struct {
	Digest  string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return "Minting failed: " + e.Message
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// NewSubmissionError wraps err, keeping its message verbatim.
func NewSubmissionError(err error) *SubmissionError {
	msg := "Unknown error occurred"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &SubmissionError{Message: msg, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
