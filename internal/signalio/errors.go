// SPDX-License-Identifier: MIT
package signalio

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat marks containers this package cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DecodeError reports a file that was opened but could not be parsed.
type DecodeError struct {
	Path   string
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IOError reports a failure to open, create, write or close a file.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
