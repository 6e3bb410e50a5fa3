// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput indicates the input ended before a field that was
	// declared or required could be fully read.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrTrailingBytes indicates bytes remained after a complete
	// transaction was decoded.
	ErrTrailingBytes = errors.New("trailing bytes after transaction")

	// ErrNegativeValue indicates a transaction output carries a value
	// below zero.
	ErrNegativeValue = errors.New("negative output value")
)

// errNonCanonicalVarInt is the common format string used for non-canonically
// encoded variable length integer errors.
const errNonCanonicalVarInt = "non-canonical varint %x - discriminant %x must " +
	"encode a value greater than %x"

// MessageError describes an issue with a message or transaction being
// decoded or encoded.  An example of some potential issues are messages from
// the wrong network, invalid commands, mismatched checksums, and exceeding
// max payloads.
//
// This provides a mechanism for the caller to type assert the error to
// differentiate between general io errors such as io.EOF and issues that
// resulted from malformed input.  Err, when set, is one of the sentinel
// errors of this package and is reachable through errors.Is.
type MessageError struct {
	Func        string // Function name
	Description string // Human readable description of the issue
	Err         error  // Underlying sentinel, may be nil
}

// Error satisfies the error interface and prints human-readable errors.
func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%v: %v", e.Func, e.Description)
	}
	return e.Description
}

// Unwrap returns the underlying sentinel error, if any.
func (e *MessageError) Unwrap() error {
	return e.Err
}

// messageError creates an error for the given function and description.
func messageError(f string, desc string) *MessageError {
	return &MessageError{Func: f, Description: desc}
}

// truncatedError reports a read of want bytes that ran out of input.
func truncatedError(want int) *MessageError {
	return &MessageError{
		Func:        "readFull",
		Description: fmt.Sprintf("input ended inside a %d byte field", want),
		Err:         ErrTruncatedInput,
	}
}
