// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the Evrmore transaction encoding.

Transactions are a version, a list of inputs, a list of outputs, and a lock
time, encoded in that order with variable length integers in front of every
list and script.  There is no witness section.

# Errors

Malformed input is reported as a *MessageError.  Short input wraps
ErrTruncatedInput and leftover bytes after DeserializeTx wrap
ErrTrailingBytes, so both can be matched with errors.Is.  Errors from the
underlying io.Reader are returned unchanged.
*/
package wire
