// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the Evrmore transaction script language.

This package provides data structures and functions to build, parse, and
execute Evrmore transaction scripts, compute the legacy signature hash that
signatures commit to, and assemble the signature scripts that spend standard
and multisig outputs.

# Script Overview

Evrmore transaction scripts are written in a stack-based, FORTH-like language.

The script language consists of a number of opcodes which fall into several
categories such as pushing and popping data to and from the stack, performing
basic arithmetic, conditional branching, comparing hashes, checking lock
times, and checking cryptographic signatures.  Scripts are processed from left
to right and intentionally do not provide loops.

The language is the one Bitcoin uses before segregated witness, extended with
OP_EVR_ASSET.  That opcode tags an otherwise standard P2PKH or P2SH output with
an asset payload; execution of the output script stops when it is reached.

# Verifying

VerifyScript runs the signature script of one transaction input against the
public key script it spends and reports a VerifyResult.  A failing script is
an expected outcome, so the result carries a boolean, the ErrorCode of the
failure, and a coarse FailureReason instead of returning an error.  Engine
exposes the same machinery step by step for debugging.

# Errors

Errors returned by this package are of type txscript.Error.  This allows the
caller to programmatically determine the specific error by examining the
ErrorCode field of the type asserted txscript.Error while still providing rich
error messages with contextual information.  A convenience function named
IsErrorCode is also provided to allow callers to easily check for a specific
error code.  See ErrorCode in the package documentation for a full list.
*/
package txscript
