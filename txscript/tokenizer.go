// Copyright (c) 2019 The Decred developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
)

// opcodeArrayRef is used to break initialization cycles.
var opcodeArrayRef *[256]opcode

func init() {
	opcodeArrayRef = &opcodeArray
}

// ScriptTokenizer walks a raw script one opcode at a time without
// allocating.  Call Next until it returns false, then consult Err to tell
// a clean end of script apart from a malformed push.
//
// After a successful Next, Opcode and Data describe the opcode just read
// and ByteIndex is the offset of the one that follows it.
type ScriptTokenizer struct {
	script  []byte
	version uint16
	offset  int32
	op      *opcode
	data    []byte
	err     error
}

// Done reports whether the tokenizer has consumed the whole script or has
// stopped on a parse error.
func (t *ScriptTokenizer) Done() bool {
	return t.err != nil || t.offset >= int32(len(t.script))
}

// fail records a malformed push at the current offset.
func (t *ScriptTokenizer) fail(format string, args ...interface{}) bool {
	str := fmt.Sprintf("offset %d: ", t.offset) + fmt.Sprintf(format, args...)
	t.err = scriptError(ErrMalformedPush, str)
	return false
}

// Next parses the opcode at the current offset and advances past it.  It
// returns false at the end of the script and on a parse failure; in the
// latter case Err is set and the offset stays on the offending opcode.
// The previously parsed opcode and data are left untouched on failure.
func (t *ScriptTokenizer) Next() bool {
	if t.Done() {
		return false
	}

	op := &opcodeArrayRef[t.script[t.offset]]
	rest := t.script[t.offset:]

	// Opcodes without a payload, including the small integer pushes
	// whose value is implied by the opcode itself.
	if op.length == 1 {
		t.offset++
		t.op, t.data = op, nil
		return true
	}

	// OP_DATA_1 through OP_DATA_75 carry a fixed payload size.
	if op.length > 1 {
		if len(rest) < op.length {
			return t.fail("%s needs %d bytes, %d remain", op.name,
				op.length, len(rest))
		}
		t.offset += int32(op.length)
		t.op, t.data = op, rest[1:op.length]
		return true
	}

	// OP_PUSHDATA1/2/4 are followed by a little-endian length of -length
	// bytes and then the payload.
	prefixLen := -op.length
	if len(rest)-1 < prefixLen {
		return t.fail("%s needs a %d byte length, %d remain", op.name,
			prefixLen, len(rest)-1)
	}
	prefix := rest[1 : 1+prefixLen]
	var dataLen uint64
	switch prefixLen {
	case 1:
		dataLen = uint64(prefix[0])
	case 2:
		dataLen = uint64(binary.LittleEndian.Uint16(prefix))
	case 4:
		dataLen = uint64(binary.LittleEndian.Uint32(prefix))
	default:
		return t.fail("%s has unknown length prefix %d", op.name,
			prefixLen)
	}

	payload := rest[1+prefixLen:]
	if dataLen > uint64(len(payload)) {
		return t.fail("%s pushes %d bytes, %d remain", op.name, dataLen,
			len(payload))
	}

	t.offset += int32(1 + prefixLen + int(dataLen))
	t.op, t.data = op, payload[:dataLen]
	return true
}

// Script returns the full script associated with the tokenizer.
func (t *ScriptTokenizer) Script() []byte {
	return t.script
}

// ByteIndex returns the current offset into the full script that will be parsed
// next and therefore also implies everything before it has already been parsed.
func (t *ScriptTokenizer) ByteIndex() int32 {
	return t.offset
}

// Opcode returns the current opcode associated with the tokenizer.
func (t *ScriptTokenizer) Opcode() byte {
	return t.op.value
}

// Data returns the data associated with the most recently successfully parsed
// opcode.
func (t *ScriptTokenizer) Data() []byte {
	return t.data
}

// Err returns any errors currently associated with the tokenizer.  This will
// only be non-nil in the case a parsing error was encountered.
func (t *ScriptTokenizer) Err() error {
	return t.err
}

// MakeScriptTokenizer returns a tokenizer over script.  Only script version
// 0 exists; any other version yields a tokenizer whose Err is already set
// to ErrUnsupportedScriptVersion.
func MakeScriptTokenizer(scriptVersion uint16, script []byte) ScriptTokenizer {
	var err error
	if scriptVersion != 0 {
		str := fmt.Sprintf("script version %d is not supported", scriptVersion)
		err = scriptError(ErrUnsupportedScriptVersion, str)
	}
	return ScriptTokenizer{version: scriptVersion, script: script, err: err}
}
