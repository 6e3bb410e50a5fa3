// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// These are the constants specified for maximums in individual scripts.
const (
	MaxOpsPerScript       = 201 // Max number of non-push operations.
	MaxPubKeysPerMultiSig = 20  // Multisig can't have more sigs than this.
	MaxScriptElementSize  = 520 // Max bytes pushable to the stack.
)

// checkScriptParses returns an error if the provided script fails to parse.
func checkScriptParses(script []byte) error {
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		// Nothing to do.
	}
	return tokenizer.Err()
}

// IsPushOnlyScript returns whether or not the passed script only pushes data
// according to the consensus definition of pushing data.
//
// WARNING: This function always treats the passed script as version 0.  Great
// care must be taken if introducing a new script version because it is used in
// consensus which, unfortunately as of the time of this writing, does not check
// script versions before checking if it is a push only script which means nodes
// on existing rules will treat new version scripts as if they were version 0.
func IsPushOnlyScript(script []byte) bool {
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		// All opcodes up to OP_16 are data push instructions.
		// NOTE: This does consider OP_RESERVED to be a data push
		// instruction, but execution of OP_RESERVED will fail anyway
		// and matches the behavior required by consensus.
		if tokenizer.Opcode() > OP_16 {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// isCanonicalPush reports whether the opcode is a data push using the
// shortest available encoding for data.
func isCanonicalPush(op byte, data []byte) bool {
	return op <= OP_PUSHDATA4 && op == canonicalPushOpcode(data)
}

// HasCanonicalPushes returns whether or not the passed script only contains
// canonical data pushes.  Small integers and -1 must use OP_1 through OP_16
// and OP_1NEGATE, and every other push must use the shortest length prefix.
// A script that fails to parse is not canonical.
func HasCanonicalPushes(script []byte) bool {
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		op, data := tokenizer.Opcode(), tokenizer.Data()
		if op <= OP_PUSHDATA4 && !isCanonicalPush(op, data) {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// DisasmString formats a disassembled script for one line printing.  When the
// script fails to parse, the returned string will contain the disassembled
// script up to the point the failure occurred along with the string '[error]'
// appended.  In addition, the reason the script failed to parse is returned
// if the caller wants more information about the failure.
func DisasmString(script []byte) (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(0, script)
	if tokenizer.Next() {
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	for tokenizer.Next() {
		disbuf.WriteByte(' ')
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	if tokenizer.Err() != nil {
		if tokenizer.ByteIndex() != 0 {
			disbuf.WriteByte(' ')
		}
		disbuf.WriteString("[error]")
	}
	return disbuf.String(), tokenizer.Err()
}

// ScriptElement is one parsed opcode of a script along with the data it
// pushes, if any.
type ScriptElement struct {
	Opcode byte
	Data   []byte
}

// String returns the compact disassembly of the element.
func (e ScriptElement) String() string {
	var buf strings.Builder
	disasmOpcode(&buf, &opcodeArray[e.Opcode], e.Data, true)
	return buf.String()
}

// Encode serializes the element exactly as its opcode dictates, including
// the length prefix of OP_PUSHDATA1/2/4.  An error is returned when the data
// does not fit the opcode.
func (e ScriptElement) Encode() ([]byte, error) {
	op := &opcodeArray[e.Opcode]
	switch {
	case op.length == 1:
		if len(e.Data) != 0 {
			str := fmt.Sprintf("opcode %s does not carry data", op.name)
			return nil, scriptError(ErrMalformedPush, str)
		}
		return []byte{e.Opcode}, nil

	case op.length > 1:
		if len(e.Data) != op.length-1 {
			str := fmt.Sprintf("opcode %s requires %d bytes of data, "+
				"got %d", op.name, op.length-1, len(e.Data))
			return nil, scriptError(ErrMalformedPush, str)
		}
		b := make([]byte, 0, op.length)
		b = append(b, e.Opcode)
		return append(b, e.Data...), nil
	}

	prefixLen := -op.length
	if uint64(len(e.Data)) >= 1<<(8*uint(prefixLen)) {
		str := fmt.Sprintf("%d bytes of data do not fit opcode %s",
			len(e.Data), op.name)
		return nil, scriptError(ErrMalformedPush, str)
	}
	b := make([]byte, 1+prefixLen, 1+prefixLen+len(e.Data))
	b[0] = e.Opcode
	switch prefixLen {
	case 1:
		b[1] = byte(len(e.Data))
	case 2:
		binary.LittleEndian.PutUint16(b[1:], uint16(len(e.Data)))
	default:
		binary.LittleEndian.PutUint32(b[1:], uint32(len(e.Data)))
	}
	return append(b, e.Data...), nil
}

// ParseScript splits script into its elements.  The data of each element
// aliases script.  Encoding the elements in order with EncodeScript yields
// the original bytes.
func ParseScript(script []byte) ([]ScriptElement, error) {
	var elems []ScriptElement
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		elems = append(elems, ScriptElement{
			Opcode: tokenizer.Opcode(),
			Data:   tokenizer.Data(),
		})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return elems, nil
}

// EncodeScript serializes elems back into a raw script.
func EncodeScript(elems []ScriptElement) ([]byte, error) {
	var script []byte
	for _, e := range elems {
		b, err := e.Encode()
		if err != nil {
			return nil, err
		}
		script = append(script, b...)
	}
	return script, nil
}

// filterScript returns script without the opcodes for which drop returns
// true.  The input is returned unchanged, without allocating, when nothing
// is dropped.  Parsing stops at the first malformed opcode.
func filterScript(script []byte, drop func(op byte, data []byte) bool) []byte {
	var result []byte
	var prevOffset int32
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if drop(tokenizer.Opcode(), tokenizer.Data()) {
			if result == nil {
				result = make([]byte, 0, len(script))
				result = append(result, script[:prevOffset]...)
			}
		} else if result != nil {
			result = append(result, script[prevOffset:tokenizer.ByteIndex()]...)
		}
		prevOffset = tokenizer.ByteIndex()
	}
	if result == nil {
		return script
	}
	return result
}

// removeOpcodeRaw returns the script with every instance of opcode removed.
func removeOpcodeRaw(script []byte, opcode byte) []byte {
	return filterScript(script, func(op byte, _ []byte) bool {
		return op == opcode
	})
}

// removeOpcodeByData will return the script minus any opcodes that perform a
// canonical push of data that contains the passed data to remove.  This
// function assumes it is provided a version 0 script as any future version of
// script should avoid this functionality since it is unnecessary due to the
// signature scripts not being part of the witness-free transaction hash.
func removeOpcodeByData(script []byte, dataToRemove []byte) []byte {
	// Avoid work when possible.
	if len(script) == 0 || len(dataToRemove) == 0 {
		return script
	}

	return filterScript(script, func(op byte, data []byte) bool {
		return isCanonicalPush(op, data) && bytes.Equal(data, dataToRemove)
	})
}

// IsUnspendable returns whether the passed public key script is unspendable, or
// guaranteed to fail at execution.  This allows outputs to be pruned instantly
// when entering the UTXO set.
func IsUnspendable(pkScript []byte) bool {
	return len(pkScript) > MaxScriptSize ||
		(len(pkScript) > 0 && pkScript[0] == OP_RETURN) ||
		checkScriptParses(pkScript) != nil
}

// countSigOps returns the number of signature operations in the script.  In
// precise mode a multisig preceded by a small integer counts that many keys,
// otherwise every multisig counts as MaxPubKeysPerMultiSig.  Counting stops
// at the first parse failure.
func countSigOps(script []byte, precise bool) int {
	numSigOps := 0
	prevOp := byte(OP_INVALIDOPCODE)
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		switch tokenizer.Opcode() {
		case OP_CHECKSIG, OP_CHECKSIGVERIFY:
			numSigOps++

		case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
			if precise && prevOp >= OP_1 && prevOp <= OP_16 {
				numSigOps += asSmallInt(prevOp)
			} else {
				numSigOps += MaxPubKeysPerMultiSig
			}
		}
		prevOp = tokenizer.Opcode()
	}
	return numSigOps
}

// GetSigOpCount provides a quick count of the number of signature operations
// in a script.  With accurate set, a CHECKMULTISIG counts the number of keys
// given by the preceding small integer; otherwise it counts as 20.  If the
// script fails to parse, then the count up to the point of failure is
// returned.
func GetSigOpCount(script []byte, accurate bool) int {
	return countSigOps(script, accurate)
}

// GetPreciseSigOpCount returns the number of signature operations in
// scriptPubKey.  When bip16 is set and scriptPubKey is pay-to-script-hash,
// the operations of the redeem script at the end of scriptSig are counted
// precisely instead.
func GetPreciseSigOpCount(scriptSig, scriptPubKey []byte, bip16 bool) int {
	if !bip16 || !isScriptHashScript(scriptPubKey) {
		return countSigOps(scriptPubKey, true)
	}

	// The signature script must be push only with a redeem script at the
	// end to count anything.
	if len(scriptSig) == 0 || !IsPushOnlyScript(scriptSig) {
		return 0
	}
	var redeemScript []byte
	tokenizer := MakeScriptTokenizer(0, scriptSig)
	for tokenizer.Next() {
		redeemScript = tokenizer.Data()
	}
	return countSigOps(redeemScript, true)
}

// PushedData returns an array of byte slices containing any pushed data found
// in the passed script.  This includes OP_0, but not OP_1 - OP_16.
func PushedData(script []byte) ([][]byte, error) {
	var data [][]byte
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		switch {
		case tokenizer.Data() != nil:
			data = append(data, tokenizer.Data())
		case tokenizer.Opcode() == OP_0:
			data = append(data, []byte{})
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
