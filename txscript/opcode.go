// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/evrmore/evrlib/evrutil"
	"github.com/evrmore/evrlib/wire"
	"golang.org/x/crypto/ripemd160"
)

// An opcode defines the information related to a txscript opcode.  opfunc is
// the function to call to perform the opcode on the script.  length is 1 for
// opcodes without a payload, the total encoded size for OP_DATA_N, and the
// negated width of the length prefix for OP_PUSHDATA1/2/4.
type opcode struct {
	value  byte
	name   string
	length int
	opfunc func(*opcode, []byte, *Engine) error
}

// Push value opcodes.
const (
	OP_0         = 0x00 // 0
	OP_FALSE     = 0x00 // 0 - AKA OP_0
	OP_DATA_1    = 0x01 // 1
	OP_DATA_20   = 0x14 // 20
	OP_DATA_32   = 0x20 // 32
	OP_DATA_33   = 0x21 // 33
	OP_DATA_65   = 0x41 // 65
	OP_DATA_75   = 0x4b // 75
	OP_PUSHDATA1 = 0x4c // 76
	OP_PUSHDATA2 = 0x4d // 77
	OP_PUSHDATA4 = 0x4e // 78
	OP_1NEGATE   = 0x4f // 79
	OP_RESERVED  = 0x50 // 80
	OP_1         = 0x51 // 81 - AKA OP_TRUE
	OP_TRUE      = 0x51 // 81
	OP_2         = 0x52 // 82
	OP_3         = 0x53 // 83
	OP_4         = 0x54 // 84
	OP_5         = 0x55 // 85
	OP_6         = 0x56 // 86
	OP_7         = 0x57 // 87
	OP_8         = 0x58 // 88
	OP_9         = 0x59 // 89
	OP_10        = 0x5a // 90
	OP_11        = 0x5b // 91
	OP_12        = 0x5c // 92
	OP_13        = 0x5d // 93
	OP_14        = 0x5e // 94
	OP_15        = 0x5f // 95
	OP_16        = 0x60 // 96
)

// Flow control opcodes.
const (
	OP_NOP      = 0x61 // 97
	OP_VER      = 0x62 // 98
	OP_IF       = 0x63 // 99
	OP_NOTIF    = 0x64 // 100
	OP_VERIF    = 0x65 // 101
	OP_VERNOTIF = 0x66 // 102
	OP_ELSE     = 0x67 // 103
	OP_ENDIF    = 0x68 // 104
	OP_VERIFY   = 0x69 // 105
	OP_RETURN   = 0x6a // 106
)

// Stack opcodes.
const (
	OP_TOALTSTACK   = 0x6b // 107
	OP_FROMALTSTACK = 0x6c // 108
	OP_2DROP        = 0x6d // 109
	OP_2DUP         = 0x6e // 110
	OP_3DUP         = 0x6f // 111
	OP_2OVER        = 0x70 // 112
	OP_2ROT         = 0x71 // 113
	OP_2SWAP        = 0x72 // 114
	OP_IFDUP        = 0x73 // 115
	OP_DEPTH        = 0x74 // 116
	OP_DROP         = 0x75 // 117
	OP_DUP          = 0x76 // 118
	OP_NIP          = 0x77 // 119
	OP_OVER         = 0x78 // 120
	OP_PICK         = 0x79 // 121
	OP_ROLL         = 0x7a // 122
	OP_ROT          = 0x7b // 123
	OP_SWAP         = 0x7c // 124
	OP_TUCK         = 0x7d // 125
)

// Splice and bitwise logic opcodes.
const (
	OP_CAT         = 0x7e // 126
	OP_SUBSTR      = 0x7f // 127
	OP_LEFT        = 0x80 // 128
	OP_RIGHT       = 0x81 // 129
	OP_SIZE        = 0x82 // 130
	OP_INVERT      = 0x83 // 131
	OP_AND         = 0x84 // 132
	OP_OR          = 0x85 // 133
	OP_XOR         = 0x86 // 134
	OP_EQUAL       = 0x87 // 135
	OP_EQUALVERIFY = 0x88 // 136
	OP_RESERVED1   = 0x89 // 137
	OP_RESERVED2   = 0x8a // 138
)

// Arithmetic opcodes.
const (
	OP_1ADD               = 0x8b // 139
	OP_1SUB               = 0x8c // 140
	OP_2MUL               = 0x8d // 141
	OP_2DIV               = 0x8e // 142
	OP_NEGATE             = 0x8f // 143
	OP_ABS                = 0x90 // 144
	OP_NOT                = 0x91 // 145
	OP_0NOTEQUAL          = 0x92 // 146
	OP_ADD                = 0x93 // 147
	OP_SUB                = 0x94 // 148
	OP_MUL                = 0x95 // 149
	OP_DIV                = 0x96 // 150
	OP_MOD                = 0x97 // 151
	OP_LSHIFT             = 0x98 // 152
	OP_RSHIFT             = 0x99 // 153
	OP_BOOLAND            = 0x9a // 154
	OP_BOOLOR             = 0x9b // 155
	OP_NUMEQUAL           = 0x9c // 156
	OP_NUMEQUALVERIFY     = 0x9d // 157
	OP_NUMNOTEQUAL        = 0x9e // 158
	OP_LESSTHAN           = 0x9f // 159
	OP_GREATERTHAN        = 0xa0 // 160
	OP_LESSTHANOREQUAL    = 0xa1 // 161
	OP_GREATERTHANOREQUAL = 0xa2 // 162
	OP_MIN                = 0xa3 // 163
	OP_MAX                = 0xa4 // 164
	OP_WITHIN             = 0xa5 // 165
)

// Crypto, lock time and expansion opcodes.
const (
	OP_RIPEMD160           = 0xa6 // 166
	OP_SHA1                = 0xa7 // 167
	OP_SHA256              = 0xa8 // 168
	OP_HASH160             = 0xa9 // 169
	OP_HASH256             = 0xaa // 170
	OP_CODESEPARATOR       = 0xab // 171
	OP_CHECKSIG            = 0xac // 172
	OP_CHECKSIGVERIFY      = 0xad // 173
	OP_CHECKMULTISIG       = 0xae // 174
	OP_CHECKMULTISIGVERIFY = 0xaf // 175
	OP_NOP1                = 0xb0 // 176
	OP_NOP2                = 0xb1 // 177
	OP_CHECKLOCKTIMEVERIFY = 0xb1 // 177 - AKA OP_NOP2
	OP_NOP3                = 0xb2 // 178
	OP_CHECKSEQUENCEVERIFY = 0xb2 // 178 - AKA OP_NOP3
	OP_NOP4                = 0xb3 // 179
	OP_NOP5                = 0xb4 // 180
	OP_NOP6                = 0xb5 // 181
	OP_NOP7                = 0xb6 // 182
	OP_NOP8                = 0xb7 // 183
	OP_NOP9                = 0xb8 // 184
	OP_NOP10               = 0xb9 // 185
)

// OP_EVR_ASSET marks the start of an asset payload appended to a standard
// output script.  Everything after it in the same script is payload.
const OP_EVR_ASSET = 0xc0 // 192

// Template matching and sentinel opcodes.  None of them are valid in a
// script.
const (
	OP_SMALLINTEGER  = 0xfa // 250
	OP_PUBKEYS       = 0xfb // 251
	OP_PUBKEYHASH    = 0xfd // 253
	OP_PUBKEY        = 0xfe // 254
	OP_INVALIDOPCODE = 0xff // 255
)

// Conditional execution constants.
const (
	OpCondFalse = 0
	OpCondTrue  = 1
	OpCondSkip  = 2
)

// opcodeArray holds details about all possible opcodes such as how many bytes
// the opcode and any associated data should take, its human-readable name, and
// the handler function.  It is filled in by init.
var opcodeArray [256]opcode

// OpcodeByName is a map that can be used to lookup an opcode by its
// human-readable name (OP_CHECKMULTISIG, OP_CHECKSIG, etc).
var OpcodeByName = make(map[string]byte)

func init() {
	// Every value starts out as an unassigned opcode and pushes get their
	// generated names; the named opcodes below then take their slots.
	for i := range opcodeArray {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_UNKNOWN%d", i), 1,
			opcodeInvalid}
	}
	for i := OP_DATA_1; i <= OP_DATA_75; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_DATA_%d", i),
			i + 1, opcodePushData}
	}
	for i := OP_1; i <= OP_16; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_%d", i-OP_1+1),
			1, opcodeN}
	}

	for _, op := range []opcode{
		// Push value.
		{OP_0, "OP_0", 1, opcodeFalse},
		{OP_PUSHDATA1, "OP_PUSHDATA1", -1, opcodePushData},
		{OP_PUSHDATA2, "OP_PUSHDATA2", -2, opcodePushData},
		{OP_PUSHDATA4, "OP_PUSHDATA4", -4, opcodePushData},
		{OP_1NEGATE, "OP_1NEGATE", 1, opcode1Negate},
		{OP_RESERVED, "OP_RESERVED", 1, opcodeReserved},

		// Control.
		{OP_NOP, "OP_NOP", 1, opcodeNop},
		{OP_VER, "OP_VER", 1, opcodeReserved},
		{OP_IF, "OP_IF", 1, opcodeIf},
		{OP_NOTIF, "OP_NOTIF", 1, opcodeNotIf},
		{OP_VERIF, "OP_VERIF", 1, opcodeReserved},
		{OP_VERNOTIF, "OP_VERNOTIF", 1, opcodeReserved},
		{OP_ELSE, "OP_ELSE", 1, opcodeElse},
		{OP_ENDIF, "OP_ENDIF", 1, opcodeEndif},
		{OP_VERIFY, "OP_VERIFY", 1, opcodeVerify},
		{OP_RETURN, "OP_RETURN", 1, opcodeReturn},
		{OP_CHECKLOCKTIMEVERIFY, "OP_CHECKLOCKTIMEVERIFY", 1, opcodeCheckLockTimeVerify},
		{OP_CHECKSEQUENCEVERIFY, "OP_CHECKSEQUENCEVERIFY", 1, opcodeCheckSequenceVerify},

		// Stack.
		{OP_TOALTSTACK, "OP_TOALTSTACK", 1, opcodeToAltStack},
		{OP_FROMALTSTACK, "OP_FROMALTSTACK", 1, opcodeFromAltStack},
		{OP_2DROP, "OP_2DROP", 1, opcodeStackN},
		{OP_2DUP, "OP_2DUP", 1, opcodeStackN},
		{OP_3DUP, "OP_3DUP", 1, opcodeStackN},
		{OP_2OVER, "OP_2OVER", 1, opcodeStackN},
		{OP_2ROT, "OP_2ROT", 1, opcodeStackN},
		{OP_2SWAP, "OP_2SWAP", 1, opcodeStackN},
		{OP_IFDUP, "OP_IFDUP", 1, opcodeIfDup},
		{OP_DEPTH, "OP_DEPTH", 1, opcodeDepth},
		{OP_DROP, "OP_DROP", 1, opcodeStackN},
		{OP_DUP, "OP_DUP", 1, opcodeStackN},
		{OP_NIP, "OP_NIP", 1, opcodeStackN},
		{OP_OVER, "OP_OVER", 1, opcodeStackN},
		{OP_PICK, "OP_PICK", 1, opcodePick},
		{OP_ROLL, "OP_ROLL", 1, opcodeRoll},
		{OP_ROT, "OP_ROT", 1, opcodeStackN},
		{OP_SWAP, "OP_SWAP", 1, opcodeStackN},
		{OP_TUCK, "OP_TUCK", 1, opcodeTuck},

		// Splice.
		{OP_CAT, "OP_CAT", 1, opcodeDisabled},
		{OP_SUBSTR, "OP_SUBSTR", 1, opcodeDisabled},
		{OP_LEFT, "OP_LEFT", 1, opcodeDisabled},
		{OP_RIGHT, "OP_RIGHT", 1, opcodeDisabled},
		{OP_SIZE, "OP_SIZE", 1, opcodeSize},

		// Bitwise logic.
		{OP_INVERT, "OP_INVERT", 1, opcodeDisabled},
		{OP_AND, "OP_AND", 1, opcodeDisabled},
		{OP_OR, "OP_OR", 1, opcodeDisabled},
		{OP_XOR, "OP_XOR", 1, opcodeDisabled},
		{OP_EQUAL, "OP_EQUAL", 1, opcodeEqual},
		{OP_EQUALVERIFY, "OP_EQUALVERIFY", 1, opcodeEqualVerify},
		{OP_RESERVED1, "OP_RESERVED1", 1, opcodeReserved},
		{OP_RESERVED2, "OP_RESERVED2", 1, opcodeReserved},

		// Numeric related opcodes.
		{OP_1ADD, "OP_1ADD", 1, opcodeUnaryNum},
		{OP_1SUB, "OP_1SUB", 1, opcodeUnaryNum},
		{OP_2MUL, "OP_2MUL", 1, opcodeDisabled},
		{OP_2DIV, "OP_2DIV", 1, opcodeDisabled},
		{OP_NEGATE, "OP_NEGATE", 1, opcodeUnaryNum},
		{OP_ABS, "OP_ABS", 1, opcodeUnaryNum},
		{OP_NOT, "OP_NOT", 1, opcodeUnaryNum},
		{OP_0NOTEQUAL, "OP_0NOTEQUAL", 1, opcodeUnaryNum},
		{OP_ADD, "OP_ADD", 1, opcodeBinaryNum},
		{OP_SUB, "OP_SUB", 1, opcodeBinaryNum},
		{OP_MUL, "OP_MUL", 1, opcodeDisabled},
		{OP_DIV, "OP_DIV", 1, opcodeDisabled},
		{OP_MOD, "OP_MOD", 1, opcodeDisabled},
		{OP_LSHIFT, "OP_LSHIFT", 1, opcodeDisabled},
		{OP_RSHIFT, "OP_RSHIFT", 1, opcodeDisabled},
		{OP_BOOLAND, "OP_BOOLAND", 1, opcodeBinaryNum},
		{OP_BOOLOR, "OP_BOOLOR", 1, opcodeBinaryNum},
		{OP_NUMEQUAL, "OP_NUMEQUAL", 1, opcodeBinaryNum},
		{OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", 1, opcodeNumEqualVerify},
		{OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", 1, opcodeBinaryNum},
		{OP_LESSTHAN, "OP_LESSTHAN", 1, opcodeBinaryNum},
		{OP_GREATERTHAN, "OP_GREATERTHAN", 1, opcodeBinaryNum},
		{OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", 1, opcodeBinaryNum},
		{OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", 1, opcodeBinaryNum},
		{OP_MIN, "OP_MIN", 1, opcodeBinaryNum},
		{OP_MAX, "OP_MAX", 1, opcodeBinaryNum},
		{OP_WITHIN, "OP_WITHIN", 1, opcodeWithin},

		// Crypto.
		{OP_RIPEMD160, "OP_RIPEMD160", 1, opcodeHash},
		{OP_SHA1, "OP_SHA1", 1, opcodeHash},
		{OP_SHA256, "OP_SHA256", 1, opcodeHash},
		{OP_HASH160, "OP_HASH160", 1, opcodeHash},
		{OP_HASH256, "OP_HASH256", 1, opcodeHash},
		{OP_CODESEPARATOR, "OP_CODESEPARATOR", 1, opcodeCodeSeparator},
		{OP_CHECKSIG, "OP_CHECKSIG", 1, opcodeCheckSig},
		{OP_CHECKSIGVERIFY, "OP_CHECKSIGVERIFY", 1, opcodeCheckSigVerify},
		{OP_CHECKMULTISIG, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig},
		{OP_CHECKMULTISIGVERIFY, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify},

		// Reserved no-ops.
		{OP_NOP1, "OP_NOP1", 1, opcodeNop},
		{OP_NOP4, "OP_NOP4", 1, opcodeNop},
		{OP_NOP5, "OP_NOP5", 1, opcodeNop},
		{OP_NOP6, "OP_NOP6", 1, opcodeNop},
		{OP_NOP7, "OP_NOP7", 1, opcodeNop},
		{OP_NOP8, "OP_NOP8", 1, opcodeNop},
		{OP_NOP9, "OP_NOP9", 1, opcodeNop},
		{OP_NOP10, "OP_NOP10", 1, opcodeNop},

		// Assets.
		{OP_EVR_ASSET, "OP_EVR_ASSET", 1, opcodeEvrAsset},

		// Template matching sentinels.
		{OP_SMALLINTEGER, "OP_SMALLINTEGER", 1, opcodeInvalid},
		{OP_PUBKEYS, "OP_PUBKEYS", 1, opcodeInvalid},
		{OP_PUBKEYHASH, "OP_PUBKEYHASH", 1, opcodeInvalid},
		{OP_PUBKEY, "OP_PUBKEY", 1, opcodeInvalid},
		{OP_INVALIDOPCODE, "OP_INVALIDOPCODE", 1, opcodeInvalid},
	} {
		opcodeArray[op.value] = op
	}

	for _, op := range opcodeArray {
		OpcodeByName[op.name] = op.value
	}
	OpcodeByName["OP_FALSE"] = OP_FALSE
	OpcodeByName["OP_TRUE"] = OP_TRUE
	OpcodeByName["OP_NOP2"] = OP_CHECKLOCKTIMEVERIFY
	OpcodeByName["OP_NOP3"] = OP_CHECKSEQUENCEVERIFY
}

// isDisabled returns whether or not the opcode is disabled and thus is always
// bad to see in the instruction stream (even if turned off by a conditional).
func (op *opcode) isDisabled() bool {
	switch op.value {
	case OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT, OP_AND, OP_OR,
		OP_XOR, OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT,
		OP_RSHIFT:
		return true
	}
	return false
}

// alwaysIllegal returns whether or not the opcode is always illegal when passed
// over by the program counter even if in a non-executed branch.
func (op *opcode) alwaysIllegal() bool {
	return op.value == OP_VERIF || op.value == OP_VERNOTIF
}

// isConditional returns whether or not the opcode is a conditional opcode which
// changes the conditional execution stack when executed.
func (op *opcode) isConditional() bool {
	switch op.value {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	}
	return false
}

// isSmallInt returns whether or not the opcode is considered a small integer,
// which is an OP_0, or OP_1 through OP_16.
func isSmallInt(op byte) bool {
	return op == OP_0 || (op >= OP_1 && op <= OP_16)
}

// asSmallInt returns the passed opcode, which must be true according to
// isSmallInt(), as an integer.
func asSmallInt(op byte) int {
	if op == OP_0 {
		return 0
	}
	return int(op - (OP_1 - 1))
}

// canonicalPushOpcode returns the opcode that pushes data with the fewest
// bytes.  Single bytes in 1..16 and 0x81 have dedicated opcodes.
func canonicalPushOpcode(data []byte) byte {
	dataLen := len(data)
	switch {
	case dataLen == 0:
		return OP_0
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		return OP_1 + data[0] - 1
	case dataLen == 1 && data[0] == 0x81:
		return OP_1NEGATE
	case dataLen <= OP_DATA_75:
		return byte(dataLen)
	case dataLen <= 0xff:
		return OP_PUSHDATA1
	case dataLen <= 0xffff:
		return OP_PUSHDATA2
	}
	return OP_PUSHDATA4
}

// checkMinimalDataPush returns whether or not the provided opcode is the
// smallest possible way to represent the given data.  For example, the value
// 15 could be pushed with OP_DATA_1 15 (among other variations); however, OP_15
// is a single opcode that represents the same value and is only a single byte
// versus two bytes.
func checkMinimalDataPush(op *opcode, data []byte) error {
	want := canonicalPushOpcode(data)
	if op.value != want {
		str := fmt.Sprintf("push of %d bytes encoded with opcode %s "+
			"instead of %s", len(data), op.name, opcodeArray[want].name)
		return scriptError(ErrMinimalData, str)
	}
	return nil
}

// disasmOpcode writes a human-readable disassembly of the provided opcode and
// data into the provided buffer.  The compact flag indicates the disassembly
// should print a more compact representation of data-carrying and small
// integer opcodes.  For example, OP_0 through OP_16 are replaced with the
// numeric value and data pushes are printed as only the hex representation of
// the data.
func disasmOpcode(buf *strings.Builder, op *opcode, data []byte, compact bool) {
	if compact {
		switch {
		case op.value == OP_1NEGATE:
			buf.WriteString("-1")
			return
		case isSmallInt(op.value):
			buf.WriteString(strconv.Itoa(asSmallInt(op.value)))
			return
		case op.length != 1:
			buf.WriteString(hex.EncodeToString(data))
			return
		}
	}

	buf.WriteString(op.name)
	switch {
	case op.length == 1:
		return
	case op.length < 0:
		fmt.Fprintf(buf, " 0x%0*x", 2*-op.length, len(data))
	}
	buf.WriteString(" 0x")
	buf.WriteString(hex.EncodeToString(data))
}

// *******************************************
// Opcode implementation functions start here.
// *******************************************

// opcodeDisabled is a common handler for disabled opcodes.  It returns an
// appropriate error indicating the opcode is disabled.  While it would
// ordinarily make more sense to detect if the script contains any disabled
// opcodes before executing in an initial parse step, the consensus rules
// dictate the script doesn't fail until the program counter passes over a
// disabled opcode (even when they appear in a branch that is not executed).
func opcodeDisabled(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
	return scriptError(ErrDisabledOpcode, str)
}

// opcodeReserved is a common handler for all reserved opcodes.  It returns an
// appropriate error indicating the opcode is reserved.
func opcodeReserved(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
	return scriptError(ErrReservedOpcode, str)
}

// opcodeInvalid is a common handler for all invalid opcodes.  It returns an
// appropriate error indicating the opcode is invalid.
func opcodeInvalid(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute invalid opcode %s", op.name)
	return scriptError(ErrReservedOpcode, str)
}

// opcodeFalse pushes an empty array to the data stack to represent false.
func opcodeFalse(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(nil)
	return nil
}

// opcodePushData is a common handler for the vast majority of opcodes that push
// raw data (bytes) to the data stack.
func opcodePushData(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(data)
	return nil
}

// opcode1Negate pushes -1, encoded as a number, to the data stack.
func opcode1Negate(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(-1))
	return nil
}

// opcodeN is a common handler for the small integer data push opcodes.  It
// pushes the numeric value the opcode represents (which will be from 1 to 16)
// onto the data stack.
func opcodeN(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(asSmallInt(op.value)))
	return nil
}

// opcodeNop is a common handler for the NOP family of opcodes.  As the name
// implies it generally does nothing, however, it will return an error when
// the flag to discourage use of NOPs is set for select opcodes.
func opcodeNop(op *opcode, data []byte, vm *Engine) error {
	if op.value != OP_NOP && vm.hasFlag(ScriptDiscourageUpgradableNops) {
		str := fmt.Sprintf("%v reserved for soft-fork upgrades", op.name)
		return scriptError(ErrDiscourageUpgradableNOPs, str)
	}
	return nil
}

// pushCondition pushes the conditional execution state for an OP_IF or
// OP_NOTIF.  In an executing branch the top of the data stack is consumed and
// compared against want; otherwise the new branch is marked to be skipped
// along with everything nested inside it.
func pushCondition(vm *Engine, want bool) error {
	condVal := OpCondSkip
	if vm.isBranchExecuting() {
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		condVal = OpCondFalse
		if ok == want {
			condVal = OpCondTrue
		}
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeIf treats the top item on the data stack as a boolean and removes it.
//
// An appropriate entry is added to the conditional stack depending on whether
// the boolean is true and whether this if is on an executing branch in order
// to allow proper execution of further opcodes depending on the conditional
// logic.  When the boolean is true, the first branch will be executed (unless
// this opcode is nested in a non-executed branch).
//
// <expression> if [statements] [else [statements]] endif
//
// Note that, unlike for all non-conditional opcodes, this is executed even when
// it is on a non-executing branch so proper nesting is maintained.
//
// Data stack transformation: [... bool] -> [...]
// Conditional stack transformation: [...] -> [... OpCondValue]
func opcodeIf(op *opcode, data []byte, vm *Engine) error {
	return pushCondition(vm, true)
}

// opcodeNotIf is the inverse of opcodeIf: the first branch executes when the
// popped value is false.
//
// Data stack transformation: [... bool] -> [...]
// Conditional stack transformation: [...] -> [... OpCondValue]
func opcodeNotIf(op *opcode, data []byte, vm *Engine) error {
	return pushCondition(vm, false)
}

// opcodeElse inverts conditional execution for other half of if/else/endif.
//
// An error is returned if there has not already been a matching OP_IF.
//
// Conditional stack transformation: [... OpCondValue] -> [... !OpCondValue]
func opcodeElse(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	// A skipped branch stays skipped.
	top := &vm.condStack[len(vm.condStack)-1]
	switch *top {
	case OpCondTrue:
		*top = OpCondFalse
	case OpCondFalse:
		*top = OpCondTrue
	}
	return nil
}

// opcodeEndif terminates a conditional block, removing the value from the
// conditional execution stack.
//
// An error is returned if there has not already been a matching OP_IF.
//
// Conditional stack transformation: [... OpCondValue] -> [...]
func opcodeEndif(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

// abstractVerify examines the top item on the data stack as a boolean value and
// verifies it evaluates to true.  An error is returned either when there is no
// item on the stack or when that item evaluates to false.  In the latter case
// where the verification fails specifically due to the top item evaluating
// to false, the returned error will use the passed error code.
func abstractVerify(op *opcode, vm *Engine, c ErrorCode) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}

	if !verified {
		str := fmt.Sprintf("%s failed", op.name)
		return scriptError(c, str)
	}
	return nil
}

// opcodeVerify examines the top item on the data stack as a boolean value and
// verifies it evaluates to true.  An error is returned if it does not.
func opcodeVerify(op *opcode, data []byte, vm *Engine) error {
	return abstractVerify(op, vm, ErrVerify)
}

// opcodeReturn returns an appropriate error since it is always an error to
// return early from a script.
func opcodeReturn(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrEarlyReturn, "script returned early")
}

// verifyLockTime is a helper function used to validate locktimes.
func verifyLockTime(txLockTime, threshold, lockTime int64) error {
	// The lockTimes in both the script and transaction must be of the same
	// type.
	if (txLockTime < threshold) != (lockTime < threshold) {
		str := fmt.Sprintf("mismatched locktime types -- tx locktime "+
			"%d, stack locktime %d", txLockTime, lockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	if lockTime > txLockTime {
		str := fmt.Sprintf("locktime requirement not satisfied -- "+
			"locktime is greater than the transaction locktime: "+
			"%d > %d", lockTime, txLockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	return nil
}

// peekLockTime reads the lock time operand on top of the stack without
// removing it.  Lock times use five byte numbers and must not be negative.
func peekLockTime(vm *Engine) (int64, error) {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return 0, err
	}
	n, err := MakeScriptNum(so, vm.dstack.verifyMinimalData,
		lockTimeScriptNumLen)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		str := fmt.Sprintf("negative lock time: %d", n)
		return 0, scriptError(ErrNegativeLockTime, str)
	}
	return int64(n), nil
}

// opcodeCheckLockTimeVerify compares the top item on the data stack to the
// LockTime field of the transaction containing the script signature
// validating if the transaction outputs are spendable yet.  If flag
// ScriptVerifyCheckLockTimeVerify is not set, the code continues as if OP_NOP2
// were executed.
func opcodeCheckLockTimeVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckLockTimeVerify) {
		return opcodeNop(op, data, vm)
	}

	lockTime, err := peekLockTime(vm)
	if err != nil {
		return err
	}

	err = verifyLockTime(int64(vm.tx.LockTime), LockTimeThreshold, lockTime)
	if err != nil {
		return err
	}

	// A final sequence number on the spending input lets the transaction
	// bypass its lock time entirely, so it can not satisfy the opcode.
	if vm.tx.TxIn[vm.txIdx].Sequence == wire.MaxTxInSequenceNum {
		return scriptError(ErrUnsatisfiedLockTime,
			"transaction input is finalized")
	}

	return nil
}

// opcodeCheckSequenceVerify compares the top item on the data stack to the
// relative lock time encoded in the sequence number of the input being
// spent.  If flag ScriptVerifyCheckSequenceVerify is not set, the code
// continues as if OP_NOP3 were executed.
func opcodeCheckSequenceVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckSequenceVerify) {
		return opcodeNop(op, data, vm)
	}

	sequence, err := peekLockTime(vm)
	if err != nil {
		return err
	}

	// An operand with the disable bit set behaves as a NOP.
	if sequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		return nil
	}

	if vm.tx.Version < 2 {
		str := fmt.Sprintf("invalid transaction version: %d",
			vm.tx.Version)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	txSequence := int64(vm.tx.TxIn[vm.txIdx].Sequence)
	if txSequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		str := fmt.Sprintf("transaction sequence has sequence "+
			"locktime disabled bit set: 0x%x", txSequence)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}

	// Only the type bit and the 16-bit value take part in the comparison.
	const lockTimeMask = int64(wire.SequenceLockTimeIsSeconds |
		wire.SequenceLockTimeMask)
	return verifyLockTime(txSequence&lockTimeMask,
		wire.SequenceLockTimeIsSeconds, sequence&lockTimeMask)
}

// opcodeToAltStack removes the top item from the main data stack and pushes it
// onto the alternate data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2 y3 x3]
func opcodeToAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)

	return nil
}

// opcodeFromAltStack removes the top item from the alternate data stack and
// pushes it onto the main data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 y3]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2]
func opcodeFromAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)

	return nil
}

// stackOps maps the fixed-count stack manipulation opcodes to the stack
// method and count that implement them.
var stackOps = map[byte]struct {
	fn func(*stack, int32) error
	n  int32
}{
	OP_DROP:  {(*stack).DropN, 1},
	OP_2DROP: {(*stack).DropN, 2},
	OP_DUP:   {(*stack).DupN, 1},
	OP_2DUP:  {(*stack).DupN, 2},
	OP_3DUP:  {(*stack).DupN, 3},
	OP_OVER:  {(*stack).OverN, 1},
	OP_2OVER: {(*stack).OverN, 2},
	OP_ROT:   {(*stack).RotN, 1},
	OP_2ROT:  {(*stack).RotN, 2},
	OP_SWAP:  {(*stack).SwapN, 1},
	OP_2SWAP: {(*stack).SwapN, 2},
	OP_NIP:   {(*stack).NipN, 1},
}

// opcodeStackN is the common handler for the stack manipulation opcodes with
// a fixed item count: DROP, DUP, OVER, ROT, SWAP, their 2 and 3 variants, and
// NIP.  See the stack methods for the exact transformations.
func opcodeStackN(op *opcode, data []byte, vm *Engine) error {
	sop, ok := stackOps[op.value]
	if !ok {
		str := fmt.Sprintf("no stack operation for %s", op.name)
		return scriptError(ErrInternal, str)
	}
	return sop.fn(&vm.dstack, sop.n)
}

// opcodeIfDup duplicates the top item of the stack if it is not zero.
//
// Stack transformation (x1==0): [... x1] -> [... x1]
// Stack transformation (x1!=0): [... x1] -> [... x1 x1]
func opcodeIfDup(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	// Push copy of data iff it isn't zero
	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}

	return nil
}

// opcodeDepth pushes the depth of the data stack prior to executing this
// opcode, encoded as a number, onto the data stack.
//
// Stack transformation: [...] -> [... <num of items on the stack>]
// Example with 2 items: [x1 x2] -> [x1 x2 2]
// Example with 3 items: [x1 x2 x3] -> [x1 x2 x3 3]
func opcodeDepth(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
	return nil
}

// opcodePick treats the top item on the data stack as an integer and duplicates
// the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [xn ... x2 x1 x0 xn]
func opcodePick(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	return vm.dstack.PickN(val.Int32())
}

// opcodeRoll treats the top item on the data stack as an integer and moves
// the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [... x2 x1 x0 xn]
func opcodeRoll(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	return vm.dstack.RollN(val.Int32())
}

// opcodeTuck inserts a duplicate of the top item of the data stack before the
// second-to-top item.
//
// Stack transformation: [... x1 x2] -> [... x2 x1 x2]
func opcodeTuck(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.Tuck()
}

// opcodeSize pushes the size of the top item of the data stack onto the data
// stack.
//
// Stack transformation: [... x1] -> [... x1 len(x1)]
func opcodeSize(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	vm.dstack.PushInt(scriptNum(len(so)))
	return nil
}

// opcodeEqual removes the top 2 items of the data stack, compares them as raw
// bytes, and pushes the result, encoded as a boolean, back to the stack.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeEqual(op *opcode, data []byte, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

// opcodeEqualVerify is a combination of opcodeEqual and opcodeVerify.
// Specifically, it removes the top 2 items of the data stack, compares them,
// and pushes the result, encoded as a boolean, back to the stack.  Then, it
// examines the top item on the data stack as a boolean value and verifies it
// evaluates to true.  An error is returned if it does not.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeEqualVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeEqual(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrEqualVerify)
	}
	return err
}

// boolNum converts a boolean into the script number 1 or 0.
func boolNum(v bool) scriptNum {
	if v {
		return 1
	}
	return 0
}

// unaryNumOps holds the single operand arithmetic opcodes.
var unaryNumOps = map[byte]func(m scriptNum) scriptNum{
	OP_1ADD:   func(m scriptNum) scriptNum { return m + 1 },
	OP_1SUB:   func(m scriptNum) scriptNum { return m - 1 },
	OP_NEGATE: func(m scriptNum) scriptNum { return -m },
	OP_ABS: func(m scriptNum) scriptNum {
		if m < 0 {
			return -m
		}
		return m
	},
	OP_NOT:       func(m scriptNum) scriptNum { return boolNum(m == 0) },
	OP_0NOTEQUAL: func(m scriptNum) scriptNum { return boolNum(m != 0) },
}

// opcodeUnaryNum treats the top item on the data stack as an integer,
// replaces it with the result of the opcode's operation.
//
// Stack transformation: [... x1] -> [... f(x1)]
func opcodeUnaryNum(op *opcode, data []byte, vm *Engine) error {
	fn, ok := unaryNumOps[op.value]
	if !ok {
		str := fmt.Sprintf("no unary operation for %s", op.name)
		return scriptError(ErrInternal, str)
	}

	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(fn(m))
	return nil
}

// binaryNumOps holds the two operand arithmetic and comparison opcodes.  a is
// the second-to-top item and b the top item.
var binaryNumOps = map[byte]func(a, b scriptNum) scriptNum{
	OP_ADD:                func(a, b scriptNum) scriptNum { return a + b },
	OP_SUB:                func(a, b scriptNum) scriptNum { return a - b },
	OP_BOOLAND:            func(a, b scriptNum) scriptNum { return boolNum(a != 0 && b != 0) },
	OP_BOOLOR:             func(a, b scriptNum) scriptNum { return boolNum(a != 0 || b != 0) },
	OP_NUMEQUAL:           func(a, b scriptNum) scriptNum { return boolNum(a == b) },
	OP_NUMEQUALVERIFY:     func(a, b scriptNum) scriptNum { return boolNum(a == b) },
	OP_NUMNOTEQUAL:        func(a, b scriptNum) scriptNum { return boolNum(a != b) },
	OP_LESSTHAN:           func(a, b scriptNum) scriptNum { return boolNum(a < b) },
	OP_GREATERTHAN:        func(a, b scriptNum) scriptNum { return boolNum(a > b) },
	OP_LESSTHANOREQUAL:    func(a, b scriptNum) scriptNum { return boolNum(a <= b) },
	OP_GREATERTHANOREQUAL: func(a, b scriptNum) scriptNum { return boolNum(a >= b) },
	OP_MIN: func(a, b scriptNum) scriptNum {
		if a < b {
			return a
		}
		return b
	},
	OP_MAX: func(a, b scriptNum) scriptNum {
		if a > b {
			return a
		}
		return b
	},
}

// opcodeBinaryNum treats the top two items on the data stack as integers and
// replaces them with the result of the opcode's operation.
//
// Stack transformation: [... x1 x2] -> [... f(x1, x2)]
func opcodeBinaryNum(op *opcode, data []byte, vm *Engine) error {
	fn, ok := binaryNumOps[op.value]
	if !ok {
		str := fmt.Sprintf("no binary operation for %s", op.name)
		return scriptError(ErrInternal, str)
	}

	b, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(fn(a, b))
	return nil
}

// opcodeNumEqualVerify is a combination of OP_NUMEQUAL and opcodeVerify.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeNumEqualVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeBinaryNum(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrNumEqualVerify)
	}
	return err
}

// opcodeWithin treats the top 3 items on the data stack as integers.  When the
// value to test is within the specified range (left inclusive), 1 is pushed
// onto the data stack.  Otherwise, 0 is pushed.
//
// Stack transformation: [... x1 min max] -> [... bool]
func opcodeWithin(op *opcode, data []byte, vm *Engine) error {
	maxVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	minVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(x >= minVal && x < maxVal)
	return nil
}

// hashOps maps each hashing opcode to the digest it computes.
var hashOps = map[byte]func([]byte) []byte{
	OP_RIPEMD160: func(b []byte) []byte {
		h := ripemd160.New()
		h.Write(b)
		return h.Sum(nil)
	},
	OP_SHA1: func(b []byte) []byte {
		h := sha1.Sum(b)
		return h[:]
	},
	OP_SHA256: func(b []byte) []byte {
		h := sha256.Sum256(b)
		return h[:]
	},
	OP_HASH160: evrutil.Hash160,
	OP_HASH256: chainhash.DoubleHashB,
}

// opcodeHash replaces the top item of the data stack with its digest under
// the opcode's hash function.
//
// Stack transformation: [... x1] -> [... hash(x1)]
func opcodeHash(op *opcode, data []byte, vm *Engine) error {
	hashFn, ok := hashOps[op.value]
	if !ok {
		str := fmt.Sprintf("no hash function for %s", op.name)
		return scriptError(ErrInternal, str)
	}

	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushByteArray(hashFn(buf))
	return nil
}

// opcodeCodeSeparator stores the current script offset as the most recently
// seen OP_CODESEPARATOR which is used during signature checking.
//
// This opcode does not change the contents of the data stack.
func opcodeCodeSeparator(op *opcode, data []byte, vm *Engine) error {
	vm.lastCodeSep = int(vm.tokenizer.ByteIndex())
	return nil
}

// splitSignature separates a script signature into its DER encoding and
// trailing hash type byte.
func splitSignature(fullSig []byte) ([]byte, SigHashType) {
	return fullSig[:len(fullSig)-1], SigHashType(fullSig[len(fullSig)-1])
}

// parseSignature decodes a DER signature, strictly when any of the encoding
// flags are set.
func (vm *Engine) parseSignature(sigBytes []byte) (*ecdsa.Signature, error) {
	if vm.hasFlag(ScriptVerifyStrictEncoding) ||
		vm.hasFlag(ScriptVerifyDERSignatures) {

		return ecdsa.ParseDERSignature(sigBytes)
	}
	return ecdsa.ParseSignature(sigBytes)
}

// opcodeCheckSig treats the top 2 items on the stack as a public key and a
// signature and replaces them with a bool which indicates if the signature was
// successfully verified.
//
// The process of verifying a signature requires calculating a signature hash in
// the same way the transaction signer did.  It involves hashing portions of the
// transaction based on the hash type byte (which is the final byte of the
// signature) and the portion of the script starting from the most recent
// OP_CODESEPARATOR (or the beginning of the script if there are none) to the
// end of the script (with any other OP_CODESEPARATORs removed).  Once this
// "script hash" is calculated, the signature is checked using standard
// cryptographic methods against the provided public key.
//
// Stack transformation: [... signature pubkey] -> [... bool]
func opcodeCheckSig(op *opcode, data []byte, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	fullSigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	// At least one byte is needed for the hash type.  The DER portion is
	// checked by the encoding rules and the parser.
	if len(fullSigBytes) < 1 {
		vm.dstack.PushBool(false)
		return nil
	}

	sigBytes, hashType := splitSignature(fullSigBytes)
	if err := vm.checkHashTypeEncoding(hashType); err != nil {
		return err
	}
	if err := vm.checkSignatureEncoding(sigBytes); err != nil {
		return err
	}
	if err := vm.checkPubKeyEncoding(pkBytes); err != nil {
		return err
	}

	// A signature can not sign itself, so it is removed from the script
	// being hashed.
	subScript := removeOpcodeByData(vm.subScript(), fullSigBytes)
	hash, err := calcSignatureHash(subScript, hashType, &vm.tx, vm.txIdx)
	if err != nil {
		return err
	}

	valid := false
	pubKey, pkErr := btcec.ParsePubKey(pkBytes)
	signature, sigErr := vm.parseSignature(sigBytes)
	if pkErr == nil && sigErr == nil {
		valid = vm.verifySignature(signature, hash, sigBytes, pkBytes,
			pubKey)
	}

	if !valid && vm.hasFlag(ScriptVerifyNullFail) && len(sigBytes) > 0 {
		str := "signature not empty on failed checksig"
		return scriptError(ErrNullFail, str)
	}

	vm.dstack.PushBool(valid)
	return nil
}

// opcodeCheckSigVerify is a combination of opcodeCheckSig and opcodeVerify.
//
// Stack transformation: signature pubkey] -> [... bool] -> [...]
func opcodeCheckSigVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeCheckSig(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckSigVerify)
	}
	return err
}

// parsedSigInfo houses a raw signature along with its parsed form and a flag
// for whether or not it has already been parsed.  It is used to prevent parsing
// the same signature multiple times when attempting to match up signatures and
// public keys.
type parsedSigInfo struct {
	signature       []byte
	parsedSignature *ecdsa.Signature
	parsed          bool
}

// popMultiSigCount pops a key or signature count for OP_CHECKMULTISIG and
// bounds it to [0, max].
func popMultiSigCount(vm *Engine, limit int, code ErrorCode, what string) (int, error) {
	num, err := vm.dstack.PopInt()
	if err != nil {
		return 0, err
	}
	count := int(num.Int32())
	if count < 0 || count > limit {
		str := fmt.Sprintf("number of %s %d is outside [0, %d]", what,
			count, limit)
		return 0, scriptError(code, str)
	}
	return count, nil
}

// opcodeCheckMultiSig treats the top item on the stack as an integer number of
// public keys, followed by that many entries as raw data representing the public
// keys, followed by the integer number of signatures, followed by that many
// entries as raw data representing the signatures.
//
// Due to a bug in the original Satoshi client implementation, an additional
// dummy argument is also required by the consensus rules, although it is not
// used.  The dummy value SHOULD be an OP_0, although that is not required by
// the consensus rules.  When the ScriptStrictMultiSig flag is set, it must be
// OP_0.
//
// All of the aforementioned stack items are replaced with a bool which
// indicates if the requisite number of signatures were successfully verified.
//
// Signatures are matched against keys in order: each signature must verify
// against a key that comes after the key matched by the previous signature.
// A signature that matches no remaining key fails the whole opcode.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool]
func opcodeCheckMultiSig(op *opcode, data []byte, vm *Engine) error {
	numPubKeys, err := popMultiSigCount(vm, MaxPubKeysPerMultiSig,
		ErrInvalidPubKeyCount, "pubkeys")
	if err != nil {
		return err
	}

	vm.numOps += numPubKeys
	if vm.numOps > MaxOpsPerScript {
		str := fmt.Sprintf("exceeded max operation limit of %d",
			MaxOpsPerScript)
		return scriptError(ErrTooManyOperations, str)
	}

	pubKeys := make([][]byte, 0, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pubKey, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys = append(pubKeys, pubKey)
	}

	numSignatures, err := popMultiSigCount(vm, numPubKeys,
		ErrInvalidSignatureCount, "signatures")
	if err != nil {
		return err
	}

	signatures := make([]*parsedSigInfo, 0, numSignatures)
	for i := 0; i < numSignatures; i++ {
		signature, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		signatures = append(signatures, &parsedSigInfo{signature: signature})
	}

	// The extra value consumed by the historical off-by-one.
	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if vm.hasFlag(ScriptStrictMultiSig) && len(dummy) != 0 {
		str := fmt.Sprintf("multisig dummy argument has length %d "+
			"instead of 0", len(dummy))
		return scriptError(ErrSigNullDummy, str)
	}

	// None of the signatures can sign themselves.
	script := vm.subScript()
	for _, sigInfo := range signatures {
		script = removeOpcodeByData(script, sigInfo.signature)
	}

	// Both slices were popped from the top of the stack, so index 0 is the
	// last key and the last signature of the script.  Walking them together
	// enforces the ordering rule.
	success := true
	keysLeft := numPubKeys + 1
	pubKeyIdx := -1
	signatureIdx := 0
	for numSignatures > 0 {
		pubKeyIdx++
		keysLeft--

		// More signatures than keys left means some signature can not
		// be matched.
		if numSignatures > keysLeft {
			success = false
			break
		}

		sigInfo := signatures[signatureIdx]
		pubKey := pubKeys[pubKeyIdx]

		// Empty signatures never match and move on to the next key.
		rawSig := sigInfo.signature
		if len(rawSig) == 0 {
			continue
		}
		signature, hashType := splitSignature(rawSig)

		// Encoding is checked and the signature parsed only once, no
		// matter how many keys it is tried against.
		if !sigInfo.parsed {
			if err := vm.checkHashTypeEncoding(hashType); err != nil {
				return err
			}
			if err := vm.checkSignatureEncoding(signature); err != nil {
				return err
			}

			sigInfo.parsed = true
			parsedSig, err := vm.parseSignature(signature)
			if err != nil {
				continue
			}
			sigInfo.parsedSignature = parsedSig
		} else if sigInfo.parsedSignature == nil {
			continue
		}

		if err := vm.checkPubKeyEncoding(pubKey); err != nil {
			return err
		}
		parsedPubKey, err := btcec.ParsePubKey(pubKey)
		if err != nil {
			continue
		}

		hash, err := calcSignatureHash(script, hashType, &vm.tx, vm.txIdx)
		if err != nil {
			return err
		}

		if vm.verifySignature(sigInfo.parsedSignature, hash, signature,
			pubKey, parsedPubKey) {

			signatureIdx++
			numSignatures--
		}
	}

	if !success && vm.hasFlag(ScriptVerifyNullFail) {
		for _, sig := range signatures {
			if len(sig.signature) > 0 {
				str := "not all signatures empty on failed " +
					"checkmultisig"
				return scriptError(ErrNullFail, str)
			}
		}
	}

	vm.dstack.PushBool(success)
	return nil
}

// opcodeCheckMultiSigVerify is a combination of opcodeCheckMultiSig and
// opcodeVerify.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool] -> [...]
func opcodeCheckMultiSigVerify(op *opcode, data []byte, vm *Engine) error {
	err := opcodeCheckMultiSig(op, data, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckMultiSigVerify)
	}
	return err
}

// opcodeEvrAsset ends execution of the current script.  The bytes that
// follow are an asset payload and are neither parsed nor run.
//
// This opcode does not change the contents of the data stack.
func opcodeEvrAsset(op *opcode, data []byte, vm *Engine) error {
	vm.tokenizer.offset = int32(len(vm.tokenizer.script))
	return nil
}
