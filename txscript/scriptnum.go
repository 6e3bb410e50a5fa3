// Copyright (c) 2015-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math"
)

const (
	// maxInt32 is the maximum value of a signed 32-bit integer.
	maxInt32 = math.MaxInt32

	// minInt32 is the minimum value of a signed 32-bit integer.
	minInt32 = math.MinInt32

	// maxScriptNumLen is the maximum number of bytes data being interpreted
	// as an integer may be for the majority of op codes.
	maxScriptNumLen = 4

	// lockTimeScriptNumLen is the number of bytes accepted for the lock
	// time operands of OP_CHECKLOCKTIMEVERIFY and OP_CHECKSEQUENCEVERIFY.
	// Five bytes covers the full unsigned 32-bit range, which four signed
	// bytes can not.
	lockTimeScriptNumLen = 5
)

// scriptNum represents a numeric value used in the scripting engine.
//
// Values on the stack are little-endian sign-magnitude byte strings: the
// high bit of the final byte is the sign.  Numeric opcodes read at most
// maxScriptNumLen bytes, so their inputs lie in [-2^31+1, 2^31-1].  The
// results of arithmetic may exceed that range and are held as int64 until
// they are pushed back, where they remain valid as data but are rejected if
// later consumed as a number.
//
// Zero is the empty byte string.  The byte strings 0x80 and 0x0080 and so on
// are "negative zero"; they decode to 0 when minimal encoding is not
// enforced.
type scriptNum int64

// checkMinimalDataEncoding returns whether or not the passed byte array
// adheres to the minimal encoding requirements.
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// The most significant byte, ignoring the sign bit, must be non-zero.
	// The one exception is when a zero byte is needed to hold the sign bit
	// that would otherwise collide with the magnitude, e.g. +128 as 0x8000.
	// This test also rejects negative zero (0x80).
	if v[len(v)-1]&0x7f == 0 {
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			str := fmt.Sprintf("numeric value encoded as %x is "+
				"not minimally encoded", v)
			return scriptError(ErrMinimalData, str)
		}
	}

	return nil
}

// Bytes returns the number serialized as a little endian with a sign bit.
//
// Example encodings:
//
//	   127 -> [0x7f]
//	  -127 -> [0xff]
//	   128 -> [0x80 0x00]
//	  -128 -> [0x80 0x80]
//	   129 -> [0x81 0x00]
//	  -129 -> [0x81 0x80]
//	   256 -> [0x00 0x01]
//	  -256 -> [0x00 0x81]
//	 32767 -> [0xff 0x7f]
//	-32767 -> [0xff 0xff]
//	 32768 -> [0x00 0x80 0x00]
//	-32768 -> [0x00 0x80 0x80]
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	// Work on the magnitude and fold the sign back in at the end.
	negative := n < 0
	magnitude := uint64(n)
	if negative {
		magnitude = uint64(-n)
	}

	result := make([]byte, 0, 9)
	for magnitude > 0 {
		result = append(result, byte(magnitude&0xff))
		magnitude >>= 8
	}

	// An extra byte carries the sign when the top bit of the magnitude is
	// already in use.
	last := len(result) - 1
	switch {
	case result[last]&0x80 != 0 && negative:
		result = append(result, 0x80)
	case result[last]&0x80 != 0:
		result = append(result, 0x00)
	case negative:
		result[last] |= 0x80
	}

	return result
}

// Int32 returns the script number clamped to a valid int32.  Values beyond
// the int32 range saturate at the respective bound.
//
// Arithmetic results are kept as int64 so overflow is observable; this is
// what callers use when a value must fit a machine int, such as a stack
// index.
func (n scriptNum) Int32() int32 {
	switch {
	case n > maxInt32:
		return maxInt32
	case n < minInt32:
		return minInt32
	}
	return int32(n)
}

// MakeScriptNum interprets the passed serialized bytes as an encoded integer
// and returns the result as a script number.
//
// An ErrNumberTooBig script error is returned when v is longer than
// scriptNumLen bytes.  When requireMinimal is set an ErrMinimalData error is
// returned for any encoding that is not the shortest possible one.
//
// scriptNumLen is maxScriptNumLen for arithmetic and lockTimeScriptNumLen
// for the lock time opcodes.  It must not exceed 8, the largest length an
// int64 can hold.
func MakeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v),
			scriptNumLen)
		return 0, scriptError(ErrNumberTooBig, str)
	}

	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, b := range v {
		result |= int64(b) << uint8(8*i)
	}

	// Strip the sign bit from the top byte and negate when it was set.
	signBit := int64(0x80) << uint8(8*(len(v)-1))
	if v[len(v)-1]&0x80 != 0 {
		return scriptNum(-(result &^ signBit)), nil
	}

	return scriptNum(result), nil
}
