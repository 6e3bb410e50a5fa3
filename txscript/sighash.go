// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/evrmore/evrlib/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	sigHashMask = 0x1f
)

// String returns the hash type in the form used by disassemblers, for
// example "ALL|ANYONECANPAY".
func (t SigHashType) String() string {
	var base string
	switch t & sigHashMask {
	case SigHashAll:
		base = "ALL"
	case SigHashNone:
		base = "NONE"
	case SigHashSingle:
		base = "SINGLE"
	default:
		return fmt.Sprintf("0x%x", uint32(t))
	}
	if t&SigHashAnyOneCanPay != 0 {
		base += "|ANYONECANPAY"
	}
	return base
}

// sigHashSingleBug is the digest produced for SigHashSingle when the input
// being signed has no matching output.  It is a little-endian 1.
var sigHashSingleBug = chainhash.Hash{0x01}

// putVarInt serializes the provided number to a variable-length integer and
// returns the number of bytes of the encoded value.  The target slice must be
// at least wire.VarIntSerializeSize(val) bytes long.
func putVarInt(buf []byte, val uint64) int {
	if val < 0xfd {
		buf[0] = uint8(val)
		return 1
	}

	if val <= math.MaxUint16 {
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(val))
		return 3
	}

	if val <= math.MaxUint32 {
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(val))
		return 5
	}

	buf[0] = 0xff
	binary.LittleEndian.PutUint64(buf[1:], val)
	return 9
}

// putUint32LE writes the provided uint32 as little endian to the provided slice
// and returns 4 to signify the number of bytes written.
func putUint32LE(buf []byte, val uint32) int {
	binary.LittleEndian.PutUint32(buf, val)
	return 4
}

// putUint64LE writes the provided uint64 as little endian to the provided slice
// and returns 8 to signify the number of bytes written.
func putUint64LE(buf []byte, val uint64) int {
	binary.LittleEndian.PutUint64(buf, val)
	return 8
}

// varBytesSize returns the size of b serialized with a varint length prefix.
func varBytesSize(b []byte) int {
	return wire.VarIntSerializeSize(uint64(len(b))) + len(b)
}

// sigHashSerializeSize returns the number of bytes the modified transaction
// committed to by the signature hash will take.
func sigHashSerializeSize(hashType SigHashType, txIns []*wire.TxIn,
	txOuts []*wire.TxOut, signTxInIdx int, signScript []byte) int {

	// 1) 4 bytes version
	// 2) number of inputs varint
	// 3) per input:
	//    a) 32 bytes prevout hash
	//    b) 4 bytes prevout index
	//    c) script varint (1 byte if not input being signed)
	//    d) N bytes script (0 bytes if not input being signed)
	//    e) 4 bytes sequence
	// 4) number of outputs varint
	// 5) per output:
	//    a) 8 bytes amount
	//    b) pkscript varint
	//    c) N bytes pkscript
	// 6) 4 bytes lock time
	// 7) 4 bytes hash type
	numTxIns := len(txIns)
	size := 4 + wire.VarIntSerializeSize(uint64(numTxIns)) +
		numTxIns*(chainhash.HashSize+4+1+4) - 1 + varBytesSize(signScript) +
		wire.VarIntSerializeSize(uint64(len(txOuts))) +
		len(txOuts)*8 + 4 + 4
	for txOutIdx, txOut := range txOuts {
		pkScript := txOut.PkScript
		if hashType&sigHashMask == SigHashSingle && txOutIdx != signTxInIdx {
			pkScript = nil
		}
		size += varBytesSize(pkScript)
	}
	return size
}

// CalcSignatureHash computes the signature hash for the specified input of the
// target transaction observing the desired signature hash type.  The script is
// the public key script, or redeem script for pay-to-script-hash, of the
// output being spent.
//
// When hashType is SigHashSingle and idx has no corresponding output, the
// result is the 32-byte little-endian encoding of 1 rather than an error.
func CalcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx,
	idx int) ([]byte, error) {

	if err := checkScriptParses(script); err != nil {
		return nil, err
	}
	return calcSignatureHash(script, hashType, tx, idx)
}

// calcSignatureHash computes the signature hash for the specified input of the
// target transaction observing the desired signature hash type.  The script
// must already be known to parse.
//
// The transaction is never copied.  The modified serialization is written
// straight into a buffer sized up front and then double hashed.
func calcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx,
	idx int) ([]byte, error) {

	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	// The SigHashSingle signature type signs only the corresponding input
	// and output (the output with the same index number as the input).
	//
	// Since transactions can have more inputs than outputs, this means it
	// is improper to use SigHashSingle on input indices that don't have a
	// corresponding output.  Consensus commits to the constant instead.
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		hash := sigHashSingleBug
		return hash[:], nil
	}

	// Remove all instances of OP_CODESEPARATOR from the script.
	signScript := removeOpcodeRaw(script, OP_CODESEPARATOR)

	// The SigHashAnyOneCanPay flag specifies that the signature will only
	// commit to the input being signed.  Otherwise, it will commit to all
	// inputs.
	txIns := tx.TxIn
	signTxInIdx := idx
	if hashType&SigHashAnyOneCanPay != 0 {
		txIns = tx.TxIn[idx : idx+1]
		signTxInIdx = 0
	}

	// SigHashNone commits to no outputs and SigHashSingle to the outputs
	// up to and including the one matching the input being signed, with
	// the earlier ones blanked.  Anything else, including undefined hash
	// types, commits to every output.
	txOuts := tx.TxOut
	switch hashType & sigHashMask {
	case SigHashNone:
		txOuts = nil
	case SigHashSingle:
		txOuts = tx.TxOut[:idx+1]
	}

	size := sigHashSerializeSize(hashType, txIns, txOuts, idx, signScript)
	buf := make([]byte, size)

	offset := putUint32LE(buf, uint32(tx.Version))

	offset += putVarInt(buf[offset:], uint64(len(txIns)))
	for txInIdx, txIn := range txIns {
		prevOut := &txIn.PreviousOutPoint
		offset += copy(buf[offset:], prevOut.Hash[:])
		offset += putUint32LE(buf[offset:], prevOut.Index)

		// Only the input being signed carries a script.
		var sigScript []byte
		if txInIdx == signTxInIdx {
			sigScript = signScript
		}
		offset += putVarInt(buf[offset:], uint64(len(sigScript)))
		offset += copy(buf[offset:], sigScript)

		// SigHashNone and SigHashSingle let other inputs update their
		// sequence freely.
		sequence := txIn.Sequence
		if (hashType&sigHashMask == SigHashNone ||
			hashType&sigHashMask == SigHashSingle) &&
			txInIdx != signTxInIdx {

			sequence = 0
		}
		offset += putUint32LE(buf[offset:], sequence)
	}

	offset += putVarInt(buf[offset:], uint64(len(txOuts)))
	for txOutIdx, txOut := range txOuts {
		value := txOut.Value
		pkScript := txOut.PkScript
		if hashType&sigHashMask == SigHashSingle && txOutIdx != idx {
			value = -1
			pkScript = nil
		}
		offset += putUint64LE(buf[offset:], uint64(value))
		offset += putVarInt(buf[offset:], uint64(len(pkScript)))
		offset += copy(buf[offset:], pkScript)
	}

	offset += putUint32LE(buf[offset:], tx.LockTime)
	putUint32LE(buf[offset:], uint32(hashType))

	return chainhash.DoubleHashB(buf), nil
}
