// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// DER layout of a signature:
//
//	0x30 <len> 0x02 <len R> <R> 0x02 <len S> <S>
//
// R and S are big-endian, minimally encoded, and non-negative, so a leading
// zero byte is only allowed when the next byte has its high bit set.
const (
	asn1SequenceID = 0x30
	asn1IntegerID  = 0x02

	// minSigLen is the length with one byte R and S values and maxSigLen
	// the length with 33 byte values.
	minSigLen = 8
	maxSigLen = 72

	dataLenOffset = 1
	rTypeOffset   = 2
	rLenOffset    = 3
	rOffset       = 4
)

// checkHashTypeEncoding returns whether or not the passed hashtype adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkHashTypeEncoding(hashType SigHashType) error {
	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	sigHashType := hashType & ^SigHashAnyOneCanPay
	if sigHashType < SigHashAll || sigHashType > SigHashSingle {
		str := fmt.Sprintf("invalid hash type 0x%x", uint32(hashType))
		return scriptError(ErrInvalidSigHashType, str)
	}
	return nil
}

// checkPubKeyEncoding returns whether or not the passed public key adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) error {
	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	switch {
	case len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03):
		return nil
	case len(pubKey) == 65 && pubKey[0] == 0x04:
		return nil
	}
	return scriptError(ErrPubKeyType, "unsupported public key type")
}

// checkDERInteger validates one DER integer body.  The codes are those for R
// or S depending on which is being checked.
func checkDERInteger(name string, v []byte, zeroLen, negative,
	padding ErrorCode) error {

	switch {
	case len(v) == 0:
		str := fmt.Sprintf("malformed signature: %s length is zero", name)
		return scriptError(zeroLen, str)

	case v[0]&0x80 != 0:
		str := fmt.Sprintf("malformed signature: %s is negative", name)
		return scriptError(negative, str)

	case len(v) > 1 && v[0] == 0x00 && v[1]&0x80 == 0:
		str := fmt.Sprintf("malformed signature: %s value has too much "+
			"padding", name)
		return scriptError(padding, str)
	}
	return nil
}

// isHighS reports whether the big-endian S value is above half the group
// order.  Values that do not even fit the order count as high.
func isHighS(s []byte) bool {
	for len(s) > 0 && s[0] == 0x00 {
		s = s[1:]
	}
	if len(s) > 32 {
		return true
	}
	var sValue secp256k1.ModNScalar
	if overflow := sValue.SetByteSlice(s); overflow {
		return true
	}
	return sValue.IsOverHalfOrder()
}

// checkSignatureEncoding returns whether or not the passed signature adheres to
// the strict encoding requirements if enabled.  The hash type byte must
// already be stripped.
func (vm *Engine) checkSignatureEncoding(sig []byte) error {
	if !vm.hasFlag(ScriptVerifyDERSignatures) &&
		!vm.hasFlag(ScriptVerifyLowS) &&
		!vm.hasFlag(ScriptVerifyStrictEncoding) {

		return nil
	}

	sigLen := len(sig)
	if sigLen < minSigLen {
		str := fmt.Sprintf("malformed signature: too short: %d < %d",
			sigLen, minSigLen)
		return scriptError(ErrSigTooShort, str)
	}
	if sigLen > maxSigLen {
		str := fmt.Sprintf("malformed signature: too long: %d > %d",
			sigLen, maxSigLen)
		return scriptError(ErrSigTooLong, str)
	}
	if sig[0] != asn1SequenceID {
		str := fmt.Sprintf("malformed signature: format has wrong "+
			"type: %#x", sig[0])
		return scriptError(ErrSigInvalidSeqID, str)
	}
	if int(sig[dataLenOffset]) != sigLen-2 {
		str := fmt.Sprintf("malformed signature: bad length: %d != %d",
			sig[dataLenOffset], sigLen-2)
		return scriptError(ErrSigInvalidDataLen, str)
	}

	// Locate S from the length of R and make sure the pieces account for
	// every byte.
	rLen := int(sig[rLenOffset])
	sTypeOffset := rOffset + rLen
	sLenOffset := sTypeOffset + 1
	if sTypeOffset >= sigLen {
		str := "malformed signature: S type indicator missing"
		return scriptError(ErrSigMissingSTypeID, str)
	}
	if sLenOffset >= sigLen {
		str := "malformed signature: S length missing"
		return scriptError(ErrSigMissingSLen, str)
	}
	sOffset := sLenOffset + 1
	sLen := int(sig[sLenOffset])
	if sOffset+sLen != sigLen {
		str := "malformed signature: invalid S length"
		return scriptError(ErrSigInvalidSLen, str)
	}

	if sig[rTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: R integer marker: "+
			"%#x != %#x", sig[rTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidRIntID, str)
	}
	err := checkDERInteger("R", sig[rOffset:sTypeOffset], ErrSigZeroRLen,
		ErrSigNegativeR, ErrSigTooMuchRPadding)
	if err != nil {
		return err
	}

	if sig[sTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: S integer marker: "+
			"%#x != %#x", sig[sTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidSIntID, str)
	}
	sBytes := sig[sOffset:]
	err = checkDERInteger("S", sBytes, ErrSigZeroSLen, ErrSigNegativeS,
		ErrSigTooMuchSPadding)
	if err != nil {
		return err
	}

	// S must not exceed half the group order.
	if vm.hasFlag(ScriptVerifyLowS) && isHighS(sBytes) {
		return scriptError(ErrSigHighS, "signature is not canonical due "+
			"to unnecessarily high S value")
	}

	return nil
}
