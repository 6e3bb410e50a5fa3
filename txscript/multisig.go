// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/evrmore/evrlib/chaincfg"
	"github.com/evrmore/evrlib/evrutil"
)

// KeySignature pairs a serialized public key with a signature made by it.
// Signature includes the trailing hash type byte.
type KeySignature struct {
	PubKey    []byte
	Signature []byte
}

// matchRedeemKey returns the entry of keys that serializes pub, in either
// compressed or uncompressed form, or nil.
func matchRedeemKey(keys [][]byte, pub *btcec.PublicKey) []byte {
	compressed := pub.SerializeCompressed()
	uncompressed := pub.SerializeUncompressed()
	for _, key := range keys {
		if bytes.Equal(key, compressed) || bytes.Equal(key, uncompressed) {
			return key
		}
	}
	return nil
}

// MultiSigAddress returns the pay-to-script-hash address of redeemScript on
// the given network.  Redeem scripts larger than MaxScriptElementSize can
// never be pushed by a spender and are rejected.
func MultiSigAddress(redeemScript []byte,
	net *chaincfg.Params) (*evrutil.AddressScriptHash, error) {

	if len(redeemScript) > MaxScriptElementSize {
		str := fmt.Sprintf("redeem script of %d bytes exceeds the "+
			"maximum push size of %d", len(redeemScript),
			MaxScriptElementSize)
		return nil, scriptError(ErrElementTooBig, str)
	}
	return evrutil.NewAddressScriptHash(redeemScript, net)
}

// AssembleMultiSigScript builds the signature script spending a P2SH
// multisig output with the given redeem script.  Signatures may be supplied
// in any order.  They are placed in the order their keys appear in the
// redeem script, since OP_CHECKMULTISIG only matches keys moving forward,
// and at most the required number is used.
//
// When fewer signatures than required are available, an error with code
// ErrNotEnoughSignatures is returned unless partial is set, in which case
// the missing slots are filled with OP_0 so more signatures can be merged
// in later.  The script is of the form:
//
//	OP_0 <sig> ... <sig> <redeemScript>
func AssembleMultiSigScript(redeemScript []byte, sigs []KeySignature,
	partial bool) ([]byte, error) {

	details := extractMultisigScriptDetails(redeemScript, true)
	if !details.valid {
		return nil, scriptError(ErrNotMultisigScript,
			"redeem script is not a standard multisig script")
	}

	// Index the signatures by key position.  A key signed more than once
	// keeps its first signature.
	byKey := make([][]byte, len(details.pubKeys))
	for _, ks := range sigs {
		pos := -1
		for i, key := range details.pubKeys {
			if bytes.Equal(key, ks.PubKey) {
				pos = i
				break
			}
		}
		if pos < 0 {
			str := fmt.Sprintf("signature for public key %x which is "+
				"not part of the redeem script", ks.PubKey)
			return nil, scriptError(ErrUnknownSignatureKey, str)
		}
		if byKey[pos] == nil && len(ks.Signature) > 0 {
			byKey[pos] = ks.Signature
		}
	}

	ordered := make([][]byte, 0, details.requiredSigs)
	for _, sig := range byKey {
		if sig == nil {
			continue
		}
		ordered = append(ordered, sig)
		if len(ordered) == details.requiredSigs {
			break
		}
	}

	if len(ordered) < details.requiredSigs && !partial {
		str := fmt.Sprintf("have %d of %d required signatures",
			len(ordered), details.requiredSigs)
		return nil, scriptError(ErrNotEnoughSignatures, str)
	}

	// The leading OP_0 is consumed by the extra pop of OP_CHECKMULTISIG.
	builder := NewScriptBuilder().AddOp(OP_0)
	for _, sig := range ordered {
		builder.AddData(sig)
	}
	for i := len(ordered); i < details.requiredSigs; i++ {
		builder.AddOp(OP_0)
	}
	builder.AddData(redeemScript)

	return builder.Script()
}
