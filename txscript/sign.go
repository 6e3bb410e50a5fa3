// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/evrmore/evrlib/evrutil"
	"github.com/evrmore/evrlib/wire"
)

// RawTxInSignature returns the serialized ECDSA signature for the input idx of
// the given transaction, with hashType appended to it.  subScript is the
// script of the output being spent, or the redeem script for P2SH.
func RawTxInSignature(tx *wire.MsgTx, idx int, subScript []byte,
	hashType SigHashType, key *btcec.PrivateKey) ([]byte, error) {

	// Only the low byte of the hash type is appended to the signature.
	if hashType > 0xff {
		str := fmt.Sprintf("hash type 0x%x does not fit in a byte",
			uint32(hashType))
		return nil, scriptError(ErrInvalidSigHashType, str)
	}

	hash, err := CalcSignatureHash(subScript, hashType, tx, idx)
	if err != nil {
		return nil, err
	}
	signature, err := evrutil.SignHash(key, hash)
	if err != nil {
		return nil, err
	}

	return append(signature.Serialize(), byte(hashType)), nil
}

// SignatureScript creates an input signature script for tx to spend coins sent
// from a previous output to the owner of privKey.  tx must include all
// transaction inputs and outputs, however txin scripts are allowed to be filled
// or empty.  The returned script is calculated to be used as the idx'th txin
// sigscript for tx.  subscript is the PkScript of the previous output being used
// as the idx'th input.  privKey is serialized in either a compressed or
// uncompressed format based on compress.  This format must match the same format
// used to generate the payment address, or the script validation will fail.
func SignatureScript(tx *wire.MsgTx, idx int, subscript []byte,
	hashType SigHashType, privKey *btcec.PrivateKey, compress bool) ([]byte, error) {

	sig, err := RawTxInSignature(tx, idx, subscript, hashType, privKey)
	if err != nil {
		return nil, err
	}

	pkData := evrutil.PubKeyBytes(privKey.PubKey(), compress)

	return NewScriptBuilder().AddData(sig).AddData(pkData).Script()
}

// SignMultiSigInput produces one signer's share for spending a P2SH multisig
// output.  The key must belong to one of the public keys listed in the redeem
// script, in either of its serialized forms.
func SignMultiSigInput(tx *wire.MsgTx, idx int, redeemScript []byte,
	hashType SigHashType, key *btcec.PrivateKey) (KeySignature, error) {

	details := extractMultisigScriptDetails(redeemScript, true)
	if !details.valid {
		return KeySignature{}, scriptError(ErrNotMultisigScript,
			"redeem script is not a standard multisig script")
	}

	if key == nil || key.Key.IsZero() {
		return KeySignature{}, evrutil.ErrInvalidPrivateKey
	}
	pubKey := matchRedeemKey(details.pubKeys, key.PubKey())
	if pubKey == nil {
		return KeySignature{}, scriptError(ErrUnknownSignatureKey,
			"private key does not match any key of the redeem script")
	}

	sig, err := RawTxInSignature(tx, idx, redeemScript, hashType, key)
	if err != nil {
		return KeySignature{}, err
	}
	return KeySignature{PubKey: pubKey, Signature: sig}, nil
}
