// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package evrutil

import (
	"bytes"
	"encoding/base64"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/evrmore/evrlib/chaincfg"
	"github.com/evrmore/evrlib/wire"
)

// compactSigLen is the size of a recoverable compact signature: a recovery
// header byte followed by 32-byte R and S values.
const compactSigLen = 65

// ErrMalformedSignature is returned when a signed message signature is not
// base64 or does not decode to a compact signature.
var ErrMalformedSignature = errors.New("malformed message signature")

// MessageHash returns the digest that is signed for msg on net: the double
// SHA256 of the network's message magic and msg, each prefixed with its
// varint length.
func MessageHash(msg string, net *chaincfg.Params) []byte {
	var buf bytes.Buffer
	buf.Grow(wire.VarIntSerializeSize(uint64(len(net.MessageMagic))) +
		len(net.MessageMagic) +
		wire.VarIntSerializeSize(uint64(len(msg))) + len(msg))

	// Writes to a bytes.Buffer only fail when it cannot grow, which panics
	// instead of returning.
	_ = wire.WriteVarBytes(&buf, 0, []byte(net.MessageMagic))
	_ = wire.WriteVarBytes(&buf, 0, []byte(msg))
	return chainhash.DoubleHashB(buf.Bytes())
}

// SignMessage signs msg with priv and returns the base64 encoded compact
// signature.  The compressed flag selects which of the key's two addresses
// the signature will verify against.
func SignMessage(priv *btcec.PrivateKey, compressed bool, msg string,
	net *chaincfg.Params) (string, error) {

	if net == nil {
		return "", chaincfg.ErrUnknownNet
	}
	if priv == nil || priv.Key.IsZero() {
		return "", ErrInvalidPrivateKey
	}

	sig := ecdsa.SignCompact(priv, MessageHash(msg, net), compressed)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyMessage reports whether sig is a signature of msg by the key behind
// the P2PKH address addr.  A signature that decodes but does not recover to
// addr returns false with a nil error.  An undecodable address or signature
// returns the decode error.
func VerifyMessage(addr, sig, msg string, net *chaincfg.Params) (bool, error) {
	decoded, err := DecodeAddress(addr, net)
	if err != nil {
		return false, err
	}
	pkh, ok := decoded.(*AddressPubKeyHash)
	if !ok {
		return false, ErrUnknownAddressType
	}

	sigBytes, err := base64.StdEncoding.DecodeString(sig)
	if err != nil || len(sigBytes) != compactSigLen {
		return false, ErrMalformedSignature
	}

	pub, wasCompressed, err := ecdsa.RecoverCompact(sigBytes, MessageHash(msg, net))
	if err != nil {
		return false, nil
	}
	recovered, err := NewAddressPubKeyHashFromPubKey(pub, wasCompressed, net)
	if err != nil {
		return false, err
	}
	return *recovered.Hash160() == *pkh.Hash160(), nil
}
