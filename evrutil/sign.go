// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package evrutil

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// ErrInvalidPrivateKey is returned when signing is attempted with a
	// missing or zero private key.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidDigestLength is returned when the digest passed for
	// signing is not exactly 32 bytes.
	ErrInvalidDigestLength = errors.New("digest must be 32 bytes")

	// ErrRandomSource is returned when the entropy source used for key
	// generation fails.
	ErrRandomSource = errors.New("random source failure")
)

// SignHash signs a 32-byte digest with priv.  Nonces are derived with
// RFC6979 so the same key and digest always produce the same signature, and
// the S value is always in the lower half of the curve order.
func SignHash(priv *btcec.PrivateKey, digest []byte) (*ecdsa.Signature, error) {
	if len(digest) != chainhash.HashSize {
		return nil, ErrInvalidDigestLength
	}
	if priv == nil || priv.Key.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return ecdsa.Sign(priv, digest), nil
}

// VerifyHash reports whether derSig is a valid signature of digest by pub.
// The signature must be strict DER with a low S value.  Malformed input of
// any kind yields false.
func VerifyHash(pub *btcec.PublicKey, digest, derSig []byte) bool {
	if pub == nil || len(digest) != chainhash.HashSize {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(derSig)
	if err != nil {
		return false
	}
	if !isLowS(sig, derSig) {
		return false
	}
	return sig.Verify(digest, pub)
}

// IsLowDERSignature reports whether sig is a strict DER encoded signature
// whose S value is at most half the curve order.
func IsLowDERSignature(sig []byte) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return isLowS(parsed, sig)
}

// isLowS relies on Serialize always emitting the canonical low-S form: a
// strictly parsed signature re-serializes to the same bytes only when its S
// was already low.
func isLowS(parsed *ecdsa.Signature, der []byte) bool {
	return bytes.Equal(parsed.Serialize(), der)
}
