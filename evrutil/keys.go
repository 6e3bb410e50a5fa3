// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package evrutil

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// maxKeyGenAttempts bounds how many 32-byte candidates NewPrivateKey draws
// before giving up.  An honest source produces an out of range scalar with
// probability around 2^-128, so hitting the bound means the source is broken.
const maxKeyGenAttempts = 16

// NewPrivateKey draws a private key from rand.  Candidates that are zero or
// not below the curve order are discarded and redrawn.  Read failures and a
// source that never yields a usable scalar return ErrRandomSource.
func NewPrivateKey(rand io.Reader) (*btcec.PrivateKey, error) {
	var buf [32]byte
	defer zero(buf[:])

	for i := 0; i < maxKeyGenAttempts; i++ {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
		}

		var scalar secp256k1.ModNScalar
		overflow := scalar.SetByteSlice(buf[:])
		if overflow || scalar.IsZero() {
			continue
		}
		return secp256k1.NewPrivateKey(&scalar), nil
	}
	return nil, fmt.Errorf("%w: no valid scalar after %d attempts",
		ErrRandomSource, maxKeyGenAttempts)
}

// PubKeyBytes serializes pub in the 33-byte compressed or 65-byte
// uncompressed form.
func PubKeyBytes(pub *btcec.PublicKey, compressed bool) []byte {
	if compressed {
		return pub.SerializeCompressed()
	}
	return pub.SerializeUncompressed()
}

// validPrivKeyBytes reports whether b is a 32-byte scalar in [1, N-1].
func validPrivKeyBytes(b []byte) bool {
	if len(b) != btcec.PrivKeyBytesLen {
		return false
	}
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(b)
	valid := !overflow && !scalar.IsZero()
	scalar.Zero()
	return valid
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
