// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package evrutil_test

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/evrmore/evrlib/evrutil"
	"github.com/stretchr/testify/require"
)

// highS rewrites a strict DER signature so its S value is N-S, producing the
// malleated twin that verifies mathematically but is not canonical.
func highS(t *testing.T, der []byte) []byte {
	t.Helper()

	rLen := int(der[3])
	r := der[4 : 4+rLen]
	sLen := int(der[5+rLen])
	s := new(big.Int).SetBytes(der[6+rLen : 6+rLen+sLen])
	s.Sub(btcec.S256().N, s)

	sBytes := s.Bytes()
	if sBytes[0]&0x80 != 0 {
		sBytes = append([]byte{0x00}, sBytes...)
	}

	out := []byte{0x30, byte(4 + len(r) + len(sBytes)), 0x02, byte(len(r))}
	out = append(out, r...)
	out = append(out, 0x02, byte(len(sBytes)))
	return append(out, sBytes...)
}

func TestSignVerifyHash(t *testing.T) {
	t.Parallel()

	priv, _ := btcec.PrivKeyFromBytes(hexToBytes("0c28fca386c7a227600b2fe50b7cae11ec86d3bf1fbe471be89827e19d72aa1d"))
	pub := priv.PubKey()
	digest := chainhash.DoubleHashB([]byte("evrmore"))

	sig, err := evrutil.SignHash(priv, digest)
	require.NoError(t, err)
	der := sig.Serialize()
	require.True(t, evrutil.IsLowDERSignature(der))
	require.True(t, evrutil.VerifyHash(pub, digest, der))

	// Deterministic nonces.
	sig2, err := evrutil.SignHash(priv, digest)
	require.NoError(t, err)
	require.Equal(t, der, sig2.Serialize())

	// Every single bit flip of the digest breaks verification.
	for i := 0; i < len(digest)*8; i++ {
		flipped := append([]byte(nil), digest...)
		flipped[i/8] ^= 1 << uint(i%8)
		if evrutil.VerifyHash(pub, flipped, der) {
			t.Fatalf("verified after flipping digest bit %d", i)
		}
	}

	// Every single bit flip of the signature breaks verification.
	for i := 0; i < len(der)*8; i++ {
		flipped := append([]byte(nil), der...)
		flipped[i/8] ^= 1 << uint(i%8)
		if evrutil.VerifyHash(pub, digest, flipped) {
			t.Fatalf("verified after flipping signature bit %d", i)
		}
	}

	// The malleated high-S twin is rejected.
	twin := highS(t, der)
	require.False(t, evrutil.IsLowDERSignature(twin))
	require.False(t, evrutil.VerifyHash(pub, digest, twin))

	// A different key does not verify.
	other, _ := btcec.PrivKeyFromBytes(hexToBytes("dda35a1488fb97b6eb3fe6e9ef2a25814e396fb5dc295fe994b96789b21a0398"))
	require.False(t, evrutil.VerifyHash(other.PubKey(), digest, der))
}

func TestSignHashErrors(t *testing.T) {
	t.Parallel()

	priv, _ := btcec.PrivKeyFromBytes(hexToBytes("0c28fca386c7a227600b2fe50b7cae11ec86d3bf1fbe471be89827e19d72aa1d"))

	_, err := evrutil.SignHash(priv, make([]byte, 31))
	require.ErrorIs(t, err, evrutil.ErrInvalidDigestLength)

	_, err = evrutil.SignHash(priv, make([]byte, 33))
	require.ErrorIs(t, err, evrutil.ErrInvalidDigestLength)

	_, err = evrutil.SignHash(nil, make([]byte, 32))
	require.ErrorIs(t, err, evrutil.ErrInvalidPrivateKey)

	require.False(t, evrutil.VerifyHash(priv.PubKey(), make([]byte, 31), nil))
	require.False(t, evrutil.IsLowDERSignature(nil))
}
