// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package evrutil_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/evrmore/evrlib/chaincfg"
	"github.com/evrmore/evrlib/evrutil"
	"github.com/stretchr/testify/require"
)

func TestMessageHash(t *testing.T) {
	t.Parallel()

	// magic and message are each length prefixed with a single byte.
	msg := "hello"
	magic := chaincfg.MainNetParams.MessageMagic
	var buf bytes.Buffer
	buf.WriteByte(byte(len(magic)))
	buf.WriteString(magic)
	buf.WriteByte(byte(len(msg)))
	buf.WriteString(msg)

	require.Equal(t, chainhash.DoubleHashB(buf.Bytes()),
		evrutil.MessageHash(msg, &chaincfg.MainNetParams))
}

func TestSignVerifyMessage(t *testing.T) {
	t.Parallel()

	priv, _ := btcec.PrivKeyFromBytes(hexToBytes("0c28fca386c7a227600b2fe50b7cae11ec86d3bf1fbe471be89827e19d72aa1d"))
	net := &chaincfg.MainNetParams

	for _, compressed := range []bool{true, false} {
		addr, err := evrutil.NewAddressPubKeyHashFromPubKey(priv.PubKey(),
			compressed, net)
		require.NoError(t, err)

		sig, err := evrutil.SignMessage(priv, compressed, "pay the bearer", net)
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(sig)
		require.NoError(t, err)
		require.Len(t, raw, 65)

		// The header is 27 plus the recovery id, plus 4 more for a
		// compressed key.
		header := byte(27)
		if compressed {
			header += 4
		}
		require.GreaterOrEqual(t, raw[0], header)
		require.Less(t, raw[0], header+4)

		// Signing is deterministic.
		again, err := evrutil.SignMessage(priv, compressed,
			"pay the bearer", net)
		require.NoError(t, err)
		require.Equal(t, sig, again)

		ok, err := evrutil.VerifyMessage(addr.EncodeAddress(), sig,
			"pay the bearer", net)
		require.NoError(t, err)
		require.True(t, ok, "compressed=%v", compressed)

		ok, err = evrutil.VerifyMessage(addr.EncodeAddress(), sig,
			"pay the bearer!", net)
		require.NoError(t, err)
		require.False(t, ok)

		// The other serialization of the same key is a different
		// address.
		otherAddr, err := evrutil.NewAddressPubKeyHashFromPubKey(
			priv.PubKey(), !compressed, net)
		require.NoError(t, err)
		ok, err = evrutil.VerifyMessage(otherAddr.EncodeAddress(), sig,
			"pay the bearer", net)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestVerifyMessageErrors(t *testing.T) {
	t.Parallel()

	priv, _ := btcec.PrivKeyFromBytes(hexToBytes("0c28fca386c7a227600b2fe50b7cae11ec86d3bf1fbe471be89827e19d72aa1d"))
	net := &chaincfg.TestNetParams
	addr, err := evrutil.NewAddressPubKeyHashFromPubKey(priv.PubKey(), true, net)
	require.NoError(t, err)

	_, err = evrutil.VerifyMessage(addr.EncodeAddress(), "not base64!", "m", net)
	require.ErrorIs(t, err, evrutil.ErrMalformedSignature)

	short := base64.StdEncoding.EncodeToString(make([]byte, 64))
	_, err = evrutil.VerifyMessage(addr.EncodeAddress(), short, "m", net)
	require.ErrorIs(t, err, evrutil.ErrMalformedSignature)

	sh, err := evrutil.NewAddressScriptHash([]byte{0x51}, net)
	require.NoError(t, err)
	sig, err := evrutil.SignMessage(priv, true, "m", net)
	require.NoError(t, err)
	_, err = evrutil.VerifyMessage(sh.EncodeAddress(), sig, "m", net)
	require.ErrorIs(t, err, evrutil.ErrUnknownAddressType)

	_, err = evrutil.SignMessage(nil, true, "m", net)
	require.ErrorIs(t, err, evrutil.ErrInvalidPrivateKey)
}
