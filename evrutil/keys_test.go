// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package evrutil_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/evrmore/evrlib/evrutil"
	"github.com/stretchr/testify/require"
)

// zeroReader yields an endless run of zero bytes.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestNewPrivateKey(t *testing.T) {
	t.Parallel()

	// The first candidate equals the curve order and the second is zero,
	// so both are discarded before the third is used.
	order := hexToBytes("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	want := hexToBytes("0c28fca386c7a227600b2fe50b7cae11ec86d3bf1fbe471be89827e19d72aa1d")
	source := bytes.NewReader(bytes.Join([][]byte{order, make([]byte, 32), want}, nil))

	priv, err := evrutil.NewPrivateKey(source)
	require.NoError(t, err)
	require.Equal(t, want, priv.Serialize())
	require.Zero(t, source.Len())

	// Same entropy, same key.
	again, err := evrutil.NewPrivateKey(bytes.NewReader(want))
	require.NoError(t, err)
	require.Equal(t, priv.Serialize(), again.Serialize())
}

func TestNewPrivateKeySourceFailure(t *testing.T) {
	t.Parallel()

	_, err := evrutil.NewPrivateKey(bytes.NewReader(make([]byte, 31)))
	require.ErrorIs(t, err, evrutil.ErrRandomSource)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = evrutil.NewPrivateKey(bytes.NewReader(nil))
	require.ErrorIs(t, err, evrutil.ErrRandomSource)

	// A source that only ever produces zero scalars is rejected instead of
	// looping forever.
	_, err = evrutil.NewPrivateKey(zeroReader{})
	require.True(t, errors.Is(err, evrutil.ErrRandomSource))
}

func TestHash160(t *testing.T) {
	t.Parallel()

	// hash160 of the compressed generator point.
	pub := hexToBytes("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.Equal(t, hexToBytes("751e76e8199196d454941c45d1b3a323f1433bd6"),
		evrutil.Hash160(pub))
}
