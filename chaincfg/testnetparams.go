// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// TestNetParams defines the network parameters for the Evrmore test network.
var TestNetParams = Params{
	Name:             "testnet",
	PubKeyHashAddrID: 0x6f, // starts with m or n
	ScriptHashAddrID: 0xc4, // starts with 2
	PrivateKeyID:     0xef, // starts with 9 (uncompressed) or c (compressed)
	MessageMagic:     DefaultMessageMagic,
}

// RegressionNetParams defines the network parameters for the regression test
// network.  The address and key prefixes are shared with the test network.
var RegressionNetParams = Params{
	Name:             "regtest",
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
	MessageMagic:     DefaultMessageMagic,
}
