// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// MainNetParams defines the network parameters for the main Evrmore network.
// Pay-to-pubkey-hash addresses on it start with 'E'.
var MainNetParams = Params{
	Name:             "mainnet",
	PubKeyHashAddrID: 0x21, // starts with E
	ScriptHashAddrID: 0x5c, // starts with e
	PrivateKeyID:     0x80, // starts with 5 (uncompressed) or K/L (compressed)
	MessageMagic:     DefaultMessageMagic,
}
