// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package evrutil provides Evrmore key material and the encodings built on it.

It covers secp256k1 private key generation from a caller supplied entropy
source, Wallet Import Format (WIF) keys, base58check pay-to-pubkey-hash and
pay-to-script-hash addresses, ECDSA signing and verification of 32-byte
digests, and the signed message format used by Evrmore wallets.

Every function that encodes or decodes a network specific value takes a
*chaincfg.Params.  There is no default network.

# Errors

Decoding failures are reported with the exported sentinel errors of this
package (ErrChecksumMismatch, ErrUnknownAddressType, ErrInvalidAddressLength,
ErrMalformedPrivateKey, ErrMalformedSignature).  Signing failures are
reported with ErrInvalidPrivateKey, ErrInvalidDigestLength and
ErrRandomSource.  Each may be wrapped, so compare with errors.Is.
*/
package evrutil
