// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the per-network values used to encode addresses,
// private keys, and signed messages.
//
// Nothing in this module reads a package level "active network".  Callers
// resolve a *Params once, typically through ParamsByName, and pass it to every
// encode, decode, and sign call:
//
//	params, err := chaincfg.ParamsByName("testnet")
//	if err != nil {
//		return err
//	}
//	addr, err := evrutil.DecodeAddress(s, params)
//
// Custom networks can be added with Register.
package chaincfg
