// Copyright (c) 2015 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txsort orders transaction inputs and outputs deterministically as
// described by BIP 69, so that the order leaks nothing about the wallet that
// built the transaction.
package txsort

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/evrmore/evrlib/wire"
)

// compareInputs orders inputs by previous transaction hash, compared in its
// displayed byte order, and then by output index.
func compareInputs(a, b *wire.TxIn) int {
	if a.PreviousOutPoint.Hash != b.PreviousOutPoint.Hash {
		return bytes.Compare(displayOrder(a.PreviousOutPoint.Hash),
			displayOrder(b.PreviousOutPoint.Hash))
	}
	return cmp.Compare(a.PreviousOutPoint.Index, b.PreviousOutPoint.Index)
}

// compareOutputs orders outputs by value and then by output script bytes.
func compareOutputs(a, b *wire.TxOut) int {
	if a.Value != b.Value {
		return cmp.Compare(a.Value, b.Value)
	}
	return bytes.Compare(a.PkScript, b.PkScript)
}

// displayOrder returns the hash bytes reversed, which is the order used when
// the hash is printed.
func displayOrder(hash chainhash.Hash) []byte {
	b := hash[:]
	slices.Reverse(b)
	return b
}

// Sort returns a copy of tx with its inputs and outputs sorted.  The passed
// transaction is not modified.  Sorting changes the transaction hash, so it
// must happen before signing.
func Sort(tx *wire.MsgTx) *wire.MsgTx {
	sorted := tx.Copy()
	InPlaceSort(sorted)
	return sorted
}

// InPlaceSort sorts the inputs and outputs of tx in place.
func InPlaceSort(tx *wire.MsgTx) {
	slices.SortStableFunc(tx.TxIn, compareInputs)
	slices.SortStableFunc(tx.TxOut, compareOutputs)
}

// IsSorted reports whether the inputs and outputs of tx are in sorted order.
func IsSorted(tx *wire.MsgTx) bool {
	return slices.IsSortedFunc(tx.TxIn, compareInputs) &&
		slices.IsSortedFunc(tx.TxOut, compareOutputs)
}
