// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package paychan

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/evrmore/evrlib/txscript"
	"github.com/evrmore/evrlib/wire"
)

// ErrMissingSignature is returned when a spend path is assembled without one
// of the signatures it needs.
var ErrMissingSignature = errors.New("missing channel signature")

// relativeLockTxVersion is the lowest transaction version for which
// OP_CHECKSEQUENCEVERIFY enforces relative locks.
const relativeLockTxVersion = 2

// Sign returns the signature of key over input idx of tx, which spends the
// channel output.  Both spend paths sign with SigHashAll.  For a refund,
// PrepareRefund must be called on tx first since the lock fields are
// committed to.
func (c *Channel) Sign(tx *wire.MsgTx, idx int, key *btcec.PrivateKey) ([]byte, error) {
	return txscript.RawTxInSignature(tx, idx, c.redeemScript,
		txscript.SigHashAll, key)
}

// CooperativeCloseScript returns the signature script spending the channel
// through its multisig branch.  The signatures must be in sender, receiver
// order, which is the order of the keys in the redeem script.
//
//	OP_0 <senderSig> <receiverSig> OP_TRUE <redeemScript>
func (c *Channel) CooperativeCloseScript(senderSig, receiverSig []byte) ([]byte, error) {
	if len(senderSig) == 0 || len(receiverSig) == 0 {
		return nil, fmt.Errorf("%w: cooperative close needs both "+
			"parties", ErrMissingSignature)
	}
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(senderSig).AddData(receiverSig).
		AddOp(txscript.OP_TRUE).
		AddData(c.redeemScript).
		Script()
}

// RefundScript returns the signature script returning the channel funds to
// the sender through the time locked branch.
//
//	<senderSig> OP_FALSE <redeemScript>
func (c *Channel) RefundScript(senderSig []byte) ([]byte, error) {
	if len(senderSig) == 0 {
		return nil, fmt.Errorf("%w: refund needs the sender",
			ErrMissingSignature)
	}
	return txscript.NewScriptBuilder().
		AddData(senderSig).
		AddOp(txscript.OP_FALSE).
		AddData(c.redeemScript).
		Script()
}

// PrepareRefund sets the fields of tx that the refund branch checks for
// input idx.  Renewable channels need a version 2 transaction whose input
// sequence carries the relative lock.  Non-renewable channels need the lock
// time set to the channel height and a non-final input sequence.
func (c *Channel) PrepareRefund(tx *wire.MsgTx, idx int) error {
	if idx < 0 || idx >= len(tx.TxIn) {
		return fmt.Errorf("input index %d out of range for %d inputs", idx,
			len(tx.TxIn))
	}

	txIn := tx.TxIn[idx]
	switch c.kind {
	case Renewable:
		if tx.Version < relativeLockTxVersion {
			tx.Version = relativeLockTxVersion
		}
		txIn.Sequence = c.timeout

	case NonRenewable:
		tx.LockTime = c.timeout
		if txIn.Sequence == wire.MaxTxInSequenceNum {
			txIn.Sequence = wire.MaxTxInSequenceNum - 1
		}

	default:
		return ErrUnknownKind
	}

	log.Debugf("Prepared input %d for a %v refund (version %d, sequence "+
		"%d, lock time %d)", idx, c.kind, tx.Version, txIn.Sequence,
		tx.LockTime)
	return nil
}
