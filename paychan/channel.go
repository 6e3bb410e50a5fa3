// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package paychan

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/evrmore/evrlib/chaincfg"
	"github.com/evrmore/evrlib/evrutil"
	"github.com/evrmore/evrlib/txscript"
	"github.com/evrmore/evrlib/wire"
)

// Kind identifies how the refund path of a channel is time locked.
type Kind byte

const (
	// Renewable channels lock the refund for a number of blocks counted
	// from the confirmation of the funding output.  The lock is checked by
	// OP_CHECKSEQUENCEVERIFY, so a channel can be renewed by spending the
	// funding output into a fresh one before the lock expires.
	Renewable Kind = iota

	// NonRenewable channels lock the refund until an absolute block
	// height, checked by OP_CHECKLOCKTIMEVERIFY.
	NonRenewable
)

var kindStrings = map[Kind]string{
	Renewable:    "renewable",
	NonRenewable: "non-renewable",
}

// String returns the Kind in human-readable form.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Kind (%d)", byte(k))
}

// lockOpcode returns the opcode checking the refund lock of the kind.
func (k Kind) lockOpcode() byte {
	if k == Renewable {
		return txscript.OP_CHECKSEQUENCEVERIFY
	}
	return txscript.OP_CHECKLOCKTIMEVERIFY
}

const (
	// MaxRelativeBlocks is the longest relative lock a renewable channel
	// can express.  Larger values would spill into the sequence number
	// flag bits.
	MaxRelativeBlocks = wire.SequenceLockTimeMask

	// MaxAbsoluteHeight is the highest block height a non-renewable channel
	// can lock to.  Lock times from LockTimeThreshold on are timestamps.
	MaxAbsoluteHeight = txscript.LockTimeThreshold - 1
)

var (
	// ErrInvalidPubKey is returned when a channel key is not a valid
	// serialized secp256k1 public key.
	ErrInvalidPubKey = errors.New("invalid channel public key")

	// ErrInvalidTimeout is returned when a timeout is zero or out of range
	// for the channel kind.
	ErrInvalidTimeout = errors.New("invalid channel timeout")

	// ErrUnknownKind is returned for a Kind that is neither Renewable nor
	// NonRenewable.
	ErrUnknownKind = errors.New("unknown channel kind")

	// ErrNotChannelScript is returned when decoding a script that does not
	// follow the channel redeem script template.
	ErrNotChannelScript = errors.New("not a payment channel script")
)

// Channel is a two party payment channel locked in a pay-to-script-hash
// output.  The sender funds the output.  Both parties can close it together
// at any time, and the sender alone can take the funds back once the
// timeout has passed.
//
// The redeem script is:
//
//	OP_IF
//	    2 <sender> <receiver> 2 OP_CHECKMULTISIG
//	OP_ELSE
//	    <timeout> OP_CHECKSEQUENCEVERIFY|OP_CHECKLOCKTIMEVERIFY OP_DROP
//	    <sender> OP_CHECKSIG
//	OP_ENDIF
type Channel struct {
	kind         Kind
	sender       []byte
	receiver     []byte
	timeout      uint32
	redeemScript []byte
}

// checkPubKey ensures key parses as a compressed or uncompressed public key.
func checkPubKey(key []byte) error {
	if _, err := btcec.ParsePubKey(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}
	switch key[0] {
	case 0x02, 0x03, 0x04:
	default:
		return fmt.Errorf("%w: hybrid encoding", ErrInvalidPubKey)
	}
	return nil
}

// checkTimeout ensures timeout is usable for the kind.
func checkTimeout(kind Kind, timeout uint32) error {
	var max uint32
	switch kind {
	case Renewable:
		max = MaxRelativeBlocks
	case NonRenewable:
		max = MaxAbsoluteHeight
	default:
		return ErrUnknownKind
	}
	if timeout == 0 || timeout > max {
		return fmt.Errorf("%w: %d is outside [1, %d] for a %v channel",
			ErrInvalidTimeout, timeout, max, kind)
	}
	return nil
}

// buildScript returns the redeem script for the given parts, which must
// already be validated.
func buildScript(kind Kind, sender, receiver []byte, timeout uint32) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_IF).
		AddOp(txscript.OP_2).AddData(sender).AddData(receiver).
		AddOp(txscript.OP_2).AddOp(txscript.OP_CHECKMULTISIG).
		AddOp(txscript.OP_ELSE).
		AddInt64(int64(timeout)).AddOp(kind.lockOpcode()).
		AddOp(txscript.OP_DROP).
		AddData(sender).AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ENDIF).
		Script()
}

// New returns a channel of the given kind between the serialized public keys
// of the sender and receiver.  The timeout is a number of blocks for
// Renewable channels and a block height for NonRenewable ones.
func New(kind Kind, sender, receiver []byte, timeout uint32) (*Channel, error) {
	if err := checkTimeout(kind, timeout); err != nil {
		return nil, err
	}
	if err := checkPubKey(sender); err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if err := checkPubKey(receiver); err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}

	script, err := buildScript(kind, sender, receiver, timeout)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		kind:         kind,
		sender:       append([]byte(nil), sender...),
		receiver:     append([]byte(nil), receiver...),
		timeout:      timeout,
		redeemScript: script,
	}
	log.Debugf("Created %v channel with timeout %d (%d byte redeem script)",
		kind, timeout, len(script))
	return c, nil
}

// RenewableScript returns the redeem script of a channel whose refund is
// locked for blocks blocks after the funding output confirms.
func RenewableScript(sender, receiver []byte, blocks uint32) ([]byte, error) {
	c, err := New(Renewable, sender, receiver, blocks)
	if err != nil {
		return nil, err
	}
	return c.RedeemScript(), nil
}

// NonRenewableScript returns the redeem script of a channel whose refund is
// locked until block height.
func NonRenewableScript(sender, receiver []byte, height uint32) ([]byte, error) {
	c, err := New(NonRenewable, sender, receiver, height)
	if err != nil {
		return nil, err
	}
	return c.RedeemScript(), nil
}

// Decode parses a channel redeem script.  Only scripts that are byte for
// byte what New would produce are accepted.
func Decode(script []byte) (*Channel, error) {
	elems, err := txscript.ParseScript(script)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotChannelScript, err)
	}
	if len(elems) != 13 {
		return nil, ErrNotChannelScript
	}

	var kind Kind
	switch elems[8].Opcode {
	case txscript.OP_CHECKSEQUENCEVERIFY:
		kind = Renewable
	case txscript.OP_CHECKLOCKTIMEVERIFY:
		kind = NonRenewable
	default:
		return nil, ErrNotChannelScript
	}

	var timeout int64
	switch op := elems[7].Opcode; {
	case op >= txscript.OP_1 && op <= txscript.OP_16:
		timeout = int64(op - (txscript.OP_1 - 1))
	case elems[7].Data != nil:
		n, err := txscript.MakeScriptNum(elems[7].Data, true, 5)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotChannelScript, err)
		}
		timeout = int64(n)
	default:
		return nil, ErrNotChannelScript
	}
	if timeout <= 0 || timeout > MaxAbsoluteHeight {
		return nil, fmt.Errorf("%w: timeout %d", ErrNotChannelScript,
			timeout)
	}

	c, err := New(kind, elems[2].Data, elems[3].Data, uint32(timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotChannelScript, err)
	}
	if !bytes.Equal(c.redeemScript, script) {
		return nil, ErrNotChannelScript
	}
	return c, nil
}

// Kind returns how the refund path of the channel is locked.
func (c *Channel) Kind() Kind {
	return c.kind
}

// Sender returns the serialized public key of the funding party.
func (c *Channel) Sender() []byte {
	return c.sender
}

// Receiver returns the serialized public key of the receiving party.
func (c *Channel) Receiver() []byte {
	return c.receiver
}

// Timeout returns the refund lock, in blocks for renewable channels and as a
// block height otherwise.
func (c *Channel) Timeout() uint32 {
	return c.timeout
}

// RedeemScript returns the script committed to by the channel address.  The
// caller must not modify it.
func (c *Channel) RedeemScript() []byte {
	return c.redeemScript
}

// Address returns the pay-to-script-hash address funding the channel on the
// given network.
func (c *Channel) Address(net *chaincfg.Params) (*evrutil.AddressScriptHash, error) {
	return evrutil.NewAddressScriptHash(c.redeemScript, net)
}

// PkScript returns the output script of the funding output.
func (c *Channel) PkScript() ([]byte, error) {
	return txscript.NewScriptBuilder().AddOp(txscript.OP_HASH160).
		AddData(evrutil.Hash160(c.redeemScript)).
		AddOp(txscript.OP_EQUAL).Script()
}
