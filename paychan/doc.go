// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package paychan builds two party payment channels on Evrmore.

A channel is a pay-to-script-hash output funded by a sender.  The sender and
receiver can close it together at any time by signing a transaction through
the 2-of-2 multisig branch of the redeem script.  If the receiver stops
cooperating, the sender can reclaim the funds alone once the channel timeout
has passed.

Renewable channels express the timeout as a number of blocks relative to the
confirmation of the funding output and are checked with
OP_CHECKSEQUENCEVERIFY.  Non-renewable channels lock until an absolute block
height and are checked with OP_CHECKLOCKTIMEVERIFY.

The package only builds scripts and spend paths.  Commitment transactions and
any off-chain protocol between the parties are left to the caller.
*/
package paychan
