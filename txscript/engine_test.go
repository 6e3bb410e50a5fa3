// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/evrmore/evrlib/evrutil"
	"github.com/evrmore/evrlib/wire"
	"github.com/stretchr/testify/require"
)

// noErr marks a test table entry that is expected to verify.
const noErr ErrorCode = -1

// txParams describes the spending transaction of an engine test.
type txParams struct {
	version  int32
	lockTime uint32
	sequence uint32
}

// defaultTxParams spends with a version 1 transaction whose only input has a
// final sequence.
var defaultTxParams = txParams{
	version:  1,
	sequence: wire.MaxTxInSequenceNum,
}

// newSpendTx returns a one input, one output transaction spending an
// arbitrary outpoint with the given signature script.
func newSpendTx(sigScript []byte, p txParams) *wire.MsgTx {
	tx := wire.NewMsgTx(p.version)
	prevOut := wire.NewOutPoint(&chainhash.Hash{0x01}, 0)
	txIn := wire.NewTxIn(prevOut, sigScript)
	txIn.Sequence = p.sequence
	tx.AddTxIn(txIn)
	tx.AddTxOut(wire.NewTxOut(1000, []byte{OP_TRUE}))
	tx.LockTime = p.lockTime
	return tx
}

// repeatOps returns the short form of op repeated n times.
func repeatOps(op string, n int) string {
	return strings.TrimSpace(strings.Repeat(op+" ", n))
}

// TestVerifyScript runs signature and public key script pairs through the
// engine and checks the outcome against the expected error code.
func TestVerifyScript(t *testing.T) {
	t.Parallel()

	redeem := mustParseShortForm("2 EQUAL")
	p2sh := "HASH160 DATA_20 0x" + hex.EncodeToString(evrutil.Hash160(redeem)) +
		" EQUAL"
	redeemPush := "DATA_2 0x" + hex.EncodeToString(redeem)
	badRedeem := mustParseShortForm("3 EQUAL")
	badP2SH := "HASH160 DATA_20 0x" +
		hex.EncodeToString(evrutil.Hash160(badRedeem)) + " EQUAL"
	badRedeemPush := "DATA_2 0x" + hex.EncodeToString(badRedeem)

	tests := []struct {
		name  string
		sig   string
		pk    string
		flags ScriptFlags
		tx    *txParams
		err   ErrorCode
	}{
		// Arithmetic and comparison.
		{name: "add", pk: "1 1 ADD 2 EQUAL", err: noErr},
		{name: "sub negative", pk: "2 5 SUB -3 NUMEQUAL", err: noErr},
		{name: "arithmetic result past four bytes",
			pk: "2147483647 1 ADD 2147483648 EQUAL", err: noErr},
		{name: "five byte operand rejected",
			pk: "2147483647 1 ADD 1 ADD", err: ErrNumberTooBig},
		{name: "within", pk: "3 2 5 WITHIN", err: noErr},
		{name: "min max", pk: "3 7 MAX 2 MIN 2 NUMEQUAL", err: noErr},
		{name: "booland", pk: "1 0 BOOLAND NOT", err: noErr},
		{name: "numequalverify failure", pk: "1 2 NUMEQUALVERIFY 1",
			err: ErrNumEqualVerify},
		{name: "equalverify failure", pk: "1 2 EQUALVERIFY 1",
			err: ErrEqualVerify},

		// Hashes.
		{name: "hash160 of empty", pk: "0 HASH160 DATA_20 " +
			"0xb472a266d0bd89c13706a4132ccfb16f7c3b9fcb EQUAL", err: noErr},
		{name: "sha256 of empty", pk: "0 SHA256 DATA_32 " +
			"0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855 " +
			"EQUAL", err: noErr},

		// Stack manipulation.
		{name: "rot", pk: "1 2 3 ROT 1 EQUALVERIFY 3 EQUALVERIFY 2 EQUAL",
			err: noErr},
		{name: "alt stack", pk: "1 TOALTSTACK FROMALTSTACK", err: noErr},
		{name: "empty alt stack", pk: "FROMALTSTACK 1",
			err: ErrInvalidStackOperation},
		{name: "alt stack does not carry across scripts", sig: "1 TOALTSTACK",
			pk: "FROMALTSTACK", err: ErrInvalidStackOperation},
		{name: "pick", pk: "7 8 9 2 PICK 7 EQUAL", err: noErr},
		{name: "depth", pk: "5 5 DEPTH 2 EQUAL", err: noErr},
		{name: "size", pk: "DATA_3 0x010203 SIZE 3 EQUAL", err: noErr},

		// Conditionals.
		{name: "if true", pk: "1 IF 1 ELSE 0 ENDIF", err: noErr},
		{name: "if false", pk: "0 IF 0 ELSE 1 ENDIF", err: noErr},
		{name: "notif", pk: "0 NOTIF 1 ENDIF", err: noErr},
		{name: "nested", pk: "1 IF 0 IF 2 ELSE 3 ENDIF ELSE 4 ENDIF 3 EQUAL",
			err: noErr},
		{name: "multiple else", pk: "0 IF 0 ELSE 1 ELSE 0 ENDIF", err: noErr},
		{name: "unterminated if", pk: "1 IF 1", err: ErrUnbalancedConditional},
		{name: "stray endif", pk: "ENDIF 1", err: ErrUnbalancedConditional},
		{name: "stray else", pk: "1 ELSE", err: ErrUnbalancedConditional},
		{name: "if straddling scripts", sig: "1 IF", pk: "ENDIF 1",
			err: ErrUnbalancedConditional},
		{name: "if on empty stack", pk: "IF ENDIF 1",
			err: ErrInvalidStackOperation},

		// Disabled and reserved opcodes.
		{name: "disabled opcode executed", pk: "4 2 DIV",
			err: ErrDisabledOpcode},
		{name: "disabled opcode in unexecuted branch",
			pk: "0 IF CAT ENDIF 1", err: ErrDisabledOpcode},
		{name: "reserved opcode executed", pk: "1 RESERVED",
			err: ErrReservedOpcode},
		{name: "reserved opcode in unexecuted branch",
			pk: "0 IF RESERVED VER ENDIF 1", err: noErr},
		{name: "verif in unexecuted branch", pk: "0 IF VERIF ENDIF 1",
			err: ErrReservedOpcode},
		{name: "unassigned opcode executed", pk: "1 0xba",
			err: ErrReservedOpcode},
		{name: "unassigned opcode in unexecuted branch",
			pk: "0 IF 0xba ENDIF 1", err: noErr},

		// Termination.
		{name: "verify failure", pk: "0 VERIFY 1", err: ErrVerify},
		{name: "return", pk: "1 RETURN", err: ErrEarlyReturn},
		{name: "return in unexecuted branch", pk: "0 IF RETURN ENDIF 1",
			err: noErr},
		{name: "false result", pk: "0", err: ErrEvalFalse},
		{name: "negative zero result", pk: "DATA_1 0x80", err: ErrEvalFalse},
		{name: "empty result stack", pk: "1 DROP", err: ErrEmptyStack},
		{name: "both scripts empty", err: ErrEvalFalse},

		// Asset outputs.
		{name: "asset marker ends script",
			pk: "1 EVR_ASSET DATA_2 0xbeef DROP", err: noErr},
		{name: "asset payload is not executed",
			pk: "1 EVR_ASSET RETURN 0xba", err: noErr},
		{name: "asset marker in unexecuted branch",
			pk: "0 IF EVR_ASSET ENDIF 1", err: noErr},

		// Resource limits.
		{name: "max operations", pk: repeatOps("NOP", MaxOpsPerScript) + " 1",
			err: noErr},
		{name: "too many operations",
			pk:  repeatOps("NOP", MaxOpsPerScript+1) + " 1",
			err: ErrTooManyOperations},
		{name: "operations counted per script",
			sig: repeatOps("NOP", MaxOpsPerScript),
			pk:  repeatOps("NOP", MaxOpsPerScript) + " 1", err: noErr},
		{name: "max stack", sig: repeatOps("1", MaxStackSize-1), pk: "1",
			err: noErr},
		{name: "stack overflow", sig: repeatOps("1", MaxStackSize), pk: "1",
			err: ErrStackOverflow},
		{name: "max element", pk: "PUSHDATA2 0x0802 0x00{520} DROP 1",
			err: noErr},
		{name: "element too big", pk: "PUSHDATA2 0x0902 0x00{521} DROP 1",
			err: ErrElementTooBig},
		{name: "script too big", pk: repeatOps("0x61", MaxScriptSize+1),
			err: ErrScriptTooBig},
		{name: "malformed push", pk: "DATA_2 0x01", err: ErrMalformedPush},

		// Flags.
		{name: "clean stack", sig: "1 1", pk: "NOP",
			flags: ScriptBip16 | ScriptVerifyCleanStack, err: ErrCleanStack},
		{name: "dirty stack allowed", sig: "1 1", pk: "NOP", err: noErr},
		{name: "clean stack without bip16",
			flags: ScriptVerifyCleanStack, pk: "1", err: ErrInvalidFlags},
		{name: "minimal data", sig: "DATA_1 0x05", pk: "5 EQUAL",
			flags: ScriptVerifyMinimalData, err: ErrMinimalData},
		{name: "non-minimal data allowed", sig: "DATA_1 0x05", pk: "5 EQUAL",
			err: noErr},
		{name: "minimal number encoding", sig: "DATA_2 0x0100", pk: "1 ADD 2 EQUAL",
			flags: ScriptVerifyMinimalData, err: ErrMinimalData},
		{name: "sig push only", sig: "1 NOP", pk: "1",
			flags: ScriptVerifySigPushOnly, err: ErrNotPushOnly},
		{name: "discouraged nop", pk: "NOP1 1",
			flags: ScriptDiscourageUpgradableNops,
			err:   ErrDiscourageUpgradableNOPs},
		{name: "plain nop not discouraged", pk: "NOP 1",
			flags: ScriptDiscourageUpgradableNops, err: noErr},

		// Absolute lock time.
		{name: "cltv as nop without flag", pk: "100 CHECKLOCKTIMEVERIFY",
			err: noErr},
		{name: "cltv satisfied", pk: "100 CHECKLOCKTIMEVERIFY",
			flags: ScriptVerifyCheckLockTimeVerify,
			tx:    &txParams{version: 1, lockTime: 100, sequence: 0},
			err:   noErr},
		{name: "cltv too early", pk: "100 CHECKLOCKTIMEVERIFY",
			flags: ScriptVerifyCheckLockTimeVerify,
			tx:    &txParams{version: 1, lockTime: 99, sequence: 0},
			err:   ErrUnsatisfiedLockTime},
		{name: "cltv finalized input", pk: "100 CHECKLOCKTIMEVERIFY",
			flags: ScriptVerifyCheckLockTimeVerify,
			tx: &txParams{version: 1, lockTime: 100,
				sequence: wire.MaxTxInSequenceNum},
			err: ErrUnsatisfiedLockTime},
		{name: "cltv mismatched kind", pk: "100 CHECKLOCKTIMEVERIFY",
			flags: ScriptVerifyCheckLockTimeVerify,
			tx:    &txParams{version: 1, lockTime: LockTimeThreshold, sequence: 0},
			err:   ErrUnsatisfiedLockTime},
		{name: "cltv negative", pk: "-1 CHECKLOCKTIMEVERIFY",
			flags: ScriptVerifyCheckLockTimeVerify,
			tx:    &txParams{version: 1, lockTime: 100, sequence: 0},
			err:   ErrNegativeLockTime},
		{name: "cltv empty stack", pk: "CHECKLOCKTIMEVERIFY",
			flags: ScriptVerifyCheckLockTimeVerify,
			tx:    &txParams{version: 1, lockTime: 100, sequence: 0},
			err:   ErrInvalidStackOperation},

		// Relative lock time.
		{name: "csv satisfied at boundary", pk: "5 CHECKSEQUENCEVERIFY",
			flags: ScriptVerifyCheckSequenceVerify,
			tx:    &txParams{version: 2, sequence: 5},
			err:   noErr},
		{name: "csv one block short", pk: "5 CHECKSEQUENCEVERIFY",
			flags: ScriptVerifyCheckSequenceVerify,
			tx:    &txParams{version: 2, sequence: 4},
			err:   ErrUnsatisfiedLockTime},
		{name: "csv version 1", pk: "5 CHECKSEQUENCEVERIFY",
			flags: ScriptVerifyCheckSequenceVerify,
			tx:    &txParams{version: 1, sequence: 5},
			err:   ErrUnsatisfiedLockTime},
		{name: "csv input disabled", pk: "5 CHECKSEQUENCEVERIFY",
			flags: ScriptVerifyCheckSequenceVerify,
			tx: &txParams{version: 2,
				sequence: wire.SequenceLockTimeDisabled | 5},
			err: ErrUnsatisfiedLockTime},
		{name: "csv operand disabled", pk: "2147483648 CHECKSEQUENCEVERIFY",
			flags: ScriptVerifyCheckSequenceVerify,
			tx:    &txParams{version: 1, sequence: 0},
			err:   noErr},
		{name: "csv mismatched kind", pk: "5 CHECKSEQUENCEVERIFY",
			flags: ScriptVerifyCheckSequenceVerify,
			tx: &txParams{version: 2,
				sequence: wire.SequenceLockTimeIsSeconds | 5},
			err: ErrUnsatisfiedLockTime},

		// Pay to script hash.
		{name: "p2sh", sig: "2 " + redeemPush, pk: p2sh, flags: ScriptBip16,
			err: noErr},
		{name: "p2sh redeem fails", sig: "2 " + badRedeemPush, pk: badP2SH,
			flags: ScriptBip16, err: ErrEvalFalse},
		{name: "p2sh redeem not run without bip16", sig: "2 " + badRedeemPush,
			pk: badP2SH, err: noErr},
		{name: "p2sh wrong redeem", sig: "2 " + badRedeemPush, pk: p2sh,
			flags: ScriptBip16, err: ErrEvalFalse},
		{name: "p2sh not push only", sig: "2 NOP " + redeemPush, pk: p2sh,
			flags: ScriptBip16, err: ErrNotPushOnly},
		{name: "p2sh empty signature script", pk: p2sh, flags: ScriptBip16,
			err: ErrInvalidStackOperation},
		{name: "p2sh clean stack", sig: "2 2 " + redeemPush, pk: p2sh,
			flags: ScriptBip16 | ScriptVerifyCleanStack, err: ErrCleanStack},
	}

	for _, test := range tests {
		p := defaultTxParams
		if test.tx != nil {
			p = *test.tx
		}
		tx := newSpendTx(mustParseShortForm(test.sig), p)
		result := VerifyScript(mustParseShortForm(test.pk), tx, 0,
			test.flags, nil)

		if test.err == noErr {
			require.True(t, result.Valid, "%s: %v", test.name, result.Err)
			require.NoError(t, result.Err, test.name)
			require.Equal(t, ReasonNone, result.Reason, test.name)
			continue
		}
		require.False(t, result.Valid, test.name)
		require.Equal(t, test.err, result.Code, "%s: %v", test.name,
			result.Err)
		require.Equal(t, test.err.Reason(), result.Reason, test.name)
		require.True(t, IsErrorCode(result.Err, test.err), test.name)
	}
}

// TestVerifyScriptInvalidIndex ensures an input index outside the
// transaction is reported instead of panicking.
func TestVerifyScriptInvalidIndex(t *testing.T) {
	t.Parallel()

	tx := newSpendTx(nil, defaultTxParams)
	for _, idx := range []int{-1, 1} {
		result := VerifyScript([]byte{OP_TRUE}, tx, idx, 0, nil)
		require.False(t, result.Valid)
		require.Equal(t, ErrInvalidIndex, result.Code)
	}

	result := VerifyScript([]byte{OP_TRUE}, nil, 0, 0, nil)
	require.Equal(t, ErrInvalidIndex, result.Code)
}

// TestEngineStep ensures the engine can be stepped through one opcode at a
// time with the stacks inspected along the way.
func TestEngineStep(t *testing.T) {
	t.Parallel()

	tx := newSpendTx(mustParseShortForm("2 3"), defaultTxParams)
	vm, err := NewEngine(mustParseShortForm("ADD 5 EQUAL"), tx, 0, 0, nil)
	require.NoError(t, err)

	// The engine can't be checked before it has run.
	require.True(t, IsErrorCode(vm.CheckErrorCondition(true),
		ErrScriptUnfinished))

	dis, err := vm.DisasmPC()
	require.NoError(t, err)
	require.Contains(t, dis, "OP_2")

	var steps int
	for {
		done, err := vm.Step()
		require.NoError(t, err)
		steps++
		if steps == 2 {
			require.Equal(t, [][]byte{{2}, {3}}, vm.GetStack())
		}
		if steps == 3 {
			require.Equal(t, [][]byte{{5}}, vm.GetStack())
		}
		if done {
			break
		}
	}
	require.Equal(t, 5, steps)
	require.NoError(t, vm.CheckErrorCondition(true))

	// Stepping past the end is an error.
	_, err = vm.Step()
	require.True(t, IsErrorCode(err, ErrInvalidProgramCounter))

	script, err := vm.DisasmScript(1)
	require.NoError(t, err)
	require.Contains(t, script, "OP_ADD")
	_, err = vm.DisasmScript(5)
	require.True(t, IsErrorCode(err, ErrInvalidIndex))
}

// TestEngineAltStack ensures the alternate stack accessors round trip.
func TestEngineAltStack(t *testing.T) {
	t.Parallel()

	tx := newSpendTx(nil, defaultTxParams)
	vm, err := NewEngine([]byte{OP_TRUE}, tx, 0, 0, nil)
	require.NoError(t, err)

	vm.SetAltStack([][]byte{{1}, {2}})
	require.Equal(t, [][]byte{{1}, {2}}, vm.GetAltStack())
	vm.SetStack([][]byte{{3}})
	require.Equal(t, [][]byte{{3}}, vm.GetStack())
}
