// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/evrmore/evrlib/evrutil"
	"github.com/stretchr/testify/require"
)

// shortFormOps holds a map of opcode names to values for use in short form
// parsing.  It is built once on first use.
var (
	shortFormOps     map[string]byte
	shortFormOpsOnce sync.Once
)

// parseHex parses a hex string token into raw bytes.  A trailing {n}
// repeats the decoded bytes n times, so 0x01{20} is twenty 0x01 bytes.
func parseHex(tok string) ([]byte, error) {
	if !strings.HasPrefix(tok, "0x") {
		return nil, errors.New("not a hex number")
	}
	tok = tok[2:]
	repeat := 1
	if i := strings.IndexByte(tok, '{'); i != -1 {
		if !strings.HasSuffix(tok, "}") {
			return nil, errors.New("unterminated repeat")
		}
		n, err := strconv.Atoi(tok[i+1 : len(tok)-1])
		if err != nil {
			return nil, err
		}
		repeat = n
		tok = tok[:i]
	}
	b, err := hex.DecodeString(tok)
	if err != nil {
		return nil, err
	}
	return bytes.Repeat(b, repeat), nil
}

// parseShortForm parses a string as used in the test tables into a script.
// Plain decimal numbers are pushed as script numbers, 0x prefixed hex is
// copied in raw, quoted strings are pushed as data, and opcodes may be named
// with or without the OP_ prefix (except OP_0 through OP_16).
func parseShortForm(script string) ([]byte, error) {
	shortFormOpsOnce.Do(func() {
		ops := make(map[string]byte)
		for opcodeName, opcodeValue := range OpcodeByName {
			if strings.Contains(opcodeName, "OP_UNKNOWN") {
				continue
			}
			ops[opcodeName] = opcodeValue

			// The opcodes named OP_# can't have the OP_ prefix
			// stripped or they would conflict with the plain
			// numbers.
			if (opcodeName == "OP_FALSE" || opcodeName == "OP_TRUE") ||
				(opcodeValue != OP_0 && (opcodeValue < OP_1 ||
					opcodeValue > OP_16)) {

				ops[strings.TrimPrefix(opcodeName, "OP_")] = opcodeValue
			}
		}
		shortFormOps = ops
	})

	builder := NewScriptBuilder()
	for _, tok := range strings.Fields(script) {
		if num, err := strconv.ParseInt(tok, 10, 64); err == nil {
			builder.AddInt64(num)
			continue
		} else if bts, err := parseHex(tok); err == nil {
			// Concatenate the bytes manually since the tests
			// intentionally create malformed and oversized scripts
			// the builder would otherwise refuse.
			if builder.err == nil {
				builder.script = append(builder.script, bts...)
			}
		} else if len(tok) >= 2 &&
			tok[0] == '\'' && tok[len(tok)-1] == '\'' {
			builder.AddFullData([]byte(tok[1 : len(tok)-1]))
		} else if opcode, ok := shortFormOps[tok]; ok {
			builder.AddOp(opcode)
		} else {
			return nil, fmt.Errorf("bad token %q", tok)
		}
	}
	return builder.Script()
}

// mustParseShortForm parses the passed short form script and returns the
// resulting bytes.  It panics if an error occurs.  This is only used in the
// tests as a helper since the only way it can fail is if there is an error in
// the test source code.
func mustParseShortForm(script string) []byte {
	s, err := parseShortForm(script)
	if err != nil {
		panic("invalid short form script in test source: err " +
			err.Error() + ", script: " + script)
	}

	return s
}

// TestDisasmString ensures the one line disassembly of scripts, including
// the marker appended to scripts that fail to parse.
func TestDisasmString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		want   string
		err    bool
	}{{
		name:   "empty",
		script: "",
		want:   "",
	}, {
		name:   "small integers",
		script: "0 1 16 -1",
		want:   "0 1 16 -1",
	}, {
		name:   "pay-to-pubkey-hash",
		script: "DUP HASH160 DATA_20 0x0102030405060708090a0b0c0d0e0f1011121314 EQUALVERIFY CHECKSIG",
		want: "OP_DUP OP_HASH160 0102030405060708090a0b0c0d0e0f1011121314 " +
			"OP_EQUALVERIFY OP_CHECKSIG",
	}, {
		name:   "lock time aliases",
		script: "NOP2 NOP3",
		want:   "OP_CHECKLOCKTIMEVERIFY OP_CHECKSEQUENCEVERIFY",
	}, {
		name:   "asset marker",
		script: "EVR_ASSET DATA_2 0xbeef DROP",
		want:   "OP_EVR_ASSET beef OP_DROP",
	}, {
		name:   "unassigned opcode",
		script: "0xba",
		want:   "OP_UNKNOWN186",
	}, {
		name:   "truncated push",
		script: "DUP DATA_2 0x01",
		want:   "OP_DUP [error]",
		err:    true,
	}, {
		name:   "truncated first push",
		script: "PUSHDATA1",
		want:   "[error]",
		err:    true,
	}}

	for _, test := range tests {
		got, err := DisasmString(mustParseShortForm(test.script))
		if test.err {
			require.True(t, IsErrorCode(err, ErrMalformedPush), test.name)
		} else {
			require.NoError(t, err, test.name)
		}
		require.Equal(t, test.want, got, test.name)
	}
}

// TestParseEncodeScript ensures parsed elements encode back into the exact
// bytes they came from, including non-canonical pushes.
func TestParseEncodeScript(t *testing.T) {
	t.Parallel()

	scripts := []string{
		"",
		"DUP HASH160 DATA_20 0x01{20} EQUALVERIFY CHECKSIG",
		"PUSHDATA1 0x01 0x05",
		"PUSHDATA2 0x0300 0x010203",
		"PUSHDATA4 0x00000000",
		"0 1NEGATE 16 RETURN",
		"HASH160 DATA_20 0x02{20} EQUAL EVR_ASSET DATA_3 0x657672 DROP",
	}
	for _, s := range scripts {
		script := mustParseShortForm(s)
		elems, err := ParseScript(script)
		require.NoError(t, err, s)

		encoded, err := EncodeScript(elems)
		require.NoError(t, err, s)
		require.True(t, bytes.Equal(script, encoded), "%q: got %x, want %x",
			s, encoded, script)
	}

	_, err := ParseScript(mustParseShortForm("DATA_5 0x0102"))
	require.True(t, IsErrorCode(err, ErrMalformedPush))
}

// TestScriptElementEncode ensures elements whose data does not match their
// opcode are rejected.
func TestScriptElementEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		elem ScriptElement
		want []byte
		err  bool
	}{{
		name: "plain opcode",
		elem: ScriptElement{Opcode: OP_CHECKSIG},
		want: []byte{OP_CHECKSIG},
	}, {
		name: "plain opcode with data",
		elem: ScriptElement{Opcode: OP_CHECKSIG, Data: []byte{1}},
		err:  true,
	}, {
		name: "fixed push",
		elem: ScriptElement{Opcode: 2, Data: []byte{0xab, 0xcd}},
		want: []byte{2, 0xab, 0xcd},
	}, {
		name: "fixed push wrong size",
		elem: ScriptElement{Opcode: 3, Data: []byte{0xab, 0xcd}},
		err:  true,
	}, {
		name: "pushdata1 too big",
		elem: ScriptElement{Opcode: OP_PUSHDATA1, Data: make([]byte, 256)},
		err:  true,
	}, {
		name: "pushdata2",
		elem: ScriptElement{Opcode: OP_PUSHDATA2, Data: []byte{0x07}},
		want: []byte{OP_PUSHDATA2, 0x01, 0x00, 0x07},
	}}

	for _, test := range tests {
		got, err := test.elem.Encode()
		if test.err {
			require.True(t, IsErrorCode(err, ErrMalformedPush), test.name)
			continue
		}
		require.NoError(t, err, test.name)
		require.Equal(t, test.want, got, test.name)
	}

	require.Equal(t, "OP_CHECKSIG", ScriptElement{Opcode: OP_CHECKSIG}.String())
	require.Equal(t, "abcd", ScriptElement{Opcode: 2, Data: []byte{0xab, 0xcd}}.String())
}

// TestRemoveOpcodeByData ensures only canonical pushes of the exact data are
// removed from a script.
func TestRemoveOpcodeByData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before string
		remove []byte
		after  string
	}{{
		name:   "nothing to remove",
		before: "NOP",
		remove: []byte{1, 2, 3, 4},
		after:  "NOP",
	}, {
		name:   "simple",
		before: "DATA_4 0x01020304",
		remove: []byte{1, 2, 3, 4},
		after:  "",
	}, {
		name:   "simple case (miss)",
		before: "DATA_4 0x01020304",
		remove: []byte{1, 2, 3, 5},
		after:  "DATA_4 0x01020304",
	}, {
		name:   "among other opcodes",
		before: "DUP DATA_4 0x01020304 CHECKSIG DATA_4 0x01020304",
		remove: []byte{1, 2, 3, 4},
		after:  "DUP CHECKSIG",
	}, {
		name:   "non-canonical push is kept",
		before: "PUSHDATA1 0x04 0x01020304",
		remove: []byte{1, 2, 3, 4},
		after:  "PUSHDATA1 0x04 0x01020304",
	}, {
		name:   "canonical pushdata1",
		before: "PUSHDATA1 0x4c 0x01{76}",
		remove: bytes.Repeat([]byte{0x01}, 76),
		after:  "",
	}}

	for _, test := range tests {
		result := removeOpcodeByData(mustParseShortForm(test.before),
			test.remove)
		require.Equal(t, mustParseShortForm(test.after), result, test.name)
	}
}

// TestRemoveOpcodeRaw ensures code separators are stripped without touching
// pushed data that happens to contain the same byte.
func TestRemoveOpcodeRaw(t *testing.T) {
	t.Parallel()

	script := mustParseShortForm("CODESEPARATOR DATA_1 0xab CODESEPARATOR CHECKSIG")
	got := removeOpcodeRaw(script, OP_CODESEPARATOR)
	require.Equal(t, mustParseShortForm("DATA_1 0xab CHECKSIG"), got)

	// Untouched scripts are returned as is.
	clean := mustParseShortForm("DUP CHECKSIG")
	require.Equal(t, clean, removeOpcodeRaw(clean, OP_CODESEPARATOR))
}

// TestIsPushOnlyScript ensures the push only test treats small integers as
// pushes and rejects everything else, including malformed scripts.
func TestIsPushOnlyScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		script string
		want   bool
	}{
		{"", true},
		{"0 1 16 -1 DATA_2 0x0102", true},
		{"PUSHDATA1 0x01 0xff", true},
		{"1 NOP", false},
		{"DUP", false},
		{"DATA_2 0x01", false},
	}
	for _, test := range tests {
		got := IsPushOnlyScript(mustParseShortForm(test.script))
		require.Equal(t, test.want, got, test.script)
	}
}

// TestHasCanonicalPushes ensures non-minimal pushes are detected.
func TestHasCanonicalPushes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		want   bool
	}{
		{"empty", "", true},
		{"small ints", "0 5 16 -1", true},
		{"fixed push", "DATA_2 0x0102", true},
		{"one byte zero", "DATA_1 0x00", true},
		{"small int via data push", "DATA_1 0x05", false},
		{"negative one via data push", "DATA_1 0x81", false},
		{"short pushdata1", "PUSHDATA1 0x02 0x0102", false},
		{"long pushdata1", "PUSHDATA1 0x4c 0x01{76}", true},
		{"pushdata2 that fits pushdata1", "PUSHDATA2 0x4c00 0x01{76}", false},
		{"malformed", "DATA_3 0x01", false},
	}
	for _, test := range tests {
		got := HasCanonicalPushes(mustParseShortForm(test.script))
		require.Equal(t, test.want, got, test.name)
	}
}

// TestGetSigOpCount ensures quick and precise signature operation counting.
func TestGetSigOpCount(t *testing.T) {
	t.Parallel()

	multisig := mustParseShortForm("2 DATA_33 0x02{33} DATA_33 0x03{33} " +
		"DATA_33 0x02{33} 3 CHECKMULTISIG")
	tests := []struct {
		name     string
		script   []byte
		quick    int
		accurate int
	}{
		{"empty", nil, 0, 0},
		{"p2pkh", mustParseShortForm("DUP HASH160 DATA_20 0x00{20} " +
			"EQUALVERIFY CHECKSIG"), 1, 1},
		{"multisig", multisig, 20, 3},
		{"multisig without count", mustParseShortForm("DUP CHECKMULTISIGVERIFY"), 20, 20},
		{"mixed", mustParseShortForm("CHECKSIG CHECKSIGVERIFY 1 CHECKMULTISIG"), 22, 3},
		{"stops at parse failure", mustParseShortForm("CHECKSIG DATA_3 0x01 CHECKSIG"), 1, 1},
	}
	for _, test := range tests {
		require.Equal(t, test.quick, GetSigOpCount(test.script, false), test.name)
		require.Equal(t, test.accurate, GetSigOpCount(test.script, true), test.name)
	}
}

// TestGetPreciseSigOpCount ensures the redeem script is counted when
// spending a pay-to-script-hash output.
func TestGetPreciseSigOpCount(t *testing.T) {
	t.Parallel()

	redeem := mustParseShortForm("2 DATA_33 0x02{33} DATA_33 0x03{33} " +
		"2 CHECKMULTISIG")
	pkScript := mustParseShortForm("HASH160 DATA_20 0x" +
		hex.EncodeToString(evrutil.Hash160(redeem)) + " EQUAL")
	sigScript, err := NewScriptBuilder().AddOp(OP_0).AddData([]byte{1}).
		AddData(redeem).Script()
	require.NoError(t, err)

	require.Equal(t, 2, GetPreciseSigOpCount(sigScript, pkScript, true))
	require.Equal(t, 0, GetPreciseSigOpCount(sigScript, pkScript, false))

	// A signature script that is not push only counts nothing.
	bad := append(append([]byte{}, sigScript...), OP_NOP)
	require.Equal(t, 0, GetPreciseSigOpCount(bad, pkScript, true))
	require.Equal(t, 0, GetPreciseSigOpCount(nil, pkScript, true))

	// Other scripts are counted precisely on their own.
	require.Equal(t, 2, GetPreciseSigOpCount(nil, redeem, true))
}

// TestPushedData ensures all data pushes are reported, including the empty
// push of OP_0, while small integers are skipped.
func TestPushedData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		script string
		want   [][]byte
		err    bool
	}{
		{"0 IF 0 ELSE 2 ENDIF", [][]byte{{}, {}}, false},
		{"16777216 10000000", [][]byte{{0x00, 0x00, 0x00, 0x01}, {0x80, 0x96, 0x98, 0x00}}, false},
		{"DUP HASH160 '17VZNX1SN5NtKa8UQFxwQbFeFc3iqRYhem' EQUALVERIFY CHECKSIG",
			[][]byte{[]byte("17VZNX1SN5NtKa8UQFxwQbFeFc3iqRYhem")}, false},
		{"PUSHDATA4 0x00000000 5", [][]byte{{}}, false},
		{"DATA_5 0x01", nil, true},
	}
	for _, test := range tests {
		got, err := PushedData(mustParseShortForm(test.script))
		if test.err {
			require.Error(t, err, test.script)
			continue
		}
		require.NoError(t, err, test.script)
		require.Equal(t, test.want, got, test.script)
	}
}

// TestIsUnspendable ensures provably unspendable output scripts are
// detected.
func TestIsUnspendable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script []byte
		want   bool
	}{
		{"null data", mustParseShortForm("RETURN DATA_4 0x74657374"), true},
		{"bare return", []byte{OP_RETURN}, true},
		{"malformed", mustParseShortForm("DATA_4 0x74"), true},
		{"oversized", make([]byte, MaxScriptSize+1), true},
		{"p2pkh", mustParseShortForm("DUP HASH160 DATA_20 0x00{20} " +
			"EQUALVERIFY CHECKSIG"), false},
		{"empty", nil, false},
	}
	for _, test := range tests {
		require.Equal(t, test.want, IsUnspendable(test.script), test.name)
	}
}
