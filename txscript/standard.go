// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/evrmore/evrlib/chaincfg"
	"github.com/evrmore/evrlib/evrutil"
)

const (
	// MaxDataCarrierSize is the maximum number of bytes allowed in pushed
	// data to be considered a nulldata transaction
	MaxDataCarrierSize = 80

	// maxMultiSigKeys is the most keys a standard multisig script may
	// list.  OP_16 is the largest key count a single opcode can carry.
	maxMultiSigKeys = 16
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockchain.
const (
	NonStandardTy ScriptClass = iota // None of the recognized forms.
	PubKeyTy                         // Pay pubkey.
	PubKeyHashTy                     // Pay pubkey hash.
	ScriptHashTy                     // Pay to script hash.
	MultiSigTy                       // Multi signature.
	NullDataTy                       // Empty data-only (provably prunable).
	AssetTy                          // Asset-tagged P2PKH or P2SH output.
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy: "nonstandard",
	PubKeyTy:      "pubkey",
	PubKeyHashTy:  "pubkeyhash",
	ScriptHashTy:  "scripthash",
	MultiSigTy:    "multisig",
	NullDataTy:    "nulldata",
	AssetTy:       "asset",
}

// String implements the Stringer interface by returning the name of
// the enum script class. If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// extractPubKeyHash extracts the public key hash from the passed script if it
// is a standard pay-to-pubkey-hash script.  It will return nil otherwise.
func extractPubKeyHash(script []byte) []byte {
	// A pay-to-pubkey-hash script is of the form:
	//  OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == OP_DATA_20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {

		return script[3:23]
	}

	return nil
}

// IsPayToPubKeyHash returns true if the script is in the standard
// pay-to-pubkey-hash (P2PKH) format, false otherwise.
func IsPayToPubKeyHash(script []byte) bool {
	return extractPubKeyHash(script) != nil
}

// extractScriptHash extracts the script hash from the passed script if it is a
// standard pay-to-script-hash script.  It will return nil otherwise.
func extractScriptHash(script []byte) []byte {
	// A pay-to-script-hash script is of the form:
	//  OP_HASH160 <20-byte scripthash> OP_EQUAL
	if len(script) == 23 &&
		script[0] == OP_HASH160 &&
		script[1] == OP_DATA_20 &&
		script[22] == OP_EQUAL {

		return script[2:22]
	}

	return nil
}

// isScriptHashScript returns whether or not the passed script is a standard
// pay-to-script-hash script.  This exact form is what triggers the BIP16
// evaluation rules.
func isScriptHashScript(script []byte) bool {
	return extractScriptHash(script) != nil
}

// IsPayToScriptHash returns true if the script is in the standard
// pay-to-script-hash (P2SH) format, false otherwise.
func IsPayToScriptHash(script []byte) bool {
	return isScriptHashScript(script)
}

// extractPubKey extracts a compressed or uncompressed public key from the
// passed script if it is a standard pay-to-pubkey script.  The key is not
// checked for being on the curve.
func extractPubKey(script []byte) []byte {
	switch {
	case len(script) == 35 && script[0] == OP_DATA_33 &&
		script[34] == OP_CHECKSIG &&
		(script[1] == 0x02 || script[1] == 0x03):

		return script[1:34]

	case len(script) == 67 && script[0] == OP_DATA_65 &&
		script[66] == OP_CHECKSIG && script[1] == 0x04:

		return script[1:66]
	}
	return nil
}

// multiSigDetails houses details extracted from a standard multisig script.
type multiSigDetails struct {
	requiredSigs int
	numPubKeys   int
	pubKeys      [][]byte
	valid        bool
}

// extractMultisigScriptDetails attempts to extract details from the passed
// script if it is a standard multisig script.  The returned details struct will
// have the valid flag set to false otherwise.
//
// A standard multisig script is of the form:
//
//	<m> <pubkey1> ... <pubkeyN> <n> OP_CHECKMULTISIG
//
// with 1 <= m <= n <= 16 and each key pushed as 33 or 65 bytes.
func extractMultisigScriptDetails(script []byte, extractPubKeys bool) multiSigDetails {
	// The smallest multisig script is one key plus three small ints and
	// the checkmultisig opcode.
	if len(script) < 37 || script[len(script)-1] != OP_CHECKMULTISIG {
		return multiSigDetails{}
	}

	tokenizer := MakeScriptTokenizer(0, script)
	if !tokenizer.Next() || !isSmallInt(tokenizer.Opcode()) {
		return multiSigDetails{}
	}
	requiredSigs := asSmallInt(tokenizer.Opcode())

	var numPubKeys int
	var pubKeys [][]byte
	for tokenizer.Next() {
		data := tokenizer.Data()
		if len(data) != 33 && len(data) != 65 {
			break
		}
		numPubKeys++
		if extractPubKeys {
			pubKeys = append(pubKeys, data)
		}
	}
	if tokenizer.Done() {
		return multiSigDetails{}
	}

	// The opcode that stopped the key loop must be the key count and it
	// must be followed only by OP_CHECKMULTISIG.
	op := tokenizer.Opcode()
	if !isSmallInt(op) || asSmallInt(op) != numPubKeys {
		return multiSigDetails{}
	}
	if requiredSigs < 1 || requiredSigs > numPubKeys {
		return multiSigDetails{}
	}
	if !tokenizer.Next() || tokenizer.Opcode() != OP_CHECKMULTISIG ||
		!tokenizer.Done() {

		return multiSigDetails{}
	}

	return multiSigDetails{
		requiredSigs: requiredSigs,
		numPubKeys:   numPubKeys,
		pubKeys:      pubKeys,
		valid:        true,
	}
}

// IsMultisigScript returns whether or not the passed script is a standard
// multisignature script.
func IsMultisigScript(script []byte) bool {
	return extractMultisigScriptDetails(script, false).valid
}

// IsNullData returns true if the passed script is a null data script, false
// otherwise.
func IsNullData(script []byte) bool {
	// A null script is of the form:
	//  OP_RETURN <optional data>
	//
	// Thus, it can either be a single OP_RETURN or an OP_RETURN followed by a
	// canonical data push up to MaxDataCarrierSize bytes.

	// The script can't possibly be a null data script if it doesn't start
	// with OP_RETURN.  Fail fast to avoid more work below.
	if len(script) < 1 || script[0] != OP_RETURN {
		return false
	}

	// Single OP_RETURN.
	if len(script) == 1 {
		return true
	}

	// OP_RETURN followed by a single canonical data push.
	tokenizer := MakeScriptTokenizer(0, script[1:])
	if !tokenizer.Next() || !tokenizer.Done() {
		return false
	}
	op, data := tokenizer.Opcode(), tokenizer.Data()
	if isSmallInt(op) {
		return true
	}
	return isCanonicalPush(op, data) && len(data) <= MaxDataCarrierSize
}

// assetMarkerIndex returns the offset of OP_EVR_ASSET in an asset-tagged
// output script, or -1 when the script is not one.
//
// An asset-tagged script is a standard P2PKH or P2SH script followed by:
//
//	OP_EVR_ASSET <payload> OP_DROP
func assetMarkerIndex(script []byte) int {
	var prefixLen int
	switch {
	case len(script) > 25 && IsPayToPubKeyHash(script[:25]):
		prefixLen = 25
	case len(script) > 23 && IsPayToScriptHash(script[:23]):
		prefixLen = 23
	default:
		return -1
	}

	rest := script[prefixLen:]
	if rest[0] != OP_EVR_ASSET || rest[len(rest)-1] != OP_DROP {
		return -1
	}

	// Exactly one push sits between the marker and the drop.
	tokenizer := MakeScriptTokenizer(0, rest[1:len(rest)-1])
	if !tokenizer.Next() || !tokenizer.Done() ||
		tokenizer.Opcode() > OP_PUSHDATA4 || len(tokenizer.Data()) == 0 {

		return -1
	}
	return prefixLen
}

// IsAssetScript returns whether the script is a P2PKH or P2SH output carrying
// an asset payload.
func IsAssetScript(script []byte) bool {
	return assetMarkerIndex(script) >= 0
}

// AssetPrefix returns the spendable P2PKH or P2SH part of an asset-tagged
// output script and the raw asset payload that follows the marker.  The
// payload is not interpreted.
func AssetPrefix(script []byte) ([]byte, []byte, error) {
	idx := assetMarkerIndex(script)
	if idx < 0 {
		return nil, nil, scriptError(ErrUnsupportedAddress,
			"script is not an asset-tagged output")
	}
	tokenizer := MakeScriptTokenizer(0, script[idx+1:len(script)-1])
	tokenizer.Next()
	return script[:idx], tokenizer.Data(), nil
}

// typeOfScript returns the type of the script being inspected from the known
// standard types.
func typeOfScript(script []byte) ScriptClass {
	switch {
	case IsPayToPubKeyHash(script):
		return PubKeyHashTy
	case IsPayToScriptHash(script):
		return ScriptHashTy
	case extractPubKey(script) != nil:
		return PubKeyTy
	case IsMultisigScript(script):
		return MultiSigTy
	case IsNullData(script):
		return NullDataTy
	case IsAssetScript(script):
		return AssetTy
	}
	return NonStandardTy
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	return typeOfScript(script)
}

// CalcMultiSigStats returns the number of public keys and signatures from
// a multi-signature transaction script.  The passed script MUST already be
// known to be a multi-signature script.
func CalcMultiSigStats(script []byte) (int, int, error) {
	details := extractMultisigScriptDetails(script, false)
	if !details.valid {
		str := fmt.Sprintf("script %x is not a multisig script", script)
		return 0, 0, scriptError(ErrNotMultisigScript, str)
	}
	return details.numPubKeys, details.requiredSigs, nil
}

// payToPubKeyHashScript creates a new script to pay a transaction
// output to a 20-byte pubkey hash. It is expected that the input is a valid
// hash.
func payToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_DUP).AddOp(OP_HASH160).
		AddData(pubKeyHash).AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
}

// payToScriptHashScript creates a new script to pay a transaction output to a
// script hash. It is expected that the input is a valid hash.
func payToScriptHashScript(scriptHash []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_HASH160).AddData(scriptHash).
		AddOp(OP_EQUAL).Script()
}

// PayToAddrScript creates a new script to pay a transaction output to a the
// specified address.
func PayToAddrScript(addr evrutil.Address) ([]byte, error) {
	const nilAddrErrStr = "unable to generate payment script for nil " +
		"address"

	switch addr := addr.(type) {
	case *evrutil.AddressPubKeyHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress,
				nilAddrErrStr)
		}
		return payToPubKeyHashScript(addr.ScriptAddress())

	case *evrutil.AddressScriptHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress,
				nilAddrErrStr)
		}
		return payToScriptHashScript(addr.ScriptAddress())
	}

	str := fmt.Sprintf("unable to generate payment script for unsupported "+
		"address type %T", addr)
	return nil, scriptError(ErrUnsupportedAddress, str)
}

// NullDataScript creates a provably-prunable script containing OP_RETURN
// followed by the passed data.  An Error with the error code ErrTooMuchNullData
// will be returned if the length of the passed data exceeds MaxDataCarrierSize.
func NullDataScript(data []byte) ([]byte, error) {
	if len(data) > MaxDataCarrierSize {
		str := fmt.Sprintf("data size %d is larger than max "+
			"allowed size %d", len(data), MaxDataCarrierSize)
		return nil, scriptError(ErrTooMuchNullData, str)
	}

	return NewScriptBuilder().AddOp(OP_RETURN).AddData(data).Script()
}

// MultiSigScript returns a valid script for a multisignature redemption where
// nRequired of the keys in pubKeys are required to have signed the transaction
// for success.  Keys appear in the script in the order given.  An Error with
// the error code ErrTooManyRequiredSigs will be returned if nRequired is larger
// than the number of keys provided, and ErrInvalidPubKeyCount if there are no
// keys or more than 16.
func MultiSigScript(pubKeys []*btcec.PublicKey, nRequired int,
	compressed bool) ([]byte, error) {

	if len(pubKeys) < 1 || len(pubKeys) > maxMultiSigKeys {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d public keys, must be between 1 and %d",
			len(pubKeys), maxMultiSigKeys)
		return nil, scriptError(ErrInvalidPubKeyCount, str)
	}
	if nRequired < 1 || nRequired > len(pubKeys) {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d required signatures when there are %d public "+
			"keys available", nRequired, len(pubKeys))
		return nil, scriptError(ErrTooManyRequiredSigs, str)
	}

	builder := NewScriptBuilder().AddInt64(int64(nRequired))
	for _, key := range pubKeys {
		builder.AddData(evrutil.PubKeyBytes(key, compressed))
	}
	builder.AddInt64(int64(len(pubKeys)))
	builder.AddOp(OP_CHECKMULTISIG)

	return builder.Script()
}

// ExtractPkScriptAddrs returns the type of script, addresses and required
// signatures associated with the passed PkScript.  Note that it only works for
// 'standard' transaction script types.  Any data such as public keys which are
// invalid are omitted from the results.  Asset-tagged outputs report the
// addresses of their spendable prefix.
func ExtractPkScriptAddrs(pkScript []byte,
	net *chaincfg.Params) (ScriptClass, []evrutil.Address, int, error) {

	scriptClass := typeOfScript(pkScript)
	script := pkScript
	if scriptClass == AssetTy {
		script = script[:assetMarkerIndex(script)]
	}

	// Check for pay-to-pubkey-hash script.
	if hash := extractPubKeyHash(script); hash != nil {
		var addrs []evrutil.Address
		addr, err := evrutil.NewAddressPubKeyHash(hash, net)
		if err == nil {
			addrs = append(addrs, addr)
		}
		return scriptClass, addrs, 1, nil
	}

	// Check for pay-to-script-hash.
	if hash := extractScriptHash(script); hash != nil {
		var addrs []evrutil.Address
		addr, err := evrutil.NewAddressScriptHashFromHash(hash, net)
		if err == nil {
			addrs = append(addrs, addr)
		}
		return scriptClass, addrs, 1, nil
	}

	// Check for pay-to-pubkey script.  The key is reported as the address
	// of its hash.
	if data := extractPubKey(script); data != nil {
		var addrs []evrutil.Address
		pk, err := btcec.ParsePubKey(data)
		if err == nil {
			addr, err := evrutil.NewAddressPubKeyHashFromPubKey(pk,
				len(data) == 33, net)
			if err == nil {
				addrs = append(addrs, addr)
			}
		}
		return scriptClass, addrs, 1, nil
	}

	// Check for multi-signature script.
	details := extractMultisigScriptDetails(script, true)
	if details.valid {
		// Convert the public keys while skipping any that are invalid.
		addrs := make([]evrutil.Address, 0, len(details.pubKeys))
		for _, pubkey := range details.pubKeys {
			pk, err := btcec.ParsePubKey(pubkey)
			if err != nil {
				continue
			}
			addr, err := evrutil.NewAddressPubKeyHashFromPubKey(pk,
				len(pubkey) == 33, net)
			if err == nil {
				addrs = append(addrs, addr)
			}
		}
		return scriptClass, addrs, details.requiredSigs, nil
	}

	// Null data transactions and nonstandard scripts have no addresses or
	// required signatures.  A script that does not parse is reported.
	if scriptClass == NonStandardTy {
		if err := checkScriptParses(pkScript); err != nil {
			return NonStandardTy, nil, 0, err
		}
	}
	return scriptClass, nil, 0, nil
}
