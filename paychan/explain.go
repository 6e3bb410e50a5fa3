// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package paychan

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/evrmore/evrlib/txscript"
)

// ExplainScript describes a channel redeem script in human-readable form: its
// hex encoding, size, disassembly, and what each branch allows.  Scripts that
// are not channel scripts return ErrNotChannelScript.
func ExplainScript(script []byte) (string, error) {
	c, err := Decode(script)
	if err != nil {
		return "", err
	}
	disasm, err := txscript.DisasmString(script)
	if err != nil {
		return "", err
	}

	var lock, lockOp string
	switch c.kind {
	case Renewable:
		lock = fmt.Sprintf("%d blocks after the funding output confirms",
			c.timeout)
		lockOp = "CHECKSEQUENCEVERIFY"
	default:
		lock = fmt.Sprintf("block height %d", c.timeout)
		lockOp = "CHECKLOCKTIMEVERIFY"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Payment channel (%v)\n", c.kind)
	fmt.Fprintf(&b, "Redeem script: %s\n", hex.EncodeToString(script))
	fmt.Fprintf(&b, "Size: %d bytes\n", len(script))
	fmt.Fprintf(&b, "Disassembly: %s\n", disasm)
	b.WriteString("\n")
	b.WriteString("IF\n")
	b.WriteString("    2 <sender> <receiver> 2 CHECKMULTISIG\n")
	b.WriteString("        both parties close the channel at any time\n")
	b.WriteString("ELSE\n")
	fmt.Fprintf(&b, "    %d %s DROP <sender> CHECKSIG\n", c.timeout, lockOp)
	fmt.Fprintf(&b, "        the sender alone reclaims the funds from %s\n",
		lock)
	b.WriteString("ENDIF\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sender:   %x\n", c.sender)
	fmt.Fprintf(&b, "Receiver: %x\n", c.receiver)

	return b.String(), nil
}
