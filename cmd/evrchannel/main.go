// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// evrchannel derives the redeem scripts and funding addresses of a renewable
// and a non-renewable payment channel between two keys.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/evrmore/evrlib/evrutil"
	"github.com/evrmore/evrlib/internal/log"
	"github.com/evrmore/evrlib/internal/version"
	"github.com/evrmore/evrlib/paychan"
	flags "github.com/jessevdk/go-flags"
)

const appName = "evrchannel"

// keyAddress returns the pay-to-pubkey-hash address of a WIF key.
func keyAddress(wif *evrutil.WIF, cfg *config) (string, error) {
	addr, err := evrutil.NewAddressPubKeyHashFromPubKey(wif.PrivKey.PubKey(),
		wif.CompressPubKey, cfg.params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// writeChannel derives one channel and writes its description to w.
func writeChannel(w io.Writer, cfg *config, kind paychan.Kind,
	timeout uint32) error {

	c, err := paychan.New(kind, cfg.sender.SerializePubKey(),
		cfg.receiver.SerializePubKey(), timeout)
	if err != nil {
		return err
	}
	addr, err := c.Address(cfg.params)
	if err != nil {
		return err
	}
	log.MainLog.Infof("Derived %v channel %s", kind, addr.EncodeAddress())

	fmt.Fprintf(w, "%v channel\n", kind)
	fmt.Fprintf(w, "  address:       %s\n", addr.EncodeAddress())
	fmt.Fprintf(w, "  redeem script: %x\n", c.RedeemScript())
	if kind == paychan.Renewable {
		fmt.Fprintf(w, "  refund after:  %d blocks\n", timeout)
	} else {
		fmt.Fprintf(w, "  refund at:     block %d\n", timeout)
	}

	if cfg.Explain {
		text, err := paychan.ExplainScript(c.RedeemScript())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s", text)
	}
	fmt.Fprintln(w)
	return nil
}

// run writes both channels for the loaded configuration to w.
func run(w io.Writer, cfg *config) error {
	senderAddr, err := keyAddress(cfg.sender, cfg)
	if err != nil {
		return err
	}
	receiverAddr, err := keyAddress(cfg.receiver, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "network:  %s\n", cfg.params.Name)
	fmt.Fprintf(w, "sender:   %s\n", senderAddr)
	fmt.Fprintf(w, "receiver: %s\n\n", receiverAddr)

	if err := writeChannel(w, cfg, paychan.Renewable, cfg.Blocks); err != nil {
		return err
	}
	return writeChannel(w, cfg, paychan.NonRenewable, cfg.Height)
}

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	defer func() {
		if log.LogRotator != nil {
			log.LogRotator.Close()
		}
	}()

	if cfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		return nil
	}

	return run(os.Stdout, cfg)
}

func main() {
	if err := realMain(); err != nil {
		// go-flags has already reported its own errors.
		var flagErr *flags.Error
		if !errors.As(err, &flagErr) {
			fmt.Fprintln(os.Stderr, err)
		} else if flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
