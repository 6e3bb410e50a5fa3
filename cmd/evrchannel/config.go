// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/evrmore/evrlib/chaincfg"
	"github.com/evrmore/evrlib/evrutil"
	"github.com/evrmore/evrlib/internal/log"
	"github.com/evrmore/evrlib/paychan"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultNetwork    = "mainnet"
	defaultDebugLevel = "info"
	defaultLogFile    = "evrchannel.log"

	// defaultBlocks is about one day of blocks.
	defaultBlocks = 144

	// defaultHeightDelta is about one week of blocks.
	defaultHeightDelta = 1008
)

// config defines the configuration options for evrchannel.
//
// See loadConfig for details on the configuration load process.
type config struct {
	Network       string `short:"n" long:"network" description:"Network to derive addresses for {mainnet, testnet, regtest}"`
	SenderWIF     string `short:"s" long:"sender" description:"WIF encoded private key of the funding party" required:"true"`
	ReceiverWIF   string `short:"r" long:"receiver" description:"WIF encoded private key of the receiving party" required:"true"`
	Blocks        uint32 `short:"b" long:"blocks" description:"Relative timeout of the renewable channel in blocks"`
	CurrentHeight uint32 `long:"currentheight" description:"Current block height, used when --height is not given"`
	Height        uint32 `long:"height" description:"Absolute block height at which the non-renewable channel can be refunded"`
	Explain       bool   `short:"e" long:"explain" description:"Describe each redeem script branch by branch"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir        string `long:"logdir" description:"Directory to also write a rotating log file to"`
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`

	params   *chaincfg.Params
	sender   *evrutil.WIF
	receiver *evrutil.WIF
}

// decodeWIF decodes a WIF key and makes sure it belongs to net.
func decodeWIF(name, encoded string, net *chaincfg.Params) (*evrutil.WIF, error) {
	wif, err := evrutil.DecodeWIF(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid %s key: %w", name, err)
	}
	if !wif.IsForNet(net) {
		return nil, fmt.Errorf("the %s key is not for network %s", name,
			net.Name)
	}
	return wif, nil
}

// loadConfig initializes and parses the config using the passed command line
// arguments.  The returned config has its network parameters and keys
// resolved.
func loadConfig(args []string) (*config, error) {
	// Default config.
	cfg := config{
		Network:    defaultNetwork,
		Blocks:     defaultBlocks,
		DebugLevel: defaultDebugLevel,
	}

	// Pre-parse so --version works without the required options.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default&^flags.PrintErrors)
	preParser.ParseArgs(args)
	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, err
	}

	funcName := "loadConfig"
	params, err := chaincfg.ParamsByName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("%s: unknown network %q: %w", funcName,
			cfg.Network, err)
	}
	cfg.params = params

	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}

	if cfg.Blocks == 0 || cfg.Blocks > paychan.MaxRelativeBlocks {
		return nil, fmt.Errorf("%s: --blocks must be in [1, %d]", funcName,
			paychan.MaxRelativeBlocks)
	}
	if cfg.Height == 0 {
		if cfg.CurrentHeight > paychan.MaxAbsoluteHeight-defaultHeightDelta {
			return nil, fmt.Errorf("%s: --currentheight must be below "+
				"%d when --height is not given", funcName,
				uint32(paychan.MaxAbsoluteHeight-defaultHeightDelta)+1)
		}
		cfg.Height = cfg.CurrentHeight + defaultHeightDelta
	}
	if cfg.Height > paychan.MaxAbsoluteHeight {
		return nil, fmt.Errorf("%s: --height must be below %d", funcName,
			uint32(paychan.MaxAbsoluteHeight)+1)
	}

	cfg.sender, err = decodeWIF("sender", cfg.SenderWIF, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}
	cfg.receiver, err = decodeWIF("receiver", cfg.ReceiverWIF, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}

	if cfg.LogDir != "" {
		logFile := filepath.Join(cleanAndExpandPath(cfg.LogDir),
			defaultLogFile)
		if err := log.InitLogRotator(logFile); err != nil {
			return nil, fmt.Errorf("%s: %w", funcName, err)
		}
	}

	return &cfg, nil
}

// cleanAndExpandPath expands environment variables and a leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
