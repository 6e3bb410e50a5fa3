// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"errors"
	"sync"
)

// DefaultMessageMagic is the prefix every Evrmore network uses to domain
// separate signed messages from transactions.
const DefaultMessageMagic = "Evrmore Signed Message:\n"

// Params defines the values an Evrmore network needs for encoding addresses,
// private keys, and signed messages.  A Params value is never changed after
// it has been registered.
type Params struct {
	// Name is a human-readable identifier for the network.
	Name string

	// PubKeyHashAddrID is the version byte of pay-to-pubkey-hash
	// addresses.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the version byte of pay-to-script-hash
	// addresses.
	ScriptHashAddrID byte

	// PrivateKeyID is the version byte of WIF encoded private keys.
	PrivateKeyID byte

	// MessageMagic prefixes messages before they are hashed for signing.
	MessageMagic string
}

var (
	// ErrDuplicateNet describes an error where the parameters for a
	// network could not be set due to the network already being a standard
	// network or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate Evrmore network")

	// ErrUnknownNet describes an error where the parameters for a network
	// were requested by a name that is not registered.
	ErrUnknownNet = errors.New("unknown Evrmore network")
)

// registry holds every known network.  Lookups are frequent and registration
// is rare, so it is guarded by a read/write mutex.
var registry = struct {
	sync.RWMutex
	byName           map[string]*Params
	pubKeyHashAddrID map[byte]struct{}
	scriptHashAddrID map[byte]struct{}
}{
	byName:           make(map[string]*Params),
	pubKeyHashAddrID: make(map[byte]struct{}),
	scriptHashAddrID: make(map[byte]struct{}),
}

// Register registers the network parameters for an Evrmore network.  This may
// error with ErrDuplicateNet if the network is already registered (either
// due to a previous Register call, or the network being one of the default
// networks).
//
// Network parameters should be registered into this package by a main package
// as early as possible.  Then, library packages may look up networks or
// network parameters based on inputs and work regardless of the network being
// standard or not.
func Register(params *Params) error {
	registry.Lock()
	defer registry.Unlock()

	if _, ok := registry.byName[params.Name]; ok {
		return ErrDuplicateNet
	}
	registry.byName[params.Name] = params
	registry.pubKeyHashAddrID[params.PubKeyHashAddrID] = struct{}{}
	registry.scriptHashAddrID[params.ScriptHashAddrID] = struct{}{}
	return nil
}

// mustRegister performs the same function as Register except it panics if
// there is an error.  This should only be called from package init
// functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

// ParamsByName returns the registered parameters for the named network.
// ErrUnknownNet is returned for any name that was never registered.
func ParamsByName(name string) (*Params, error) {
	registry.RLock()
	params, ok := registry.byName[name]
	registry.RUnlock()
	if !ok {
		return nil, ErrUnknownNet
	}
	return params, nil
}

// IsPubKeyHashAddrID returns whether the id is an identifier known to prefix a
// pay-to-pubkey-hash address on any default or registered network.  This is
// used when decoding an address string into a specific address type.  It is
// up to the caller to check both this and IsScriptHashAddrID and decide
// whether an address is a pubkey hash address, script hash address, neither,
// or undeterminable (if both return true).
func IsPubKeyHashAddrID(id byte) bool {
	registry.RLock()
	_, ok := registry.pubKeyHashAddrID[id]
	registry.RUnlock()
	return ok
}

// IsScriptHashAddrID returns whether the id is an identifier known to prefix a
// pay-to-script-hash address on any default or registered network.
func IsScriptHashAddrID(id byte) bool {
	registry.RLock()
	_, ok := registry.scriptHashAddrID[id]
	registry.RUnlock()
	return ok
}

func init() {
	mustRegister(&MainNetParams)
	mustRegister(&TestNetParams)
	mustRegister(&RegressionNetParams)
}
