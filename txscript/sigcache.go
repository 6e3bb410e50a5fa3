// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
)

// sigCacheEntry represents an entry in the SigCache.  Entries are the 3-tuple
// (sigHash, sig, pubKey) in raw serialized form so they can be used as map
// keys.
type sigCacheEntry struct {
	sigHash chainhash.Hash
	sig     string
	pubKey  string
}

// SigCache implements an ECDSA signature verification cache with a least
// recently used eviction policy.  Only valid signatures will be added to the
// cache.  Checking a signature that is already cached skips the elliptic
// curve work entirely, which matters when the same transaction is verified
// more than once.
//
// A SigCache is safe for concurrent access.  Engines accept a nil *SigCache,
// in which case every signature is verified directly.
type SigCache struct {
	validSigs lru.Cache
}

// NewSigCache creates and initializes a new instance of SigCache.  Its sole
// parameter 'maxEntries' represents the maximum number of entries allowed to
// exist in the SigCache at any particular moment.  The least recently used
// entry is evicted to make room for new entries that would cause the number
// of entries in the cache to exceed the max.
func NewSigCache(maxEntries uint) *SigCache {
	return &SigCache{
		validSigs: lru.NewCache(maxEntries),
	}
}

// Exists returns true if an existing entry of 'sig' over 'sigHash' for public
// key 'pubKey' is found within the SigCache.  Otherwise, false is returned.
//
// NOTE: This function is safe for concurrent access.
func (s *SigCache) Exists(sigHash chainhash.Hash, sig, pubKey []byte) bool {
	return s.validSigs.Contains(sigCacheEntry{
		sigHash: sigHash,
		sig:     string(sig),
		pubKey:  string(pubKey),
	})
}

// Add adds an entry for a signature over 'sigHash' under public key 'pubKey'
// to the signature cache.  In the event that the SigCache is 'full', the
// least recently used entry is evicted in order to make space for the new
// entry.
//
// NOTE: This function is safe for concurrent access.
func (s *SigCache) Add(sigHash chainhash.Hash, sig, pubKey []byte) {
	entry := sigCacheEntry{
		sigHash: sigHash,
		sig:     string(sig),
		pubKey:  string(pubKey),
	}
	s.validSigs.Add(entry)

	log.Tracef("Added signature cache entry for sighash %v", sigHash)
}
