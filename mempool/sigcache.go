// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
)

// sigCacheEntry identifies a single verified transaction input.  Because the
// transaction id commits to the full contents of the transaction, a cached
// (id, input index) pair can never refer to a different signature than the
// one originally verified.
type sigCacheEntry struct {
	txHash chainhash.Hash
	inIdx  uint32
}

// SigCache implements a bounded cache of successful signature predicate
// evaluations, eliminating repeat predicate calls when the same transaction
// is validated more than once, such as a replacement candidate that is first
// rejected and later resubmitted with a higher fee on an unchanged input.
//
// Only successful evaluations are cached.  Failures are not, both because
// they are expected to be rare and so a misbehaving predicate cannot poison
// future admissions.
type SigCache struct {
	cache lru.Cache
}

// NewSigCache returns an initialized signature cache that holds up to
// maxEntries verified inputs, evicting the least recently used beyond that.
func NewSigCache(maxEntries uint) *SigCache {
	return &SigCache{cache: lru.NewCache(maxEntries)}
}

// Exists returns whether the passed input of the passed transaction has a
// cached successful verification.
//
// This function is safe for concurrent access.
func (s *SigCache) Exists(txHash chainhash.Hash, inIdx uint32) bool {
	return s.cache.Contains(sigCacheEntry{txHash: txHash, inIdx: inIdx})
}

// Add caches a successful verification of the passed input of the passed
// transaction.
//
// This function is safe for concurrent access.
func (s *SigCache) Add(txHash chainhash.Hash, inIdx uint32) {
	s.cache.Add(sigCacheEntry{txHash: txHash, inIdx: inIdx})
}
