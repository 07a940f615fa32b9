// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"iter"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// orderedEntries returns every live entry in the canonical priority order:
// descending ancestor fee rate with ascending transaction id as the tie
// break, adjusted so that no entry is emitted before its in-pool ancestors.
//
// The topological adjustment matters for fee-bumped packages.  A child paying
// for its parent shares an ancestor rate that can exceed the parent's own,
// which would place the child first under a pure rate sort even though it is
// unmineable without the parent.  Deferring each entry until its ancestors
// have been emitted keeps every prefix of the order connected, which is what
// makes block selection below a simple prefix walk.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) orderedEntries() []*poolEntry {
	entries := make([]*poolEntry, 0, len(mp.pool))
	for _, entry := range mp.pool {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return rateLess(entries[j], entries[i])
	})

	ordered := make([]*poolEntry, 0, len(entries))
	emitted := make(map[chainhash.Hash]struct{}, len(entries))
	ready := func(e *poolEntry) bool {
		for parentHash := range e.parents {
			if _, ok := emitted[parentHash]; !ok {
				return false
			}
		}
		return true
	}

	// Entries are deferred in encounter order, which is rate order, so a
	// released entry always outranks everything still unvisited and can be
	// emitted immediately.
	var deferred []*poolEntry
	emit := func(e *poolEntry) {
		ordered = append(ordered, e)
		emitted[*e.tx.Hash()] = struct{}{}
	}
	for _, entry := range entries {
		if !ready(entry) {
			deferred = append(deferred, entry)
			continue
		}
		emit(entry)

		// Emitting an entry can release deferred descendants, and
		// releasing those can release more, so re-scan until a pass
		// releases nothing.
		for released := true; released && len(deferred) > 0; {
			released = false
			remaining := deferred[:0]
			for _, d := range deferred {
				if ready(d) {
					emit(d)
					released = true
				} else {
					remaining = append(remaining, d)
				}
			}
			deferred = remaining
		}
	}

	return ordered
}

// TxDescs returns a slice of descriptors for all the transactions in the
// pool, in the canonical priority order.  The descriptors are to be treated
// as read only.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxDescs() []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	entries := mp.orderedEntries()
	descs := make([]*TxDesc, len(entries))
	for i, entry := range entries {
		descs[i] = entry.desc()
	}
	return descs
}

// TxHashes returns the ids of all the transactions in the pool, in the
// canonical priority order.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxHashes() []*chainhash.Hash {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	entries := mp.orderedEntries()
	hashes := make([]*chainhash.Hash, len(entries))
	for i, entry := range entries {
		hashes[i] = entry.tx.Hash()
	}
	return hashes
}

// OrderedTxDescs returns an iterator over descriptors of the live entries in
// the canonical priority order.  The order is captured when the iterator is
// invoked and is unaffected by later mutations of the pool, so the sequence
// may be ranged over more than once and yields the same snapshot each time.
//
// This function is safe for concurrent access.
func (mp *TxPool) OrderedTxDescs() iter.Seq[*TxDesc] {
	descs := mp.TxDescs()
	return func(yield func(*TxDesc) bool) {
		for _, desc := range descs {
			if !yield(desc) {
				return
			}
		}
	}
}

// SelectForBlock returns descriptors for the highest-priority transactions
// whose combined virtual size fits within the passed byte budget, in the
// canonical priority order.
//
// Selection walks the canonical order and stops at the first transaction
// that does not fit rather than skipping past it.  Skipping would admit a
// transaction whose in-pool ancestors were cut, so stopping is what keeps
// the selection a connected prefix: every selected transaction has all of
// its unconfirmed ancestors selected before it.
//
// This function is safe for concurrent access.
func (mp *TxPool) SelectForBlock(budgetBytes int64) []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	var selected []*TxDesc
	var usedBytes int64
	for _, entry := range mp.orderedEntries() {
		if usedBytes+entry.vSize > budgetBytes {
			break
		}
		selected = append(selected, entry.desc())
		usedBytes += entry.vSize
	}
	return selected
}
