// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/txmempool/chain"
)

// TxDesc is a descriptor containing a transaction in the mempool along with
// additional metadata.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *chain.Tx

	// Added is the time when the entry was added to the pool.
	Added time.Time

	// Height is the block height when the entry was added to the pool.
	Height int32

	// Fee is the total fee the transaction associated with the entry
	// pays.
	Fee btcutil.Amount

	// VSize is the virtual size of the transaction.
	VSize int64

	// AncestorFee is the fee of the transaction combined with the fees of
	// all its unconfirmed ancestors currently in the pool.
	AncestorFee btcutil.Amount

	// AncestorSize is the virtual size of the transaction combined with
	// the sizes of all its unconfirmed ancestors currently in the pool.
	AncestorSize int64
}

// FeePerKB returns the fee of the transaction in satoshi per 1000 bytes of
// its virtual size.
func (d *TxDesc) FeePerKB() int64 {
	return int64(d.Fee) * 1000 / d.VSize
}

// AncestorFeePerKB returns the ancestor fee rate of the transaction in
// satoshi per 1000 bytes: the combined fee of the transaction and all its
// unconfirmed ancestors over their combined virtual size.  This is the
// priority metric every ordering in the pool is keyed on.
func (d *TxDesc) AncestorFeePerKB() int64 {
	return int64(d.AncestorFee) * 1000 / d.AncestorSize
}

// poolEntry wraps a live transaction with its direct dependency links and the
// derived ancestor aggregates.
//
// Entries reference each other exclusively through the parents and children
// maps keyed by transaction id, forming the in-pool dependency DAG.  A parent
// link exists only while the parent is itself a live entry: entries whose
// inputs are all confirmed have no parents.
type poolEntry struct {
	tx     *chain.Tx
	added  time.Time
	height int32
	fee    btcutil.Amount
	vSize  int64

	// parents holds the live entries this transaction directly spends
	// outputs of, and children holds the live entries directly spending
	// outputs of this transaction.
	parents  map[chainhash.Hash]*poolEntry
	children map[chainhash.Hash]*poolEntry

	// ancestorFee and ancestorSize are the fee and virtual size of this
	// transaction combined with those of its full unconfirmed ancestor
	// closure.  They are recomputed on every structural change affecting
	// the entry rather than adjusted incrementally.
	ancestorFee  btcutil.Amount
	ancestorSize int64
}

// desc materializes the public descriptor for the entry.
func (e *poolEntry) desc() *TxDesc {
	return &TxDesc{
		Tx:           e.tx,
		Added:        e.added,
		Height:       e.height,
		Fee:          e.fee,
		VSize:        e.vSize,
		AncestorFee:  e.ancestorFee,
		AncestorSize: e.ancestorSize,
	}
}

// rateLess reports whether entry a has a strictly lower ancestor fee rate
// than entry b, falling back to comparing transaction ids so the total order
// over any set of entries is deterministic.  Rates are compared by cross
// multiplication to avoid rounding.
func rateLess(a, b *poolEntry) bool {
	ra := int64(a.ancestorFee) * b.ancestorSize
	rb := int64(b.ancestorFee) * a.ancestorSize
	if ra != rb {
		return ra < rb
	}

	// Higher txid sorts as lower priority so that ascending-txid is the
	// tie break of the descending-rate order.
	return a.tx.Hash().String() > b.tx.Hash().String()
}

// ancestors returns the full unconfirmed ancestor closure of the passed
// entry, not including the entry itself.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) ancestors(entry *poolEntry) map[chainhash.Hash]*poolEntry {
	closure := make(map[chainhash.Hash]*poolEntry)
	stack := make([]*poolEntry, 0, len(entry.parents))
	for _, parent := range entry.parents {
		stack = append(stack, parent)
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hash := *node.tx.Hash()
		if _, seen := closure[hash]; seen {
			continue
		}
		closure[hash] = node

		for _, parent := range node.parents {
			stack = append(stack, parent)
		}
	}
	return closure
}

// descendants returns the full descendant closure of the passed entry, not
// including the entry itself.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) descendants(entry *poolEntry) map[chainhash.Hash]*poolEntry {
	closure := make(map[chainhash.Hash]*poolEntry)
	stack := make([]*poolEntry, 0, len(entry.children))
	for _, child := range entry.children {
		stack = append(stack, child)
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hash := *node.tx.Hash()
		if _, seen := closure[hash]; seen {
			continue
		}
		closure[hash] = node

		for _, child := range node.children {
			stack = append(stack, child)
		}
	}
	return closure
}

// updateAncestorStats recomputes the ancestor fee and size aggregates of the
// passed entry from its current ancestor closure.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) updateAncestorStats(entry *poolEntry) {
	entry.ancestorFee = entry.fee
	entry.ancestorSize = entry.vSize
	for _, ancestor := range mp.ancestors(entry) {
		entry.ancestorFee += ancestor.fee
		entry.ancestorSize += ancestor.vSize
	}
}

// updateDescendantStats recomputes the ancestor aggregates of every
// descendant of the passed entry.  It is invoked after a structural change
// that alters the entry's ancestry, such as one of its ancestors confirming.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) updateDescendantStats(entry *poolEntry) {
	for _, descendant := range mp.descendants(entry) {
		mp.updateAncestorStats(descendant)
	}
}

// collectRemovalSet returns the passed entry together with its full
// descendant closure in topological order (parents before children).  It is
// the removal set of a cascading removal rooted at the entry.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) collectRemovalSet(entry *poolEntry) []chainhash.Hash {
	var result []chainhash.Hash
	seen := make(map[chainhash.Hash]struct{})

	var collect func(e *poolEntry)
	collect = func(e *poolEntry) {
		hash := *e.tx.Hash()
		if _, exists := seen[hash]; exists {
			return
		}
		seen[hash] = struct{}{}

		result = append(result, hash)
		for _, child := range e.children {
			collect(child)
		}
	}
	collect(entry)

	return result
}

// lowestEntry returns the live entry with the lowest ancestor fee rate, or
// nil when the pool is empty.  Ties are broken toward the higher transaction
// id, making the eviction order the exact reverse of the selection order.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) lowestEntry() *poolEntry {
	var lowest *poolEntry
	for _, entry := range mp.pool {
		if lowest == nil || rateLess(entry, lowest) {
			lowest = entry
		}
	}
	return lowest
}
