// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// UtxoEntry houses details about an individual unspent transaction output
// such as its value, its owning address, and the height of the block that
// created it.
//
// Entries are exclusively owned by the UtxoSet that created them and must be
// treated as immutable by callers.
type UtxoEntry struct {
	amount      btcutil.Amount
	address     string
	blockHeight int32
}

// NewUtxoEntry returns a new unspent transaction output entry with the
// provided details.  It exists so views layered on top of the ledger, such as
// a mempool resolving inputs against its own unconfirmed entries, can
// describe outputs the ledger does not know about yet.
func NewUtxoEntry(amount btcutil.Amount, address string, blockHeight int32) *UtxoEntry {
	return &UtxoEntry{
		amount:      amount,
		address:     address,
		blockHeight: blockHeight,
	}
}

// Amount returns the value of the output in satoshi.
func (entry *UtxoEntry) Amount() btcutil.Amount {
	return entry.amount
}

// Address returns the owning-address tag of the output.
func (entry *UtxoEntry) Address() string {
	return entry.address
}

// BlockHeight returns the height of the block containing the transaction the
// output came from.
func (entry *UtxoEntry) BlockHeight() int32 {
	return entry.blockHeight
}

// UtxoSet represents the ledger view of spendable outputs: a mapping from
// each unconsumed (origin transaction, output index) pair to the details of
// the output.
//
// The set is mutated only by block confirmation, which removes the outputs
// consumed by confirmed transactions and adds the outputs they create.
// Mempool admission and eviction never touch it.
//
// The set itself is not safe for concurrent access.  Per the resource model
// of the larger system, all mutations of a ledger/mempool pair are serialized
// by the caller.
type UtxoSet struct {
	entries map[wire.OutPoint]*UtxoEntry
}

// NewUtxoSet returns a new empty ledger view.
func NewUtxoSet() *UtxoSet {
	return &UtxoSet{
		entries: make(map[wire.OutPoint]*UtxoEntry),
	}
}

// LookupEntry returns information about a given spendable output according to
// the ledger.  It will return nil if the output does not exist in the set or
// has already been consumed.
func (u *UtxoSet) LookupEntry(outpoint wire.OutPoint) *UtxoEntry {
	return u.entries[outpoint]
}

// AddTxOuts adds all outputs of the passed transaction to the set.  It is
// used to seed the ledger with coinbase-style outputs that have no inputs
// resolved against it.
func (u *UtxoSet) AddTxOuts(tx *Tx, blockHeight int32) {
	prevOut := wire.OutPoint{Hash: *tx.Hash()}
	for txOutIdx, txOut := range tx.MsgTx().TxOut {
		prevOut.Index = uint32(txOutIdx)
		u.entries[prevOut] = &UtxoEntry{
			amount:      btcutil.Amount(txOut.Value),
			address:     txOut.Address,
			blockHeight: blockHeight,
		}
	}
}

// ConnectTransaction updates the set by consuming every output referenced by
// the inputs of the passed transaction and adding every output it creates.
//
// The update is atomic: when any input does not resolve to an unspent entry,
// an ErrMissingTxOut rule error is returned and the set is left unchanged.
func (u *UtxoSet) ConnectTransaction(tx *Tx, blockHeight int32) error {
	// Verify every referenced output exists before consuming anything so
	// a failure cannot leave the set partially updated.
	for _, txIn := range tx.MsgTx().TxIn {
		if _, exists := u.entries[txIn.PreviousOutPoint]; !exists {
			str := fmt.Sprintf("output %v referenced from "+
				"transaction %v does not exist or has already "+
				"been spent", txIn.PreviousOutPoint, tx.Hash())
			return ruleError(ErrMissingTxOut, str)
		}
	}

	for _, txIn := range tx.MsgTx().TxIn {
		delete(u.entries, txIn.PreviousOutPoint)
	}
	u.AddTxOuts(tx, blockHeight)

	return nil
}

// Balance returns the total value of all unspent outputs owned by the given
// address tag.
func (u *UtxoSet) Balance(address string) btcutil.Amount {
	var total btcutil.Amount
	for _, entry := range u.entries {
		if entry.address == address {
			total += entry.amount
		}
	}
	return total
}

// TotalValue returns the combined value of every unspent output in the set.
func (u *UtxoSet) TotalValue() btcutil.Amount {
	var total btcutil.Amount
	for _, entry := range u.entries {
		total += entry.amount
	}
	return total
}

// Count returns the number of unspent outputs in the set.
func (u *UtxoSet) Count() int {
	return len(u.entries)
}

// Entries returns the underlying map of outpoints to unspent outputs.  The
// returned map is the internal state of the set and must not be mutated.
func (u *UtxoSet) Entries() map[wire.OutPoint]*UtxoEntry {
	return u.entries
}
