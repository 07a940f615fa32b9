// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/txmempool/chain"
)

// findConflicts returns the live entries that spend one or more of the same
// outputs as the passed transaction.  Only direct conflicts are returned;
// the descendant closure is expanded by validateReplacement.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) findConflicts(tx *chain.Tx) map[chainhash.Hash]*poolEntry {
	conflicts := make(map[chainhash.Hash]*poolEntry)
	for _, txIn := range tx.MsgTx().TxIn {
		if entry, exists := mp.outpoints[txIn.PreviousOutPoint]; exists {
			conflicts[*entry.tx.Hash()] = entry
		}
	}
	return conflicts
}

// conflictClosure expands the passed direct conflicts to the minimal
// conflicting set: the conflicting entries together with their full
// descendant closures, every one of which must be evicted for the candidate
// to take their place.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) conflictClosure(
	conflicts map[chainhash.Hash]*poolEntry) map[chainhash.Hash]*poolEntry {

	closure := make(map[chainhash.Hash]*poolEntry, len(conflicts))
	for hash, entry := range conflicts {
		closure[hash] = entry
		for descHash, descendant := range mp.descendants(entry) {
			closure[descHash] = descendant
		}
	}
	return closure
}

// validateReplacement determines whether the candidate transaction is a
// valid replacement for the live entries it conflicts with.  The rules
// enforced are:
//
//  1. The full conflicting closure must not exceed the configured maximum
//     number of evictions.
//  2. The candidate must not spend an output created by any member of the
//     closure, since that output would cease to exist the moment the
//     closure is evicted.
//  3. The candidate must not introduce a new unconfirmed ancestor: each of
//     its inputs must either be confirmed or already spent-from by one of
//     the direct conflicts.
//  4. The candidate's absolute fee must exceed the combined absolute fees
//     of the closure.
//  5. The excess must meet the configured minimum fee increment so the bump
//     covers the replacement's own relay cost.
//
// On success the full conflicting closure is returned so the caller can
// evict it and insert the candidate atomically.  On failure a RuleError
// describing the violated rule is returned and nothing is modified.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) validateReplacement(tx *chain.Tx, fee btcutil.Amount,
	conflicts map[chainhash.Hash]*poolEntry) (map[chainhash.Hash]*poolEntry, error) {

	txHash := tx.Hash()
	closure := mp.conflictClosure(conflicts)

	if len(closure) > mp.cfg.Policy.MaxReplacementEvictions {
		str := fmt.Sprintf("replacement %v evicts %d transactions "+
			"which is more than the max allowed of %d", txHash,
			len(closure), mp.cfg.Policy.MaxReplacementEvictions)
		return nil, txRuleError(ErrTooManyEvictions, str)
	}

	// The candidate cannot both evict an entry and depend on it.
	for _, txIn := range tx.MsgTx().TxIn {
		parentHash := txIn.PreviousOutPoint.Hash
		if _, spendsEvicted := closure[parentHash]; spendsEvicted {
			str := fmt.Sprintf("replacement %v spends an output "+
				"of conflicting transaction %v", txHash,
				parentHash)
			return nil, txRuleError(ErrReplacementSpendsConflict, str)
		}
	}

	// Collect the unconfirmed transactions the direct conflicts already
	// spend from.  The candidate may only depend on those: resolving the
	// contested outputs must not graft the candidate onto new unconfirmed
	// ancestry the evicted entries never had.
	conflictParents := make(map[chainhash.Hash]struct{})
	for _, conflict := range conflicts {
		for parentHash := range conflict.parents {
			conflictParents[parentHash] = struct{}{}
		}
	}
	for _, txIn := range tx.MsgTx().TxIn {
		parentHash := txIn.PreviousOutPoint.Hash
		if _, exists := mp.pool[parentHash]; !exists {
			// Confirmed input.
			continue
		}
		if _, exists := conflictParents[parentHash]; !exists {
			str := fmt.Sprintf("replacement %v spends new "+
				"unconfirmed input %v not found in conflicting "+
				"transactions", txHash, parentHash)
			return nil, txRuleError(ErrNewUnconfirmedInput, str)
		}
	}

	// The candidate must pay for the entire closure it evicts, not just
	// the entries it directly conflicts with.
	var closureFee btcutil.Amount
	for _, member := range closure {
		closureFee += member.fee
	}
	if fee <= closureFee {
		str := fmt.Sprintf("replacement %v has an absolute fee of %d "+
			"which is not greater than the %d paid by the %d "+
			"transactions it replaces", txHash, fee, closureFee,
			len(closure))
		return nil, txRuleError(ErrInsufficientReplacementFee, str)
	}

	// The fee bump must additionally cover the configured increment, or
	// when no increment is configured, the relay cost of the replacement
	// itself at the minimum relay fee.
	increment := int64(mp.cfg.Policy.MinReplacementFeeIncrement)
	if increment == 0 {
		increment = calcMinRequiredTxRelayFee(GetTxVirtualSize(tx),
			mp.cfg.Policy.MinRelayTxFee)
	}
	if int64(fee-closureFee) < increment {
		str := fmt.Sprintf("replacement %v pays %d more than the "+
			"transactions it replaces which is less than the "+
			"required fee increment of %d", txHash, fee-closureFee,
			increment)
		return nil, txRuleError(ErrInsufficientFeeIncrement, str)
	}

	return closure, nil
}
