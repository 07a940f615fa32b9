// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txmempool/chain"
)

// UnminedHeight is the height used for the "block" height field of the
// synthetic ledger entries created for outputs of unconfirmed pool entries.
const UnminedHeight int32 = 0x7fffffff

// Config is a descriptor containing the memory pool configuration.
type Config struct {
	// Policy defines the various mempool configuration options related to
	// policy.
	Policy Policy

	// FetchUtxoEntry defines the function to use to fetch unspent
	// transaction output information from the ledger.  It must return nil
	// for outputs that do not exist or have been consumed by a confirmed
	// transaction.
	FetchUtxoEntry func(wire.OutPoint) *chain.UtxoEntry

	// ConnectTransaction defines the function to use to commit a
	// confirmed transaction to the ledger: consume the outputs referenced
	// by its inputs and create the outputs it defines.
	ConnectTransaction func(*chain.Tx) error

	// BestHeight defines the function to use to access the block height
	// of the current best chain.
	BestHeight func() int32

	// VerifySignature defines the predicate consulted for each
	// transaction input during validation.  It receives the transaction,
	// the index of the input being checked, and the resolved output the
	// input spends.  A nil predicate treats every input as validly
	// signed.
	VerifySignature func(tx *chain.Tx, inIdx int, utxo *chain.UtxoEntry) bool

	// SigCache defines a cache of successful signature predicate
	// evaluations to use.  This can be nil if the caller does not want to
	// memoize predicate calls.
	SigCache *SigCache
}

// ProcessResult describes the effects of submitting a transaction to the
// pool.
type ProcessResult struct {
	// AcceptedTxns includes the submitted transaction when it was
	// admitted, along with any previously orphaned transactions that
	// became acceptable as a result.
	AcceptedTxns []*TxDesc

	// ReplacedTxns holds the ids of the live entries that were evicted by
	// the submitted transaction through the replacement rules, including
	// their descendants.
	ReplacedTxns []chainhash.Hash

	// EvictedTxns holds the ids of the live entries the capacity manager
	// removed to bring the pool back under its byte budget after the
	// admission.
	EvictedTxns []chainhash.Hash

	// IsOrphan indicates the transaction was not admitted because one or
	// more of its inputs do not resolve, and it was instead retained in
	// the orphan pool awaiting its missing parents.
	IsOrphan bool
}

// TxPool is used as a source of transactions that need to be mined into
// blocks.  It is safe for concurrent access from multiple goroutines, with
// every mutating operation serialized behind a single write lock per the
// single-logical-owner model: no observer can see a partially applied
// admission, eviction, replacement, or confirmation.
type TxPool struct {
	// The following variables must only be used atomically.
	lastUpdated int64 // last time pool was updated

	mtx       sync.RWMutex
	cfg       Config
	pool      map[chainhash.Hash]*poolEntry
	outpoints map[wire.OutPoint]*poolEntry
	poolBytes int64

	orphans       map[chainhash.Hash]*orphanTx
	orphansByPrev map[wire.OutPoint]map[chainhash.Hash]*chain.Tx

	// nextExpireScan is the time after which the orphan pool will be
	// scanned in order to evict orphans.  This is NOT a hard deadline as
	// the scan will only run when an orphan is added to the pool as
	// opposed to on an unconditional timer.
	nextExpireScan time.Time
}

// New returns a new memory pool for validating and storing standalone
// transactions until they are mined into a block.
func New(cfg *Config) *TxPool {
	return &TxPool{
		cfg:            *cfg,
		pool:           make(map[chainhash.Hash]*poolEntry),
		outpoints:      make(map[wire.OutPoint]*poolEntry),
		orphans:        make(map[chainhash.Hash]*orphanTx),
		orphansByPrev:  make(map[wire.OutPoint]map[chainhash.Hash]*chain.Tx),
		nextExpireScan: time.Now().Add(orphanExpireScanInterval),
	}
}

// bestHeight returns the current best chain height according to the
// configured callback, or zero when no callback was provided.
func (mp *TxPool) bestHeight() int32 {
	if mp.cfg.BestHeight == nil {
		return 0
	}
	return mp.cfg.BestHeight()
}

// isTransactionInPool returns whether or not the passed transaction already
// exists in the main pool.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) isTransactionInPool(hash *chainhash.Hash) bool {
	_, exists := mp.pool[*hash]
	return exists
}

// IsTransactionInPool returns whether or not the passed transaction already
// exists in the main pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) IsTransactionInPool(hash *chainhash.Hash) bool {
	mp.mtx.RLock()
	inPool := mp.isTransactionInPool(hash)
	mp.mtx.RUnlock()

	return inPool
}

// HaveTransaction returns whether or not the passed transaction already
// exists in the main pool or in the orphan pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) HaveTransaction(hash *chainhash.Hash) bool {
	mp.mtx.RLock()
	have := mp.isTransactionInPool(hash) || mp.isOrphanInPool(hash)
	mp.mtx.RUnlock()

	return have
}

// fetchInputUtxo resolves the passed outpoint to an unspent output, first
// against the ledger and then against the outputs created by live pool
// entries.  Outputs of unconfirmed entries are reported with UnminedHeight.
// It returns nil if the output is not known to either view.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) fetchInputUtxo(outpoint wire.OutPoint) *chain.UtxoEntry {
	if entry := mp.cfg.FetchUtxoEntry(outpoint); entry != nil {
		return entry
	}

	parent, exists := mp.pool[outpoint.Hash]
	if !exists || int(outpoint.Index) >= len(parent.tx.MsgTx().TxOut) {
		return nil
	}
	txOut := parent.tx.MsgTx().TxOut[outpoint.Index]
	return chain.NewUtxoEntry(btcutil.Amount(txOut.Value), txOut.Address,
		UnminedHeight)
}

// verifyInputs runs the configured signature predicate against every input
// of the passed transaction, memoizing successful evaluations through the
// signature cache when one is configured.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) verifyInputs(tx *chain.Tx, utxos []*chain.UtxoEntry) error {
	if mp.cfg.VerifySignature == nil {
		return nil
	}

	txHash := *tx.Hash()
	for i := range tx.MsgTx().TxIn {
		if mp.cfg.SigCache != nil &&
			mp.cfg.SigCache.Exists(txHash, uint32(i)) {

			continue
		}

		if !mp.cfg.VerifySignature(tx, i, utxos[i]) {
			str := fmt.Sprintf("transaction %v input %d failed "+
				"signature verification", txHash, i)
			return txRuleError(ErrInvalidSignature, str)
		}

		if mp.cfg.SigCache != nil {
			mp.cfg.SigCache.Add(txHash, uint32(i))
		}
	}

	return nil
}

// insertTransaction adds the passed validated transaction to the main pool,
// linking it to the live entries it spends outputs of, indexing the outputs
// it claims, and computing its ancestor aggregates.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) insertTransaction(tx *chain.Tx, fee btcutil.Amount,
	height int32) *TxDesc {

	hash := *tx.Hash()
	entry := &poolEntry{
		tx:       tx,
		added:    time.Now(),
		height:   height,
		fee:      fee,
		vSize:    GetTxVirtualSize(tx),
		parents:  make(map[chainhash.Hash]*poolEntry),
		children: make(map[chainhash.Hash]*poolEntry),
	}

	for _, txIn := range tx.MsgTx().TxIn {
		prevOut := txIn.PreviousOutPoint
		if parent, exists := mp.pool[prevOut.Hash]; exists {
			entry.parents[prevOut.Hash] = parent
			parent.children[hash] = entry
		}
		mp.outpoints[prevOut] = entry
	}

	mp.pool[hash] = entry
	mp.poolBytes += entry.vSize
	mp.updateAncestorStats(entry)
	atomic.StoreInt64(&mp.lastUpdated, time.Now().Unix())

	log.Debugf("Inserted transaction %v (fee %v, vsize %d, pool %d bytes)",
		hash, entry.fee, entry.vSize, mp.poolBytes)

	return entry.desc()
}

// removeEntry unlinks and deletes a single live entry.  Dependency edges in
// both directions are severed, so callers removing a whole subgraph may
// process its members in any order.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeEntry(entry *poolEntry) error {
	hash := *entry.tx.Hash()

	for _, txIn := range entry.tx.MsgTx().TxIn {
		prevOut := txIn.PreviousOutPoint
		spender, exists := mp.outpoints[prevOut]
		if !exists {
			continue
		}
		if spender != entry {
			return assertError("output %v is indexed as spent by "+
				"%v, not by the entry %v being removed", prevOut,
				spender.tx.Hash(), hash)
		}
		delete(mp.outpoints, prevOut)
	}

	for _, parent := range entry.parents {
		delete(parent.children, hash)
	}
	for _, child := range entry.children {
		delete(child.parents, hash)
	}

	delete(mp.pool, hash)
	mp.poolBytes -= entry.vSize
	atomic.StoreInt64(&mp.lastUpdated, time.Now().Unix())

	return nil
}

// removeTransaction removes the passed entry and, because the validity of
// every descendant is contingent on the entry's outputs remaining available
// in the working set, its full descendant closure.  It returns the ids of
// all removed entries.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeTransaction(entry *poolEntry) ([]chainhash.Hash, error) {
	removalSet := mp.collectRemovalSet(entry)

	// Remove in reverse order (children before parents) so every edge
	// update refers to a live entry.
	for i := len(removalSet) - 1; i >= 0; i-- {
		member, exists := mp.pool[removalSet[i]]
		if !exists {
			// Already removed through another parent in the set.
			continue
		}
		if err := mp.removeEntry(member); err != nil {
			return nil, err
		}
	}

	log.Debugf("Removed transaction %v and %d dependent %s",
		entry.tx.Hash(), len(removalSet)-1,
		pickNoun(len(removalSet)-1, "transaction", "transactions"))

	return removalSet, nil
}

// RemoveTransaction removes the live entry with the passed id from the pool
// together with its full descendant closure, returning the ids of every
// removed entry.  Removing an id with no live entry is a no-op.
//
// This function is safe for concurrent access.
func (mp *TxPool) RemoveTransaction(txHash *chainhash.Hash) ([]chainhash.Hash, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	entry, exists := mp.pool[*txHash]
	if !exists {
		return nil, nil
	}
	return mp.removeTransaction(entry)
}

// maybeAcceptTransaction is the main workhorse for handling insertion of new
// transactions into the pool.  It performs the full admission pipeline:
// duplicate and structural checks, input resolution, conflict routing to the
// replacement rules, value and signature validation, and the policy checks.
//
// When one or more inputs do not resolve, the hashes of the missing parent
// transactions are returned and the transaction is not an error nor is it
// admitted: the caller decides whether to reject it or hold it as an orphan.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) maybeAcceptTransaction(tx *chain.Tx,
	rejectDupOrphans bool) ([]chainhash.Hash, *TxDesc, []chainhash.Hash, error) {

	txHash := tx.Hash()

	// Don't accept the transaction if it already exists in the pool.
	// This applies to orphan transactions as well when the reject
	// duplicate orphans flag is set.  This check is intended to be a
	// quick check to weed out duplicates.
	if mp.isTransactionInPool(txHash) ||
		(rejectDupOrphans && mp.isOrphanInPool(txHash)) {

		str := fmt.Sprintf("already have transaction %v", txHash)
		return nil, nil, nil, txRuleError(ErrDuplicate, str)
	}

	// Perform preliminary sanity checks on the transaction.  This makes
	// use of chain which contains the invariant rules for what
	// transactions are allowed to exist structurally.
	if err := chain.CheckTransactionSanity(tx); err != nil {
		if cerr, ok := err.(chain.RuleError); ok {
			return nil, nil, nil, chainRuleError(cerr)
		}
		return nil, nil, nil, err
	}

	// Every input must resolve to a spendable output, either confirmed in
	// the ledger or created by a live pool entry.  Collect every missing
	// parent so an orphan can later be connected in one shot.
	msgTx := tx.MsgTx()
	utxos := make([]*chain.UtxoEntry, len(msgTx.TxIn))
	var missingParents []chainhash.Hash
	var totalIn int64
	for i, txIn := range msgTx.TxIn {
		utxo := mp.fetchInputUtxo(txIn.PreviousOutPoint)
		if utxo == nil {
			hashCopy := txIn.PreviousOutPoint.Hash
			missingParents = append(missingParents, hashCopy)
			continue
		}
		utxos[i] = utxo
		totalIn += int64(utxo.Amount())
	}
	if len(missingParents) > 0 {
		return missingParents, nil, nil, nil
	}

	// The transaction may not use any of the same outputs as other
	// transactions already in the pool as that would ultimately result in
	// a double spend.  Rather than rejecting outright, the conflict is
	// routed through the replacement rules below once the transaction has
	// passed every other check.
	conflicts := mp.findConflicts(tx)

	// The resolved input value must cover the output value; the surplus
	// is the fee.
	totalOut := msgTx.TotalOut()
	if totalIn < totalOut {
		str := fmt.Sprintf("transaction %v spends %d satoshi but "+
			"only provides %d satoshi of input value", txHash,
			totalOut, totalIn)
		return nil, nil, nil, txRuleError(ErrInsufficientInput, str)
	}
	fee := btcutil.Amount(totalIn - totalOut)

	// Delegate per-input signature validity to the externally supplied
	// predicate.
	if err := mp.verifyInputs(tx, utxos); err != nil {
		return nil, nil, nil, err
	}

	// Policy checks: the fee must meet the minimum relay fee for the
	// transaction's size, the transaction must be structurally standard,
	// and it must not exceed the per-transaction size limit.
	vSize := GetTxVirtualSize(tx)
	minFee := calcMinRequiredTxRelayFee(vSize, mp.cfg.Policy.MinRelayTxFee)
	if int64(fee) < minFee {
		str := fmt.Sprintf("transaction %v has %d fees which is "+
			"under the required amount of %d", txHash, fee, minFee)
		return nil, nil, nil, txRuleError(ErrBelowMinFee, str)
	}
	if err := CheckTransactionStandard(tx, mp.cfg.Policy.MinRelayTxFee); err != nil {
		return nil, nil, nil, err
	}
	if vSize > mp.cfg.Policy.MaxTxBytes {
		str := fmt.Sprintf("transaction %v virtual size of %d bytes "+
			"is larger than max allowed size of %d bytes", txHash,
			vSize, mp.cfg.Policy.MaxTxBytes)
		return nil, nil, nil, txRuleError(ErrOversizeTx, str)
	}

	// When the transaction conflicts with live entries it is admitted
	// only through the replacement rules, evicting the entire conflicting
	// closure in the same critical section so no observer can see a state
	// where the contested outputs are resolved by neither side.
	var replaced []chainhash.Hash
	if len(conflicts) > 0 {
		closure, err := mp.validateReplacement(tx, fee, conflicts)
		if err != nil {
			return nil, nil, nil, err
		}

		for conflictHash := range conflicts {
			member, exists := mp.pool[conflictHash]
			if !exists {
				// Removed as a descendant of an earlier
				// conflict.
				continue
			}
			removed, err := mp.removeTransaction(member)
			if err != nil {
				return nil, nil, nil, err
			}
			replaced = append(replaced, removed...)
		}

		log.Debugf("Replaced %d %s (closure %d) with transaction %v",
			len(conflicts),
			pickNoun(len(conflicts), "conflict", "conflicts"),
			len(closure), txHash)
	}

	txD := mp.insertTransaction(tx, fee, mp.bestHeight())

	log.Debugf("Accepted transaction %v (pool: %d %s, %d bytes)", txHash,
		len(mp.pool), pickNoun(len(mp.pool), "transaction",
			"transactions"), mp.poolBytes)

	return nil, txD, replaced, nil
}

// limitMempoolSize is the capacity manager: while the live entries exceed
// the configured byte budget, the entry with the globally lowest ancestor
// fee rate is removed along with its descendants.  A removed low-rate
// ancestor taking higher-rate descendants with it is accepted behavior, not
// a defect: descendants cannot outlive a removed ancestor.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) limitMempoolSize() ([]chainhash.Hash, error) {
	var evicted []chainhash.Hash
	for mp.poolBytes > mp.cfg.Policy.MaxMempoolBytes {
		lowest := mp.lowestEntry()
		if lowest == nil {
			return evicted, assertError("pool reports %d resident "+
				"bytes with no live entries", mp.poolBytes)
		}

		removed, err := mp.removeTransaction(lowest)
		if err != nil {
			return evicted, err
		}
		evicted = append(evicted, removed...)

		log.Debugf("Evicted transaction %v and %d dependents for "+
			"capacity", removed[0], len(removed)-1)
	}

	return evicted, nil
}

// EvictToCapacity removes the lowest-priority entries (and their dependents)
// until the pool is within its configured byte budget and returns the ids of
// the removed entries.  It is invoked automatically after every admission and
// is idempotent: invoking it on a pool already within budget removes nothing.
//
// This function is safe for concurrent access.
func (mp *TxPool) EvictToCapacity() ([]chainhash.Hash, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	return mp.limitMempoolSize()
}

// ProcessTransaction is the main workhorse for handling insertion of new
// transactions into the memory pool.  It includes functionality such as
// rejecting duplicate transactions, ensuring transactions follow all
// admission rules, orphan transaction handling, replacement handling, and
// eviction back under the capacity budget after insertion.
//
// When allowOrphan is false, a transaction with unresolved inputs is
// rejected; otherwise it is held in the orphan pool until its missing
// parents arrive.
//
// This function is safe for concurrent access.
func (mp *TxPool) ProcessTransaction(tx *chain.Tx, allowOrphan bool) (*ProcessResult, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	log.Tracef("Processing transaction %v", tx.Hash())

	missingParents, txD, replaced, err := mp.maybeAcceptTransaction(tx, true)
	if err != nil {
		return nil, err
	}

	if len(missingParents) > 0 {
		if !allowOrphan {
			str := fmt.Sprintf("orphan transaction %v references "+
				"outputs of unknown or fully-spent transaction "+
				"%v", tx.Hash(), missingParents[0])
			return nil, txRuleError(ErrMissingInput, str)
		}

		if err := mp.maybeAddOrphan(tx); err != nil {
			return nil, err
		}
		return &ProcessResult{IsOrphan: true}, nil
	}

	result := &ProcessResult{
		AcceptedTxns: []*TxDesc{txD},
		ReplacedTxns: replaced,
	}

	// Accept any orphan transactions that depend on this transaction and
	// repeat for those accepted transactions until there are no more.
	result.AcceptedTxns = append(result.AcceptedTxns,
		mp.processOrphans(tx)...)

	evicted, err := mp.limitMempoolSize()
	if err != nil {
		return nil, err
	}
	result.EvictedTxns = evicted

	return result, nil
}

// Submit validates the passed transaction against the ledger and the local
// admission policy and inserts it into the pool on acceptance.  Transactions
// with unresolved inputs are rejected; use ProcessTransaction to retain them
// as orphans instead.
//
// This function is safe for concurrent access.
func (mp *TxPool) Submit(tx *chain.Tx) (*ProcessResult, error) {
	return mp.ProcessTransaction(tx, false)
}

// ConfirmBlock applies an ordered list of confirmed transactions to the
// ledger and updates the pool accordingly: confirmed entries leave the pool
// without cascading (their descendants remain, now resolving against the
// ledger, with ancestor aggregates recomputed), any live entry that
// double-spends a confirmed output is removed with its descendants, and
// orphans waiting on the confirmed outputs are promoted.
//
// The block is applied all-or-nothing: when any transaction in the list does
// not connect against the ledger combined with the outputs created earlier in
// the list, an error is returned and neither the ledger nor the pool is
// modified.
//
// This function is safe for concurrent access.
func (mp *TxPool) ConfirmBlock(txns []*chain.Tx) ([]chainhash.Hash, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	// Verify the whole block connects before mutating anything.  Outputs
	// created earlier in the list are spendable by later transactions,
	// and no output may be consumed twice.
	created := make(map[wire.OutPoint]*chain.TxOut)
	consumed := make(map[wire.OutPoint]struct{})
	for _, tx := range txns {
		for _, txIn := range tx.MsgTx().TxIn {
			prevOut := txIn.PreviousOutPoint
			if _, spent := consumed[prevOut]; spent {
				str := fmt.Sprintf("block double spends output "+
					"%v", prevOut)
				return nil, txRuleError(ErrMissingInput, str)
			}
			_, inBatch := created[prevOut]
			if !inBatch && mp.cfg.FetchUtxoEntry(prevOut) == nil {
				str := fmt.Sprintf("block transaction %v "+
					"references nonexistent output %v",
					tx.Hash(), prevOut)
				return nil, txRuleError(ErrMissingInput, str)
			}
			consumed[prevOut] = struct{}{}
		}

		prevOut := wire.OutPoint{Hash: *tx.Hash()}
		for txOutIdx, txOut := range tx.MsgTx().TxOut {
			prevOut.Index = uint32(txOutIdx)
			created[prevOut] = txOut
		}
	}

	var removed []chainhash.Hash
	for _, tx := range txns {
		if err := mp.cfg.ConnectTransaction(tx); err != nil {
			// The pre-check above guarantees the connect cannot
			// fail, so a failure here means the ledger changed
			// underneath us.
			return removed, assertError("transaction %v failed "+
				"to connect after block pre-check: %v",
				tx.Hash(), err)
		}

		ids, err := mp.removeConfirmedTransaction(tx)
		if err != nil {
			return removed, err
		}
		removed = append(removed, ids...)

		if accepted := mp.processOrphans(tx); len(accepted) > 0 {
			log.Debugf("Promoted %d %s orphaned by confirmed "+
				"transaction %v", len(accepted),
				pickNoun(len(accepted), "orphan", "orphans"),
				tx.Hash())
		}
	}

	atomic.StoreInt64(&mp.lastUpdated, time.Now().Unix())

	return removed, nil
}

// removeConfirmedTransaction removes the entry of a confirmed transaction
// without cascading: its descendants remain live, re-linked as entries with
// one fewer unconfirmed ancestor and their ancestor aggregates recomputed.
// Any other live entry spending one of the confirmed transaction's inputs is
// a double spend of a now-confirmed output and is removed with its
// descendants.  The ids of every entry removed from the pool are returned,
// including the confirmed transaction itself when it was resident.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeConfirmedTransaction(tx *chain.Tx) ([]chainhash.Hash, error) {
	txHash := *tx.Hash()
	var removed []chainhash.Hash

	if entry, exists := mp.pool[txHash]; exists {
		children := make([]*poolEntry, 0, len(entry.children))
		for _, child := range entry.children {
			children = append(children, child)
		}

		if err := mp.removeEntry(entry); err != nil {
			return nil, err
		}
		removed = append(removed, txHash)

		// The confirmed ancestor no longer contributes to the fee
		// rate of its former descendants.
		for _, child := range children {
			mp.updateAncestorStats(child)
			mp.updateDescendantStats(child)
		}

		log.Debugf("Removed confirmed transaction %v, re-linked %d "+
			"%s", txHash, len(children), pickNoun(len(children),
			"descendant", "descendants"))
	}

	for _, txIn := range tx.MsgTx().TxIn {
		spender, exists := mp.outpoints[txIn.PreviousOutPoint]
		if !exists {
			continue
		}
		ids, err := mp.removeTransaction(spender)
		if err != nil {
			return removed, err
		}
		removed = append(removed, ids...)

		log.Debugf("Removed double spend %v of confirmed output %v",
			spender.tx.Hash(), txIn.PreviousOutPoint)
	}

	return removed, nil
}

// FetchTxDesc returns the descriptor of the live entry with the passed id.
// It returns nil when no such entry exists; the orphan pool is not
// consulted.
//
// This function is safe for concurrent access.
func (mp *TxPool) FetchTxDesc(txHash *chainhash.Hash) *TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	entry, exists := mp.pool[*txHash]
	if !exists {
		return nil
	}
	return entry.desc()
}

// FetchTransaction returns the requested transaction from the pool.  This
// only fetches from the main pool and does not include orphans.
//
// This function is safe for concurrent access.
func (mp *TxPool) FetchTransaction(txHash *chainhash.Hash) (*chain.Tx, error) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	if entry, exists := mp.pool[*txHash]; exists {
		return entry.tx, nil
	}
	return nil, fmt.Errorf("transaction is not in the pool")
}

// CheckSpend checks whether the passed outpoint is already spent by a
// transaction in the pool.  If that's the case the spending transaction will
// be returned, if not nil will be returned.
//
// This function is safe for concurrent access.
func (mp *TxPool) CheckSpend(op wire.OutPoint) *chain.Tx {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	if entry, exists := mp.outpoints[op]; exists {
		return entry.tx
	}
	return nil
}

// Count returns the number of transactions in the main pool.  It does not
// include the orphan pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	count := len(mp.pool)
	mp.mtx.RUnlock()

	return count
}

// PoolBytes returns the combined virtual size of every live entry.
//
// This function is safe for concurrent access.
func (mp *TxPool) PoolBytes() int64 {
	mp.mtx.RLock()
	bytes := mp.poolBytes
	mp.mtx.RUnlock()

	return bytes
}

// LastUpdated returns the last time a transaction was added to or removed
// from the main pool.  It does not include the orphan pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) LastUpdated() time.Time {
	return time.Unix(atomic.LoadInt64(&mp.lastUpdated), 0)
}

// PoolInfo houses aggregate statistics about a pool instance.
type PoolInfo struct {
	// Count is the number of live entries.
	Count int

	// Bytes is the combined virtual size of every live entry.
	Bytes int64

	// MaxBytes is the configured capacity budget.
	MaxBytes int64

	// OrphanCount is the number of transactions in the orphan pool.
	OrphanCount int
}

// Info returns aggregate statistics about the pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) Info() *PoolInfo {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return &PoolInfo{
		Count:       len(mp.pool),
		Bytes:       mp.poolBytes,
		MaxBytes:    mp.cfg.Policy.MaxMempoolBytes,
		OrphanCount: len(mp.orphans),
	}
}
