// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// requireRuleErr asserts that the passed error is a RuleError carrying the
// expected code.
func requireRuleErr(t *testing.T, err error, code ErrorCode) {
	t.Helper()

	var rerr RuleError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, code, rerr.ErrorCode)
}

// TestReplacementTooManyEvictions ensures a replacement is rejected when the
// conflicting closure exceeds the configured eviction bound.
func TestReplacementTooManyEvictions(t *testing.T) {
	t.Parallel()

	harness, spendableOuts := newPoolHarness(1)
	harness.txPool.cfg.Policy.MaxReplacementEvictions = 2

	// A conflict whose closure holds three entries.
	chainedTxns := harness.CreateTxChain(spendableOuts[0], 3, 1000)
	for _, tx := range chainedTxns {
		_, err := harness.txPool.Submit(tx)
		require.NoError(t, err)
	}

	replacement := harness.CreateSignedTx(spendableOuts[:1], 2, 1000000)
	_, err := harness.txPool.Submit(replacement)
	requireRuleErr(t, err, ErrTooManyEvictions)

	// The conflicting chain is untouched.
	for _, tx := range chainedTxns {
		require.True(t, harness.txPool.IsTransactionInPool(tx.Hash()))
	}
}

// TestReplacementSpendsConflictOutput ensures a replacement may not depend on
// an output created by an entry it would evict.
func TestReplacementSpendsConflictOutput(t *testing.T) {
	t.Parallel()

	harness, spendableOuts := newPoolHarness(2)

	conflict := harness.CreateSignedTx(spendableOuts[:1], 1, 1000)
	_, err := harness.txPool.Submit(conflict)
	require.NoError(t, err)

	// The candidate both conflicts with the entry on the first output and
	// spends the entry's own output.
	replacement := harness.CreateSignedTx([]spendableOutput{
		spendableOuts[0],
		txOutToSpendableOut(conflict, 0),
	}, 1, 1000000)
	_, err = harness.txPool.Submit(replacement)
	requireRuleErr(t, err, ErrReplacementSpendsConflict)
}

// TestReplacementNewUnconfirmedInput ensures a replacement may not graft
// itself onto unconfirmed ancestry the conflicting entries did not have.
func TestReplacementNewUnconfirmedInput(t *testing.T) {
	t.Parallel()

	harness, spendableOuts := newPoolHarness(2)

	conflict := harness.CreateSignedTx(spendableOuts[:1], 1, 1000)
	_, err := harness.txPool.Submit(conflict)
	require.NoError(t, err)

	// An unrelated unconfirmed entry whose output the candidate will try
	// to pull in.
	unrelated := harness.CreateSignedTx(spendableOuts[1:2], 1, 1000)
	_, err = harness.txPool.Submit(unrelated)
	require.NoError(t, err)

	replacement := harness.CreateSignedTx([]spendableOutput{
		spendableOuts[0],
		txOutToSpendableOut(unrelated, 0),
	}, 1, 1000000)
	_, err = harness.txPool.Submit(replacement)
	requireRuleErr(t, err, ErrNewUnconfirmedInput)
}

// TestReplacementInsufficientFee ensures a replacement must pay strictly more
// than the combined fees of the closure it evicts.
func TestReplacementInsufficientFee(t *testing.T) {
	t.Parallel()

	harness, spendableOuts := newPoolHarness(1)

	// Two chained entries paying 5000 each; the closure fee is 10000.
	chainedTxns := harness.CreateTxChain(spendableOuts[0], 2, 5000)
	for _, tx := range chainedTxns {
		_, err := harness.txPool.Submit(tx)
		require.NoError(t, err)
	}

	replacement := harness.CreateSignedTx(spendableOuts[:1], 2, 10000)
	_, err := harness.txPool.Submit(replacement)
	requireRuleErr(t, err, ErrInsufficientReplacementFee)
}

// TestReplacementFeeIncrement ensures the fee bump beyond the evicted closure
// must meet the configured minimum increment.
func TestReplacementFeeIncrement(t *testing.T) {
	t.Parallel()

	harness, spendableOuts := newPoolHarness(1)
	harness.txPool.cfg.Policy.MinReplacementFeeIncrement = 10000

	conflict := harness.CreateSignedTx(spendableOuts[:1], 1, 5000)
	_, err := harness.txPool.Submit(conflict)
	require.NoError(t, err)

	// Pays more than the conflict but less than conflict plus increment.
	replacement := harness.CreateSignedTx(spendableOuts[:1], 2, 6000)
	_, err = harness.txPool.Submit(replacement)
	requireRuleErr(t, err, ErrInsufficientFeeIncrement)

	// Meeting the increment succeeds.
	replacement = harness.CreateSignedTx(spendableOuts[:1], 2, 15000)
	_, err = harness.txPool.Submit(replacement)
	require.NoError(t, err)
}

// TestReplacementEvictsClosure ensures a valid replacement atomically evicts
// the conflicting entries together with all of their descendants and takes
// over the contested outputs.
func TestReplacementEvictsClosure(t *testing.T) {
	t.Parallel()

	harness, spendableOuts := newPoolHarness(1)

	chainedTxns := harness.CreateTxChain(spendableOuts[0], 3, 1000)
	for _, tx := range chainedTxns {
		_, err := harness.txPool.Submit(tx)
		require.NoError(t, err)
	}

	replacement := harness.CreateSignedTx(spendableOuts[:1], 2, 1000000)
	result, err := harness.txPool.Submit(replacement)
	require.NoError(t, err)

	require.Len(t, result.ReplacedTxns, len(chainedTxns))
	for _, tx := range chainedTxns {
		require.Contains(t, result.ReplacedTxns, *tx.Hash())
		require.False(t, harness.txPool.IsTransactionInPool(tx.Hash()))
	}
	require.True(t, harness.txPool.IsTransactionInPool(replacement.Hash()))

	// The contested output now belongs to the replacement.
	spender := harness.txPool.CheckSpend(spendableOuts[0].outPoint)
	require.Equal(t, replacement, spender)
}

// TestReplacementSharedUnconfirmedParent ensures a replacement may keep the
// unconfirmed ancestry the conflicting entry already had.
func TestReplacementSharedUnconfirmedParent(t *testing.T) {
	t.Parallel()

	harness, spendableOuts := newPoolHarness(1)

	// An unconfirmed parent with two outputs, with a conflict spending the
	// first.
	parent := harness.CreateSignedTx(spendableOuts[:1], 2, 1000)
	_, err := harness.txPool.Submit(parent)
	require.NoError(t, err)
	conflict := harness.CreateSignedTx(
		[]spendableOutput{txOutToSpendableOut(parent, 0)}, 1, 1000)
	_, err = harness.txPool.Submit(conflict)
	require.NoError(t, err)

	// The replacement spends the same unconfirmed output, so its only
	// unconfirmed ancestry is what the conflict already had.
	replacement := harness.CreateSignedTx(
		[]spendableOutput{txOutToSpendableOut(parent, 0)}, 1, 100000)
	result, err := harness.txPool.Submit(replacement)
	require.NoError(t, err)
	require.Equal(t, []chainhash.Hash{*conflict.Hash()}, result.ReplacedTxns)
	require.True(t, harness.txPool.IsTransactionInPool(replacement.Hash()))
	require.True(t, harness.txPool.IsTransactionInPool(parent.Hash()))
	require.False(t, harness.txPool.IsTransactionInPool(conflict.Hash()))

	// The parent keeps serving as the replacement's in-pool ancestor.
	desc := harness.txPool.FetchTxDesc(replacement.Hash())
	require.NotNil(t, desc)
	require.Equal(t, desc.Fee+harness.txPool.FetchTxDesc(parent.Hash()).Fee,
		desc.AncestorFee)
}
