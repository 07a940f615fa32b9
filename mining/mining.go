// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"errors"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/txmempool/chain"
	"github.com/btcsuite/txmempool/mempool"
)

// ErrOverBudget is returned when a block template is requested with a size
// budget too small to fit even the single highest-priority transaction in a
// non-empty source.  An empty source yields an empty template rather than an
// error.
var ErrOverBudget = errors.New("size budget below smallest eligible transaction")

// TxSource represents a source of transactions to consider for inclusion in
// new blocks.
//
// The interface contract requires that all of these methods are safe for
// concurrent access with respect to the source.
type TxSource interface {
	// LastUpdated returns the last time a transaction was added to or
	// removed from the source pool.
	LastUpdated() time.Time

	// Count returns the number of transactions in the source pool.
	Count() int

	// SelectForBlock returns descriptors for the highest-priority
	// transactions in the source pool whose combined virtual size fits
	// within the passed byte budget.  The returned transactions must be
	// ordered so that every transaction appears after all of its in-pool
	// ancestors.
	SelectForBlock(budgetBytes int64) []*mempool.TxDesc

	// ConfirmBlock commits the passed ordered transactions to the ledger
	// the source validates against and removes them from the source pool.
	ConfirmBlock(txns []*chain.Tx) ([]chainhash.Hash, error)
}

// BlockTemplate houses a block that is ready to be committed and the
// metadata of the selection that produced it.
type BlockTemplate struct {
	// Transactions holds the selected transactions in commit order:
	// every transaction appears after the in-pool ancestors it depends
	// on.
	Transactions []*chain.Tx

	// Fees contains the absolute fee of each transaction in Transactions,
	// index for index.
	Fees []btcutil.Amount

	// SizeBytes is the combined virtual size of the selected
	// transactions.
	SizeBytes int64
}

// TotalFees returns the combined absolute fee of every transaction in the
// template.
func (bt *BlockTemplate) TotalFees() btcutil.Amount {
	var total btcutil.Amount
	for _, fee := range bt.Fees {
		total += fee
	}
	return total
}

// NewBlockTemplate selects transactions from the passed source into a new
// block template that maximizes collected fees within the passed virtual
// size budget.
//
// Selection is delegated to the source, which serves its transactions in
// descending ancestor fee rate order constrained so dependent transactions
// always follow the transactions they depend on.  The resulting template can
// therefore be committed as-is.
func NewBlockTemplate(source TxSource, sizeBudget int64) (*BlockTemplate, error) {
	selected := source.SelectForBlock(sizeBudget)
	if len(selected) == 0 && source.Count() > 0 {
		return nil, ErrOverBudget
	}

	template := &BlockTemplate{
		Transactions: make([]*chain.Tx, len(selected)),
		Fees:         make([]btcutil.Amount, len(selected)),
	}
	for i, desc := range selected {
		template.Transactions[i] = desc.Tx
		template.Fees[i] = desc.Fee
		template.SizeBytes += desc.VSize
	}

	log.Debugf("Created new block template (%d transactions, %d bytes, "+
		"%v total fees)", len(template.Transactions), template.SizeBytes,
		template.TotalFees())

	return template, nil
}

// BlkTmplGenerator provides a type that can be used to generate block
// templates from a transaction source and commit them back to it.  Callers
// that only need selection can use NewBlockTemplate directly.
type BlkTmplGenerator struct {
	txSource   TxSource
	sizeBudget int64
}

// NewBlkTmplGenerator returns a new block template generator for the given
// transaction source that builds templates up to the given virtual size
// budget.
func NewBlkTmplGenerator(txSource TxSource, sizeBudget int64) *BlkTmplGenerator {
	return &BlkTmplGenerator{
		txSource:   txSource,
		sizeBudget: sizeBudget,
	}
}

// NewBlockTemplate selects transactions from the generator's source into a
// new block template within the generator's size budget.  The source pool is
// not modified.
func (g *BlkTmplGenerator) NewBlockTemplate() (*BlockTemplate, error) {
	return NewBlockTemplate(g.txSource, g.sizeBudget)
}

// GenerateBlock builds a block template and immediately commits it: the
// selected transactions are applied to the ledger and leave the source pool,
// descendants of confirmed transactions are retained, and conflicting
// entries are removed.
func (g *BlkTmplGenerator) GenerateBlock() (*BlockTemplate, error) {
	template, err := g.NewBlockTemplate()
	if err != nil {
		return nil, err
	}

	if _, err := g.txSource.ConfirmBlock(template.Transactions); err != nil {
		return nil, err
	}

	log.Debugf("Generated block with %d transactions collecting %v in fees",
		len(template.Transactions), template.TotalFees())

	return template, nil
}
