// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txmempool/chain"
	"github.com/btcsuite/txmempool/mempool"
	"github.com/stretchr/testify/require"
)

// fakeTxSource is a canned transaction source.  Selection walks the canned
// descriptors in order and stops at the first that does not fit the budget,
// mirroring the prefix contract of the real pool.
type fakeTxSource struct {
	descs     []*mempool.TxDesc
	confirmed [][]*chain.Tx
	failErr   error
}

func (s *fakeTxSource) LastUpdated() time.Time {
	return time.Unix(0, 0)
}

func (s *fakeTxSource) Count() int {
	return len(s.descs)
}

func (s *fakeTxSource) SelectForBlock(budgetBytes int64) []*mempool.TxDesc {
	var selected []*mempool.TxDesc
	var used int64
	for _, desc := range s.descs {
		if used+desc.VSize > budgetBytes {
			break
		}
		selected = append(selected, desc)
		used += desc.VSize
	}
	return selected
}

func (s *fakeTxSource) ConfirmBlock(txns []*chain.Tx) ([]chainhash.Hash, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	s.confirmed = append(s.confirmed, txns)

	hashes := make([]chainhash.Hash, len(txns))
	for i, tx := range txns {
		hashes[i] = *tx.Hash()
	}
	return hashes, nil
}

// testDesc returns a descriptor around a synthetic single-output transaction
// with the passed fee and an artificial virtual size.
func testDesc(tag string, fee btcutil.Amount, vSize int64) *mempool.TxDesc {
	msgTx := chain.NewMsgTx(chain.TxVersion)
	prevOut := wire.OutPoint{Hash: chainhash.Hash{0x01}}
	msgTx.AddTxIn(chain.NewTxIn(&prevOut, []byte(tag)))
	msgTx.AddTxOut(chain.NewTxOut(1000, tag))
	return &mempool.TxDesc{
		Tx:    chain.NewTx(msgTx),
		Fee:   fee,
		VSize: vSize,
	}
}

// TestNewBlockTemplate ensures templates carry the selected transactions in
// order along with their fees and combined size.
func TestNewBlockTemplate(t *testing.T) {
	t.Parallel()

	source := &fakeTxSource{descs: []*mempool.TxDesc{
		testDesc("a", 5000, 100),
		testDesc("b", 3000, 100),
		testDesc("c", 1000, 100),
	}}

	template, err := NewBlockTemplate(source, 250)
	require.NoError(t, err)
	require.Len(t, template.Transactions, 2)
	require.Equal(t, source.descs[0].Tx, template.Transactions[0])
	require.Equal(t, source.descs[1].Tx, template.Transactions[1])
	require.Equal(t, []btcutil.Amount{5000, 3000}, template.Fees)
	require.Equal(t, int64(200), template.SizeBytes)
	require.Equal(t, btcutil.Amount(8000), template.TotalFees())
}

// TestNewBlockTemplateEmptySource ensures an empty source yields an empty
// template rather than an error.
func TestNewBlockTemplateEmptySource(t *testing.T) {
	t.Parallel()

	template, err := NewBlockTemplate(&fakeTxSource{}, 1000)
	require.NoError(t, err)
	require.Empty(t, template.Transactions)
	require.Zero(t, template.SizeBytes)
}

// TestNewBlockTemplateOverBudget ensures a budget below the smallest eligible
// transaction of a non-empty source is reported as an error.
func TestNewBlockTemplateOverBudget(t *testing.T) {
	t.Parallel()

	source := &fakeTxSource{descs: []*mempool.TxDesc{
		testDesc("a", 5000, 100),
	}}

	_, err := NewBlockTemplate(source, 99)
	require.ErrorIs(t, err, ErrOverBudget)
}

// TestGenerateBlock ensures the generator commits the template it builds back
// to its source.
func TestGenerateBlock(t *testing.T) {
	t.Parallel()

	source := &fakeTxSource{descs: []*mempool.TxDesc{
		testDesc("a", 5000, 100),
		testDesc("b", 3000, 100),
	}}

	generator := NewBlkTmplGenerator(source, 1000)
	template, err := generator.GenerateBlock()
	require.NoError(t, err)
	require.Len(t, source.confirmed, 1)
	require.Equal(t, template.Transactions, source.confirmed[0])
}
