// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// poolsim runs a deterministic mempool simulation: it seeds a ledger with
// spendable outputs, submits fee-laddered spend chains, performs a
// replacement, exercises the orphan pool, and then assembles and commits
// blocks until the pool drains, logging the pool state along the way.
package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txmempool/chain"
	"github.com/btcsuite/txmempool/mempool"
	"github.com/btcsuite/txmempool/mining"
)

// spendTx returns a transaction spending the passed output, paying the passed
// fee, and sending the remainder to the passed address.
func spendTx(prevOut wire.OutPoint, prevValue, fee int64, address, sig string) *chain.Tx {
	msgTx := chain.NewMsgTx(chain.TxVersion)
	msgTx.AddTxIn(chain.NewTxIn(&prevOut, []byte(sig)))
	msgTx.AddTxOut(chain.NewTxOut(prevValue-fee, address))
	return chain.NewTx(msgTx)
}

// realMain is the real main function for the utility.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func realMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Setup logging.
	if cfg.LogFile != "" {
		initLogRotator(cfg.LogFile)
		defer logRotator.Close()
	}
	setLogLevels(cfg.DebugLevel)

	// Seed the ledger with one spendable output per chain, plus one extra
	// used to demonstrate orphan promotion.
	utxos := chain.NewUtxoSet()
	height := int32(1)
	numSeeds := cfg.Chains + 1
	seeds := make([]*chain.Tx, numSeeds)
	for i := range seeds {
		msgTx := chain.NewMsgTx(chain.TxVersion)
		msgTx.AddTxOut(chain.NewTxOut(btcutil.SatoshiPerBitcoin,
			fmt.Sprintf("wallet-%d", i)))
		seeds[i] = chain.NewTx(msgTx)
		utxos.AddTxOuts(seeds[i], height)
	}
	simLog.Infof("Seeded ledger with %d outputs worth %v", utxos.Count(),
		utxos.TotalValue())

	policy := mempool.DefaultPolicy()
	policy.MaxMempoolBytes = cfg.MaxMempool
	policy.MinRelayTxFee = btcutil.Amount(cfg.MinRelayFee)

	pool := mempool.New(&mempool.Config{
		Policy:         policy,
		FetchUtxoEntry: utxos.LookupEntry,
		ConnectTransaction: func(tx *chain.Tx) error {
			return utxos.ConnectTransaction(tx, height)
		},
		BestHeight: func() int32 { return height },
		VerifySignature: func(tx *chain.Tx, inIdx int, utxo *chain.UtxoEntry) bool {
			return len(tx.MsgTx().TxIn[inIdx].SignatureScript) > 0
		},
		SigCache: mempool.NewSigCache(1000),
	})

	// Submit fee-laddered spend chains so the pool holds a mix of
	// priorities and dependencies.
	simLog.Infof("Submitting %d spend chains of depth %d", cfg.Chains,
		cfg.ChainDepth)
	for i := 0; i < cfg.Chains; i++ {
		prevOut := wire.OutPoint{Hash: *seeds[i].Hash()}
		prevValue := seeds[i].MsgTx().TxOut[0].Value
		for depth := 0; depth < cfg.ChainDepth; depth++ {
			fee := int64(1000*(i+1) + 500*depth)
			tx := spendTx(prevOut, prevValue, fee,
				fmt.Sprintf("wallet-%d", i),
				fmt.Sprintf("sig-%d-%d", i, depth))
			if _, err := pool.Submit(tx); err != nil {
				return fmt.Errorf("submit chain %d depth %d: %w",
					i, depth, err)
			}
			prevOut = wire.OutPoint{Hash: *tx.Hash()}
			prevValue -= fee
		}
	}
	info := pool.Info()
	simLog.Infof("Pool holds %d transactions in %d bytes after chain "+
		"submission", info.Count, info.Bytes)

	// Replace the root of the first chain with a higher-fee spend of the
	// same output.  The conflicting root and its whole chain are evicted
	// atomically.
	var chainFees int64
	for depth := 0; depth < cfg.ChainDepth; depth++ {
		chainFees += int64(1000 + 500*depth)
	}
	bumpFee := 2*chainFees + 10000
	bump := spendTx(wire.OutPoint{Hash: *seeds[0].Hash()},
		seeds[0].MsgTx().TxOut[0].Value, bumpFee, "wallet-0", "sig-bump")
	result, err := pool.Submit(bump)
	if err != nil {
		return fmt.Errorf("submit replacement: %w", err)
	}
	simLog.Infof("Replacement %v paying %d evicted %d conflicting "+
		"transactions", bump.Hash(), bumpFee, len(result.ReplacedTxns))

	// Demonstrate orphan promotion: submit a grandchild spend before its
	// parent, then watch the parent's acceptance pull it in.
	parent := spendTx(wire.OutPoint{Hash: *seeds[numSeeds-1].Hash()},
		seeds[numSeeds-1].MsgTx().TxOut[0].Value, 5000,
		"wallet-orphan", "sig-parent")
	child := spendTx(wire.OutPoint{Hash: *parent.Hash()},
		parent.MsgTx().TxOut[0].Value, 5000, "wallet-orphan", "sig-child")
	result, err = pool.ProcessTransaction(child, true)
	if err != nil {
		return fmt.Errorf("submit orphan: %w", err)
	}
	simLog.Infof("Transaction %v held as orphan: %v", child.Hash(),
		result.IsOrphan)
	result, err = pool.Submit(parent)
	if err != nil {
		return fmt.Errorf("submit orphan parent: %w", err)
	}
	simLog.Infof("Parent %v accepted, promoting %d orphaned descendants",
		parent.Hash(), len(result.AcceptedTxns)-1)

	// Assemble and commit blocks until the pool drains.
	generator := mining.NewBlkTmplGenerator(pool, cfg.BlockSize)
	for blockNum := 1; pool.Count() > 0; blockNum++ {
		height++
		template, err := generator.GenerateBlock()
		if err != nil {
			return fmt.Errorf("generate block %d: %w", blockNum, err)
		}
		simLog.Infof("Block %d at height %d: %d transactions, %d "+
			"bytes, %v in fees (%d left in pool)", blockNum, height,
			len(template.Transactions), template.SizeBytes,
			template.TotalFees(), pool.Count())
	}

	simLog.Infof("Simulation complete: ledger holds %d outputs worth %v",
		utxos.Count(), utxos.TotalValue())
	return nil
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
