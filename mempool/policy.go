// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/txmempool/chain"
)

const (
	// DefaultMaxMempoolBytes is the default maximum number of bytes of
	// live transactions the pool will hold before the capacity manager
	// starts evicting the lowest-priority entries.
	DefaultMaxMempoolBytes = 64 * 1024 * 1024

	// DefaultMinRelayTxFee is the minimum fee in satoshi that is required
	// for a transaction to be accepted into the pool.  It is also used as
	// a base for calculating minimum required fees for larger
	// transactions and the dust threshold.  This value is in
	// satoshi/1000 bytes.
	DefaultMinRelayTxFee = btcutil.Amount(1000)

	// DefaultMaxTxBytes is the default maximum allowed virtual size in
	// bytes of a single transaction accepted into the pool.
	DefaultMaxTxBytes = 100000

	// DefaultMaxReplacementEvictions is the default maximum number of
	// live entries a single replacement is allowed to evict.  The value
	// matches the reference implementation's BIP 125 rule 5 bound.
	DefaultMaxReplacementEvictions = 100

	// DefaultMaxOrphanTxs is the default maximum number of orphan
	// transactions that are retained while waiting for their missing
	// parents to arrive.
	DefaultMaxOrphanTxs = 100

	// DefaultMaxOrphanTxSize is the default maximum size allowed for an
	// orphan transaction.  This helps limit the amount of memory the
	// orphan pool can consume to MaxOrphanTxs * MaxOrphanTxSize.
	DefaultMaxOrphanTxSize = 10000

	// maxStandardSigScriptSize is the maximum size allowed for a
	// transaction input signature script to be considered standard.  The
	// signature predicate is externally supplied, so the bound exists
	// purely to keep unverifiable blobs from bloating the pool.
	maxStandardSigScriptSize = 1650

	// dustSpendCost is the serialized size of a typical input spending an
	// output: a 36 byte outpoint, a one byte script length, and a 107
	// byte signature script.  It is used when computing the dust
	// threshold for an output.
	dustSpendCost = 144
)

// Policy houses the policy (configuration parameters) which is used to
// control the mempool.
type Policy struct {
	// MaxMempoolBytes is the maximum number of bytes of live transactions
	// the pool may hold.  Admissions that push the pool past this budget
	// trigger eviction of the lowest-priority entries.
	MaxMempoolBytes int64

	// MinRelayTxFee defines the minimum transaction fee in
	// satoshi/1000 bytes to be considered a non-zero fee.
	MinRelayTxFee btcutil.Amount

	// MaxTxBytes is the maximum allowed virtual size in bytes of a single
	// transaction.
	MaxTxBytes int64

	// MinReplacementFeeIncrement is the minimum number of satoshi a
	// replacement must pay beyond the combined fees of the entries it
	// evicts.  When zero, the increment is derived from MinRelayTxFee
	// over the replacement's size so the bump at least covers the
	// replacement's own relay cost.
	MinReplacementFeeIncrement btcutil.Amount

	// MaxReplacementEvictions is the maximum number of live entries a
	// single replacement may evict, counting the full descendant closure
	// of the conflicting transactions.
	MaxReplacementEvictions int

	// MaxOrphanTxs is the maximum number of orphan transactions that can
	// be queued.  A value of zero disables the orphan pool entirely.
	MaxOrphanTxs int

	// MaxOrphanTxSize is the maximum size allowed for orphan
	// transactions.  This helps prevent memory exhaustion from a lot of
	// big orphans.
	MaxOrphanTxSize int
}

// DefaultPolicy returns a Policy populated with the package defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxMempoolBytes:         DefaultMaxMempoolBytes,
		MinRelayTxFee:           DefaultMinRelayTxFee,
		MaxTxBytes:              DefaultMaxTxBytes,
		MaxReplacementEvictions: DefaultMaxReplacementEvictions,
		MaxOrphanTxs:            DefaultMaxOrphanTxs,
		MaxOrphanTxSize:         DefaultMaxOrphanTxSize,
	}
}

// GetTxVirtualSize returns the virtual size of the passed transaction.  The
// virtual size is the serialized size of the transaction and is the quantity
// every fee rate and byte budget in this package is measured against.
func GetTxVirtualSize(tx *chain.Tx) int64 {
	return int64(tx.MsgTx().SerializeSize())
}

// calcMinRequiredTxRelayFee returns the minimum transaction fee required for
// a transaction with the passed serialized size to be accepted into the
// memory pool.
func calcMinRequiredTxRelayFee(serializedSize int64, minRelayTxFee btcutil.Amount) int64 {
	// Calculate the minimum fee for a transaction to be allowed into the
	// mempool.  minRelayTxFee is in satoshi/kB so multiply by
	// serializedSize (which is in bytes) and divide by 1000 to get the
	// minimum satoshis.
	minFee := (serializedSize * int64(minRelayTxFee)) / 1000

	if minFee == 0 && minRelayTxFee > 0 {
		minFee = int64(minRelayTxFee)
	}

	// Set the minimum fee to the maximum possible value if the calculated
	// fee is not in the valid range for monetary amounts.
	if minFee < 0 || minFee > btcutil.MaxSatoshi {
		minFee = btcutil.MaxSatoshi
	}

	return minFee
}

// GetDustThreshold calculates the dust limit for a given output by taking the
// cost of spending the output into account: the size of the output itself
// plus the size of the input that would later consume it, multiplied by 3 so
// an output is not considered dust unless relaying both the output and its
// eventual redemption would cost more than a third of its value at the
// minimum relay fee.
func GetDustThreshold(txOut *chain.TxOut) int64 {
	return 3 * int64(txOut.SerializeSize()+dustSpendCost)
}

// IsDust returns whether or not the passed transaction output amount is
// considered dust or not based on the passed minimum transaction relay fee.
// Dust is defined in terms of the minimum transaction relay fee.
func IsDust(txOut *chain.TxOut, minRelayTxFee btcutil.Amount) bool {
	// The output is considered dust if the cost to the network to spend
	// the coins is more than 1/3 of its value.
	return txOut.Value*1000/GetDustThreshold(txOut) < int64(minRelayTxFee)
}

// CheckTransactionStandard performs a series of checks on a transaction to
// ensure it is a "standard" transaction.  A standard transaction is one that
// conforms to several additional limiting cases over what is considered
// structurally valid, such as having a version in the supported range, a
// bounded signature script on every input, a well-formed address tag on
// every output, and no dust outputs.
func CheckTransactionStandard(tx *chain.Tx, minRelayTxFee btcutil.Amount) error {
	// The transaction must be a currently supported version.
	msgTx := tx.MsgTx()
	if msgTx.Version > chain.TxVersion || msgTx.Version < 1 {
		str := fmt.Sprintf("transaction version %d is not in the "+
			"valid range of %d-%d", msgTx.Version, 1,
			chain.TxVersion)
		return txRuleError(ErrNonStandard, str)
	}

	// Each input must carry a signature script the externally supplied
	// predicate can plausibly verify.  An empty script can never satisfy
	// the predicate and an overlong one is a relay cost with no benefit.
	for i, txIn := range msgTx.TxIn {
		sigScriptLen := len(txIn.SignatureScript)
		if sigScriptLen == 0 {
			str := fmt.Sprintf("transaction input %d has an "+
				"empty signature script", i)
			return txRuleError(ErrNonStandard, str)
		}
		if sigScriptLen > maxStandardSigScriptSize {
			str := fmt.Sprintf("transaction input %d: signature "+
				"script size of %d bytes is larger than max "+
				"allowed size of %d bytes", i, sigScriptLen,
				maxStandardSigScriptSize)
			return txRuleError(ErrNonStandard, str)
		}
	}

	// Each output must carry a plausible owning-address tag and must not
	// be dust.
	for i, txOut := range msgTx.TxOut {
		if len(txOut.Address) == 0 {
			str := fmt.Sprintf("transaction output %d has an "+
				"empty address tag", i)
			return txRuleError(ErrNonStandard, str)
		}
		if len(txOut.Address) > chain.MaxAddressLen {
			str := fmt.Sprintf("transaction output %d: address "+
				"tag of %d bytes is larger than max allowed "+
				"size of %d bytes", i, len(txOut.Address),
				chain.MaxAddressLen)
			return txRuleError(ErrNonStandard, str)
		}
		if IsDust(txOut, minRelayTxFee) {
			str := fmt.Sprintf("transaction output %d: payment "+
				"of %d is dust", i, txOut.Value)
			return txRuleError(ErrNonStandard, str)
		}
	}

	return nil
}
