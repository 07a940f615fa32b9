// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/btcsuite/txmempool/chain"
)

// ErrorCode identifies a kind of admission failure.
type ErrorCode int

// These constants are used to identify a specific RuleError.  The taxonomy
// mirrors how callers are expected to react: structural and chain errors are
// fatal to the submission, resolution errors may clear up once the missing
// output arrives, policy rejections are local to this node's configuration,
// and conflict/replacement errors are terminal only when the replacement
// rules fail.
const (
	// ErrDuplicate indicates a transaction with the same identifier
	// already exists as a live entry in the pool.
	ErrDuplicate ErrorCode = iota

	// ErrChainRule indicates the transaction failed one of the structural
	// sanity rules enforced by the chain package.
	ErrChainRule

	// ErrMissingInput indicates one of the transaction inputs does not
	// resolve to a spendable output in either the ledger or a live pool
	// entry.
	ErrMissingInput

	// ErrInsufficientInput indicates the total value of the resolved
	// inputs is lower than the total value of the outputs.
	ErrInsufficientInput

	// ErrInvalidSignature indicates the externally supplied signature
	// predicate reported one of the inputs as invalid.
	ErrInvalidSignature

	// ErrBelowMinFee indicates the transaction fee is below the minimum
	// required by the relay fee policy.
	ErrBelowMinFee

	// ErrNonStandard indicates the transaction failed one of the
	// structural standardness policy checks.
	ErrNonStandard

	// ErrOversizeTx indicates the transaction is larger than the maximum
	// size allowed by policy for a single transaction.
	ErrOversizeTx

	// ErrConflict indicates the transaction spends an output already
	// claimed by a different live pool entry and the replacement rules do
	// not allow it to take that entry's place.
	ErrConflict

	// ErrTooManyEvictions indicates a replacement would evict more
	// transactions than allowed by policy.
	ErrTooManyEvictions

	// ErrReplacementSpendsConflict indicates a replacement attempts to
	// spend an output created by one of the very transactions it would
	// evict.
	ErrReplacementSpendsConflict

	// ErrNewUnconfirmedInput indicates a replacement introduces an
	// unconfirmed ancestor that was not already an ancestor of the
	// transactions it conflicts with.
	ErrNewUnconfirmedInput

	// ErrInsufficientReplacementFee indicates a replacement does not pay
	// an absolute fee higher than the combined fees of the transactions it
	// would evict.
	ErrInsufficientReplacementFee

	// ErrInsufficientFeeIncrement indicates a replacement pays more than
	// the transactions it would evict, but not by enough to cover the
	// configured minimum fee increment.
	ErrInsufficientFeeIncrement
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrDuplicate:                  "ErrDuplicate",
	ErrChainRule:                  "ErrChainRule",
	ErrMissingInput:               "ErrMissingInput",
	ErrInsufficientInput:          "ErrInsufficientInput",
	ErrInvalidSignature:           "ErrInvalidSignature",
	ErrBelowMinFee:                "ErrBelowMinFee",
	ErrNonStandard:                "ErrNonStandard",
	ErrOversizeTx:                 "ErrOversizeTx",
	ErrConflict:                   "ErrConflict",
	ErrTooManyEvictions:           "ErrTooManyEvictions",
	ErrReplacementSpendsConflict:  "ErrReplacementSpendsConflict",
	ErrNewUnconfirmedInput:        "ErrNewUnconfirmedInput",
	ErrInsufficientReplacementFee: "ErrInsufficientReplacementFee",
	ErrInsufficientFeeIncrement:   "ErrInsufficientFeeIncrement",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the admission rules.  The
// caller can use type assertions to determine if a failure was specifically
// due to a rule violation and use the ErrorCode field to ascertain the
// specific reason.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// txRuleError creates a RuleError given a set of arguments.
func txRuleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// chainRuleError converts a rule error from the chain package into a mempool
// RuleError so the caller only has to deal with a single error surface.  The
// chain error code is preserved in the description.
func chainRuleError(chainErr chain.RuleError) RuleError {
	return RuleError{
		ErrorCode: ErrChainRule,
		Description: fmt.Sprintf("%v: %s", chainErr.ErrorCode,
			chainErr.Description),
	}
}

// IsReplacementError returns whether the passed error indicates a failed
// replacement attempt, meaning the conflicting entries remain in the pool
// untouched.
func IsReplacementError(err error) bool {
	ruleErr, ok := err.(RuleError)
	if !ok {
		return false
	}
	switch ruleErr.ErrorCode {
	case ErrTooManyEvictions, ErrReplacementSpendsConflict,
		ErrNewUnconfirmedInput, ErrInsufficientReplacementFee,
		ErrInsufficientFeeIncrement:

		return true
	}
	return false
}

// ExtractRejectCode attempts to return the ErrorCode of the passed error.
// The second return value reports whether the error carried one.
func ExtractRejectCode(err error) (ErrorCode, bool) {
	ruleErr, ok := err.(RuleError)
	if !ok {
		return 0, false
	}
	return ruleErr.ErrorCode, true
}

// AssertError identifies an error that indicates an internal mempool
// invariant was violated, such as the priority index and the spent-output
// reverse index disagreeing about a live entry.  It is fatal to the operation
// that detected it and must never be reachable through the public surface.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// assertError creates an AssertError given a format specifier and arguments.
func assertError(format string, args ...interface{}) AssertError {
	return AssertError(fmt.Sprintf(format, args...))
}
