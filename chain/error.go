// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "fmt"

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrNoTxInputs indicates a transaction does not have any inputs.  A
	// valid transaction must have at least one input.
	ErrNoTxInputs ErrorCode = iota

	// ErrNoTxOutputs indicates a transaction does not have any outputs.  A
	// valid transaction must have at least one output.
	ErrNoTxOutputs

	// ErrDuplicateTxInputs indicates a transaction references the same
	// spendable output more than once.
	ErrDuplicateTxInputs

	// ErrBadTxOutValue indicates an output value for a transaction is
	// invalid in some way such as being out of range.
	ErrBadTxOutValue

	// ErrBadTxInput indicates a transaction input is invalid in some way
	// such as referencing a previous transaction output with the null
	// hash.
	ErrBadTxInput

	// ErrMissingTxOut indicates a transaction output referenced by an
	// input does not exist in the ledger.
	ErrMissingTxOut

	// ErrSpentTxOut indicates a transaction attempts to spend an output
	// that has already been consumed by a previously connected
	// transaction.
	ErrSpentTxOut
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrNoTxInputs:        "ErrNoTxInputs",
	ErrNoTxOutputs:       "ErrNoTxOutputs",
	ErrDuplicateTxInputs: "ErrDuplicateTxInputs",
	ErrBadTxOutValue:     "ErrBadTxOutValue",
	ErrBadTxInput:        "ErrBadTxInput",
	ErrMissingTxOut:      "ErrMissingTxOut",
	ErrSpentTxOut:        "ErrSpentTxOut",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules.  The caller can use type assertions to determine if a failure was
// specifically due to a rule violation and access the ErrorCode field to
// ascertain the specific reason for the rule violation.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates an RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
