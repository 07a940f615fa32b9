// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
)

// testTx returns a small two-input two-output transaction for use throughout
// the tests.
func testTx() *MsgTx {
	msgTx := NewMsgTx(TxVersion)
	prevOutA := wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0}
	prevOutB := wire.OutPoint{Hash: chainhash.Hash{0x02}, Index: 3}
	msgTx.AddTxIn(NewTxIn(&prevOutA, []byte{0xab, 0xcd}))
	msgTx.AddTxIn(NewTxIn(&prevOutB, []byte{0xef}))
	msgTx.AddTxOut(NewTxOut(40000000, "addr-one"))
	msgTx.AddTxOut(NewTxOut(9000000, "addr-two"))
	return msgTx
}

// TestTxSerializeSize performs tests to ensure the serialize size for
// transactions is accurate by comparing it against the length of an actual
// serialization.
func TestTxSerializeSize(t *testing.T) {
	tests := []*MsgTx{
		NewMsgTx(TxVersion),
		testTx(),
	}
	for i, msgTx := range tests {
		var buf bytes.Buffer
		if err := msgTx.Serialize(&buf); err != nil {
			t.Fatalf("Serialize #%d error %v", i, err)
		}
		if msgTx.SerializeSize() != buf.Len() {
			t.Errorf("SerializeSize #%d: got %d, want %d -- %s", i,
				msgTx.SerializeSize(), buf.Len(),
				spew.Sdump(msgTx))
		}
	}
}

// TestTxHash tests that the transaction id commits to the transaction
// contents: equal transactions hash equally and any mutation changes the
// hash.
func TestTxHash(t *testing.T) {
	tx := NewTx(testTx())
	sameTx := NewTx(testTx())
	if *tx.Hash() != *sameTx.Hash() {
		t.Fatal("identical transactions produced different hashes")
	}

	// Any mutation of the message produces a different id.
	wantHash := *tx.Hash()
	changed := NewTx(testTx().Copy())
	changed.MsgTx().TxOut[0].Value++
	if *changed.Hash() == wantHash {
		t.Fatal("mutated transaction produced an unchanged hash")
	}
}

// TestTxCopy tests that copied transactions are deep copies that share no
// backing state with the original.
func TestTxCopy(t *testing.T) {
	orig := testTx()
	cp := orig.Copy()

	if orig.TxHash() != cp.TxHash() {
		t.Fatal("copy does not hash equal to the original")
	}

	cp.TxIn[0].SignatureScript[0] ^= 0xff
	cp.TxOut[0].Value++
	if orig.TxIn[0].SignatureScript[0] == cp.TxIn[0].SignatureScript[0] {
		t.Fatal("copy shares signature script storage with original")
	}
	if orig.TxOut[0].Value == cp.TxOut[0].Value {
		t.Fatal("copy shares output storage with original")
	}
}

// TestTotalOut tests the output value summation over a transaction.
func TestTotalOut(t *testing.T) {
	if got := testTx().TotalOut(); got != 49000000 {
		t.Fatalf("TotalOut: got %d, want %d", got, 49000000)
	}
	if got := NewMsgTx(TxVersion).TotalOut(); got != 0 {
		t.Fatalf("TotalOut: got %d, want 0 for no outputs", got)
	}
}

// TestCheckTransactionSanity tests the structural transaction checks with
// various violations.
func TestCheckTransactionSanity(t *testing.T) {
	validIn := func() *TxIn {
		prevOut := wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0}
		return NewTxIn(&prevOut, []byte{0x01})
	}

	tests := []struct {
		name string
		tx   *MsgTx
		code ErrorCode
		ok   bool
	}{
		{
			name: "valid transaction",
			tx: &MsgTx{
				Version: TxVersion,
				TxIn:    []*TxIn{validIn()},
				TxOut:   []*TxOut{NewTxOut(1000, "a")},
			},
			ok: true,
		},
		{
			name: "no inputs",
			tx: &MsgTx{
				Version: TxVersion,
				TxOut:   []*TxOut{NewTxOut(1000, "a")},
			},
			code: ErrNoTxInputs,
		},
		{
			name: "no outputs",
			tx: &MsgTx{
				Version: TxVersion,
				TxIn:    []*TxIn{validIn()},
			},
			code: ErrNoTxOutputs,
		},
		{
			name: "negative output value",
			tx: &MsgTx{
				Version: TxVersion,
				TxIn:    []*TxIn{validIn()},
				TxOut:   []*TxOut{NewTxOut(-1, "a")},
			},
			code: ErrBadTxOutValue,
		},
		{
			name: "single output value too large",
			tx: &MsgTx{
				Version: TxVersion,
				TxIn:    []*TxIn{validIn()},
				TxOut: []*TxOut{
					NewTxOut(btcutil.MaxSatoshi+1, "a"),
				},
			},
			code: ErrBadTxOutValue,
		},
		{
			name: "total output value too large",
			tx: &MsgTx{
				Version: TxVersion,
				TxIn:    []*TxIn{validIn()},
				TxOut: []*TxOut{
					NewTxOut(btcutil.MaxSatoshi, "a"),
					NewTxOut(btcutil.MaxSatoshi, "b"),
				},
			},
			code: ErrBadTxOutValue,
		},
		{
			name: "duplicate inputs",
			tx: &MsgTx{
				Version: TxVersion,
				TxIn:    []*TxIn{validIn(), validIn()},
				TxOut:   []*TxOut{NewTxOut(1000, "a")},
			},
			code: ErrDuplicateTxInputs,
		},
		{
			name: "null previous outpoint",
			tx: &MsgTx{
				Version: TxVersion,
				TxIn: []*TxIn{
					NewTxIn(&wire.OutPoint{}, []byte{0x01}),
				},
				TxOut: []*TxOut{NewTxOut(1000, "a")},
			},
			code: ErrBadTxInput,
		},
	}

	for _, test := range tests {
		err := CheckTransactionSanity(NewTx(test.tx))
		if test.ok {
			if err != nil {
				t.Errorf("%s: unexpected error %v", test.name, err)
			}
			continue
		}
		rerr, isRuleErr := err.(RuleError)
		if !isRuleErr {
			t.Errorf("%s: error %T is not a RuleError", test.name, err)
			continue
		}
		if rerr.ErrorCode != test.code {
			t.Errorf("%s: got code %v, want %v", test.name,
				rerr.ErrorCode, test.code)
		}
	}
}
