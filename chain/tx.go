// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// TxVersion is the current latest supported transaction version.
const TxVersion = 1

// MaxAddressLen is the maximum allowed length in bytes for the address tag
// of a transaction output.
const MaxAddressLen = 90

// TxIn defines a transaction input.  It references a single spendable output
// by the hash of its origin transaction and the index of the output within
// that transaction.
type TxIn struct {
	// PreviousOutPoint identifies the spendable output being consumed.
	PreviousOutPoint wire.OutPoint

	// SignatureScript is the opaque blob handed to the externally supplied
	// signature predicate during validation.  The transaction model places
	// no meaning on its contents beyond a standardness size bound.
	SignatureScript []byte
}

// NewTxIn returns a new transaction input with the provided previous outpoint
// and signature script.
func NewTxIn(prevOut *wire.OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	// Outpoint hash 32 bytes + outpoint index 4 bytes + serialized varint
	// size for the length of the signature script + signature script
	// bytes.
	return 36 + wire.VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript)
}

// TxOut defines a transaction output.  It carries the value in satoshi along
// with the owning-address tag.
type TxOut struct {
	// Value is the amount of the output in satoshi.
	Value int64

	// Address is the owning-address tag for the output.
	Address string
}

// NewTxOut returns a new transaction output with the provided value and
// address tag.
func NewTxOut(value int64, address string) *TxOut {
	return &TxOut{
		Value:   value,
		Address: address,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of the
	// address + address bytes.
	return 8 + wire.VarIntSerializeSize(uint64(len(t.Address))) +
		len(t.Address)
}

// MsgTx implements a simplified bitcoin-style transaction consisting of an
// ordered sequence of inputs and an ordered sequence of outputs.  It is
// immutable by convention once it has been wrapped by a Tx.
//
// Use the AddTxIn and AddTxOut functions to build up the list of transaction
// inputs and outputs.
type MsgTx struct {
	Version int32
	TxIn    []*TxIn
	TxOut   []*TxOut
}

// NewMsgTx returns a new transaction that conforms to the transaction model.
// The return instance has a default version of TxVersion and there are no
// inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TotalOut returns the sum of the values of all outputs of the transaction.
//
// Overflow checking is intentionally omitted here since it is performed by
// CheckTransactionSanity before any value computed from an unvalidated
// transaction is used.
func (msg *MsgTx) TotalOut() int64 {
	var total int64
	for _, txOut := range msg.TxOut {
		total += txOut.Value
	}
	return total
}

// Serialize encodes the transaction to w using a stable, deterministic
// format: the version, followed by a varint-counted sequence of inputs
// (outpoint hash, outpoint index, varint-prefixed signature script), followed
// by a varint-counted sequence of outputs (value, varint-prefixed address).
// All integers are little endian.
//
// The serialization is the sole input to TxHash, so any two transactions
// with identical contents share an identifier.
func (msg *MsgTx) Serialize(w io.Writer) error {
	var scratch [8]byte

	binary.LittleEndian.PutUint32(scratch[:4], uint32(msg.Version))
	if _, err := w.Write(scratch[:4]); err != nil {
		return err
	}

	err := wire.WriteVarInt(w, 0, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(scratch[:4],
			ti.PreviousOutPoint.Index)
		if _, err := w.Write(scratch[:4]); err != nil {
			return err
		}
		err = wire.WriteVarInt(w, 0, uint64(len(ti.SignatureScript)))
		if err != nil {
			return err
		}
		if _, err := w.Write(ti.SignatureScript); err != nil {
			return err
		}
	}

	err = wire.WriteVarInt(w, 0, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		binary.LittleEndian.PutUint64(scratch[:], uint64(to.Value))
		if _, err := w.Write(scratch[:]); err != nil {
			return err
		}
		err = wire.WriteVarInt(w, 0, uint64(len(to.Address)))
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, to.Address); err != nil {
			return err
		}
	}

	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.  This is the virtual size of the transaction: it is the size
// used consistently for every fee rate computation, the mempool byte budget,
// and the block size budget.
func (msg *MsgTx) SerializeSize() int {
	// Version 4 bytes + serialized varint size for the number of
	// inputs and outputs.
	n := 4 + wire.VarIntSerializeSize(uint64(len(msg.TxIn))) +
		wire.VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}

	return n
}

// TxHash generates the hash for the transaction.  The hash is a deterministic
// function of the full ordered contents of the transaction and serves as its
// identifier.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())

	// Ignore Serialize's error returns since the only way the encode could
	// fail is being out of memory and the target is a bytes.Buffer which
	// never fails that way.
	_ = msg.Serialize(&buf)

	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy creates a deep copy of the transaction so the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version: msg.Version,
		TxIn:    make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:   make([]*TxOut, 0, len(msg.TxOut)),
	}

	for _, ti := range msg.TxIn {
		sigScript := make([]byte, len(ti.SignatureScript))
		copy(sigScript, ti.SignatureScript)
		newTx.TxIn = append(newTx.TxIn, &TxIn{
			PreviousOutPoint: ti.PreviousOutPoint,
			SignatureScript:  sigScript,
		})
	}
	for _, to := range msg.TxOut {
		newTxOut := *to
		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}

	return &newTx
}

// Tx defines a transaction that provides easier and more efficient
// manipulation of raw transactions.  It memoizes the hash for the
// transaction on its first access so subsequent accesses don't have to
// repeat the relatively expensive hashing operation.
type Tx struct {
	msgTx  *MsgTx
	txHash *chainhash.Hash
}

// MsgTx returns the underlying MsgTx for the transaction.
func (t *Tx) MsgTx() *MsgTx {
	return t.msgTx
}

// Hash returns the hash of the transaction.  This is equivalent to calling
// TxHash on the underlying MsgTx, however it caches the result so subsequent
// calls are more efficient.
func (t *Tx) Hash() *chainhash.Hash {
	if t.txHash != nil {
		return t.txHash
	}

	hash := t.msgTx.TxHash()
	t.txHash = &hash
	return &hash
}

// NewTx returns a new instance of a transaction given an underlying MsgTx.
func NewTx(msgTx *MsgTx) *Tx {
	return &Tx{msgTx: msgTx}
}
