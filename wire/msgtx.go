// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
)

const (
	// TxVersion is the default transaction version the package produces.
	TxVersion = 1

	// MaxTxInSequenceNum is the maximum sequence number a TxIn can have,
	// indicating that the input's relative lock time / replace-by-fee
	// signaling is disabled.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// minTxOutPayload is the minimum payload size for a transaction
	// output: value(8) + varint length(1).
	minTxOutPayload = 9

	// minTxInPayload is the minimum payload size for a transaction
	// input: outpoint hash + index(4) + sequence(4) + varint script
	// length(1).
	minTxInPayload = 9 + chainhash.HashSize

	maxTxInPerMessage  = (MaxMessagePayload / minTxInPayload) + 1
	maxTxOutPerMessage = (MaxMessagePayload / minTxOutPayload) + 1

	// minTxPayload is the absolute smallest a transaction could ever be:
	// version(4) + two one-byte varint counts + lock time(4).
	minTxPayload = 10

	// freeListMaxScriptSize is the size of each buffer kept in the script
	// deserialization free list. It is sized to cover the vast majority
	// of standard scripts without falling back to a fresh allocation.
	freeListMaxScriptSize = 512

	// freeListMaxItems bounds how many buffers the free list retains.
	freeListMaxItems = 12500

	// maxWitnessItemsPerInput and maxWitnessItemSize bound the witness
	// stack read for a single input against a maliciously inflated
	// varint length prefix.
	maxWitnessItemsPerInput = 500000
	maxWitnessItemSize      = 11000

	// defaultTxInOutAlloc sizes the initial backing array for TxIn/TxOut
	// slices to avoid repeated growth for a typical transaction.
	defaultTxInOutAlloc = 15
)

// witnessMarkerBytes precede a segwit transaction's input count: a 0x00
// marker (never a valid input count) followed by a 0x01 flag byte.
var witnessMarkerBytes = []byte{0x00, 0x01}

// scriptFreeList is a pool of reusable byte slices used to reduce
// allocations while deserializing scripts off the wire.
type scriptFreeList chan []byte

func (c scriptFreeList) Borrow(size uint64) []byte {
	if size > freeListMaxScriptSize {
		return make([]byte, size)
	}

	var buf []byte
	select {
	case buf = <-c:
	default:
		buf = make([]byte, freeListMaxScriptSize)
	}
	return buf[:size]
}

func (c scriptFreeList) Return(buf []byte) {
	if cap(buf) != freeListMaxScriptSize {
		return
	}
	select {
	case c <- buf:
	default:
	}
}

var scriptPool scriptFreeList = make(chan []byte, freeListMaxItems)

// OutPoint defines a bitcoin data type used to track a previous
// transaction output being spent.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new OutPoint for the given hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String returns the OutPoint in "hash:index" form.
func (o OutPoint) String() string {
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxWitness is the witness stack carried by a segwit TxIn: a slice of byte
// slices, pushed in order onto the script interpreter's initial stack.
type TxWitness [][]byte

// SerializeSize returns the number of bytes the witness occupies on the
// wire: a varint element count followed by length-prefixed elements.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += VarIntSerializeSize(uint64(len(item)))
		n += len(item)
	}
	return n
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// SerializeSize returns the number of bytes the input occupies on the
// wire, excluding any witness data (which is serialized out of band in
// the segwit marker/flag section).
func (t *TxIn) SerializeSize() int {
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript)
}

// NewTxIn returns a new transaction input spending prevOut with the given
// signature script and a default (lock-time disabled) sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes the output occupies on the wire.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new transaction output paying value to pkScript.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// MsgTx implements the Message interface and represents a bitcoin tx
// message, delivering a single transaction in its legacy or segwit wire
// form depending on whether any input carries witness data.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// HasWitness reports whether any input of the transaction carries witness
// data, which determines whether the segwit marker/flag/witness sections
// are present on the wire.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}

// TxHash computes the transaction's legacy identifier: the double SHA-256
// of the transaction serialized without any witness data. This is the
// value referenced by OutPoint.Hash and by legacy inventory/merkle logic.
func (msg *MsgTx) TxHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSizeStripped()))
	_ = msg.SerializeNoWitness(buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash computes the hash used within a block's witness commitment:
// the double SHA-256 of the full (witness-included) serialization. When
// the transaction carries no witness data this is identical to TxHash.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if msg.HasWitness() {
		buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
		_ = msg.Serialize(buf)
		return chainhash.DoubleHashH(buf.Bytes())
	}
	return msg.TxHash()
}

// Copy creates a deep copy of the transaction.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newOutPoint := OutPoint{Index: oldTxIn.PreviousOutPoint.Index}
		newOutPoint.Hash.SetBytes(oldTxIn.PreviousOutPoint.Hash[:])

		var newScript []byte
		if n := len(oldTxIn.SignatureScript); n > 0 {
			newScript = make([]byte, n)
			copy(newScript, oldTxIn.SignatureScript)
		}

		newTxIn := TxIn{
			PreviousOutPoint: newOutPoint,
			SignatureScript:  newScript,
			Sequence:         oldTxIn.Sequence,
		}

		if len(oldTxIn.Witness) != 0 {
			newTxIn.Witness = make([][]byte, len(oldTxIn.Witness))
			for i, item := range oldTxIn.Witness {
				newItem := make([]byte, len(item))
				copy(newItem, item)
				newTxIn.Witness[i] = newItem
			}
		}

		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		var newScript []byte
		if n := len(oldTxOut.PkScript); n > 0 {
			newScript = make([]byte, n)
			copy(newScript, oldTxOut.PkScript)
		}
		newTx.TxOut = append(newTx.TxOut, &TxOut{Value: oldTxOut.Value, PkScript: newScript})
	}

	return &newTx
}

// BtcDecode decodes r using the bitcoin wire encoding into the receiver.
// It transparently recognizes the segwit marker/flag bytes and switches
// to reading per-input witness stacks accordingly.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	version, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Version = int32(version)

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	var flag [1]byte
	segwit := false
	if count == 0 {
		if _, err = io.ReadFull(r, flag[:]); err != nil {
			return err
		}
		if flag[0] != 0 {
			segwit = true
			count, err = ReadVarInt(r)
			if err != nil {
				return err
			}
		}
	}

	if count > uint64(maxTxInPerMessage) {
		return messageError("MsgTx.BtcDecode", fmt.Sprintf(
			"too many input transactions to fit into max message size [count %d, max %d]", count, maxTxInPerMessage))
	}

	txIns := make([]TxIn, count)
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		msg.TxIn[i] = ti
		if err := readTxIn(r, pver, ti); err != nil {
			return err
		}
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if outCount > uint64(maxTxOutPerMessage) {
		return messageError("MsgTx.BtcDecode", fmt.Sprintf(
			"too many output transactions to fit into max message size [count %d, max %d]", outCount, maxTxOutPerMessage))
	}

	txOuts := make([]TxOut, outCount)
	msg.TxOut = make([]*TxOut, outCount)
	for i := uint64(0); i < outCount; i++ {
		to := &txOuts[i]
		msg.TxOut[i] = to
		if err := readTxOut(r, pver, to); err != nil {
			return err
		}
	}

	if segwit {
		for _, txIn := range msg.TxIn {
			witness, err := readTxWitness(r)
			if err != nil {
				return err
			}
			txIn.Witness = witness
		}
	}

	lockTime, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	msg.LockTime = lockTime

	return nil
}

// Deserialize decodes a non-framed transaction (no Message header) from r,
// as used when a transaction is stored or transmitted outside an enclosing
// wire message.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	return msg.BtcDecode(r, 0)
}

// readTxIn reads the next TxIn from r.
func readTxIn(r io.Reader, pver uint32, ti *TxIn) error {
	if err := readOutPoint(r, pver, &ti.PreviousOutPoint); err != nil {
		return err
	}

	script, err := readScript(r, "transaction input signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script

	seq, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	ti.Sequence = seq
	return nil
}

func readOutPoint(r io.Reader, pver uint32, op *OutPoint) error {
	if err := ReadHash(r, &op.Hash); err != nil {
		return err
	}
	idx, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	op.Index = idx
	return nil
}

func readTxOut(r io.Reader, pver uint32, to *TxOut) error {
	value, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	to.Value = int64(value)

	script, err := readScript(r, "transaction output public key script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}

// readScript reads a varint-length-prefixed script, bouncing through the
// script free list to avoid an allocation for the common small-script
// case before copying into a right-sized final buffer.
func readScript(r io.Reader, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > uint64(MaxMessagePayload) {
		return nil, messageError("readScript", fmt.Sprintf(
			"%s is larger than the max allowed size [count %d, max %d]", fieldName, count, MaxMessagePayload))
	}

	buf := scriptPool.Borrow(count)
	if _, err := io.ReadFull(r, buf); err != nil {
		scriptPool.Return(buf)
		return nil, err
	}

	final := make([]byte, count)
	copy(final, buf)
	scriptPool.Return(buf)
	return final, nil
}

// readTxWitness reads the witness stack for a single input.
func readTxWitness(r io.Reader) (TxWitness, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxWitnessItemsPerInput {
		return nil, messageError("readTxWitness", fmt.Sprintf(
			"too many witness items to fit into max message size [count %d, max %d]", count, maxWitnessItemsPerInput))
	}

	witness := make(TxWitness, count)
	for i := uint64(0); i < count; i++ {
		item, err := ReadVarBytes(r, maxWitnessItemSize, "script witness item")
		if err != nil {
			return nil, err
		}
		witness[i] = item
	}
	return witness, nil
}

// BtcEncode encodes the receiver to w using the bitcoin wire encoding,
// emitting the segwit marker/flag and per-input witness stacks whenever
// any input carries witness data.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(msg.Version)); err != nil {
		return err
	}

	segwit := msg.HasWitness()
	if segwit {
		if _, err := w.Write(witnessMarkerBytes); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, pver, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, pver, to); err != nil {
			return err
		}
	}

	if segwit {
		for _, ti := range msg.TxIn {
			if err := writeTxWitness(w, ti.Witness); err != nil {
				return err
			}
		}
	}

	return binarySerializer.PutUint32(w, littleEndian, msg.LockTime)
}

// Serialize encodes the transaction including witness data (if present) to
// w, matching BtcEncode but named for the non-message-framed call site.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.BtcEncode(w, 0)
}

// SerializeNoWitness encodes the legacy (pre-BIP141) form of the
// transaction to w regardless of whether witness data is present. This is
// always the form hashed to produce TxHash.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(msg.Version)); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, 0, ti); err != nil {
			return err
		}
	}
	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, 0, to); err != nil {
			return err
		}
	}
	return binarySerializer.PutUint32(w, littleEndian, msg.LockTime)
}

func writeTxIn(w io.Writer, pver uint32, ti *TxIn) error {
	if err := writeOutPoint(w, pver, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, littleEndian, ti.Sequence)
}

func writeOutPoint(w io.Writer, pver uint32, op *OutPoint) error {
	if err := WriteHash(w, &op.Hash); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, littleEndian, op.Index)
}

func writeTxOut(w io.Writer, pver uint32, to *TxOut) error {
	if err := binarySerializer.PutUint64(w, littleEndian, uint64(to.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}

func writeTxWitness(w io.Writer, witness TxWitness) error {
	if err := WriteVarInt(w, uint64(len(witness))); err != nil {
		return err
	}
	for _, item := range witness {
		if err := WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// SerializeSize returns the number of bytes the transaction occupies on
// the wire, including witness data when present.
func (msg *MsgTx) SerializeSize() int {
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) + VarIntSerializeSize(uint64(len(msg.TxOut)))

	if msg.HasWitness() {
		n += len(witnessMarkerBytes)
	}

	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
		if msg.HasWitness() {
			n += ti.Witness.SerializeSize()
		}
	}
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// SerializeSizeStripped returns the number of bytes the transaction
// occupies on the wire when serialized without witness data.
func (msg *MsgTx) SerializeSizeStripped() int {
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) + VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

func (msg *MsgTx) Command() string {
	return CmdTx
}

func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

// NewMsgTx returns a new bitcoin tx message with the given version and
// preallocated backing arrays for a typical transaction's inputs/outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}
