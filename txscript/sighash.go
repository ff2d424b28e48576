// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The btcsuite developers (BIP143)
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

// SigHashType represents the hash type bits at the end of a signature.
type SigHashType uint32

const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	sigHashMask = 0x1f
)

// shallowCopyTx copies tx's top-level fields and fresh TxIn/TxOut headers
// without the deep witness/script copy wire.MsgTx.Copy performs: the
// legacy sighash only ever mutates SignatureScript/Value/Sequence/output
// lists, never witness data.
func shallowCopyTx(tx *wire.MsgTx) wire.MsgTx {
	txCopy := wire.MsgTx{
		Version:  tx.Version,
		TxIn:     make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:    make([]*wire.TxOut, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}
	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, old := range tx.TxIn {
		txIns[i] = *old
		txCopy.TxIn[i] = &txIns[i]
	}
	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, old := range tx.TxOut {
		txOuts[i] = *old
		txCopy.TxOut[i] = &txOuts[i]
	}
	return txCopy
}

// calcSignatureHash computes the pre-BIP143 (legacy) signature hash for the
// specified input, per the original Satoshi algorithm including its
// known SigHashSingle-out-of-range quirk (hash of 1, preserved as consensus).
func calcSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int) []byte {
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:]
	}

	subScript = removeOpcodeRaw(subScript, OP_CODESEPARATOR)

	txCopy := shallowCopyTx(tx)
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = subScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// Undefined hash types are treated like SigHashAll for hashing
		// purposes, matching consensus.
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	buf := make([]byte, 0, txCopy.SerializeSizeStripped()+4)
	w := &growBuf{b: buf}
	_ = txCopy.SerializeNoWitness(w)
	var typeBytes [4]byte
	binary.LittleEndian.PutUint32(typeBytes[:], uint32(hashType))
	w.b = append(w.b, typeBytes[:]...)
	return chainhash.DoubleHashB(w.b)
}

type growBuf struct{ b []byte }

func (g *growBuf) Write(p []byte) (int, error) {
	g.b = append(g.b, p...)
	return len(p), nil
}

// TxSigHashes holds the three BIP143 midstate hashes shared by every input
// of a transaction. NewTxSigHashes computes all three eagerly; the value is
// not stored on the transaction, so each NewTxSigHashes call recomputes them.
type TxSigHashes struct {
	HashPrevOuts chainhash.Hash
	HashSequence chainhash.Hash
	HashOutputs  chainhash.Hash
}

// NewTxSigHashes precomputes the BIP143 cache for tx.
func NewTxSigHashes(tx *wire.MsgTx) *TxSigHashes {
	var prevouts, sequences, outputs []byte
	for _, in := range tx.TxIn {
		var buf [36]byte
		copy(buf[:32], in.PreviousOutPoint.Hash[:])
		binary.LittleEndian.PutUint32(buf[32:], in.PreviousOutPoint.Index)
		prevouts = append(prevouts, buf[:]...)

		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		sequences = append(sequences, seq[:]...)
	}
	for _, out := range tx.TxOut {
		var val [8]byte
		binary.LittleEndian.PutUint64(val[:], uint64(out.Value))
		outputs = append(outputs, val[:]...)
		outputs = append(outputs, serializeVarBytes(out.PkScript)...)
	}

	return &TxSigHashes{
		HashPrevOuts: chainhash.DoubleHashH(prevouts),
		HashSequence: chainhash.DoubleHashH(sequences),
		HashOutputs:  chainhash.DoubleHashH(outputs),
	}
}

func serializeVarBytes(b []byte) []byte {
	n := wire.VarIntSerializeSize(uint64(len(b)))
	out := make([]byte, 0, n+len(b))
	w := &growBuf{b: out}
	_ = wire.WriteVarInt(w, uint64(len(b)))
	w.b = append(w.b, b...)
	return w.b
}

// calcWitnessSignatureHash computes the BIP143 signature hash for a segwit
// v0 input.
func calcWitnessSignatureHash(subScript []byte, sigHashes *TxSigHashes, hashType SigHashType, tx *wire.MsgTx, idx int, amount int64) []byte {
	var hashPrevOuts, hashSequence, hashOutputs chainhash.Hash

	if hashType&SigHashAnyOneCanPay == 0 {
		hashPrevOuts = sigHashes.HashPrevOuts
	}
	if hashType&SigHashAnyOneCanPay == 0 && hashType&sigHashMask != SigHashSingle && hashType&sigHashMask != SigHashNone {
		hashSequence = sigHashes.HashSequence
	}
	if hashType&sigHashMask != SigHashSingle && hashType&sigHashMask != SigHashNone {
		hashOutputs = sigHashes.HashOutputs
	} else if hashType&sigHashMask == SigHashSingle && idx < len(tx.TxOut) {
		var val [8]byte
		binary.LittleEndian.PutUint64(val[:], uint64(tx.TxOut[idx].Value))
		data := append(val[:], serializeVarBytes(tx.TxOut[idx].PkScript)...)
		hashOutputs = chainhash.DoubleHashH(data)
	}

	var buf []byte
	var ver [4]byte
	binary.LittleEndian.PutUint32(ver[:], uint32(tx.Version))
	buf = append(buf, ver[:]...)
	buf = append(buf, hashPrevOuts[:]...)
	buf = append(buf, hashSequence[:]...)

	in := tx.TxIn[idx]
	var outpoint [36]byte
	copy(outpoint[:32], in.PreviousOutPoint.Hash[:])
	binary.LittleEndian.PutUint32(outpoint[32:], in.PreviousOutPoint.Index)
	buf = append(buf, outpoint[:]...)

	buf = append(buf, serializeVarBytes(subScript)...)

	var val [8]byte
	binary.LittleEndian.PutUint64(val[:], uint64(amount))
	buf = append(buf, val[:]...)

	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	buf = append(buf, seq[:]...)

	buf = append(buf, hashOutputs[:]...)

	var lockTime [4]byte
	binary.LittleEndian.PutUint32(lockTime[:], tx.LockTime)
	buf = append(buf, lockTime[:]...)

	var ht [4]byte
	binary.LittleEndian.PutUint32(ht[:], uint32(hashType))
	buf = append(buf, ht[:]...)

	return chainhash.DoubleHashB(buf)
}
