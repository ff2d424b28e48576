// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/libbitcoin/libbitcoin-system-sub010/btcec"
	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

const (
	controlBlockBaseSize = 33
	controlBlockNodeSize = 32
	maxControlBlockNodes = 128

	// leafVersionTapscript is the only leaf version this package executes;
	// any other (even) leaf version is a future soft fork and succeeds
	// unconditionally per BIP342.
	leafVersionTapscript = 0xc0
)

// isValidControlBlock reports whether a control block has the shape BIP341
// requires: 33 base bytes plus up to 128 32-byte merkle path nodes.
func isValidControlBlock(control []byte) bool {
	n := len(control)
	if n < controlBlockBaseSize {
		return false
	}
	max := controlBlockBaseSize + controlBlockNodeSize*maxControlBlockNodes
	if n > max {
		return false
	}
	return (n-controlBlockBaseSize)%controlBlockNodeSize == 0
}

// hashTapLeaf computes the tapleaf_hash BIP341 defines: the tagged hash of
// the leaf version, the script's compact-size length, and the script
// itself. This is the value witness_extract.cpp's TODO left unresolved.
func hashTapLeaf(leafVersion byte, script []byte) chainhash.Hash {
	sizeBuf := make([]byte, 0, 9)
	w := &growBuf{b: sizeBuf}
	_ = wire.WriteVarInt(w, uint64(len(script)))

	h := btcec.TaggedHash("TapLeaf", []byte{leafVersion}, w.b, script)
	return chainhash.Hash(h)
}

// hashTapBranch combines two child nodes of the control block's merkle
// path, ordering them lexicographically as BIP341 requires.
func hashTapBranch(a, b chainhash.Hash) chainhash.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	h := btcec.TaggedHash("TapBranch", a[:], b[:])
	return chainhash.Hash(h)
}

// hashTapTweak computes the tagged hash that tweaks an internal key into
// its output key: t = hashTapTweak(p || merkleRoot).
func hashTapTweak(internalKey []byte, merkleRoot chainhash.Hash) chainhash.Hash {
	h := btcec.TaggedHash("TapTweak", internalKey, merkleRoot[:])
	return chainhash.Hash(h)
}

// resolveTapscriptSpend implements the control-block verification and
// tapleaf_hash derivation the original left as a TODO: it walks the merkle
// path committed in the control block, derives the tweak, and checks the
// output key/parity equation Q = P + tG before handing back the leaf
// script to execute.
func resolveTapscriptSpend(outputKey, annex []byte, rest wire.TxWitness) (witnessSpend, error) {
	control := rest[len(rest)-1]
	if !isValidControlBlock(control) {
		return witnessSpend{}, ErrInvalidWitness
	}
	script := rest[len(rest)-2]
	stack := rest[:len(rest)-2]

	leafVersion := control[0] &^ 1
	parity := control[0] & 1

	internalKey := control[1:33]
	pubKey, err := btcec.ParsePubKeyXOnly(internalKey)
	if err != nil {
		return witnessSpend{}, ErrInvalidWitness
	}

	if leafVersion != leafVersionTapscript {
		// An unrecognized leaf version is a future soft fork: succeed
		// unconditionally without executing anything, same as an
		// OP_SUCCESS opcode inside a recognized script.
		return witnessSpend{unconditionalSuccess: true}, nil
	}

	leafHash := hashTapLeaf(leafVersion, script)

	k := leafHash
	path := control[33:]
	for len(path) > 0 {
		var node chainhash.Hash
		copy(node[:], path[:32])
		path = path[32:]
		k = hashTapBranch(k, node)
	}

	t := hashTapTweak(internalKey, k)
	tweaked := btcec.TweakPubKey(pubKey, t)
	if !bytes.Equal(btcec.SerializeXOnly(tweaked), outputKey) {
		return witnessSpend{}, ErrInvalidWitness
	}
	if (btcec.HasEvenY(tweaked)) == (parity != 0) {
		return witnessSpend{}, ErrInvalidWitness
	}

	if leafVersion != leafVersionTapscript {
		// An unrecognized leaf version is a future soft fork: once its
		// commitment checks out, succeed unconditionally without
		// executing anything, same as an OP_SUCCESS opcode inside a
		// recognized script.
		return witnessSpend{unconditionalSuccess: true}, nil
	}

	initial := make([][]byte, len(stack))
	copy(initial, stack)

	return witnessSpend{
		execScript:   script,
		initialStack: initial,
		tapscript:    true,
		leafVersion:  leafVersion,
		controlBlock: control,
		annex:        annex,
		internalKey:  internalKey,
	}, nil
}

// calcTaprootSigHash computes the BIP341 signature hash, extended with the
// BIP342 fields when leafHash is non-nil. It covers version, locktime,
// prevouts, amounts, scriptPubKeys, sequences, outputs, spend type and input
// index, tagged with "TapSighash"; the per-transaction hashes are computed
// here with single SHA-256 on every call, not taken from TxSigHashes.
func calcTaprootSigHash(tx *wire.MsgTx, idx int, prevOuts []*wire.TxOut, hashType SigHashType, leafHash *chainhash.Hash, codeSepPos uint32, annex []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(0x00) // epoch

	var hashTypeByte [1]byte
	hashTypeByte[0] = byte(hashType)
	buf.Write(hashTypeByte[:])

	var ver [4]byte
	binary.LittleEndian.PutUint32(ver[:], uint32(tx.Version))
	buf.Write(ver[:])

	var lockTime [4]byte
	binary.LittleEndian.PutUint32(lockTime[:], tx.LockTime)
	buf.Write(lockTime[:])

	if hashType&SigHashAnyOneCanPay == 0 {
		var prevouts, amounts, scripts, sequences bytes.Buffer
		for _, in := range tx.TxIn {
			binary.Write(&prevouts, binary.LittleEndian, in.PreviousOutPoint.Hash)
			binary.Write(&prevouts, binary.LittleEndian, in.PreviousOutPoint.Index)
			binary.Write(&sequences, binary.LittleEndian, in.Sequence)
		}
		for _, out := range prevOuts {
			binary.Write(&amounts, binary.LittleEndian, uint64(out.Value))
			scripts.Write(serializeVarBytes(out.PkScript))
		}
		h := chainhash.HashB(prevouts.Bytes())
		buf.Write(h)
		h = chainhash.HashB(amounts.Bytes())
		buf.Write(h)
		h = chainhash.HashB(scripts.Bytes())
		buf.Write(h)
		h = chainhash.HashB(sequences.Bytes())
		buf.Write(h)
	}

	if hashType&sigHashMask != SigHashNone && hashType&sigHashMask != SigHashSingle {
		var outputs bytes.Buffer
		for _, out := range tx.TxOut {
			binary.Write(&outputs, binary.LittleEndian, uint64(out.Value))
			outputs.Write(serializeVarBytes(out.PkScript))
		}
		h := chainhash.HashB(outputs.Bytes())
		buf.Write(h)
	}

	spendType := byte(0)
	if leafHash != nil {
		spendType |= 2
	}
	if annex != nil {
		spendType |= 1
	}
	buf.WriteByte(spendType)

	if hashType&SigHashAnyOneCanPay != 0 {
		in := tx.TxIn[idx]
		binary.Write(&buf, binary.LittleEndian, in.PreviousOutPoint.Hash)
		binary.Write(&buf, binary.LittleEndian, in.PreviousOutPoint.Index)
		binary.Write(&buf, binary.LittleEndian, uint64(prevOuts[idx].Value))
		buf.Write(serializeVarBytes(prevOuts[idx].PkScript))
		binary.Write(&buf, binary.LittleEndian, in.Sequence)
	} else {
		var idxBuf [4]byte
		binary.LittleEndian.PutUint32(idxBuf[:], uint32(idx))
		buf.Write(idxBuf[:])
	}

	if annex != nil {
		h := chainhash.HashB(serializeVarBytes(annex))
		buf.Write(h)
	}

	if hashType&sigHashMask == SigHashSingle {
		if idx >= len(tx.TxOut) {
			return nil, ErrInvalidSignatureEncoding
		}
		var outBuf bytes.Buffer
		binary.Write(&outBuf, binary.LittleEndian, uint64(tx.TxOut[idx].Value))
		outBuf.Write(serializeVarBytes(tx.TxOut[idx].PkScript))
		h := chainhash.HashB(outBuf.Bytes())
		buf.Write(h)
	}

	if leafHash != nil {
		buf.Write(leafHash[:])
		buf.WriteByte(0x00) // key_version
		var cs [4]byte
		binary.LittleEndian.PutUint32(cs[:], codeSepPos)
		buf.Write(cs[:])
	}

	out := btcec.TaggedHash("TapSighash", buf.Bytes())
	return out[:], nil
}
