// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"errors"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

// witnessCommitmentHeader is the six-byte prefix (BIP141) that opens a
// coinbase output carrying the witness commitment: OP_RETURN, push-36 and
// the four-byte tag aa21a9ed, followed by the 32-byte commitment itself.
var witnessCommitmentHeader = []byte{0x6a, 0x24, 0xaa, 0x21, 0xa9, 0xed}

var (
	// ErrNoTransactions is returned by VerifyMerkleRoot and
	// VerifyWitnessCommitment for a block with no transactions: every
	// valid block has at least a coinbase.
	ErrNoTransactions = errors.New("blockchain: block has no transactions")

	// ErrMerkleRootMismatch is returned when a block's transactions do
	// not hash to the merkle root its header commits to.
	ErrMerkleRootMismatch = errors.New("blockchain: merkle root does not match header")

	// ErrMerkleRootMalleated is returned when a block's merkle tree
	// contains duplicated adjacent leaves at some level, the CVE-2012-2459
	// shape that lets two distinct transaction lists share a root.
	ErrMerkleRootMalleated = errors.New("blockchain: duplicate transaction in merkle tree")

	// ErrMissingWitnessCommitment is returned by VerifyWitnessCommitment
	// when the block carries at least one witness but its coinbase has no
	// matching commitment output.
	ErrMissingWitnessCommitment = errors.New("blockchain: block commits no witnesses but contains one")

	// ErrWitnessCommitmentMismatch is returned when the coinbase's witness
	// commitment does not match the block's actual witness data.
	ErrWitnessCommitmentMismatch = errors.New("blockchain: witness commitment mismatch")

	// ErrMissingWitnessNonce is returned when a block contains witness
	// data but its coinbase input's witness stack does not carry the
	// required 32-byte reserved value.
	ErrMissingWitnessNonce = errors.New("blockchain: coinbase missing witness reserved value")
)

// Block wraps a wire.MsgBlock with the validation operations that need more
// than wire-level framing: merkle root recomputation and witness commitment
// verification.
type Block struct {
	Msg *wire.MsgBlock
}

// NewBlock wraps msg.
func NewBlock(msg *wire.MsgBlock) *Block {
	return &Block{Msg: msg}
}

// Hash returns the block's identifying hash.
func (b *Block) Hash() chainhash.Hash {
	return b.Msg.BlockHash()
}

// VerifyMerkleRoot recomputes the block's merkle root from its transactions'
// legacy hashes and checks it against the header, additionally rejecting
// trees with duplicated adjacent leaves at any level (CVE-2012-2459).
func (b *Block) VerifyMerkleRoot() error {
	if len(b.Msg.Transactions) == 0 {
		return ErrNoTransactions
	}

	hashes, err := b.Msg.TxHashes()
	if err != nil {
		return err
	}

	level := hashes
	for len(level) > 1 {
		if HasDuplicateAdjacentLeaves(level) {
			return ErrMerkleRootMalleated
		}
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			var buf [2 * chainhash.HashSize]byte
			copy(buf[:chainhash.HashSize], level[2*i][:])
			copy(buf[chainhash.HashSize:], level[2*i+1][:])
			next[i] = chainhash.DoubleHashH(buf[:])
		}
		level = next
	}

	if level[0] != b.Msg.Header.MerkleRoot {
		return ErrMerkleRootMismatch
	}
	return nil
}

// findWitnessCommitment scans the coinbase transaction's outputs, in
// reverse, for the first carrying a BIP141 witness commitment and returns
// its 32-byte commitment value.
func findWitnessCommitment(coinbase *wire.MsgTx) ([32]byte, bool) {
	for i := len(coinbase.TxOut) - 1; i >= 0; i-- {
		script := coinbase.TxOut[i].PkScript
		if len(script) < 38 {
			continue
		}
		if !bytes.Equal(script[:6], witnessCommitmentHeader) {
			continue
		}
		var commitment [32]byte
		copy(commitment[:], script[6:38])
		return commitment, true
	}
	return [32]byte{}, false
}

// witnessReservedValue extracts the coinbase input's single witness stack
// item, the 32-byte reserved value BIP141 commits to alongside the witness
// root hash.
func witnessReservedValue(coinbase *wire.MsgTx) ([32]byte, bool) {
	if len(coinbase.TxIn) != 1 || len(coinbase.TxIn[0].Witness) != 1 {
		return [32]byte{}, false
	}
	item := coinbase.TxIn[0].Witness[0]
	if len(item) != 32 {
		return [32]byte{}, false
	}
	var out [32]byte
	copy(out[:], item)
	return out, true
}

// hasWitness reports whether any transaction in the block carries witness
// data.
func (b *Block) hasWitness() bool {
	for _, tx := range b.Msg.Transactions {
		if tx.HasWitness() {
			return true
		}
	}
	return false
}

// VerifyWitnessCommitment implements the BIP141 check: if the block
// contains any witness data, its coinbase must carry a commitment output
// equal to HASH256(witnessMerkleRoot || reservedValue), where
// witnessMerkleRoot is built over wtxids with the coinbase's own wtxid
// replaced by 32 zero bytes. Blocks with no witness data anywhere are
// exempt, matching pre-segwit blocks that carry no commitment at all.
func (b *Block) VerifyWitnessCommitment() error {
	if len(b.Msg.Transactions) == 0 {
		return ErrNoTransactions
	}
	if !b.hasWitness() {
		return nil
	}

	coinbase := b.Msg.Transactions[0]
	commitment, ok := findWitnessCommitment(coinbase)
	if !ok {
		return ErrMissingWitnessCommitment
	}

	reserved, ok := witnessReservedValue(coinbase)
	if !ok {
		return ErrMissingWitnessNonce
	}

	wtxids := make([]chainhash.Hash, len(b.Msg.Transactions))
	wtxids[0] = chainhash.Hash{}
	for i := 1; i < len(b.Msg.Transactions); i++ {
		wtxids[i] = b.Msg.Transactions[i].WitnessHash()
	}

	witnessRoot := BuildMerkleRoot(wtxids)

	var buf [64]byte
	copy(buf[:32], witnessRoot[:])
	copy(buf[32:], reserved[:])
	computed := chainhash.DoubleHashH(buf[:])

	if !bytes.Equal(computed[:], commitment[:]) {
		return ErrWitnessCommitmentMismatch
	}
	return nil
}
