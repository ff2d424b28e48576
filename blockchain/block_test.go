// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

func simpleTx(extraOut []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0xffffffff), []byte{0x01, 0x02}, nil))
	tx.AddTxOut(wire.NewTxOut(5000000000, []byte{0x51}))
	if extraOut != nil {
		tx.AddTxOut(wire.NewTxOut(0, extraOut))
	}
	return tx
}

func TestVerifyMerkleRootSingleTx(t *testing.T) {
	tx := simpleTx(nil)
	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(tx)
	block.Header.MerkleRoot = tx.TxHash()

	b := NewBlock(block)
	if err := b.VerifyMerkleRoot(); err != nil {
		t.Fatalf("VerifyMerkleRoot() = %v, want nil", err)
	}
}

func TestVerifyMerkleRootMismatch(t *testing.T) {
	tx := simpleTx(nil)
	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(tx)
	block.Header.MerkleRoot = chainhash.Hash{0x01}

	b := NewBlock(block)
	if err := b.VerifyMerkleRoot(); err != ErrMerkleRootMismatch {
		t.Fatalf("VerifyMerkleRoot() = %v, want ErrMerkleRootMismatch", err)
	}
}

func TestVerifyMerkleRootMultipleTx(t *testing.T) {
	tx1 := simpleTx([]byte{0x52})
	tx2 := simpleTx([]byte{0x53})
	tx3 := simpleTx([]byte{0x54})

	hashes := []chainhash.Hash{tx1.TxHash(), tx2.TxHash(), tx3.TxHash()}
	root := BuildMerkleRoot(hashes)

	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(tx1)
	block.AddTransaction(tx2)
	block.AddTransaction(tx3)
	block.Header.MerkleRoot = root

	b := NewBlock(block)
	if err := b.VerifyMerkleRoot(); err != nil {
		t.Fatalf("VerifyMerkleRoot() = %v, want nil", err)
	}
}

func TestVerifyWitnessCommitmentNoWitness(t *testing.T) {
	tx := simpleTx(nil)
	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(tx)

	b := NewBlock(block)
	if err := b.VerifyWitnessCommitment(); err != nil {
		t.Fatalf("VerifyWitnessCommitment() = %v, want nil for a witness-free block", err)
	}
}

func TestVerifyWitnessCommitmentRoundTrip(t *testing.T) {
	coinbase := wire.NewMsgTx(wire.TxVersion)
	reserved := make([]byte, 32)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  []byte{0x01, 0x02},
		Witness:          wire.TxWitness{reserved},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	coinbase.AddTxOut(wire.NewTxOut(5000000000, []byte{0x51}))

	spender := simpleTx(nil)

	wtxids := []chainhash.Hash{{}, spender.WitnessHash()}
	witnessRoot := BuildMerkleRoot(wtxids)

	var buf [64]byte
	copy(buf[:32], witnessRoot[:])
	copy(buf[32:], reserved)
	commitment := chainhash.DoubleHashH(buf[:])

	script := append([]byte{0x6a, 0x24, 0xaa, 0x21, 0xa9, 0xed}, commitment[:]...)
	coinbase.AddTxOut(wire.NewTxOut(0, script))

	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(coinbase)
	block.AddTransaction(spender)

	b := NewBlock(block)
	if err := b.VerifyWitnessCommitment(); err != nil {
		t.Fatalf("VerifyWitnessCommitment() = %v, want nil\n%s", err, spew.Sdump(block))
	}
}

func TestVerifyWitnessCommitmentMissing(t *testing.T) {
	coinbase := wire.NewMsgTx(wire.TxVersion)
	reserved := make([]byte, 32)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  []byte{0x01, 0x02},
		Witness:          wire.TxWitness{reserved},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	coinbase.AddTxOut(wire.NewTxOut(5000000000, []byte{0x51}))

	spender := simpleTx(nil)

	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(coinbase)
	block.AddTransaction(spender)

	b := NewBlock(block)
	if err := b.VerifyWitnessCommitment(); err != ErrMissingWitnessCommitment {
		t.Fatalf("VerifyWitnessCommitment() = %v, want ErrMissingWitnessCommitment", err)
	}
}

func TestGenesisBlockStructure(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0xffffffff), []byte{0x04}, nil))
	tx.AddTxOut(wire.NewTxOut(5000000000, []byte{0x41}))

	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(tx)
	block.Header.MerkleRoot = tx.TxHash()

	b := NewBlock(block)
	if err := b.VerifyMerkleRoot(); err != nil {
		t.Fatalf("VerifyMerkleRoot() = %v, want nil", err)
	}
	if len(block.Transactions) != 1 {
		t.Fatalf("genesis-shaped block has %d transactions, want 1", len(block.Transactions))
	}
}
