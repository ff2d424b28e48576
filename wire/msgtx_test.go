// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
)

func TestMsgTxLegacyRoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion)
	var prevHash chainhash.Hash
	prevHash[0] = 0xAB
	tx.AddTxIn(NewTxIn(NewOutPoint(&prevHash, 0), []byte{0x51}, nil))
	tx.AddTxOut(NewTxOut(5000000000, []byte{0x51}))

	var buf bytes.Buffer
	if err := tx.BtcEncode(&buf, 0); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	var decoded MsgTx
	if err := decoded.BtcDecode(&buf, 0); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}

	if decoded.TxHash() != tx.TxHash() {
		t.Errorf("round trip hash mismatch: got %s want %s", decoded.TxHash(), tx.TxHash())
	}
	if decoded.HasWitness() {
		t.Errorf("legacy transaction decoded as having witness data")
	}
}

func TestMsgTxWitnessRoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion)
	var prevHash chainhash.Hash
	in := NewTxIn(NewOutPoint(&prevHash, 1), nil, nil)
	in.Witness = TxWitness{[]byte{0x01}, []byte{0x02, 0x03}}
	tx.AddTxIn(in)
	tx.AddTxOut(NewTxOut(1000, []byte{0x00, 0x14}))

	var buf bytes.Buffer
	if err := tx.BtcEncode(&buf, 0); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	encoded := buf.Bytes()
	if encoded[4] != 0x00 || encoded[5] != 0x01 {
		t.Fatalf("expected segwit marker/flag, got %x %x", encoded[4], encoded[5])
	}

	var decoded MsgTx
	if err := decoded.BtcDecode(bytes.NewReader(encoded), 0); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}

	if !decoded.HasWitness() {
		t.Fatalf("decoded transaction lost its witness data")
	}
	if decoded.TxHash() != tx.TxHash() {
		t.Errorf("txid must be witness-independent: got %s want %s", decoded.TxHash(), tx.TxHash())
	}
	if decoded.WitnessHash() != tx.WitnessHash() {
		t.Errorf("wtxid mismatch: got %s want %s", decoded.WitnessHash(), tx.WitnessHash())
	}
	if decoded.TxHash() == decoded.WitnessHash() {
		t.Errorf("txid and wtxid must differ when witness data is present")
	}
}

func TestMsgBlockRoundTrip(t *testing.T) {
	var prev, merkle chainhash.Hash
	header := NewBlockHeader(1, &prev, &merkle, 0x1d00ffff, 0)
	block := NewMsgBlock(header)

	tx := NewMsgTx(TxVersion)
	var ph chainhash.Hash
	tx.AddTxIn(NewTxIn(NewOutPoint(&ph, 0xffffffff), []byte{0x00}, nil))
	tx.AddTxOut(NewTxOut(5000000000, []byte{0x51}))
	block.AddTransaction(tx)

	var buf bytes.Buffer
	if err := block.BtcEncode(&buf, 0); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	var decoded MsgBlock
	if err := decoded.BtcDecode(&buf, 0); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}

	if decoded.BlockHash() != block.BlockHash() {
		t.Errorf("block hash mismatch after round trip")
	}
	if len(decoded.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(decoded.Transactions))
	}
}
