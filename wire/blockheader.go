// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
)

// BlockHeaderLen is the number of bytes in a block header: version(4) +
// prevBlock(32) + merkleRoot(32) + timestamp(4) + bits(4) + nonce(4).
const BlockHeaderLen = 80

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and headers (MsgHeaders) messages.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  time.Time
	Bits       uint32
	Nonce      uint32
}

// BlockHash computes the block identifier hash for the given header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := make([]byte, 0, BlockHeaderLen)
	w := &growBuffer{b: buf}
	_ = writeBlockHeader(w, 0, h)
	return chainhash.DoubleHashH(w.b)
}

// growBuffer is a tiny io.Writer over a growable slice, avoiding a
// bytes.Buffer allocation for the common fixed-size header case.
type growBuffer struct{ b []byte }

func (g *growBuffer) Write(p []byte) (int, error) {
	g.b = append(g.b, p...)
	return len(p), nil
}

func readBlockHeader(r io.Reader, pver uint32, h *BlockHeader) error {
	ver, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	h.Version = int32(ver)

	if err := ReadHash(r, &h.PrevBlock); err != nil {
		return err
	}
	if err := ReadHash(r, &h.MerkleRoot); err != nil {
		return err
	}

	secs, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(secs), 0)

	h.Bits, err = binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}

	h.Nonce, err = binarySerializer.Uint32(r, littleEndian)
	return err
}

func writeBlockHeader(w io.Writer, pver uint32, h *BlockHeader) error {
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(h.Version)); err != nil {
		return err
	}
	if err := WriteHash(w, &h.PrevBlock); err != nil {
		return err
	}
	if err := WriteHash(w, &h.MerkleRoot); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, littleEndian, h.Bits); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, littleEndian, h.Nonce)
}

// BtcDecode implements the Message-like decode contract used when a header
// appears stand-alone (it is also embedded directly, without framing, in
// MsgBlock and MsgHeaders).
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	return readBlockHeader(r, pver, h)
}

// BtcEncode is the BlockHeader half of the Message-like contract.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	return writeBlockHeader(w, pver, h)
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, difficulty bits and nonce, with
// the timestamp set to the current time.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash, bits, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}
