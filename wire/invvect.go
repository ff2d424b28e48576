// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
)

// InvVectSize is the exact number of bytes of an inventory vector: a 4-byte
// type code followed by a 32-byte hash.
const InvVectSize = 4 + chainhash.HashSize

// InvVect defines a bitcoin inventory vector, used to describe data as
// specified by InvType.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVect returns a new InvVect using the provided type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func readInvVect(r io.Reader, pver uint32, iv *InvVect) error {
	typ, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	iv.Type = InvType(typ)
	return ReadHash(r, &iv.Hash)
}

func writeInvVect(w io.Writer, pver uint32, iv *InvVect) error {
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(iv.Type)); err != nil {
		return err
	}
	return WriteHash(w, &iv.Hash)
}
