// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
)

func TestBuildMerkleRootSingleLeaf(t *testing.T) {
	leaf := chainhash.HashH([]byte("only transaction"))
	if got := BuildMerkleRoot([]chainhash.Hash{leaf}); got != leaf {
		t.Fatalf("single-leaf root = %s, want %s", got, leaf)
	}
}

func TestBuildMerkleRootPair(t *testing.T) {
	a := chainhash.HashH([]byte("a"))
	b := chainhash.HashH([]byte("b"))

	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	want := chainhash.DoubleHashH(buf[:])

	if got := BuildMerkleRoot([]chainhash.Hash{a, b}); got != want {
		t.Fatalf("pair root = %s, want %s", got, want)
	}
}

func TestBuildMerkleRootOddCountDuplicatesLast(t *testing.T) {
	a := chainhash.HashH([]byte("a"))
	b := chainhash.HashH([]byte("b"))
	c := chainhash.HashH([]byte("c"))

	three := BuildMerkleRoot([]chainhash.Hash{a, b, c})
	four := BuildMerkleRoot([]chainhash.Hash{a, b, c, c})

	if three != four {
		t.Fatalf("odd-count root %s should equal duplicated-last root %s", three, four)
	}
}

func TestHasDuplicateAdjacentLeaves(t *testing.T) {
	a := chainhash.HashH([]byte("a"))
	b := chainhash.HashH([]byte("b"))

	if HasDuplicateAdjacentLeaves([]chainhash.Hash{a, b}) {
		t.Fatalf("distinct adjacent leaves reported as duplicates")
	}
	if !HasDuplicateAdjacentLeaves([]chainhash.Hash{a, a}) {
		t.Fatalf("identical adjacent leaves not detected")
	}
}
