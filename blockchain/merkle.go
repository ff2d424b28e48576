// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/libbitcoin/libbitcoin-system-sub010/chainhash"

// BuildMerkleRoot folds a list of leaf hashes (transaction ids, in block
// order) up into a single merkle root: at each level, hashes are paired
// left-to-right and combined with DoubleHashH(left || right); an odd one out at
// the end of a level is paired with itself.
//
// That last rule reproduces the duplicate-last-hash behavior responsible
// for CVE-2012-2459: a block whose transaction count is odd at some level
// has the same merkle root as one with an extra exact duplicate of its
// last transaction appended, letting a malicious relay construct two
// structurally distinct blocks that commit to the same root. Callers that
// need to defend against it must independently check for duplicate
// adjacent transaction ids before trusting a root computed this way.
func BuildMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		next := make([]chainhash.Hash, len(level)/2)
		for i := 0; i < len(next); i++ {
			var buf [2 * chainhash.HashSize]byte
			copy(buf[:chainhash.HashSize], level[2*i][:])
			copy(buf[chainhash.HashSize:], level[2*i+1][:])
			next[i] = chainhash.DoubleHashH(buf[:])
		}
		level = next
	}

	return level[0]
}

// HasDuplicateAdjacentLeaves reports whether any sibling pair at the input
// level (the leaves at positions 2k and 2k+1, which BuildMerkleRoot hashes
// together) is byte-identical: the telltale shape of a
// CVE-2012-2459-style merkle malleability attempt, which BuildMerkleRoot's
// duplicate-last-hash behavior alone cannot distinguish from a genuinely
// odd-sized level.
func HasDuplicateAdjacentLeaves(leaves []chainhash.Hash) bool {
	for i := 0; i+1 < len(leaves); i += 2 {
		if leaves[i] == leaves[i+1] {
			return true
		}
	}
	return false
}
