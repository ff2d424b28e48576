// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "math/big"

// compactToBig expands a compact-encoded 32-bit "bits" value (mantissa +
// base-256 exponent, with bit 0x00800000 as a sign flag that always
// normalizes to zero per Bitcoin's consensus-mandated target encoding)
// into the big.Int target it represents.
func compactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn.SetInt64(0)
	}

	return bn
}

// bigToCompact converts a big.Int target to its compact "bits" encoding.
func bigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))

	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// CompactToTarget expands bits into the 256-bit proof-of-work target it
// represents. A zero result (from a zero mantissa or a negative-signaled
// encoding) is a valid, if useless, target: header.Check rejects it as
// invalid proof of work, the same treatment a target of zero gets from an
// honest miner that could never satisfy it. An overflowed encoding is not
// zeroed; it expands to a value above any network's proof-of-work limit,
// which Check rejects as well.
func CompactToTarget(bits uint32) *big.Int {
	return compactToBig(bits)
}

// TargetToCompact packs a 256-bit target into its compact "bits" encoding.
func TargetToCompact(target *big.Int) uint32 {
	return bigToCompact(target)
}

// CalcWork derives the work value a header contributes to cumulative
// chain work from its bits field: floor(2**256 / (target + 1)).
func CalcWork(bits uint32) *big.Int {
	target := CompactToTarget(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}

	denominator := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(oneLsh256, denominator)
}

var bigOne = big.NewInt(1)

// oneLsh256 is 1 shifted left 256 bits, i.e. 2**256.
var oneLsh256 = new(big.Int).Lsh(bigOne, 256)
