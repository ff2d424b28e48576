// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"testing"
)

func TestCompactToTarget(t *testing.T) {
	tests := []struct {
		name    string
		compact uint32
		want    string // decimal
	}{
		{"genesis bits", 0x1d00ffff, "26959535291011309493156476344723991336010898738574164086137773096960"},
		{"regtest max", 0x207fffff, "57896037716911750921221705069588091649609539881711309849342236841432341020672"},
		{"zero mantissa", 0x04000000, "0"},
		{"exponent below 3", 0x02008000, "128"},
		{"negative sign bit zeroes", 0x01800001, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CompactToTarget(tc.compact)
			want, ok := new(big.Int).SetString(tc.want, 10)
			if !ok {
				t.Fatalf("bad test vector %q", tc.want)
			}
			if got.Cmp(want) != 0 {
				t.Fatalf("CompactToTarget(0x%08x) = %s, want %s", tc.compact, got, want)
			}
		})
	}
}

func TestTargetToCompactRoundTrip(t *testing.T) {
	for _, compact := range []uint32{0x1d00ffff, 0x1b0404cb, 0x207fffff} {
		target := CompactToTarget(compact)
		got := TargetToCompact(target)
		if got != compact {
			t.Fatalf("round trip 0x%08x -> %s -> 0x%08x", compact, target, got)
		}
	}
}

func TestCalcWorkZeroTarget(t *testing.T) {
	if got := CalcWork(0x04000000); got.Sign() != 0 {
		t.Fatalf("CalcWork of a zero target = %s, want 0", got)
	}
}

func TestCalcWorkIncreasesAsTargetShrinks(t *testing.T) {
	easy := CalcWork(0x1d00ffff)
	hard := CalcWork(0x1b0404cb)
	if hard.Cmp(easy) <= 0 {
		t.Fatalf("work for a smaller target (%s) should exceed work for a larger one (%s)", hard, easy)
	}
}
