// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestDoubleHashOfEmpty(t *testing.T) {
	want, _ := hex.DecodeString("5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456")
	got := DoubleHashB(nil)
	if !bytes.Equal(got, want) {
		t.Errorf("DoubleHashB(\"\") = %x, want %x", got, want)
	}
}

func TestHash160OfEmpty(t *testing.T) {
	want, _ := hex.DecodeString("b472a266d0bd89c13706a4132ccfb16f7c3b9fcb")
	got := Hash160(nil)
	if !bytes.Equal(got, want) {
		t.Errorf("Hash160(\"\") = %x, want %x", got, want)
	}
}

func TestHashStringRoundTrip(t *testing.T) {
	var h Hash
	h[0] = 0x01
	h[31] = 0xff
	s := h.String()

	got, err := NewHashFromStr(s)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	if !got.IsEqual(&h) {
		t.Errorf("round trip mismatch: got %x want %x", got[:], h[:])
	}
}

func TestHashIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Errorf("zero-value Hash reported non-zero")
	}
	h[5] = 1
	if h.IsZero() {
		t.Errorf("non-zero Hash reported zero")
	}
}

func TestGenesisHeaderHash(t *testing.T) {
	// Bitcoin genesis header, version=1, prev=0x00.., merkle root reversed
	// below, timestamp=1231006505, bits=0x1d00ffff, nonce=2083236893.
	raw, _ := hex.DecodeString(
		"01000000" +
			"0000000000000000000000000000000000000000000000000000000000000000" +
			"3ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a" +
			"29ab5f49" + "ffff001d" + "1dac2b7c")
	got := DoubleHashH(raw)
	want, _ := NewHashFromStr("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")
	if !got.IsEqual(want) {
		t.Errorf("genesis header hash = %s, want %s", got, want)
	}
}
