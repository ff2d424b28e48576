// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
)

func TestVarIntSerializeSizeBoundaries(t *testing.T) {
	tests := []struct {
		val  uint64
		size int
	}{
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, test := range tests {
		got := VarIntSerializeSize(test.val)
		if got != test.size {
			t.Errorf("VarIntSerializeSize(%#x) = %d, want %d", test.val, got, test.size)
		}
	}
}

func TestVarIntEncoding(t *testing.T) {
	tests := []struct {
		val  uint64
		want []byte
	}{
		{0xfd, []byte{0xfd, 0xfd, 0x00}},
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}
	for _, test := range tests {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, test.val); err != nil {
			t.Fatalf("WriteVarInt(%#x): %v", test.val, err)
		}
		if !bytes.Equal(buf.Bytes(), test.want) {
			t.Errorf("WriteVarInt(%#x) = %x, want %x", test.val, buf.Bytes(), test.want)
		}
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, 0xffffffffffffffff}
	for _, val := range vals {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, val); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", val, err)
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt after WriteVarInt(%d): %v", val, err)
		}
		if got != val {
			t.Errorf("round trip mismatch: got %d want %d", got, val)
		}
	}
}

func TestVarStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarString(&buf, "/bitcoin-core:0.0.1/"); err != nil {
		t.Fatalf("WriteVarString: %v", err)
	}
	got, err := ReadVarString(&buf, 256)
	if err != nil {
		t.Fatalf("ReadVarString: %v", err)
	}
	if got != "/bitcoin-core:0.0.1/" {
		t.Errorf("ReadVarString = %q", got)
	}
}
