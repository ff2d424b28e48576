// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/libbitcoin/libbitcoin-system-sub010/chaincfg"
)

func TestCheckGenesisHeader(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisHeader
	powLimit := CompactToTarget(0x1d00ffff)

	if err := Check(&header, powLimit, PowAlgorithmSHA256D); err != nil {
		t.Fatalf("Check(genesis) = %v, want nil", err)
	}
}

func TestCheckRejectsFuturisticTimestamp(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisHeader
	header.Timestamp = time.Now().Add(3 * time.Hour)

	powLimit := CompactToTarget(0x1d00ffff)
	if err := Check(&header, powLimit, PowAlgorithmSHA256D); err != ErrTimestampTooNew {
		t.Fatalf("Check() = %v, want ErrTimestampTooNew", err)
	}
}

func TestCheckRejectsInsufficientWork(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisHeader
	header.Bits = 0x1d00ffff
	header.Nonce = 0 // almost certainly does not satisfy the target

	powLimit := CompactToTarget(0x1d00ffff)
	if err := Check(&header, powLimit, PowAlgorithmSHA256D); err != ErrInvalidProofOfWork {
		t.Fatalf("Check() = %v, want ErrInvalidProofOfWork", err)
	}
}

type fakeContext struct {
	minVersion int32
	medianTime time.Time
	bits       uint32
}

func (c fakeContext) MinimumBlockVersion() int32  { return c.minVersion }
func (c fakeContext) MedianTimePast() time.Time   { return c.medianTime }
func (c fakeContext) WorkRequired() uint32        { return c.bits }

func TestAcceptVersionTooOld(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisHeader
	ctx := fakeContext{minVersion: 2, medianTime: header.Timestamp.Add(-time.Hour), bits: header.Bits}
	if err := Accept(&header, ctx); err != ErrVersionTooOld {
		t.Fatalf("Accept() = %v, want ErrVersionTooOld", err)
	}
}

func TestAcceptTimestampNotAfterMedian(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisHeader
	ctx := fakeContext{minVersion: 1, medianTime: header.Timestamp, bits: header.Bits}
	if err := Accept(&header, ctx); err != ErrTimestampTooOld {
		t.Fatalf("Accept() = %v, want ErrTimestampTooOld", err)
	}
}

func TestAcceptBitsMismatch(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisHeader
	ctx := fakeContext{minVersion: 1, medianTime: header.Timestamp.Add(-time.Hour), bits: 0x1c00ffff}
	if err := Accept(&header, ctx); err != ErrUnexpectedBits {
		t.Fatalf("Accept() = %v, want ErrUnexpectedBits", err)
	}
}

func TestAcceptSucceeds(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisHeader
	ctx := fakeContext{minVersion: 1, medianTime: header.Timestamp.Add(-time.Hour), bits: header.Bits}
	if err := Accept(&header, ctx); err != nil {
		t.Fatalf("Accept() = %v, want nil", err)
	}
}
