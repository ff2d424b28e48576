// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"math/big"
	"time"

	"github.com/libbitcoin/libbitcoin-system-sub010/chaincfg"
	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
	"golang.org/x/crypto/scrypt"
)

// PowAlgorithm re-exports chaincfg's proof-of-work algorithm selector so
// callers validating headers need not import chaincfg solely for it.
type PowAlgorithm = chaincfg.PowAlgorithm

const (
	PowAlgorithmSHA256D = chaincfg.PowAlgorithmSHA256D
	PowAlgorithmScrypt  = chaincfg.PowAlgorithmScrypt
)

// maxTimeAdjustment is how far into the future, relative to the validating
// node's own clock, a header's timestamp may claim to be.
const maxTimeAdjustment = 2 * time.Hour

var (
	// ErrInvalidProofOfWork is returned when a header's hash does not meet
	// the target implied by its own bits field, or that target is itself
	// degenerate (zero or above the network's proof-of-work limit).
	ErrInvalidProofOfWork = errors.New("blockchain: block does not satisfy its own proof of work")

	// ErrTimestampTooNew is returned when a header claims a timestamp
	// further in the future than the network tolerates.
	ErrTimestampTooNew = errors.New("blockchain: block timestamp too far in the future")

	// ErrVersionTooOld is returned by Accept when a header's version is
	// below the minimum its chain context requires.
	ErrVersionTooOld = errors.New("blockchain: block version too old")

	// ErrTimestampTooOld is returned by Accept when a header's timestamp
	// does not exceed the median time of the preceding window.
	ErrTimestampTooOld = errors.New("blockchain: block timestamp not after median time past")

	// ErrUnexpectedBits is returned by Accept when a header's bits do not
	// match the value its chain context computed as required.
	ErrUnexpectedBits = errors.New("blockchain: block bits do not match required work")
)

// HeaderContext supplies the chain-position-dependent facts Accept needs to
// validate a header against its place in a specific chain: the minimum
// version currently enforced, the median time of the window immediately
// preceding it, and the bits value consensus rules require at its height.
type HeaderContext interface {
	MinimumBlockVersion() int32
	MedianTimePast() time.Time
	WorkRequired() uint32
}

// proofHash returns the hash a header's proof of work is measured against:
// its own double-SHA-256 block hash for SHA256D networks, or a scrypt hash
// of the same 80-byte serialization for scrypt-secured ones. The two differ
// only in the cost function; the 32-byte result is compared to the same
// compact target either way.
func proofHash(header *wire.BlockHeader, algo PowAlgorithm) (chainhash.Hash, error) {
	if algo == PowAlgorithmSHA256D {
		return header.BlockHash(), nil
	}

	buf := make([]byte, 0, wire.BlockHeaderLen)
	w := &headerBuffer{b: buf}
	if err := header.BtcEncode(w, 0); err != nil {
		return chainhash.Hash{}, err
	}

	digest, err := scrypt.Key(w.b, w.b, 1024, 1, 1, chainhash.HashSize)
	if err != nil {
		return chainhash.Hash{}, err
	}
	var out chainhash.Hash
	copy(out[:], digest)
	return out, nil
}

type headerBuffer struct{ b []byte }

func (h *headerBuffer) Write(p []byte) (int, error) {
	h.b = append(h.b, p...)
	return len(p), nil
}

// isInvalidProofOfWork reports whether header fails the proof-of-work check
// against powLimit: either its compact target decodes to a degenerate value
// (zero, negative-signaled, or above the network ceiling) or its hash,
// interpreted as a big-endian integer, exceeds that target.
func isInvalidProofOfWork(header *wire.BlockHeader, powLimit *big.Int, algo PowAlgorithm) (bool, error) {
	target := CompactToTarget(header.Bits)
	if target.Sign() <= 0 {
		return true, nil
	}
	if target.Cmp(powLimit) > 0 {
		return true, nil
	}

	hash, err := proofHash(header, algo)
	if err != nil {
		return false, err
	}
	hashNum := hashToBig(&hash)
	return hashNum.Cmp(target) > 0, nil
}

// hashToBig interprets a hash's bytes, reversed back into the big-endian
// order they represent as a number, as a big.Int.
func hashToBig(hash *chainhash.Hash) *big.Int {
	var buf [chainhash.HashSize]byte
	for i := 0; i < chainhash.HashSize; i++ {
		buf[i] = hash[chainhash.HashSize-1-i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// isInvalidTimestamp reports whether header's timestamp is further in the
// future than now tolerates.
func isInvalidTimestamp(header *wire.BlockHeader, now time.Time) bool {
	return header.Timestamp.After(now.Add(maxTimeAdjustment))
}

// Check performs context-free header validation: proof of work against the
// network's own stated limit, and a sane (non-futuristic) timestamp. It
// requires no knowledge of the header's position in any particular chain.
func Check(header *wire.BlockHeader, powLimit *big.Int, algo PowAlgorithm) error {
	invalid, err := isInvalidProofOfWork(header, powLimit, algo)
	if err != nil {
		return err
	}
	if invalid {
		return ErrInvalidProofOfWork
	}

	if isInvalidTimestamp(header, time.Now()) {
		return ErrTimestampTooNew
	}

	return nil
}

// Accept performs context-dependent header validation against its intended
// position in a specific chain: Check must already have passed.
func Accept(header *wire.BlockHeader, ctx HeaderContext) error {
	if header.Version < ctx.MinimumBlockVersion() {
		return ErrVersionTooOld
	}
	if !header.Timestamp.After(ctx.MedianTimePast()) {
		return ErrTimestampTooOld
	}
	if header.Bits != ctx.WorkRequired() {
		return ErrUnexpectedBits
	}
	return nil
}
