// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"crypto/sha1"
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

// maxAccumulatorBytes bounds the amount of data an Accumulator will digest.
// It is set well above any consensus message size so it only trips on
// programmer error (an unbounded writer looping forever), not on real
// traffic.
const maxAccumulatorBytes = 1 << 34

// Accumulator is a streaming hash primitive matching the write/flush shape
// used throughout the wire and script packages: callers push bytes as they
// become available (e.g. while deserializing a peer message) and pull the
// digest once at the end. It wraps the standard library's block hashers
// rather than reimplementing padding, but enforces the sticky-invalidate
// contract the rest of the codec relies on — once invalidated, Flush always
// returns the zero digest.
type Accumulator struct {
	h       hash.Hash
	size    int
	written uint64
	invalid bool
}

// NewSHA256Accumulator returns an Accumulator computing a single SHA-256.
func NewSHA256Accumulator() *Accumulator {
	return &Accumulator{h: sha256.New(), size: sha256.Size}
}

// NewSHA1Accumulator returns an Accumulator computing SHA-1 (used only by
// the legacy OP_SHA1 opcode, never by consensus hashing of headers/txs).
func NewSHA1Accumulator() *Accumulator {
	return &Accumulator{h: sha1.New(), size: sha1.Size}
}

// NewRIPEMD160Accumulator returns an Accumulator computing RIPEMD-160.
func NewRIPEMD160Accumulator() *Accumulator {
	return &Accumulator{h: ripemd160.New(), size: ripemd160.Size}
}

// Write appends bytes to the digest. It never returns an error to the
// caller for overflow; exceeding the length limit marks the accumulator
// invalid and all subsequent writes are silently dropped, matching the
// codec's sticky-failure convention.
func (a *Accumulator) Write(p []byte) (int, error) {
	if a.invalid {
		return len(p), nil
	}
	if a.written+uint64(len(p)) > maxAccumulatorBytes {
		a.invalid = true
		return len(p), nil
	}
	a.written += uint64(len(p))
	return a.h.Write(p)
}

// Invalidate marks the accumulator as failed; Flush will return a zeroed
// digest from this point on.
func (a *Accumulator) Invalidate() {
	a.invalid = true
}

// Invalid reports whether the accumulator has been invalidated, either by
// an explicit call or by exceeding the length limit.
func (a *Accumulator) Invalid() bool {
	return a.invalid
}

// Flush finalizes the digest (applying the hash's own padding exactly once)
// and returns it. Calling Flush again after invalidation returns a zeroed
// buffer of the digest size.
func (a *Accumulator) Flush() []byte {
	if a.invalid {
		return make([]byte, a.size)
	}
	return a.h.Sum(nil)
}

// Size returns the digest size in bytes.
func (a *Accumulator) Size() int {
	return a.size
}

// DoubleSHA256Accumulator streams a double-SHA-256: Write feeds the first
// pass, Flush computes SHA256(first) and returns SHA256 of that.
type DoubleSHA256Accumulator struct {
	inner *Accumulator
}

// NewDoubleSHA256Accumulator returns a streaming HASH256 accumulator.
func NewDoubleSHA256Accumulator() *DoubleSHA256Accumulator {
	return &DoubleSHA256Accumulator{inner: NewSHA256Accumulator()}
}

// Write appends bytes to the first SHA-256 pass.
func (d *DoubleSHA256Accumulator) Write(p []byte) (int, error) {
	return d.inner.Write(p)
}

// Flush finalizes HASH256 over everything written so far.
func (d *DoubleSHA256Accumulator) Flush() Hash {
	first := d.inner.Flush()
	return HashH(first)
}
