// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcec wraps the decred secp256k1 primitives with the key and
// signature types this module's consensus layer needs: ECDSA (DER and
// compact), BIP340 Schnorr, and the Borromean ring signature scheme used
// by confidential-payload style commitments.
package btcec

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PrivateKey is a secp256k1 private key.
type PrivateKey = secp256k1.PrivateKey

// PublicKey is a secp256k1 public key.
type PublicKey = secp256k1.PublicKey

// PrivKeyBytesLen is the number of bytes in a serialized private key.
const PrivKeyBytesLen = 32

// PrivKeyFromBytes parses a 32-byte private key.
func PrivKeyFromBytes(key []byte) *PrivateKey {
	return secp256k1.PrivKeyFromBytes(key)
}

// GeneratePrivateKey generates a new cryptographically random private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// ParsePubKey parses a compressed or uncompressed public key.
func ParsePubKey(pubKeyStr []byte) (*PublicKey, error) {
	return secp256k1.ParsePubKey(pubKeyStr)
}

// errInvalidXOnlyPubKey is returned when a 32-byte x-only public key fails
// to lift to a valid curve point (per BIP340's lift_x).
var errInvalidXOnlyPubKey = errors.New("x-only public key does not correspond to a valid curve point")

// ParsePubKeyXOnly lifts a BIP340 x-only (32-byte) public key to a full
// point, choosing the even-y solution as BIP340 requires.
func ParsePubKeyXOnly(xOnly []byte) (*PublicKey, error) {
	if len(xOnly) != 32 {
		return nil, errInvalidXOnlyPubKey
	}
	compressed := make([]byte, 33)
	compressed[0] = 0x02
	copy(compressed[1:], xOnly)
	pk, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return nil, errInvalidXOnlyPubKey
	}
	return pk, nil
}

// SerializeXOnly returns the 32-byte x-only encoding of a public key used
// throughout BIP340/BIP341 (taproot output keys, internal keys).
func SerializeXOnly(pub *PublicKey) []byte {
	compressed := pub.SerializeCompressed()
	out := make([]byte, 32)
	copy(out, compressed[1:])
	return out
}

// HasEvenY reports whether the public key's Y coordinate is even, the
// parity BIP340/BIP341 always normalize signing and tweaking keys to.
func HasEvenY(pub *PublicKey) bool {
	compressed := pub.SerializeCompressed()
	return compressed[0] == 0x02
}

// TweakPubKey computes the BIP341 output key Q = P + tG, used both to
// derive a taproot address from an internal key and to verify a spend's
// control block commits to the key actually being spent.
func TweakPubKey(p *PublicKey, tweak [32]byte) *PublicKey {
	var t secp256k1.ModNScalar
	t.SetByteSlice(tweak[:])

	var pJacobian, tG, sum secp256k1.JacobianPoint
	p.AsJacobian(&pJacobian)
	secp256k1.ScalarBaseMultNonConst(&t, &tG)
	secp256k1.AddNonConst(&pJacobian, &tG, &sum)

	sum.ToAffine()
	return secp256k1.NewPublicKey(&sum.X, &sum.Y)
}
