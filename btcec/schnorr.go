// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcec

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SignatureSize is the length in bytes of a BIP340 Schnorr signature.
const SignatureSize = 64

var (
	errInvalidSigLen  = errors.New("schnorr: signature must be exactly 64 bytes")
	errSigRTooLarge   = errors.New("schnorr: signature R is not a valid field element")
	errSigSTooLarge   = errors.New("schnorr: signature S is not a valid scalar")
	errSigRYIsOdd     = errors.New("schnorr: computed R has an odd Y coordinate")
	errSigRMismatch   = errors.New("schnorr: computed R.x does not match signature R")
	errPointInfinity  = errors.New("schnorr: computed R is the point at infinity")
)

// taggedHash implements the BIP340 tagged_hash construction:
// SHA256(SHA256(tag) || SHA256(tag) || msg...).
func taggedHash(tag string, parts ...[]byte) [32]byte {
	tagHash := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// TaggedHash exposes the BIP340 tagged hash construction for callers that
// need it for other domains (taproot tweaking, tapleaf hashing).
func TaggedHash(tag string, parts ...[]byte) [32]byte {
	return taggedHash(tag, parts...)
}

// SchnorrVerify implements BIP340 Schnorr signature verification. pubKey
// is the 32-byte x-only public key, msg is the 32-byte message (sighash),
// and sig is the 64-byte signature.
func SchnorrVerify(sig, msg, pubKey []byte) (bool, error) {
	if len(sig) != SignatureSize {
		return false, errInvalidSigLen
	}

	p, err := ParsePubKeyXOnly(pubKey)
	if err != nil {
		return false, err
	}

	var r secp256k1.FieldVal
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false, errSigRTooLarge
	}

	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(sig[32:64]); overflow {
		return false, errSigSTooLarge
	}

	e := schnorrChallenge(sig[:32], pubKey, msg)

	var pJacobian secp256k1.JacobianPoint
	p.AsJacobian(&pJacobian)

	var sG, eP, rPoint secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s, &sG)

	negE := new(secp256k1.ModNScalar).NegateVal(&e)
	secp256k1.ScalarMultNonConst(negE, &pJacobian, &eP)
	secp256k1.AddNonConst(&sG, &eP, &rPoint)

	if (rPoint.X.IsZero() && rPoint.Y.IsZero()) || rPoint.Z.IsZero() {
		return false, errPointInfinity
	}

	rPoint.ToAffine()
	if rPoint.Y.IsOdd() {
		return false, errSigRYIsOdd
	}

	rPoint.X.Normalize()
	r.Normalize()
	if !rPoint.X.Equals(&r) {
		return false, errSigRMismatch
	}

	return true, nil
}

// schnorrChallenge computes e = int(tagged_hash("BIP0340/challenge", R || P || msg)) mod n.
func schnorrChallenge(r, pubKey, msg []byte) secp256k1.ModNScalar {
	h := taggedHash("BIP0340/challenge", r, pubKey, msg)
	var e secp256k1.ModNScalar
	e.SetByteSlice(h[:])
	return e
}

// SchnorrSign produces a BIP340 Schnorr signature over msg (32 bytes) using
// key and the supplied 32-byte auxiliary randomness (all-zero is a valid,
// if non-side-channel-hardened, choice).
func SchnorrSign(key *PrivateKey, msg []byte, auxRand [32]byte) ([]byte, error) {
	if len(msg) != 32 {
		return nil, errors.New("schnorr: message must be 32 bytes")
	}

	d0 := key.Key
	var pJacobian secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&d0, &pJacobian)
	pJacobian.ToAffine()

	d := d0
	if pJacobian.Y.IsOdd() {
		d.Negate()
	}

	pub := secp256k1.NewPublicKey(&pJacobian.X, &pJacobian.Y)
	pBytes := SerializeXOnly(pub)

	var dBytes [32]byte
	d.PutBytesUnchecked(dBytes[:])

	auxHash := taggedHash("BIP0340/aux", auxRand[:])
	t := make([]byte, 32)
	for i := range t {
		t[i] = dBytes[i] ^ auxHash[i]
	}

	randHash := taggedHash("BIP0340/nonce", t, pBytes, msg)
	var k0 secp256k1.ModNScalar
	k0.SetByteSlice(randHash[:])
	if k0.IsZero() {
		return nil, errors.New("schnorr: sign produced a zero nonce, retry with different aux_rand")
	}

	var rJacobian secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&k0, &rJacobian)
	rJacobian.ToAffine()

	k := k0
	if rJacobian.Y.IsOdd() {
		k.Negate()
	}

	rJacobian.X.Normalize()
	var rBytes [32]byte
	rJacobian.X.PutBytesUnchecked(rBytes[:])

	e := schnorrChallenge(rBytes[:], pBytes, msg)

	sScalar := new(secp256k1.ModNScalar).Mul2(&e, &d).Add(&k)
	var sBytes [32]byte
	sScalar.PutBytesUnchecked(sBytes[:])

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, rBytes[:]...)
	sig = append(sig, sBytes[:]...)
	return sig, nil
}
