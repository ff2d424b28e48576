// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcec

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Ring is an ordered list of public keys, one ring signature proof per key,
// of which the signer need only know the private key for one.
type Ring []*PublicKey

// RingSignature is a Borromean ring signature over one or more rings: a
// single shared challenge plus one scalar proof per public key per ring.
type RingSignature struct {
	Challenge [32]byte
	Proofs    [][]secp256k1.ModNScalar
}

var errEmptyRing = errors.New("ringsig: ring must contain at least one public key")

// calculateR computes R = sG + eP = (s + ex)G for the given ring key P.
func calculateR(s, e *secp256k1.ModNScalar, ringKey *PublicKey) *PublicKey {
	var keyJacobian, eP, sG, sum secp256k1.JacobianPoint
	ringKey.AsJacobian(&keyJacobian)

	secp256k1.ScalarMultNonConst(e, &keyJacobian, &eP)
	secp256k1.ScalarBaseMultNonConst(s, &sG)
	secp256k1.AddNonConst(&sG, &eP, &sum)

	sum.ToAffine()
	return secp256k1.NewPublicKey(&sum.X, &sum.Y)
}

// calculateS computes s = k - e*secret (mod n), closing the ring at the
// index where the signer knows the private key.
func calculateS(k, e *secp256k1.ModNScalar, secret *secp256k1.ModNScalar) secp256k1.ModNScalar {
	ex := new(secp256k1.ModNScalar).Mul2(e, secret)
	ex.Negate()
	ex.Add(k)
	return *ex
}

// borromeanHash computes e = H(R || M || i || j) mod n, the shared
// recurrence used to both build and verify a Borromean ring. r is written
// at whatever width it naturally has: 33 compressed-point bytes for every
// R value inside a ring, or the raw 32-byte challenge when seeding a ring
// at j == 0.
func borromeanHash(digest [32]byte, r []byte, i, j uint32) secp256k1.ModNScalar {
	data := make([]byte, 0, len(r)+32+4+4)
	data = append(data, r...)
	data = append(data, digest[:]...)
	var ib, jb [4]byte
	binary.BigEndian.PutUint32(ib[:], i)
	binary.BigEndian.PutUint32(jb[:], j)
	data = append(data, ib[:]...)
	data = append(data, jb[:]...)

	h := sha256.Sum256(data)
	var e secp256k1.ModNScalar
	e.SetByteSlice(h[:])
	return e
}

// RingSign produces a Borromean ring signature over digest for the given
// rings. secrets[i]/knownIndex[i] identify the private key the signer
// controls at rings[i][knownIndex[i]]; salts[i] is a fresh per-ring nonce.
// proofSeed supplies the (already-drawn) random proof scalars for every
// index past knownIndex[i] in each ring — the portion of the signature the
// reference implementation expects the caller to have pre-populated before
// the ring is closed.
func RingSign(secrets []*PrivateKey, rings []Ring, knownIndex []int, digest [32]byte, salts []*secp256k1.ModNScalar, proofSeed [][]secp256k1.ModNScalar) (*RingSignature, error) {
	n := len(rings)
	out := &RingSignature{Proofs: make([][]secp256k1.ModNScalar, n)}
	for i, ring := range rings {
		if len(ring) == 0 {
			return nil, errEmptyRing
		}
		out.Proofs[i] = make([]secp256k1.ModNScalar, len(ring))
		copy(out.Proofs[i], proofSeed[i])
	}

	// Step 1: walk forward from each known index to the end of its ring
	// using the pre-seeded proof scalars, accumulating the final R value
	// per ring into e0's preimage.
	e0Data := make([]byte, 0, 33*n+32)
	for i, ring := range rings {
		idx := knownIndex[i]

		var kJacobian secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(salts[i], &kJacobian)
		kJacobian.ToAffine()
		rij := secp256k1.NewPublicKey(&kJacobian.X, &kJacobian.Y)

		for j := idx + 1; j < len(ring); j++ {
			s := out.Proofs[i][j]
			e := borromeanHash(digest, rij.SerializeCompressed(), uint32(i), uint32(j))
			rij = calculateR(&s, &e, ring[j])
		}
		e0Data = append(e0Data, rij.SerializeCompressed()...)
	}
	e0Data = append(e0Data, digest[:]...)
	out.Challenge = sha256.Sum256(e0Data)

	// Step 2: walk forward again from the start of each ring up to its
	// known index, then close the ring with the real secret.
	for i, ring := range rings {
		idx := knownIndex[i]

		e := borromeanHash(digest, out.Challenge[:], uint32(i), 0)

		var rij *PublicKey
		for j := 0; j < idx; j++ {
			s := out.Proofs[i][j]
			rij = calculateR(&s, &e, ring[j])
			e = borromeanHash(digest, rij.SerializeCompressed(), uint32(i), uint32(j+1))
		}

		out.Proofs[i][idx] = calculateS(salts[i], &e, &secrets[i].Key)
	}

	return out, nil
}

// RingVerify verifies a Borromean ring signature: it walks every ring from
// j=0 using the shared challenge as the seed for e, recomputing R and e in
// lockstep, and accepts only if re-hashing every ring's final R together
// with the message reproduces the claimed challenge.
func RingVerify(rings []Ring, digest [32]byte, sig *RingSignature) bool {
	if len(sig.Proofs) != len(rings) {
		return false
	}

	e0Data := make([]byte, 0, 33*len(rings)+32)
	for i, ring := range rings {
		if len(sig.Proofs[i]) != len(ring) {
			return false
		}

		e := borromeanHash(digest, sig.Challenge[:], uint32(i), 0)

		var rij *PublicKey
		for j := 0; j < len(ring); j++ {
			s := sig.Proofs[i][j]
			rij = calculateR(&s, &e, ring[j])
			e = borromeanHash(digest, rij.SerializeCompressed(), uint32(i), uint32(j+1))
		}
		e0Data = append(e0Data, rij.SerializeCompressed()...)
	}
	e0Data = append(e0Data, digest[:]...)

	recomputed := sha256.Sum256(e0Data)
	return recomputed == sig.Challenge
}
