// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcec

import (
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestECDSASignVerifyRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}

	hash := sha256.Sum256([]byte("ring signature test message"))
	sig := Sign(key, hash[:])

	if !Verify(sig, hash[:], key.PubKey()) {
		t.Fatalf("ECDSA signature failed to verify")
	}

	der := SerializeDER(sig)
	parsed, err := ParseDERSignature(der)
	if err != nil {
		t.Fatalf("ParseDERSignature: %v", err)
	}
	if !Verify(parsed, hash[:], key.PubKey()) {
		t.Fatalf("re-parsed DER signature failed to verify")
	}
}

func TestSchnorrSignVerifyRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}

	msg := sha256.Sum256([]byte("taproot key path spend"))
	var auxRand [32]byte

	sig, err := SchnorrSign(key, msg[:], auxRand)
	if err != nil {
		t.Fatalf("SchnorrSign: %v", err)
	}

	xOnly := SerializeXOnly(key.PubKey())
	ok, err := SchnorrVerify(sig, msg[:], xOnly)
	if err != nil {
		t.Fatalf("SchnorrVerify: %v", err)
	}
	if !ok {
		t.Fatalf("schnorr signature failed to verify")
	}

	msg2 := sha256.Sum256([]byte("different message"))
	ok, _ = SchnorrVerify(sig, msg2[:], xOnly)
	if ok {
		t.Fatalf("schnorr signature verified against the wrong message")
	}
}

func TestRingSignatureRoundTrip(t *testing.T) {
	const ringSize = 3
	secrets := make([]*PrivateKey, ringSize)
	ring := make(Ring, ringSize)
	for i := range secrets {
		key, err := GeneratePrivateKey()
		if err != nil {
			t.Fatalf("GeneratePrivateKey: %v", err)
		}
		secrets[i] = key
		ring[i] = key.PubKey()
	}

	knownIdx := 1
	digest := sha256.Sum256([]byte("confidential payload commitment"))

	salt, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey (salt): %v", err)
	}
	saltScalar := &salt.Key

	seed := make([]secp256k1.ModNScalar, ringSize)
	for j := knownIdx + 1; j < ringSize; j++ {
		rnd, err := GeneratePrivateKey()
		if err != nil {
			t.Fatalf("GeneratePrivateKey (seed): %v", err)
		}
		seed[j] = rnd.Key
	}

	sig, err := RingSign(
		[]*PrivateKey{secrets[knownIdx]},
		[]Ring{ring},
		[]int{knownIdx},
		digest,
		[]*secp256k1.ModNScalar{saltScalar},
		[][]secp256k1.ModNScalar{seed},
	)
	if err != nil {
		t.Fatalf("RingSign: %v", err)
	}

	if !RingVerify([]Ring{ring}, digest, sig) {
		t.Fatalf("ring signature failed to verify")
	}

	otherDigest := sha256.Sum256([]byte("a different commitment"))
	if RingVerify([]Ring{ring}, otherDigest, sig) {
		t.Fatalf("ring signature verified against the wrong digest")
	}
}
