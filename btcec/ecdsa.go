// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcec

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Signature is a parsed ECDSA signature (r, s).
type Signature = ecdsa.Signature

// Sign produces a deterministic (RFC6979) ECDSA signature over hash using
// key. hash must be exactly 32 bytes, the sighash digest.
func Sign(key *PrivateKey, hash []byte) *Signature {
	return ecdsa.Sign(key, hash)
}

// Verify reports whether sig is a valid ECDSA signature over hash by pub.
func Verify(sig *Signature, hash []byte, pub *PublicKey) bool {
	return sig.Verify(hash, pub)
}

// ParseDERSignature parses a strict DER-encoded ECDSA signature, as
// required by BIP66 for any input evaluated under the DERSIG or later
// consensus rules.
func ParseDERSignature(sig []byte) (*Signature, error) {
	return ecdsa.ParseDERSignature(sig)
}

// SerializeDER returns the strict DER encoding of sig.
func SerializeDER(sig *Signature) []byte {
	return sig.Serialize()
}
