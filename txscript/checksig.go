// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"math/big"

	"github.com/libbitcoin/libbitcoin-system-sub010/btcec"
)

// secp256k1HalfOrder is half the group order, the BIP62/BIP146 boundary a
// signature's S value must not exceed under the low-S policy/consensus rule.
var secp256k1HalfOrder = func() *big.Int {
	n, _ := new(big.Int).SetString("7FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF5D576E7357A4501DDFE92F46681B20A0", 16)
	return n
}()

// isLowS reports whether sig's S value is at most half the curve order, as
// BIP62 requires for standardness and BIP146 requires as consensus for
// segwit inputs.
func isLowS(sig *btcec.Signature) bool {
	der := btcec.SerializeDER(sig)
	s, ok := parseDERSValue(der)
	if !ok {
		return false
	}
	return new(big.Int).SetBytes(s).Cmp(secp256k1HalfOrder) <= 0
}

// parseDERSValue extracts the raw S integer bytes from a strict DER-encoded
// ECDSA signature (SEQUENCE { INTEGER r, INTEGER s }).
func parseDERSValue(der []byte) ([]byte, bool) {
	if len(der) < 8 || der[0] != 0x30 {
		return nil, false
	}
	offset := 2
	if der[offset] != 0x02 {
		return nil, false
	}
	rLen := int(der[offset+1])
	offset += 2 + rLen
	if offset+1 >= len(der) || der[offset] != 0x02 {
		return nil, false
	}
	sLen := int(der[offset+1])
	offset += 2
	if offset+sLen > len(der) {
		return nil, false
	}
	return der[offset : offset+sLen], true
}

// rawSigHash computes the signature hash the current script invocation
// needs, dispatching on the engine's sigMode. subScript is the portion of
// the running script after the last executed OP_CODESEPARATOR, as legacy
// and BIP143 both require.
func (e *Engine) rawSigHash(hashType SigHashType) ([]byte, error) {
	subScript := e.script[e.jumpPointer:]

	switch e.ctx.mode {
	case sigModeLegacy:
		return calcSignatureHash(subScript, hashType, e.ctx.tx, e.ctx.idx), nil

	case sigModeWitnessV0:
		amount := e.ctx.amount
		return calcWitnessSignatureHash(subScript, e.ctx.hashes, hashType, e.ctx.tx, e.ctx.idx, amount), nil

	case sigModeTaprootKeyPath:
		return calcTaprootSigHash(e.ctx.tx, e.ctx.idx, e.ctx.prevOuts, hashType,
			nil, blankCodeSepValue, e.ctx.annex)

	case sigModeTapscript:
		return calcTaprootSigHash(e.ctx.tx, e.ctx.idx, e.ctx.prevOuts, hashType,
			&e.ctx.leafHash, e.codeSepPos, e.ctx.annex)
	}
	return nil, ErrInvalidSignatureEncoding
}

// sigHashDefault is SIGHASH_DEFAULT (0x00), the implicit hash type a
// 64-byte tapscript/key-path signature carries when it omits the trailing
// hash-type byte BIP341 makes optional.
const sigHashDefault SigHashType = 0x00

// verifySignature checks sig against pubKey for the current script
// invocation, selecting ECDSA or BIP340 Schnorr verification by sigMode.
func (e *Engine) verifySignature(sig, pubKey []byte) (bool, error) {
	if len(sig) == 0 {
		return false, nil
	}

	if e.ctx.mode.isTaproot() {
		if len(pubKey) != 32 {
			// BIP342: an unrecognized public key type (any length but
			// 32) is reserved for future upgrades. Unless discouraged,
			// the check passes without verifying anything.
			if e.flags&ScriptVerifyDiscourageOpSuccess != 0 {
				return false, ErrInvalidSignatureEncoding
			}
			return true, nil
		}
		body := sig
		hashType := sigHashDefault
		if len(sig) == 65 {
			body = sig[:64]
			hashType = SigHashType(sig[64])
		} else if len(sig) != 64 {
			return false, ErrInvalidSignatureEncoding
		}

		hash, err := e.rawSigHash(hashType)
		if err != nil {
			return false, err
		}
		ok, err := btcec.SchnorrVerify(body, hash, pubKey)
		if err != nil {
			return false, nil
		}
		return ok, nil
	}

	body := sig[:len(sig)-1]
	hashType := SigHashType(sig[len(sig)-1])

	hash, err := e.rawSigHash(hashType)
	if err != nil {
		return false, err
	}

	pub, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false, nil
	}
	ecdsaSig, err := btcec.ParseDERSignature(body)
	if err != nil {
		return false, nil
	}
	if e.flags&ScriptVerifyLowS != 0 && !isLowS(ecdsaSig) {
		return false, nil
	}
	return ecdsaSig.Verify(hash, pub), nil
}

// opCheckSig implements OP_CHECKSIG and OP_CHECKSIGVERIFY for every sighash
// mode: legacy DER/ECDSA, BIP143 segwit v0 DER/ECDSA, and BIP342 tapscript
// Schnorr.
func (e *Engine) opCheckSig(op byte) error {
	pubKey, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sig, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}

	ok, err := e.verifySignature(sig, pubKey)
	if err != nil {
		return err
	}
	if !ok && e.flags&ScriptVerifyNullFail != 0 && len(sig) != 0 {
		return ErrNullFail
	}

	if op == OP_CHECKSIGVERIFY {
		if !ok {
			return ErrCheckSigVerify
		}
		return nil
	}
	e.dstack.PushBool(ok)
	return nil
}

// opCheckSigAdd implements BIP342's OP_CHECKSIGADD, tapscript's replacement
// for OP_CHECKMULTISIG: pop pubkey, accumulator n, signature; push n+1 if
// the signature verifies, or n unchanged if the signature is empty. A
// non-empty signature that fails verification fails the script with
// ErrNullFail.
func (e *Engine) opCheckSigAdd() error {
	if e.ctx.mode != sigModeTapscript {
		return ErrOpUnevaluated
	}

	pubKey, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}
	n, err := e.dstack.PopInt(e.requireMinimal())
	if err != nil {
		return err
	}
	sig, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(sig) == 0 {
		e.dstack.PushInt(n)
		return nil
	}

	ok, err := e.verifySignature(sig, pubKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNullFail
	}
	e.dstack.PushInt(n + 1)
	return nil
}

// opCheckMultiSig implements the legacy/segwit-v0 OP_CHECKMULTISIG family:
// pop pubkey count, that many pubkeys, signature count, that many
// signatures, and a dummy element consumed for the historical off-by-one
// bug, then check each signature in order against a remaining prefix of
// the pubkeys.
func (e *Engine) opCheckMultiSig(op byte) error {
	if e.ctx.mode == sigModeTapscript {
		return ErrOpUnevaluated
	}

	numPubKeys, err := e.dstack.PopInt(e.requireMinimal())
	if err != nil {
		return err
	}
	if numPubKeys < 0 || numPubKeys > 20 {
		return ErrInvalidStackSize
	}
	e.numOps += int(numPubKeys)
	if e.numOps > 201 {
		return ErrInvalidOperationCount
	}

	pubKeys := make([][]byte, numPubKeys)
	for i := int(numPubKeys) - 1; i >= 0; i-- {
		pubKeys[i], err = e.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	numSigs, err := e.dstack.PopInt(e.requireMinimal())
	if err != nil {
		return err
	}
	if numSigs < 0 || numSigs > numPubKeys {
		return ErrInvalidStackSize
	}

	sigs := make([][]byte, numSigs)
	for i := int(numSigs) - 1; i >= 0; i-- {
		sigs[i], err = e.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	dummy, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if e.flags&ScriptVerifyNullDummy != 0 && len(dummy) != 0 {
		return ErrNullDummy
	}

	success := true
	sigIdx, keyIdx := 0, 0
	for sigIdx < len(sigs) {
		if keyIdx >= len(pubKeys) {
			success = false
			break
		}
		ok, err := e.verifySignature(sigs[sigIdx], pubKeys[keyIdx])
		if err != nil {
			return err
		}
		if ok {
			sigIdx++
		}
		keyIdx++

		if len(sigs)-sigIdx > len(pubKeys)-keyIdx {
			success = false
			break
		}
	}

	if !success && e.flags&ScriptVerifyNullFail != 0 {
		for _, s := range sigs {
			if len(s) != 0 {
				return ErrNullFail
			}
		}
	}

	if op == OP_CHECKMULTISIGVERIFY {
		if !success {
			return ErrCheckMultiSigVerify
		}
		return nil
	}
	e.dstack.PushBool(success)
	return nil
}

// opCheckLockTimeVerify implements BIP65: the top stack element must be
// compatible with and no greater than the spending input's transaction
// lock time.
func (e *Engine) opCheckLockTimeVerify() error {
	if e.flags&ScriptVerifyCheckLockTimeVerify == 0 {
		return nil
	}

	lockTime, err := e.dstack.PeekIntWithLen(0, e.requireMinimal(), cltvScriptNumLen)
	if err != nil {
		return err
	}
	if lockTime < 0 {
		return ErrNegativeLockTime
	}

	const lockTimeThreshold = 500000000
	txLockTime := int64(e.ctx.tx.LockTime)
	if (int64(lockTime) < lockTimeThreshold) != (txLockTime < lockTimeThreshold) {
		return ErrUnsatisfiedLockTime
	}
	if int64(lockTime) > txLockTime {
		return ErrUnsatisfiedLockTime
	}

	const sequenceFinal = 0xffffffff
	if e.ctx.tx.TxIn[e.ctx.idx].Sequence == sequenceFinal {
		return ErrUnsatisfiedLockTime
	}
	return nil
}

// opCheckSequenceVerify implements BIP112: the top stack element encodes a
// relative lock time that the spending input's nSequence must satisfy.
func (e *Engine) opCheckSequenceVerify() error {
	if e.flags&ScriptVerifyCheckSequenceVerify == 0 {
		return nil
	}

	sequence, err := e.dstack.PeekIntWithLen(0, e.requireMinimal(), cltvScriptNumLen)
	if err != nil {
		return err
	}
	if sequence < 0 {
		return ErrNegativeLockTime
	}

	const sequenceLockTimeDisabled = 1 << 31
	if int64(sequence)&sequenceLockTimeDisabled != 0 {
		return nil
	}

	txSequence := int64(e.ctx.tx.TxIn[e.ctx.idx].Sequence)
	if txSequence&sequenceLockTimeDisabled != 0 {
		return ErrUnsatisfiedLockTime
	}

	const sequenceLockTimeTypeFlag = 1 << 22
	const sequenceLockTimeMask = 0x0000ffff
	if (int64(sequence)&sequenceLockTimeTypeFlag) != (txSequence & sequenceLockTimeTypeFlag) {
		return ErrUnsatisfiedLockTime
	}
	if int64(sequence)&sequenceLockTimeMask > txSequence&sequenceLockTimeMask {
		return ErrUnsatisfiedLockTime
	}
	return nil
}
