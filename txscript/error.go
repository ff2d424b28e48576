// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "errors"

// Error codes naming the interpreter's closed failure taxonomy. Each is a
// distinct sentinel so callers can distinguish failure classes with
// errors.Is without parsing message text.
var (
	ErrInvalidPushDataSize = errors.New("txscript: invalid push data size")
	ErrInvalidOperationCount = errors.New("txscript: too many operations in script")
	ErrInvalidStackSize     = errors.New("txscript: stack size exceeds limit")
	ErrInvalidStackScope    = errors.New("txscript: unbalanced conditional scope")
	ErrStackFalse           = errors.New("txscript: script evaluated to a false stack")
	ErrOpUnevaluated        = errors.New("txscript: disabled or unknown opcode")
	ErrOpReturn             = errors.New("txscript: OP_RETURN executed")
	ErrVerify               = errors.New("txscript: OP_VERIFY failed")
	ErrEqualVerify           = errors.New("txscript: OP_EQUALVERIFY failed")
	ErrNumEqualVerify        = errors.New("txscript: OP_NUMEQUALVERIFY failed")
	ErrCheckSigVerify        = errors.New("txscript: OP_CHECKSIGVERIFY failed")
	ErrCheckMultiSigVerify   = errors.New("txscript: OP_CHECKMULTISIGVERIFY failed")
	ErrInvalidSignatureEncoding = errors.New("txscript: invalid signature encoding")
	ErrIncorrectSignature    = errors.New("txscript: signature verification failed under NULLFAIL")
	ErrInvalidWitness        = errors.New("txscript: invalid witness program")
	ErrDirtyWitness          = errors.New("txscript: witness stack not cleanly consumed")
	ErrUnexpectedWitness     = errors.New("txscript: unexpected witness data")
	ErrInvalidScriptEmbed    = errors.New("txscript: invalid P2SH redeem script")
	ErrNullDummy             = errors.New("txscript: multisig dummy element not empty")
	ErrNullFail              = errors.New("txscript: NULLFAIL signature not empty on failure")
	ErrScriptTooBig          = errors.New("txscript: script exceeds maximum size")
	ErrMinimalData           = errors.New("txscript: data push is not minimally encoded")
	ErrNegativeLockTime      = errors.New("txscript: negative lock time argument")
	ErrUnsatisfiedLockTime   = errors.New("txscript: lock time requirement not satisfied")
	ErrCleanStack            = errors.New("txscript: stack not clean after execution")
	ErrDiscourageUpgradableNOP = errors.New("txscript: upgradable NOP executed under discouragement flag")
)
