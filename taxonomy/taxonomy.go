// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package taxonomy implements a closed error-code wrapper in the style of
// pktd's btcutil/er package: every error carries a fixed code from a known
// taxonomy plus a message, rather than being an arbitrary opaque value,
// so callers can branch on failure class without string matching.
package taxonomy

import "fmt"

// Code identifies one entry of the closed failure taxonomy.
type Code int

const (
	CodeUnspecified Code = iota
	CodeInvalidProofOfWork
	CodeInvalidTimestamp
	CodeInvalidVersion
	CodeInvalidMerkleRoot
	CodeMissingWitnessCommitment
	CodeInvalidWitnessCommitment
	CodeScriptFailure
	CodeInvalidSignature
	CodeInvalidWitnessProgram
	CodeStackOverflow
	CodeOperationCountExceeded
	CodeLockTimeUnsatisfied
	CodeIOError
	CodeProtocolViolation
	CodePeerTimeout
	CodeLoopBreak
	CodeBadStream
	CodeChannelTimeout
	CodeServiceStopped
)

var codeNames = map[Code]string{
	CodeUnspecified:               "Unspecified",
	CodeInvalidProofOfWork:        "InvalidProofOfWork",
	CodeInvalidTimestamp:          "InvalidTimestamp",
	CodeInvalidVersion:            "InvalidVersion",
	CodeInvalidMerkleRoot:         "InvalidMerkleRoot",
	CodeMissingWitnessCommitment:  "MissingWitnessCommitment",
	CodeInvalidWitnessCommitment:  "InvalidWitnessCommitment",
	CodeScriptFailure:             "ScriptFailure",
	CodeInvalidSignature:          "InvalidSignature",
	CodeInvalidWitnessProgram:     "InvalidWitnessProgram",
	CodeStackOverflow:             "StackOverflow",
	CodeOperationCountExceeded:    "OperationCountExceeded",
	CodeLockTimeUnsatisfied:       "LockTimeUnsatisfied",
	CodeIOError:                   "IOError",
	CodeProtocolViolation:         "ProtocolViolation",
	CodePeerTimeout:               "PeerTimeout",
	CodeLoopBreak:                 "LoopBreak",
	CodeBadStream:                 "BadStream",
	CodeChannelTimeout:            "ChannelTimeout",
	CodeServiceStopped:            "ServiceStopped",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// R is the result type the peer channel and its callers use for stop
// reasons and subscriber errors (the blockchain, wire and txscript packages
// return plain error values): nil on success, or a *taxonomyError carrying
// a fixed code, a message, and an optional wrapped cause.
type R interface {
	error
	Code() Code
	Cause() R
}

type taxonomyError struct {
	code    Code
	message string
	cause   R
}

func (e *taxonomyError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.message, e.cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *taxonomyError) Code() Code { return e.code }
func (e *taxonomyError) Cause() R   { return e.cause }

// New constructs an R with a fixed code and message.
func New(code Code, message string) R {
	return &taxonomyError{code: code, message: message}
}

// Errorf constructs an R with a fixed code and a formatted message.
func Errorf(code Code, format string, args ...interface{}) R {
	return &taxonomyError{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new error under code, preserving the
// underlying failure in the error chain without losing the caller's own
// classification of it.
func Wrap(code Code, message string, cause R) R {
	return &taxonomyError{code: code, message: message, cause: cause}
}

// LoopBreak is the sentinel a database-walking callback returns to stop
// iteration early without that being treated as a real failure.
var LoopBreak R = &taxonomyError{code: CodeLoopBreak, message: "loop break"}

// Is reports whether err or any error it wraps carries code.
func Is(err R, code Code) bool {
	for e := err; e != nil; e = e.Cause() {
		if e.Code() == code {
			return true
		}
	}
	return false
}

// Native converts a standard error into an R under the given code, used
// at the boundary where this module calls into stdlib or third-party
// packages that return plain errors.
func Native(err error, code Code) R {
	if err == nil {
		return nil
	}
	return &taxonomyError{code: code, message: err.Error()}
}
