// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

// witnessProgram describes a parsed segwit output script: a version byte
// (pushed as OP_0 or OP_1-OP_16) followed by a 2-to-40 byte program.
type witnessProgram struct {
	version int
	program []byte
}

// extractWitnessProgram parses pkScript as a witness program, returning ok
// false if it is not shaped like one at all (wrong length or non-version
// leading opcode).
func extractWitnessProgram(pkScript []byte) (witnessProgram, bool) {
	if len(pkScript) < 4 || len(pkScript) > 42 {
		return witnessProgram{}, false
	}

	var version int
	switch {
	case pkScript[0] == OP_0:
		version = 0
	case pkScript[0] >= OP_1 && pkScript[0] <= OP_16:
		version = int(pkScript[0]) - OP_1 + 1
	default:
		return witnessProgram{}, false
	}

	dataLen := int(pkScript[1])
	if len(pkScript) != 2+dataLen {
		return witnessProgram{}, false
	}
	if dataLen < 2 || dataLen > 40 {
		return witnessProgram{}, false
	}

	return witnessProgram{version: version, program: pkScript[2:]}, true
}

// isWitnessProgram reports whether pkScript is shaped like a segwit output.
func isWitnessProgram(pkScript []byte) bool {
	_, ok := extractWitnessProgram(pkScript)
	return ok
}

// extractAnnex strips and returns the BIP341 annex from a witness stack: the
// final item iff there are at least two items and it begins with 0x50.
func extractAnnex(witness wire.TxWitness) (annex []byte, rest wire.TxWitness) {
	if len(witness) >= 2 {
		last := witness[len(witness)-1]
		if len(last) > 0 && last[0] == 0x50 {
			return last, witness[:len(witness)-1]
		}
	}
	return nil, witness
}

// witnessSpend describes how to continue executing a segwit input, derived
// from its previous output's witness program and the spending witness.
type witnessSpend struct {
	// execScript is the script to run, with initialStack as the starting
	// evaluation stack contents (bottom to top).
	execScript   []byte
	initialStack [][]byte

	// unconditionalSuccess is set for the branches that pass without
	// executing anything: version 1 programs that are not 32 bytes,
	// versions 2-16 of any length, and script-path spends whose leaf
	// version is not 0xc0. OP_SUCCESSx opcodes in a tapscript leaf are
	// handled by Engine.Execute, not here.
	unconditionalSuccess bool

	// tapscript is set when execScript is a taproot leaf script, so the
	// caller engages BIP342 sighash/opcode rules instead of BIP143's.
	tapscript bool
	leafVersion byte
	controlBlock []byte
	annex        []byte
	internalKey  []byte
}

// ErrUnknownWitnessVersion is an alias of ErrInvalidWitness and cannot be
// told apart from it. resolveWitnessSpend never returns it: versions 2-16
// are an unconditional success, not an error.
var ErrUnknownWitnessVersion = ErrInvalidWitness

// resolveWitnessSpend classifies a segwit input's previous output script
// and witness stack per the BIP141/BIP341 extraction table.
func resolveWitnessSpend(prevPkScript []byte, witness wire.TxWitness) (witnessSpend, error) {
	prog, ok := extractWitnessProgram(prevPkScript)
	if !ok {
		return witnessSpend{}, ErrInvalidWitness
	}

	switch {
	case prog.version == 0 && len(prog.program) == 20:
		if len(witness) != 2 {
			return witnessSpend{}, ErrInvalidWitness
		}
		script := p2pkhScript(prog.program)
		return witnessSpend{execScript: script, initialStack: witness}, nil

	case prog.version == 0 && len(prog.program) == 32:
		if len(witness) == 0 {
			return witnessSpend{}, ErrInvalidWitness
		}
		script := witness[len(witness)-1]
		sum := sha256Sum(script)
		if !bytes.Equal(sum[:], prog.program) {
			return witnessSpend{}, ErrInvalidScriptEmbed
		}
		return witnessSpend{execScript: script, initialStack: witness[:len(witness)-1]}, nil

	case prog.version == 0:
		// A version 0 program must be 20 or 32 bytes.
		return witnessSpend{}, ErrInvalidWitness

	case prog.version == 1 && len(prog.program) == 32:
		annex, rest := extractAnnex(witness)
		if len(rest) == 1 {
			return witnessSpend{
				execScript:   taprootKeyPathScript(prog.program),
				initialStack: [][]byte{rest[0]},
				annex:        annex,
				internalKey:  prog.program,
			}, nil
		}
		if len(rest) >= 2 {
			return resolveTapscriptSpend(prog.program, annex, rest)
		}
		return witnessSpend{}, ErrInvalidWitness

	case prog.version == 1:
		// Non-32-byte v1 program: reserved for future use.
		return witnessSpend{unconditionalSuccess: true}, nil

	default:
		// Versions 2-16: reserved, forward-compatible success.
		return witnessSpend{unconditionalSuccess: true}, nil
	}
}

func sha256Sum(b []byte) [32]byte {
	return chainhash.HashH(b)
}

// p2pkhScript builds the implicit execution script for bare P2WPKH:
// DUP HASH160 <20-byte> EQUALVERIFY CHECKSIG.
func p2pkhScript(pubKeyHash []byte) []byte {
	out := make([]byte, 0, 25)
	out = append(out, OP_DUP, OP_HASH160, byte(len(pubKeyHash)))
	out = append(out, pubKeyHash...)
	out = append(out, OP_EQUALVERIFY, OP_CHECKSIG)
	return out
}

// taprootKeyPathScript synthesizes the implicit one-instruction program a
// taproot key-path spend executes: push the output key, then CHECKSIG.
func taprootKeyPathScript(outputKey []byte) []byte {
	out := make([]byte, 0, 2+len(outputKey))
	out = append(out, byte(len(outputKey)))
	out = append(out, outputKey...)
	out = append(out, OP_CHECKSIG)
	return out
}
