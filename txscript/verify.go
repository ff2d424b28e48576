// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

// isScriptHash reports whether pkScript matches the P2SH template
// OP_HASH160 <20 bytes> OP_EQUAL.
func isScriptHash(pkScript []byte) bool {
	return len(pkScript) == 23 &&
		pkScript[0] == OP_HASH160 &&
		pkScript[1] == 0x14 &&
		pkScript[22] == OP_EQUAL
}

// VerifyScript runs the full consensus verification procedure for one
// transaction input: sigScript, pubKeyScript, and (depending on what they
// resolve to) a P2SH redeem script and/or a segwit/taproot witness
// program. prevOuts holds the output being spent by each input, indexed
// the same way as tx.TxIn, since BIP143/BIP341 sighashes and P2SH/segwit
// classification both need the full set, not just the current input's.
func VerifyScript(tx *wire.MsgTx, idx int, prevOuts []*wire.TxOut, flags ScriptFlags) error {
	if idx < 0 || idx >= len(tx.TxIn) || idx >= len(prevOuts) {
		return ErrInvalidStackSize
	}

	sigScript := tx.TxIn[idx].SignatureScript
	pkScript := prevOuts[idx].PkScript

	if err := checkScriptParses(sigScript); err != nil {
		return err
	}
	if err := checkScriptParses(pkScript); err != nil {
		return err
	}

	if flags&ScriptVerifySigPushOnly != 0 {
		ops, err := parseScript(sigScript)
		if err != nil {
			return err
		}
		for _, op := range ops {
			if !op.isPushOnly() {
				return ErrOpUnevaluated
			}
		}
	}

	ctx := sigContext{
		tx:       tx,
		idx:      idx,
		amount:   prevOuts[idx].Value,
		hashes:   NewTxSigHashes(tx),
		prevOuts: prevOuts,
		mode:     sigModeLegacy,
	}

	e := NewEngine(flags, ctx)
	if err := e.Execute(sigScript); err != nil {
		return err
	}

	// The P2SH redeem script, if any, is the last item sigScript pushed;
	// capture it before pkScript's HASH160/EQUAL consumes it.
	var redeemScript []byte
	isP2SH := flags&ScriptBip16 != 0 && isScriptHash(pkScript)
	if isP2SH {
		if e.dstack.Depth() == 0 {
			return ErrInvalidStackSize
		}
		var err error
		redeemScript, err = e.dstack.PeekByteArray(0)
		if err != nil {
			return err
		}
	}

	if err := e.Execute(pkScript); err != nil {
		return err
	}
	if err := e.CheckStackBool(); err != nil {
		return err
	}

	execScript := pkScript
	witness := tx.TxIn[idx].Witness

	if isP2SH {
		// Re-run under the redeem script, starting from the stack
		// sigScript built minus the redeem script item itself.
		stk := make([][]byte, e.dstack.Depth()-1)
		for i := range stk {
			b, err := e.dstack.PeekByteArray(len(stk) - i)
			if err != nil {
				return err
			}
			stk[i] = b
		}

		e = NewEngine(flags, ctx)
		e.dstack.stk = stk
		if err := e.Execute(redeemScript); err != nil {
			return err
		}
		if err := e.CheckStackBool(); err != nil {
			return err
		}
		execScript = redeemScript
	}

	if flags&ScriptVerifyWitness == 0 || !isWitnessProgram(execScript) {
		if flags&ScriptVerifyWitness != 0 && len(witness) != 0 {
			return ErrUnexpectedWitness
		}
		if flags&ScriptVerifyCleanStack != 0 && e.dstack.Depth() != 1 {
			return ErrCleanStack
		}
		return nil
	}

	if !isP2SH && len(sigScript) != 0 {
		return ErrDirtyWitness
	}
	if isP2SH {
		expected := encodeOpcode(byte(len(redeemScript)), redeemScript)
		if len(redeemScript) >= OP_PUSHDATA1 {
			expected = encodeOpcode(OP_PUSHDATA1, redeemScript)
		}
		if !bytes.Equal(sigScript, expected) {
			return ErrDirtyWitness
		}
	}

	spend, err := resolveWitnessSpend(execScript, witness)
	if err != nil {
		return err
	}
	if spend.unconditionalSuccess {
		if flags&ScriptVerifyDiscourageUpgradableWitnessProgram != 0 {
			return ErrDiscourageUpgradableNOP
		}
		return nil
	}

	we := NewEngine(flags, ctx)
	we.dstack.stk = append([][]byte(nil), spend.initialStack...)

	switch {
	case spend.tapscript:
		we.ctx.mode = sigModeTapscript
		we.ctx.leafHash = hashTapLeaf(spend.leafVersion, spend.execScript)
		we.ctx.annex = spend.annex
	case len(spend.internalKey) == 32 && len(spend.initialStack) == 1 && spend.controlBlock == nil:
		we.ctx.mode = sigModeTaprootKeyPath
		we.ctx.annex = spend.annex
	default:
		we.ctx.mode = sigModeWitnessV0
	}

	if err := we.Execute(spend.execScript); err != nil {
		return err
	}
	if err := we.CheckStackBool(); err != nil {
		return err
	}
	if we.dstack.Depth() != 1 {
		return ErrCleanStack
	}
	return nil
}

