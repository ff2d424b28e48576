// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/libbitcoin/libbitcoin-system-sub010/btcec"
	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

func runStandalone(t *testing.T, script []byte) *Engine {
	t.Helper()
	e := NewEngine(ScriptVerifyMinimalData, sigContext{})
	if err := e.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return e
}

func TestArithmeticAndStack(t *testing.T) {
	script := []byte{OP_1, OP_1, OP_ADD, OP_2, OP_EQUAL}
	e := runStandalone(t, script)
	if err := e.CheckStackBool(); err != nil {
		t.Fatalf("expected success: %v", err)
	}
}

func TestConditionalBranches(t *testing.T) {
	// OP_0 OP_IF OP_1 OP_ELSE OP_2 OP_ENDIF -> leaves 2
	script := []byte{OP_0, OP_IF, OP_1, OP_ELSE, OP_2, OP_ENDIF}
	e := runStandalone(t, script)
	n, err := e.dstack.PeekInt(0, true)
	if err != nil {
		t.Fatalf("PeekInt: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}

func TestUnbalancedConditionalFails(t *testing.T) {
	e := NewEngine(0, sigContext{})
	err := e.Execute([]byte{OP_1, OP_IF, OP_1})
	if err != ErrInvalidStackScope {
		t.Fatalf("got %v, want ErrInvalidStackScope", err)
	}
}

func TestDisabledOpcodeFails(t *testing.T) {
	e := NewEngine(0, sigContext{})
	err := e.Execute([]byte{OP_1, OP_1, OP_CAT})
	if err != ErrOpUnevaluated {
		t.Fatalf("got %v, want ErrOpUnevaluated", err)
	}
}

func TestHash160Opcode(t *testing.T) {
	data := []byte("test data")
	script := append([]byte{byte(len(data))}, data...)
	script = append(script, OP_HASH160)
	e := runStandalone(t, script)
	got, err := e.dstack.PeekByteArray(0)
	if err != nil {
		t.Fatal(err)
	}
	want := chainhash.Hash160(data)
	if !bytesEqual(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func buildLegacyP2PKH(t *testing.T, priv *btcec.PrivateKey, amount int64) (*wire.MsgTx, []*wire.TxOut) {
	t.Helper()
	pub := priv.PubKey()
	pubKeyHash := chainhash.Hash160(pub.SerializeCompressed())
	pkScript := p2pkhScript(pubKeyHash)

	prevOut := &wire.TxOut{Value: amount, PkScript: pkScript}

	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0},
			Sequence:         0xffffffff,
		}},
		TxOut: []*wire.TxOut{{
			Value:    amount - 1000,
			PkScript: pkScript,
		}},
	}

	sigHash := calcSignatureHash(pkScript, SigHashAll, tx, 0)
	sig := btcec.Sign(priv, sigHash)
	sigBytes := append(btcec.SerializeDER(sig), byte(SigHashAll))

	sigScript := encodeOpcode(byte(len(sigBytes)), sigBytes)
	sigScript = append(sigScript, encodeOpcode(byte(len(pub.SerializeCompressed())), pub.SerializeCompressed())...)
	tx.TxIn[0].SignatureScript = sigScript

	return tx, []*wire.TxOut{prevOut}
}

func TestVerifyScriptLegacyP2PKH(t *testing.T) {
	priv, err := btcec.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	tx, prevOuts := buildLegacyP2PKH(t, priv, 100000)

	if err := VerifyScript(tx, 0, prevOuts, ScriptBip16|ScriptVerifyDERSig); err != nil {
		t.Fatalf("VerifyScript: %v", err)
	}
}

func TestVerifyScriptLegacyP2PKHWrongKeyFails(t *testing.T) {
	priv, _ := btcec.GeneratePrivateKey()
	other, _ := btcec.GeneratePrivateKey()
	tx, prevOuts := buildLegacyP2PKH(t, priv, 100000)

	// Swap in a signature and pubkey from a different key; that key's hash
	// does not match the one in the P2PKH output script, so OP_EQUALVERIFY
	// fails.
	sigHash := calcSignatureHash(prevOuts[0].PkScript, SigHashAll, tx, 0)
	sig := btcec.Sign(other, sigHash)
	sigBytes := append(btcec.SerializeDER(sig), byte(SigHashAll))
	sigScript := encodeOpcode(byte(len(sigBytes)), sigBytes)
	sigScript = append(sigScript, encodeOpcode(byte(len(other.PubKey().SerializeCompressed())), other.PubKey().SerializeCompressed())...)
	tx.TxIn[0].SignatureScript = sigScript

	if err := VerifyScript(tx, 0, prevOuts, ScriptBip16); err == nil {
		t.Fatal("expected verification failure with mismatched pubkey hash")
	}
}

func TestTaprootTweakRoundTrip(t *testing.T) {
	priv, _ := btcec.GeneratePrivateKey()
	internal := priv.PubKey()

	var merkleRoot chainhash.Hash
	t1 := hashTapTweak(btcec.SerializeXOnly(internal), merkleRoot)
	tweaked := btcec.TweakPubKey(internal, t1)

	outputKey := btcec.SerializeXOnly(tweaked)
	control := make([]byte, 33)
	if btcec.HasEvenY(tweaked) {
		control[0] = 0xc0
	} else {
		control[0] = 0xc1
	}
	copy(control[1:], btcec.SerializeXOnly(internal))

	leafScript := []byte{OP_1}
	rest := wire.TxWitness{[]byte{}, leafScript, control}
	spend, err := resolveTapscriptSpend(outputKey, nil, rest)
	if err != nil {
		t.Fatalf("resolveTapscriptSpend: %v", err)
	}
	if !bytesEqual(spend.execScript, leafScript) {
		t.Fatalf("execScript mismatch")
	}
}

func TestScriptNumMinimalEncoding(t *testing.T) {
	n := scriptNum(42)
	b := n.Bytes()
	back, err := makeScriptNum(b, true, defaultScriptNumLen)
	if err != nil {
		t.Fatal(err)
	}
	if back != n {
		t.Fatalf("got %d, want %d", back, n)
	}
}

func TestExtractWitnessProgram(t *testing.T) {
	prog := make([]byte, 20)
	script := append([]byte{OP_0, 20}, prog...)
	wp, ok := extractWitnessProgram(script)
	if !ok || wp.version != 0 || len(wp.program) != 20 {
		t.Fatalf("unexpected parse: %+v ok=%v", wp, ok)
	}
}
