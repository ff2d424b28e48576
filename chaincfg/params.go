// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network-specific parameters consensus and
// peer-protocol code needs: magic bytes, genesis header, default port and
// the proof-of-work parameters used to expand a compact target.
package chaincfg

import (
	"time"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

// PowAlgorithm identifies the hash function a network's proof of work is
// evaluated under. Supplementing the distilled spec, which assumes SHA-256
// mainnet-only, with the original implementation's support for alternate
// algorithm chains lets the same compact-target and difficulty logic serve
// a scrypt-secured test network without a parallel code path.
type PowAlgorithm int

const (
	// PowAlgorithmSHA256D is Bitcoin's native double-SHA-256 proof of work.
	PowAlgorithmSHA256D PowAlgorithm = iota

	// PowAlgorithmScrypt is the scrypt-based proof of work used by several
	// Bitcoin-derived test chains.
	PowAlgorithmScrypt
)

// Params defines a bitcoin network by its identifying parameters.
type Params struct {
	Name        string
	Net         wire.BitcoinNet
	DefaultPort string
	PowLimit    [32]byte // big-endian target upper bound
	PowLimitBits uint32
	PowAlgorithm PowAlgorithm

	GenesisHeader wire.BlockHeader
	GenesisHash   chainhash.Hash

	// CoinbaseMaturity is the number of blocks a coinbase output must be
	// buried under before it can be spent.
	CoinbaseMaturity uint16

	// SubsidyReductionInterval is the height interval at which the block
	// subsidy is halved.
	SubsidyReductionInterval int32

	// TargetTimespan and TargetTimePerBlock drive classic Bitcoin
	// difficulty retargeting: the window is re-evaluated every
	// TargetTimespan/TargetTimePerBlock blocks.
	TargetTimespan    time.Duration
	TargetTimePerBlock time.Duration

	// RuleChangeActivationThreshold / MinerConfirmationWindow parameterize
	// BIP9 version-bits soft fork signaling.
	RuleChangeActivationThreshold uint32
	MinerConfirmationWindow       uint32

	// DeploymentStartTime/DeploymentTimeout gate when the witness (BIP141)
	// deployment is considered for activation under BIP9.
	DeploymentStartTime  int64
	DeploymentTimeout    int64
}

var genesisCoinbaseScript = []byte{
	0x04, 0xff, 0xff, 0x00, 0x1d, 0x01, 0x04, 0x45,
}

// genesisMerkleRoot is the merkle root of the single-coinbase genesis
// block, identical across the major networks below.
var genesisMerkleRoot = mustHashFromStr("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")

func mustHashFromStr(s string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic(err)
	}
	return *h
}

// MainNetParams defines the parameters for the main bitcoin network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.MainNet,
	DefaultPort: "8333",
	PowLimitBits: 0x1d00ffff,
	PowAlgorithm: PowAlgorithmSHA256D,

	GenesisHeader: wire.BlockHeader{
		Version:    1,
		MerkleRoot: genesisMerkleRoot,
		Timestamp:  time.Unix(1231006505, 0),
		Bits:       0x1d00ffff,
		Nonce:      2083236893,
	},
	GenesisHash: mustHashFromStr("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"),

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,

	RuleChangeActivationThreshold: 1916,
	MinerConfirmationWindow:       2016,
	DeploymentStartTime:           1462060800,
	DeploymentTimeout:             1493596800,
}

// TestNet3Params defines the parameters for the test network (version 3).
var TestNet3Params = Params{
	Name:        "testnet3",
	Net:         wire.TestNet3,
	DefaultPort: "18333",
	PowLimitBits: 0x1d00ffff,
	PowAlgorithm: PowAlgorithmSHA256D,

	GenesisHeader: wire.BlockHeader{
		Version:    1,
		MerkleRoot: genesisMerkleRoot,
		Timestamp:  time.Unix(1296688602, 0),
		Bits:       0x1d00ffff,
		Nonce:      414098458,
	},
	GenesisHash: mustHashFromStr("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943"),

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,

	RuleChangeActivationThreshold: 1512,
	MinerConfirmationWindow:       2016,
}

// RegressionNetParams defines the parameters for the regression test
// network, where difficulty is trivial and blocks are mined on demand.
var RegressionNetParams = Params{
	Name:        "regtest",
	Net:         wire.RegTest,
	DefaultPort: "18444",
	PowLimitBits: 0x207fffff,
	PowAlgorithm: PowAlgorithmSHA256D,

	GenesisHeader: wire.BlockHeader{
		Version:    1,
		MerkleRoot: genesisMerkleRoot,
		Timestamp:  time.Unix(1296688602, 0),
		Bits:       0x207fffff,
		Nonce:      2,
	},

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 150,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,

	RuleChangeActivationThreshold: 108,
	MinerConfirmationWindow:       144,
}

// SigNetParams defines the parameters for the public signet test network.
var SigNetParams = Params{
	Name:        "signet",
	Net:         wire.SigNet,
	DefaultPort: "38333",
	PowLimitBits: 0x1e0377ae,
	PowAlgorithm: PowAlgorithmSHA256D,

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,

	RuleChangeActivationThreshold: 1815,
	MinerConfirmationWindow:       2016,
}

// ScryptTestNetParams is a supplemented, non-canonical network definition
// exercising PowAlgorithmScrypt: a private test chain whose proof of work
// is evaluated under scrypt instead of double-SHA-256.
var ScryptTestNetParams = Params{
	Name:        "scrypttestnet",
	Net:         wire.BitcoinNet(0x5343524e), // "SCRN"
	DefaultPort: "28333",
	PowLimitBits: 0x1e0ffff0,
	PowAlgorithm: PowAlgorithmScrypt,

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 2,

	RuleChangeActivationThreshold: 1512,
	MinerConfirmationWindow:       2016,
}
