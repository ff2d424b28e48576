// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ProtocolVersion is the latest protocol version this package understands.
const ProtocolVersion uint32 = 70016

// MultipleAddressVersion is the protocol version which added multiple
// addresses per message (pver >= this value may batch addr messages).
const MultipleAddressVersion uint32 = 209

// RelayTxsVersion is the protocol version which added the transaction relay
// flag to the version message (BIP37/BIP133).
const RelayTxsVersion uint32 = 70001

// CommandSize is the fixed length of a command string embedded in the
// 24-byte message header: ASCII, NUL-padded.
const CommandSize = 12

// MaxMessagePayload is the consensus cap on a single message's payload.
const MaxMessagePayload = 32 * 1024 * 1024

// Commands used in message headers which describe the type of message.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdGetAddr     = "getaddr"
	CmdAddr        = "addr"
	CmdGetBlocks   = "getblocks"
	CmdInv         = "inv"
	CmdGetData     = "getdata"
	CmdNotFound    = "notfound"
	CmdBlock       = "block"
	CmdTx          = "tx"
	CmdGetHeaders  = "getheaders"
	CmdHeaders     = "headers"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdReject      = "reject"
)

// ServiceFlag identifies services supported by a bitcoin peer.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates a peer is a full node.
	SFNodeNetwork ServiceFlag = 1 << iota

	// SFNodeGetUTXO indicates a peer supports the getutxo protocol extension.
	SFNodeGetUTXO

	// SFNodeBloom indicates a peer supports bloom filtering.
	SFNodeBloom

	// SFNodeWitness indicates a peer supports segregated witness.
	SFNodeWitness

	// SFNodeXthin indicates a peer supports Xtreme Thinblocks.
	SFNodeXthin

	// SFNodeCF indicates a peer supports committed filters (BIP157/158).
	SFNodeCF

	// SFNode2X is set by nodes running the bitcoin2x software.
	SFNode2X

	// SFNodeNetworkLimited indicates a peer serves only a bounded recent
	// range of blocks (BIP159).
	SFNodeNetworkLimited
)

// BitcoinNet represents the magic number identifying a Bitcoin network.
type BitcoinNet uint32

const (
	// MainNet is the magic number for mainnet.
	MainNet BitcoinNet = 0xd9b4bef9

	// TestNet3 is the magic number for the test network (version 3).
	TestNet3 BitcoinNet = 0x0709110b

	// RegTest is the magic number for the regression test network.
	RegTest BitcoinNet = 0xdab5bffa

	// SigNet is the magic number for the signet test network.
	SigNet BitcoinNet = 0x40cf030a
)

// String returns a human readable representation for a network.
func (n BitcoinNet) String() string {
	switch n {
	case MainNet:
		return "MainNet"
	case TestNet3:
		return "TestNet3"
	case RegTest:
		return "RegTest"
	case SigNet:
		return "SigNet"
	default:
		return "Unknown"
	}
}

// InvType represents the allowed types of inventory vectors in an inv,
// getdata, or notfound message.
type InvType uint32

const (
	InvTypeError            InvType = 0
	InvTypeTx               InvType = 1
	InvTypeBlock            InvType = 2
	InvTypeFilteredBlock    InvType = 3
	InvTypeCompactBlock     InvType = 4
	InvWitnessFlag          InvType = 1 << 30
	InvTypeWitnessBlock             = InvTypeBlock | InvWitnessFlag
	InvTypeWitnessTx                = InvTypeTx | InvWitnessFlag
)

// String returns the InvType in human-readable form.
func (invtype InvType) String() string {
	switch invtype {
	case InvTypeError:
		return "ERROR"
	case InvTypeTx:
		return "MSG_TX"
	case InvTypeBlock:
		return "MSG_BLOCK"
	case InvTypeFilteredBlock:
		return "MSG_FILTERED_BLOCK"
	case InvTypeCompactBlock:
		return "MSG_CMPCT_BLOCK"
	case InvTypeWitnessBlock:
		return "MSG_WITNESS_BLOCK"
	case InvTypeWitnessTx:
		return "MSG_WITNESS_TX"
	default:
		return "Unknown InvType"
	}
}
