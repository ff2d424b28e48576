// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
	"time"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message.
const MaxUserAgentLen = 256

// DefaultUserAgent is used as the user agent when a client does not set one.
const DefaultUserAgent = "/libbitcoin-system-sub010:0.1.0/"

// MsgVersion implements the Message interface and represents a bitcoin
// version message. It is the first message exchanged on a newly opened
// channel and negotiates the protocol version, supported services and
// whether the peer wants inv relaying before verack.
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       time.Time
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
	DisableRelayTx  bool
}

func (msg *MsgVersion) HasService(service ServiceFlag) bool {
	return msg.Services&service == service
}

func (msg *MsgVersion) AddService(service ServiceFlag) {
	msg.Services |= service
}

// NewMsgVersion returns a new bitcoin version message using the given
// parameters and defaults for the remaining fields.
func NewMsgVersion(me *NetAddress, you *NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Unix(time.Now().Unix(), 0),
		AddrYou:         *you,
		AddrMe:          *me,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		LastBlock:       lastBlock,
		DisableRelayTx:  false,
	}
}

func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	pv, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = int32(pv)

	svc, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Services = ServiceFlag(svc)

	secs, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Timestamp = time.Unix(int64(secs), 0)

	if err := readNetAddress(r, pver, &msg.AddrYou, false); err != nil {
		return err
	}

	// Older clients did not send the "me" address, nonce or the
	// remaining fields; a short read of the "me" address, the nonce, the
	// last block height or the relay flag is tolerated, but a missing or
	// truncated user agent is an error.
	if err := readNetAddress(r, pver, &msg.AddrMe, false); err != nil {
		return nil
	}

	nonce, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return nil
	}
	msg.Nonce = nonce

	userAgent, err := ReadVarString(r, MaxUserAgentLen)
	if err != nil {
		return err
	}
	if len(userAgent) > MaxUserAgentLen {
		return messageError("MsgVersion.BtcDecode", fmt.Sprintf(
			"user agent too long [len %d, max %d]", len(userAgent), MaxUserAgentLen))
	}
	msg.UserAgent = userAgent

	lastBlock, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return nil
	}
	msg.LastBlock = int32(lastBlock)

	if msg.ProtocolVersion >= int32(RelayTxsVersion) {
		relayTx, err := binarySerializer.Uint8(r)
		if err != nil {
			return nil
		}
		msg.DisableRelayTx = relayTx == 0
	}

	return nil
}

func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.UserAgent) > MaxUserAgentLen {
		return messageError("MsgVersion.BtcEncode", fmt.Sprintf(
			"user agent too long [len %d, max %d]", len(msg.UserAgent), MaxUserAgentLen))
	}

	if err := binarySerializer.PutUint32(w, littleEndian, uint32(msg.ProtocolVersion)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, littleEndian, uint64(msg.Services)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, littleEndian, uint64(msg.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, littleEndian, msg.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, msg.UserAgent); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(msg.LastBlock)); err != nil {
		return err
	}

	var relayTx uint8
	if !msg.DisableRelayTx {
		relayTx = 1
	}
	return binarySerializer.PutUint8(w, relayTx)
}

func (msg *MsgVersion) Command() string {
	return CmdVersion
}

func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	return 29 + (maxNetAddressPayload(pver) * 2) + MaxVarIntPayload + MaxUserAgentLen
}
