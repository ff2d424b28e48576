// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxAddrPerMsg is the maximum number of addresses allowed per addr message.
const MaxAddrPerMsg = 1000

// MsgAddr implements the Message interface and represents a bitcoin addr
// message, used to relay known peer addresses.
type MsgAddr struct {
	AddrList []*NetAddress
}

func (msg *MsgAddr) AddAddress(na *NetAddress) error {
	if len(msg.AddrList)+1 > MaxAddrPerMsg {
		return messageError("MsgAddr.AddAddress", "too many addresses in message")
	}
	msg.AddrList = append(msg.AddrList, na)
	return nil
}

func (msg *MsgAddr) AddAddresses(netAddrs ...*NetAddress) error {
	for _, na := range netAddrs {
		if err := msg.AddAddress(na); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgAddr) ClearAddresses() {
	msg.AddrList = []*NetAddress{}
}

func (msg *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcDecode", fmt.Sprintf(
			"too many addresses for message [count %d, max %d]", count, MaxAddrPerMsg))
	}

	addrList := make([]NetAddress, count)
	msg.AddrList = make([]*NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na := &addrList[i]
		if err := readNetAddress(r, pver, na, true); err != nil {
			return err
		}
		msg.AddrList = append(msg.AddrList, na)
	}
	return nil
}

func (msg *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.AddrList)
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcEncode", fmt.Sprintf(
			"too many addresses for message [count %d, max %d]", count, MaxAddrPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}

	for _, na := range msg.AddrList {
		if err := writeNetAddress(w, pver, na, true); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgAddr) Command() string {
	return CmdAddr
}

func (msg *MsgAddr) MaxPayloadLength(pver uint32) uint32 {
	return MaxVarIntPayload + (MaxAddrPerMsg * maxNetAddressPayload(pver))
}

func NewMsgAddr() *MsgAddr {
	return &MsgAddr{
		AddrList: make([]*NetAddress, 0, MaxAddrPerMsg),
	}
}
