// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxInvPerMsg is the maximum number of inventory vectors that can be in a
// single bitcoin inv, getdata or notfound message.
const MaxInvPerMsg = 50000

// MsgInv implements the Message interface and represents a bitcoin inv
// message, used to advertise a peer's knowledge of transactions, blocks or
// both via inventory vectors.
type MsgInv struct {
	InvList []*InvVect
}

func (msg *MsgInv) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return messageError("MsgInv.AddInvVect", "too many inv vectors in message")
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

func (msg *MsgInv) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return messageError("MsgInv.BtcDecode", fmt.Sprintf(
			"too many inv vectors for message [count %d, max %d]", count, MaxInvPerMsg))
	}

	invList := make([]InvVect, count)
	msg.InvList = make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv := &invList[i]
		if err := readInvVect(r, pver, iv); err != nil {
			return err
		}
		msg.InvList = append(msg.InvList, iv)
	}
	return nil
}

func (msg *MsgInv) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.InvList)
	if count > MaxInvPerMsg {
		return messageError("MsgInv.BtcEncode", fmt.Sprintf(
			"too many inv vectors for message [count %d, max %d]", count, MaxInvPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, iv := range msg.InvList {
		if err := writeInvVect(w, pver, iv); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgInv) Command() string {
	return CmdInv
}

func (msg *MsgInv) MaxPayloadLength(pver uint32) uint32 {
	return MaxVarIntPayload + (MaxInvPerMsg * InvVectSize)
}

func NewMsgInv() *MsgInv {
	return &MsgInv{
		InvList: make([]*InvVect, 0, defaultInvListAlloc),
	}
}

func NewMsgInvSizeHint(sizeHint uint) *MsgInv {
	if sizeHint > MaxInvPerMsg {
		sizeHint = MaxInvPerMsg
	}
	return &MsgInv{
		InvList: make([]*InvVect, 0, sizeHint),
	}
}

const defaultInvListAlloc = 1000
