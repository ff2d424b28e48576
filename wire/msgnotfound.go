// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MsgNotFound implements the Message interface and represents a bitcoin
// notfound message, sent in response to a getdata request for data the
// responding peer does not have.
type MsgNotFound struct {
	InvList []*InvVect
}

func (msg *MsgNotFound) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return messageError("MsgNotFound.AddInvVect", "too many inv vectors in message")
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

func (msg *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return messageError("MsgNotFound.BtcDecode", fmt.Sprintf(
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

func (msg *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.InvList)
	if count > MaxInvPerMsg {
		return messageError("MsgNotFound.BtcEncode", fmt.Sprintf(
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

func (msg *MsgNotFound) Command() string {
	return CmdNotFound
}

func (msg *MsgNotFound) MaxPayloadLength(pver uint32) uint32 {
	return MaxVarIntPayload + (MaxInvPerMsg * InvVectSize)
}

func NewMsgNotFound() *MsgNotFound {
	return &MsgNotFound{
		InvList: make([]*InvVect, 0, defaultInvListAlloc),
	}
}
