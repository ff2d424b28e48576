// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxBlockHeadersPerMsg is the maximum number of block headers allowed per
// headers message.
const MaxBlockHeadersPerMsg = 2000

// MsgHeaders implements the Message interface and represents a bitcoin
// headers message, sent in response to a getheaders message. Each header is
// followed on the wire by a varint transaction count, which is always zero
// since headers messages never carry transactions.
type MsgHeaders struct {
	Headers []*BlockHeader
}

func (msg *MsgHeaders) AddBlockHeader(bh *BlockHeader) error {
	if len(msg.Headers)+1 > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.AddBlockHeader", "too many block headers in message")
	}
	msg.Headers = append(msg.Headers, bh)
	return nil
}

func (msg *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.BtcDecode", fmt.Sprintf(
			"too many headers for message [count %d, max %d]", count, MaxBlockHeadersPerMsg))
	}

	headers := make([]BlockHeader, count)
	msg.Headers = make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		bh := &headers[i]
		if err := readBlockHeader(r, pver, bh); err != nil {
			return err
		}

		txCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if txCount != 0 {
			return messageError("MsgHeaders.BtcDecode", "headers message contains a non-zero transaction count")
		}

		msg.Headers = append(msg.Headers, bh)
	}
	return nil
}

func (msg *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.Headers)
	if count > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.BtcEncode", fmt.Sprintf(
			"too many headers for message [count %d, max %d]", count, MaxBlockHeadersPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, bh := range msg.Headers {
		if err := writeBlockHeader(w, pver, bh); err != nil {
			return err
		}
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgHeaders) Command() string {
	return CmdHeaders
}

func (msg *MsgHeaders) MaxPayloadLength(pver uint32) uint32 {
	return MaxVarIntPayload + ((BlockHeaderLen + 1) * MaxBlockHeadersPerMsg)
}

func NewMsgHeaders() *MsgHeaders {
	return &MsgHeaders{
		Headers: make([]*BlockHeader, 0, MaxBlockHeadersPerMsg),
	}
}
