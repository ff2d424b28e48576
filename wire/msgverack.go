// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgVerAck defines a bitcoin verack message. It has no payload and
// acknowledges acceptance of a preceding version message, completing the
// handshake on that half of the channel.
type MsgVerAck struct{}

func (msg *MsgVerAck) BtcDecode(r io.Reader, pver uint32) error {
	return nil
}

func (msg *MsgVerAck) BtcEncode(w io.Writer, pver uint32) error {
	return nil
}

func (msg *MsgVerAck) Command() string {
	return CmdVerAck
}

func (msg *MsgVerAck) MaxPayloadLength(pver uint32) uint32 {
	return 0
}

func NewMsgVerAck() *MsgVerAck {
	return &MsgVerAck{}
}

// MsgGetAddr defines a bitcoin getaddr message. It has no payload and
// requests an addr response containing known peer addresses.
type MsgGetAddr struct{}

func (msg *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error {
	return nil
}

func (msg *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error {
	return nil
}

func (msg *MsgGetAddr) Command() string {
	return CmdGetAddr
}

func (msg *MsgGetAddr) MaxPayloadLength(pver uint32) uint32 {
	return 0
}

func NewMsgGetAddr() *MsgGetAddr {
	return &MsgGetAddr{}
}
