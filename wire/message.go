// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/libbitcoin/libbitcoin-system-sub010/chainhash"
)

// MessageHeaderSize is the number of bytes in a bitcoin message header:
// magic(4) + command(12) + length(4) + checksum(4).
const MessageHeaderSize = 24

// Message is the interface every wire command implements: it knows its own
// command string and how to read/write its payload given a byte order that
// never varies (the wire is little-endian throughout) and a protocol
// version (for conditional fields like the `relay` flag in `version`).
type Message interface {
	BtcDecode(r io.Reader, pver uint32) error
	BtcEncode(w io.Writer, pver uint32) error
	Command() string
	MaxPayloadLength(pver uint32) uint32
}

// messageHeader holds the decoded form of the 24-byte frame header that
// precedes every message payload on the wire.
type messageHeader struct {
	magic    BitcoinNet
	command  string
	length   uint32
	checksum [4]byte
}

// readMessageHeader reads and parses a bitcoin message header from r.
func readMessageHeader(r io.Reader) (*messageHeader, error) {
	var buf [MessageHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	hdr := messageHeader{}
	hdr.magic = BitcoinNet(littleEndian.Uint32(buf[0:4]))

	// command is NUL-padded ASCII; trim trailing NULs.
	var commandBytes [CommandSize]byte
	copy(commandBytes[:], buf[4:16])
	hdr.command = string(bytes.TrimRight(commandBytes[:], "\x00"))

	hdr.length = littleEndian.Uint32(buf[16:20])
	copy(hdr.checksum[:], buf[20:24])

	return &hdr, nil
}

// writeMessageHeader writes a bitcoin message frame header for the given
// network, command and payload to w.
func writeMessageHeader(w io.Writer, btcnet BitcoinNet, command string, payload []byte) error {
	var buf [MessageHeaderSize]byte
	littleEndian.PutUint32(buf[0:4], uint32(btcnet))

	if len(command) > CommandSize {
		return fmt.Errorf("command %q is too long", command)
	}
	copy(buf[4:16], command)

	littleEndian.PutUint32(buf[16:20], uint32(len(payload)))

	checksum := chainhash.Checksum(payload)
	copy(buf[20:24], checksum[:])

	_, err := w.Write(buf[:])
	return err
}

// makeEmptyMessage returns a freshly constructed Message for the given
// command string, or an error if the command is not recognized. Unknown
// commands are the caller's signal to discard the payload and continue.
func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdGetAddr:
		return &MsgGetAddr{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdGetHeaders:
		return &MsgGetHeaders{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	default:
		return nil, fmt.Errorf("unhandled command [%s]", command)
	}
}

// WriteMessage writes a complete bitcoin message (frame header + encoded
// payload) for the given network to w as a single call, matching the
// channel's "one write per frame" contract so the two halves never
// interleave with an unrelated write on the same socket.
func WriteMessage(w io.Writer, msg Message, pver uint32, btcnet BitcoinNet) error {
	var payload bytes.Buffer
	if err := msg.BtcEncode(&payload, pver); err != nil {
		return err
	}

	payloadBytes := payload.Bytes()
	lenp := len(payloadBytes)
	if lenp > MaxMessagePayload {
		return fmt.Errorf("message payload is too large - encoded %d bytes, but maximum message payload is %d bytes", lenp, MaxMessagePayload)
	}

	mpl := msg.MaxPayloadLength(pver)
	if uint32(lenp) > mpl {
		return fmt.Errorf("message payload is too large - encoded %d bytes, but maximum message payload size for messages of type [%s] is %d", lenp, msg.Command(), mpl)
	}

	var frame bytes.Buffer
	frame.Grow(MessageHeaderSize + lenp)
	if err := writeMessageHeader(&frame, btcnet, msg.Command(), payloadBytes); err != nil {
		return err
	}
	frame.Write(payloadBytes)

	_, err := w.Write(frame.Bytes())
	return err
}

// ReadMessage reads a single full bitcoin message (header + payload) from r
// for the given network. It returns the decoded command string raw payload
// and, if the command is known, the decoded Message.
//
// A checksum mismatch is treated as a fatal stream error (the caller should
// drop the channel); an unknown command is not fatal — msg is nil and the
// caller may hand (command, buf) to a raw subscriber.
func ReadMessage(r io.Reader, pver uint32, btcnet BitcoinNet) (msg Message, command string, buf []byte, err error) {
	hdr, err := readMessageHeader(r)
	if err != nil {
		return nil, "", nil, err
	}

	if hdr.magic != btcnet {
		return nil, "", nil, fmt.Errorf("message from other network [%v]", hdr.magic)
	}

	command = hdr.command

	if hdr.length > MaxMessagePayload {
		return nil, command, nil, fmt.Errorf("message payload is too large - header indicates %d bytes, but max message payload is %d bytes", hdr.length, MaxMessagePayload)
	}

	payload := make([]byte, hdr.length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, command, nil, err
	}

	checksum := chainhash.Checksum(payload)
	if checksum != hdr.checksum {
		return nil, command, payload, fmt.Errorf("payload checksum failed - header indicates %x, but actual checksum is %x", hdr.checksum, checksum)
	}

	message, err := makeEmptyMessage(command)
	if err != nil {
		// Unknown command: not fatal, caller discards or routes raw.
		return nil, command, payload, nil
	}

	if err := message.BtcDecode(bytes.NewReader(payload), pver); err != nil {
		return nil, command, payload, err
	}

	return message, command, payload, nil
}
