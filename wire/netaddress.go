// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"
)

// maxNetAddressPayload returns the max payload size for a bitcoin NetAddress
// based on the protocol version.
func maxNetAddressPayload(pver uint32) uint32 {
	// time(4) + services(8) + ip(16) + port(2)
	plen := uint32(26)
	if pver >= MultipleAddressVersion {
		plen += 4
	}
	return plen
}

// NetAddress defines information about a peer on the network, including the
// time it was last seen, its supported services and its address.
type NetAddress struct {
	// Timestamp is omitted for the version message's own address fields
	// (which always encode without it) and included for addr messages.
	Timestamp time.Time
	Services  ServiceFlag
	IP        net.IP
	Port      uint16
}

// NewNetAddressIPPort creates a new NetAddress using the provided IP, port
// and supported services with defaults for the remaining fields.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return NewNetAddressTimestamp(time.Now(), services, ip, port)
}

// NewNetAddressTimestamp creates a new NetAddress with the given timestamp.
func NewNetAddressTimestamp(timestamp time.Time, services ServiceFlag, ip net.IP, port uint16) *NetAddress {
	return &NetAddress{
		Timestamp: time.Unix(timestamp.Unix(), 0),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

// readNetAddress reads a network address from r. If ts is true a 4-byte
// timestamp precedes the fixed fields (addr messages); the version message's
// own two addresses never carry one.
func readNetAddress(r io.Reader, pver uint32, na *NetAddress, ts bool) error {
	var ip [16]byte

	if ts {
		secs, err := binarySerializer.Uint32(r, littleEndian)
		if err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(secs), 0)
	}

	services, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	na.Services = ServiceFlag(services)

	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}
	na.IP = net.IP(append([]byte(nil), ip[:]...))

	port, err := binarySerializer.Uint16(r, bigEndian)
	if err != nil {
		return err
	}
	na.Port = port

	return nil
}

// writeNetAddress writes a network address to w.
func writeNetAddress(w io.Writer, pver uint32, na *NetAddress, ts bool) error {
	if ts {
		if err := binarySerializer.PutUint32(w, littleEndian, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}

	if err := binarySerializer.PutUint64(w, littleEndian, uint64(na.Services)); err != nil {
		return err
	}

	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}

	return binarySerializer.PutUint16(w, bigEndian, na.Port)
}
