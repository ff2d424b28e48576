// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

var bucketAddrs = []byte("known_addrs")

// AddrCache persists the set of addresses learned from addr/getaddr
// exchanges across restarts, keyed by "ip:port".
type AddrCache struct {
	db *bolt.DB
}

// OpenAddrCache opens (creating if necessary) a bbolt-backed address cache
// at path.
func OpenAddrCache(path string) (*AddrCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open addr cache: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAddrs)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create addr bucket: %w", err)
	}
	return &AddrCache{db: db}, nil
}

// Close releases the underlying database file.
func (c *AddrCache) Close() error {
	return c.db.Close()
}

// addrKey is the bucket key for a NetAddress: its dotted/bracketed IP and
// port, so entries sort lexically by address.
func addrKey(na *wire.NetAddress) []byte {
	return []byte(net.JoinHostPort(na.IP.String(), fmt.Sprintf("%d", na.Port)))
}

// encodeAddr builds the value stored per address: unix timestamp (8),
// services (8), ip length (1), ip bytes, port (2).
func encodeAddr(na *wire.NetAddress) []byte {
	ipBytes := na.IP.To16()
	buf := make([]byte, 8+8+1+len(ipBytes)+2)
	binary.BigEndian.PutUint64(buf[0:8], uint64(na.Timestamp.Unix()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(na.Services))
	buf[16] = byte(len(ipBytes))
	copy(buf[17:17+len(ipBytes)], ipBytes)
	binary.BigEndian.PutUint16(buf[17+len(ipBytes):], na.Port)
	return buf
}

func decodeAddr(b []byte) (*wire.NetAddress, error) {
	if len(b) < 17 {
		return nil, fmt.Errorf("short address record")
	}
	ts := int64(binary.BigEndian.Uint64(b[0:8]))
	services := binary.BigEndian.Uint64(b[8:16])
	ipLen := int(b[16])
	if len(b) < 17+ipLen+2 {
		return nil, fmt.Errorf("truncated address record")
	}
	ip := make(net.IP, ipLen)
	copy(ip, b[17:17+ipLen])
	port := binary.BigEndian.Uint16(b[17+ipLen:])
	return &wire.NetAddress{
		Timestamp: time.Unix(ts, 0),
		Services:  wire.ServiceFlag(services),
		IP:        ip,
		Port:      port,
	}, nil
}

// Put records or refreshes a known address.
func (c *AddrCache) Put(na *wire.NetAddress) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAddrs).Put(addrKey(na), encodeAddr(na))
	})
}

// All returns every address currently cached.
func (c *AddrCache) All() ([]*wire.NetAddress, error) {
	var out []*wire.NetAddress
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAddrs).ForEach(func(k, v []byte) error {
			na, err := decodeAddr(v)
			if err != nil {
				return nil
			}
			out = append(out, na)
			return nil
		})
	})
	return out, err
}

// Delete removes an address, used when a connection attempt to it has
// failed too many times to keep offering it to getaddr callers.
func (c *AddrCache) Delete(na *wire.NetAddress) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAddrs).Delete(addrKey(na))
	})
}
