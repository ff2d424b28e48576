// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"net"
	"strings"
	"sync"

	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

// LocalAddrs tracks which of this process's own network interfaces are
// externally reachable, so a channel answering getaddr can offer callers an
// address that will actually connect back.
type LocalAddrs struct {
	m sync.Mutex
	a map[string]*wire.NetAddress
}

// NewLocalAddrs returns an empty address set; call Refresh to populate it.
func NewLocalAddrs() LocalAddrs {
	return LocalAddrs{
		a: make(map[string]*wire.NetAddress),
	}
}

// isRoutable reports whether ip is usable as an advertised peer address:
// not a loopback, link-local or unspecified address.
func isRoutable(ip net.IP) bool {
	if ip == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() && !ip.IsLinkLocalMulticast()
}

// Refresh re-enumerates the host's network interfaces, dropping addresses
// that disappeared and classifying any new ones as routable or not.
func (la *LocalAddrs) Refresh() {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warnf("LocalAddrs.Refresh: %v", err)
		return
	}
	seen := make(map[string]struct{})
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			log.Warnf("LocalAddrs.Refresh: interface %s: %v", iface.Name, err)
			continue
		}
		for _, a := range addrs {
			seen[a.String()] = struct{}{}
		}
	}

	la.m.Lock()
	defer la.m.Unlock()

	for s := range la.a {
		if _, ok := seen[s]; !ok {
			log.Infof("local address gone [%s]", s)
			delete(la.a, s)
		}
	}
	for s := range seen {
		if _, ok := la.a[s]; ok {
			continue
		}
		ipStr := strings.SplitN(s, "/", 2)[0]
		ip := net.ParseIP(ipStr)
		if ip == nil {
			log.Warnf("LocalAddrs.Refresh: unable to parse addr [%s]", s)
			continue
		}
		if isRoutable(ip) {
			log.Infof("local address detected [%s]", s)
			la.a[s] = wire.NewNetAddressIPPort(ip, 0, 0)
		} else {
			log.Debugf("non-routable local address [%s]", s)
			la.a[s] = nil
		}
	}
}

// Reachable reports whether any of the host's known routable addresses
// shares na's IP version (IPv4 or IPv6). No other network comparison is
// made.
func (la *LocalAddrs) Reachable(na *wire.NetAddress) bool {
	if na == nil || na.IP == nil {
		return false
	}
	la.m.Lock()
	defer la.m.Unlock()
	for _, local := range la.a {
		if local == nil || local.IP == nil {
			continue
		}
		if (local.IP.To4() == nil) == (na.IP.To4() == nil) {
			return true
		}
	}
	return false
}
