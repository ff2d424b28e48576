// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command pktd-lite dials a single peer, performs the version/verack
// handshake and logs inbound traffic until stopped. It exists to exercise
// the peer channel end to end, not as a production node.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"

	"github.com/libbitcoin/libbitcoin-system-sub010/chaincfg"
	"github.com/libbitcoin/libbitcoin-system-sub010/peer"
	"github.com/libbitcoin/libbitcoin-system-sub010/taxonomy"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

type options struct {
	Connect     string        `long:"connect" description:"host:port of the peer to dial" required:"true"`
	Network     string        `long:"network" description:"mainnet, testnet3, regtest or signet" default:"testnet3"`
	DataDir     string        `long:"datadir" description:"directory for the address cache" default:"./pktd-lite-data"`
	Heartbeat   time.Duration `long:"heartbeat" description:"ping interval" default:"30s"`
	Timeout     time.Duration `long:"timeout" description:"idle read deadline" default:"2m"`
	DebugListen string        `long:"debuglisten" description:"address to serve channel event notifications over websocket, empty to disable"`
}

func paramsForNetwork(name string) (chaincfg.Params, error) {
	switch name {
	case "mainnet":
		return chaincfg.MainNetParams, nil
	case "testnet3":
		return chaincfg.TestNet3Params, nil
	case "regtest":
		return chaincfg.RegressionNetParams, nil
	case "signet":
		return chaincfg.SigNetParams, nil
	default:
		return chaincfg.Params{}, fmt.Errorf("unknown network %q", name)
	}
}

func randomNonce() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	params, err := paramsForNetwork(opts.Network)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	backend := btclog.NewBackend(os.Stdout)
	log := backend.Logger("PLIT")
	log.SetLevel(btclog.LevelInfo)
	peer.UseLogger(backend.Logger("PEER"))

	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		log.Errorf("mkdir datadir: %v", err)
		os.Exit(1)
	}
	addrCache, err := peer.OpenAddrCache(filepath.Join(opts.DataDir, "addrs.db"))
	if err != nil {
		log.Errorf("open addr cache: %v", err)
		os.Exit(1)
	}
	defer addrCache.Close()

	conn, err := net.DialTimeout("tcp", opts.Connect, 10*time.Second)
	if err != nil {
		log.Errorf("dial %s: %v", opts.Connect, err)
		os.Exit(1)
	}

	remoteHost, remotePortStr, err := net.SplitHostPort(opts.Connect)
	if err != nil {
		log.Errorf("parse %s: %v", opts.Connect, err)
		os.Exit(1)
	}
	remoteIP := net.ParseIP(remoteHost)
	you := wire.NewNetAddressIPPort(remoteIP, parsePortOrZero(remotePortStr), 0)
	me := wire.NewNetAddressIPPort(net.IPv4zero, 0, 0)

	ch := peer.NewChannel(conn, params.Net, wire.ProtocolVersion, opts.Heartbeat, opts.Timeout, 0)
	ch.Start()

	if opts.DebugListen != "" {
		notifier := peer.NewNotifier()
		notifier.AttachChannel(ch)
		go func() {
			if err := http.ListenAndServe(opts.DebugListen, notifier); err != nil {
				log.Errorf("debug listener %s: %v", opts.DebugListen, err)
			}
		}()
		log.Infof("serving channel notifications on ws://%s", opts.DebugListen)
	}

	done := make(chan struct{})
	ch.SubscribeStop(func(reason taxonomy.R) {
		log.Infof("channel stopped: %v", reason)
		close(done)
	})
	ch.Subscribe(wire.CmdVerAck, func(err taxonomy.R, msg wire.Message) {
		if err != nil {
			return
		}
		log.Infof("handshake complete with %s", opts.Connect)
	})
	var recvRaw func(err taxonomy.R, command string, payload []byte)
	recvRaw = func(err taxonomy.R, command string, payload []byte) {
		if err != nil {
			return
		}
		log.Debugf("recv %s (%d bytes)", command, len(payload))
		go ch.SubscribeRaw(recvRaw)
	}
	ch.SubscribeRaw(recvRaw)
	var recvAddr func(err taxonomy.R, msg wire.Message)
	recvAddr = func(err taxonomy.R, msg wire.Message) {
		if err != nil {
			return
		}
		addrMsg := msg.(*wire.MsgAddr)
		for _, na := range addrMsg.AddrList {
			_ = addrCache.Put(na)
		}
		log.Infof("cached %d addresses", len(addrMsg.AddrList))
		go ch.Subscribe(wire.CmdAddr, recvAddr)
	}
	ch.Subscribe(wire.CmdAddr, recvAddr)

	if err := ch.Send(wire.NewMsgVersion(me, you, randomNonce(), 0)); err != nil {
		log.Errorf("send version: %v", err)
		os.Exit(1)
	}

	<-done
}

func parsePortOrZero(s string) uint16 {
	var port uint16
	_, _ = fmt.Sscanf(s, "%d", &port)
	return port
}
