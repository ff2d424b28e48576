// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements the framed, asynchronous message channel between
// two bitcoin nodes: header+payload framing (via wire), per-message
// type-routed delivery, heartbeat/timeout/revival timers, and stop
// semantics.
//
// A Channel owns one net.Conn and serializes all channel-local state
// transitions (subscriber registration, message dispatch, writes, timer
// fires) through a single strand goroutine, so two callbacks for the same
// channel are never running concurrently even though many channels share
// whatever goroutines drive their socket I/O.
package peer

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"sync/atomic"
	"time"

	"github.com/libbitcoin/libbitcoin-system-sub010/taxonomy"
	"github.com/libbitcoin/libbitcoin-system-sub010/wire"
)

// MsgHandler is invoked once with the decoded message of the type it was
// subscribed for, or with a non-nil error and a nil message if the channel
// stopped before delivery.
type MsgHandler func(err taxonomy.R, msg wire.Message)

// RawHandler is invoked once, for the next inbound frame, with its command
// string and undecoded payload, whether or not the command is one wire
// knows how to decode.
type RawHandler func(err taxonomy.R, command string, payload []byte)

// StopHandler is invoked once when the channel transitions to Stopped.
type StopHandler func(reason taxonomy.R)

var errServiceStopped = taxonomy.New(taxonomy.CodeServiceStopped, "service stopped")

// Channel is a framed, strand-serialized connection to one peer.
type Channel struct {
	conn net.Conn
	net  wire.BitcoinNet
	pver uint32

	strand chan func()
	quit   chan struct{}
	done   chan struct{}
	stopped int32 // atomic bool, read off-strand by post()

	heartbeatInterval time.Duration
	timeoutInterval   time.Duration
	revivalInterval   time.Duration

	heartbeatTimer *time.Timer
	timeoutTimer   *time.Timer
	revivalTimer   *time.Timer
	revivalHandler func()

	typed    map[string][]MsgHandler
	rawSubs  []RawHandler
	stopSubs []StopHandler
}

// NewChannel wraps conn in a Channel. heartbeatInterval, timeoutInterval and
// revivalInterval are zero to disable the corresponding timer.
func NewChannel(conn net.Conn, btcnet wire.BitcoinNet, pver uint32, heartbeatInterval, timeoutInterval, revivalInterval time.Duration) *Channel {
	return &Channel{
		conn:              conn,
		net:               btcnet,
		pver:              pver,
		strand:            make(chan func()),
		quit:              make(chan struct{}),
		done:              make(chan struct{}),
		heartbeatInterval: heartbeatInterval,
		timeoutInterval:   timeoutInterval,
		revivalInterval:   revivalInterval,
		typed:             make(map[string][]MsgHandler),
	}
}

// Start launches the strand goroutine, the read loop and the timers. The
// channel is live once Start returns; callers subscribe and send from any
// goroutine after that.
func (c *Channel) Start() {
	go c.strandLoop()
	go c.readLoop()

	if c.heartbeatInterval > 0 {
		c.heartbeatTimer = time.AfterFunc(c.heartbeatInterval, c.onHeartbeat)
	}
	if c.timeoutInterval > 0 {
		c.timeoutTimer = time.AfterFunc(c.timeoutInterval, c.onTimeout)
	}
	if c.revivalInterval > 0 {
		c.revivalTimer = time.AfterFunc(c.revivalInterval, c.onRevival)
	}
}

// isStopped reports whether the channel has already transitioned to
// Stopped. Safe to call from any goroutine.
func (c *Channel) isStopped() bool {
	return atomic.LoadInt32(&c.stopped) != 0
}

// post runs fn on the strand, serialized with every other posted closure.
// If the strand has already exited (the channel stopped and drained its
// queue) fn runs synchronously in the caller instead — the isStopped check
// inside every closure below still gives the correct service_stopped
// behavior in that case.
func (c *Channel) post(fn func()) {
	select {
	case c.strand <- fn:
	case <-c.done:
		fn()
	}
}

func (c *Channel) strandLoop() {
	defer close(c.done)
	for {
		select {
		case fn := <-c.strand:
			fn()
		case <-c.quit:
			// Drain anything already queued so callers blocked in post
			// waiting on a send don't deadlock against a closed strand.
			for {
				select {
				case fn := <-c.strand:
					fn()
				default:
					return
				}
			}
		}
	}
}

// readLoop is the only goroutine that performs blocking reads; it is the
// channel's one suspension point on the inbound side. Each full frame read
// is handed to the strand for decode/dispatch.
func (c *Channel) readLoop() {
	for {
		msg, command, payload, err := wire.ReadMessage(c.conn, c.pver, c.net)
		if err != nil {
			reason := taxonomy.Errorf(taxonomy.CodeBadStream, "read: %v", err)
			c.post(func() { c.stopLocked(reason) })
			return
		}

		c.post(func() {
			if c.stopped != 0 {
				return
			}
			c.resetTimeout()
			c.dispatch(command, payload, msg)
		})
	}
}

// dispatch runs on the strand. It fires the one-shot raw subscribers for
// every frame, then the one-shot typed subscribers for known commands.
func (c *Channel) dispatch(command string, payload []byte, msg wire.Message) {
	raw := c.rawSubs
	c.rawSubs = nil
	for _, h := range raw {
		h(nil, command, payload)
	}

	if msg == nil {
		return
	}
	handlers := c.typed[command]
	delete(c.typed, command)
	for _, h := range handlers {
		h(nil, msg)
	}
}

// Send encodes and writes msg as a single frame. The write itself runs on
// the strand so concurrent Send calls from different goroutines never
// interleave their frame bytes, and a write never races a read dispatch.
func (c *Channel) Send(msg wire.Message) error {
	errc := make(chan error, 1)
	c.post(func() {
		if c.stopped != 0 {
			errc <- errServiceStopped
			return
		}
		err := wire.WriteMessage(c.conn, msg, c.pver, c.net)
		if err != nil {
			errc <- err
			c.stopLocked(taxonomy.Errorf(taxonomy.CodeBadStream, "write: %v", err))
			return
		}
		errc <- nil
	})
	return <-errc
}

// Subscribe registers a one-shot handler for the next inbound message
// carrying the given command string.
func (c *Channel) Subscribe(command string, handler MsgHandler) {
	c.post(func() {
		if c.stopped != 0 {
			handler(errServiceStopped, nil)
			return
		}
		c.typed[command] = append(c.typed[command], handler)
	})
}

// SubscribeRaw registers a one-shot handler for the next inbound frame,
// decoded or not.
func (c *Channel) SubscribeRaw(handler RawHandler) {
	c.post(func() {
		if c.stopped != 0 {
			handler(errServiceStopped, "", nil)
			return
		}
		c.rawSubs = append(c.rawSubs, handler)
	})
}

// SubscribeStop registers a one-shot handler invoked when the channel
// stops, graceful or not. If the channel has already stopped, handler runs
// immediately.
func (c *Channel) SubscribeStop(handler StopHandler) {
	c.post(func() {
		if c.stopped != 0 {
			handler(errServiceStopped)
			return
		}
		c.stopSubs = append(c.stopSubs, handler)
	})
}

// SetRevivalHandler installs the callback fired when the revival timer
// expires. Pass nil to clear it.
func (c *Channel) SetRevivalHandler(handler func()) {
	c.post(func() { c.revivalHandler = handler })
}

// ResetRevival rearms the revival timer from now.
func (c *Channel) ResetRevival() {
	if c.revivalInterval == 0 {
		return
	}
	c.post(func() {
		if c.revivalTimer != nil {
			c.revivalTimer.Reset(c.revivalInterval)
		}
	})
}

func (c *Channel) resetTimeout() {
	if c.timeoutTimer != nil {
		c.timeoutTimer.Reset(c.timeoutInterval)
	}
}

func (c *Channel) onHeartbeat() {
	c.post(func() {
		if c.stopped != 0 {
			return
		}
		c.heartbeatTimer.Reset(c.heartbeatInterval)
	})
	var nonceBytes [8]byte
	_, _ = rand.Read(nonceBytes[:])
	nonce := binary.LittleEndian.Uint64(nonceBytes[:])
	_ = c.Send(wire.NewMsgPing(nonce))
}

func (c *Channel) onTimeout() {
	c.post(func() {
		c.stopLocked(taxonomy.New(taxonomy.CodeChannelTimeout, "idle timeout"))
	})
}

func (c *Channel) onRevival() {
	c.post(func() {
		if c.stopped != 0 {
			return
		}
		handler := c.revivalHandler
		if c.revivalTimer != nil {
			c.revivalTimer.Reset(c.revivalInterval)
		}
		if handler != nil {
			handler()
		}
	})
}

// Stop transitions the channel to Stopped with a graceful service_stopped
// reason. Safe to call more than once and from any goroutine.
func (c *Channel) Stop() {
	c.post(func() { c.stopLocked(errServiceStopped) })
}

// stopLocked runs only on the strand. It is idempotent: the second and
// later calls observe c.stopped already set and return immediately.
func (c *Channel) stopLocked(reason taxonomy.R) {
	if c.stopped != 0 {
		return
	}
	atomic.StoreInt32(&c.stopped, 1)
	c.conn.Close()
	if c.heartbeatTimer != nil {
		c.heartbeatTimer.Stop()
	}
	if c.timeoutTimer != nil {
		c.timeoutTimer.Stop()
	}
	if c.revivalTimer != nil {
		c.revivalTimer.Stop()
	}

	for _, handlers := range c.typed {
		for _, h := range handlers {
			h(reason, nil)
		}
	}
	c.typed = nil
	for _, h := range c.rawSubs {
		h(reason, "", nil)
	}
	c.rawSubs = nil

	stopSubs := c.stopSubs
	c.stopSubs = nil
	for _, h := range stopSubs {
		h(reason)
	}

	close(c.quit)
}
