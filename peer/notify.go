// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/libbitcoin/libbitcoin-system-sub010/taxonomy"
)

// Notifier fans a channel's stop event out to any number of
// websocket clients, an optional sink for higher layers (RPC, monitoring)
// that want to watch peer liveness without polling the channel directly.
type Notifier struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// Event is one notification pushed to subscribed websocket clients.
type Event struct {
	Kind    string `json:"kind"`
	Command string `json:"command,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// NewNotifier constructs an empty Notifier. CheckOrigin is left permissive
// since this is a local monitoring sink, not a public-facing endpoint.
func NewNotifier() *Notifier {
	return &Notifier{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket connection and registers it
// for broadcasts until it errors or the caller closes it.
func (n *Notifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("notifier: upgrade failed: %v", err)
		return
	}

	n.mu.Lock()
	n.conns[conn] = struct{}{}
	n.mu.Unlock()

	go n.drain(conn)
}

// drain discards anything the client sends (this is a push-only feed) and
// deregisters the connection once the client disconnects.
func (n *Notifier) drain(conn *websocket.Conn) {
	defer func() {
		n.mu.Lock()
		delete(n.conns, conn)
		n.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes ev to every currently registered client, dropping any
// connection that fails to write rather than letting one slow client stall
// the feed for the rest.
func (n *Notifier) Broadcast(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for conn := range n.conns {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			conn.Close()
			delete(n.conns, conn)
		}
	}
}

// AttachChannel wires the channel's stop event into a broadcast on n.
// Heartbeat pings are not broadcast. Call after Channel.Start: the stop
// subscription is posted to the channel's strand, which only runs once the
// channel has started.
func (n *Notifier) AttachChannel(c *Channel) {
	c.SubscribeStop(func(reason taxonomy.R) {
		n.Broadcast(Event{Kind: "stop", Reason: reason.Error()})
	})
}
