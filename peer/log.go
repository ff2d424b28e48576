// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "github.com/btcsuite/btclog"

// log is the package-level subsystem logger. By default it discards
// everything; callers that want output call UseLogger with a real backend.
var log = btclog.Disabled

// UseLogger sets the logger used by the package. Call this before opening
// any channels if log output is wanted.
func UseLogger(logger btclog.Logger) {
	log = logger
}
