// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package ground

import "sync"

// OperatorHandle identifies an operator session at the gateway. The
// correlator stores handles, never sessions: a handle whose session is
// gone simply fails delivery, so a pending entry cannot extend a
// session's lifetime.
type OperatorHandle uint64

// Correlator maps outstanding request IDs to the operator waiting for
// the reply.
type Correlator struct {
	mu      sync.Mutex
	pending map[uint8]OperatorHandle
}

// NewCorrelator creates an empty correlator.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[uint8]OperatorHandle)}
}

// Register records op as the originator of request id. A collision
// with a stale entry overwrites it: in a 256-slot reuse space the
// newest request wins.
func (c *Correlator) Register(id uint8, op OperatorHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = op
}

// Complete removes and returns the operator for id, if any. Used for
// terminal responses (ACK, NACK, end-of-stream, time reply).
func (c *Correlator) Complete(id uint8) (OperatorHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	return op, ok
}

// Peek returns the operator for id without consuming the entry. Used
// for streamed responses that arrive before their terminal packet.
func (c *Correlator) Peek(id uint8) (OperatorHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op, ok := c.pending[id]
	return op, ok
}

// Len returns the number of outstanding requests.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
