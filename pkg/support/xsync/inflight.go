// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"sync"

	"github.com/pkg/errors"
)

// InFlight counts submitted work that hasn't finished yet. Unlike sync.WaitGroup, new work can be
// added while someone is waiting on it: a waiter only returns once the count drops to zero.
type InFlight struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int64
}

// NewInFlight returns an InFlight counter set to zero.
func NewInFlight() *InFlight {
	f := &InFlight{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Add changes the counter by delta. It panics if the counter would go negative.
func (f *InFlight) Add(delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count += int64(delta)
	if f.count < 0 {
		panic(errors.Errorf("xsync.InFlight: negative counter (%d)", f.count))
	}
	if f.count == 0 {
		f.cond.Broadcast()
	}
}

// Done decrements the counter by one.
func (f *InFlight) Done() {
	f.Add(-1)
}

// Count returns the current number of in-flight items.
func (f *InFlight) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.count)
}

// Wait blocks until the counter is zero.
func (f *InFlight) Wait() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.count > 0 {
		f.cond.Wait()
	}
}
