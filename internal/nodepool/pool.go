// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package nodepool provides an optional, instrumented sync.Pool wrapper for
// short-lived allocations in hot paths (entry slices, iteration buffers).
//
// Same shape as a sync.Pool plus atomic.Int64 counters for total-allocated
// and currently-live, generalized to any T via Go generics.
package nodepool

import (
	"sync"
	"sync/atomic"
)

// Pool hands out *T values, reusing released ones where possible, and keeps
// running allocation statistics for diagnostics (see Stats).
type Pool[T any] struct {
	pool           sync.Pool
	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

// New returns a Pool whose New function constructs a zero T on a pool miss.
func New[T any](zero func() *T) *Pool[T] {
	p := &Pool[T]{}
	p.pool.New = func() any {
		p.totalAllocated.Add(1)
		return zero()
	}
	return p
}

// Get returns a *T, either reused or freshly allocated.
func (p *Pool[T]) Get() *T {
	p.currentLive.Add(1)
	return p.pool.Get().(*T)
}

// Put returns v to the pool for reuse. Callers must not use v afterward.
func (p *Pool[T]) Put(v *T) {
	p.currentLive.Add(-1)
	p.pool.Put(v)
}

// Stats is a snapshot of the pool's allocation counters.
type Stats struct {
	TotalAllocated int64
	CurrentLive    int64
}

// Stats returns the pool's current counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		TotalAllocated: p.totalAllocated.Load(),
		CurrentLive:    p.currentLive.Load(),
	}
}
