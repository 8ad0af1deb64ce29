//go:build windows
// +build windows

// File: reactor/timers_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Monotonic-clock-indexed timer wheel: a singly linked list of pending
// deadlines scanned once per flush.

package reactor

import (
	"sort"
	"time"

	"github.com/momentics/iocp-engine/completion"
)

// timeoutOp is the operation payload for a timeout submission.
type timeoutOp struct {
	deadline time.Time
}

func (*timeoutOp) isOperation() {}

// SubmitTimeout arranges for cb(ctx) to fire no earlier than ns
// nanoseconds from now. ns == 0 bypasses the timers list entirely,
// enqueueing directly to the ready queue.
func (r *Reactor) SubmitTimeout(ctx any, cb func(ctx any), c *completion.Completion, ns int64) {
	c.Ctx = ctx
	completion.BindCallback(c, func(c *completion.Completion) {
		cb(c.Ctx)
	})

	if ns <= 0 {
		c.SetOperation(&timeoutOp{})
		c.MarkQueued()
		r.completed.Add(c)
		return
	}

	c.SetOperation(&timeoutOp{deadline: time.Now().Add(time.Duration(ns))})
	c.MarkTimerWait()
	r.timeouts.PushBack(c)
}

// flushTimeouts walks the timers list once. Every Completion whose
// deadline has passed is unlinked and appended to the ready queue,
// earliest deadline first; ties at equal deadlines keep submission
// order. The minimum remaining duration among survivors is returned,
// or haveTimer == false if none remain.
func (r *Reactor) flushTimeouts(now time.Time) (minRemaining int64, haveTimer bool) {
	if r.timeouts.Empty() {
		return 0, false
	}

	var expired []*completion.Completion
	r.timeouts.RemoveMatching(
		func(c *completion.Completion) bool {
			op := c.Operation().(*timeoutOp)
			return !now.Before(op.deadline)
		},
		func(c *completion.Completion) {
			expired = append(expired, c)
		},
	)

	// The ready queue drains in FIFO order, so the whole expired batch
	// must be appended in deadline order: several deadlines can fall
	// inside one flush, and the list itself is kept in submission order.
	sort.SliceStable(expired, func(i, j int) bool {
		di := expired[i].Operation().(*timeoutOp).deadline
		dj := expired[j].Operation().(*timeoutOp).deadline
		return di.Before(dj)
	})
	for _, c := range expired {
		c.MarkQueued()
		r.completed.Add(c)
	}

	min := int64(-1)
	for cur := r.timeouts.Front(); cur != nil; cur = cur.Next() {
		op := cur.Operation().(*timeoutOp)
		remaining := op.deadline.Sub(now).Nanoseconds()
		if min < 0 || remaining < min {
			min = remaining
		}
	}
	if min < 0 {
		return 0, false
	}
	return min, true
}

// roundToMillisSaturating rounds ns to the nearest millisecond, half-up,
// and saturates to the largest timeout the kernel wait call accepts
// (never INFINITE).
func roundToMillisSaturating(ns int64) uint32 {
	if ns <= 0 {
		return 0
	}
	res := int64(timerResolution)
	ms := (ns + res/2) / res
	if ms > int64(maxWaitMillis) {
		return maxWaitMillis
	}
	return uint32(ms)
}
