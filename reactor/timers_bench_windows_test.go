//go:build windows
// +build windows

// File: reactor/timers_bench_windows_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"testing"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/iocp-engine/completion"
)

// BenchmarkFlushTimeoutsSurvivors measures one timer-wheel scan where
// every deadline is still in the future, the common case for a flush.
func BenchmarkFlushTimeoutsSurvivors(b *testing.B) {
	const outstanding = 64

	r := &Reactor{completed: queue.New()}
	deadline := time.Now().Add(time.Hour)
	for i := 0; i < outstanding; i++ {
		c := completion.New(nil)
		c.SetOperation(&timeoutOp{deadline: deadline})
		c.MarkTimerWait()
		r.timeouts.PushBack(c)
	}

	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.flushTimeouts(now)
	}
}
