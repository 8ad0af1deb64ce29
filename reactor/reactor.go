// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import "time"

// InitOptions carries the hint values accepted by Init. Both fields are
// advisory on this backend: entries sizes the IOCP's concurrency hint,
// flags is reserved for future backend-specific tuning.
type InitOptions struct {
	Entries uint32
	Flags   uint32
}

const (
	// maxHarvestPerFlush bounds how many IOCP entries a single flush
	// will drain before invoking callbacks.
	maxHarvestPerFlush = 64

	// timerResolution is the granularity flush rounds timer deadlines
	// to when computing the IOCP wait timeout.
	timerResolution = time.Millisecond

	// maxWaitMillis is the largest timeout, in milliseconds, flush will
	// ever pass to the kernel wait call. DWORD_MAX would mean INFINITE;
	// this engine never blocks unboundedly on a timer-driven wait.
	maxWaitMillis = 0xFFFFFFFF - 1
)
