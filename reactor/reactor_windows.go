//go:build windows
// +build windows

// File: reactor/reactor_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows IOCP reactor: owns the completion port, the ready/timers
// queues, and the flush cycle that harvests kernel completions and
// timer expirations into one ordered invocation pass.

package reactor

import (
	"syscall"
	"time"

	"github.com/eapache/queue"
	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/completion"
	"github.com/momentics/iocp-engine/errs"
)

// Reactor is the process-wide IOCP-backed engine instance. It is not
// safe for concurrent use from multiple goroutines — every Submit*,
// Tick, and RunForNs call, and every callback invocation, must happen
// on one goroutine.
type Reactor struct {
	iocp windows.Handle

	ioPending int
	timeouts  completion.List
	completed *queue.Queue

	// overlapped recovers the owning Completion from the kernel-returned
	// *windows.Overlapped pointer — the portable replacement for
	// field-of-parent pointer arithmetic.
	overlapped map[*windows.Overlapped]*completion.Completion

	// connectExFn is the ConnectEx extension function pointer, resolved
	// lazily on first Connect submission and cached thereafter.
	connectExFn uintptr

	closed bool
}

var (
	modMswsock   = windows.NewLazySystemDLL("mswsock.dll")
	procAcceptEx = modMswsock.NewProc("AcceptEx")
)

// wsaidConnectEx is the GUID identifying the ConnectEx extension
// function, passed to WSAIoctl(SIO_GET_EXTENSION_FUNCTION_POINTER).
var wsaidConnectEx = windows.GUID{
	Data1: 0x25a207b9,
	Data2: 0xddf3,
	Data3: 0x4660,
	Data4: [8]byte{0x8e, 0xe9, 0x76, 0xe5, 0x8c, 0x74, 0x06, 0x3e},
}

// Init initializes Winsock 2.2 and creates an IOCP. entries/flags are
// hint values on this backend (see InitOptions). On failure Winsock is
// torn back down before the error is returned.
func Init(opts InitOptions) (*Reactor, error) {
	var wsaData windows.WSAData
	if err := windows.WSAStartup(0x0202, &wsaData); err != nil {
		return nil, errs.New("init", errs.KindSystemResources, err)
	}

	iocp, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, opts.Entries)
	if err != nil {
		_ = windows.WSACleanup()
		return nil, errs.New("init", errs.KindSystemResources, err)
	}

	return &Reactor{
		iocp:       iocp,
		completed:  queue.New(),
		overlapped: make(map[*windows.Overlapped]*completion.Completion),
	}, nil
}

// Deinit closes the IOCP and tears down Winsock. Must not be called
// while any submitted Completion is outstanding.
func (r *Reactor) Deinit() {
	if r.closed {
		return
	}
	r.closed = true
	_ = windows.CloseHandle(r.iocp)
	r.iocp = windows.InvalidHandle
	_ = windows.WSACleanup()
}

// Tick performs one non-blocking flush cycle. Returns
// errs.ErrReactorClosed after Deinit.
func (r *Reactor) Tick() error {
	if r.closed {
		return errs.ErrReactorClosed
	}
	return r.flush(false)
}

// RunForNs blocks in flush cycles until ns nanoseconds have elapsed,
// returning promptly thereafter. It submits an internal timer and loops
// blocking flushes until that timer's callback observes the deadline.
// Returns errs.ErrReactorClosed after Deinit.
func (r *Reactor) RunForNs(ns int64) error {
	if r.closed {
		return errs.ErrReactorClosed
	}
	done := false
	c := completion.New(nil)
	r.SubmitTimeout(nil, func(any) { done = true }, c, ns)

	for !done {
		if err := r.flush(true); err != nil {
			return err
		}
	}
	return nil
}

// flush runs one cycle of the algorithm: harvest expired
// timers, optionally block on the IOCP for the nearest deadline, then
// snapshot-and-invoke every ready Completion.
func (r *Reactor) flush(blocking bool) error {
	var minRemaining int64
	haveTimer := false

	if r.completed.Length() == 0 {
		minRemaining, haveTimer = r.flushTimeouts(time.Now())
	}

	var timeoutMs uint32
	if haveTimer {
		timeoutMs = roundToMillisSaturating(minRemaining)
	}

	// The wait happens whenever something can still arrive: kernel
	// completions if ioPending > 0, or a timer deadline in blocking
	// mode — a timer-only RunForNs must sleep in the kernel wait, not
	// spin through empty flushes.
	if r.completed.Length() == 0 && (r.ioPending > 0 || blocking) {
		if blocking && !haveTimer {
			return errs.ErrUnboundedBlockingWait
		}
		wait := uint32(0)
		if blocking {
			wait = timeoutMs
		}
		if err := r.harvest(wait); err != nil {
			return err
		}
	}

	local := r.completed
	r.completed = queue.New()

	for local.Length() > 0 {
		c := local.Remove().(*completion.Completion)
		c.Invoke()
	}
	return nil
}

// harvest drains up to maxHarvestPerFlush IOCP entries, translating each
// completed overlapped back to its owning Completion and appending it
// to the ready queue. A WAIT_TIMEOUT return is treated as zero entries.
func (r *Reactor) harvest(firstWaitMs uint32) error {
	for n := 0; n < maxHarvestPerFlush; n++ {
		wait := uint32(0)
		if n == 0 {
			wait = firstWaitMs
		}

		var bytes uint32
		var key uintptr
		var ov *windows.Overlapped
		err := windows.GetQueuedCompletionStatus(r.iocp, &bytes, &key, &ov, wait)
		if ov == nil {
			if errno, ok := err.(syscall.Errno); ok && errno == windows.WAIT_TIMEOUT {
				return nil
			}
			if err != nil {
				return errs.New("flush", errs.KindSystemResources, err)
			}
			return nil
		}

		c, ok := r.overlapped[ov]
		if !ok {
			// Not one of ours; should not happen, but don't wedge the loop.
			continue
		}
		delete(r.overlapped, ov)
		r.ioPending--
		c.MarkQueued()
		r.completed.Add(c)
	}
	return nil
}

// submit builds the Completion's step function as a thin wrapper over
// driver: driver attempts the op and returns (pending, err). pending
// means "now kernel-pending, defer to the IOCP"; err == nil and
// pending == false means the op's terminal result has already been
// written into c by driver and deliver should be invoked.
func submit(r *Reactor, c *completion.Completion, driver func() (pending bool, err error), deliver func(err error)) {
	completion.BindCallback(c, func(c *completion.Completion) {
		pending, err := driver()
		if pending {
			c.MarkKernelPending()
			r.ioPending++
			return
		}
		deliver(err)
	})
	c.MarkQueued()
	r.completed.Add(c)
}
