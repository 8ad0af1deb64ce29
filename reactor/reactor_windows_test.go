//go:build windows
// +build windows

// File: reactor/reactor_windows_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"testing"
	"time"

	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/completion"
	"github.com/momentics/iocp-engine/errs"
)

func newTestReactor(t *testing.T) *Reactor {
	t.Helper()
	r, err := Init(InitOptions{Entries: 1})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(r.Deinit)
	return r
}

// TestZeroTimeoutFastPath covers S3: two zero-duration timers submitted
// in order both fire, in submission order, within one Tick.
func TestZeroTimeoutFastPath(t *testing.T) {
	r := newTestReactor(t)

	var order []int
	c1 := completion.New(nil)
	c2 := completion.New(nil)
	r.SubmitTimeout(nil, func(any) { order = append(order, 1) }, c1, 0)
	r.SubmitTimeout(nil, func(any) { order = append(order, 2) }, c2, 0)

	if err := r.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("want [1 2], got %v", order)
	}
}

// TestTimerOrdering covers S2: timers fire in deadline order regardless
// of submission order. All three deadlines are allowed to pass before a
// single Tick, so the whole batch expires within one flush — the case
// where submission order and deadline order disagree.
func TestTimerOrdering(t *testing.T) {
	r := newTestReactor(t)

	var order []string
	fire := func(name string) func(any) {
		return func(any) { order = append(order, name) }
	}

	c1, c2, c3 := completion.New(nil), completion.New(nil), completion.New(nil)
	r.SubmitTimeout(nil, fire("T1"), c1, int64(5*time.Millisecond))
	r.SubmitTimeout(nil, fire("T2"), c2, int64(1*time.Millisecond))
	r.SubmitTimeout(nil, fire("T3"), c3, int64(3*time.Millisecond))

	time.Sleep(8 * time.Millisecond)
	if err := r.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(order) != 3 {
		t.Fatalf("want 3 fires in one tick, got %v", order)
	}
	want := []string{"T2", "T3", "T1"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("order[%d] = %s, want %s (full: %v)", i, order[i], name, order)
		}
	}
}

// TestTickAfterDeinit: the reactor rejects flush entry points once torn
// down rather than touching a closed completion port.
func TestTickAfterDeinit(t *testing.T) {
	r, err := Init(InitOptions{Entries: 1})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	r.Deinit()

	if err := r.Tick(); err != errs.ErrReactorClosed {
		t.Fatalf("Tick after Deinit = %v, want ErrReactorClosed", err)
	}
	if err := r.RunForNs(0); err != errs.ErrReactorClosed {
		t.Fatalf("RunForNs after Deinit = %v, want ErrReactorClosed", err)
	}
}

// TestRunForNsBound covers S4: RunForNs(10ms) returns after at least
// 10ms with no other submitted work.
func TestRunForNsBound(t *testing.T) {
	r := newTestReactor(t)

	start := time.Now()
	if err := r.RunForNs(int64(10 * time.Millisecond)); err != nil {
		t.Fatalf("RunForNs: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 10*time.Millisecond {
		t.Fatalf("RunForNs returned early after %v", elapsed)
	}
}

// TestCallbackFiresExactlyOnce covers testable property 1 for the
// timer path: one submission, exactly one callback invocation.
func TestCallbackFiresExactlyOnce(t *testing.T) {
	r := newTestReactor(t)

	calls := 0
	c := completion.New(nil)
	r.SubmitTimeout(nil, func(any) { calls++ }, c, 0)

	for i := 0; i < 3; i++ {
		if err := r.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("want 1 call, got %d", calls)
	}
}

// TestTCPEchoRoundTrip covers S1: accept/connect/send/recv round trip
// a 4-byte payload over a loopback TCP connection.
func TestTCPEchoRoundTrip(t *testing.T) {
	r := newTestReactor(t)

	listener, err := r.OpenSocket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		t.Fatalf("OpenSocket(listener): %v", err)
	}
	defer windows.Closesocket(listener)

	if err := windows.Bind(listener, &windows.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := windows.Listen(listener, 1); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	boundAddr, err := windows.Getsockname(listener)
	if err != nil {
		t.Fatalf("Getsockname: %v", err)
	}
	inet4, ok := boundAddr.(*windows.SockaddrInet4)
	if !ok {
		t.Fatalf("unexpected sockaddr type %T", boundAddr)
	}

	client, err := r.OpenSocket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		t.Fatalf("OpenSocket(client): %v", err)
	}
	defer windows.Closesocket(client)

	var acceptedSock windows.Handle
	var acceptErr, connectErr error
	acceptDone, connectDone := false, false

	acceptC := completion.New(nil)
	r.SubmitAccept(nil, func(_ any, sock windows.Handle, err error) {
		acceptedSock = sock
		acceptErr = err
		acceptDone = true
	}, acceptC, listener)

	connectC := completion.New(nil)
	r.SubmitConnect(nil, func(_ any, err error) {
		connectErr = err
		connectDone = true
	}, connectC, client, &windows.SockaddrInet4{Port: inet4.Port, Addr: inet4.Addr})

	deadline := time.Now().Add(2 * time.Second)
	for (!acceptDone || !connectDone) && time.Now().Before(deadline) {
		if err := r.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if !acceptDone || !connectDone {
		t.Fatalf("accept/connect did not complete in time")
	}
	if acceptErr != nil {
		t.Fatalf("accept error: %v", acceptErr)
	}
	if connectErr != nil {
		t.Fatalf("connect error: %v", connectErr)
	}
	defer windows.Closesocket(acceptedSock)

	sendN, recvN := -1, -1
	var sendErr, recvErr error
	sendDone, recvDone := false, false

	sendC := completion.New(nil)
	r.SubmitSend(nil, func(_ any, n int, err error) {
		sendN, sendErr, sendDone = n, err, true
	}, sendC, client, []byte("ping"))

	recvBuf := make([]byte, 4)
	recvC := completion.New(nil)
	r.SubmitRecv(nil, func(_ any, n int, err error) {
		recvN, recvErr, recvDone = n, err, true
	}, recvC, acceptedSock, recvBuf)

	deadline = time.Now().Add(2 * time.Second)
	for (!sendDone || !recvDone) && time.Now().Before(deadline) {
		if err := r.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if !sendDone || !recvDone {
		t.Fatalf("send/recv did not complete in time")
	}
	if sendErr != nil {
		t.Fatalf("send error: %v", sendErr)
	}
	if recvErr != nil {
		t.Fatalf("recv error: %v", recvErr)
	}
	if sendN != 4 {
		t.Fatalf("send n = %d, want 4", sendN)
	}
	if recvN != 4 || string(recvBuf) != "ping" {
		t.Fatalf("recv = %q (n=%d), want %q", recvBuf[:recvN], recvN, "ping")
	}
}

// TestAcceptFailureCleanup covers S6: closing the listener after submit
// but before the kernel completes the accept must not leak the
// internally created client socket, and the callback must observe a
// mapped error rather than success.
func TestAcceptFailureCleanup(t *testing.T) {
	r := newTestReactor(t)

	listener, err := r.OpenSocket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		t.Fatalf("OpenSocket: %v", err)
	}
	if err := windows.Bind(listener, &windows.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := windows.Listen(listener, 1); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	var gotErr error
	var gotSock windows.Handle
	done := false

	c := completion.New(nil)
	r.SubmitAccept(nil, func(_ any, sock windows.Handle, err error) {
		gotSock, gotErr, done = sock, err, true
	}, c, listener)

	windows.Closesocket(listener)

	deadline := time.Now().Add(2 * time.Second)
	for !done && time.Now().Before(deadline) {
		if err := r.Tick(); err != nil {
			break
		}
	}
	if !done {
		t.Fatalf("accept callback never fired after listener close")
	}
	if gotErr == nil {
		t.Fatalf("want a mapped error after listener close, got success (sock=%v)", gotSock)
	}
	if gotSock != windows.InvalidHandle {
		t.Fatalf("want InvalidHandle on failure, got %v", gotSock)
	}
}
