//go:build windows
// +build windows

// File: reactor/ops_sendrecv_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// send/recv state machine: same two-state pattern as connect, using
// WSASend/WSARecv on a single buffer.

package reactor

import (
	"math"

	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/completion"
)

// bufferLimit caps a buffer's length to the u32 WSABuf.Len can carry.
func bufferLimit(n int) uint32 {
	if uint64(n) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

func bufPtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

// sendOp carries the state for one in-flight WSASend call.
type sendOp struct {
	socket  windows.Handle
	buf     []byte
	n       int
	ov      windows.Overlapped
	pending bool
}

func (*sendOp) isOperation() {}

// SubmitSend sends buf on the connected socket sock.
func (r *Reactor) SubmitSend(ctx any, cb func(ctx any, n int, err error), c *completion.Completion, sock windows.Handle, buf []byte) {
	c.Ctx = ctx
	op := &sendOp{socket: sock, buf: buf}
	c.SetOperation(op)
	submit(r, c,
		func() (bool, error) { return r.doSend(c, op) },
		func(err error) { cb(c.Ctx, op.n, err) },
	)
}

func (r *Reactor) doSend(c *completion.Completion, op *sendOp) (bool, error) {
	if !op.pending {
		op.ov = windows.Overlapped{}
		r.overlapped[&op.ov] = c

		wsabuf := windows.WSABuf{Len: bufferLimit(len(op.buf)), Buf: bufPtr(op.buf)}
		var sent uint32
		err := windows.WSASend(op.socket, &wsabuf, 1, &sent, 0, &op.ov, nil)
		if err != nil {
			if err == windows.ERROR_IO_PENDING {
				op.pending = true
				return true, nil
			}
			delete(r.overlapped, &op.ov)
			return false, mapSendError(err)
		}
		// FILE_SKIP_COMPLETION_PORT_ON_SUCCESS: no completion packet will
		// follow an inline success, so report it now.
		delete(r.overlapped, &op.ov)
		op.n = int(sent)
		return false, nil
	}

	var transferred uint32
	err := windows.GetOverlappedResult(op.socket, &op.ov, &transferred, false)
	if err != nil {
		return false, mapSendError(err)
	}
	op.n = int(transferred)
	return false, nil
}

// recvOp carries the state for one in-flight WSARecv call.
type recvOp struct {
	socket  windows.Handle
	buf     []byte
	n       int
	ov      windows.Overlapped
	pending bool
}

func (*recvOp) isOperation() {}

// SubmitRecv receives into buf from the connected socket sock.
func (r *Reactor) SubmitRecv(ctx any, cb func(ctx any, n int, err error), c *completion.Completion, sock windows.Handle, buf []byte) {
	c.Ctx = ctx
	op := &recvOp{socket: sock, buf: buf}
	c.SetOperation(op)
	submit(r, c,
		func() (bool, error) { return r.doRecv(c, op) },
		func(err error) { cb(c.Ctx, op.n, err) },
	)
}

func (r *Reactor) doRecv(c *completion.Completion, op *recvOp) (bool, error) {
	if !op.pending {
		op.ov = windows.Overlapped{}
		r.overlapped[&op.ov] = c

		wsabuf := windows.WSABuf{Len: bufferLimit(len(op.buf)), Buf: bufPtr(op.buf)}
		var received, flags uint32
		err := windows.WSARecv(op.socket, &wsabuf, 1, &received, &flags, &op.ov, nil)
		if err != nil {
			if err == windows.ERROR_IO_PENDING {
				op.pending = true
				return true, nil
			}
			delete(r.overlapped, &op.ov)
			return false, mapRecvError(err)
		}
		delete(r.overlapped, &op.ov)
		op.n = int(received)
		return false, nil
	}

	var transferred uint32
	err := windows.GetOverlappedResult(op.socket, &op.ov, &transferred, false)
	if err != nil {
		return false, mapRecvError(err)
	}
	op.n = int(transferred)
	return false, nil
}
