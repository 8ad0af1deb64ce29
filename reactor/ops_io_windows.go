//go:build windows
// +build windows

// File: reactor/ops_io_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// read/write/close: synchronous-in-backend positional I/O and a
// socket-vs-handle-aware close. All three complete inline
// during the submit flush — none increment ioPending.

package reactor

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/completion"
)

// readOp carries the state for one positional read.
type readOp struct {
	fd     windows.Handle
	buf    []byte
	offset int64
	n      int
}

func (*readOp) isOperation() {}

// SubmitRead reads into buf from fd at the given offset.
func (r *Reactor) SubmitRead(ctx any, cb func(ctx any, n int, err error), c *completion.Completion, fd windows.Handle, buf []byte, offset int64) {
	c.Ctx = ctx
	op := &readOp{fd: fd, buf: buf, offset: offset}
	c.SetOperation(op)
	submit(r, c,
		func() (bool, error) { return false, r.doRead(op) },
		func(err error) { cb(c.Ctx, op.n, err) },
	)
}

func (r *Reactor) doRead(op *readOp) error {
	if len(op.buf) == 0 {
		return nil
	}
	var newPos int64
	if err := windows.SetFilePointerEx(op.fd, op.offset, &newPos, windows.FILE_BEGIN); err != nil {
		return mapReadError(err)
	}
	var done uint32
	err := windows.ReadFile(op.fd, op.buf, &done, nil)
	op.n = int(done)
	if err != nil {
		if err == windows.ERROR_HANDLE_EOF {
			return nil
		}
		return mapReadError(err)
	}
	return nil
}

// writeOp carries the state for one positional write.
type writeOp struct {
	fd     windows.Handle
	buf    []byte
	offset int64
	n      int
}

func (*writeOp) isOperation() {}

// SubmitWrite writes buf to fd at the given offset.
func (r *Reactor) SubmitWrite(ctx any, cb func(ctx any, n int, err error), c *completion.Completion, fd windows.Handle, buf []byte, offset int64) {
	c.Ctx = ctx
	op := &writeOp{fd: fd, buf: buf, offset: offset}
	c.SetOperation(op)
	submit(r, c,
		func() (bool, error) { return false, r.doWrite(op) },
		func(err error) { cb(c.Ctx, op.n, err) },
	)
}

func (r *Reactor) doWrite(op *writeOp) error {
	if len(op.buf) == 0 {
		return nil
	}
	var newPos int64
	if err := windows.SetFilePointerEx(op.fd, op.offset, &newPos, windows.FILE_BEGIN); err != nil {
		return mapWriteError(err)
	}
	var done uint32
	if err := windows.WriteFile(op.fd, op.buf, &done, nil); err != nil {
		op.n = int(done)
		return mapWriteError(err)
	}
	op.n = int(done)
	return nil
}

// soError is SO_ERROR (winsock2.h), not exposed by x/sys/windows.
const soError = 0x1007

// closeOp carries the fd being closed.
type closeOp struct {
	fd windows.Handle
}

func (*closeOp) isOperation() {}

// SubmitClose closes fd, which may be either a socket or a kernel
// handle — the two require different close syscalls on Windows.
func (r *Reactor) SubmitClose(ctx any, cb func(ctx any, err error), c *completion.Completion, fd windows.Handle) {
	c.Ctx = ctx
	op := &closeOp{fd: fd}
	c.SetOperation(op)
	submit(r, c,
		func() (bool, error) { return false, r.doClose(op) },
		func(err error) { cb(c.Ctx, err) },
	)
}

func (r *Reactor) doClose(op *closeOp) error {
	var optval int32
	optlen := int32(unsafe.Sizeof(optval))
	err := windows.Getsockopt(op.fd, windows.SOL_SOCKET, soError, (*byte)(unsafe.Pointer(&optval)), &optlen)

	if err != windows.WSAENOTSOCK {
		if cerr := windows.Closesocket(op.fd); cerr != nil {
			return mapCloseError(cerr)
		}
		return nil
	}
	if cerr := windows.CloseHandle(op.fd); cerr != nil {
		return mapCloseError(cerr)
	}
	return nil
}
