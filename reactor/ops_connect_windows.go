//go:build windows
// +build windows

// File: reactor/ops_connect_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// connect state machine: two states distinguished by the pending flag,
// using the ConnectEx extension function resolved once per reactor and
// cached thereafter.

package reactor

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/completion"
	"github.com/momentics/iocp-engine/errs"
)

// connectOp carries the state for one in-flight ConnectEx call. raw
// holds the address bytes ConnectEx reads from asynchronously — it
// must outlive the syscall, not just the call that issues it, so it is
// kept here rather than on the stack.
type connectOp struct {
	socket  windows.Handle
	addr    *windows.SockaddrInet4
	raw     windows.RawSockaddrInet4
	ov      windows.Overlapped
	pending bool
}

func (*connectOp) isOperation() {}

// SubmitConnect connects sock (unbound, associated with r) to addr.
func (r *Reactor) SubmitConnect(ctx any, cb func(ctx any, err error), c *completion.Completion, sock windows.Handle, addr *windows.SockaddrInet4) {
	c.Ctx = ctx
	op := &connectOp{socket: sock, addr: addr}
	c.SetOperation(op)
	submit(r, c,
		func() (bool, error) { return r.doConnect(c, op) },
		func(err error) { cb(c.Ctx, err) },
	)
}

// resolveConnectEx resolves and caches the ConnectEx extension function
// pointer for sock's protocol via WSAIoctl(SIO_GET_EXTENSION_FUNCTION_POINTER).
func (r *Reactor) resolveConnectEx(sock windows.Handle) (uintptr, error) {
	if r.connectExFn != 0 {
		return r.connectExFn, nil
	}
	var fn uintptr
	var bytesReturned uint32
	err := windows.WSAIoctl(
		sock,
		windows.SIO_GET_EXTENSION_FUNCTION_POINTER,
		(*byte)(unsafe.Pointer(&wsaidConnectEx)),
		uint32(unsafe.Sizeof(wsaidConnectEx)),
		(*byte)(unsafe.Pointer(&fn)),
		uint32(unsafe.Sizeof(fn)),
		&bytesReturned,
		nil,
		0,
	)
	if err != nil {
		return 0, err
	}
	r.connectExFn = fn
	return fn, nil
}

func (r *Reactor) doConnect(c *completion.Completion, op *connectOp) (bool, error) {
	if !op.pending {
		// ConnectEx requires the socket be bound first.
		if err := windows.Bind(op.socket, &windows.SockaddrInet4{}); err != nil {
			return false, errs.New("connect", errs.KindAddressNotAvailable, err)
		}

		fn, err := r.resolveConnectEx(op.socket)
		if err != nil {
			return false, errs.New("connect", errs.KindSystemResources, err)
		}

		if op.addr.Port < 0 || op.addr.Port > 0xFFFF {
			return false, errs.New("connect", errs.KindAddressFamilyNotSupported, nil)
		}
		op.raw = windows.RawSockaddrInet4{
			Family: windows.AF_INET,
			Addr:   op.addr.Addr,
		}
		op.raw.Port = uint16(op.addr.Port)<<8 | uint16(op.addr.Port)>>8
		sa := unsafe.Pointer(&op.raw)
		saLen := int32(unsafe.Sizeof(op.raw))

		op.ov = windows.Overlapped{}
		r.overlapped[&op.ov] = c
		op.pending = true

		ret, _, callErr := syscall.SyscallN(fn,
			uintptr(op.socket), uintptr(sa), uintptr(saLen), 0, 0, 0, uintptr(unsafe.Pointer(&op.ov)))
		if ret == 0 {
			if callErr == windows.ERROR_IO_PENDING {
				return true, nil
			}
			delete(r.overlapped, &op.ov)
			op.pending = false
			return false, mapConnectError(callErr)
		}
		delete(r.overlapped, &op.ov)
		return r.finishConnect(op)
	}

	var transferred uint32
	err := windows.GetOverlappedResult(op.socket, &op.ov, &transferred, false)
	if err != nil {
		return false, mapConnectError(err)
	}
	return r.finishConnect(op)
}

func (r *Reactor) finishConnect(op *connectOp) (bool, error) {
	if err := windows.Setsockopt(op.socket, windows.SOL_SOCKET, windows.SO_UPDATE_CONNECT_CONTEXT, nil, 0); err != nil {
		return false, errs.New("connect", errs.KindSystemResources, err)
	}
	return false, nil
}
