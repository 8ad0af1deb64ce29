//go:build windows
// +build windows

// File: reactor/ops_accept_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// accept state machine: two states distinguished by whether
// clientSocket is still windows.InvalidHandle.

package reactor

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/completion"
	"github.com/momentics/iocp-engine/errs"
)

// acceptOp carries the state for one in-flight AcceptEx call. addrBuf
// and bytesRecv are written by the kernel and must stay valid until
// the operation completes, so they live here rather than on the stack.
type acceptOp struct {
	listenSocket windows.Handle
	clientSocket windows.Handle
	addrBuf      [acceptAddrBufLen]byte
	bytesRecv    uint32
	ov           windows.Overlapped
}

func (*acceptOp) isOperation() {}

// SubmitAccept accepts one connection on listenSock, which must already
// be associated with r (via OpenSocket). cb receives the accepted
// socket on success.
func (r *Reactor) SubmitAccept(ctx any, cb func(ctx any, sock windows.Handle, err error), c *completion.Completion, listenSock windows.Handle) {
	c.Ctx = ctx
	op := &acceptOp{listenSocket: listenSock, clientSocket: windows.InvalidHandle}
	c.SetOperation(op)
	submit(r, c,
		func() (bool, error) { return r.doAccept(c, op) },
		func(err error) { cb(c.Ctx, op.clientSocket, err) },
	)
}

func (r *Reactor) doAccept(c *completion.Completion, op *acceptOp) (bool, error) {
	if op.clientSocket == windows.InvalidHandle {
		sock, err := r.OpenSocket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
		if err != nil {
			return false, errs.New("accept", errs.KindSystemResources, err)
		}
		op.clientSocket = sock
		op.ov = windows.Overlapped{}
		r.overlapped[&op.ov] = c

		ret, _, callErr := procAcceptEx.Call(
			uintptr(op.listenSocket),
			uintptr(op.clientSocket),
			uintptr(unsafe.Pointer(&op.addrBuf[0])),
			0,
			uintptr(sockAddrSize),
			uintptr(sockAddrSize),
			uintptr(unsafe.Pointer(&op.bytesRecv)),
			uintptr(unsafe.Pointer(&op.ov)),
		)
		if ret == 0 {
			if callErr == windows.ERROR_IO_PENDING {
				// Leave clientSocket set so the next entry queries the result.
				return true, nil
			}
			delete(r.overlapped, &op.ov)
			windows.Closesocket(op.clientSocket)
			op.clientSocket = windows.InvalidHandle
			return false, mapAcceptError(callErr)
		}
		delete(r.overlapped, &op.ov)
		return r.finishAccept(op)
	}

	var transferred uint32
	err := windows.GetOverlappedResult(op.listenSocket, &op.ov, &transferred, false)
	if err != nil {
		windows.Closesocket(op.clientSocket)
		op.clientSocket = windows.InvalidHandle
		return false, mapAcceptError(err)
	}
	return r.finishAccept(op)
}

// finishAccept applies SO_UPDATE_ACCEPT_CONTEXT so the accepted socket
// inherits the listen socket's properties.
func (r *Reactor) finishAccept(op *acceptOp) (bool, error) {
	listener := op.listenSocket
	err := windows.Setsockopt(
		op.clientSocket,
		windows.SOL_SOCKET,
		windows.SO_UPDATE_ACCEPT_CONTEXT,
		(*byte)(unsafe.Pointer(&listener)),
		int32(unsafe.Sizeof(listener)),
	)
	if err != nil {
		windows.Closesocket(op.clientSocket)
		op.clientSocket = windows.InvalidHandle
		return false, errs.New("accept", errs.KindSetSockOptError, err)
	}
	return false, nil
}
