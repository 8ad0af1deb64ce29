//go:build windows
// +build windows

// File: reactor/socket_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OpenSocket creates an overlapped socket and associates it with the
// reactor's completion port, disabling redundant completion-port and
// event notifications for inline successes.

package reactor

import (
	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/errs"
)

// OpenSocket creates a new overlapped socket of the given family,
// type, and protocol, associates it with r's completion port, and
// arms FILE_SKIP_COMPLETION_PORT_ON_SUCCESS and
// FILE_SKIP_SET_EVENT_ON_HANDLE so inline-succeeding operations on it
// are reported without waiting on a completion packet.
func (r *Reactor) OpenSocket(family, typ, proto int32) (windows.Handle, error) {
	sock, err := windows.WSASocket(family, typ, proto, nil, 0,
		windows.WSA_FLAG_OVERLAPPED|windows.WSA_FLAG_NO_HANDLE_INHERIT)
	if err != nil {
		return windows.InvalidHandle, errs.New("open_socket", errs.KindSystemResources, err)
	}

	if _, err := windows.CreateIoCompletionPort(sock, r.iocp, 0, 0); err != nil {
		windows.Closesocket(sock)
		return windows.InvalidHandle, errs.New("open_socket", errs.KindSystemResources, err)
	}

	flags := uint8(windows.FILE_SKIP_COMPLETION_PORT_ON_SUCCESS | windows.FILE_SKIP_SET_EVENT_ON_HANDLE)
	if err := windows.SetFileCompletionNotificationModes(sock, flags); err != nil {
		windows.Closesocket(sock)
		return windows.InvalidHandle, errs.New("open_socket", errs.KindSystemResources, err)
	}

	return sock, nil
}
