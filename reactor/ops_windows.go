//go:build windows
// +build windows

// File: reactor/ops_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared plumbing for the per-operation state machines: the closed
// operation-variant marker interface and the AcceptEx dual-address
// buffer sizing constant.

package reactor

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// operation is the marker interface implemented by every op payload
// stored in a Completion, closing the set of operation variants to the
// ones defined in this package. Each Submit* entry point's closures
// already know their own op's concrete type, so operation carries no
// methods beyond the marker itself.
type operation interface {
	isOperation()
}

// sockAddrSize is the size of a single sockaddr_in/sockaddr_in6-class
// address as AcceptEx expects it: sizeof(SOCKADDR_STORAGE equivalent)
// plus the 16-byte padding AcceptEx requires per address slot.
const sockAddrSize = int(unsafe.Sizeof(windows.RawSockaddrAny{})) + 16

// acceptAddrBufLen is the total dual-address buffer length AcceptEx
// requires: one slot for the local address, one for the remote.
const acceptAddrBufLen = 2 * sockAddrSize
