//go:build windows
// +build windows

// File: reactor/winerr_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Maps Winsock/Win32 errno values onto the closed per-operation Kind
// taxonomy. Each function takes the raw error returned by a
// syscall package call and returns an *errs.Error ready to hand to a
// user callback.

package reactor

import (
	"errors"

	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/errs"
)

func mapAcceptError(err error) *errs.Error {
	switch {
	case errors.Is(err, windows.WSAECONNABORTED):
		return errs.New("accept", errs.KindConnectionAborted, err)
	case errors.Is(err, windows.WSAENOTSOCK):
		return errs.New("accept", errs.KindFileDescriptorNotASocket, err)
	case errors.Is(err, windows.WSAEOPNOTSUPP):
		return errs.New("accept", errs.KindOperationNotSupported, err)
	case errors.Is(err, windows.WSAENOBUFS), errors.Is(err, windows.WSAEMFILE):
		return errs.New("accept", errs.KindSystemResources, err)
	default:
		return errs.New("accept", errs.KindUnexpected, err)
	}
}

func mapConnectError(err error) *errs.Error {
	switch {
	case errors.Is(err, windows.WSAEADDRNOTAVAIL):
		return errs.New("connect", errs.KindAddressNotAvailable, err)
	case errors.Is(err, windows.WSAEAFNOSUPPORT):
		return errs.New("connect", errs.KindAddressFamilyNotSupported, err)
	case errors.Is(err, windows.WSAECONNREFUSED):
		return errs.New("connect", errs.KindConnectionRefused, err)
	case errors.Is(err, windows.WSAENETUNREACH), errors.Is(err, windows.WSAEHOSTUNREACH):
		return errs.New("connect", errs.KindNetworkUnreachable, err)
	case errors.Is(err, windows.WSAETIMEDOUT):
		return errs.New("connect", errs.KindConnectionTimedOut, err)
	case errors.Is(err, windows.WSAENOTSOCK):
		return errs.New("connect", errs.KindFileDescriptorNotASocket, err)
	case errors.Is(err, windows.WSAENOBUFS):
		return errs.New("connect", errs.KindSystemResources, err)
	default:
		return errs.New("connect", errs.KindUnexpected, err)
	}
}

func mapSendError(err error) *errs.Error {
	switch {
	case errors.Is(err, windows.WSAECONNRESET):
		return errs.New("send", errs.KindConnectionResetByPeer, err)
	case errors.Is(err, windows.WSAEMSGSIZE):
		return errs.New("send", errs.KindMessageTooBig, err)
	case errors.Is(err, windows.WSAENETDOWN), errors.Is(err, windows.WSAENETRESET):
		return errs.New("send", errs.KindNetworkSubsystemFailed, err)
	case errors.Is(err, windows.WSAENOBUFS):
		return errs.New("send", errs.KindSystemResources, err)
	case errors.Is(err, windows.WSAENOTSOCK):
		return errs.New("send", errs.KindFileDescriptorNotASocket, err)
	case errors.Is(err, windows.WSAESHUTDOWN):
		return errs.New("send", errs.KindBrokenPipe, err)
	default:
		return errs.New("send", errs.KindUnexpected, err)
	}
}

// mapRecvError preserves two deliberate choices on ambiguous kernel
// codes: WSAETIMEDOUT and WSAECONNABORTED
// both surface as ConnectionRefused, and WSAESHUTDOWN surfaces as
// SocketNotConnected, rather than inventing new kinds for them.
func mapRecvError(err error) *errs.Error {
	switch {
	case errors.Is(err, windows.WSAETIMEDOUT), errors.Is(err, windows.WSAECONNABORTED):
		return errs.New("recv", errs.KindConnectionRefused, err)
	case errors.Is(err, windows.WSAECONNRESET):
		return errs.New("recv", errs.KindConnectionResetByPeer, err)
	case errors.Is(err, windows.WSAEMSGSIZE):
		return errs.New("recv", errs.KindMessageTooBig, err)
	case errors.Is(err, windows.WSAENETDOWN), errors.Is(err, windows.WSAENETRESET):
		return errs.New("recv", errs.KindNetworkSubsystemFailed, err)
	case errors.Is(err, windows.WSAESHUTDOWN):
		return errs.New("recv", errs.KindSocketNotConnected, err)
	case errors.Is(err, windows.WSAENOBUFS):
		return errs.New("recv", errs.KindSystemResources, err)
	default:
		return errs.New("recv", errs.KindUnexpected, err)
	}
}

func mapReadError(err error) *errs.Error {
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return errs.New("read", errs.KindNotOpenForReading, err)
	case errors.Is(err, windows.WSAECONNRESET):
		return errs.New("read", errs.KindConnectionResetByPeer, err)
	case errors.Is(err, windows.ERROR_OFFSET_ALIGNMENT_VIOLATION):
		return errs.New("read", errs.KindAlignment, err)
	case errors.Is(err, windows.ERROR_IO_DEVICE):
		return errs.New("read", errs.KindInputOutput, err)
	case errors.Is(err, windows.ERROR_DIRECTORY_NOT_SUPPORTED), errors.Is(err, windows.ERROR_DIRECTORY):
		return errs.New("read", errs.KindIsDir, err)
	case errors.Is(err, windows.ERROR_NEGATIVE_SEEK), errors.Is(err, windows.ERROR_SEEK):
		return errs.New("read", errs.KindUnseekable, err)
	case errors.Is(err, windows.ERROR_SEM_TIMEOUT):
		return errs.New("read", errs.KindConnectionTimedOut, err)
	case errors.Is(err, windows.ERROR_NOT_ENOUGH_MEMORY), errors.Is(err, windows.ERROR_NO_SYSTEM_RESOURCES):
		return errs.New("read", errs.KindSystemResources, err)
	default:
		return errs.New("read", errs.KindUnexpected, err)
	}
}

// mapWriteError reuses most of the read-side kind set — the failure
// surface for a positional write overlaps the read surface — and adds
// the disk-full/disk-quota kinds, which close maps the same way.
func mapWriteError(err error) *errs.Error {
	switch {
	case errors.Is(err, windows.ERROR_DISK_FULL), errors.Is(err, windows.ERROR_HANDLE_DISK_FULL):
		return errs.New("write", errs.KindNoSpaceLeft, err)
	case errors.Is(err, windows.ERROR_DISK_QUOTA_EXCEEDED):
		return errs.New("write", errs.KindDiskQuota, err)
	case errors.Is(err, windows.WSAECONNRESET):
		return errs.New("write", errs.KindConnectionResetByPeer, err)
	case errors.Is(err, windows.ERROR_OFFSET_ALIGNMENT_VIOLATION):
		return errs.New("write", errs.KindAlignment, err)
	case errors.Is(err, windows.ERROR_IO_DEVICE):
		return errs.New("write", errs.KindInputOutput, err)
	case errors.Is(err, windows.ERROR_NEGATIVE_SEEK), errors.Is(err, windows.ERROR_SEEK):
		return errs.New("write", errs.KindUnseekable, err)
	case errors.Is(err, windows.ERROR_NOT_ENOUGH_MEMORY), errors.Is(err, windows.ERROR_NO_SYSTEM_RESOURCES):
		return errs.New("write", errs.KindSystemResources, err)
	default:
		return errs.New("write", errs.KindUnexpected, err)
	}
}

func mapCloseError(err error) *errs.Error {
	switch {
	case errors.Is(err, windows.ERROR_INVALID_HANDLE), errors.Is(err, windows.WSAENOTSOCK):
		return errs.New("close", errs.KindFileDescriptorInvalid, err)
	case errors.Is(err, windows.ERROR_DISK_QUOTA_EXCEEDED):
		return errs.New("close", errs.KindDiskQuota, err)
	case errors.Is(err, windows.ERROR_DISK_FULL), errors.Is(err, windows.ERROR_HANDLE_DISK_FULL):
		return errs.New("close", errs.KindNoSpaceLeft, err)
	case errors.Is(err, windows.ERROR_IO_DEVICE):
		return errs.New("close", errs.KindInputOutput, err)
	default:
		return errs.New("close", errs.KindUnexpected, err)
	}
}
