// Package errs defines the typed error taxonomy surfaced to callback
// consumers of package reactor. Each operation family (accept, connect,
// send, recv, read, write, close, timeout) maps OS-level failures onto a
// small closed set of Kind values rather than leaking Winsock error
// numbers.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package errs

import (
	"fmt"
	"os"
)

// Kind is the closed set of abstract error kinds an operation callback
// can observe. KindWouldBlock is never handed to a user callback: package
// reactor's dispatch wrapper signals a kernel-pending operation with a
// separate pending flag, and no mapping function produces this kind.
type Kind int

const (
	KindWouldBlock Kind = iota

	KindConnectionAborted
	KindFileDescriptorNotASocket
	KindOperationNotSupported
	KindSetSockOptError

	KindAddressNotAvailable
	KindAddressFamilyNotSupported
	KindConnectionRefused
	KindNetworkUnreachable
	KindConnectionTimedOut

	KindConnectionResetByPeer
	KindMessageTooBig
	KindNetworkSubsystemFailed
	KindBrokenPipe
	KindSocketNotConnected

	KindNotOpenForReading
	KindAlignment
	KindInputOutput
	KindIsDir
	KindUnseekable

	KindFileDescriptorInvalid
	KindDiskQuota
	KindNoSpaceLeft

	KindSystemResources
	KindCanceled
	KindUnexpected
)

// String renders the kind for diagnostics and error messages.
func (k Kind) String() string {
	switch k {
	case KindWouldBlock:
		return "would_block"
	case KindConnectionAborted:
		return "connection_aborted"
	case KindFileDescriptorNotASocket:
		return "file_descriptor_not_a_socket"
	case KindOperationNotSupported:
		return "operation_not_supported"
	case KindSetSockOptError:
		return "set_sock_opt_error"
	case KindAddressNotAvailable:
		return "address_not_available"
	case KindAddressFamilyNotSupported:
		return "address_family_not_supported"
	case KindConnectionRefused:
		return "connection_refused"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindConnectionTimedOut:
		return "connection_timed_out"
	case KindConnectionResetByPeer:
		return "connection_reset_by_peer"
	case KindMessageTooBig:
		return "message_too_big"
	case KindNetworkSubsystemFailed:
		return "network_subsystem_failed"
	case KindBrokenPipe:
		return "broken_pipe"
	case KindSocketNotConnected:
		return "socket_not_connected"
	case KindNotOpenForReading:
		return "not_open_for_reading"
	case KindAlignment:
		return "alignment"
	case KindInputOutput:
		return "input_output"
	case KindIsDir:
		return "is_dir"
	case KindUnseekable:
		return "unseekable"
	case KindFileDescriptorInvalid:
		return "file_descriptor_invalid"
	case KindDiskQuota:
		return "disk_quota"
	case KindNoSpaceLeft:
		return "no_space_left"
	case KindSystemResources:
		return "system_resources"
	case KindCanceled:
		return "canceled"
	default:
		return "unexpected"
	}
}

// Error is the structured error type every operation callback receives in
// place of a raw syscall error. Cause preserves the underlying OS error
// for logging; callers select on Kind, not on Cause's concrete type.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

// New builds an Error for op with the given kind, wrapping cause.
func New(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
}

// Unwrap exposes the underlying OS error to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, errs.New("", errs.KindConnectionRefused, nil)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Package-level sentinels for programmer-error / platform / lifecycle
// conditions that are not part of the per-op Kind taxonomy.
var (
	// ErrNotSupported is returned by Init on platforms without an IOCP
	// backend (everything but GOOS=windows).
	ErrNotSupported = fmt.Errorf("iocp-engine: platform not supported")
	// ErrReactorClosed is returned by Tick and RunForNs after Deinit.
	ErrReactorClosed = fmt.Errorf("iocp-engine: reactor is closed")
	// ErrUnboundedBlockingWait is the programmer error for entering a
	// blocking flush with no timer to bound it.
	ErrUnboundedBlockingWait = fmt.Errorf("iocp-engine: blocking flush requires a pending timer")
)

// Abort prints a diagnostic to stderr and terminates the process. Used
// for mandatory-exclusivity conditions with no retry policy, e.g.
// storage lock contention during OpenFile: the lock represents unique
// process ownership.
func Abort(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "iocp-engine: fatal: "+format+"\n", args...)
	os.Exit(1)
}
