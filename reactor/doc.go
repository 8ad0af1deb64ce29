// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor implements the single-threaded, completion-based async
// I/O engine: a Windows IOCP-backed reactor multiplexing TCP socket ops
// (accept, connect, send, recv), positional file I/O, descriptor close,
// and an in-process timer wheel into one ordered ready queue.
//
// The engine is Windows-only. Every op-submitting entry point and the
// Reactor's internal state machine live in _windows.go files; on other
// GOOS the package still builds (reactor_stub.go) so callers can compile
// cross-platform, but Init always fails with errs.ErrNotSupported — the
// POSIX/io_uring equivalent of this engine is a separate backend, not
// re-implemented here.
package reactor
