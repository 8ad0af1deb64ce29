//go:build !windows
// +build !windows

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without an IOCP. A POSIX/io_uring backend is out
// of scope; this file exists only so the module builds cross-platform.
// Init always fails here.

package reactor

import "github.com/momentics/iocp-engine/errs"

// Reactor is an opaque, unusable value on non-Windows platforms.
type Reactor struct{}

// Init always fails on this platform.
func Init(InitOptions) (*Reactor, error) {
	return nil, errs.ErrNotSupported
}

// Deinit is a no-op on this platform.
func (r *Reactor) Deinit() {}

// Tick always fails on this platform.
func (r *Reactor) Tick() error { return errs.ErrNotSupported }

// RunForNs always fails on this platform.
func (r *Reactor) RunForNs(ns int64) error { return errs.ErrNotSupported }
