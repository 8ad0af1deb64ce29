//go:build !windows
// +build !windows

// File: storage/storage_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package storage

import "github.com/momentics/iocp-engine/errs"

// File is an opaque, unusable value on non-Windows platforms.
type File struct{}

// ReleaseLock always fails on this platform.
func (f *File) ReleaseLock() error { return errs.ErrNotSupported }

// OpenFile always fails on this platform.
func OpenFile(dirHandle uintptr, path string, size int64, method OpenMethod, directIO bool) (*File, error) {
	return nil, errs.ErrNotSupported
}

// OpenDir always fails on this platform.
func OpenDir(path string) (uintptr, error) {
	return 0, errs.ErrNotSupported
}
