//go:build windows
// +build windows

// File: storage/dir_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package storage

import (
	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/errs"
)

// OpenDir opens path as a read-only directory handle, usable as the
// dir_handle argument of a relative OpenFile. Directory fsync is not
// performed: neither OpenDir nor OpenFile flushes the directory handle.
func OpenDir(path string) (windows.Handle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return windows.InvalidHandle, errs.New("open_dir", errs.KindUnexpected, err)
	}

	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return windows.InvalidHandle, errs.New("open_dir", errs.KindNotOpenForReading, err)
	}
	return h, nil
}
