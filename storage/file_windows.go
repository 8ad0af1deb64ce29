//go:build windows
// +build windows

// File: storage/file_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OpenFile satisfies the durable-open contract: exclusive advisory
// locking between processes, fresh-create preallocation with a
// short-write fallback, and an fsync-before-return guarantee.

package storage

import (
	"fmt"

	"github.com/alexflint/go-filemutex"
	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/errs"
)

// File wraps the opened handle together with the advisory lock that
// enforces exclusive process ownership for as long as the file stays
// open. The handle itself is submitted to reactor.SubmitRead/Write/Close
// like any other descriptor; ReleaseLock is called separately once the
// caller has closed it.
type File struct {
	Handle windows.Handle
	lock   *filemutex.FileMutex
}

// ReleaseLock unlocks and releases the advisory lock acquired by
// OpenFile. Call once, after the handle itself has been closed.
func (f *File) ReleaseLock() error {
	return f.lock.Close()
}

// OpenFile opens or creates path, resolved relative to dirHandle (pass
// windows.InvalidHandle for an already-absolute path), for write-through
// I/O, unbuffered (direct) when directIO is set. size must be a multiple
// of SectorSize. On a fresh
// create it preallocates size bytes and fsyncs before returning; an
// existing file smaller than size is treated as corruption.
func OpenFile(dirHandle windows.Handle, path string, size int64, method OpenMethod, directIO bool) (*File, error) {
	if size%SectorSize != 0 {
		return nil, errs.New("open_file", errs.KindAlignment, fmt.Errorf("size %d is not a multiple of sector size %d", size, SectorSize))
	}

	path, err := resolvePath(dirHandle, path)
	if err != nil {
		return nil, err
	}

	lock, err := filemutex.New(path + ".lock")
	if err != nil {
		return nil, errs.New("open_file", errs.KindSystemResources, err)
	}
	if err := lock.TryLock(); err != nil {
		errs.Abort("open_file: lock contention on %s: %v", path, err)
	}

	handle, created, err := createWithMethod(path, method, directIO)
	if err != nil {
		lock.Close()
		return nil, err
	}

	if created {
		if err := preallocate(handle, size); err != nil {
			windows.CloseHandle(handle)
			lock.Close()
			return nil, err
		}
	}

	if err := windows.FlushFileBuffers(handle); err != nil {
		windows.CloseHandle(handle)
		lock.Close()
		return nil, errs.New("open_file", errs.KindInputOutput, err)
	}

	actual, err := getFileSize(handle)
	if err != nil {
		windows.CloseHandle(handle)
		lock.Close()
		return nil, errs.New("open_file", errs.KindInputOutput, err)
	}
	if actual < size {
		errs.Abort("open_file: %s is %d bytes, smaller than required %d (corrupt)", path, actual, size)
	}

	return &File{Handle: handle, lock: lock}, nil
}

// createWithMethod opens path per method's disposition, reporting
// whether the file was freshly created (and therefore needs
// preallocation).
func createWithMethod(path string, method OpenMethod, directIO bool) (windows.Handle, bool, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return windows.InvalidHandle, false, errs.New("open_file", errs.KindUnexpected, err)
	}

	access := uint32(windows.GENERIC_READ | windows.GENERIC_WRITE)
	attrs := uint32(windows.FILE_ATTRIBUTE_NORMAL | windows.FILE_FLAG_WRITE_THROUGH)
	if directIO {
		attrs |= windows.FILE_FLAG_NO_BUFFERING
	}

	switch method {
	case Create:
		h, err := windows.CreateFile(p, access, 0, nil, windows.CREATE_NEW, attrs, 0)
		if err != nil {
			return windows.InvalidHandle, false, errs.New("open_file", errs.KindUnexpected, err)
		}
		return h, true, nil

	case Open:
		h, err := windows.CreateFile(p, access, 0, nil, windows.OPEN_EXISTING, attrs, 0)
		if err != nil {
			return windows.InvalidHandle, false, errs.New("open_file", errs.KindNotOpenForReading, err)
		}
		return h, false, nil

	default: // CreateOrOpen
		h, err := windows.CreateFile(p, access, 0, nil, windows.OPEN_EXISTING, attrs, 0)
		if err == nil {
			return h, false, nil
		}
		if err != windows.ERROR_FILE_NOT_FOUND {
			return windows.InvalidHandle, false, errs.New("open_file", errs.KindUnexpected, err)
		}
		h, err = windows.CreateFile(p, access, 0, nil, windows.CREATE_NEW, attrs, 0)
		if err != nil {
			return windows.InvalidHandle, false, errs.New("open_file", errs.KindUnexpected, err)
		}
		return h, true, nil
	}
}

// preallocate grows handle to size via SetEndOfFile; if that fails it
// falls back to writing a final zero sector at size-SectorSize,
// retrying on short writes.
func preallocate(handle windows.Handle, size int64) error {
	var newPos int64
	if err := windows.SetFilePointerEx(handle, size, &newPos, windows.FILE_BEGIN); err == nil {
		if err := windows.SetEndOfFile(handle); err == nil {
			return nil
		}
	}

	zero := make([]byte, SectorSize)
	offset := size - SectorSize
	if offset < 0 {
		offset = 0
	}
	if _, err := windows.SetFilePointerEx(handle, offset, nil, windows.FILE_BEGIN); err != nil {
		return errs.New("open_file", errs.KindInputOutput, err)
	}

	remaining := zero
	for len(remaining) > 0 {
		var done uint32
		if err := windows.WriteFile(handle, remaining, &done, nil); err != nil {
			return errs.New("open_file", errs.KindNoSpaceLeft, err)
		}
		remaining = remaining[done:]
	}
	return nil
}

func getFileSize(handle windows.Handle) (int64, error) {
	var size int64
	if err := windows.GetFileSizeEx(handle, &size); err != nil {
		return 0, err
	}
	return size, nil
}

// resolvePath joins name onto dirHandle's own path when a directory
// handle is supplied, approximating openat-style relative resolution
// on a platform whose documented CreateFile has no dirfd parameter.
// windows.InvalidHandle means name is already a complete path.
func resolvePath(dirHandle windows.Handle, name string) (string, error) {
	if dirHandle == windows.InvalidHandle {
		return name, nil
	}

	buf := make([]uint16, windows.MAX_PATH)
	n, err := windows.GetFinalPathNameByHandle(dirHandle, &buf[0], uint32(len(buf)), 0)
	if err != nil {
		return "", errs.New("open_file", errs.KindUnexpected, err)
	}
	if n > uint32(len(buf)) {
		buf = make([]uint16, n)
		if _, err := windows.GetFinalPathNameByHandle(dirHandle, &buf[0], uint32(len(buf)), 0); err != nil {
			return "", errs.New("open_file", errs.KindUnexpected, err)
		}
	}

	dir := windows.UTF16ToString(buf)
	return dir + `\` + name, nil
}
