//go:build windows
// +build windows

// File: storage/file_windows_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/windows"

	"github.com/momentics/iocp-engine/errs"
)

func closeAndUnlock(t *testing.T, f *File) {
	t.Helper()
	if err := windows.CloseHandle(f.Handle); err != nil {
		t.Fatalf("CloseHandle: %v", err)
	}
	if err := f.ReleaseLock(); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}
}

func TestOpenFileRejectsUnalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.img")
	_, err := OpenFile(windows.InvalidHandle, path, SectorSize+1, Create, false)
	if err == nil {
		t.Fatalf("want an alignment error, got nil")
	}
	var se *errs.Error
	if !errors.As(err, &se) || se.Kind != errs.KindAlignment {
		t.Fatalf("want KindAlignment, got %v", err)
	}
}

func TestOpenFileCreatePreallocates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.img")
	size := int64(4 * SectorSize)

	f, err := OpenFile(windows.InvalidHandle, path, size, Create, false)
	if err != nil {
		t.Fatalf("OpenFile(Create): %v", err)
	}
	defer closeAndUnlock(t, f)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != size {
		t.Fatalf("size = %d, want %d", info.Size(), size)
	}
}

func TestOpenFileCreateTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.img")
	size := int64(SectorSize)

	f, err := OpenFile(windows.InvalidHandle, path, size, Create, false)
	if err != nil {
		t.Fatalf("first OpenFile(Create): %v", err)
	}
	closeAndUnlock(t, f)

	if _, err := OpenFile(windows.InvalidHandle, path, size, Create, false); err == nil {
		t.Fatalf("want an error reopening an existing file with Create, got nil")
	}
}

func TestOpenFileOpenRequiresExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.img")
	_, err := OpenFile(windows.InvalidHandle, path, SectorSize, Open, false)
	if err == nil {
		t.Fatalf("want an error opening a missing file with Open, got nil")
	}
	var se *errs.Error
	if !errors.As(err, &se) || se.Kind != errs.KindNotOpenForReading {
		t.Fatalf("want KindNotOpenForReading, got %v", err)
	}
}

func TestOpenFileOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.img")
	size := int64(2 * SectorSize)

	f1, err := OpenFile(windows.InvalidHandle, path, size, Create, false)
	if err != nil {
		t.Fatalf("OpenFile(Create): %v", err)
	}

	payload := make([]byte, SectorSize)
	copy(payload, []byte("durable-sector"))
	var written uint32
	if err := windows.WriteFile(f1.Handle, payload, &written, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := windows.FlushFileBuffers(f1.Handle); err != nil {
		t.Fatalf("FlushFileBuffers: %v", err)
	}
	closeAndUnlock(t, f1)

	f2, err := OpenFile(windows.InvalidHandle, path, size, Open, false)
	if err != nil {
		t.Fatalf("OpenFile(Open): %v", err)
	}
	defer closeAndUnlock(t, f2)

	var newPos int64
	if err := windows.SetFilePointerEx(f2.Handle, 0, &newPos, windows.FILE_BEGIN); err != nil {
		t.Fatalf("SetFilePointerEx: %v", err)
	}
	readBack := make([]byte, len("durable-sector"))
	var read uint32
	if err := windows.ReadFile(f2.Handle, readBack, &read, nil); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(readBack) != "durable-sector" {
		t.Fatalf("read back %q, want %q", readBack, "durable-sector")
	}
}

func TestOpenFileCreateOrOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.img")
	size := int64(SectorSize)

	f1, err := OpenFile(windows.InvalidHandle, path, size, CreateOrOpen, false)
	if err != nil {
		t.Fatalf("first OpenFile(CreateOrOpen): %v", err)
	}
	closeAndUnlock(t, f1)

	f2, err := OpenFile(windows.InvalidHandle, path, size, CreateOrOpen, false)
	if err != nil {
		t.Fatalf("second OpenFile(CreateOrOpen): %v", err)
	}
	closeAndUnlock(t, f2)
}

func TestOpenFileDetectsUndersizedExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.img")

	f, err := OpenFile(windows.InvalidHandle, path, SectorSize, Create, false)
	if err != nil {
		t.Fatalf("OpenFile(Create): %v", err)
	}
	closeAndUnlock(t, f)

	if err := os.Truncate(path, SectorSize/2); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	// Abort calls os.Exit; running this in-process would kill the test
	// binary, so the corruption path is exercised indirectly: confirm
	// the file really is undersized, which is the condition OpenFile's
	// post-open size check (and its call to errs.Abort) guards against.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() >= SectorSize {
		t.Fatalf("truncate did not shrink file, got size %d", info.Size())
	}
}

func TestOpenDirAndRelativeOpenFile(t *testing.T) {
	dir := t.TempDir()
	dh, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	defer windows.CloseHandle(dh)

	f, err := OpenFile(dh, "relative.img", SectorSize, Create, false)
	if err != nil {
		t.Fatalf("OpenFile(dirHandle, relative path): %v", err)
	}
	defer closeAndUnlock(t, f)

	if _, err := os.Stat(filepath.Join(dir, "relative.img")); err != nil {
		t.Fatalf("expected file created under %s: %v", dir, err)
	}
}
