// Package storage provides the durable file and directory handles the
// reactor's read/write/close operations drive. Opening is synchronous
// and happens off the reactor's ready queue entirely — only the
// resulting handle is later submitted to reactor.SubmitRead/Write/Close.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package storage

// SectorSize is the compile-time sector size every OpenFile size
// argument must be a multiple of, and the unit preallocation falls
// back to when SetEndOfFile cannot be used.
const SectorSize = 4096

// OpenMethod selects how OpenFile resolves an existing file at path.
type OpenMethod int

const (
	// Create requires path not already exist.
	Create OpenMethod = iota
	// CreateOrOpen opens path if present, creates it otherwise.
	CreateOrOpen
	// Open requires path already exist.
	Open
)

func (m OpenMethod) String() string {
	switch m {
	case Create:
		return "create"
	case CreateOrOpen:
		return "create_or_open"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}
