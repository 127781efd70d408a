// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"os"
	"strings"

	"code.hybscloud.com/floader/internal/shm"
)

// MaxPathLen is the largest file path, in bytes, an Entry can carry.
// Paths longer than this are truncated by TryRequest; the stored path is
// always NUL-terminated within MaxPathLen+1 bytes.
const MaxPathLen = 128

// pageSize4K is the alignment all entry payload sizes are rounded up to,
// satisfying O_DIRECT's aligned-I/O requirement.
const pageSize4K = 4096

// Entry is the request/response record moving through a worker's
// free -> ready -> in-flight -> completed -> free lifecycle.
//
// An Entry lives in its owning [WorkerState]'s queue, which [Init]
// allocates as ordinary Go memory, not in the anonymous shared region; its
// list links are plain Go pointers. A process forked after [Init] gets its
// own copy-on-write copy of every Entry, so list changes made in one
// process are not seen by another.
type Entry struct {
	path    [MaxPathLen + 1]byte // NUL-terminated file path
	pathLen int

	file *os.File // loader-owned; open between performIO and the matching completion
	fd   int      // cached int(file.Fd()); valid only while file != nil
	lba  uint64   // physical block address of the first extent; sort key only
	size uint64   // payload length, rounded up to the next 4KiB multiple

	shmName string // derived from path; see ShmNameFor

	shmLoader *shm.Named // loader-side mapping; created by performIO, closed on reuse
	shmWorker *shm.Named // worker-side mapping; populated by TryGet, closed by Release

	ioErr error // set by the responder when this entry's read failed; nil on success

	owner *WorkerState // immutable after initialization

	// Intrusive circular doubly-linked list membership. prev/next are
	// exclusive across the free/ready/completed lists; an Entry "in
	// flight" belongs to none of them and is tracked only by the
	// submission tag used as user-data in the io_uring SQE.
	prev *Entry
	next *Entry

	index int // position within owner.queue; encoded into the submission tag
}

// Path returns the entry's request path as a string.
func (e *Entry) Path() string {
	return string(e.path[:e.pathLen])
}

// setPath copies path into the entry, truncating at MaxPathLen and always
// NUL-terminating. It does not touch list membership.
func (e *Entry) setPath(path string) {
	n := len(path)
	if n > MaxPathLen {
		n = MaxPathLen
	}
	copy(e.path[:], path[:n])
	e.path[n] = 0
	e.pathLen = n
	e.shmName = ShmNameFor(path[:n])
}

// Size returns the payload length in bytes, rounded up to the next 4KiB
// multiple. Valid once the entry reaches the completed list.
func (e *Entry) Size() uint64 {
	return e.size
}

// LBA returns the physical block address used to order this entry's
// submission within its batch. Meaningful only for diagnostics once the
// entry has left the ready list.
func (e *Entry) LBA() uint64 {
	return e.lba
}

// Bytes returns the worker-side mapping of the entry's payload. Valid only
// between a successful TryGet and the matching Release.
func (e *Entry) Bytes() []byte {
	return e.shmWorker.Bytes()
}

// Err returns the error the loader recorded while servicing this request,
// or nil if the read completed successfully. Only meaningful on an entry
// obtained from TryGet.
func (e *Entry) Err() error {
	return e.ioErr
}

// ShmNameFor derives the named shared-memory object name for a request
// path: a leading '/' followed by path with every '/' replaced by '_'.
//
// This matches section 8's name-derivation property test: for any path of
// at most MaxPathLen bytes, ShmNameFor(path) == "/" + strings.ReplaceAll
// (path, "/", "_"), and the result never exceeds MaxPathLen+1 bytes plus a
// terminating NUL when stored (MaxPathLen+2 total, matching the original
// C draft's shm_fp[MAX_PATH_LEN+2] field).
func ShmNameFor(path string) string {
	var b strings.Builder
	b.Grow(len(path) + 1)
	b.WriteByte('/')
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			b.WriteByte('_')
		} else {
			b.WriteByte(path[i])
		}
	}
	return b.String()
}

// roundUp4K rounds n up to the next multiple of 4096.
func roundUp4K(n int64) uint64 {
	if n < 0 {
		n = 0
	}
	const mask = pageSize4K - 1
	return (uint64(n) + mask) &^ mask
}
