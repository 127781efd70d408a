// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ioring

import (
	"code.hybscloud.com/atomix"
	"golang.org/x/sys/unix"
)

// pad separates hot fields onto distinct cache lines, avoiding false
// sharing between the producer and consumer sides of completionRing.
type pad [64 - 8]byte

// completionRing is a single-producer single-consumer bounded ring of CQE,
// built on Lamport's ring buffer with the cached-index optimization: each
// side caches its view of the other's index so the common case touches no
// cross-core-shared cacheline. This is the same structure and algorithm
// this module's sibling lock-free queue library uses for its generic
// SPSC[T]; it is specialized to CQE here since a simulated ring only ever
// needs to move completions from the submitting goroutine to the
// responder goroutine.
type completionRing struct {
	_          pad
	head       atomix.Uint64
	_          pad
	cachedTail uint64
	_          pad
	tail       atomix.Uint64
	_          pad
	cachedHead uint64
	_          pad
	buffer     []CQE
	mask       uint64
}

func newCompletionRing(capacity int) *completionRing {
	n := uint64(roundToPow2(capacity))
	return &completionRing{buffer: make([]CQE, n), mask: n - 1}
}

func (q *completionRing) push(c CQE) bool {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return false
		}
	}
	q.buffer[tail&q.mask] = c
	q.tail.StoreRelease(tail + 1)
	return true
}

func (q *completionRing) pop() (CQE, bool) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			return CQE{}, false
		}
	}
	c := q.buffer[head&q.mask]
	q.head.StoreRelease(head + 1)
	return c, true
}

func roundToPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// SimRing is a Ring that performs submitted reads synchronously at Submit
// time rather than through the kernel, and delivers their results through
// a completionRing. It exists for tests and non-Linux development builds
// where a real io_uring instance is unavailable. Its Submit/PeekCQE
// contract matches [LinuxRing]'s; Push never returns [ErrRingFull], and
// WaitCQE busy-polls instead of blocking in the kernel.
type SimRing struct {
	staged []SQE
	cq     *completionRing
}

// NewSimRing creates a simulated ring with the given completion-queue
// depth.
func NewSimRing(depth int) *SimRing {
	return &SimRing{cq: newCompletionRing(depth)}
}

// Push stages sqe. Simulated staging capacity is unbounded; backpressure
// comes only from the completion ring filling up during Submit.
func (r *SimRing) Push(sqe SQE) error {
	r.staged = append(r.staged, sqe)
	return nil
}

// Submit performs every staged read synchronously against sqe.Fd (assumed
// already open and positioned by offset) and pushes one CQE per submission.
// If the completion ring is full mid-batch, remaining SQEs are re-staged
// for the next Submit call, matching a real ring's backpressure.
func (r *SimRing) Submit() (int, error) {
	n := 0
	for i, sqe := range r.staged {
		res := simRead(sqe)
		if !r.cq.push(res) {
			r.staged = r.staged[i:]
			return n, nil
		}
		n++
	}
	r.staged = r.staged[:0]
	return n, nil
}

// simRead performs the read directly against sqe.Fd via pread(2), without
// wrapping it in an *os.File: os.NewFile would attach a GC finalizer that
// closes the descriptor out from under the caller, which still owns it.
func simRead(sqe SQE) CQE {
	n, err := unix.Pread(sqe.Fd, sqe.Buf, int64(sqe.Offset))
	if err != nil && n <= 0 {
		res := int32(-1)
		if errno, ok := err.(unix.Errno); ok {
			res = -int32(errno)
		}
		return CQE{UserData: sqe.UserData, Res: res}
	}
	return CQE{UserData: sqe.UserData, Res: int32(n)}
}

// PeekCQE returns the oldest completion without blocking.
func (r *SimRing) PeekCQE() (CQE, bool) {
	return r.cq.pop()
}

// WaitCQE busy-polls for the next completion. Acceptable for a simulated,
// test-only ring; [LinuxRing.WaitCQE] blocks in the kernel instead.
func (r *SimRing) WaitCQE() (CQE, error) {
	for {
		if c, ok := r.cq.pop(); ok {
			return c, nil
		}
	}
}

// Close is a no-op: SimRing owns no kernel resources.
func (r *SimRing) Close() error { return nil }
