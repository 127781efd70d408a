// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SpinLock is a single-writer mutual-exclusion primitive for the three
// per-worker status lists. It is intentionally not a sync.Mutex: lists are
// only ever held for the handful of pointer writes needed to splice an
// Entry in or out, and the lock is a single atomic flag with no
// scheduler involvement.
type SpinLock struct {
	held atomix.Bool
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	var w spin.Wait
	for !l.TryLock() {
		w.Once()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *SpinLock) TryLock() bool {
	return l.held.CompareAndSwapAcqRel(false, true)
}

// Unlock releases the lock. Unlock of an unheld lock is undefined, same as
// sync.Mutex.
func (l *SpinLock) Unlock() {
	l.held.StoreRelease(false)
}

// fifoList is a circular doubly-linked-list FIFO of *Entry, guarded by its
// own SpinLock. head is nil when the list is empty; otherwise head.prev is
// the tail, closing the ring.
type fifoList struct {
	mu   SpinLock
	head *Entry
	n    int
}

// pushBack appends e to the tail of the list. e must not already belong to
// any list. Caller must hold l.mu.
func (l *fifoList) pushBack(e *Entry) {
	if l.head == nil {
		e.next = e
		e.prev = e
		l.head = e
	} else {
		tail := l.head.prev
		e.prev = tail
		e.next = l.head
		tail.next = e
		l.head.prev = e
	}
	l.n++
}

// popFront removes and returns the head of the list, or nil if empty.
// Caller must hold l.mu.
func (l *fifoList) popFront() *Entry {
	e := l.head
	if e == nil {
		return nil
	}
	if e.next == e {
		l.head = nil
	} else {
		e.prev.next = e.next
		e.next.prev = e.prev
		l.head = e.next
	}
	e.prev = nil
	e.next = nil
	l.n--
	return e
}

// pushBackLocked acquires the list lock, appends e, and releases the lock.
func (l *fifoList) pushBackLocked(e *Entry) {
	l.mu.Lock()
	l.pushBack(e)
	l.mu.Unlock()
}

// popFrontLocked acquires the list lock, pops the head, and releases the
// lock.
func (l *fifoList) popFrontLocked() *Entry {
	l.mu.Lock()
	e := l.popFront()
	l.mu.Unlock()
	return e
}

// len returns the current list length. For diagnostics only: the result is
// stale the instant the lock is released under concurrent access.
func (l *fifoList) len() int {
	l.mu.Lock()
	n := l.n
	l.mu.Unlock()
	return n
}
