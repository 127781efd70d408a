// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"code.hybscloud.com/iox"
)

// WorkerState is one worker's queue: a fixed-capacity array of Entry slots
// and the three FIFO lists (free, ready, completed) that partition it.
//
// A WorkerState is ordinary Go memory allocated by [Init], not part of the
// anonymous shared region, so its slots and list pointers are shared only
// between goroutines of one process. All list synchronization is via the
// embedded [SpinLock]s.
type WorkerState struct {
	queue []Entry // fixed capacity, set by Init; never resized after

	free      fifoList
	ready     fifoList
	completed fifoList

	owner *Loader
	index int // this worker's index within owner.workers
}

// init populates the worker's queue and seeds every slot onto the free
// list. Called once, from [Init], before any process forks.
func (w *WorkerState) init(owner *Loader, index int, depth int) {
	w.owner = owner
	w.index = index
	w.queue = make([]Entry, depth)
	for i := range w.queue {
		e := &w.queue[i]
		e.owner = w
		e.index = i
		w.free.pushBack(e)
	}
}

// TryRequest enqueues a read request for path, returning false if the
// worker's free list is exhausted (the caller should retry once a prior
// request completes and is released).
func (w *WorkerState) TryRequest(path string) bool {
	e := w.free.popFrontLocked()
	if e == nil {
		return false
	}
	e.setPath(path)
	e.file = nil
	e.fd = -1
	e.lba = 0
	e.size = 0
	e.shmWorker = nil
	e.ioErr = nil
	w.ready.pushBackLocked(e)
	return true
}

// TryGet removes and returns the oldest completed entry, mapping its
// payload into the worker's address space. Returns [ErrNoCompletion] if the
// completed list is empty.
//
// The caller owns the returned Entry until it calls [Entry.Release]; the
// slot does not return to the free list on its own.
func (w *WorkerState) TryGet() (*Entry, error) {
	e := w.completed.popFrontLocked()
	if e == nil {
		return nil, ErrNoCompletion
	}
	if err := w.owner.mapWorkerSide(e); err != nil {
		w.free.pushBackLocked(e)
		return nil, &ShmHandoffError{Path: e.Path(), ShmName: e.shmName, Err: err}
	}
	return e, nil
}

// Release returns e's slot to the free list after unmapping and unlinking
// its named shared-memory object. e must have been obtained from TryGet and
// not already released.
func (e *Entry) Release() error {
	w := e.owner
	err := w.owner.releaseWorkerSide(e)
	w.free.pushBackLocked(e)
	return err
}

// harvestOne pops the oldest ready entry, or returns
// [iox.ErrWouldBlock] if none is pending.
func (w *WorkerState) harvestOne() (*Entry, error) {
	e := w.ready.popFrontLocked()
	if e == nil {
		return nil, iox.ErrWouldBlock
	}
	return e, nil
}
