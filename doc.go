// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package floader implements a cross-process asynchronous file-loading
// engine.
//
// Workers enqueue file-path requests. A loader reads those files from a
// block device through Linux io_uring and hands the bytes back through
// per-request named shared-memory objects. The loader batches and sorts pending reads by
// physical block address before submitting them, turning a burst of
// randomly-ordered path requests into a near-sequential device access
// pattern.
//
// # Topology
//
// [Init] builds a [Loader] and [Start] runs it: a reader goroutine
// harvests, sorts, and submits requests, while the calling goroutine runs
// the responder loop until its context is canceled or the completion stream
// is wedged. Worker queues, entries and their status lists are ordinary Go
// memory owned by the Loader; only a small block of diagnostic counters
// lives in an anonymous MAP_SHARED region. Workers therefore reach the
// loader from within the same process (for example from other goroutines):
// a child created with fork(2) after [Init] works on its own copy-on-write
// copy of the queues, and the loader does not see requests made there.
//
// # Worker side
//
//	w := loader.Worker(workerIndex)
//	if !w.TryRequest("/data/shard/0042") {
//	    // no free slot, retry later
//	}
//	var entry *floader.Entry
//	for {
//	    if e, err := w.TryGet(); err == nil {
//	        entry = e
//	        break
//	    }
//	}
//	// entry.Bytes() is the file content; entry.Release() returns the slot.
//
// # Queue state machine
//
// Every [Entry] moves through free -> ready -> in-flight -> completed ->
// free. Status lists are FIFO circular doubly-linked lists, each guarded by
// its own [SpinLock] (see fifo.go); a slot is in exactly one of the three
// lists, or tracked solely by its io_uring submission tag while in flight.
//
// # Dependencies
//
// Spinlocks and the eager-submit idle counter are built on
// [code.hybscloud.com/atomix] (explicit memory ordering) and
// [code.hybscloud.com/spin] (CPU-pause backoff), the same primitives this
// package's sibling lock-free queue library uses. The queue-empty
// control-flow error ([ErrNoCompletion]) is a [code.hybscloud.com/iox]
// semantic error; queue-full is reported by [WorkerState.TryRequest]
// returning false.
// Diagnostics are structured [github.com/rs/zerolog] events; shared memory
// and io_uring access go through [golang.org/x/sys/unix].
package floader
