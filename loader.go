// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"context"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/floader/internal/ioring"
	"code.hybscloud.com/floader/internal/shm"
	"github.com/rs/zerolog"
)

// sharedCounters is the loader's shared diagnostics block: plain atomic
// counters, no pointers, safe to back with an anonymous mmap region that
// an external inspection tool could map read-only by address. It holds
// nothing the responder or reader loops need cross-process; it exists so
// the shared-memory allocator (internal/shm.Alloc) is exercised by a real
// piece of loader state rather than only by the per-request named objects.
type sharedCounters struct {
	idleIters    atomix.Uint64
	eagerSubmits atomix.Uint64
	completions  atomix.Uint64
	failures     atomix.Uint64
}

// Loader is the dedicated reader/responder process's state: every
// worker's queue, the submission/completion ring, and the shared
// diagnostics block. Construct with [Init].
type Loader struct {
	cfg     *Config
	workers []WorkerState

	region   *shm.Region
	counters *sharedCounters

	ring ioring.Ring
	log  zerolog.Logger

	rrIndex int
	staging []*Entry

	consecFails int
}

// Init allocates a Loader's state: nWorkers worker queues of queueDepth
// entries each (ordinary Go memory), the shared counters block (an
// anonymous MAP_SHARED region), and an io_uring instance (a real one on
// Linux, a simulated one elsewhere). A process forked after Init does not
// share the worker queues with the loader; see the doc comment on [Entry].
func Init(cfg *Config, log zerolog.Logger) (*Loader, error) {
	l := &Loader{cfg: cfg, log: log}

	l.workers = make([]WorkerState, cfg.nWorkers)
	for i := range l.workers {
		l.workers[i].init(l, i, cfg.queueDepth)
	}

	region, err := shm.Alloc(int(unsafe.Sizeof(sharedCounters{})))
	if err != nil {
		return nil, err
	}
	l.region = region
	l.counters = (*sharedCounters)(unsafe.Pointer(&region.Bytes()[0]))

	ring, err := newRing(cfg.ringCapacity())
	if err != nil {
		region.Free()
		return nil, err
	}
	l.ring = ring
	l.staging = make([]*Entry, 0, cfg.dispatchN)

	return l, nil
}

// Worker returns the i-th worker's state.
func (l *Loader) Worker(i int) *WorkerState {
	return &l.workers[i]
}

// NumWorkers returns the worker count Init was configured with.
func (l *Loader) NumWorkers() int {
	return len(l.workers)
}

// Close releases the loader's ring and shared counters block. Workers'
// queues are ordinary Go memory and need no explicit release.
func (l *Loader) Close() error {
	var err error
	if l.ring != nil {
		err = l.ring.Close()
	}
	if l.region != nil {
		if e := l.region.Free(); err == nil {
			err = e
		}
	}
	return err
}

// Start runs the reader loop in a new goroutine and the responder loop on
// the calling goroutine. It returns when ctx is canceled, or when the
// responder observes more than [Config.MaxConsecutiveFailures] consecutive
// failing completions, in which case it returns [ErrCompletionStreamWedged]. Either
// way, the reader goroutine is stopped before Start returns.
func (l *Loader) Start(ctx context.Context) error {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readerErr := make(chan error, 1)
	go func() {
		readerErr <- l.readerLoop(rctx)
	}()

	respErr := l.responderLoop(rctx)
	cancel()
	readErr := <-readerErr
	if respErr != nil {
		return respErr
	}
	return readErr
}
