// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"context"
	"fmt"
	"unsafe"

	"code.hybscloud.com/floader/internal/ioring"
	"code.hybscloud.com/spin"
)

// responderLoop harvests ring completions, routes each back to its worker's
// completed list, and crash-stops once more than
// [Config.MaxConsecutiveFailures] consecutive *completion* failures have
// been observed. Pre-submission
// failures (performIO) never reach this loop: the reader retries those by
// pushing the entry back onto its worker's ready list (section 4.4 step 3 /
// section 7.2-7.3), so they never count toward the crash-stop threshold.
//
// It polls rather than blocking in WaitCQE so that ctx cancellation is
// observed promptly; this mirrors the reader loop's own poll-and-backoff
// structure.
func (l *Loader) responderLoop(ctx context.Context) error {
	var w spin.Wait
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		cqe, ok := l.ring.PeekCQE()
		if !ok {
			w.Once()
			continue
		}
		w = spin.Wait{}

		if err := l.handleCompletion(cqe); err != nil {
			return err
		}
	}
}

// handleCompletion routes one ring completion to its entry's completed
// list, closing the loader-side file descriptor first. A negative Res is
// a failed read (cqe.Res carries -errno, matching io_uring convention).
func (l *Loader) handleCompletion(cqe ioring.CQE) error {
	workerIdx, entryIdx := decodeTag(cqe.UserData)
	if workerIdx < 0 || workerIdx >= len(l.workers) {
		l.log.Error().Uint64("tag", cqe.UserData).Msg("floader: completion with out-of-range worker index")
		return nil
	}
	wst := &l.workers[workerIdx]
	if entryIdx < 0 || entryIdx >= len(wst.queue) {
		l.log.Error().Uint64("tag", cqe.UserData).Msg("floader: completion with out-of-range entry index")
		return nil
	}
	e := &wst.queue[entryIdx]

	fd := e.fd
	if e.file != nil {
		e.file.Close()
		e.file = nil
		e.fd = -1
	}

	if cqe.Res < 0 {
		e.ioErr = fmt.Errorf("floader: read failed: errno %d", -cqe.Res)
		var addr uintptr
		if buf := e.shmLoader.Bytes(); len(buf) > 0 {
			addr = uintptr(unsafe.Pointer(&buf[0]))
		}
		l.log.Error().
			Str("path", e.Path()).
			Str("shm", e.shmName).
			Int("fd", fd).
			Uint64("addr", uint64(addr)).
			Uint64("size", e.size).
			Uint64("align_off", uint64(addr%pageSize4K)).
			Int32("errno", -cqe.Res).
			Msg("floader: read completion failed")
		wst.completed.pushBackLocked(e)
		return l.recordFailure()
	}

	e.ioErr = nil
	wst.completed.pushBackLocked(e)
	l.recordSuccess()
	return nil
}

// recordFailure increments the consecutive-failure counter and returns
// [ErrCompletionStreamWedged] once it exceeds the configured threshold.
func (l *Loader) recordFailure() error {
	l.consecFails++
	l.counters.failures.AddAcqRel(1)
	if l.consecFails > l.cfg.maxConsecFails {
		return ErrCompletionStreamWedged
	}
	return nil
}

// recordSuccess resets the consecutive-failure counter.
func (l *Loader) recordSuccess() {
	l.consecFails = 0
	l.counters.completions.AddAcqRel(1)
}
