// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"context"
	"os"

	"code.hybscloud.com/floader/internal/blockdev"
	"code.hybscloud.com/floader/internal/ioring"
	"code.hybscloud.com/floader/internal/shm"
	"code.hybscloud.com/spin"
)

// encodeTag packs a (worker index, entry index) pair into the uint64
// user-data carried by an io_uring submission, so the responder can
// recover the originating Entry from a bare completion without any
// shared lookup structure.
func encodeTag(workerIdx, entryIdx int) uint64 {
	return uint64(uint32(workerIdx))<<32 | uint64(uint32(entryIdx))
}

func decodeTag(tag uint64) (workerIdx, entryIdx int) {
	return int(uint32(tag >> 32)), int(uint32(tag))
}

// readerLoop harvests ready requests round-robin across workers, stages
// them for LBA-ordered batch submission, and submits either when a full
// batch has accumulated or when the harvest has gone idle for long enough
// that holding a partial batch any longer would just add latency.
//
// Exactly one worker is inspected per loop iteration; idleIters counts
// iterations since the last successful harvest and resets on either a
// harvest or a submission.
func (l *Loader) readerLoop(ctx context.Context) error {
	nWorkers := len(l.workers)
	idleThreshold := uint64(l.cfg.maxIdleIters * nWorkers)

	for {
		select {
		case <-ctx.Done():
			return l.submitBatch()
		default:
		}

		idx := l.rrIndex
		l.rrIndex = (l.rrIndex + 1) % nWorkers
		w := &l.workers[idx]

		e, err := w.harvestOne()
		switch {
		case err == nil:
			if perr := l.performIO(e); perr != nil {
				l.log.Error().Err(perr).Str("path", e.Path()).Msg("floader: perform_io failed, retrying")
				w.ready.pushBackLocked(e)
			} else {
				l.staging = append(l.staging, e)
			}
			l.counters.idleIters.StoreRelease(0)
		default:
			l.counters.idleIters.AddAcqRel(1)
		}

		full := len(l.staging) >= l.cfg.dispatchN
		idle := l.counters.idleIters.LoadAcquire() > idleThreshold
		if len(l.staging) > 0 && (full || idle) {
			if serr := l.submitBatch(); serr != nil {
				return serr
			}
			l.counters.idleIters.StoreRelease(0)
		}
	}
}

// submitBatch sorts the staged entries by LBA and submits them as a single
// io_uring batch, turning whatever random order they were requested in
// into near-sequential device access.
func (l *Loader) submitBatch() error {
	if len(l.staging) == 0 {
		return nil
	}
	sortByLBA(l.staging)

	var w spin.Wait
	for _, e := range l.staging {
		sqe := ioring.SQE{
			Fd:       e.fd,
			Buf:      e.shmLoader.Bytes(),
			Offset:   0,
			UserData: encodeTag(e.owner.index, e.index),
		}
		for {
			err := l.ring.Push(sqe)
			if err == nil {
				break
			}
			if err != ioring.ErrRingFull {
				return err
			}
			if _, serr := l.ring.Submit(); serr != nil {
				return serr
			}
			w.Once()
		}
	}
	if _, err := l.ring.Submit(); err != nil {
		return err
	}
	l.counters.eagerSubmits.AddAcqRel(1)
	l.staging = l.staging[:0]
	return nil
}

// performIO resolves e's path to an open file, measures its length,
// derives and (re)creates its named shared-memory object, and readies it
// for submission. It does not itself submit the read; submitBatch does
// that once a batch worth of entries have been staged.
func (l *Loader) performIO(e *Entry) error {
	if e.shmLoader != nil {
		e.shmLoader.Close()
		e.shmLoader = nil
	}

	f, err := os.OpenFile(e.Path(), os.O_RDONLY|l.cfg.openFlags, 0)
	if err != nil {
		return err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	var length uint64
	switch {
	case fi.Mode()&os.ModeDevice != 0 && fi.Mode()&os.ModeCharDevice == 0:
		length, err = blockdev.DeviceSize(int(f.Fd()))
		if err != nil {
			f.Close()
			return err
		}
	case fi.Mode().IsRegular():
		length = uint64(fi.Size())
	default:
		f.Close()
		return ErrBadFileType
	}

	size := roundUp4K(int64(length))
	if size == 0 {
		// A zero-length mapping is invalid; an empty file still needs a
		// page to hand back through the named shm object.
		size = pageSize4K
	}
	lba, _ := blockdev.FirstExtentPhysical(int(f.Fd())) // best-effort; 0 is a valid fallback sort key

	named, err := shm.CreateNamed(e.shmName, int(size))
	if err != nil {
		f.Close()
		return err
	}

	e.file = f
	e.fd = int(f.Fd())
	e.size = size
	e.lba = lba
	e.shmLoader = named
	return nil
}
