// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import "code.hybscloud.com/floader/internal/shm"

// mapWorkerSide opens e's named shm object read-write in the calling
// (worker) process. Called by [WorkerState.TryGet].
func (l *Loader) mapWorkerSide(e *Entry) error {
	n, err := shm.OpenNamed(e.shmName, int(e.size))
	if err != nil {
		return err
	}
	e.shmWorker = n
	return nil
}

// releaseWorkerSide unmaps e's worker-side handle and unlinks the named
// shm object. Called by [Entry.Release].
func (l *Loader) releaseWorkerSide(e *Entry) error {
	var err error
	if e.shmWorker != nil {
		err = e.shmWorker.Close()
		e.shmWorker = nil
	}
	if uerr := shm.Unlink(e.shmName); err == nil {
		err = uerr
	}
	return err
}
