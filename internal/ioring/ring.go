// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ioring provides the loader's asynchronous read-submission ring:
// a small interface in front of either a real Linux io_uring instance or a
// simulated in-process ring usable on any platform (for tests and non-Linux
// builds).
package ioring

import "errors"

// ErrRingFull is returned by Push when the submission ring has no free
// slot. The caller should Submit and retry.
var ErrRingFull = errors.New("ioring: submission ring full")

// SQE is one pending read submission: read Len bytes from Fd at Offset
// into Buf, tagging the completion with UserData so the responder can
// recover which Entry it belongs to.
type SQE struct {
	Fd       int
	Buf      []byte
	Offset   uint64
	UserData uint64
}

// CQE is one completion: Res is the syscall return value (bytes read, or a
// negative errno on failure), tagged with the UserData from its SQE.
type CQE struct {
	UserData uint64
	Res      int32
}

// Ring is the asynchronous read-submission/completion interface the
// reader and responder loops drive. A Ring is single-producer
// (Push/Submit from the reader goroutine) single-consumer (PeekCQE from
// the responder goroutine), matching the spec's one-reader one-responder
// topology within the loader process.
type Ring interface {
	// Push stages sqe for the next Submit call. Returns ErrRingFull if no
	// submission slot is free.
	Push(sqe SQE) error
	// Submit hands all staged SQEs to the kernel (or simulated backend)
	// and returns how many were submitted.
	Submit() (int, error)
	// PeekCQE returns the oldest unconsumed completion without blocking,
	// or ok=false if none is ready.
	PeekCQE() (cqe CQE, ok bool)
	// WaitCQE blocks until at least one completion is ready.
	WaitCQE() (CQE, error)
	// Close releases the ring's resources.
	Close() error
}
