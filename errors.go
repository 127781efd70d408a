// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrNoCompletion indicates try_get found the worker's completed list empty.
var ErrNoCompletion = iox.ErrWouldBlock

// IsWouldBlock reports whether err is a control flow signal meaning "try
// again later" rather than a failure. Delegates to [iox.IsWouldBlock].
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// ErrCompletionStreamWedged is returned by Start when the responder observes
// more than [Config.MaxConsecutiveFailures] consecutive failing completions. This
// is a crash-stop condition, not a retryable error: the loader must not
// continue processing once it is returned.
var ErrCompletionStreamWedged = errors.New("floader: completion stream wedged")

// ErrBadFileType is returned by perform_io when a path does not resolve to a
// regular file or a block device.
var ErrBadFileType = errors.New("floader: path is neither a regular file nor a block device")

// ShmHandoffError is a fatal programming-error condition: try_get found an
// entry on the completed list whose shared-memory object could not be
// opened or mapped. Per spec, the loader guarantees a working shm object
// exists before moving an entry to completed, so observing this means the
// invariant was violated elsewhere.
type ShmHandoffError struct {
	Path    string
	ShmName string
	Err     error
}

func (e *ShmHandoffError) Error() string {
	return fmt.Sprintf("floader: fatal shm handoff failure for path %q (shm %q): %v", e.Path, e.ShmName, e.Err)
}

func (e *ShmHandoffError) Unwrap() error { return e.Err }
