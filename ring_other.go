// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package floader

import "code.hybscloud.com/floader/internal/ioring"

// newRing on non-Linux platforms always returns the simulated ring:
// io_uring is Linux-only, and floader's Non-goals exclude any other
// backend. This keeps the module buildable and testable on a development
// workstation without pretending to offer non-Linux asynchronous I/O.
func newRing(depth int) (ioring.Ring, error) {
	return ioring.NewSimRing(depth), nil
}
