// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package floader

import "code.hybscloud.com/floader/internal/ioring"

func newRing(depth int) (ioring.Ring, error) {
	return ioring.NewLinuxRing(depth)
}
