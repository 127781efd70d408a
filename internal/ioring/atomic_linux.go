// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package ioring

import "sync/atomic"

func loadAcquire32(p *uint32) uint32    { return atomic.LoadUint32(p) }
func storeRelease32(p *uint32, v uint32) { atomic.StoreUint32(p, v) }
