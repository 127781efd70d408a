// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package shm provides the two shared-memory primitives the loader needs:
// an anonymous page-aligned region for state a cooperating process maps at
// a known address (see [Alloc]), and named POSIX shared-memory objects
// realized, on Linux, as files under /dev/shm (see [CreateNamed] and
// [OpenNamed]).
package shm

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// ErrInvalidSize is returned by Alloc when size is not positive.
var ErrInvalidSize = errors.New("shm: size must be > 0")

// Region is a page-aligned MAP_SHARED|MAP_ANONYMOUS mapping. Children
// created with fork(2) after the mapping exists inherit it as shared
// memory (writes on either side are visible to the other); this is how the
// loader's shared counters block becomes visible to cooperating processes
// without a backing file.
type Region struct {
	data []byte
}

// Alloc creates a new anonymous shared mapping of at least size bytes,
// rounded up to the system page size.
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	pageSize := os.Getpagesize()
	n := (size + pageSize - 1) &^ (pageSize - 1)
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	return &Region{data: data}, nil
}

// Bytes returns the mapping's backing slice.
func (r *Region) Bytes() []byte {
	if r == nil {
		return nil
	}
	return r.data
}

// Free unmaps the region. Safe to call more than once.
func (r *Region) Free() error {
	if r == nil || r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	return err
}
