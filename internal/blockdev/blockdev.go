// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package blockdev resolves the two pieces of physical-layout information
// the loader's LBA sort needs: a regular file's first-extent physical
// block address (via the FIEMAP ioctl) and a block device's total size
// (via BLKGETSIZE64). Neither ioctl is wrapped by golang.org/x/sys/unix,
// so both are reproduced here directly against the kernel ABI; see
// DESIGN.md for why no ecosystem library covers this pair.
package blockdev

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	// fsIocFiemap is FS_IOC_FIEMAP, _IOWR('f', 11, struct fiemap).
	fsIocFiemap = 0xC020660B
	// blkGetSize64 is BLKGETSIZE64, _IOR(0x12, 114, size_t).
	blkGetSize64 = 0x80081272

	fiemapExtentLast = 0x00000001
)

// fiemap mirrors struct fiemap's fixed header; the variable-length
// fm_extents array is appended by the caller.
type fiemap struct {
	Start         uint64
	Length        uint64
	Flags         uint32
	MappedExtents uint32
	ExtentCount   uint32
	Reserved      uint32
}

// fiemapExtent mirrors struct fiemap_extent.
type fiemapExtent struct {
	Logical    uint64
	Physical   uint64
	Length     uint64
	Reserved64 [2]uint64
	Flags      uint32
	Reserved32 [3]uint32
}

// FirstExtentPhysical returns the physical byte offset of fd's first
// extent, i.e. the block address a sequential read of the file begins at
// on the underlying device. Used as the sort key for the loader's batch
// LBA ordering; files with no allocated extents (holes, zero length)
// report physical offset 0.
func FirstExtentPhysical(fd int) (uint64, error) {
	const hdrSize = unsafe.Sizeof(fiemap{})
	const extSize = unsafe.Sizeof(fiemapExtent{})
	buf := make([]byte, hdrSize+extSize)
	hdr := (*fiemap)(unsafe.Pointer(&buf[0]))
	hdr.Start = 0
	hdr.Length = ^uint64(0)
	hdr.ExtentCount = 1

	if err := ioctl(fd, fsIocFiemap, uintptr(unsafe.Pointer(&buf[0]))); err != nil {
		return 0, fmt.Errorf("blockdev: FIEMAP: %w", err)
	}
	if hdr.MappedExtents == 0 {
		return 0, nil
	}
	ext := (*fiemapExtent)(unsafe.Pointer(&buf[hdrSize]))
	return ext.Physical, nil
}

// DeviceSize returns the size, in bytes, of the block device open on fd.
func DeviceSize(fd int) (uint64, error) {
	var size uint64
	if err := ioctl(fd, blkGetSize64, uintptr(unsafe.Pointer(&size))); err != nil {
		return 0, fmt.Errorf("blockdev: BLKGETSIZE64: %w", err)
	}
	return size, nil
}

func ioctl(fd int, req uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), arg)
	if errno != 0 {
		return errno
	}
	return nil
}
