// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package ioring

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// LinuxRing is a Ring backed by a real kernel io_uring instance. Its
// structure (peek-fill-advance on both queues, a raw io_uring_enter
// syscall to submit and to wait) follows the same protocol as the
// ecosystem's io_uring client wrappers.
type LinuxRing struct {
	fd int

	mu sync.Mutex // serializes Push against Submit's array publication

	sqRing   []byte
	cqRing   []byte
	sqes     []byte
	sqHead   *uint32
	sqTail   *uint32
	sqMask   uint32
	sqArray  []uint32
	sqeSlice []ioUringSQE

	cqHead *uint32
	cqTail *uint32
	cqMask uint32
	cqes   []ioUringCQE

	toSubmit uint32 // number of SQEs filled since the last Submit
	sqFill   uint32 // next sq_tail slot to fill, mod ring size
}

// NewLinuxRing creates an io_uring instance with the given submission/
// completion queue depth.
func NewLinuxRing(depth int) (*LinuxRing, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("ioring: depth must be > 0")
	}
	var params ioUringParams
	fd, _, errno := unix.Syscall(sysIoUringSetup, uintptr(depth), uintptr(unsafe.Pointer(&params)), 0)
	if errno != 0 {
		return nil, fmt.Errorf("ioring: io_uring_setup: %w", errno)
	}

	r := &LinuxRing{fd: int(fd)}
	sqRingSize := int(params.SqOff.Array) + int(params.SqEntries)*4
	cqRingSize := int(params.CqOff.Cqes) + int(params.CqEntries)*int(unsafe.Sizeof(ioUringCQE{}))

	sqRing, err := unix.Mmap(r.fd, ioUringOffSQRing, sqRingSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Close(r.fd)
		return nil, fmt.Errorf("ioring: mmap sq ring: %w", err)
	}
	cqRing, err := unix.Mmap(r.fd, ioUringOffCQRing, cqRingSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(sqRing)
		unix.Close(r.fd)
		return nil, fmt.Errorf("ioring: mmap cq ring: %w", err)
	}
	sqes, err := unix.Mmap(r.fd, ioUringOffSQEs, int(params.SqEntries)*int(unsafe.Sizeof(ioUringSQE{})), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(sqRing)
		unix.Munmap(cqRing)
		unix.Close(r.fd)
		return nil, fmt.Errorf("ioring: mmap sqes: %w", err)
	}

	r.sqRing = sqRing
	r.cqRing = cqRing
	r.sqes = sqes
	r.sqHead = (*uint32)(unsafe.Pointer(&sqRing[params.SqOff.Head]))
	r.sqTail = (*uint32)(unsafe.Pointer(&sqRing[params.SqOff.Tail]))
	r.sqMask = *(*uint32)(unsafe.Pointer(&sqRing[params.SqOff.RingMask]))
	r.sqArray = unsafe.Slice((*uint32)(unsafe.Pointer(&sqRing[params.SqOff.Array])), params.SqEntries)
	r.sqeSlice = unsafe.Slice((*ioUringSQE)(unsafe.Pointer(&sqes[0])), params.SqEntries)

	r.cqHead = (*uint32)(unsafe.Pointer(&cqRing[params.CqOff.Head]))
	r.cqTail = (*uint32)(unsafe.Pointer(&cqRing[params.CqOff.Tail]))
	r.cqMask = *(*uint32)(unsafe.Pointer(&cqRing[params.CqOff.RingMask]))
	r.cqes = unsafe.Slice((*ioUringCQE)(unsafe.Pointer(&cqRing[params.CqOff.Cqes])), params.CqEntries)

	r.sqFill = loadAcquire32(r.sqTail)
	return r, nil
}

// Push stages a read submission into the next free SQE slot.
func (r *LinuxRing) Push(sqe SQE) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	head := loadAcquire32(r.sqHead)
	if r.sqFill-head > r.sqMask {
		return ErrRingFull
	}
	idx := r.sqFill & r.sqMask
	e := &r.sqeSlice[idx]
	*e = ioUringSQE{
		Opcode:   ioUringOpRead,
		Fd:       int32(sqe.Fd),
		Off:      sqe.Offset,
		Addr:     uint64(uintptr(unsafe.Pointer(&sqe.Buf[0]))),
		Len:      uint32(len(sqe.Buf)),
		UserData: sqe.UserData,
	}
	r.sqArray[r.sqFill&r.sqMask] = idx
	r.sqFill++
	r.toSubmit++
	return nil
}

// Submit publishes staged SQEs and enters the kernel to process them.
func (r *LinuxRing) Submit() (int, error) {
	r.mu.Lock()
	n := r.toSubmit
	if n == 0 {
		r.mu.Unlock()
		return 0, nil
	}
	storeRelease32(r.sqTail, r.sqFill)
	r.toSubmit = 0
	r.mu.Unlock()

	submitted, _, errno := unix.Syscall6(sysIoUringEnter, uintptr(r.fd), uintptr(n), 0, 0, 0, 0)
	if errno != 0 {
		return int(submitted), fmt.Errorf("ioring: io_uring_enter: %w", errno)
	}
	return int(submitted), nil
}

// PeekCQE returns the oldest completion without blocking.
func (r *LinuxRing) PeekCQE() (CQE, bool) {
	head := loadAcquire32(r.cqHead)
	tail := loadAcquire32(r.cqTail)
	if head == tail {
		return CQE{}, false
	}
	e := r.cqes[head&r.cqMask]
	storeRelease32(r.cqHead, head+1)
	return CQE{UserData: e.UserData, Res: e.Res}, true
}

// WaitCQE blocks in the kernel until at least one completion is ready.
func (r *LinuxRing) WaitCQE() (CQE, error) {
	for {
		if cqe, ok := r.PeekCQE(); ok {
			return cqe, nil
		}
		_, _, errno := unix.Syscall6(sysIoUringEnter, uintptr(r.fd), 0, 1, uintptr(ioUringEnterGetEvents), 0, 0)
		if errno != 0 && errno != unix.EINTR {
			return CQE{}, fmt.Errorf("ioring: io_uring_enter(wait): %w", errno)
		}
	}
}

// Close unmaps the rings and closes the io_uring file descriptor.
func (r *LinuxRing) Close() error {
	var err error
	if r.sqes != nil {
		err = unix.Munmap(r.sqes)
	}
	if r.cqRing != nil {
		if e := unix.Munmap(r.cqRing); err == nil {
			err = e
		}
	}
	if r.sqRing != nil {
		if e := unix.Munmap(r.sqRing); err == nil {
			err = e
		}
	}
	if e := unix.Close(r.fd); err == nil {
		err = e
	}
	return err
}
