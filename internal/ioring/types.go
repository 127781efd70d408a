// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ioring

// Kernel io_uring ABI constants. Values match include/uapi/linux/io_uring.h
// as of the kernel versions floader targets; they are not exposed by
// golang.org/x/sys/unix, so they are reproduced here the same way the
// wider ecosystem's io_uring client libraries do.
const (
	sysIoUringSetup  = 425
	sysIoUringEnter  = 426
	sysIoUringRegister = 427

	ioUringOffSQRing = 0x00000000
	ioUringOffCQRing = 0x08000000
	ioUringOffSQEs   = 0x10000000

	ioUringOpRead = 22 // IORING_OP_READ

	ioUringEnterGetEvents = 1 << 0
)

// ioUringParams mirrors struct io_uring_params.
type ioUringParams struct {
	SqEntries    uint32
	CqEntries    uint32
	Flags        uint32
	SqThreadCPU  uint32
	SqThreadIdle uint32
	Features     uint32
	WqFd         uint32
	Resv         [3]uint32
	SqOff        ioSqringOffsets
	CqOff        ioCqringOffsets
}

// ioSqringOffsets mirrors struct io_sqring_offsets.
type ioSqringOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Flags       uint32
	Dropped     uint32
	Array       uint32
	Resv1       uint32
	Resv2       uint64
}

// ioCqringOffsets mirrors struct io_cqring_offsets.
type ioCqringOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Overflow    uint32
	Cqes        uint32
	Flags       uint32
	Resv1       uint32
	Resv2       uint64
}

// ioUringSQE mirrors struct io_uring_sqe (64 bytes).
type ioUringSQE struct {
	Opcode      uint8
	Flags       uint8
	Ioprio      uint16
	Fd          int32
	Off         uint64
	Addr        uint64
	Len         uint32
	RwFlags     uint32
	UserData    uint64
	BufIndex    uint16
	Personality uint16
	SpliceFdIn  int32
	Pad         [2]uint64
}

// ioUringCQE mirrors struct io_uring_cqe (16 bytes).
type ioUringCQE struct {
	UserData uint64
	Res      int32
	Flags    uint32
}
