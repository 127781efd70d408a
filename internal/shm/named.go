// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// shmDir is where POSIX shared-memory objects are realized on Linux.
const shmDir = "/dev/shm"

// Named is a named shared-memory object mapped into this process. name is
// the POSIX shm name, including its leading slash; the backing file lives
// at shmDir+name.
type Named struct {
	name string
	file *os.File
	data []byte
}

// CreateNamed creates (or truncates) the named shm object, sizes it to
// size bytes, and maps it read-write. This is the loader side of the
// handoff: it owns object creation and lifetime.
func CreateNamed(name string, size int) (*Named, error) {
	path, err := shmPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return &Named{name: name, file: f, data: data}, nil
}

// OpenNamed opens an existing named shm object and maps it read-write, as
// section 4.3.2 of the design requires (owner-only mode, read/write into
// the worker address space). size must match the mapping the loader
// created, normally obtained out-of-band (here, via the Entry's Size
// field).
func OpenNamed(name string, size int) (*Named, error) {
	path, err := shmPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Named{name: name, file: f, data: data}, nil
}

// Bytes returns the mapped region.
func (n *Named) Bytes() []byte {
	if n == nil {
		return nil
	}
	return n.data
}

// Close unmaps and closes the object's file descriptor without unlinking
// the underlying /dev/shm entry.
func (n *Named) Close() error {
	if n == nil {
		return nil
	}
	var err error
	if n.data != nil {
		err = unix.Munmap(n.data)
		n.data = nil
	}
	if n.file != nil {
		if cerr := n.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Unlink removes the named shm object. Safe to call after Close; the
// mapping backing this process's Named, if still open, remains valid per
// POSIX unlink-while-open semantics.
func Unlink(name string) error {
	path, err := shmPath(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func shmPath(name string) (string, error) {
	if len(name) == 0 || name[0] != '/' {
		return "", fmt.Errorf("shm: name %q must start with '/'", name)
	}
	return shmDir + name, nil
}
