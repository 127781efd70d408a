// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blockdev_test

import (
	"os"
	"testing"

	"code.hybscloud.com/floader/internal/blockdev"
)

func TestDeviceSizeRejectsRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "blockdev-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	// BLKGETSIZE64 is only meaningful on a block device; issuing it
	// against a regular file must fail rather than return a bogus size.
	if _, err := blockdev.DeviceSize(int(f.Fd())); err == nil {
		t.Fatal("DeviceSize succeeded on a regular file, want an error")
	}
}

func TestFirstExtentPhysicalOnEmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "blockdev-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	// An empty file has no allocated extents; FIEMAP support itself
	// varies by filesystem (notably tmpfs), so a non-nil error here is
	// tolerated as long as the call does not panic and, when it does
	// succeed, reports a zero LBA for a holeless empty file.
	lba, err := blockdev.FirstExtentPhysical(int(f.Fd()))
	if err == nil && lba != 0 {
		t.Fatalf("FirstExtentPhysical on empty file = %d, want 0", lba)
	}
}
