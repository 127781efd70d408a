// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ioring_test

import (
	"os"
	"testing"
	"time"

	"code.hybscloud.com/floader/internal/ioring"
)

func TestSimRingReadRoundTrip(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ioring-sim-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	want := []byte("the quick brown fox")
	if _, err := f.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := ioring.NewSimRing(4)
	buf := make([]byte, len(want))
	if err := r.Push(ioring.SQE{Fd: int(f.Fd()), Buf: buf, Offset: 0, UserData: 7}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	n, err := r.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if n != 1 {
		t.Fatalf("Submit returned %d, want 1", n)
	}

	cqe, ok := r.PeekCQE()
	if !ok {
		t.Fatal("PeekCQE found nothing after Submit")
	}
	if cqe.UserData != 7 {
		t.Fatalf("UserData = %d, want 7", cqe.UserData)
	}
	if cqe.Res != int32(len(want)) {
		t.Fatalf("Res = %d, want %d", cqe.Res, len(want))
	}
	if string(buf) != string(want) {
		t.Fatalf("buf = %q, want %q", buf, want)
	}
}

func TestSimRingMultipleSubmissionsPreserveOrder(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ioring-sim-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	payload := []byte("0123456789abcdef")
	if _, err := f.Write(payload); err != nil {
		t.Fatal(err)
	}

	r := ioring.NewSimRing(8)
	bufs := make([][]byte, 4)
	for i := range bufs {
		bufs[i] = make([]byte, 4)
		if err := r.Push(ioring.SQE{Fd: int(f.Fd()), Buf: bufs[i], Offset: uint64(i * 4), UserData: uint64(i)}); err != nil {
			t.Fatalf("Push #%d: %v", i, err)
		}
	}
	if _, err := r.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for i := 0; i < 4; i++ {
		cqe, ok := r.PeekCQE()
		if !ok {
			t.Fatalf("missing completion #%d", i)
		}
		if cqe.UserData != uint64(i) {
			t.Fatalf("completion #%d UserData = %d, want %d", i, cqe.UserData, i)
		}
	}
	want := string(payload)
	got := string(bufs[0]) + string(bufs[1]) + string(bufs[2]) + string(bufs[3])
	if got != want {
		t.Fatalf("reassembled payload = %q, want %q", got, want)
	}
}

func TestSimRingWaitCQEBlocksUntilSubmit(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ioring-sim-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	f.WriteString("data")

	r := ioring.NewSimRing(2)
	done := make(chan ioring.CQE, 1)
	go func() {
		cqe, err := r.WaitCQE()
		if err != nil {
			t.Error(err)
			return
		}
		done <- cqe
	}()

	buf := make([]byte, 4)
	if err := r.Push(ioring.SQE{Fd: int(f.Fd()), Buf: buf, UserData: 99}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := r.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case cqe := <-done:
		if cqe.UserData != 99 {
			t.Fatalf("UserData = %d, want 99", cqe.UserData)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitCQE never returned after Submit")
	}
}
