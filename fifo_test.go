// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"sync"
	"testing"
)

func TestSpinLockMutualExclusion(t *testing.T) {
	var l SpinLock
	l.Lock()
	if l.TryLock() {
		t.Fatal("TryLock succeeded while already held")
	}
	l.Unlock()
	if !l.TryLock() {
		t.Fatal("TryLock failed after Unlock")
	}
	l.Unlock()
}

func TestFifoListOrderingFIFO(t *testing.T) {
	entries := make([]Entry, 5)
	var list fifoList
	for i := range entries {
		list.pushBackLocked(&entries[i])
	}
	for i := range entries {
		got := list.popFrontLocked()
		if got != &entries[i] {
			t.Fatalf("popFront #%d returned wrong entry", i)
		}
	}
	if got := list.popFrontLocked(); got != nil {
		t.Fatalf("popFront on empty list returned %v, want nil", got)
	}
}

func TestFifoListSingleElementSelfLinks(t *testing.T) {
	var e Entry
	var list fifoList
	list.pushBackLocked(&e)
	if e.next != &e || e.prev != &e {
		t.Fatalf("single-element list must self-reference prev/next")
	}
	got := list.popFrontLocked()
	if got != &e {
		t.Fatal("popFront returned wrong entry")
	}
	if e.next != nil || e.prev != nil {
		t.Fatal("popped entry must have nil prev/next")
	}
}

func TestFifoListLenTracksPushPop(t *testing.T) {
	var list fifoList
	var entries [10]Entry
	for i := range entries {
		list.pushBackLocked(&entries[i])
		if list.len() != i+1 {
			t.Fatalf("len() = %d after %d pushes, want %d", list.len(), i+1, i+1)
		}
	}
	for i := 10; i > 0; i-- {
		list.popFrontLocked()
		if list.len() != i-1 {
			t.Fatalf("len() = %d after pop, want %d", list.len(), i-1)
		}
	}
}

// TestFifoListExclusivity exercises the property that an Entry belongs to
// exactly one list at a time: moving it from one list to another must
// never leave it reachable from the source list.
func TestFifoListExclusivity(t *testing.T) {
	var a, b fifoList
	var e Entry
	a.pushBackLocked(&e)
	moved := a.popFrontLocked()
	b.pushBackLocked(moved)

	if a.len() != 0 {
		t.Fatalf("source list still has %d entries after move", a.len())
	}
	if b.len() != 1 {
		t.Fatalf("dest list has %d entries, want 1", b.len())
	}
}

func TestFifoListConcurrentPushPop(t *testing.T) {
	const n = 1000
	entries := make([]Entry, n)
	var free fifoList
	for i := range entries {
		free.pushBackLocked(&entries[i])
	}

	var ready fifoList
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for {
				if e := free.popFrontLocked(); e != nil {
					ready.pushBackLocked(e)
					break
				}
			}
		}
	}()
	popped := 0
	go func() {
		defer wg.Done()
		for popped < n {
			if e := ready.popFrontLocked(); e != nil {
				popped++
				free.pushBackLocked(e)
			}
		}
	}()
	wg.Wait()
	if popped != n {
		t.Fatalf("popped %d entries, want %d", popped, n)
	}
}
