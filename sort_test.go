// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"math/rand"
	"sort"
	"testing"
)

func newLBAEntries(lbas []uint64) []*Entry {
	es := make([]*Entry, len(lbas))
	for i, lba := range lbas {
		es[i] = &Entry{lba: lba}
	}
	return es
}

func isSortedByLBA(es []*Entry) bool {
	for i := 1; i < len(es); i++ {
		if es[i-1].lba > es[i].lba {
			return false
		}
	}
	return true
}

func TestSortByLBAInsertionPath(t *testing.T) {
	lbas := []uint64{9, 2, 7, 1, 5, 3, 8, 4, 6, 0}
	if len(lbas) >= smallN {
		t.Fatalf("test fixture must stay below smallN=%d", smallN)
	}
	es := newLBAEntries(lbas)
	sortByLBA(es)
	if !isSortedByLBA(es) {
		t.Fatalf("entries not sorted: %+v", es)
	}
}

func TestSortByLBAMergePath(t *testing.T) {
	n := smallN * 4
	lbas := make([]uint64, n)
	r := rand.New(rand.NewSource(1))
	for i := range lbas {
		lbas[i] = uint64(r.Intn(1 << 20))
	}
	es := newLBAEntries(lbas)
	sortByLBA(es)
	if !isSortedByLBA(es) {
		t.Fatalf("merge-path sort left entries unsorted")
	}
}

func TestSortByLBALargeBatchUsesHeapBuffer(t *testing.T) {
	n := maxStackPtrs + smallN
	lbas := make([]uint64, n)
	r := rand.New(rand.NewSource(2))
	for i := range lbas {
		lbas[i] = uint64(r.Intn(1 << 20))
	}
	es := newLBAEntries(lbas)
	sortByLBA(es)
	if !isSortedByLBA(es) {
		t.Fatalf("heap-buffer path left %d entries unsorted", n)
	}
}

func TestSortByLBAPreservesMultiset(t *testing.T) {
	// sortByLBA need not be stable (the spec only requires LBA ordering
	// for device-access locality), but it must preserve the multiset of
	// entries: no duplication, no loss.
	lbas := []uint64{5, 5, 1, 1, 3, 3, 2, 2, 4, 4, 9, 9, 6, 6, 7, 7, 8, 8}
	es := newLBAEntries(lbas)
	sortByLBA(es)
	if !isSortedByLBA(es) {
		t.Fatal("not sorted")
	}
	got := make([]uint64, len(es))
	for i, e := range es {
		got[i] = e.lba
	}
	want := append([]uint64(nil), lbas...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("multiset mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestSortByLBAEmptyAndSingle(t *testing.T) {
	sortByLBA(nil)
	es := newLBAEntries([]uint64{42})
	sortByLBA(es)
	if es[0].lba != 42 {
		t.Fatal("single-element sort mutated value")
	}
}
