// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

// smallN is the batch size below which insertion sort outperforms the
// recursive merge; matches SMALL_N from the original implementation.
const smallN = 16

// maxStackBytes is the largest merge buffer this sort will carve out of a
// fixed-size local array rather than allocate on the heap; matches
// MAX_STACK_BYTES from the original implementation.
const maxStackBytes = 65536

// maxStackPtrs is maxStackBytes expressed in *Entry slots.
const maxStackPtrs = maxStackBytes / 8

// sortByLBA orders es by physical block address ascending, in place.
// Batches smaller than smallN use insertion sort; larger batches use a
// top-down merge sort with an auxiliary buffer taken from a fixed-size
// local array when it fits within maxStackBytes, and from the heap
// otherwise. This mirrors the original C loader's sort, which avoided a
// heap allocation on the hot path for the common, small-batch case.
func sortByLBA(es []*Entry) {
	n := len(es)
	if n < smallN {
		insertionSortByLBA(es)
		return
	}
	if n <= maxStackPtrs {
		var stackBuf [maxStackPtrs]*Entry
		mergeSortByLBA(es, stackBuf[:n])
		return
	}
	mergeSortByLBA(es, make([]*Entry, n))
}

func insertionSortByLBA(es []*Entry) {
	for i := 1; i < len(es); i++ {
		key := es[i]
		j := i - 1
		for j >= 0 && es[j].lba > key.lba {
			es[j+1] = es[j]
			j--
		}
		es[j+1] = key
	}
}

// mergeSortByLBA sorts es using buf (len(buf) == len(es)) as scratch space.
func mergeSortByLBA(es, buf []*Entry) {
	n := len(es)
	if n < smallN {
		insertionSortByLBA(es)
		return
	}
	mid := n / 2
	mergeSortByLBA(es[:mid], buf[:mid])
	mergeSortByLBA(es[mid:], buf[mid:])
	mergeByLBA(es, buf)
}

func mergeByLBA(es, buf []*Entry) {
	mid := len(es) / 2
	copy(buf, es)
	i, j, k := 0, mid, 0
	for i < mid && j < len(es) {
		if buf[i].lba <= buf[j].lba {
			es[k] = buf[i]
			i++
		} else {
			es[k] = buf[j]
			j++
		}
		k++
	}
	for i < mid {
		es[k] = buf[i]
		i++
		k++
	}
	for j < len(es) {
		es[k] = buf[j]
		j++
		k++
	}
}
