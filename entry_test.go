// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import (
	"strings"
	"testing"
)

func TestShmNameFor(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/tmp/hello", "/_tmp_hello"},
		{"/data/shard/0042", "/_data_shard_0042"},
		{"noleadingslash", "/noleadingslash"},
		{"", "/"},
	}
	for _, c := range cases {
		got := ShmNameFor(c.path)
		if got != c.want {
			t.Errorf("ShmNameFor(%q) = %q, want %q", c.path, got, c.want)
		}
		if want := "/" + strings.ReplaceAll(c.path, "/", "_"); got != want {
			t.Errorf("ShmNameFor(%q) = %q, disagrees with derivation property %q", c.path, got, want)
		}
	}
}

func TestShmNameForNeverExceedsBound(t *testing.T) {
	path := strings.Repeat("a", MaxPathLen)
	name := ShmNameFor(path)
	if len(name) > MaxPathLen+1 {
		t.Fatalf("ShmNameFor produced %d bytes, want <= %d", len(name), MaxPathLen+1)
	}
}

func TestEntrySetPathTruncatesAndNULTerminates(t *testing.T) {
	var e Entry
	long := strings.Repeat("x", MaxPathLen+50)
	e.setPath(long)
	if e.pathLen != MaxPathLen {
		t.Fatalf("pathLen = %d, want %d", e.pathLen, MaxPathLen)
	}
	if e.path[MaxPathLen] != 0 {
		t.Fatalf("path not NUL-terminated at MaxPathLen")
	}
	if got := e.Path(); got != long[:MaxPathLen] {
		t.Fatalf("Path() = %q, want %q", got, long[:MaxPathLen])
	}
}

func TestRoundUp4K(t *testing.T) {
	cases := []struct {
		in   int64
		want uint64
	}{
		{0, 0},
		{1, 4096},
		{4096, 4096},
		{4097, 8192},
		{-5, 0},
	}
	for _, c := range cases {
		if got := roundUp4K(c.in); got != c.want {
			t.Errorf("roundUp4K(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
