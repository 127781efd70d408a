// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package floader

import "golang.org/x/sys/unix"

// DefaultMaxConsecutiveFailures is the number of consecutive failing
// completions the responder tolerates before crash-stopping. Section 7 of
// the design calls this a "source-specified magic number" implementers may
// expose as a configuration option; this module does so via
// [Config.MaxConsecutiveFailures].
const DefaultMaxConsecutiveFailures = 32

// Config configures a [Loader] before [Init].
//
// Config provides a fluent API mirroring this module's sibling lock-free
// queue library's Builder/Options pattern: chain setters, then pass the
// result to [Init].
type Config struct {
	queueDepth     int
	nWorkers       int
	dispatchN      int
	maxIdleIters   int
	openFlags      int
	maxConsecFails int
}

// NewConfig creates a Config with the given queue depth (entries per
// worker), worker count, and sort/submit batch target (dispatchN).
//
// Panics if any of queueDepth, nWorkers, dispatchN is not positive, or if
// dispatchN exceeds nWorkers*queueDepth (the maximum number of requests that
// can ever be simultaneously staged).
func NewConfig(queueDepth, nWorkers, dispatchN int) *Config {
	if queueDepth <= 0 {
		panic("floader: queueDepth must be > 0")
	}
	if nWorkers <= 0 {
		panic("floader: nWorkers must be > 0")
	}
	if dispatchN <= 0 {
		panic("floader: dispatchN must be > 0")
	}
	if dispatchN > nWorkers*queueDepth {
		panic("floader: dispatchN must not exceed nWorkers*queueDepth")
	}
	return &Config{
		queueDepth:     queueDepth,
		nWorkers:       nWorkers,
		dispatchN:      dispatchN,
		maxIdleIters:   1,
		openFlags:      0,
		maxConsecFails: DefaultMaxConsecutiveFailures,
	}
}

// MaxIdleIters sets the per-worker idle-iteration tolerance before the
// reader eagerly submits a partial batch. Submission triggers once
// idle_iters exceeds maxIdleIters*nWorkers. Default 1.
func (c *Config) MaxIdleIters(n int) *Config {
	if n < 0 {
		panic("floader: maxIdleIters must be >= 0")
	}
	c.maxIdleIters = n
	return c
}

// Direct ORs O_DIRECT into the loader's open(2) flags. O_DIRECT is expected
// and supported; unbuffered reads bypass the page cache so that the LBA
// sort's sequentializing effect is visible at the device.
func (c *Config) Direct() *Config {
	c.openFlags |= unix.O_DIRECT
	return c
}

// ExtraOpenFlags ORs additional bits into the loader's open(2) flags.
// O_WRONLY must not be set; flags is combined with O_RDONLY.
func (c *Config) ExtraOpenFlags(flags int) *Config {
	if flags&unix.O_WRONLY != 0 {
		panic("floader: O_WRONLY must not be set")
	}
	c.openFlags |= flags
	return c
}

// MaxConsecutiveFailures overrides [DefaultMaxConsecutiveFailures]: the
// number of consecutive failing completions the responder tolerates before
// returning [ErrCompletionStreamWedged] from [Start].
func (c *Config) MaxConsecutiveFailures(n int) *Config {
	if n <= 0 {
		panic("floader: maxConsecutiveFailures must be > 0")
	}
	c.maxConsecFails = n
	return c
}

// ringCapacity returns the io_uring submission/completion ring depth: one
// slot per entry that could ever be simultaneously in flight.
func (c *Config) ringCapacity() int {
	return c.nWorkers * c.queueDepth
}
