/*
 * rv32emu - Host I/O bridge for the emulated UART
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package hostio bridges the guest UART to the host terminal: a
// non-blocking "byte ready" probe, a blocking-free byte read, a byte
// write flushed immediately, and the monotonic microsecond clock the CLINT
// timer is sampled from. The step engine itself never blocks; all of that
// lives here, confined to a single background reader goroutine, the same
// shape as a raw-mode terminal bridge feeding bytes into an MMIO device.
package hostio

import (
	"bufio"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Bridge is everything the UART device needs from the host.
type Bridge interface {
	KBHit() bool
	ReadByte() (byte, bool)
	WriteByte(b byte)
	NowMicros() uint64
}

// Terminal is a Bridge backed by the process's real stdin/stdout, with
// stdin switched to raw, non-blocking mode so the UART's "is a key
// waiting" register never has to block the hart.
type Terminal struct {
	mu      sync.Mutex
	pending []byte
	out     *bufio.Writer

	fd           int
	nonblockSet  bool
	oldTermState *term.State

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once

	start time.Time
}

// NewTerminal constructs a host bridge and starts the background stdin
// reader. Call Stop to restore the terminal to its original mode.
func NewTerminal() *Terminal {
	t := &Terminal{
		out:    bufio.NewWriter(os.Stdout),
		fd:     int(os.Stdin.Fd()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		start:  time.Now(),
	}
	t.start1()
	return t
}

func (t *Terminal) start1() {
	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		// Not a real terminal (e.g. piped stdin in a test harness); run
		// without raw mode and without the background reader, so KBHit
		// never reports a waiting byte.
		close(t.done)
		return
	}
	t.oldTermState = oldState

	if err := syscall.SetNonblock(t.fd, true); err != nil {
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
		close(t.done)
		return
	}
	t.nonblockSet = true

	go t.run()
}

func (t *Terminal) run() {
	defer close(t.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, err := syscall.Read(t.fd, buf)
		if n > 0 {
			t.mu.Lock()
			t.pending = append(t.pending, buf[0])
			t.mu.Unlock()
		}
		switch {
		case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK:
			time.Sleep(2 * time.Millisecond)
		case err != nil:
			return
		case n == 0:
			time.Sleep(2 * time.Millisecond)
		}
	}
}

// Stop terminates the reader goroutine and restores the host terminal.
func (t *Terminal) Stop() {
	t.stopped.Do(func() { close(t.stopCh) })
	<-t.done
	_ = t.out.Flush()
	if t.nonblockSet {
		_ = syscall.SetNonblock(t.fd, false)
		t.nonblockSet = false
	}
	if t.oldTermState != nil {
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
	}
}

// KBHit reports whether a byte is waiting to be read.
func (t *Terminal) KBHit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// ReadByte consumes and returns the next pending byte, if any.
func (t *Terminal) ReadByte() (byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return 0, false
	}
	b := t.pending[0]
	t.pending = t.pending[1:]
	return b, true
}

// WriteByte writes one console output byte and flushes immediately — the
// guest UART has no internal buffering to hide latency behind.
func (t *Terminal) WriteByte(b byte) {
	_ = t.out.WriteByte(b)
	_ = t.out.Flush()
}

// NowMicros returns elapsed microseconds since the bridge was created.
// Guaranteed monotonic because it is derived from time.Since, which uses
// the runtime's monotonic clock reading.
func (t *Terminal) NowMicros() uint64 {
	return uint64(time.Since(t.start) / time.Microsecond)
}
