/*
 * rv32emu - 16550-style console UART
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

// Package uart implements the guest-visible slice of a 16550-style serial
// port: the data register and the line-status register, routed through
// the mmio bus to whatever host bridge the CLI wired up. Everything else
// a real 16550 exposes (baud divisor latches, FIFO control, modem
// control) has no guest kernel consumer here and is left unmodeled.
package uart

import (
	"log/slog"

	"github.com/Mr-Bossman/rv32emu/internal/hostio"
)

// Guest register offsets within the device's MMIO window.
const (
	RegData       uint32 = 0x1000_0000
	RegLineStatus uint32 = 0x1000_0005
)

// lineStatusReady is the line-status value with no key waiting: transmit
// holding register and transmitter both report empty.
const lineStatusReady uint32 = 0x60

// lineStatusDataReady is ORed in when a byte is waiting to be read.
const lineStatusDataReady uint32 = 0x01

// UART bridges guest loads/stores at 0x1000_0000 to a host I/O bridge.
type UART struct {
	bridge hostio.Bridge
	log    *slog.Logger
}

// New wires a UART device to host, the terminal bridge supplying
// KBHit/ReadByte/WriteByte.
func New(host hostio.Bridge, log *slog.Logger) *UART {
	if log == nil {
		log = slog.Default()
	}
	return &UART{bridge: host, log: log}
}

// Load implements mmio.Device. Per spec.md §4.4: reading the data
// register consumes a pending byte if one is ready, else returns 0;
// reading the line-status register reports readiness plus whether a key
// is waiting. Any other address in this device's window reads as 0.
func (u *UART) Load(addr uint32) uint32 {
	switch addr {
	case RegData:
		if b, ok := u.bridge.ReadByte(); ok {
			return uint32(b)
		}
		return 0
	case RegLineStatus:
		status := lineStatusReady
		if u.bridge.KBHit() {
			status |= lineStatusDataReady
		}
		return status
	}
	return 0
}

// Store implements mmio.Device. Only the data register accepts writes;
// the low byte of val goes to host stdout. Every other address in this
// device's window discards the write.
func (u *UART) Store(addr uint32, val uint32) {
	if addr != RegData {
		return
	}
	u.bridge.WriteByte(byte(val))
}
