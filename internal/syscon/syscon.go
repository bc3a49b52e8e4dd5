/*
 * rv32emu - SYSCON status classification
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

// Package syscon classifies the Status a guest store to the reboot/
// poweroff register produces. The store itself short-circuits inside
// hart.Step (spec.md §4.4's routing table requires it to abort the batch
// before any trap or writeback processing runs, which only the step
// engine itself can do); this package gives the driver loop a name for
// what came back instead of every caller re-deriving it from raw hex.
package syscon

import "github.com/Mr-Bossman/rv32emu/internal/hart"

// Well-known status codes a guest can write to the SYSCON register.
// Anything else is an implementation-defined halt reason (spec.md §4.4).
const (
	CodeReboot   uint32 = 0x7777
	CodePoweroff uint32 = 0x5555
)

// IsReboot reports whether status is the guest requesting a warm reset.
func IsReboot(status hart.Status) bool {
	return status == hart.StatusReboot
}

// IsPoweroff reports whether status is the conventional poweroff code.
// spec.md §3 calls this outcome "HALT" in its abstract status list but
// §8's own end-to-end scenario shows the driver observes the literal
// stored value (0x5555), not a symbolic constant — this function is the
// bridge between the two.
func IsPoweroff(status hart.Status) bool {
	return uint32(status) == CodePoweroff
}

// IsHalt reports whether status came from a SYSCON store at all, i.e.
// anything Step returned other than StatusContinue or StatusWFI.
func IsHalt(status hart.Status) bool {
	return status != hart.StatusContinue && status != hart.StatusWFI
}
