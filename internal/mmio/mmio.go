/*
 * rv32emu - Memory-mapped I/O dispatch
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

// Package mmio routes guest loads and stores that miss the RAM fast path
// to the registered peripheral that owns the address: the UART or the
// CLINT timer. SYSCON word stores are intercepted by the hart before they
// reach the bus. It mirrors the region-table dispatch common to
// bus implementations in this corpus, generalized from byte callbacks to
// word-wide Load/Store.
package mmio

// Device is implemented by every memory-mapped peripheral. Loads and
// stores are always word-wide; devices that expose byte registers (the
// UART) decide internally how to react to a 32-bit access.
type Device interface {
	Load(addr uint32) uint32
	Store(addr uint32, val uint32)
}

type region struct {
	start, end uint32 // half-open [start, end)
	dev        Device
	name       string
}

// Bus holds the registered device windows for the guest address range
// spec.md §6 reserves for MMIO: [0x1000_0000, 0x1200_0000).
type Bus struct {
	regions []region
}

// NewBus creates an empty device bus.
func NewBus() *Bus {
	return &Bus{}
}

// Register maps a device into [start, end). Overlapping registrations are
// a programming error and panic immediately rather than silently shadow
// one device with another.
func (b *Bus) Register(name string, start, end uint32, dev Device) {
	for _, r := range b.regions {
		if start < r.end && end > r.start {
			panic("mmio: region " + name + " overlaps " + r.name)
		}
	}
	b.regions = append(b.regions, region{start: start, end: end, dev: dev, name: name})
}

// find returns the device owning addr, or nil if the address falls in the
// MMIO range but has nothing registered there.
func (b *Bus) find(addr uint32) Device {
	for _, r := range b.regions {
		if addr >= r.start && addr < r.end {
			return r.dev
		}
	}
	return nil
}

// Load reads addr from whichever device owns it, or 0 if nothing is
// mapped there (spec.md §4.4: "other in [0x1000_0000, 0x1200_0000): ignored;
// load returns 0").
func (b *Bus) Load(addr uint32) uint32 {
	if dev := b.find(addr); dev != nil {
		return dev.Load(addr)
	}
	return 0
}

// Store writes addr to whichever device owns it, discarding the write if
// nothing is mapped there.
func (b *Bus) Store(addr uint32, val uint32) {
	if dev := b.find(addr); dev != nil {
		dev.Store(addr, val)
	}
}

// InRange reports whether addr falls within this bus's MMIO window at all
// (used by the hart to decide RAM-fast-path vs device dispatch vs fault).
func InRange(addr uint32) bool {
	return addr >= WindowStart && addr < WindowEnd
}

// Guest address window reserved for devices, per spec.md §6.
const (
	WindowStart uint32 = 0x1000_0000
	WindowEnd   uint32 = 0x1200_0000
)

// FuncDevice adapts a pair of plain closures into a Device, for small
// windows that don't warrant their own named type.
type FuncDevice struct {
	OnLoad  func(addr uint32) uint32
	OnStore func(addr uint32, val uint32)
}

func (f FuncDevice) Load(addr uint32) uint32 {
	if f.OnLoad == nil {
		return 0
	}
	return f.OnLoad(addr)
}

func (f FuncDevice) Store(addr uint32, val uint32) {
	if f.OnStore != nil {
		f.OnStore(addr, val)
	}
}
