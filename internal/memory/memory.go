/*
 * rv32emu - Flat guest RAM
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

// Package memory implements the flat, byte-addressable guest RAM backing a
// single RV32 hart. Guest physical address base_ofs maps to offset 0 of the
// underlying buffer; everything above that is a plain little-endian byte
// array with no translation.
package memory

// RAM is an owned, contiguous byte buffer representing guest physical
// memory. It performs no device dispatch of its own: callers first test
// whether an offset falls within Size and otherwise take the MMIO path.
type RAM struct {
	buf []byte
}

// New allocates RAM of the given size in bytes.
func New(size uint32) *RAM {
	return &RAM{buf: make([]byte, size)}
}

// Size returns the RAM size in bytes.
func (r *RAM) Size() uint32 {
	return uint32(len(r.buf))
}

// Bytes exposes the underlying buffer for the image loader. Callers must
// not retain slices across a Reset.
func (r *RAM) Bytes() []byte {
	return r.buf
}

// Reset zeroes the entire buffer, as on a SYSCON reboot.
func (r *RAM) Reset() {
	clear(r.buf)
}

// InBounds reports whether a width-byte access starting at ofs lies
// entirely within RAM.
func (r *RAM) InBounds(ofs, width uint32) bool {
	if width == 0 || ofs > uint32(len(r.buf)) {
		return false
	}
	return uint64(ofs)+uint64(width) <= uint64(len(r.buf))
}

// LoadByte reads one byte at ofs without bounds checking; callers must
// have verified InBounds.
func (r *RAM) LoadByte(ofs uint32) uint8 {
	return r.buf[ofs]
}

// LoadHalf reads a little-endian 16-bit value at ofs. ofs need not be
// 2-aligned — guest loads are never trapped for misalignment in RAM
// (spec: "host must accept little-endian unaligned").
func (r *RAM) LoadHalf(ofs uint32) uint16 {
	return uint16(r.buf[ofs]) | uint16(r.buf[ofs+1])<<8
}

// LoadWord reads a little-endian 32-bit value at ofs.
func (r *RAM) LoadWord(ofs uint32) uint32 {
	return uint32(r.buf[ofs]) |
		uint32(r.buf[ofs+1])<<8 |
		uint32(r.buf[ofs+2])<<16 |
		uint32(r.buf[ofs+3])<<24
}

// StoreByte writes one byte at ofs.
func (r *RAM) StoreByte(ofs uint32, v uint8) {
	r.buf[ofs] = v
}

// StoreHalf writes a little-endian 16-bit value at ofs.
func (r *RAM) StoreHalf(ofs uint32, v uint16) {
	r.buf[ofs] = byte(v)
	r.buf[ofs+1] = byte(v >> 8)
}

// StoreWord writes a little-endian 32-bit value at ofs.
func (r *RAM) StoreWord(ofs uint32, v uint32) {
	r.buf[ofs] = byte(v)
	r.buf[ofs+1] = byte(v >> 8)
	r.buf[ofs+2] = byte(v >> 16)
	r.buf[ofs+3] = byte(v >> 24)
}
