/*
 * rv32emu - Kernel image and device-tree loader
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

// Package image places a flat kernel binary and a device tree blob into
// guest RAM and returns a hart whose register a1 holds the DTB guest
// address.
// The reference links a compiled-in 64 MiB board DTB; this build can't
// link an external binary asset, so when no DTB path is given it
// synthesizes a minimal one with buildDefaultDTB instead.
package image

import (
	"fmt"
	"os"

	"github.com/Mr-Bossman/rv32emu/internal/hart"
	"github.com/Mr-Bossman/rv32emu/internal/memory"
)

// dtbRAMSizeOffset is the byte offset of the memory node's size cell in
// the synthesized DTB, and the offset the reference patches in its
// linked board DTB too.
const dtbRAMSizeOffset = 0x13C

// dtbRAMSizeMarker is the placeholder value buildDefaultDTB plants at
// dtbRAMSizeOffset and Load looks for before patching in the real size.
const dtbRAMSizeMarker = 0x00C0FF03

// Options configures a single Load call.
type Options struct {
	KernelPath string
	DTBPath    string // empty: synthesize a default DTB. "disable": no DTB.
	RAMBytes   uint32
}

// Load allocates RAM of the requested size, places the kernel image at
// guest offset 0, places a DTB (synthesized or supplied) near the top of
// RAM, and returns a fresh Hart reset with the boot contract spec.md §6
// requires: a1 holding the DTB's guest address, or 0 if DTB is disabled.
func Load(opt Options) (*hart.Hart, *memory.RAM, error) {
	kernel, err := os.ReadFile(opt.KernelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("image: %q not found: %w", opt.KernelPath, err)
	}
	if uint32(len(kernel)) > opt.RAMBytes {
		return nil, nil, fmt.Errorf("image: kernel (%d bytes) does not fit in %d bytes of RAM",
			len(kernel), opt.RAMBytes)
	}

	ram := memory.New(opt.RAMBytes)
	copy(ram.Bytes(), kernel)

	var dtbAddr uint32
	switch opt.DTBPath {
	case "disable":
		dtbAddr = 0
	case "":
		dtb := buildDefaultDTB(opt.RAMBytes)
		dtbAddr, err = placeDTB(ram, dtb, true)
		if err != nil {
			return nil, nil, err
		}
	default:
		dtb, err := os.ReadFile(opt.DTBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("image: could not open dtb %q: %w", opt.DTBPath, err)
		}
		dtbAddr, err = placeDTB(ram, dtb, false)
		if err != nil {
			return nil, nil, err
		}
	}

	h := hart.New(ram, nil, nil)
	h.Reset(dtbAddr)
	return h, ram, nil
}

// placeDTB copies dtb to the top of ram, patching the RAM-size marker
// cell first when patch is true (only done for the synthesized default
// DTB, never for a guest-supplied one), and returns its guest address.
func placeDTB(ram *memory.RAM, dtb []byte, patch bool) (uint32, error) {
	total := ram.Size()
	if uint32(len(dtb)) > total {
		return 0, fmt.Errorf("image: dtb (%d bytes) does not fit in %d bytes of RAM", len(dtb), total)
	}
	ofs := total - uint32(len(dtb))

	if patch && len(dtb) >= dtbRAMSizeOffset+4 {
		// The reference tests the cell as a native (little-endian) word
		// read, then writes the RAM offset byte-swapped into big-endian
		// order — this is what a big-endian devicetree cell looks like
		// from an little-endian host's raw byte perspective.
		if le32(dtb, dtbRAMSizeOffset) == dtbRAMSizeMarker {
			putBE32(dtb, dtbRAMSizeOffset, ofs)
		}
	}

	copy(ram.Bytes()[ofs:], dtb)
	return hart.BaseOfs + ofs, nil
}

func le32(b []byte, ofs int) uint32 {
	return uint32(b[ofs]) | uint32(b[ofs+1])<<8 | uint32(b[ofs+2])<<16 | uint32(b[ofs+3])<<24
}

func putBE32(b []byte, ofs int, v uint32) {
	b[ofs] = byte(v >> 24)
	b[ofs+1] = byte(v >> 16)
	b[ofs+2] = byte(v >> 8)
	b[ofs+3] = byte(v)
}
