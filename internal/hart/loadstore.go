package hart

import "github.com/Mr-Bossman/rv32emu/internal/mmio"

// load reads a width-byte value at guest address addr, sign- or
// zero-extending per signed. ok is false when addr lies outside both RAM
// and the MMIO window, in which case the caller raises a load fault with
// addr as the trap value.
func (h *Hart) load(addr uint32, width uint32, signed bool) (val uint32, ok bool) {
	if addr >= BaseOfs {
		ofs := addr - BaseOfs
		if h.RAM.InBounds(ofs, width) {
			switch width {
			case 1:
				v := h.RAM.LoadByte(ofs)
				if signed {
					return uint32(int32(int8(v))), true
				}
				return uint32(v), true
			case 2:
				v := h.RAM.LoadHalf(ofs)
				if signed {
					return uint32(int32(int16(v))), true
				}
				return uint32(v), true
			case 4:
				return h.RAM.LoadWord(ofs), true
			}
		}
	}
	if mmio.InRange(addr) {
		return h.Bus.Load(addr), true
	}
	return 0, false
}

// store writes a width-byte value to guest address addr. Per spec.md's
// preserved quirk, SB/SH silently truncate v to the low 1 or 2 bytes —
// Go's numeric conversions do this for free. ok is false when addr lies
// outside both RAM and the MMIO window.
func (h *Hart) store(addr uint32, width uint32, v uint32) (ok bool) {
	if addr >= BaseOfs {
		ofs := addr - BaseOfs
		if h.RAM.InBounds(ofs, width) {
			switch width {
			case 1:
				h.RAM.StoreByte(ofs, byte(v))
			case 2:
				h.RAM.StoreHalf(ofs, uint16(v))
			case 4:
				h.RAM.StoreWord(ofs, v)
			}
			return true
		}
	}
	if mmio.InRange(addr) {
		h.Bus.Store(addr, v)
		return true
	}
	return false
}
