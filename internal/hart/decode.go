package hart

// Instruction field extraction and sign-extended immediate decoding for
// the R/I/S/B/U/J formats. Each decode* helper returns the immediate
// already sign-extended into an int32, matching the values the ALU and
// branch/jump handlers consume directly.

func rd(ins uint32) uint32     { return (ins >> 7) & 0x1f }
func funct3(ins uint32) uint32 { return (ins >> 12) & 0x7 }
func rs1(ins uint32) uint32    { return (ins >> 15) & 0x1f }
func rs2(ins uint32) uint32    { return (ins >> 20) & 0x1f }
func funct7(ins uint32) uint32 { return (ins >> 25) & 0x7f }
func opcode(ins uint32) uint32 { return ins & 0x7f }

func decodeI(ins uint32) int32 {
	return int32(ins) >> 20
}

func decodeS(ins uint32) int32 {
	imm := ((ins >> 7) & 0x1f) | ((ins >> 20) & 0xfe0)
	return signExtend(imm, 12)
}

func decodeB(ins uint32) int32 {
	imm := ((ins >> 7) & 0x1e) |
		((ins >> 20) & 0x7e0) |
		((ins << 4) & 0x800) |
		((ins >> 19) & 0x1000)
	return signExtend(imm, 13)
}

func decodeJ(ins uint32) int32 {
	imm := ((ins >> 20) & 0x7fe) |
		((ins >> 9) & 0x800) |
		(ins & 0xff000) |
		((ins >> 11) & 0x100000)
	return signExtend(imm, 21)
}

// signExtend treats the low `bits` bits of v as a two's-complement value
// and sign-extends to a full int32.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
