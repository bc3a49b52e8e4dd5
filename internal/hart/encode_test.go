package hart

// Minimal RV32 instruction encoders used only by this package's tests, so
// test cases can be written as assembly-shaped helper calls instead of
// raw hex words.

func encR(opc, f3, f7, rdN, rs1N, rs2N uint32) uint32 {
	return f7<<25 | rs2N<<20 | rs1N<<15 | f3<<12 | rdN<<7 | opc
}

func encI(opc, f3, rdN, rs1N uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1N<<15 | f3<<12 | rdN<<7 | opc
}

func encS(opc, f3, rs1N, rs2N uint32, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>5)&0x7f)<<25 | rs2N<<20 | rs1N<<15 | f3<<12 | (u&0x1f)<<7 | opc
}

func encB(opc, f3, rs1N, rs2N uint32, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>12)&1)<<31 | ((u>>5)&0x3f)<<25 | rs2N<<20 | rs1N<<15 | f3<<12 |
		((u>>1)&0xf)<<8 | ((u>>11)&1)<<7 | opc
}

// encU takes imm as the 20-bit U-type immediate the way assembly syntax
// writes it (e.g. "lui x1, 0x80000"), not pre-shifted into position.
func encU(opc, rdN uint32, imm uint32) uint32 {
	return (imm << 12) | rdN<<7 | opc
}

func encJ(opc, rdN uint32, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>20)&1)<<31 | ((u>>1)&0x3ff)<<21 | ((u>>11)&1)<<20 |
		((u>>12)&0xff)<<12 | rdN<<7 | opc
}

func insLUI(rdN uint32, imm uint32) uint32           { return encU(opLUI, rdN, imm) }
func insAUIPC(rdN uint32, imm uint32) uint32         { return encU(opAUIPC, rdN, imm) }
func insJAL(rdN uint32, imm int32) uint32            { return encJ(opJAL, rdN, imm) }
func insJALR(rdN, rs1N uint32, imm int32) uint32     { return encI(opJALR, 0, rdN, rs1N, imm) }
func insADDI(rdN, rs1N uint32, imm int32) uint32     { return encI(opImm, 0, rdN, rs1N, imm) }
func insSW(rs1N, rs2N uint32, imm int32) uint32      { return encS(opStore, 0x2, rs1N, rs2N, imm) }
func insSB(rs1N, rs2N uint32, imm int32) uint32      { return encS(opStore, 0x0, rs1N, rs2N, imm) }
func insLW(rdN, rs1N uint32, imm int32) uint32       { return encI(opLoad, 0x2, rdN, rs1N, imm) }
func insBEQ(rs1N, rs2N uint32, imm int32) uint32     { return encB(opBranch, 0x0, rs1N, rs2N, imm) }
func insADD(rdN, rs1N, rs2N uint32) uint32           { return encR(opReg, 0x0, 0x00, rdN, rs1N, rs2N) }
func insAMO(f5, rdN, rs1N, rs2N uint32) uint32 {
	return encR(opAMO, 0x2, f5<<2, rdN, rs1N, rs2N)
}
func insCSRRW(rdN, rs1N uint32, csr uint32) uint32 { return encI(opSystem, 0x1, rdN, rs1N, int32(csr)) }
func insCSRRS(rdN, rs1N uint32, csr uint32) uint32 { return encI(opSystem, 0x2, rdN, rs1N, int32(csr)) }
func insWFI() uint32                               { return encI(opSystem, 0, 0, 0, funct12WFI) }
func insMRET() uint32                              { return encI(opSystem, 0, 0, 0, funct12MRET) }
func insECALL() uint32                             { return encI(opSystem, 0, 0, 0, funct12ECALL) }
func insIllegal() uint32                            { return 0 }
