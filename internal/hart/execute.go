package hart

// execute decodes and runs one instruction fetched from curPC. Returns:
//   - trap: 0 for no trap, else the step-loop trap code (cause+1 for a
//     synchronous exception, or an MSB-set interrupt cause).
//   - rval: either the value to write to rd (when trap == 0 and rd != 0),
//     or the effective address to place in mtval (when trap != 0 and the
//     cause is a load/store/AMO fault).
//   - rdNum: destination register, 0 when the instruction has none (or
//     targets x0, which is handled identically per spec.md §4.1 step 4).
//   - sysconVal/sysconHit: set when this instruction is a store to the
//     SYSCON register; the caller must return Status(sysconVal) from Step
//     immediately without any further trap or writeback processing.
func (h *Hart) execute(ins uint32, curPC uint32) (trap, rval, rdNum uint32, sysconVal uint32, sysconHit bool) {
	op := opcode(ins)
	rdNum = rd(ins)

	switch op {
	case opLUI:
		rval = ins & 0xfffff000
		return 0, rval, rdNum, 0, false

	case opAUIPC:
		rval = curPC + (ins & 0xfffff000)
		return 0, rval, rdNum, 0, false

	case opJAL:
		rval = curPC + 4
		h.setPC(curPC + uint32(decodeJ(ins)) - 4)
		return 0, rval, rdNum, 0, false

	case opJALR:
		target := (h.Regs[rs1(ins)] + uint32(decodeI(ins))) &^ 1
		rval = curPC + 4
		h.setPC(target - 4)
		return 0, rval, rdNum, 0, false

	case opBranch:
		rdNum = 0
		taken, ok := branchTaken(funct3(ins), h.Regs[rs1(ins)], h.Regs[rs2(ins)])
		if !ok {
			return causeIllegalInstr + 1, curPC, 0, 0, false
		}
		if taken {
			h.setPC(curPC + uint32(decodeB(ins)) - 4)
		}
		return 0, 0, 0, 0, false

	case opLoad:
		return h.execLoad(ins, rdNum)

	case opStore:
		return h.execStore(ins, curPC)

	case opImm:
		rval = aluImm(funct3(ins), h.Regs[rs1(ins)], decodeI(ins), ins)
		return 0, rval, rdNum, 0, false

	case opReg:
		result, ok := aluReg(funct3(ins), funct7(ins), h.Regs[rs1(ins)], h.Regs[rs2(ins)])
		if !ok {
			return causeIllegalInstr + 1, curPC, 0, 0, false
		}
		return 0, result, rdNum, 0, false

	case opFence:
		rdNum = 0
		return 0, 0, 0, 0, false

	case opAMO:
		return h.execAMO(ins, curPC)

	case opSystem:
		return h.execSystem(ins, curPC)
	}

	return causeIllegalInstr + 1, curPC, 0, 0, false
}

func (h *Hart) execLoad(ins uint32, rdNum uint32) (trap, rval, rd2 uint32, sysconVal uint32, sysconHit bool) {
	addr := h.Regs[rs1(ins)] + uint32(decodeI(ins))
	f3 := funct3(ins)

	var width uint32
	var signed bool
	switch f3 {
	case 0x0:
		width, signed = 1, true // LB
	case 0x1:
		width, signed = 2, true // LH
	case 0x2:
		width, signed = 4, false // LW
	case 0x4:
		width, signed = 1, false // LBU
	case 0x5:
		width, signed = 2, false // LHU
	default:
		return causeIllegalInstr + 1, h.PC(), 0, 0, false
	}

	v, ok := h.load(addr, width, signed)
	if !ok {
		return causeLoadFault + 1, addr, 0, 0, false
	}
	return 0, v, rdNum, 0, false
}

func (h *Hart) execStore(ins uint32, curPC uint32) (trap, rval, rdNum uint32, sysconVal uint32, sysconHit bool) {
	addr := h.Regs[rs1(ins)] + uint32(decodeS(ins))
	v := h.Regs[rs2(ins)]
	f3 := funct3(ins)

	var width uint32
	switch f3 {
	case 0x0:
		width = 1 // SB
	case 0x1:
		width = 2 // SH
	case 0x2:
		width = 4 // SW
	default:
		return causeIllegalInstr + 1, curPC, 0, 0, false
	}

	if addr == sysconAddr && width == 4 {
		return 0, 0, 0, v, true
	}

	if !h.store(addr, width, v) {
		return causeStoreFault + 1, addr, 0, 0, false
	}
	return 0, 0, 0, 0, false
}

func (h *Hart) execSystem(ins uint32, curPC uint32) (trap, rval, rdNum uint32, sysconVal uint32, sysconHit bool) {
	f3 := funct3(ins)
	if f3 == sysPriv {
		if t := h.doPriv(ins); t != 0 {
			return t, curPC, 0, 0, false
		}
		return 0, 0, 0, 0, false
	}

	rdNum = rd(ins)
	old, ok := h.doCSR(ins, f3)
	if !ok {
		return causeIllegalInstr + 1, curPC, 0, 0, false
	}
	return 0, old, rdNum, 0, false
}
