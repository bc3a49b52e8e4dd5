package hart

// AMO funct5 values (ins[31:27]).
const (
	amoLR   = 0x02
	amoSC   = 0x03
	amoSwap = 0x01
	amoAdd  = 0x00
	amoXor  = 0x04
	amoAnd  = 0x0c
	amoOr   = 0x08
	amoMin  = 0x10
	amoMax  = 0x14
	amoMinU = 0x18
	amoMaxU = 0x1c
)

// execAMO implements opcode 0101111 (spec.md §4.5, the reference's
// commented-out op_amo wired back in per Open Question (b)). Only the
// word-width form (funct3 == 2) is valid; RV32 has no AMO.D.
func (h *Hart) execAMO(ins uint32, curPC uint32) (trap, rval, rdNum uint32, sysconVal uint32, sysconHit bool) {
	if funct3(ins) != 0x2 {
		return causeIllegalInstr + 1, curPC, 0, 0, false
	}

	addr := h.Regs[rs1(ins)]
	f5 := funct7(ins) >> 2
	rdNum = rd(ins)

	old, ok := h.load(addr, 4, false)
	if !ok {
		// spec.md §4.5: out-of-range AMO addresses always fault as
		// store/AMO access fault (cause 7), even for the initial load.
		return causeStoreFault + 1, addr, 0, 0, false
	}

	if f5 == amoLR {
		return 0, old, rdNum, 0, false
	}

	var newVal uint32
	if f5 == amoSC {
		newVal = h.Regs[rs2(ins)]
	} else {
		newVal = amoOp(f5, old, h.Regs[rs2(ins)])
	}

	if !h.store(addr, 4, newVal) {
		return causeStoreFault + 1, addr, 0, 0, false
	}

	if f5 == amoSC {
		// Single-hart: SC.W always succeeds, so rd gets the success code 0.
		return 0, 0, rdNum, 0, false
	}
	return 0, old, rdNum, 0, false
}

// amoOp applies an AMO (opcode 0x2f, width always word) to the current
// memory word and the register operand, returning the value to store
// back to memory. LR/SC are handled by the caller: this build is
// single-hart and tracks no reservation, so SC.W always succeeds.
func amoOp(funct5 uint32, mem, reg uint32) uint32 {
	switch funct5 {
	case amoSwap:
		return reg
	case amoAdd:
		return mem + reg
	case amoXor:
		return mem ^ reg
	case amoAnd:
		return mem & reg
	case amoOr:
		return mem | reg
	case amoMin:
		if int32(mem) < int32(reg) {
			return mem
		}
		return reg
	case amoMax:
		if int32(mem) > int32(reg) {
			return mem
		}
		return reg
	case amoMinU:
		if mem < reg {
			return mem
		}
		return reg
	case amoMaxU:
		if mem > reg {
			return mem
		}
		return reg
	}
	return mem
}
