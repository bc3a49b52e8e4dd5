package hart

// RISC-V exception cause codes this implementation can raise. There is no
// S-mode, PMP, or debug module, so the causes reachable here are exactly
// the ones spec.md §7 lists.
const (
	causeInstrMisaligned = 0
	causeInstrFault      = 1
	causeIllegalInstr    = 2
	causeBreakpoint      = 3
	causeLoadMisaligned  = 4
	causeLoadFault       = 5
	causeStoreMisaligned = 6
	causeStoreFault      = 7
	causeECallU          = 8
	causeECallM          = 11
)

// mtiCause is the machine timer interrupt's mcause value: MSB set, cause
// field 7, stored into mcause verbatim rather than offset by one.
const mtiCause = 0x8000_0007

// mstatus bit position this implementation reads or writes (MIE); MPIE is
// bit 7, folded directly into the trap-entry formula below rather than
// given its own named constant.
const mstatusMIE = 1 << 3

// raise delivers a trap. trap is the raw step-loop trap code: 0 means "no
// trap" (callers never call raise with 0), 1..12 means "exception, cause =
// trap-1", and a value with the MSB set is an interrupt cause stored
// verbatim into mcause. rval is the value to place in mtval for a
// synchronous exception when the cause is a load/store/AMO fault; curPC
// is the address of the instruction that was being executed when the
// trap was detected.
func (h *Hart) raise(trap uint32, rval uint32, curPC uint32) {
	isInterrupt := trap&0x8000_0000 != 0

	pc := curPC
	if isInterrupt {
		// The instruction that ran this cycle may itself have been a
		// jump/branch, in which case h.PC() already holds target-4; use
		// that (not the fetch address) so the +4 below resolves to the
		// real next instruction rather than re-running a taken branch.
		pc = h.PC()
		h.CSR[CSRExtraFlags] &^= flagIrqEnSnap
		h.CSR[CSRMcause] = trap
		h.CSR[CSRMtval] = 0
		pc += 4 // interrupt mepc points at the next instruction, not the current one
	} else {
		cause := trap - 1
		h.CSR[CSRMcause] = cause
		if isLoadStoreAMOFault(cause) {
			h.CSR[CSRMtval] = rval
		} else {
			h.CSR[CSRMtval] = pc
		}
	}

	h.CSR[CSRMepc] = pc

	status := h.CSR[CSRMstatus]
	extraflags := h.CSR[CSRExtraFlags]
	h.CSR[CSRMstatus] = ((status & mstatusMIE) << 4) | ((extraflags & 0x3) << 11)

	h.setPC(h.CSR[CSRMtvec] - 4)

	if !isInterrupt {
		h.CSR[CSRExtraFlags] |= 0x3 // switch to machine mode
	}
}

// isLoadStoreAMOFault reports whether cause is one of the four
// address-related causes for which mtval carries the effective address
// rather than the faulting pc (spec.md §4.3: "causes 5..8" in the trap's
// 1-based encoding, i.e. mcause 4..7 here).
func isLoadStoreAMOFault(cause uint32) bool {
	switch cause {
	case causeLoadMisaligned, causeLoadFault, causeStoreMisaligned, causeStoreFault:
		return true
	}
	return false
}
