/*
 * rv32emu - Hart state: registers, CSRs, boot contract
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

// Package hart implements the fetch-decode-execute loop for a single RV32IMA
// hart: the integer register file, the dense CSR slot array, the trap
// engine, the CLINT timer comparator, and AMO support. It is the core of
// this emulator; everything else in the module exists to feed it an image
// and drain its MMIO traffic.
package hart

import (
	"log/slog"

	"github.com/Mr-Bossman/rv32emu/internal/memory"
	"github.com/Mr-Bossman/rv32emu/internal/mmio"
)

// CSR slot indices, matching the architectural CSR table 1:1 where one
// exists. PC and ExtraFlags have no architectural CSR number of their own
// and live in this array purely so the whole machine-mode snapshot is one
// contiguous block for the monitor to dump and the SIGINT handler to read.
const (
	CSRMstatus = iota
	CSRCycleL
	CSRMscratch
	CSRMtvec
	CSRMie
	CSRMip
	CSRMepc
	CSRMtval
	CSRMcause
	CSRMvendorid
	CSRMisa
	CSRPc
	CSRExtraFlags
	CSRCycleH
	CSRTimerL
	CSRTimerH
	CSRTimerMatchL
	CSRTimerMatchH
	csrCount
)

// csrTable maps a 12-bit architectural CSR number to its slot, per
// spec.md §6. Numbers absent from this table trap illegal-instruction.
var csrTable = map[uint32]int{
	0x300: CSRMstatus,
	0xC00: CSRCycleL,
	0x340: CSRMscratch,
	0x305: CSRMtvec,
	0x304: CSRMie,
	0x344: CSRMip,
	0x341: CSRMepc,
	0x343: CSRMtval,
	0x342: CSRMcause,
	0xF11: CSRMvendorid,
	0x301: CSRMisa,
	0xC80: CSRCycleH,
}

// ExtraFlags bit layout (CSR[CSRExtraFlags]).
const (
	flagModeMask  = 0x3 // bits[1:0]: 3 = machine, 0 = user
	flagWFI       = 0x4 // bit 2: parked in wait-for-interrupt
	flagIrqEnSnap = 0x8 // bit 3: interrupt-enable snapshot for trap bookkeeping
)

// BaseOfs is the guest physical address of offset 0 of RAM.
const BaseOfs uint32 = 0x8000_0000

// Status is the outcome of a Step batch. See step.go for the named
// constants and the SYSCON short-circuit that produces most of its
// values.
type Status int32

// Hart is the complete architectural state of one RV32IMA core.
type Hart struct {
	Regs [32]uint32
	CSR  [csrCount]uint32

	RAM *memory.RAM
	Bus *mmio.Bus

	// SleepOK mirrors the CLI's -p flag: when false, Step still reports
	// StatusWFI but the driver loop is told the sleep isn't worth the
	// latency (a "poll as fast as possible" debug mode).
	SleepOK bool

	Log *slog.Logger
}

// New constructs a hart wired to the given RAM and MMIO bus and resets it
// to the boot contract spec.md §5/§6 describe.
func New(ram *memory.RAM, bus *mmio.Bus, log *slog.Logger) *Hart {
	if log == nil {
		log = slog.Default()
	}
	h := &Hart{RAM: ram, Bus: bus, SleepOK: true, Log: log}
	h.Reset(0)
	setActive(h)
	return h
}

// Reset restores the boot contract: PC at BaseOfs, a0 zero (hart 0), a1
// holding the DTB guest address, machine mode, and the read-only
// identification CSRs populated.
func (h *Hart) Reset(dtbAddr uint32) {
	h.Regs = [32]uint32{}
	h.CSR = [csrCount]uint32{}
	h.Regs[10] = 0       // a0: hart id
	h.Regs[11] = dtbAddr // a1: DTB address
	h.CSR[CSRMvendorid] = 0xff0ff0ff
	h.CSR[CSRMisa] = 0x40401101 // RV32IMA
	h.CSR[CSRExtraFlags] = flagModeMask
	h.CSR[CSRPc] = BaseOfs
}

// PC returns the program counter.
func (h *Hart) PC() uint32 { return h.CSR[CSRPc] }

func (h *Hart) setPC(v uint32) { h.CSR[CSRPc] = v }

func (h *Hart) mode() uint32 { return h.CSR[CSRExtraFlags] & flagModeMask }

func (h *Hart) wfi() bool { return h.CSR[CSRExtraFlags]&flagWFI != 0 }

func (h *Hart) setWFI(v bool) {
	if v {
		h.CSR[CSRExtraFlags] |= flagWFI
	} else {
		h.CSR[CSRExtraFlags] &^= flagWFI
	}
}

// writeReg writes v into register idx, ignoring writes to x0 per the
// invariant that regs[0] == 0 at every externally observable point.
func (h *Hart) writeReg(idx uint32, v uint32) {
	if idx != 0 {
		h.Regs[idx] = v
	}
}
