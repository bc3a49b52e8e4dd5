package hart

import (
	"testing"

	"github.com/Mr-Bossman/rv32emu/internal/memory"
	"github.com/Mr-Bossman/rv32emu/internal/mmio"
)

// newTestHart builds a fresh 1 MiB hart with pc = BaseOfs, per spec.md
// §8's end-to-end scenario preamble.
func newTestHart() *Hart {
	ram := memory.New(1 << 20)
	bus := mmio.NewBus()
	return New(ram, bus, nil)
}

func (h *Hart) load32(ofs uint32, ins uint32) { h.RAM.StoreWord(ofs, ins) }

func TestScenarioAddAndHaltViaSyscon(t *testing.T) {
	h := newTestHart()
	prog := []uint32{
		insLUI(1, 0x80000),
		insLUI(2, 0x11100),
		insLUI(3, 0x5),       // 0x5555 does not fit a 12-bit I-type immediate,
		insADDI(3, 3, 0x555), // so x3 is built with LUI + ADDI
		insSW(2, 3, 0),
		insJAL(0, 0),
	}
	for i, ins := range prog {
		h.load32(uint32(i*4), ins)
	}

	status := h.Step(16)
	if status != Status(0x5555) {
		t.Fatalf("status = %#x, want 0x5555", status)
	}
	if h.Regs[3] != 0x5555 {
		t.Fatalf("regs[3] = %#x, want 0x5555", h.Regs[3])
	}
}

type fakeUART struct {
	out []byte
}

func (u *fakeUART) Load(addr uint32) uint32 { return 0 }
func (u *fakeUART) Store(addr uint32, val uint32) {
	if addr == 0x1000_0000 {
		u.out = append(u.out, byte(val))
	}
}

func TestScenarioUARTOutput(t *testing.T) {
	h := newTestHart()
	uart := &fakeUART{}
	h.Bus.Register("uart", 0x1000_0000, 0x1000_0008, uart)

	prog := []uint32{
		insLUI(1, 0x10000),
		insADDI(2, 0, 0x48),
		insSB(1, 2, 0),
		insADDI(2, 0, 0x69),
		insSB(1, 2, 0),
	}
	for i, ins := range prog {
		h.load32(uint32(i*4), ins)
	}

	status := h.Step(16)
	if status != StatusContinue {
		t.Fatalf("status = %v, want StatusContinue", status)
	}
	if string(uart.out) != "Hi" {
		t.Fatalf("uart output = %q, want \"Hi\"", uart.out)
	}
}

func TestScenarioTimerInterruptDelivery(t *testing.T) {
	h := newTestHart()
	h.load32(0, insADDI(0, 0, 0)) // NOP at pc=BaseOfs, rd=x0

	h.CSR[CSRTimerMatchL] = 10
	h.CSR[CSRMtvec] = 0x8000_0100
	h.CSR[CSRMie] = 0x80
	h.CSR[CSRMstatus] = 0x08
	h.CSR[CSRTimerL] = 11

	status := h.Step(1)
	if status != StatusContinue {
		t.Fatalf("status = %v, want StatusContinue", status)
	}
	if h.PC() != 0x8000_0100 {
		t.Fatalf("pc = %#x, want 0x80000100", h.PC())
	}
	if h.CSR[CSRMcause] != 0x8000_0007 {
		t.Fatalf("mcause = %#x, want 0x80000007", h.CSR[CSRMcause])
	}
	if h.CSR[CSRMepc] != BaseOfs+4 {
		t.Fatalf("mepc = %#x, want %#x", h.CSR[CSRMepc], BaseOfs+4)
	}
	if h.CSR[CSRMstatus]&mstatusMIE != 0 {
		t.Fatalf("MIE should be cleared after trap entry")
	}
}

func TestScenarioIllegalOpcode(t *testing.T) {
	h := newTestHart()
	h.CSR[CSRMtvec] = 0x8000_0200
	// RAM is zeroed, so the instruction at pc=BaseOfs is already 0.

	h.Step(1)
	if h.CSR[CSRMcause] != causeIllegalInstr {
		t.Fatalf("mcause = %d, want %d", h.CSR[CSRMcause], causeIllegalInstr)
	}
	if h.CSR[CSRMtval] != BaseOfs {
		t.Fatalf("mtval = %#x, want %#x", h.CSR[CSRMtval], BaseOfs)
	}
	if h.PC() != h.CSR[CSRMtvec] {
		t.Fatalf("pc = %#x, want mtvec %#x", h.PC(), h.CSR[CSRMtvec])
	}
}

func TestScenarioSignedAMOMin(t *testing.T) {
	h := newTestHart()
	h.RAM.StoreWord(0, 0xffffffff)
	h.Regs[1] = BaseOfs // rs1 = address of RAM[0]
	h.Regs[2] = 1       // rs2 = 1
	h.load32(0x100, insAMO(amoMin, 3, 1, 2))
	h.CSR[CSRPc] = BaseOfs + 0x100

	h.Step(1)

	if got := h.RAM.LoadWord(0); got != 0xffffffff {
		t.Fatalf("RAM[0] = %#x, want 0xffffffff (unchanged: -1 < 1)", got)
	}
	if h.Regs[3] != 0xffffffff {
		t.Fatalf("rd = %#x, want 0xffffffff", h.Regs[3])
	}
}

func TestScenarioWFIWakeup(t *testing.T) {
	h := newTestHart()
	h.load32(0, insWFI())
	h.load32(4, insADDI(0, 0, 0)) // NOP for the batch that takes the timer interrupt
	h.CSR[CSRMie] = 0x80
	h.CSR[CSRMstatus] = 0x08
	h.CSR[CSRMtvec] = 0x8000_0300

	// First batch executes the WFI instruction itself, setting the flag;
	// the pre-loop check that reports StatusWFI only fires starting with
	// the next Step call, per spec.md §4.1.
	h.Step(1)

	status := h.Step(1)
	if status != StatusWFI {
		t.Fatalf("status before timer match = %v, want StatusWFI", status)
	}

	h.CSR[CSRTimerMatchL] = 10
	h.CSR[CSRTimerL] = 11

	status = h.Step(1)
	if status != StatusContinue {
		t.Fatalf("status after timer match = %v, want StatusContinue", status)
	}
	if h.PC() != 0x8000_0300 {
		t.Fatalf("pc = %#x, want 0x80000300", h.PC())
	}
}

func TestRegsZeroInvariant(t *testing.T) {
	h := newTestHart()
	h.load32(0, insADDI(0, 0, 123)) // ADDI x0, x0, 123 — write to x0 must be discarded
	h.Step(1)
	if h.Regs[0] != 0 {
		t.Fatalf("regs[0] = %d, want 0", h.Regs[0])
	}
}

func TestLoadStoreRoundTripThroughStep(t *testing.T) {
	h := newTestHart()
	h.Regs[1] = BaseOfs
	h.load32(0, insADDI(2, 0, 0x42))
	h.load32(4, insSW(1, 2, 0x100))
	h.load32(8, insLW(3, 1, 0x100))

	h.Step(3)

	if h.Regs[3] != 0x42 {
		t.Fatalf("round-tripped load = %#x, want 0x42", h.Regs[3])
	}
}

func TestJALMaxPositiveOffset(t *testing.T) {
	h := newTestHart()
	h.load32(0, insJAL(1, 0x000ffffe))

	h.Step(1)
	if want := BaseOfs + 0x000ffffe; h.PC() != want {
		t.Fatalf("pc = %#x, want %#x", h.PC(), want)
	}
	if h.Regs[1] != BaseOfs+4 {
		t.Fatalf("link reg = %#x, want %#x", h.Regs[1], BaseOfs+4)
	}
}

func TestJALMaxNegativeOffset(t *testing.T) {
	// decodeJ's sign-extension of the largest-magnitude negative J-type
	// offset, exercised directly: a full round trip through Step would
	// need a RAM region larger than this package's test hart carries.
	ins := insJAL(1, -0x100000)
	if got := decodeJ(ins); got != -0x100000 {
		t.Fatalf("decodeJ = %#x, want -0x100000", got)
	}
}

func TestBranchLoopsInPlace(t *testing.T) {
	h := newTestHart()
	h.load32(0, insBEQ(0, 0, 0)) // always-taken branch back to its own address

	status := h.Step(4)
	if status != StatusContinue {
		t.Fatalf("status = %v, want StatusContinue", status)
	}
	if h.PC() != BaseOfs {
		t.Fatalf("pc = %#x, want %#x (looping in place)", h.PC(), BaseOfs)
	}
}

func TestReservedBranchFunct3Traps(t *testing.T) {
	for _, f3 := range []uint32{0x2, 0x3} {
		h := newTestHart()
		h.CSR[CSRMtvec] = 0x8000_0200
		h.load32(0, encB(opBranch, f3, 0, 0, 0))

		h.Step(1)
		if h.CSR[CSRMcause] != causeIllegalInstr {
			t.Fatalf("funct3=%#x: mcause = %d, want %d", f3, h.CSR[CSRMcause], causeIllegalInstr)
		}
		if h.CSR[CSRMtval] != BaseOfs {
			t.Fatalf("funct3=%#x: mtval = %#x, want %#x", f3, h.CSR[CSRMtval], BaseOfs)
		}
	}
}

func TestALUCommutativeOpsIgnoreOperandOrder(t *testing.T) {
	h := newTestHart()
	h.Regs[1] = 0x1234
	h.Regs[2] = 0x5678

	cases := []struct {
		name string
		f3   uint32
		f7   uint32
	}{
		{"ADD", 0x0, 0x00},
		{"XOR", 0x4, 0x00},
		{"OR", 0x6, 0x00},
		{"AND", 0x7, 0x00},
	}
	for _, c := range cases {
		ab, ok1 := aluReg(c.f3, c.f7, h.Regs[1], h.Regs[2])
		ba, ok2 := aluReg(c.f3, c.f7, h.Regs[2], h.Regs[1])
		if !ok1 || !ok2 {
			t.Fatalf("%s: decode failed", c.name)
		}
		if ab != ba {
			t.Fatalf("%s not commutative: %#x vs %#x", c.name, ab, ba)
		}
	}
}

func TestBoundaryLoadAtEndOfRAM(t *testing.T) {
	h := newTestHart()
	top := h.RAM.Size()
	h.Regs[1] = BaseOfs + top - 4
	h.load32(0, insLW(2, 1, 0))
	h.Step(1)
	if h.CSR[CSRMcause] != 0 {
		t.Fatalf("unexpected trap at last in-bounds word: mcause=%d", h.CSR[CSRMcause])
	}

	h2 := newTestHart()
	h2.Regs[1] = BaseOfs + top - 3
	h2.load32(0, insLW(2, 1, 0))
	h2.Step(1)
	if h2.CSR[CSRMcause] != causeLoadFault {
		t.Fatalf("mcause = %d, want %d (load access fault)", h2.CSR[CSRMcause], causeLoadFault)
	}
}
