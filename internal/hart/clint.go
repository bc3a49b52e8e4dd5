package hart

import "github.com/Mr-Bossman/rv32emu/internal/mmio"

// Guest addresses for the CLINT-style timer window (spec.md §4.4, §6).
// The compare and value registers sit in disjoint ranges, separated by a
// large gap of reserved, ignored MMIO space.
const (
	clintMatchLow  uint32 = 0x1100_4000
	clintMatchHigh uint32 = 0x1100_4004
	clintValueLow  uint32 = 0x1100_BFF8
	clintValueHigh uint32 = 0x1100_BFFC
)

const mtiBit uint32 = 1 << 7 // MIP/MIE bit 7: machine timer interrupt

// clintDevice exposes the hart's 64-bit timer counter and compare
// register over MMIO. The counter itself lives in CSR[CSRTimerL/H],
// refreshed from the host clock once per Step batch (spec.md §4.7); this
// device only mediates guest loads/stores against those same slots.
type clintDevice struct {
	h *Hart
}

func (d clintDevice) Load(addr uint32) uint32 {
	switch addr {
	case clintValueLow:
		return d.h.CSR[CSRTimerL]
	case clintValueHigh:
		return d.h.CSR[CSRTimerH]
	}
	return 0
}

func (d clintDevice) Store(addr uint32, val uint32) {
	switch addr {
	case clintMatchLow:
		d.h.CSR[CSRTimerMatchL] = val
	case clintMatchHigh:
		d.h.CSR[CSRTimerMatchH] = val
	}
}

// RegisterCLINT maps this hart's timer compare and value registers onto
// bus at the fixed guest addresses spec.md §6 reserves for them. Called
// once during machine wiring, mirroring how the teacher's devices
// register themselves onto the channel subsystem at construction time.
func (h *Hart) RegisterCLINT(bus *mmio.Bus) {
	dev := clintDevice{h: h}
	bus.Register("clint-match", clintMatchLow, clintMatchLow+8, dev)
	bus.Register("clint-value", clintValueLow, clintValueLow+8, dev)
}

// RefreshTimer advances the 64-bit timer counter from elapsed host
// microseconds and re-evaluates the MTIP pending bit. Called once per
// driver-loop iteration (spec.md §4.7), distinct from Step's own
// per-batch refreshTimerInterrupt, which only re-checks MTIP against
// whatever the counter already holds.
func (h *Hart) RefreshTimer(nowMicros uint64) {
	h.CSR[CSRTimerL] = uint32(nowMicros)
	h.CSR[CSRTimerH] = uint32(nowMicros >> 32)
	h.refreshTimerInterrupt()
}
