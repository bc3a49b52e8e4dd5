/*
 * rv32emu - Interactive debug console
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

// Package monitor is a line-edited interactive console for single
// stepping and inspecting a running Machine, supplementing the free-run
// driver loop with the -s/state-dump behavior the original CLI help text
// hints at but never wires up. Grounded on the teacher's liner-based
// command reader (command/reader/reader.go), collapsed to a flat command
// switch instead of a separate parser/completer package since this
// console only ever needs a handful of verbs.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/Mr-Bossman/rv32emu/internal/core"
	"github.com/Mr-Bossman/rv32emu/internal/hart"
)

// Run drives an interactive prompt against m until the user quits or
// aborts with Ctrl-D. The driver loop must not be running concurrently
// with m.Hart.Step calls issued here — callers start the console instead
// of Machine.Start, not alongside it.
func Run(m *core.Machine) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("rv32emu monitor — step, continue, regs, mem <addr>, quit")
	for {
		input, err := line.Prompt("rv32> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("monitor: error reading line", "error", err)
			return
		}
		line.AppendHistory(input)

		if quit := dispatch(m, strings.Fields(input)); quit {
			return
		}
	}
}

func dispatch(m *core.Machine, fields []string) (quit bool) {
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "s", "step":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				n = v
			}
		}
		status := m.Hart.Step(n)
		fmt.Printf("status=%#x pc=%#x\n", uint32(status), m.Hart.PC())

	case "c", "continue":
		m.Start()
		fmt.Println("running in background; use the monitor again to inspect state")

	case "r", "regs":
		printRegs(m.Hart)

	case "m", "mem":
		if len(fields) < 2 {
			fmt.Println("usage: mem <hex addr>")
			return false
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
		if err != nil {
			fmt.Println("bad address:", fields[1])
			return false
		}
		ofs := uint32(addr) - hart.BaseOfs
		if !m.Hart.RAM.InBounds(ofs, 4) {
			fmt.Println("address not in RAM")
			return false
		}
		fmt.Printf("%#08x: %#08x\n", addr, m.Hart.RAM.LoadWord(ofs))

	case "q", "quit":
		return true

	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func printRegs(h *hart.Hart) {
	fmt.Printf("pc=%#08x mcause=%#08x mepc=%#08x mstatus=%#08x\n",
		h.PC(), h.CSR[hart.CSRMcause], h.CSR[hart.CSRMepc], h.CSR[hart.CSRMstatus])
	for i := 0; i < 32; i += 4 {
		fmt.Printf("x%-2d=%#08x x%-2d=%#08x x%-2d=%#08x x%-2d=%#08x\n",
			i, h.Regs[i], i+1, h.Regs[i+1], i+2, h.Regs[i+2], i+3, h.Regs[i+3])
	}
}
