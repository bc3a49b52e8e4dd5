/*
 * rv32emu - Driver loop
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

// Package core runs the emulator's driver loop: refresh the timer from
// wall-clock, call Step, and react to its status. Structured after the
// teacher's goroutine-driven core type (emu/core/core.go), collapsed to
// the single consumer of wall-clock time this single-hart machine needs.
package core

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Mr-Bossman/rv32emu/internal/hart"
	"github.com/Mr-Bossman/rv32emu/internal/hostio"
	"github.com/Mr-Bossman/rv32emu/internal/image"
	"github.com/Mr-Bossman/rv32emu/internal/mmio"
	"github.com/Mr-Bossman/rv32emu/internal/syscon"
	"github.com/Mr-Bossman/rv32emu/internal/uart"
)

// Command is a request sent to a running Machine from outside its own
// goroutine (a signal handler or the monitor console).
type Command int

const (
	CmdShutdown Command = iota
	CmdReboot
)

// Machine owns one hart, its RAM-backed image, and the MMIO devices
// wired onto its bus. It is rebuilt wholesale on reboot, per spec.md §3:
// "on reboot the memory and CSRs are re-initialized from the same loader
// inputs."
type Machine struct {
	opts      image.Options
	host      hostio.Bridge
	batchSize int
	sleepOK   bool
	log       *slog.Logger

	Hart *hart.Hart

	wg   sync.WaitGroup
	done chan struct{}
	cmd  chan Command
}

// New boots a Machine from opts: loads the kernel/DTB image, wires the
// UART and CLINT devices onto a fresh bus, and leaves it ready for
// Start.
func New(opts image.Options, host hostio.Bridge, batchSize int, sleepOK bool, log *slog.Logger) (*Machine, error) {
	if log == nil {
		log = slog.Default()
	}
	m := &Machine{
		opts:      opts,
		host:      host,
		batchSize: batchSize,
		sleepOK:   sleepOK,
		log:       log,
		done:      make(chan struct{}),
		cmd:       make(chan Command, 1),
	}
	if err := m.boot(); err != nil {
		return nil, err
	}
	return m, nil
}

// boot (re)loads the image and rewires the MMIO bus. Called once at
// construction and again on every SYSCON reboot.
func (m *Machine) boot() error {
	h, _, err := image.Load(m.opts)
	if err != nil {
		return err
	}

	bus := mmio.NewBus()
	bus.Register("uart", uart.RegData, uart.RegData+8, uart.New(m.host, m.log))
	h.Bus = bus
	h.RegisterCLINT(bus)
	h.SleepOK = m.sleepOK
	h.Log = m.log

	m.Hart = h
	return nil
}

// Start runs the step/refresh loop in its own goroutine.
func (m *Machine) Start() {
	m.wg.Add(1)
	go m.run()
}

func (m *Machine) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case cmd := <-m.cmd:
			if m.handleCommand(cmd) {
				return
			}
			continue
		default:
		}

		m.Hart.RefreshTimer(m.host.NowMicros())
		status := m.Hart.Step(m.batchSize)

		switch {
		case status == hart.StatusContinue:
		case status == hart.StatusWFI:
			// spec.md §4.7: "On WFI_IDLE, advance cycle counter by N."
			m.Hart.AdvanceCycles(uint32(m.batchSize))
			if m.sleepOK {
				time.Sleep(time.Millisecond)
			}
		case syscon.IsReboot(status):
			m.log.Info("reboot requested via SYSCON")
			if err := m.boot(); err != nil {
				m.log.Error("reboot failed", "error", err)
				return
			}
		case syscon.IsPoweroff(status):
			m.log.Info("poweroff requested via SYSCON")
			m.dumpState(status)
			return
		case syscon.IsHalt(status):
			m.dumpState(status)
			return
		}
	}
}

func (m *Machine) handleCommand(cmd Command) (stop bool) {
	switch cmd {
	case CmdReboot:
		if err := m.boot(); err != nil {
			m.log.Error("reboot failed", "error", err)
			return true
		}
		return false
	case CmdShutdown:
		m.dumpState(hart.StatusContinue)
		return true
	}
	return false
}

// Reboot and Shutdown request the corresponding command from outside the
// driver goroutine (e.g. the monitor console).
func (m *Machine) Reboot()   { m.cmd <- CmdReboot }
func (m *Machine) Shutdown() { m.cmd <- CmdShutdown }

// Wait blocks until the driver loop exits on its own — SYSCON reboot
// errors out, or a non-reboot SYSCON halt (poweroff or otherwise) is
// hit — without requesting shutdown itself. Use this for free-run mode;
// it does not touch m.done, so it never forces the loop to stop early.
func (m *Machine) Wait() {
	m.wg.Wait()
}

// Stop forces the driver loop to exit — for the signal handler's
// Ctrl-C/SIGTERM path, not for waiting out a normal run — and waits for
// it, with the same bounded-wait shape as the teacher's core.Stop.
func (m *Machine) Stop() {
	close(m.done)
	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		m.log.Warn("timed out waiting for core to finish")
	}
}

func (m *Machine) dumpState(status hart.Status) {
	h := m.Hart
	m.log.Info("halted",
		"status", fmt.Sprintf("%#x", uint32(status)),
		"pc", fmt.Sprintf("%#x", h.PC()),
		"mcause", fmt.Sprintf("%#x", h.CSR[hart.CSRMcause]),
	)
}
