/*
 * rv32emu - Main process
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

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/Mr-Bossman/rv32emu/internal/core"
	"github.com/Mr-Bossman/rv32emu/internal/hart"
	"github.com/Mr-Bossman/rv32emu/internal/hostio"
	"github.com/Mr-Bossman/rv32emu/internal/image"
	"github.com/Mr-Bossman/rv32emu/internal/logger"
	"github.com/Mr-Bossman/rv32emu/internal/monitor"
)

var Logger *slog.Logger

func main() {
	optKernel := getopt.StringLong("kernel", 'f', "", "Flat kernel image (required)")
	optDTB := getopt.StringLong("dtb", 'b', "", "DTB path, or 'disable'")
	optRAMKiB := getopt.Uint64Long("ram", 'm', 65536, "RAM size in KiB")
	optBatch := getopt.IntLong("batch", 'c', 1024, "Instructions executed per Step batch")
	optNoSleep := getopt.BoolLong("no-sleep", 'p', "Disable the brief sleep on WFI idle")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file path")
	optInteractive := getopt.BoolLong("interactive", 'i', "Drop into the monitor console instead of free-running")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}
	if *optKernel == "" {
		getopt.Usage()
		os.Exit(1)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("could not create log file", "path", *optLogFile, "error", err)
			os.Exit(1)
		}
	}
	Logger = slog.New(logger.New(file, slog.LevelInfo))
	slog.SetDefault(Logger)

	Logger.Info("rv32emu started", "kernel", *optKernel)

	host := hostio.NewTerminal()
	defer host.Stop()

	opts := image.Options{
		KernelPath: *optKernel,
		DTBPath:    *optDTB,
		RAMBytes:   uint32(*optRAMKiB) * 1024,
	}

	m, err := core.New(opts, host, *optBatch, !*optNoSleep, Logger)
	if err != nil {
		Logger.Error("could not load image", "error", err)
		os.Exit(2)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		if h := hart.Active(); h != nil {
			Logger.Warn("signal received, dumping state",
				"pc", h.PC(), "mcause", h.CSR[hart.CSRMcause])
		}
		m.Stop()
		os.Exit(0)
	}()

	if *optInteractive {
		monitor.Run(m)
		return
	}

	m.Start()
	m.Wait() // blocks until the driver loop exits on its own (poweroff/error)
}
