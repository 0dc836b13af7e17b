// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	goio "io"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

const (
	MEMORY_SIZE = cpu.MEMORY_SIZE // Emulated memory, in bytes.
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
}

// Emulator state. CPU + program + console.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Console io.Console // Console receiving PRN output.

	Trace goio.Writer // If set, receives a trace line before each cycle.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(MEMORY_SIZE),
		Program: &cpu.Program{},
	}

	emu.Cpu.Printer = &emu.Console

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the CPU, and load the program into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()
	emu.Console.Rewind()

	err = emu.Cpu.Load(emu.Program.Binary())
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: program %016x, %d bytes", emu.Program.Checksum(), emu.Cpu.Register[cpu.REG_END])
	}

	return
}

// Code returns the instruction at the PC, or an empty instruction if the
// PC cannot be fetched.
func (emu *Emulator) Code() cpu.Instruction {
	inst, err := emu.Cpu.Fetch()
	if err != nil {
		return cpu.Instruction{}
	}

	return inst
}

// LineNo returns the source line number for the instruction at the PC.
func (emu *Emulator) LineNo() int {
	line, ok := emu.Program.Debug(emu.Cpu.Pc)
	if !ok {
		return 0
	}

	return line.LineNo
}

// TraceLine formats the PC, the three bytes at the PC, and the registers.
// Bytes outside of memory are shown as "--".
func (emu *Emulator) TraceLine() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "TRACE: %02X |", emu.Cpu.Pc)
	for n := range 3 {
		value, err := emu.Cpu.Memory.Read(emu.Cpu.Pc + n)
		if err != nil {
			sb.WriteString(" --")
		} else {
			fmt.Fprintf(&sb, " %02X", value)
		}
	}
	sb.WriteString(" |")
	for _, value := range emu.Cpu.Register {
		fmt.Fprintf(&sb, " %02X", value)
	}

	return sb.String()
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.Trace != nil {
		_, err = fmt.Fprintln(emu.Trace, emu.TraceLine())
		if err != nil {
			return
		}
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	done = emu.Cpu.Halted
	return
}

// Run ticks the emulator until the program halts or fails.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: halted after %d ticks", emu.Cpu.Ticks)
	}

	return
}
