package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"REG_END":   fmt.Sprintf("%d", REG_END),
	"REG_SP":    fmt.Sprintf("%d", REG_SP),
	"STACK_TOP": fmt.Sprintf("0x%x", STACK_TOP),
	"FLAG_EQ":   fmt.Sprintf("0x%x", byte(FLAG_EQ)),
	"FLAG_GT":   fmt.Sprintf("0x%x", byte(FLAG_GT)),
	"FLAG_LT":   fmt.Sprintf("0x%x", byte(FLAG_LT)),
}

// Printer receives the values emitted by PRN.
type Printer interface {
	Print(value byte) error
}

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   *Memory              // Main memory.
	Register [REGISTER_COUNT]byte // Register bank.
	Flags    Flags                // Comparison flags.
	Pc       int                  // Address of the next instruction.
	Halted   bool                 // Set once HLT executes.

	Printer Printer // Destination of PRN output.

	Ticks int // Executed instruction counter.
}

// NewCpu creates a new CPU with a specifically sized memory.
func NewCpu(size int) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: NewMemory(size),
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %02X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %v\n", "flags", cpu.Flags)
	for n, val := range cpu.Register {
		name := fmt.Sprintf("r%d", n)
		switch n {
		case REG_END:
			name = "end"
		case REG_SP:
			name = "sp"
		}
		text += fmt.Sprintf("% 5s: %02X\n", name, val)
	}

	return
}

// Reset the CPU state.
// - Zeroes memory, registers and flags.
// - Sets the stack pointer to STACK_TOP.
// - Sets the PC to 0.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.Register[:])
	cpu.Register[REG_SP] = STACK_TOP
	cpu.Flags = 0
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Ticks = 0
}

// Load copies code into memory from address 0, and marks the end of the
// program in REG_END.
func (cpu *Cpu) Load(code []byte) (err error) {
	if len(code) > cpu.Memory.Len() || len(code) > 0xff {
		err = ErrProgramTooLarge
		return
	}

	for address, value := range code {
		err = cpu.Memory.Write(address, value)
		if err != nil {
			return
		}
	}

	cpu.Register[REG_END] = byte(len(code))

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(code))
	}

	return
}

// Fetch reads the opcode at the PC and the two bytes that follow it.
func (cpu *Cpu) Fetch() (inst Instruction, err error) {
	var raw [3]byte
	for n := range raw {
		raw[n], err = cpu.Memory.Read(cpu.Pc + n)
		if err != nil {
			return
		}
	}

	inst = Instruction{Code: Code(raw[0]), A: raw[1], B: raw[2]}
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	inst, err := cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Execute(inst)
	return
}

// register validates a register operand.
func register(index byte) (err error) {
	if index >= REGISTER_COUNT {
		err = ErrRegister(index)
	}
	return
}

// Execute executes a single fetched instruction at the current PC.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	op, ok := inst.Code.Decode()
	if !ok {
		err = &ErrUnknown{Code: inst.Code, Pc: cpu.Pc}
		return
	}

	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(inst), err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.Pc, inst)
	}

	// Validate register operands before any state changes.
	switch op.Form() {
	case FORM_REG, FORM_REG_IMM:
		err = register(inst.A)
	case FORM_REG_REG:
		err = errors.Join(register(inst.A), register(inst.B))
	}
	if err != nil {
		return
	}

	a, b := inst.A, inst.B

	switch op {
	case OP_LDI:
		cpu.Register[a] = b
	case OP_PRN:
		if cpu.Printer == nil {
			err = ErrPrinterMissing
			return
		}
		err = cpu.Printer.Print(cpu.Register[a])
	case OP_HLT:
		cpu.Halted = true
	case OP_MUL:
		cpu.doAlu(ALU_MUL, a, b)
	case OP_ADD:
		cpu.doAlu(ALU_ADD, a, b)
	case OP_CMP:
		cpu.doAlu(ALU_CMP, a, b)
	case OP_PUSH:
		err = cpu.push(cpu.Register[a])
	case OP_POP:
		err = cpu.pop(a)
	case OP_CALL:
		err = cpu.call(cpu.Register[a])
	case OP_RET:
		err = cpu.ret()
	case OP_ST:
		err = cpu.Memory.Write(int(cpu.Register[b]), cpu.Register[a])
	default:
		panic(fmt.Sprintf("operation %v not implemented", op))
	}
	if err != nil {
		return
	}

	cpu.Ticks += 1

	if !cpu.Halted && !inst.Code.SetsPc() {
		cpu.Pc += inst.Size()
	}

	return
}
