package cpu

import (
	"strings"
)

// Flags holds the result of the last comparison.
type Flags byte

const (
	FLAG_EQ   = Flags(0b001) // Equal.
	FLAG_GT   = Flags(0b010) // Greater than.
	FLAG_LT   = Flags(0b100) // Less than.
	FLAG_MASK = FLAG_EQ | FLAG_GT | FLAG_LT
)

// Compare returns the flags with the comparison bits replaced by the
// outcome of comparing a with b.
func (fl Flags) Compare(a, b byte) Flags {
	fl &^= FLAG_MASK
	switch {
	case a < b:
		fl |= FLAG_LT
	case a > b:
		fl |= FLAG_GT
	default:
		fl |= FLAG_EQ
	}

	return fl
}

func (fl Flags) String() string {
	var parts []string
	for _, flag := range []struct {
		bit  Flags
		name string
	}{{FLAG_LT, "lt"}, {FLAG_GT, "gt"}, {FLAG_EQ, "eq"}} {
		if fl&flag.bit != 0 {
			parts = append(parts, flag.name)
		}
	}

	if len(parts) == 0 {
		return "-"
	}

	return strings.Join(parts, "|")
}

// AluOp is an ALU operation type.
type AluOp int

const (
	ALU_ADD = AluOp(0) // add
	ALU_MUL = AluOp(1) // mul
	ALU_CMP = AluOp(2) // cmp
)

// doAlu applies op to registers a and b. ADD and MUL store into a,
// wrapping at 256; CMP only updates the flags.
func (cpu *Cpu) doAlu(op AluOp, a, b byte) {
	switch op {
	case ALU_ADD:
		cpu.Register[a] += cpu.Register[b]
	case ALU_MUL:
		cpu.Register[a] *= cpu.Register[b]
	case ALU_CMP:
		cpu.Flags = cpu.Flags.Compare(cpu.Register[a], cpu.Register[b])
	default:
		panic("unsupported ALU operation")
	}
}
