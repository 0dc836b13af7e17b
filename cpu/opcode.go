package cpu

import (
	"fmt"
	"strings"
)

// Code is a raw instruction byte.
type Code byte

const (
	CODE_OPERANDS_SHIFT = 6          // Operand count is in bits 6-7.
	CODE_SETS_PC        = 0b00010000 // Set if the instruction assigns the PC.
	CODE_IDENT_MASK     = 0b00111111 // Operation identifier bits.
)

// Operands returns the number of operand bytes following the opcode.
func (code Code) Operands() int {
	return int(code >> CODE_OPERANDS_SHIFT)
}

// SetsPc is true if the instruction updates the PC itself.
func (code Code) SetsPc() bool {
	return (code & CODE_SETS_PC) != 0
}

// Ident returns the operation identifier used for decode.
func (code Code) Ident() byte {
	return byte(code & CODE_IDENT_MASK)
}

// Decode returns the operation for the opcode, if any.
func (code Code) Decode() (op Op, ok bool) {
	for _, op = range Ops {
		if Code(op).Ident() == code.Ident() {
			ok = true
			return
		}
	}

	op = 0
	return
}

// Op is a supported operation. The value of each is its canonical opcode.
type Op byte

const (
	OP_HLT  = Op(0b00000001) // HLT
	OP_LDI  = Op(0b10000010) // LDI
	OP_ST   = Op(0b10000100) // ST
	OP_PUSH = Op(0b01000101) // PUSH
	OP_POP  = Op(0b01000110) // POP
	OP_PRN  = Op(0b01000111) // PRN
	OP_CALL = Op(0b01010000) // CALL
	OP_RET  = Op(0b00010001) // RET
	OP_ADD  = Op(0b10100000) // ADD
	OP_MUL  = Op(0b10100010) // MUL
	OP_CMP  = Op(0b10100111) // CMP
)

// Ops lists every supported operation.
var Ops = []Op{
	OP_HLT, OP_LDI, OP_ST, OP_PUSH, OP_POP, OP_PRN,
	OP_CALL, OP_RET, OP_ADD, OP_MUL, OP_CMP,
}

// OpForm is the operand layout of an operation.
type OpForm int

const (
	FORM_NONE    = OpForm(0) // no operands
	FORM_REG     = OpForm(1) // register
	FORM_REG_REG = OpForm(2) // register, register
	FORM_REG_IMM = OpForm(3) // register, immediate
)

func (op Op) String() string {
	switch op {
	case OP_HLT:
		return "HLT"
	case OP_LDI:
		return "LDI"
	case OP_ST:
		return "ST"
	case OP_PUSH:
		return "PUSH"
	case OP_POP:
		return "POP"
	case OP_PRN:
		return "PRN"
	case OP_CALL:
		return "CALL"
	case OP_RET:
		return "RET"
	case OP_ADD:
		return "ADD"
	case OP_MUL:
		return "MUL"
	case OP_CMP:
		return "CMP"
	}

	return fmt.Sprintf("Op(0x%02x)", byte(op))
}

// Form returns the operand layout of the operation.
func (op Op) Form() OpForm {
	switch op {
	case OP_LDI:
		return FORM_REG_IMM
	case OP_ST, OP_ADD, OP_MUL, OP_CMP:
		return FORM_REG_REG
	case OP_PUSH, OP_POP, OP_PRN, OP_CALL:
		return FORM_REG
	}

	return FORM_NONE
}

// LookupOp finds an operation by mnemonic, ignoring case.
func LookupOp(name string) (op Op, ok bool) {
	name = strings.ToUpper(name)
	for _, op = range Ops {
		if op.String() == name {
			ok = true
			return
		}
	}

	op = 0
	return
}

// Instruction is a fetched opcode and the two bytes that follow it.
type Instruction struct {
	Code Code
	A    byte
	B    byte
}

// Size returns the instruction length in bytes.
func (inst Instruction) Size() int {
	return 1 + inst.Code.Operands()
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	op, ok := inst.Code.Decode()
	if !ok {
		return fmt.Sprintf("?0b%08b", byte(inst.Code))
	}

	switch op.Form() {
	case FORM_REG:
		return fmt.Sprintf("%v R%d", op, inst.A)
	case FORM_REG_REG:
		return fmt.Sprintf("%v R%d,R%d", op, inst.A, inst.B)
	case FORM_REG_IMM:
		return fmt.Sprintf("%v R%d,%d", op, inst.A, inst.B)
	}

	return op.String()
}
