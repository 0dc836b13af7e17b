// Package cpu implements the LS-8 microprocessor and its assembler.
//
// The CPU consists of a program counter (PC), eight 8-bit general-purpose
// registers (R0-R7), a flags register holding the outcome of the last
// comparison, and a byte-addressed memory. R7 is the stack pointer and R4
// holds the end of the loaded program, which bounds downward stack growth.
//
// Each instruction is an opcode byte followed by zero, one or two operand
// bytes. The top two bits of the opcode give the operand count, and the
// low six bits identify the operation.
//
// The assembler provides a small assembly language for the LS-8 instruction
// set, supporting labels, equates, raw data bytes and compile-time
// expression evaluation.
package cpu
