package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrAddressFault       = errors.New(f("address fault"))
	ErrUnknownInstruction = errors.New(f("unknown instruction"))
	ErrStackOverflow      = errors.New(f("stack overflow"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrHalted             = errors.New(f("halted"))
	ErrPrinterMissing     = errors.New(f("printer missing"))
	ErrProgramTooLarge    = errors.New(f("program too large"))

	// Listing errors
	ErrParseBinary = errors.New(f("not a binary literal"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrAddress is an access outside of memory.
type ErrAddress int

func (ea ErrAddress) Error() string {
	return f("address 0x%02x out of range", int(ea))
}

func (ea ErrAddress) Unwrap() error {
	return ErrAddressFault
}

// ErrUnknown is an opcode with no matching operation.
type ErrUnknown struct {
	Code Code
	Pc   int
}

func (err *ErrUnknown) Error() string {
	return f("unknown instruction 0b%08b at 0x%02x", byte(err.Code), err.Pc)
}

func (err *ErrUnknown) Unwrap() error {
	return ErrUnknownInstruction
}

// ErrOpcode annotates an execution failure with the instruction.
type ErrOpcode Instruction

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x %v", byte(eo.Code), Instruction(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrRegister byte

func (er ErrRegister) Error() string {
	return f("register %d invalid", byte(er))
}

func (er ErrRegister) Unwrap() error {
	return ErrRegisterInvalid
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
