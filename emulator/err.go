package emulator

import (
	"errors"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/translate"
)

var f = translate.From

// Process exit codes.
const (
	EXIT_OK                  = 0
	EXIT_ADDRESS_FAULT       = 1
	EXIT_UNKNOWN_INSTRUCTION = 2
	EXIT_STACK_OVERFLOW      = 3
	EXIT_ERROR               = 4
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     int
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("pc 0x%02x %v", err.Pc, err.Err)
	}
	return f("pc 0x%02x line %d %v", err.Pc, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ExitCode maps an error to the process exit code reporting it.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return EXIT_OK
	case errors.Is(err, cpu.ErrAddressFault):
		return EXIT_ADDRESS_FAULT
	case errors.Is(err, cpu.ErrUnknownInstruction):
		return EXIT_UNKNOWN_INSTRUCTION
	case errors.Is(err, cpu.ErrStackOverflow):
		return EXIT_STACK_OVERFLOW
	}

	return EXIT_ERROR
}
