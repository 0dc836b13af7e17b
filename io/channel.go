// Package io provides the output devices of the LS-8 emulator.
package io

// Sink receives the values the CPU prints.
type Sink interface {
	// Rewind resets the sink to its initial state.
	Rewind()
	// Print emits a single value.
	Print(value byte) error
}
