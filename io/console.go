package io

import (
	"fmt"
	"io"
)

// Console prints each value as a decimal number on its own line.
type Console struct {
	Output io.Writer

	Values []byte // Values printed since the last rewind.
}

var _ Sink = (*Console)(nil)

// Rewind forgets the printed history. Output already written is not
// recalled.
func (con *Console) Rewind() {
	con.Values = con.Values[:0]
}

// Print writes the decimal value and a newline.
func (con *Console) Print(value byte) (err error) {
	if con.Output == nil {
		err = ErrNoOutput
		return
	}

	_, err = fmt.Fprintf(con.Output, "%d\n", value)
	if err != nil {
		return
	}

	con.Values = append(con.Values, value)
	return
}
