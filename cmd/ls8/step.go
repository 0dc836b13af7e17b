package main

import (
	"bytes"
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

var errNotTerminal = errors.New("single step requires a terminal")

// stepper waits for a key press on a raw mode terminal between cycles.
type stepper struct {
	in    *os.File
	fd    int
	state *term.State
}

func newStepper(in *os.File) (st *stepper, err error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		err = errNotTerminal
		return
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	st = &stepper{in: in, fd: fd, state: state}
	return
}

// Wait blocks for a key. 'q', ESC and ^C request a stop.
func (st *stepper) Wait() (quit bool, err error) {
	var key [1]byte
	_, err = st.in.Read(key[:])
	if err != nil {
		return
	}

	switch key[0] {
	case 'q', 0x1b, 0x03:
		quit = true
	}

	return
}

// Close restores the terminal mode.
func (st *stepper) Close() error {
	return term.Restore(st.fd, st.state)
}

// crlfWriter restores carriage returns while the terminal is raw.
type crlfWriter struct {
	w io.Writer
}

func (cw crlfWriter) Write(p []byte) (n int, err error) {
	_, err = cw.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	if err != nil {
		return
	}

	n = len(p)
	return
}
