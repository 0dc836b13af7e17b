package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
)

// Line is a single byte of a program, with its source location.
type Line struct {
	LineNo  int    // Source line number.
	Address int    // Memory address of the byte.
	Value   byte   // Byte value.
	Text    string // Source text, set on the first byte of an instruction.
}

// Program is a memory image and the source it came from.
type Program struct {
	Lines []Line
}

// Debug returns the source line for the byte at address.
func (prog *Program) Debug(address int) (line Line, ok bool) {
	for _, line = range prog.Lines {
		if line.Address == address {
			ok = true
			return
		}
	}

	line = Line{}
	return
}

// Codes returns an iterator of the address and value of each program byte.
func (prog *Program) Codes() iter.Seq2[int, byte] {
	return func(yield func(address int, value byte) bool) {
		for _, line := range prog.Lines {
			if !yield(line.Address, line.Value) {
				return
			}
		}
	}
}

// Binary returns the memory image, starting from address 0.
func (prog *Program) Binary() (bins []byte) {
	for address, value := range prog.Codes() {
		for len(bins) <= address {
			bins = append(bins, 0)
		}
		bins[address] = value
	}

	return
}

// Checksum returns a fingerprint of the memory image.
func (prog *Program) Checksum() uint64 {
	return xxhash.Sum64(prog.Binary())
}

// WriteListing writes the program in the base-2 listing format read by
// ReadListing.
func (prog *Program) WriteListing(out io.Writer) (err error) {
	w := bufio.NewWriter(out)
	for _, line := range prog.Lines {
		if len(line.Text) == 0 {
			_, err = fmt.Fprintf(w, "%08b\n", line.Value)
		} else {
			_, err = fmt.Fprintf(w, "%08b # %v\n", line.Value, line.Text)
		}
		if err != nil {
			return
		}
	}

	err = w.Flush()
	return
}

// ReadListing parses a program listing: one base-2 byte literal per line,
// with '#' starting a comment. Blank lines are skipped.
func ReadListing(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var text string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
		}
	}()

	prog = &Program{}
	for scanner.Scan() {
		text = scanner.Text()
		lineno += 1

		word, comment, _ := strings.Cut(text, "#")
		word = strings.TrimSpace(word)
		if len(word) == 0 {
			continue
		}

		var value uint64
		value, err = strconv.ParseUint(strings.TrimPrefix(word, "0b"), 2, 8)
		if err != nil {
			err = ErrParseBinary
			prog = nil
			return
		}

		prog.Lines = append(prog.Lines, Line{
			LineNo:  lineno,
			Address: len(prog.Lines),
			Value:   byte(value),
			Text:    strings.TrimSpace(comment),
		})
	}

	err = scanner.Err()
	if err != nil {
		prog = nil
	}

	return
}
