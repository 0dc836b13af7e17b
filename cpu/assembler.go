package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// regMap maps register aliases to register numbers.
var regMap = map[string]byte{
	"SP":  REG_SP,
	"END": REG_END,
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// link is a label reference to resolve once all labels are known.
type link struct {
	index int // Index into the generated lines.
	label string
}

// Assembler is a single pass assembler for the LS-8 instruction set.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Lines   []Line // List of generated program bytes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	links []link
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the byte value of a number. Negative numbers down to
// -128 are stored as two's complement.
func (asm *Assembler) valueOf(word string) (value byte, err error) {
	v64, err := strconv.ParseInt(word, 0, 16)
	if err != nil || v64 < -0x80 || v64 > 0xff {
		err = ErrParseNumber(word)
		return
	}

	value = byte(v64)
	return
}

// registerOf returns the register number of R0..R7 or an alias.
func (asm *Assembler) registerOf(word string) (reg byte, err error) {
	word = strings.ToUpper(word)
	reg, ok := regMap[word]
	if ok {
		return
	}

	if len(word) == 2 && word[0] == 'R' && word[1] >= '0' && word[1] < '0'+REGISTER_COUNT {
		reg = word[1] - '0'
		return
	}

	err = ErrParseRegister(word)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine expands a single line into words, handling equates, labels,
// and expressions.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = len(asm.Lines)
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = nil
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// emit appends a program byte.
func (asm *Assembler) emit(lineno int, value byte, text string) {
	asm.Lines = append(asm.Lines, Line{
		LineNo:  lineno,
		Address: len(asm.Lines),
		Value:   value,
		Text:    text,
	})
}

// parseWords assembles the words of a line into program bytes.
func (asm *Assembler) parseWords(words []string, lineno int, text string) (err error) {
	if len(words) == 0 {
		return
	}

	if words[0] == ".byte" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for n, word := range words[1:] {
			var value byte
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if n != 0 {
				text = ""
			}
			asm.emit(lineno, value, text)
		}
		return
	}

	op, ok := LookupOp(words[0])
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := words[1:]
	need := 0
	switch op.Form() {
	case FORM_REG:
		need = 1
	case FORM_REG_REG, FORM_REG_IMM:
		need = 2
	}
	if len(args) < need {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > need {
		err = ErrOpcodeExtraArgs
		return
	}

	operands := make([]byte, len(args))
	var label string
	for n, arg := range args {
		if n == 1 && op.Form() == FORM_REG_IMM {
			operands[n], err = asm.valueOf(arg)
			if err != nil && isLabel(arg) {
				label = arg
				err = nil
			}
		} else {
			operands[n], err = asm.registerOf(arg)
		}
		if err != nil {
			return
		}
	}

	asm.emit(lineno, byte(op), text)
	for _, operand := range operands {
		asm.emit(lineno, operand, "")
	}

	if len(label) != 0 {
		asm.links = append(asm.links, link{index: len(asm.Lines) - 1, label: label})
	}

	return
}

var reLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isLabel is true if word could name a label.
func isLabel(word string) bool {
	return reLabel.MatchString(word)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Lines = asm.Lines[:0]
	asm.links = asm.links[:0]
	asm.Label = make(map[string]int, 16)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		code, _, _ := strings.Cut(text, ";")
		line = strings.TrimSpace(code)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno, line)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for _, ln := range asm.links {
		address, ok := asm.Label[ln.label]
		if !ok {
			lineno = asm.Lines[ln.index].LineNo
			line = ln.label
			err = ErrLabelMissing(ln.label)
			return
		}
		asm.Lines[ln.index].Value = byte(address)
	}

	prog = &Program{
		Lines: slices.Clone(asm.Lines),
	}

	return
}
