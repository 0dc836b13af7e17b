// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/translate"
)

func main() {
	os.Exit(run())
}

func run() int {
	var assemble bool
	var output string
	var trace bool
	var step bool
	var verbose bool

	flag.BoolVar(&assemble, "a", false, "Program is assembly source, not a binary listing")
	flag.StringVar(&output, "o", "", "Write the binary listing here, do not execute")
	flag.BoolVar(&trace, "t", false, "Trace each cycle to stderr")
	flag.BoolVar(&step, "s", false, "Single step, waiting for a key before each cycle")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Usage = func() {
		translate.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] program\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return emulator.EXIT_ERROR
	}

	source := flag.Arg(0)

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	inf, err := os.Open(source)
	if err != nil {
		log.Printf("%v", err)
		return emulator.EXIT_ERROR
	}
	defer inf.Close()

	var prog *cpu.Program
	if assemble {
		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		prog, err = asm.Parse(inf)
	} else {
		prog, err = cpu.ReadListing(inf)
	}
	if err != nil {
		log.Printf("%v: %v", source, err)
		return emulator.EXIT_ERROR
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			log.Printf("%v", err)
			return emulator.EXIT_ERROR
		}
		defer ouf.Close()

		err = prog.WriteListing(ouf)
		if err != nil {
			log.Printf("%v: %v", output, err)
			return emulator.EXIT_ERROR
		}
		return emulator.EXIT_OK
	}

	emu.Program = prog
	emu.Console.Output = os.Stdout
	if trace {
		emu.Trace = os.Stderr
	}

	var st *stepper
	if step {
		st, err = newStepper(os.Stdin)
		if err != nil {
			log.Printf("%v", err)
			return emulator.EXIT_ERROR
		}
		defer st.Close()

		emu.Console.Output = crlfWriter{os.Stdout}
		if trace {
			emu.Trace = crlfWriter{os.Stderr}
		}
		log.SetOutput(crlfWriter{os.Stderr})
	}

	err = emu.Reset()
	if err != nil {
		log.Printf("%v: %v", source, err)
		return emulator.ExitCode(err)
	}

	for done := false; !done; {
		if st != nil {
			var quit bool
			quit, err = st.Wait()
			if err != nil || quit {
				break
			}
		}
		done, err = emu.Tick()
		if err != nil {
			break
		}
	}

	if err != nil {
		log.Printf("%v: %v", source, err)
	}

	return emulator.ExitCode(err)
}
