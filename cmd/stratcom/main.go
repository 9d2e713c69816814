// Command stratcom runs a Strategic Communication source file. The
// command-line entry point is an external collaborator to the
// interpreter core, so this main is kept thin: read a file, hand it to
// the library packages, report the first error.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/bassosimone/strategic-communication/pkg/exec"
	"github.com/bassosimone/strategic-communication/pkg/parser"
	"github.com/bassosimone/strategic-communication/pkg/program"
)

func main() {
	log.SetFlags(0)
	filename := flag.String("f", "", "source file to run")
	verbose := flag.Bool("v", false, "trace each instruction before it executes")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for the paradigm shift random source")
	flag.Parse()
	if *filename == "" && flag.NArg() == 1 {
		*filename = flag.Arg(0)
	}
	if *filename == "" {
		log.Fatal("usage: stratcom [-v] [-seed N] <source-file> (or -f <source-file>)")
	}

	src, err := os.ReadFile(*filename)
	if err != nil {
		log.Fatal(err)
	}

	prog, err := parser.ParseProgram(src)
	if err != nil {
		log.Fatal(err)
	}

	machine := exec.New(os.Stdin, os.Stdout, exec.NewMathRandomSource(*seed))
	if *verbose {
		machine.Trace = func(pc int, in program.Instruction) {
			log.Printf("stratcom: #%04d %s", pc, program.Disassemble(in))
		}
	}
	if err := machine.Run(prog); err != nil {
		log.Fatal(err)
	}
}
