// Command tcc86 is the CLI entry point: parse flags, read the input file,
// run it through the compiler package, and write a PE32+ executable.
// Grounded on the teacher's main.go flag-driven driver shape (version
// string constant, -h Usage override) simplified to the single-file,
// single-target surface spec.md §6 names — no subcommands, no multi-arch
// target selection, since those are explicitly out of scope here.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tcc86/tcc86/internal/compiler"
	"github.com/xyproto/env/v2"
)

const versionString = "tcc86 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("tcc86", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		outPath     string
		compileOnly bool
		showVersion bool
		verbose     bool
	)
	fs.StringVar(&outPath, "o", "", "output file path")
	fs.BoolVar(&compileOnly, "c", false, "compile only (stub: still emits a full PE, changes default extension to .obj)")
	fs.BoolVar(&showVersion, "v", false, "print version")
	fs.BoolVar(&verbose, "verbose", false, "trace every emitted instruction to stderr")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-o OUT] [-c] [-v] [-h] INPUT.c\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if showVersion {
		fmt.Println(versionString)
		return 0
	}

	rest := fs.Args()
	if len(rest) != 1 {
		fs.Usage()
		return 1
	}
	inputPath := rest[0]

	kind := compiler.OutputEXE
	if compileOnly {
		kind = compiler.OutputOBJ
	}
	if outPath == "" {
		outPath = defaultOutputPath(inputPath, kind)
	}

	useColor := !env.Bool("NO_COLOR")

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tcc86: %v\n", err)
		return 1
	}

	st := compiler.New(verbose)
	st.CompileFile(inputPath, string(src))

	if st.Diags.HasErrors() {
		st.Diags.PrintAll(useColor)
		return 1
	}

	if err := st.WriteOutput(outPath, kind); err != nil {
		fmt.Fprintf(os.Stderr, "tcc86: %v\n", err)
		return 1
	}

	if st.Diags.WarningCount() > 0 {
		st.Diags.PrintAll(useColor)
	}

	return 0
}

// defaultOutputPath replaces the input's trailing extension with .exe, or
// .obj under -c, per spec.md §6.
func defaultOutputPath(inputPath string, kind compiler.OutputKind) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	if kind == compiler.OutputOBJ {
		return base + ".obj"
	}
	return base + ".exe"
}
