// Package compiler owns the compiler state spec.md §3 describes and
// orchestrates the pipeline: lexer feeds parser, parser drives codegen
// directly through the value stack, and once the whole translation unit
// has been parsed the PE writer serializes the accumulated sections into
// an on-disk executable. Grounded on the teacher's compiler_state.go
// (the single struct every stage is threaded through) and cli.go (the
// driver function shape: parse, check for errors, write output).
package compiler

import (
	"fmt"

	"github.com/tcc86/tcc86/internal/codegen"
	"github.com/tcc86/tcc86/internal/diag"
	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/lexer"
	"github.com/tcc86/tcc86/internal/parser"
	"github.com/tcc86/tcc86/internal/pe"
	"github.com/tcc86/tcc86/internal/section"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/value"
)

// OutputKind distinguishes the two CLI output modes spec.md §6 names.
// "-c" is accepted but remains a stub per spec.md's Non-goals (relocatable
// object output is out of scope) — it changes only the default output
// extension, not the bytes written, a documented simplification rather
// than a silent gap.
type OutputKind int

const (
	OutputEXE OutputKind = iota
	OutputOBJ
)

// State bundles everything a single translation unit's compilation
// threads through: the symbol tables (globals and locals), the value stack, the section
// store, the generator sitting on top of the encoder, and the error
// collector, per spec.md §3's "Compiler state".
type State struct {
	Syms  *symtab.Tables
	Stack *value.Stack
	Sects *section.Store
	Out   *encoder.Out
	Gen   *codegen.Generator
	Diags *diag.Collector

	Verbose bool
}

// New creates a fresh compiler state for one translation unit.
func New(verbose bool) *State {
	sects := section.NewStore()
	stack := &value.Stack{}
	syms := symtab.NewTables()
	out := encoder.NewOut(sects.Text)
	encoder.Verbose = verbose

	return &State{
		Syms:    syms,
		Stack:   stack,
		Sects:   sects,
		Out:     out,
		Gen:     codegen.NewGenerator(out, stack, syms),
		Diags:   diag.NewCollector(),
		Verbose: verbose,
	}
}

// CompileFile parses sourceName (already read into src) end to end,
// recovering from the value stack's documented overflow/underflow panics
// (spec.md §3: "programming errors that raise a compile error") by
// turning them into a fatal diagnostic rather than crashing the process.
func (st *State) CompileFile(sourceName, src string) {
	defer func() {
		if r := recover(); r != nil {
			st.recoverStackPanic(sourceName, r)
		}
	}()

	lex := lexer.New(sourceName, src, st.Diags)
	p := parser.New(lex, st.Gen, st.Syms, st.Sects, st.Diags)
	p.ParseFile()
}

func (st *State) recoverStackPanic(sourceName string, r any) {
	loc := diag.Location{File: sourceName}
	switch r.(type) {
	case value.Overflow:
		st.Diags.Fatalf(loc, "value-stack overflow")
	case value.Underflow:
		st.Diags.Fatalf(loc, "value-stack underflow")
	default:
		panic(r)
	}
}

// WriteOutput serializes the compiled sections into a PE32+ image at
// path, resolving the generator's pending relocations first. Per
// spec.md §4.7, the entry point is main's offset in .text if main was
// defined, else bare SectionAlignment.
func (st *State) WriteOutput(path string, kind OutputKind) error {
	if st.Diags.HasErrors() {
		return fmt.Errorf("compiler: refusing to write output with outstanding errors")
	}

	mainOffset, mainDefined := st.mainEntry()
	return pe.Write(st.Sects, st.Gen.Relocs, mainOffset, mainDefined, path)
}

// mainEntry looks up the global symbol "main" and reports its resolved
// .text offset, per spec.md §4.7's AddressOfEntryPoint rule. A symbol
// only a fix-up-chain head (R != 1) counts as not yet defined — a
// prototype-only "int main(int);" with no body does not make a program
// runnable, exactly like an undefined ordinary function.
func (st *State) mainEntry() (int64, bool) {
	sym := st.Syms.FindGlobal("main")
	if sym == nil || sym.R != 1 {
		return 0, false
	}
	return sym.C, true
}
