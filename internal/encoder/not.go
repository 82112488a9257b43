package encoder

import (
	"fmt"
	"os"
)

// Not emits not r (F7 /2) — the unary ~ lowering from spec.md §4.5.
func (o *Out) Not(r Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "not %s:", r)
	}
	o.EmitREX(true, 0, 0, r)
	o.EmitByte(0xF7)
	o.EmitModRM(0x03, 2, r.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// Neg emits neg r (F7 /3): codegen.Generator.GenNeg's encoding for unary
// minus on a value materialized into a register.
func (o *Out) Neg(r Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "neg %s:", r)
	}
	o.EmitREX(true, 0, 0, r)
	o.EmitByte(0xF7)
	o.EmitModRM(0x03, 3, r.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}
