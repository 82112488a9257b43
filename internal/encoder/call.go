package encoder

import (
	"fmt"
	"os"
)

// CallRelative emits call rel32 (E8) with rel as the displacement, which
// the caller computes as sym.C - (ind+4) with ind the offset of the
// 4-byte slot (the "canonical", correctness-picked version of
// gfunc_call's relative-offset computation), and returns the slot offset.
func (o *Out) CallRelative(rel int32) int {
	if Verbose {
		fmt.Fprintf(os.Stderr, "call %d:", rel)
	}
	o.EmitByte(0xE8)
	slot := o.Ind()
	o.EmitLE32(rel)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	return slot
}

// CallRelativePlaceholder emits call rel32 with prev as the displacement
// field, threading the slot onto a symbol's forward-call fix-up chain the
// same way JumpUnconditional threads an unresolved jmp — used when a
// function is called before its definition's address is known.
func (o *Out) CallRelativePlaceholder(prev int32) int {
	if Verbose {
		fmt.Fprintf(os.Stderr, "call <fixup %d>:", prev)
	}
	o.EmitByte(0xE8)
	slot := o.Ind()
	o.EmitLE32(prev)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	return slot
}

// CallIndirect emits call r/m64 (FF /2) through a register holding the
// target address — used for calls whose callee is not a symbol (a
// computed function address); calls to a symbol not yet defined in .text
// go through CallRelativePlaceholder instead.
func (o *Out) CallIndirect(r Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "call %s:", r)
	}
	o.EmitREX(false, 0, 0, r)
	o.EmitByte(0xFF)
	o.EmitModRM(0x03, 2, r.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}
