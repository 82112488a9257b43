package encoder

import (
	"fmt"
	"os"

	"github.com/tcc86/tcc86/internal/token"
)

// Cmp emits cmp dst, src (39 /r), setting flags for a later Setcc.
func (o *Out) Cmp(dst, src Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "cmp %s, %s:", dst, src)
	}
	o.EmitREX(true, src, 0, dst)
	o.EmitByte(0x39)
	o.EmitModRM(0x03, src.Low3(), dst.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// setccOpcode is the table from spec.md §4.5: 0F 9x, selected by operator
// and signedness.
func setccOpcode(op token.Kind, unsigned bool) (byte, string) {
	switch op {
	case token.Eq:
		return 0x94, "sete"
	case token.Ne:
		return 0x95, "setne"
	case token.Lt:
		if unsigned {
			return 0x92, "setb"
		}
		return 0x9C, "setl"
	case token.Gt:
		if unsigned {
			return 0x97, "seta"
		}
		return 0x9F, "setg"
	case token.Le:
		if unsigned {
			return 0x96, "setbe"
		}
		return 0x9E, "setle"
	case token.Ge:
		if unsigned {
			return 0x93, "setae"
		}
		return 0x9D, "setge"
	}
	return 0x94, "sete"
}

// SetccToReg emits setcc al; movzx rax, al for the relational operator op,
// leaving a 0/1 result in RAX. This is the canonical lowering in spec.md
// §4.5 and §8 property 6.
func (o *Out) SetccToReg(op token.Kind, unsigned bool) {
	opcode, name := setccOpcode(op, unsigned)
	if Verbose {
		fmt.Fprintf(os.Stderr, "%s al:", name)
	}
	o.EmitByte(0x0F)
	o.EmitByte(opcode)
	o.EmitModRM(0x03, 0, RAX.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	o.movzxRaxAl()
}

func (o *Out) movzxRaxAl() {
	if Verbose {
		fmt.Fprint(os.Stderr, "movzx rax, al:")
	}
	o.EmitREX(true, RAX, 0, RAX)
	o.EmitByte(0x0F)
	o.EmitByte(0xB6) // movzx r64, r/m8
	o.EmitModRM(0x03, RAX.Low3(), RAX.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// Test emits test r, r — used both by gtst's test;jcc sequence and by the
// unary ! lowering.
func (o *Out) Test(r Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "test %s, %s:", r, r)
	}
	o.EmitREX(true, r, 0, r)
	o.EmitByte(0x85)
	o.EmitModRM(0x03, r.Low3(), r.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// SetzToReg emits test r,r; setz al; movzx rax,al — the unary ! lowering
// from spec.md §4.5.
func (o *Out) SetzToReg(r Reg) {
	o.Test(r)
	if Verbose {
		fmt.Fprint(os.Stderr, "setz al:")
	}
	o.EmitByte(0x0F)
	o.EmitByte(0x94)
	o.EmitModRM(0x03, 0, RAX.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	o.movzxRaxAl()
}
