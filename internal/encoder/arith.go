package encoder

import (
	"fmt"
	"os"
)

// Add, Sub, And, Or, Xor emit dst op= src as 64-bit register-register ops,
// per spec.md §4.5's gen_opi table: + 01 /r, - 29 /r, & 21 /r, | 09 /r,
// ^ 31 /r. All operate with dst as both destination and one operand.
func (o *Out) Add(dst, src Reg) { o.binOp("add", 0x01, dst, src) }
func (o *Out) Sub(dst, src Reg) { o.binOp("sub", 0x29, dst, src) }
func (o *Out) And(dst, src Reg) { o.binOp("and", 0x21, dst, src) }
func (o *Out) Or(dst, src Reg)  { o.binOp("or", 0x09, dst, src) }
func (o *Out) Xor(dst, src Reg) { o.binOp("xor", 0x31, dst, src) }

func (o *Out) binOp(name string, opcode byte, dst, src Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "%s %s, %s:", name, dst, src)
	}
	// e.g. ADD r/m64, r64: opcode 01 /r encodes (dst) as r/m, src as reg.
	o.EmitREX(true, src, 0, dst)
	o.EmitByte(opcode)
	o.EmitModRM(0x03, src.Low3(), dst.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// Mul emits imul rax, src (0F AF), leaving the low 64 bits of the product
// in RAX per spec.md §4.5.
func (o *Out) Mul(src Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "imul rax, %s:", src)
	}
	o.EmitREX(true, RAX, 0, src)
	o.EmitByte(0x0F)
	o.EmitByte(0xAF)
	o.EmitModRM(0x03, RAX.Low3(), src.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}
