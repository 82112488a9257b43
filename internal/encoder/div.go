package encoder

import (
	"fmt"
	"os"
)

// Div emits the idiv sequence for dividend/src per spec.md §4.5: if the
// divisor is in RDX, move it to RCX first (idiv clobbers RDX as the
// remainder), then cqo to sign-extend RAX into RDX:RAX, then idiv src.
// The quotient ends up in RAX, the remainder in RDX; the caller picks
// which one the value-stack result refers to.
func (o *Out) Div(src Reg) Reg {
	if src == RDX {
		if Verbose {
			fmt.Fprintf(os.Stderr, "mov rcx, rdx:")
		}
		o.movRegReg(RCX, RDX)
		if Verbose {
			fmt.Fprintln(os.Stderr)
		}
		src = RCX
	}
	if Verbose {
		fmt.Fprint(os.Stderr, "cqo:")
	}
	o.EmitByte(0x48)
	o.EmitByte(0x99) // cqo
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}

	if Verbose {
		fmt.Fprintf(os.Stderr, "idiv %s:", src)
	}
	o.EmitREX(true, 0, 0, src)
	o.EmitByte(0xF7)
	o.EmitModRM(0x03, 7, src.Low3()) // /7 = idiv
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	return RAX
}

// Mod is identical to Div except the caller reads the remainder in RDX.
func (o *Out) Mod(src Reg) Reg {
	o.Div(src)
	return RDX
}
