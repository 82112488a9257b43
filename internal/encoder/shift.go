package encoder

import (
	"fmt"
	"os"
)

// Shl, Shr, Sar emit shl/shr/sar dst, cl — spec.md §4.5: "shift count in
// CL via gv2(..., RC_RCX)", opcode D3 with /4, /5, /7 respectively.
func (o *Out) Shl(dst Reg) { o.shiftByCL("shl", 4, dst) }
func (o *Out) Shr(dst Reg) { o.shiftByCL("shr", 5, dst) } // unsigned
func (o *Out) Sar(dst Reg) { o.shiftByCL("sar", 7, dst) } // signed

func (o *Out) shiftByCL(name string, ext uint8, dst Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "%s %s, cl:", name, dst)
	}
	o.EmitREX(true, 0, 0, dst)
	o.EmitByte(0xD3)
	o.EmitModRM(0x03, ext, dst.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}
