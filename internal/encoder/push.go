package encoder

import (
	"fmt"
	"os"
)

// PushReg emits push r64 (50+rd).
func (o *Out) PushReg(r Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "push %s:", r)
	}
	if r.IsExtended() {
		o.EmitByte(0x41) // REX.B
	}
	o.EmitByte(0x50 + r.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// PushImm32 emits push imm32 (68), sign-extended to 64 bits at runtime.
func (o *Out) PushImm32(v int32) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "push %d:", v)
	}
	o.EmitByte(0x68)
	o.EmitLE32(v)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// PopReg emits pop r64 (58+rd).
func (o *Out) PopReg(r Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "pop %s:", r)
	}
	if r.IsExtended() {
		o.EmitByte(0x41)
	}
	o.EmitByte(0x58 + r.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// SubRSP emits sub rsp, n — the imm8 form (83 /5) when n fits in a signed
// byte, else imm32 (81 /5) — used for shadow-space/stack-arg allocation
// ahead of a call (spec.md §4.5).
func (o *Out) SubRSP(n int32) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "sub rsp, %d:", n)
	}
	o.EmitREX(true, 0, 0, RSP)
	if n >= -128 && n <= 127 {
		o.EmitByte(0x83)
		o.EmitModRM(0x03, 5, RSP.Low3())
		o.EmitByte(byte(int8(n)))
	} else {
		o.EmitByte(0x81)
		o.EmitModRM(0x03, 5, RSP.Low3())
		o.EmitLE32(n)
	}
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// AddRSP emits add rsp, n (imm8 or imm32 form, as SubRSP) — the post-call
// stack cleanup.
func (o *Out) AddRSP(n int32) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "add rsp, %d:", n)
	}
	o.EmitREX(true, 0, 0, RSP)
	if n >= -128 && n <= 127 {
		o.EmitByte(0x83)
		o.EmitModRM(0x03, 0, RSP.Low3())
		o.EmitByte(byte(int8(n)))
	} else {
		o.EmitByte(0x81)
		o.EmitModRM(0x03, 0, RSP.Low3())
		o.EmitLE32(n)
	}
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}
