package encoder

import (
	"fmt"
	"os"
)

// FrameSize is the fixed local-frame allocation the prologue reserves
// (spec.md §4.5: "sub rsp, 0x60").
const FrameSize = 0x60

// GfuncProlog emits push rbp; mov rbp, rsp; sub rsp, 0x60; then spills the
// four integer ABI argument registers to their shadow slots [rbp+16],
// [rbp+24], [rbp+32], [rbp+40], per spec.md §4.5. The caller (the
// parser's parseFunc) resets the generator's frame-offset cursor to 0
// just before calling this.
func (o *Out) GfuncProlog() {
	if Verbose {
		fmt.Fprint(os.Stderr, "push rbp:")
	}
	o.PushReg(RBP)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}

	if Verbose {
		fmt.Fprint(os.Stderr, "mov rbp, rsp:")
	}
	o.movRegReg(RBP, RSP)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}

	o.SubRSP(FrameSize)

	shadow := [4]int64{16, 24, 32, 40}
	for i, r := range ArgRegs {
		o.storeRegToRBP(r, shadow[i], 8)
	}
}

func (o *Out) storeRegToRBP(src Reg, disp int64, size int) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "mov [rbp%+d], %s:", disp, src)
	}
	o.EmitREX(size == 8, src, 0, RBP)
	o.EmitByte(0x89)
	o.EmitModRMBP(src.Low3(), disp)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// GfuncEpilog emits mov rsp, rbp; pop rbp; ret, per spec.md §4.5.
func (o *Out) GfuncEpilog() {
	if Verbose {
		fmt.Fprint(os.Stderr, "mov rsp, rbp:")
	}
	o.movRegReg(RSP, RBP)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}

	if Verbose {
		fmt.Fprint(os.Stderr, "pop rbp:")
	}
	o.PopReg(RBP)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}

	if Verbose {
		fmt.Fprint(os.Stderr, "ret:")
	}
	o.EmitByte(0xC3)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// CallShadowAndArgSize computes the stack adjustment for k arguments per
// spec.md §8 property 5: k <= 4 -> 32 (shadow space only); k > 4 -> 32 +
// 8*(k-4) (shadow space plus the pushed overflow args).
func CallShadowAndArgSize(k int) int32 {
	if k <= 4 {
		return 32
	}
	return int32(32 + 8*(k-4))
}
