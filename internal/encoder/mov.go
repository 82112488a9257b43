package encoder

import (
	"fmt"
	"os"

	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/value"
)

// Load materializes v into dest, per the cases enumerated in spec.md §4.5.
func (o *Out) Load(dest Reg, v value.Value) {
	switch value.RMask(v.R) {
	case value.CONST:
		o.loadConst(dest, v.C)
	case value.LOCAL:
		if v.R&value.LVAL != 0 {
			o.loadLocal(dest, v.C, v.Type)
		} else {
			o.leaLocal(dest, v.C)
		}
	default:
		src := Reg(value.RMask(v.R))
		if src != dest {
			o.movRegReg(dest, src)
		}
	}
}

// loadConst: zero -> xor r,r; fits int32 -> mov r, imm32 (sign-extended,
// C7/0); else mov r, imm64 (REX.W + B8+rd).
func (o *Out) loadConst(dest Reg, c int64) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "mov %s, %d:", dest, c)
	}
	if c == 0 {
		o.EmitREX(false, dest, 0, dest)
		o.EmitByte(0x31) // xor r/m32, r32
		o.EmitModRM(0x03, dest.Low3(), dest.Low3())
		if Verbose {
			fmt.Fprintln(os.Stderr)
		}
		return
	}
	if fitsSigned32(c) {
		o.EmitREX(true, 0, 0, dest)
		o.EmitByte(0xC7)
		o.EmitModRM(0x03, 0, dest.Low3())
		o.EmitLE32(int32(c))
		if Verbose {
			fmt.Fprintln(os.Stderr)
		}
		return
	}
	o.EmitREX(true, 0, 0, dest)
	o.EmitByte(0xB8 + dest.Low3())
	o.EmitLE64(c)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// loadLocal loads [rbp+c] into dest, sized and signed per the base type.
func (o *Out) loadLocal(dest Reg, c int64, t ctype.Type) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "mov %s, [rbp%+d]:", dest, c)
	}
	switch t.Size() {
	case 1:
		o.EmitREX(false, dest, 0, RBP)
		if t.IsUnsigned() {
			o.EmitByte(0x0F)
			o.EmitByte(0xB6) // movzx r32, r/m8
		} else {
			o.EmitByte(0x0F)
			o.EmitByte(0xBE) // movsx r32, r/m8
		}
		o.EmitModRMBP(dest.Low3(), c)
	case 2:
		o.EmitREX(false, dest, 0, RBP)
		if t.IsUnsigned() {
			o.EmitByte(0x0F)
			o.EmitByte(0xB7) // movzx r32, r/m16
		} else {
			o.EmitByte(0x0F)
			o.EmitByte(0xBF) // movsx r32, r/m16
		}
		o.EmitModRMBP(dest.Low3(), c)
	case 4:
		if t.IsUnsigned() {
			o.EmitREX(false, dest, 0, RBP)
			o.EmitByte(0x8B) // mov r32, r/m32 (zero-extends implicitly)
			o.EmitModRMBP(dest.Low3(), c)
		} else {
			o.EmitREX(true, dest, 0, RBP)
			o.EmitByte(0x63) // movsxd r64, r/m32
			o.EmitModRMBP(dest.Low3(), c)
		}
	default: // 8 bytes
		o.EmitREX(true, dest, 0, RBP)
		o.EmitByte(0x8B)
		o.EmitModRMBP(dest.Low3(), c)
	}
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// leaLocal computes the address [rbp+c] into dest without dereferencing.
func (o *Out) leaLocal(dest Reg, c int64) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "lea %s, [rbp%+d]:", dest, c)
	}
	o.EmitREX(true, dest, 0, RBP)
	o.EmitByte(0x8D) // lea r64, m
	o.EmitModRMBP(dest.Low3(), c)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// LoadIndirect loads [base+0] into dest, sized/signed by t — used to
// dereference a global variable's address once LeaRipRel has materialized
// it into base. Always encodes a one-byte zero displacement (mod=01)
// rather than mod=00, since base's low 3 bits being 101 (RBP/R13) would
// otherwise select RIP-relative addressing. No SIB byte is ever emitted,
// so a base whose low 3 bits are 100 (RSP/R12) is not encodable here;
// base is always a general-purpose value register chosen by Gv, which
// never returns RSP or RBP, so this is safe in practice.
func (o *Out) LoadIndirect(dest, base Reg, t ctype.Type) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "mov %s, [%s]:", dest, base)
	}
	switch t.Size() {
	case 1:
		o.EmitREX(false, dest, 0, base)
		if t.IsUnsigned() {
			o.EmitByte(0x0F)
			o.EmitByte(0xB6)
		} else {
			o.EmitByte(0x0F)
			o.EmitByte(0xBE)
		}
		o.emitIndirectModRM(dest.Low3(), base)
	case 2:
		o.EmitREX(false, dest, 0, base)
		if t.IsUnsigned() {
			o.EmitByte(0x0F)
			o.EmitByte(0xB7)
		} else {
			o.EmitByte(0x0F)
			o.EmitByte(0xBF)
		}
		o.emitIndirectModRM(dest.Low3(), base)
	case 4:
		if t.IsUnsigned() {
			o.EmitREX(false, dest, 0, base)
			o.EmitByte(0x8B)
			o.emitIndirectModRM(dest.Low3(), base)
		} else {
			o.EmitREX(true, dest, 0, base)
			o.EmitByte(0x63)
			o.emitIndirectModRM(dest.Low3(), base)
		}
	default:
		o.EmitREX(true, dest, 0, base)
		o.EmitByte(0x8B)
		o.emitIndirectModRM(dest.Low3(), base)
	}
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// StoreIndirect writes src to [base+0], sized by t.
func (o *Out) StoreIndirect(src, base Reg, t ctype.Type) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "mov [%s], %s:", base, src)
	}
	switch t.Size() {
	case 1:
		o.EmitREX(false, src, 0, base)
		o.EmitByte(0x88)
		o.emitIndirectModRM(src.Low3(), base)
	case 2:
		o.EmitByte(0x66)
		o.EmitREX(false, src, 0, base)
		o.EmitByte(0x89)
		o.emitIndirectModRM(src.Low3(), base)
	case 4:
		o.EmitREX(false, src, 0, base)
		o.EmitByte(0x89)
		o.emitIndirectModRM(src.Low3(), base)
	default:
		o.EmitREX(true, src, 0, base)
		o.EmitByte(0x89)
		o.emitIndirectModRM(src.Low3(), base)
	}
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

func (o *Out) emitIndirectModRM(reg uint8, base Reg) {
	o.EmitModRM(0x01, reg, base.Low3())
	o.EmitByte(0)
}

// MoveReg emits mov dest, src unconditionally (callers skip the call
// when the two registers are the same) — exported for
// callers outside this package (codegen's argument-register shuffling in
// GfuncCall) that need a bare register move without going through Load.
func (o *Out) MoveReg(dest, src Reg) { o.movRegReg(dest, src) }

// LeaRipRel emits lea dest, [rip+disp32] with disp32 left as a zero
// placeholder, and returns the offset of that 4-byte slot so the caller
// can patch it later once the target's final RVA is known (global-data
// and string-literal references, resolved after the PE writer lays out
// section RVAs — spec.md §4.3's ".rdata"/".data" section references).
func (o *Out) LeaRipRel(dest Reg) int {
	if Verbose {
		fmt.Fprintf(os.Stderr, "lea %s, [rip+?]:", dest)
	}
	o.EmitREX(true, dest, 0, RBP) // rm field 101 with mod=00 means RIP-relative, not [rbp]
	o.EmitByte(0x8D)
	o.EmitModRM(0x00, dest.Low3(), RBP.Low3())
	slot := o.Ind()
	o.EmitLE32(0)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	return slot
}

// movRegReg emits mov dest, src (89 /r) even when dest == src; Load and
// GfuncCall check for that case before calling.
func (o *Out) movRegReg(dest, src Reg) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "mov %s, %s:", dest, src)
	}
	o.EmitREX(true, src, 0, dest)
	o.EmitByte(0x89) // mov r/m64, r64
	o.EmitModRM(0x03, src.Low3(), dest.Low3())
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// Store writes src into the memory cell denoted by v (a LOCAL|LVAL entry),
// mirroring Load's LOCAL cases using opcodes 88/89 with the size prefix
// matching the base type, per spec.md §4.5.
func (o *Out) Store(src Reg, v value.Value) {
	if value.RMask(v.R) != value.LOCAL {
		return
	}
	c := v.C
	t := v.Type
	if Verbose {
		fmt.Fprintf(os.Stderr, "mov [rbp%+d], %s:", c, src)
	}
	switch t.Size() {
	case 1:
		o.EmitREX(false, src, 0, RBP)
		o.EmitByte(0x88) // mov r/m8, r8
		o.EmitModRMBP(src.Low3(), c)
	case 2:
		o.EmitByte(0x66) // 16-bit operand-size prefix
		o.EmitREX(false, src, 0, RBP)
		o.EmitByte(0x89)
		o.EmitModRMBP(src.Low3(), c)
	case 4:
		o.EmitREX(false, src, 0, RBP)
		o.EmitByte(0x89)
		o.EmitModRMBP(src.Low3(), c)
	default:
		o.EmitREX(true, src, 0, RBP)
		o.EmitByte(0x89)
		o.EmitModRMBP(src.Low3(), c)
	}
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
}
