// Package encoder is the x86-64 byte emitter and instruction encoder of
// spec.md §4.5: it appends bytes to the .text section and encodes REX,
// ModR/M, and displacement forms. One file per instruction family, the
// teacher's own convention (reg.go, mov.go, cmp.go, jmp.go, div.go,
// shl.go, shr.go, not.go, inc.go, push.go, call.go) minus the
// ARM64/RISC-V dispatch arms, since this spec targets x86-64 only.
package encoder

// Reg is an x86-64 general-purpose register encoding, 0..15 (REX.B/R/X
// extend it past 7 for r8-r15). Matches the teacher's reg.go Encoding field
// numbering exactly.
type Reg uint8

const (
	RAX Reg = 0
	RCX Reg = 1
	RDX Reg = 2
	RBX Reg = 3
	RSP Reg = 4
	RBP Reg = 5
	RSI Reg = 6
	RDI Reg = 7
	R8  Reg = 8
	R9  Reg = 9
	R10 Reg = 10
	R11 Reg = 11
	R12 Reg = 12
	R13 Reg = 13
	R14 Reg = 14
	R15 Reg = 15
)

// NBRegs is the count of general-purpose registers the value stack treats
// as live-value homes — spec.md's value.R sentinel space starts at 0xf0,
// strictly above this, per spec.md §3 ("sentinel space (>= number of real
// registers)").
const NBRegs = 16

// RegClass distinguishes "any general register" from "this specific
// register required by an encoding" (shift count in CL, dividend in
// RAX/RDX, Windows x64 ABI argument registers).
type RegClass int

const (
	RCInt RegClass = iota // any general-purpose integer register
	RCRAX
	RCRCX
	RCRDX
)

// names for disassembly-style trace output.
var regNames64 = [16]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

func (r Reg) String() string { return regNames64[r&15] }

// IsExtended reports whether encoding this register requires a REX.B/R/X bit.
func (r Reg) IsExtended() bool { return r >= 8 }

// Low3 returns the 3-bit field used in ModR/M/opcode-extension positions.
func (r Reg) Low3() uint8 { return uint8(r) & 7 }

// ArgRegs lists the Windows x64 ABI integer argument registers, in order,
// per spec.md §4.5: "first four integer args in RCX, RDX, R8, R9".
var ArgRegs = [4]Reg{RCX, RDX, R8, R9}
