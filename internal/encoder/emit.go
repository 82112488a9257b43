package encoder

import (
	"fmt"
	"os"

	"github.com/tcc86/tcc86/internal/section"
)

// Verbose gates the per-instruction trace output, matching the teacher's
// package-level VerboseMode gating fmt.Fprintf(os.Stderr, ...) in every
// encoder file.
var Verbose bool

// Out is the byte emitter: it appends to a single .text section and tracks
// the current code offset, spec.md §3's Ind.
type Out struct {
	Text *section.Section
}

// NewOut wraps a .text section for encoding.
func NewOut(text *section.Section) *Out {
	return &Out{Text: text}
}

// Ind returns the current code offset (length of .text so far).
func (o *Out) Ind() int { return o.Text.Size() }

// EmitByte appends one byte.
func (o *Out) EmitByte(b byte) {
	o.Text.Add([]byte{b})
	if Verbose {
		fmt.Fprintf(os.Stderr, " %02x", b)
	}
}

// EmitBytes appends a slice of bytes.
func (o *Out) EmitBytes(bs []byte) {
	o.Text.Add(bs)
	if Verbose {
		for _, b := range bs {
			fmt.Fprintf(os.Stderr, " %02x", b)
		}
	}
}

// EmitLE32 writes a little-endian 32-bit value.
func (o *Out) EmitLE32(v int32) {
	u := uint32(v)
	o.EmitBytes([]byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)})
}

// EmitLE64 writes a little-endian 64-bit value.
func (o *Out) EmitLE64(v int64) {
	u := uint64(v)
	o.EmitBytes([]byte{
		byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24),
		byte(u >> 32), byte(u >> 40), byte(u >> 48), byte(u >> 56),
	})
}

// EmitREX computes and conditionally emits a REX prefix per spec.md §4.5:
// 0x40 | (w<<3) | (r>7)<<2 | (x>7)<<1 | (b>7), suppressed if it would equal
// plain 0x40 except when w=1 or an extended register is actually used.
func (o *Out) EmitREX(w bool, r, x, b Reg) {
	var rex byte = 0x40
	if w {
		rex |= 1 << 3
	}
	if r.IsExtended() {
		rex |= 1 << 2
	}
	if x.IsExtended() {
		rex |= 1 << 1
	}
	if b.IsExtended() {
		rex |= 1 << 0
	}
	if rex == 0x40 && !w && !r.IsExtended() && !x.IsExtended() && !b.IsExtended() {
		return
	}
	o.EmitByte(rex)
}

// EmitModRM encodes a single ModR/M byte.
func (o *Out) EmitModRM(mod, reg, rm uint8) {
	o.EmitByte((mod << 6) | ((reg & 7) << 3) | (rm & 7))
}

// EmitModRMBP encodes a ModR/M + displacement addressing [rbp+disp],
// choosing the 8-bit disp8 form when disp fits signed 8 bits, else disp32,
// per spec.md §4.5.
func (o *Out) EmitModRMBP(reg uint8, disp int64) {
	if disp >= -128 && disp <= 127 {
		o.EmitModRM(0x01, reg, RBP.Low3())
		o.EmitByte(byte(int8(disp)))
		return
	}
	o.EmitModRM(0x02, reg, RBP.Low3())
	o.EmitLE32(int32(disp))
}

func fitsSigned32(c int64) bool {
	return c >= -2147483648 && c <= 2147483647
}
