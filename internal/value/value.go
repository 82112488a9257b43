// Package value implements the value stack described in spec.md §3/§4.4:
// a bounded stack of tagged value descriptors that is the contract between
// the parser and the x86-64 encoder.
package value

import "github.com/tcc86/tcc86/internal/ctype"

// R sentinel storage classes, spec.md §3. Values 0..5 (and up through the
// real register count) mean "live in that register"; the encoder package
// defines the concrete register numbering. These sentinels sit above any
// real register encoding (0..15 for x86-64 GPRs) in their own byte.
const (
	CONST  = 0xf0 // constant in C
	LLOCAL = 0xf1 // an 8-byte pointer spilled to frame offset C; dereference it to reach the Type-sized value
	LOCAL  = 0xf2 // frame-pointer-relative at offset C
	CMP    = 0xf3 // value is in CPU flags
	JMP    = 0xf4 // value is the "taken branch" of a conditional jump (uncond.)
	JMPI   = 0xf5 // value is the "taken branch" of a conditional jump (inverted test)
)

// High bits of R, spec.md §3.
const (
	LVAL     = 1 << 8 // value denotes a memory cell, not its contents
	SYM      = 1 << 9 // constant is resolved via Sym
	MUSTCAST = 1 << 10
)

// RMask extracts the low-byte storage class, ignoring the high flag bits.
func RMask(r uint32) uint32 { return r & 0xff }

// SymRef is the minimal view of a symbol a Value needs to carry; it avoids
// an import cycle with symtab (which does not need to know about values).
type SymRef interface{}

// Value is one value-stack entry: a partially-emitted expression result.
type Value struct {
	Type ctype.Type
	R    uint32
	R2   uint32
	C    int64
	Sym  SymRef
}

const stackSize = 256 // fixed size per spec.md §3

// Stack is the fixed-size value stack. Overflow/underflow are programming
// errors — spec.md §3 calls them out explicitly as raising a compile error,
// not something a well-formed program can trigger, so we panic with a
// typed value that compiler.State.CompileFile recovers and turns into a
// diag.Fatalf.
type Stack struct {
	entries [stackSize]Value
	top     int // number of live entries
}

// Overflow and Underflow are the panic values raised by push/pop past the
// stack's bounds, per spec.md §3 and §7 ("Semantic... value-stack
// overflow/underflow... reported and the local operation aborts").
type Overflow struct{}
type Underflow struct{}

// Push places v on top of the stack.
func (s *Stack) Push(v Value) {
	if s.top >= stackSize {
		panic(Overflow{})
	}
	s.entries[s.top] = v
	s.top++
}

// Set is a convenience wrapper matching spec.md's vset: push {Type, R, C}.
func (s *Stack) Set(t ctype.Type, r uint32, c int64) {
	s.Push(Value{Type: t, R: r, C: c})
}

// Top returns a pointer to the top entry without removing it.
func (s *Stack) Top() *Value {
	if s.top == 0 {
		panic(Underflow{})
	}
	return &s.entries[s.top-1]
}

// At returns a pointer to the entry n below the top (0 = top, 1 = next).
func (s *Stack) At(n int) *Value {
	idx := s.top - 1 - n
	if idx < 0 {
		panic(Underflow{})
	}
	return &s.entries[idx]
}

// Pop discards the top entry.
func (s *Stack) Pop() {
	if s.top == 0 {
		panic(Underflow{})
	}
	s.top--
}

// Dup duplicates the top entry (spec.md's vpush).
func (s *Stack) Dup() {
	s.Push(*s.Top())
}

// Swap exchanges the top two entries.
func (s *Stack) Swap() {
	a := s.At(0)
	b := s.At(1)
	*a, *b = *b, *a
}

// Len reports the number of live entries — used by Generator.SaveReg to
// scan every entry, and by tests to check the stack depth an operation
// leaves behind (spec.md §8 property 1).
func (s *Stack) Len() int { return s.top }
