// Package codegen drives the x86-64 encoder directly off the value stack,
// with no intervening AST: each parser production calls into a Generator
// method that consumes some number of value.Stack entries and appends
// bytes to .text, per spec.md §3/§4.4. Grounded on the teacher's flat,
// one-concern-per-file encoder layout and on original_source/src/gen.c +
// x86_64-gen.c for the exact value-stack algorithms (save_reg, gv, gv2,
// gen_op, gjmp/gtst/glabel, gfunc_call).
package codegen

import (
	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/value"
)

// Generator bundles the pieces gen.c threads through TCCState: the byte
// emitter, the value stack, and the frame-offset cursor (Loc) that grows
// downward as locals and spills are allocated.
type Generator struct {
	Out   *encoder.Out
	Stack *value.Stack
	Syms  *symtab.Tables

	Loc int64 // next free frame offset, always <= 0 and 8-aligned

	Relocs []Reloc // pending RIP-relative references into .data/.rdata
}

// Reloc records a lea-reg,[rip+disp32] instruction whose displacement
// could not be computed at emission time because the target section's
// final RVA is not known until the PE writer lays out the image. The
// compiler driver patches these after layout, per SPEC_FULL.md §6.7.
type Reloc struct {
	CodeOffset    int    // offset of the 4-byte disp32 slot within .text
	TargetSection string // section.Data / section.RData
	TargetOffset  int64  // byte offset within that section
}

// NewGenerator wraps an encoder and value stack for one translation unit.
func NewGenerator(out *encoder.Out, stack *value.Stack, syms *symtab.Tables) *Generator {
	return &Generator{Out: out, Stack: stack, Syms: syms}
}

// AllocLocal reserves n bytes (rounded up to 8) of frame space and returns
// its offset, per spec.md §4.2's "bump allocator, always rounding down to
// the next 8-byte boundary".
func (g *Generator) AllocLocal(n int) int64 {
	if n <= 0 {
		n = 1
	}
	g.Loc = (g.Loc - int64(n)) &^ 7
	return g.Loc
}

// spillSlot allocates one 8-byte-aligned spill slot, matching save_reg's
// "s->loc = (s->loc - 8) & ~7".
func (g *Generator) spillSlot() int64 {
	g.Loc = (g.Loc - 8) &^ 7
	return g.Loc
}

// SaveReg spills every value-stack entry currently resident in register r
// to a fresh frame slot, rewriting each in place to a LOCAL|LVAL entry.
// Ported verbatim from gen.c's save_reg: it scans the WHOLE stack, not
// just the top, since an operand buried below the top can still occupy
// the register about to be reused.
func (g *Generator) SaveReg(r encoder.Reg) {
	for i := 0; i < g.Stack.Len(); i++ {
		sv := g.Stack.At(i)
		if value.RMask(sv.R) != uint32(r) {
			continue
		}
		slot := g.spillSlot()
		if sv.R&value.LVAL != 0 {
			// r holds the ADDRESS of an lvalue (a pointer/array-index
			// dereference still pending), not the value itself: spill the
			// 8-byte address, and mark the entry LLOCAL so a later load
			// or store re-derives the address from the frame before
			// dereferencing through it, instead of misreading the raw
			// address bytes as a Type-sized value.
			g.Out.Store(r, value.Value{Type: ctype.Pointer(sv.Type), R: value.LOCAL, C: slot})
			sv.R = value.LLOCAL | value.LVAL
			sv.C = slot
			continue
		}
		g.Out.Store(r, value.Value{Type: sv.Type, R: value.LOCAL | value.LVAL, C: slot})
		sv.R = value.LOCAL | value.LVAL
		sv.C = slot
	}
}

// Gv materializes the top-of-stack value into a register satisfying rc,
// spilling and loading as needed, and returns that register. Ported from
// gen.c's gv(): if the top is already in a register matching rc, reuse it;
// otherwise pick the register rc demands (defaulting to RAX), spill any
// stack entry occupying it, load, and rewrite the top entry's R.
func (g *Generator) Gv(rc encoder.RegClass) encoder.Reg {
	top := g.Stack.Top()
	cur := value.RMask(top.R)
	// A register-resident entry with LVAL set holds the ADDRESS of a
	// pending dereference (from '*' or '[]'), not the value — it must
	// fall through to the general load path below instead of being
	// handed back as-is.
	if cur < encoder.NBRegs && top.R&value.LVAL == 0 {
		r := encoder.Reg(cur)
		match := true
		switch rc {
		case encoder.RCRAX:
			match = r == encoder.RAX
		case encoder.RCRCX:
			match = r == encoder.RCX
		case encoder.RCRDX:
			match = r == encoder.RDX
		}
		if match {
			return r
		}
	}

	var r encoder.Reg
	switch rc {
	case encoder.RCRAX:
		r = encoder.RAX
	case encoder.RCRCX:
		r = encoder.RCX
	case encoder.RCRDX:
		r = encoder.RDX
	default:
		r = encoder.RAX
	}

	g.SaveReg(r)
	g.loadValue(r, *top)
	top.R = uint32(r)
	return r
}

// loadValue is Load plus the one case Load cannot express on its own:
// a symbolic (global/string) address, which needs a RIP-relative lea
// patched after section layout instead of an immediate move.
func (g *Generator) loadValue(dest encoder.Reg, v value.Value) {
	if value.RMask(v.R) == value.CONST && v.R&value.SYM != 0 {
		if sym, ok := v.Sym.(*symtab.Symbol); ok {
			g.LoadGlobalAddr(dest, sym.SectionName, v.C)
			if v.R&value.LVAL != 0 {
				g.Out.LoadIndirect(dest, dest, v.Type)
			}
			return
		}
	}
	if value.RMask(v.R) == value.LLOCAL {
		g.Out.Load(dest, value.Value{Type: ctype.Pointer(v.Type), R: value.LOCAL | value.LVAL, C: v.C})
		g.Out.LoadIndirect(dest, dest, v.Type)
		return
	}
	if rm := value.RMask(v.R); rm < encoder.NBRegs && v.R&value.LVAL != 0 {
		g.Out.LoadIndirect(dest, encoder.Reg(rm), v.Type)
		return
	}
	g.Out.Load(dest, v)
}

// storeValue is Store's counterpart: writing through a symbolic lvalue
// materializes its address into a scratch register first.
func (g *Generator) storeValue(src encoder.Reg, v value.Value) {
	if value.RMask(v.R) == value.CONST && v.R&value.SYM != 0 && v.R&value.LVAL != 0 {
		if sym, ok := v.Sym.(*symtab.Symbol); ok {
			addr := scratchAddrReg(src)
			g.LoadGlobalAddr(addr, sym.SectionName, v.C)
			g.Out.StoreIndirect(src, addr, v.Type)
			return
		}
	}
	if value.RMask(v.R) == value.LLOCAL {
		addr := scratchAddrReg(src)
		g.Out.Load(addr, value.Value{Type: ctype.Pointer(v.Type), R: value.LOCAL | value.LVAL, C: v.C})
		g.Out.StoreIndirect(src, addr, v.Type)
		return
	}
	if rm := value.RMask(v.R); rm < encoder.NBRegs && v.R&value.LVAL != 0 {
		g.Out.StoreIndirect(src, encoder.Reg(rm), v.Type)
		return
	}
	g.Out.Store(src, v)
}

// scratchAddrReg picks a register distinct from src to hold a materialized
// address ahead of an indirect store.
func scratchAddrReg(src encoder.Reg) encoder.Reg {
	if src == encoder.RCX {
		return encoder.RDX
	}
	return encoder.RCX
}

// GvReg is a convenience for call sites (GfuncCall) that need "any general
// register" without naming a specific class.
func (g *Generator) GvReg() encoder.Reg { return g.Gv(encoder.RCInt) }

// Gv2 materializes the top two stack entries into distinct registers,
// second operand in RCX and first in RAX, then leaves them in that order
// (first below second). This reproduces gen.c's gv2 exactly, including
// its ignoring of rc1/rc2: the real TinyCC hardcodes RCX-then-RAX for
// every binary operator regardless of the classes its callers pass.
func (g *Generator) Gv2() (lhs, rhs encoder.Reg) {
	g.Gv(encoder.RCRCX)
	g.Stack.Swap()
	g.Gv(encoder.RCRAX)
	g.Stack.Swap()
	lhs = encoder.Reg(value.RMask(g.Stack.At(1).R))
	rhs = encoder.Reg(value.RMask(g.Stack.At(0).R))
	return lhs, rhs
}

// GvClass materializes the top two entries with the first forced into
// class rc1 and the second into rc2 — used by shift operators, where the
// count operand must land in RCX specifically rather than gv2's fixed
// RCX/RAX pairing.
func (g *Generator) GvClass(rc1, rc2 encoder.RegClass) (lhs, rhs encoder.Reg) {
	g.Gv(rc2)
	g.Stack.Swap()
	g.Gv(rc1)
	g.Stack.Swap()
	lhs = encoder.Reg(value.RMask(g.Stack.At(1).R))
	rhs = encoder.Reg(value.RMask(g.Stack.At(0).R))
	return lhs, rhs
}

// zeroType is the type attached to truth-valued results (comparisons,
// !), matching gen.c's vtop->t = VT_INT for those lowerings.
var zeroType = ctype.Int

// LoadGlobalAddr emits lea dest, [rip+disp32] for a reference to
// sectionName:offset and records the displacement as pending until the
// PE writer assigns final section RVAs.
func (g *Generator) LoadGlobalAddr(dest encoder.Reg, sectionName string, offset int64) {
	slot := g.Out.LeaRipRel(dest)
	g.Relocs = append(g.Relocs, Reloc{CodeOffset: slot, TargetSection: sectionName, TargetOffset: offset})
}
