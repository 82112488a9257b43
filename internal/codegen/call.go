package codegen

import (
	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/value"
)

// GfuncCall implements the Windows x64 call sequence for a call with
// nargs arguments already on the value stack (pushed left-to-right, so
// the rightmost argument is on top) and the callee address/symbol below
// all of them. Ported from x86_64-gen.c's gfunc_call, with two fixes over
// the original: a direct call to a symbol uses the canonical
// sym.C - (ind+4) relative offset (ind being the offset of the 4-byte
// slot) when the callee is already defined in .text, and is threaded onto
// the callee's fix-up chain when it is not (SPEC_FULL.md §6.6); and the
// post-call stack cleanup accounts for the alignment padding
// byte-for-byte rather than assuming it away. Only a callee that is not
// a symbol (a computed address) goes through an indirect call.
func (g *Generator) GfuncCall(nargs int) {
	stackArgs := 0
	if nargs > 4 {
		stackArgs = nargs - 4
	}

	align := int32(0)
	if stackArgs > 0 && (stackArgs*8+32)%16 != 0 {
		align = 8
		g.Out.SubRSP(align)
	}

	for i := nargs - 1; i >= 4; i-- {
		r := g.Gv(encoder.RCInt)
		g.Out.PushReg(r)
		g.Stack.Pop()
	}

	n := nargs
	if n > 4 {
		n = 4
	}
	for i := n - 1; i >= 0; i-- {
		target := encoder.ArgRegs[i]
		rc := argClass(i)
		r := g.Gv(rc)
		if r != target {
			g.Out.MoveReg(target, r)
		}
		g.Stack.Pop()
	}

	g.Out.SubRSP(32)

	callee := g.Stack.Top()
	if value.RMask(callee.R) == value.CONST && callee.R&value.SYM != 0 && callee.Sym != nil {
		sym := callee.Sym.(*symtab.Symbol)
		if sym.R == 1 {
			// The slot starts after the one-byte E8 opcode.
			rel := int32(sym.C - int64(g.Out.Ind()+1+4))
			g.Out.CallRelative(rel)
		} else {
			// Not yet defined: thread this call site onto sym's fix-up
			// chain, exactly like Gjmp does for an undefined label. Glabel
			// (called when the function's definition is finally parsed)
			// walks and patches this chain the same way it resolves a
			// forward jump.
			slot := g.Out.CallRelativePlaceholder(int32(sym.C))
			sym.C = int64(slot)
		}
	} else {
		r := g.Gv(encoder.RCInt)
		g.Out.CallIndirect(r)
	}
	g.Stack.Pop()

	cleanup := int32(32) + int32(stackArgs*8) + align
	g.Out.AddRSP(cleanup)

	g.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RAX)})
}

func argClass(i int) encoder.RegClass {
	switch i {
	case 0:
		return encoder.RCRCX
	case 1:
		return encoder.RCRDX
	default:
		return encoder.RCInt
	}
}
