package codegen

import (
	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/token"
)

// GenOp consumes the top one or two value-stack entries for operator op
// and leaves exactly one result entry on top, per spec.md §4.4/§4.5.
// Grounded on gen.c's gen_op for the dispatch shape and x86_64-gen.c's
// gen_opi for the per-operator encodings, with one deliberate departure
// from the original at the assignment case (see genCompoundAssign): the
// original's gen_op collapses every compound assignment to a bare '=',
// silently discarding the read-modify-write semantics C requires. We
// implement the full read-modify-write instead (SPEC_FULL.md §6.6).
func (g *Generator) GenOp(op token.Kind) {
	switch {
	case op == token.Assign:
		g.genAssign()
	case token.IsAssignOp(op):
		g.genCompoundAssign(token.BinaryOpForAssign(op))
	case op == token.Bang:
		r := g.Gv(encoder.RCInt)
		g.Out.SetzToReg(r)
		top := g.Stack.Top()
		top.R = uint32(encoder.RAX)
		top.Type = zeroType
	case op == token.Tilde:
		r := g.Gv(encoder.RCInt)
		g.Out.Not(r)
	default:
		g.genBinary(op)
	}
}

// GenNeg negates the top-of-stack value in place via neg r/m64, the
// one-operand encoding unary minus gets instead of routing through
// genBinary's two-operand Sub path (which exists for binary '-' and would
// need a synthetic zero operand pushed first to reuse here).
func (g *Generator) GenNeg() {
	r := g.Gv(encoder.RCInt)
	g.Out.Neg(r)
	top := g.Stack.Top()
	top.R = uint32(r)
}

// genAssign: load the rvalue into a register, pop it, store to the
// (now top-of-stack) lvalue, and leave the stored value — mirroring
// gen.c's gen_op('='): "int r = gv(RC_INT); vpop(); store(s, r, s->vtop);
// s->vtop->r = r".
func (g *Generator) genAssign() {
	r := g.Gv(encoder.RCInt)
	g.Stack.Pop()
	dest := g.Stack.Top()
	g.storeValue(r, *dest)
	dest.R = uint32(r)
}

// genCompoundAssign implements op= as load-dest, compute dest OP rhs,
// store back, matching ordinary C semantics. Stack on entry (top first):
// [rhs, dest]. We duplicate dest so one copy can be read as an operand
// and the other survives underneath to receive the Store afterward.
func (g *Generator) genCompoundAssign(binOp token.Kind) {
	g.Stack.Swap() // [dest, rhs]
	g.Stack.Dup()  // [dest(copy), dest(orig), rhs]

	// rotate right by one: [dest(copy), dest(orig), rhs] -> [rhs, dest(copy), dest(orig)]
	a, b := g.Stack.At(1), g.Stack.At(2)
	*a, *b = *b, *a
	g.Stack.Swap()

	g.genBinary(binOp) // consumes [rhs, dest(copy)], leaves [result]; dest(orig) untouched below
	r := g.Gv(encoder.RCInt)
	g.Stack.Pop()
	dest := g.Stack.Top()
	g.storeValue(r, *dest)
	dest.R = uint32(r)
}

// genBinary implements gen_opi's table: +, -, *, /, %, &, |, ^, <<, >>,
// and the six relational operators.
func (g *Generator) genBinary(op token.Kind) {
	switch op {
	case token.Plus:
		lhs, rhs := g.Gv2()
		g.Out.Add(lhs, rhs)
		g.finishBinary(lhs)
	case token.Minus:
		lhs, rhs := g.Gv2()
		g.Out.Sub(lhs, rhs)
		g.finishBinary(lhs)
	case token.Amp:
		lhs, rhs := g.Gv2()
		g.Out.And(lhs, rhs)
		g.finishBinary(lhs)
	case token.Pipe:
		lhs, rhs := g.Gv2()
		g.Out.Or(lhs, rhs)
		g.finishBinary(lhs)
	case token.Caret:
		lhs, rhs := g.Gv2()
		g.Out.Xor(lhs, rhs)
		g.finishBinary(lhs)
	case token.Star:
		// Gv2 leaves the left operand in RAX, where imul expects it.
		lhs, rhs := g.Gv2()
		g.Out.Mul(rhs)
		g.finishBinary(lhs)
	case token.Slash, token.Percent:
		// Gv2 leaves the dividend in RAX and the divisor in RCX.
		_, rhs := g.Gv2()
		var result encoder.Reg
		if op == token.Percent {
			result = g.Out.Mod(rhs)
		} else {
			result = g.Out.Div(rhs)
		}
		g.finishBinary(result)
	case token.Shl, token.Shr:
		lhs, _ := g.GvClass(encoder.RCInt, encoder.RCRCX)
		unsigned := g.Stack.At(1).Type.IsUnsigned()
		if op == token.Shl {
			g.Out.Shl(lhs)
		} else if unsigned {
			g.Out.Shr(lhs)
		} else {
			g.Out.Sar(lhs)
		}
		g.Stack.Pop()
		top := g.Stack.Top()
		top.R = uint32(lhs)
	case token.Eq, token.Ne, token.Lt, token.Gt, token.Le, token.Ge:
		unsigned := g.Stack.At(1).Type.IsUnsigned()
		lhs, rhs := g.Gv2()
		g.Out.Cmp(lhs, rhs)
		g.Stack.Pop()
		g.Out.SetccToReg(op, unsigned)
		top := g.Stack.Top()
		top.R = uint32(encoder.RAX)
		top.Type = zeroType
	}
}

// finishBinary pops the consumed operand and leaves the result in r,
// matching gen_opi's "vpop(); vtop->r stays whatever we computed into".
func (g *Generator) finishBinary(r encoder.Reg) {
	g.Stack.Pop()
	top := g.Stack.Top()
	top.R = uint32(r)
}

// GenCast rewrites the top value's type to t. Integer-to-integer and
// integer-to-pointer casts are pure type-word rewrites (the value is
// already a 64-bit register or a correctly-sized memory cell); spec.md
// explicitly excludes floating point, so unlike gen_cast we never call
// into a float conversion stub.
func (g *Generator) GenCast(t ctype.Type) {
	top := g.Stack.Top()
	top.Type = t
}
