package parser

import (
	"github.com/tcc86/tcc86/internal/codegen"
	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/section"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/token"
	"github.com/tcc86/tcc86/internal/value"
)

// expr parses a full comma-free expression (assignment precedence), per
// spec.md §4.6's ladder: assign -> lor -> land -> bor -> bxor -> band ->
// eq -> rel -> shift -> add -> mul -> unary -> postfix -> primary.
func (p *Parser) expr() { p.exprAssign() }

// exprAssign handles right-associative assignment. GenOp's own dispatch
// already distinguishes plain '=' from the compound operators, so both
// are routed through the same call here.
func (p *Parser) exprAssign() {
	p.exprLogOr()
	if token.IsAssignOp(p.tok.Kind) {
		op := p.tok.Kind
		p.next()
		p.exprAssign()
		p.Gen.GenOp(op)
	}
}

// exprLogOr and exprLogAnd implement short-circuit evaluation, fixing
// spec.md's flagged gap (the original never lowers && and || at all):
// the untaken side is skipped at runtime via Gtst/Gjmp, and both sides
// converge on a normalized 0/1 result in RAX via Glabel.
func (p *Parser) exprLogOr() {
	p.exprLogAnd()
	for p.tok.Kind == token.LogOr {
		p.next()
		lTrue := codegen.Gind()
		lEnd := codegen.Gind()

		p.Gen.Gtst(false, lTrue) // left already true: skip straight to the true branch

		p.exprLogAnd()
		r := p.Gen.Gv(encoder.RCInt)
		p.Gen.Out.Test(r)
		p.Gen.Out.SetccToReg(token.Ne, false)
		p.Gen.Stack.Pop()
		p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RAX)})
		p.Gen.Gjmp(lEnd)

		p.Gen.Glabel(lTrue)
		p.Gen.Out.Load(encoder.RAX, value.Value{R: value.CONST, C: 1})

		p.Gen.Glabel(lEnd)
	}
}

func (p *Parser) exprLogAnd() {
	p.exprBitOr()
	for p.tok.Kind == token.LogAnd {
		p.next()
		lFalse := codegen.Gind()
		lEnd := codegen.Gind()

		p.Gen.Gtst(true, lFalse) // left already false: skip straight to the false branch

		p.exprBitOr()
		r := p.Gen.Gv(encoder.RCInt)
		p.Gen.Out.Test(r)
		p.Gen.Out.SetccToReg(token.Ne, false)
		p.Gen.Stack.Pop()
		p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RAX)})
		p.Gen.Gjmp(lEnd)

		p.Gen.Glabel(lFalse)
		p.Gen.Out.Load(encoder.RAX, value.Value{R: value.CONST, C: 0})

		p.Gen.Glabel(lEnd)
	}
}

func (p *Parser) exprBitOr() {
	p.exprBitXor()
	for p.tok.Kind == token.Pipe {
		p.next()
		p.exprBitXor()
		p.Gen.GenOp(token.Pipe)
	}
}

func (p *Parser) exprBitXor() {
	p.exprBitAnd()
	for p.tok.Kind == token.Caret {
		p.next()
		p.exprBitAnd()
		p.Gen.GenOp(token.Caret)
	}
}

func (p *Parser) exprBitAnd() {
	p.exprEq()
	for p.tok.Kind == token.Amp {
		p.next()
		p.exprEq()
		p.Gen.GenOp(token.Amp)
	}
}

func (p *Parser) exprEq() {
	p.exprRel()
	for p.tok.Kind == token.Eq || p.tok.Kind == token.Ne {
		op := p.tok.Kind
		p.next()
		p.exprRel()
		p.Gen.GenOp(op)
	}
}

func (p *Parser) exprRel() {
	p.exprShift()
	for p.tok.Kind == token.Lt || p.tok.Kind == token.Gt || p.tok.Kind == token.Le || p.tok.Kind == token.Ge {
		op := p.tok.Kind
		p.next()
		p.exprShift()
		p.Gen.GenOp(op)
	}
}

func (p *Parser) exprShift() {
	p.exprAdd()
	for p.tok.Kind == token.Shl || p.tok.Kind == token.Shr {
		op := p.tok.Kind
		p.next()
		p.exprAdd()
		p.Gen.GenOp(op)
	}
}

// exprAdd handles + and -, with the scaled-pointer-arithmetic fix
// SPEC_FULL.md §6.6 calls for: adding/subtracting an int to/from a
// pointer scales the int operand by the pointee's size first, instead
// of the original's bare byte-offset addition.
func (p *Parser) exprAdd() {
	p.exprMul()
	for p.tok.Kind == token.Plus || p.tok.Kind == token.Minus {
		op := p.tok.Kind
		p.next()
		lt := p.Gen.Stack.Top().Type
		p.exprMul()
		rt := p.Gen.Stack.Top().Type

		switch {
		case lt.IsPointer() && !rt.IsPointer():
			p.scaleByElemSize(lt.Deref())
		case op == token.Plus && rt.IsPointer() && !lt.IsPointer():
			p.Gen.Stack.Swap()
			p.scaleByElemSize(rt.Deref())
			p.Gen.Stack.Swap()
		}
		p.Gen.GenOp(op)
	}
}

// scaleByElemSize multiplies the top-of-stack integer by elemType's size,
// in place, by pushing the size as a constant and emitting a multiply.
func (p *Parser) scaleByElemSize(elemType ctype.Type) {
	size := elemType.Size()
	if size <= 1 {
		return
	}
	p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: int64(size)})
	p.Gen.GenOp(token.Star)
}

func (p *Parser) exprMul() {
	p.exprUnary()
	for p.tok.Kind == token.Star || p.tok.Kind == token.Slash || p.tok.Kind == token.Percent {
		op := p.tok.Kind
		p.next()
		p.exprUnary()
		p.Gen.GenOp(op)
	}
}

// exprUnary handles the unary operators, sizeof, casts, and pre-inc/dec —
// per spec.md §4.6 plus SPEC_FULL.md §6.6's fixes for address-of,
// dereference, and pre/post ++/--, none of which the original correctly
// implements.
func (p *Parser) exprUnary() {
	switch p.tok.Kind {
	case token.Minus:
		p.next()
		p.exprUnary()
		p.Gen.GenNeg()

	case token.Plus:
		p.next()
		p.exprUnary()

	case token.Bang:
		p.next()
		p.exprUnary()
		p.Gen.GenOp(token.Bang)

	case token.Tilde:
		p.next()
		p.exprUnary()
		p.Gen.GenOp(token.Tilde)

	case token.Star:
		p.next()
		p.exprUnary()
		top := p.Gen.Stack.Top()
		if top.Type.IsPointer() {
			r := p.Gen.Gv(encoder.RCInt)
			top.Type = top.Type.Deref()
			top.R = uint32(r) | value.LVAL
		} else {
			p.errf("dereference of a non-pointer type")
		}

	case token.Amp:
		p.next()
		p.exprUnary()
		top := p.Gen.Stack.Top()
		if top.R&value.LVAL == 0 {
			p.errf("cannot take the address of a non-lvalue")
		}
		if value.RMask(top.R) == value.LLOCAL {
			// The address is already sitting in a frame slot (spilled by
			// SaveReg while this lvalue was pending); taking its address
			// just means reading that slot as an ordinary pointer value,
			// with no further dereference.
			top.Type = ctype.Pointer(top.Type)
			top.R = value.LOCAL | value.LVAL
		} else {
			top.R &^= value.LVAL
			top.Type = ctype.Pointer(top.Type)
		}

	case token.Inc, token.Dec:
		binOp := token.Plus
		if p.tok.Kind == token.Dec {
			binOp = token.Minus
		}
		p.next()
		p.exprUnary()
		p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: 1})
		p.Gen.GenOp(binOpForAssignOp(binOp))

	case token.KwSizeof:
		p.next()
		p.exprSizeof()

	case token.LParen:
		p.next()
		if isTypeKeyword(p.tok.Kind) {
			base, _ := p.parseBaseType()
			t := p.parsePointer(base)
			p.expect(token.RParen)
			p.exprUnary()
			p.Gen.GenCast(t)
			return
		}
		p.expr()
		p.expect(token.RParen)
		p.exprPostfixOps()

	default:
		p.exprPostfix()
	}
}

// binOpForAssignOp maps a bare binary operator to its compound-assignment
// token so GenOp's existing assignment dispatch performs the
// read-modify-write ++/-- needs, instead of the original's broken
// single-operand gen_op call.
func binOpForAssignOp(op token.Kind) token.Kind {
	if op == token.Minus {
		return token.SubAssn
	}
	return token.AddAssn
}

// exprSizeof handles both sizeof(type) and sizeof expr. Since this is a
// single-pass compiler a sizeof result is always a compile-time int
// constant: no code is generated for the operand itself. Distinguishing
// "(type)" from "(expr)" after a single '(' needs only the token
// immediately following it, so this stays within the grammar's one-token
// lookahead.
func (p *Parser) exprSizeof() {
	if p.tok.Kind == token.LParen {
		p.next()
		if isTypeKeyword(p.tok.Kind) {
			base, _ := p.parseBaseType()
			t := p.parsePointer(base)
			p.expect(token.RParen)
			p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: int64(t.Size())})
			return
		}
		// Not a type: '(' already consumed, so this is a parenthesized
		// expression operand — resume past it directly.
		p.exprUnaryAfterConsumedParen()
		return
	}
	p.exprUnary()
	top := p.Gen.Stack.Top()
	size := int64(top.Type.Size())
	p.Gen.Stack.Pop()
	p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: size})
}

// exprUnaryAfterConsumedParen resumes parsing a parenthesized expression
// whose '(' was already consumed while probing for a type keyword inside
// sizeof.
func (p *Parser) exprUnaryAfterConsumedParen() {
	p.expr()
	p.expect(token.RParen)
	p.exprPostfixOps()
	top := p.Gen.Stack.Top()
	size := int64(top.Type.Size())
	p.Gen.Stack.Pop()
	p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: size})
}

// exprPostfix parses a primary expression followed by any chain of
// postfix operators.
func (p *Parser) exprPostfix() {
	p.exprPrimary()
	p.exprPostfixOps()
}

// exprPostfixOps applies zero or more trailing [], (), ++, -- to the
// value already on top of the stack. Split out from exprPostfix so the
// cast/paren disambiguation in exprUnary can apply postfix operators to
// a parenthesized sub-expression too.
func (p *Parser) exprPostfixOps() {
	for {
		switch p.tok.Kind {
		case token.LBrack:
			p.next()
			elemType := p.Gen.Stack.Top().Type.Deref()
			p.expr()
			p.scaleByElemSize(elemType)
			p.Gen.GenOp(token.Plus)
			p.expect(token.RBrack)
			top := p.Gen.Stack.Top()
			r := p.Gen.Gv(encoder.RCInt)
			top.Type = elemType
			top.R = uint32(r) | value.LVAL

		case token.LParen:
			p.next()
			nargs := 0
			for p.tok.Kind != token.RParen && p.tok.Kind != token.EOF {
				p.exprAssign()
				nargs++
				if p.tok.Kind == token.Comma {
					p.next()
					continue
				}
				break
			}
			p.expect(token.RParen)
			p.Gen.GfuncCall(nargs)

		case token.Inc, token.Dec:
			binOp := token.AddAssn
			if p.tok.Kind == token.Dec {
				binOp = token.SubAssn
			}
			p.next()
			// Post-inc/dec: save the pre-update value off to one side,
			// run the ordinary compound-assignment path on the lvalue
			// underneath, then discard its result and resurface the
			// saved pre-update copy as the expression's value.
			p.Gen.Stack.Dup()
			r := p.Gen.Gv(encoder.RCInt)
			p.Gen.SaveReg(r)
			p.Gen.Stack.Swap()
			p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: 1})
			p.Gen.GenOp(binOp)
			p.Gen.Stack.Pop()

		default:
			return
		}
	}
}

// exprPrimary handles number/string/identifier leaves — parenthesized
// sub-expressions are intercepted one level up in exprUnary, since
// distinguishing a cast from a parenthesized expression needs to see the
// token right after '(' before committing.
func (p *Parser) exprPrimary() {
	switch p.tok.Kind {
	case token.Number:
		p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: p.tok.IVal})
		p.next()

	case token.String:
		off := p.Sects.RDataSection().Add(append([]byte(p.tok.SVal), 0))
		p.Gen.Stack.Push(value.Value{
			Type: ctype.Pointer(ctype.BaseByte),
			R:    value.CONST | value.SYM,
			C:    int64(off),
			Sym:  &symtab.Symbol{SectionName: section.RData, C: int64(off)},
		})
		p.next()

	case token.Ident:
		name := p.tok.SVal
		p.next()
		sym := p.Syms.Find(name)
		if sym == nil {
			if p.tok.Kind == token.LParen {
				sym = p.Syms.Globals.Push(name, ctype.FuncOf(ctype.Int), 0, -1)
			} else {
				p.errf("undeclared identifier %q", name)
				p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: 0})
				return
			}
		}
		p.pushSymbolValue(sym)

	default:
		p.errf("unexpected token %s in expression", p.tok.Kind)
		p.Gen.Stack.Push(value.Value{Type: ctype.Int, R: value.CONST, C: 0})
		p.next()
	}
}
