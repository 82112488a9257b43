package parser

import (
	"github.com/tcc86/tcc86/internal/codegen"
	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/section"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/token"
	"github.com/tcc86/tcc86/internal/value"
)

// parseBaseType accumulates type specifiers (void/char/short/int/long/
// float/double/signed/unsigned plus const/static/extern/volatile) the
// way parse_type does, returning false if no type keyword was seen at
// all (the declaration isn't one).
func (p *Parser) parseBaseType() (ctype.Type, bool) {
	var t ctype.Type
	sign := 0
	sizeMod := 0
	typeFound := false
	var mods ctype.Type

loop:
	for {
		switch p.tok.Kind {
		case token.KwVoid:
			t = t.WithBase(ctype.BaseVoid)
			typeFound = true
			p.next()
		case token.KwChar:
			t = t.WithBase(ctype.BaseByte)
			typeFound = true
			p.next()
		case token.KwShort:
			sizeMod = 1
			typeFound = true
			p.next()
		case token.KwInt:
			t = t.WithBase(ctype.BaseInt)
			typeFound = true
			p.next()
		case token.KwLong:
			if sizeMod == 2 {
				sizeMod = 3
			} else {
				sizeMod = 2
			}
			typeFound = true
			p.next()
		case token.KwFloat:
			t = t.WithBase(ctype.BaseFloat)
			typeFound = true
			p.next()
		case token.KwDouble:
			t = t.WithBase(ctype.BaseDouble)
			typeFound = true
			p.next()
		case token.KwSigned:
			sign = 1
			typeFound = true
			p.next()
		case token.KwUnsigned:
			sign = 2
			typeFound = true
			p.next()
		case token.KwConst:
			mods |= ctype.Const
			p.next()
		case token.KwVolatile:
			mods |= ctype.Volatile
			p.next()
		case token.KwStatic:
			mods |= ctype.Static
			p.next()
		case token.KwExtern:
			mods |= ctype.Extern
			p.next()
		default:
			break loop
		}
	}
	if !typeFound {
		return 0, false
	}

	if t.Base() == ctype.BaseInt {
		switch {
		case sizeMod == 1:
			t = t.WithBase(ctype.BaseShort)
		case sizeMod >= 2:
			t = t.WithBase(ctype.BaseLLong)
		case sign != 0:
			t = t.WithBase(ctype.BaseInt)
		}
	}
	if sign == 2 {
		t |= ctype.Unsigned
	}
	t |= mods
	return t, true
}

// parsePointer consumes zero or more '*' declarator stars, each wrapping
// the type one level deeper, plus any trailing const on the pointer
// itself — parse_pointer.
func (p *Parser) parsePointer(t ctype.Type) ctype.Type {
	for p.tok.Kind == token.Star {
		p.next()
		t = ctype.Pointer(t)
		for p.tok.Kind == token.KwConst {
			t |= ctype.Const
			p.next()
		}
	}
	return t
}

// decl parses one declaration: a base type followed by one or more
// comma-separated declarators. local selects whether identifiers land
// in the locals table with frame offsets, or the globals table with
// .data offsets — decl.
func (p *Parser) decl(local bool) {
	base, ok := p.parseBaseType()
	if !ok {
		p.errf("expected a type, got %s", p.tok.Kind)
		p.next()
		return
	}

	for {
		pt := p.parsePointer(base)

		if p.tok.Kind != token.Ident {
			p.errf("expected identifier, got %s", p.tok.Kind)
			return
		}
		name := p.tok.SVal
		p.next()

		if p.tok.Kind == token.LParen {
			p.parseFunc(name, pt)
			return
		}

		if p.tok.Kind == token.LBrack {
			p.declArray(name, pt, local)
		} else {
			p.declScalar(name, pt, local)
		}

		if p.tok.Kind == token.Comma {
			p.next()
			continue
		}
		break
	}

	if p.tok.Kind == token.Semi {
		p.next()
	}
}

func (p *Parser) declArray(name string, elemType ctype.Type, local bool) {
	p.next() // '['
	size := 0
	if p.tok.Kind == token.Number {
		size = int(p.tok.IVal)
		p.next()
	}
	p.expect(token.RBrack)

	arrType := elemType | ctype.Array
	elemSize := elemType.Size()
	if elemSize == 0 {
		elemSize = 1
	}
	bytes := size * elemSize

	if local {
		off := p.Gen.AllocLocal(bytes)
		p.Syms.Locals.Push(name, arrType, 0, off)
	} else {
		off := int64(p.Sects.Data.Reserve(bytes))
		sym := p.Syms.Globals.Push(name, arrType, 0, off)
		sym.SectionName = section.Data
	}
}

// declScalar handles a plain (non-array) declarator. A local's initializer
// is ordinary code, run every time control reaches the declaration; a
// global's initializer has no code to run it at — program start jumps
// straight to main with no init pass — so it must be a compile-time
// constant written directly into .data, per SPEC_FULL.md §6.6 (spec.md
// does not actually say global initializers execute arbitrary expressions;
// treating them as runtime code would emit orphaned instructions no call
// ever reaches).
func (p *Parser) declScalar(name string, t ctype.Type, local bool) {
	var sym *symtab.Symbol
	size := t.Size()
	if size == 0 {
		size = 8
	}

	var dataOff int64
	if local {
		off := p.Gen.AllocLocal(size)
		sym = p.Syms.Locals.Push(name, t, 0, off)
	} else {
		dataOff = int64(p.Sects.Data.Reserve(size))
		sym = p.Syms.Globals.Push(name, t, 0, dataOff)
		sym.SectionName = section.Data
	}

	if p.tok.Kind != token.Assign {
		return
	}
	p.next()

	if local {
		p.pushSymbolValue(sym)
		p.expr()
		p.Gen.GenOp(token.Assign)
		p.Gen.Stack.Pop()
		return
	}

	v, ok := p.parseConstInt()
	if !ok {
		p.errf("global initializer must be a compile-time integer constant")
		return
	}
	p.Sects.Data.PutInt(int(dataOff), size, v)
}

// parseConstInt parses an optionally-signed integer literal, the only
// initializer form a global variable's fixed-layout .data slot can hold
// without a runtime init pass.
func (p *Parser) parseConstInt() (int64, bool) {
	neg := false
	switch p.tok.Kind {
	case token.Minus:
		neg = true
		p.next()
	case token.Plus:
		p.next()
	}
	if p.tok.Kind != token.Number {
		return 0, false
	}
	v := p.tok.IVal
	p.next()
	if neg {
		v = -v
	}
	return v, true
}

// parseFunc parses a function declaration or definition, per decl's '('
// branch: parameters get frame offsets starting at +16 (spec.md §4.6),
// matching what GfuncProlog spills the first four into and what a
// caller's stack-pushed 5th-and-later arguments land at directly.
func (p *Parser) parseFunc(name string, retType ctype.Type) {
	p.next() // '('

	funcType := ctype.FuncOf(retType)
	sym := p.Syms.FindGlobal(name)
	if sym == nil {
		sym = p.Syms.Globals.Push(name, funcType, 0, -1)
	} else {
		sym.Type = funcType
	}

	marker := p.Syms.EnterScope()
	paramOffset := int64(16)
	for p.tok.Kind != token.RParen && p.tok.Kind != token.EOF {
		pbase, ok := p.parseBaseType()
		if !ok {
			p.errf("expected parameter type, got %s", p.tok.Kind)
			break
		}
		pt := p.parsePointer(pbase)
		if p.tok.Kind == token.Ident {
			pname := p.tok.SVal
			p.next()
			p.Syms.Locals.Push(pname, pt, 0, paramOffset)
			paramOffset += 8
		}
		if p.tok.Kind == token.Comma {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RParen)

	if p.tok.Kind == token.LBrace {
		p.funcRetType = retType
		savedEnd := p.funcEnd
		p.funcEnd = codegen.Gind()
		p.Gen.Glabel(sym) // resolve any calls made before this definition was seen
		p.Gen.Loc = 0
		p.Gen.Out.GfuncProlog()
		p.statement()
		p.Gen.Glabel(p.funcEnd)
		p.Gen.Out.GfuncEpilog()
		p.funcEnd = savedEnd
		p.Syms.LeaveScope(marker)
		return
	}

	p.Syms.LeaveScope(marker)
	if p.tok.Kind == token.Semi {
		p.next()
	}
}

// pushSymbolValue pushes the value-stack entry that refers to sym's
// storage: a frame-relative lvalue for locals, a RIP-relative symbolic
// lvalue for globals, or a bare symbolic address for functions (never
// an lvalue — calling dereferences nothing).
func (p *Parser) pushSymbolValue(sym *symtab.Symbol) {
	isFunc := sym.Type.Base() == ctype.BaseFunc

	if sym.SectionName != "" {
		r := uint32(value.CONST | value.SYM)
		if !isFunc {
			r |= value.LVAL
		}
		p.Gen.Stack.Push(value.Value{Type: sym.Type, R: r, C: sym.C, Sym: sym})
		return
	}

	if isFunc {
		p.Gen.Stack.Push(value.Value{Type: sym.Type, R: value.CONST | value.SYM, C: sym.C, Sym: sym})
		return
	}

	p.Gen.Stack.Push(value.Value{Type: sym.Type, R: value.LOCAL | value.LVAL, C: sym.C, Sym: sym})
}
