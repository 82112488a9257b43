// Package parser implements the recursive-descent parser of spec.md §4.6:
// each production drives codegen directly through the value stack, with
// no intervening AST. Grounded on original_source/src/parse.c for the
// grammar shape, generalized to Go error-return idioms and to the fixes
// SPEC_FULL.md §6.6 calls for (break/continue, compound assignment,
// short-circuit &&/||, scaled pointer arithmetic, working do/while).
package parser

import (
	"github.com/tcc86/tcc86/internal/codegen"
	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/diag"
	"github.com/tcc86/tcc86/internal/lexer"
	"github.com/tcc86/tcc86/internal/section"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/token"
)

// loopLabels is the break/continue target pair for the loop currently
// being parsed, pushed and popped around while/for/do-while bodies —
// SPEC_FULL.md's fix for spec.md's flagged "break/continue unwired" gap.
type loopLabels struct {
	continueTo *symtab.Symbol
	breakTo    *symtab.Symbol
}

// Parser holds the single piece of lookahead the grammar needs (the
// teacher's lexers are all single-token-lookahead; spec.md §4.6 agrees:
// "single token of lookahead, no backtracking").
type Parser struct {
	lex   *lexer.Lexer
	tok   token.Token
	Gen   *codegen.Generator
	Syms  *symtab.Tables
	Sects *section.Store
	Diags *diag.Collector

	funcRetType ctype.Type
	funcEnd     *symtab.Symbol // single-exit epilogue label for the function being parsed
	loops       []loopLabels
}

// New creates a parser and primes the first lookahead token.
func New(lex *lexer.Lexer, gen *codegen.Generator, syms *symtab.Tables, sects *section.Store, diags *diag.Collector) *Parser {
	p := &Parser{lex: lex, Gen: gen, Syms: syms, Sects: sects, Diags: diags}
	p.next()
	return p
}

func (p *Parser) next() { p.tok = p.lex.Next() }

func (p *Parser) loc() diag.Location {
	return diag.Location{File: p.lex.FileName(), Line: p.tok.Line}
}

func (p *Parser) errf(format string, args ...any) {
	p.Diags.Errorf(diag.CategorySyntactic, p.loc(), format, args...)
}

// expect reports a syntax error if the current token is not of kind k,
// and consumes the current token either way — mirroring the teacher's
// and tcc's "skip" helper, which always calls next() so parsing can
// keep making progress after one bad token.
func (p *Parser) expect(k token.Kind) {
	if p.tok.Kind != k {
		p.errf("expected %s, got %s", k, p.tok.Kind)
	}
	p.next()
}

func (p *Parser) at(k token.Kind) bool { return p.tok.Kind == k }

// ParseFile parses the whole translation unit: a sequence of top-level
// declarations, per spec.md §4.6's parse_file.
func (p *Parser) ParseFile() {
	for p.tok.Kind != token.EOF {
		p.decl(false)
	}
}

func (p *Parser) currentLoop() *loopLabels {
	if len(p.loops) == 0 {
		return nil
	}
	return &p.loops[len(p.loops)-1]
}
