package lexer

import (
	"testing"

	"github.com/tcc86/tcc86/internal/diag"
	"github.com/tcc86/tcc86/internal/token"
)

func collect(src string) []token.Token {
	l := New("t.c", src, diag.NewCollector())
	var out []token.Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestSimpleDeclaration(t *testing.T) {
	toks := collect("int x = 5;")
	want := []token.Kind{token.KwInt, token.Ident, token.Assign, token.Number, token.Semi, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].SVal != "x" {
		t.Errorf("identifier SVal = %q, want %q", toks[1].SVal, "x")
	}
	if toks[3].IVal != 5 {
		t.Errorf("number IVal = %d, want 5", toks[3].IVal)
	}
}

func TestMultiCharOperatorDisambiguation(t *testing.T) {
	cases := []struct {
		src  string
		want token.Kind
	}{
		{"<<=", token.ShlAssn},
		{">>=", token.ShrAssn},
		{"<<", token.Shl},
		{"<=", token.Le},
		{"<", token.Lt},
		{"++", token.Inc},
		{"+=", token.AddAssn},
		{"&&", token.LogAnd},
		{"->", token.Arrow},
		{"...", token.Ellipsis},
	}
	for _, c := range cases {
		toks := collect(c.src)
		if toks[0].Kind != c.want {
			t.Errorf("collect(%q)[0].Kind = %v, want %v", c.src, toks[0].Kind, c.want)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := collect("int /* a block\ncomment */ x; // trailing\n")
	want := []token.Kind{token.KwInt, token.Ident, token.Semi, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestHexAndOctalNumbers(t *testing.T) {
	toks := collect("0x1F 010")
	if toks[0].IVal != 31 {
		t.Errorf("0x1F parsed as %d, want 31", toks[0].IVal)
	}
	if toks[1].IVal != 8 {
		t.Errorf("010 (octal) parsed as %d, want 8", toks[1].IVal)
	}
}

func TestStringLiteralWithEscapes(t *testing.T) {
	toks := collect(`"hi\n"`)
	if toks[0].Kind != token.String {
		t.Fatalf("got Kind=%v, want String", toks[0].Kind)
	}
	if toks[0].SVal != "hi\n" {
		t.Errorf("SVal = %q, want %q", toks[0].SVal, "hi\n")
	}
}

func TestCharLiteral(t *testing.T) {
	toks := collect(`'a'`)
	if toks[0].Kind != token.Number || toks[0].IVal != int64('a') {
		t.Fatalf("char literal = %+v, want Number 97", toks[0])
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	toks := collect("return returning")
	if toks[0].Kind != token.KwReturn {
		t.Errorf("`return` lexed as %v, want KwReturn", toks[0].Kind)
	}
	if toks[1].Kind != token.Ident || toks[1].SVal != "returning" {
		t.Fatalf("`returning` lexed as %+v, want Ident", toks[1])
	}
}

func TestEOFRepeats(t *testing.T) {
	l := New("t.c", "", diag.NewCollector())
	a := l.Next()
	b := l.Next()
	if a.Kind != token.EOF || b.Kind != token.EOF {
		t.Fatalf("expected EOF repeated, got %v then %v", a.Kind, b.Kind)
	}
}
