package symtab

import (
	"testing"

	"github.com/tcc86/tcc86/internal/ctype"
)

func TestPushFind(t *testing.T) {
	tbl := NewTable()
	tbl.Push("x", ctype.Int, 0, 5)
	sym := tbl.Find("x")
	if sym == nil || sym.C != 5 {
		t.Fatalf("Find(%q) = %v, want a symbol with C=5", "x", sym)
	}
	if tbl.Find("y") != nil {
		t.Errorf("Find of undeclared name returned non-nil")
	}
}

func TestShadowing(t *testing.T) {
	tbl := NewTable()
	tbl.Push("x", ctype.Int, 0, 1)
	marker := tbl.Mark()
	tbl.Push("x", ctype.Int, 0, 2)

	if got := tbl.Find("x").C; got != 2 {
		t.Fatalf("inner x.C = %d, want 2 (innermost shadows outer)", got)
	}

	tbl.Pop(marker)
	if got := tbl.Find("x").C; got != 1 {
		t.Fatalf("x.C after Pop = %d, want 1 (outer restored)", got)
	}
}

func TestPopRemovesOnlySymbolsAfterMarker(t *testing.T) {
	tbl := NewTable()
	tbl.Push("a", ctype.Int, 0, 1)
	marker := tbl.Mark()
	tbl.Push("b", ctype.Int, 0, 2)
	tbl.Push("c", ctype.Int, 0, 3)
	tbl.Pop(marker)

	if tbl.Find("a") == nil {
		t.Errorf("Pop removed a symbol pushed before the marker")
	}
	if tbl.Find("b") != nil || tbl.Find("c") != nil {
		t.Errorf("Pop left symbols pushed after the marker")
	}
}

func TestTablesFindLocalBeforeGlobal(t *testing.T) {
	tabs := NewTables()
	tabs.Globals.Push("x", ctype.Int, 0, 100)
	if got := tabs.Find("x").C; got != 100 {
		t.Fatalf("Find(x) before local decl = %d, want 100", got)
	}

	marker := tabs.EnterScope()
	tabs.Locals.Push("x", ctype.Int, 0, -8)
	if got := tabs.Find("x").C; got != -8 {
		t.Fatalf("Find(x) with a local shadow = %d, want -8", got)
	}

	tabs.LeaveScope(marker)
	if got := tabs.Find("x").C; got != 100 {
		t.Fatalf("Find(x) after LeaveScope = %d, want 100 (global visible again)", got)
	}
}

func TestFindGlobalIgnoresLocals(t *testing.T) {
	tabs := NewTables()
	tabs.Locals.Push("f", ctype.Int, 0, -8)
	if tabs.FindGlobal("f") != nil {
		t.Errorf("FindGlobal found a local symbol")
	}
	tabs.Globals.Push("f", ctype.FuncOf(ctype.Int), 0, 0)
	if tabs.FindGlobal("f") == nil {
		t.Errorf("FindGlobal did not find the global symbol")
	}
}

func TestHashDistinctNamesCanCollideButStayDistinguishable(t *testing.T) {
	tbl := NewTable()
	names := []string{"a", "ab", "abc", "main", "printf", "x1", "x2", "x3"}
	for i, n := range names {
		tbl.Push(n, ctype.Int, 0, int64(i))
	}
	for i, n := range names {
		sym := tbl.Find(n)
		if sym == nil || sym.C != int64(i) {
			t.Errorf("Find(%q) = %v, want C=%d", n, sym, i)
		}
	}
}
