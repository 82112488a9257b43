package compiler

import (
	"testing"
)

// compileOK runs src through the full pipeline and fails the test if any
// diagnostic was recorded, mirroring spec.md §8's "a well-formed program
// compiles with zero diagnostics" property.
func compileOK(t *testing.T, src string) *State {
	t.Helper()
	st := New(false)
	st.CompileFile("t.c", src)
	if st.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics compiling %q", src)
	}
	return st
}

func TestEmptyMainProducesNoDiagnostics(t *testing.T) {
	st := compileOK(t, "int main() { return 0; }")
	if len(st.Sects.Text.Data) == 0 {
		t.Fatalf("expected .text to hold main's body")
	}
}

func TestMainRegisteredAsEntryPoint(t *testing.T) {
	st := compileOK(t, "int main() { return 0; }")
	off, defined := st.mainEntry()
	if !defined {
		t.Fatalf("main should be registered as defined")
	}
	if off != 0 {
		t.Errorf("main's offset = %d, want 0 (first function emitted)", off)
	}
}

func TestFunctionPrototypeWithoutBodyIsNotEntryPoint(t *testing.T) {
	st := compileOK(t, "int main(int argc);")
	_, defined := st.mainEntry()
	if defined {
		t.Fatalf("a prototype-only main must not count as a defined entry point")
	}
}

func TestGlobalVariableAllocatesData(t *testing.T) {
	st := compileOK(t, "int counter = 5;\nint main() { return counter; }")
	if st.Sects.Data.Size() == 0 {
		t.Fatalf("expected .data to hold the initialized global")
	}
}

func TestArithmeticExpressionEmitsCode(t *testing.T) {
	st := compileOK(t, "int main() { int x; x = 1 + 2 * 3; return x; }")
	if len(st.Sects.Text.Data) == 0 {
		t.Fatalf("expected code for the arithmetic expression")
	}
}

func TestIfElseControlFlowEmitsJumps(t *testing.T) {
	before := New(false)
	before.CompileFile("t.c", "int main() { int x; x = 1; return x; }")
	withoutBranch := len(before.Sects.Text.Data)

	st := compileOK(t, "int main() { int x; x = 1; if (x) { x = 2; } else { x = 3; } return x; }")
	if st.Sects.Text.Size() <= withoutBranch {
		t.Fatalf("if/else should emit additional branching code")
	}
}

func TestWhileLoopCompilesCleanly(t *testing.T) {
	compileOK(t, "int main() { int i; i = 0; while (i < 10) { i = i + 1; } return i; }")
}

func TestDoWhileLoopBranchesBackward(t *testing.T) {
	compileOK(t, "int main() { int i; i = 0; do { i = i + 1; } while (i < 10); return i; }")
}

func TestBreakAndContinueInsideForLoop(t *testing.T) {
	compileOK(t, `int main() {
		int i;
		int sum;
		sum = 0;
		for (i = 0; i < 10; i = i + 1) {
			if (i == 5) { break; }
			if (i == 2) { continue; }
			sum = sum + i;
		}
		return sum;
	}`)
}

func TestFunctionCallBetweenFunctions(t *testing.T) {
	st := compileOK(t, `int add(int a, int b) { return a + b; }
	int main() { return add(2, 3); }`)
	if len(st.Sects.Text.Data) == 0 {
		t.Fatalf("expected code for both functions")
	}
}

func TestForwardCallToLaterDefinedFunction(t *testing.T) {
	compileOK(t, `int main() { return helper(); }
	int helper() { return 42; }`)
}

func TestPointerDereferenceAndAddressOf(t *testing.T) {
	compileOK(t, `int main() {
		int x;
		int *p;
		x = 7;
		p = &x;
		*p = 9;
		return *p;
	}`)
}

func TestShortCircuitLogicalOperators(t *testing.T) {
	compileOK(t, `int main() {
		int a;
		int b;
		a = 1;
		b = 0;
		if (a && b) { return 1; }
		if (a || b) { return 2; }
		return 0;
	}`)
}

func TestSyntaxErrorIsRecordedAsDiagnostic(t *testing.T) {
	st := New(false)
	st.CompileFile("t.c", "int main() { return 0 }") // missing semicolon
	if !st.Diags.HasErrors() {
		t.Fatalf("expected a syntax error for the missing semicolon")
	}
}

func TestWriteOutputRefusesWhenDiagnosticsOutstanding(t *testing.T) {
	st := New(false)
	st.CompileFile("t.c", "int main() { return 0 }")
	if err := st.WriteOutput("/dev/null", OutputEXE); err == nil {
		t.Fatalf("WriteOutput should refuse to run with outstanding errors")
	}
}
