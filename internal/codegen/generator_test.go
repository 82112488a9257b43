package codegen

import (
	"testing"

	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/value"
)

func TestGvReusesMatchingRegister(t *testing.T) {
	g := newGen()
	g.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RAX)})
	r := g.Gv(encoder.RCRAX)
	if r != encoder.RAX {
		t.Fatalf("Gv(RCRAX) = %v, want RAX", r)
	}
	if len(g.Out.Text.Data) != 0 {
		t.Fatalf("Gv should not emit anything when the value already sits in the right register, got % x", g.Out.Text.Data)
	}
}

// TestGvDoesNotReuseRegisterHoldingPendingAddress is the regression the
// register+LVAL fix targets: a register-resident entry with LVAL set
// holds the ADDRESS of a value still needing a dereference, not the
// value itself, so Gv must not hand it back unchanged.
func TestGvDoesNotReuseRegisterHoldingPendingAddress(t *testing.T) {
	g := newGen()
	g.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RAX) | value.LVAL})
	g.Gv(encoder.RCRAX)
	if len(g.Out.Text.Data) == 0 {
		t.Fatalf("Gv on a pending-dereference register entry should emit a load, emitted nothing")
	}
}

func TestSaveRegSpillsPlainValue(t *testing.T) {
	g := newGen()
	g.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RCX)})
	g.SaveReg(encoder.RCX)

	top := g.Stack.Top()
	if value.RMask(top.R) != value.LOCAL || top.R&value.LVAL == 0 {
		t.Fatalf("spilled entry = %#x, want LOCAL|LVAL", top.R)
	}
	if len(g.Out.Text.Data) == 0 {
		t.Fatalf("SaveReg should have emitted a store")
	}
}

// TestSaveRegSpillsPendingAddressToLLOCAL is the corresponding regression
// for SaveReg: an address pending dereference must come back as LLOCAL,
// not LOCAL, so a later consumer knows one more indirection is needed.
func TestSaveRegSpillsPendingAddressToLLOCAL(t *testing.T) {
	g := newGen()
	g.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RCX) | value.LVAL})
	g.SaveReg(encoder.RCX)

	top := g.Stack.Top()
	if value.RMask(top.R) != value.LLOCAL {
		t.Fatalf("spilled pending-address entry = %#x, want LLOCAL", top.R)
	}
	if top.R&value.LVAL == 0 {
		t.Fatalf("spilled entry lost its LVAL bit")
	}
}

func TestSaveRegScansWholeStackNotJustTop(t *testing.T) {
	g := newGen()
	g.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RCX)}) // buried
	g.Stack.Push(value.Value{Type: ctype.Int, R: uint32(encoder.RAX)}) // top
	g.SaveReg(encoder.RCX)

	buried := g.Stack.At(1)
	if value.RMask(buried.R) != value.LOCAL {
		t.Fatalf("SaveReg did not spill the buried occupant of RCX, R=%#x", buried.R)
	}
	top := g.Stack.Top()
	if value.RMask(top.R) != uint32(encoder.RAX) {
		t.Fatalf("SaveReg(RCX) should not have touched the RAX-resident top entry")
	}
}

func TestLoadGlobalAddrRecordsReloc(t *testing.T) {
	g := newGen()
	g.LoadGlobalAddr(encoder.RAX, "section.data", 16)
	if len(g.Relocs) != 1 {
		t.Fatalf("LoadGlobalAddr recorded %d relocs, want 1", len(g.Relocs))
	}
	r := g.Relocs[0]
	if r.TargetSection != "section.data" || r.TargetOffset != 16 {
		t.Fatalf("reloc = %+v, want section.data/16", r)
	}
	if r.CodeOffset != len(g.Out.Text.Data)-4 {
		t.Fatalf("reloc.CodeOffset = %d, want the patched disp32 slot", r.CodeOffset)
	}
}
