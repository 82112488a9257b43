package codegen

import (
	"testing"

	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/section"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/value"
)

func newGen() *Generator {
	text := &section.Section{Name: section.Text}
	out := encoder.NewOut(text)
	return NewGenerator(out, &value.Stack{}, symtab.NewTables())
}

// TestForwardJumpFixup mirrors spec.md §8's forward-branch property: a
// jmp emitted before its target is defined must still land on the right
// byte offset once Glabel resolves it.
func TestForwardJumpFixup(t *testing.T) {
	g := newGen()
	l := Gind()

	g.Gjmp(l) // forward jmp, unresolved
	g.Out.EmitByte(0x90)
	g.Out.EmitByte(0x90)
	targetOff := g.Out.Ind()
	g.Glabel(l)

	if l.R != 1 {
		t.Fatalf("Glabel did not mark the label defined")
	}
	if l.C != int64(targetOff) {
		t.Fatalf("l.C = %d, want %d", l.C, targetOff)
	}

	// jmp opcode is 0xE9 at offset 0, its disp32 slot at offset 1.
	rel := g.Out.Text.GetLE32(1)
	want := int32(int64(targetOff) - 5) // slot(1) + 4 = 5
	if rel != want {
		t.Fatalf("patched displacement = %d, want %d", rel, want)
	}
}

// TestMultipleForwardJumpsChain verifies the fix-up list threads through
// more than one pending jump to the same undefined label.
func TestMultipleForwardJumpsChain(t *testing.T) {
	g := newGen()
	l := Gind()

	ind1 := g.Out.Ind()
	g.Gjmp(l)
	slot1 := ind1 + 1 // jmp opcode is one byte, disp32 follows immediately
	g.Out.EmitByte(0x90)
	ind2 := g.Out.Ind()
	g.Gjmp(l)
	slot2 := ind2 + 1
	g.Out.EmitByte(0x90)

	g.Glabel(l)

	// Both jmp's disp32 slots should now point at the same resolved offset.
	rel1 := g.Out.Text.GetLE32(slot1)
	rel2 := g.Out.Text.GetLE32(slot2)
	target1 := int64(slot1) + 4 + int64(rel1)
	target2 := int64(slot2) + 4 + int64(rel2)
	if target1 != target2 {
		t.Fatalf("both forward jumps should resolve to the same target: %d vs %d", target1, target2)
	}
	if target1 != l.C {
		t.Fatalf("resolved target %d != l.C %d", target1, l.C)
	}
}

// TestBackwardJumpResolvesImmediately covers Gjmp's other branch: jumping
// to an already-defined label computes the displacement on the spot.
func TestBackwardJumpResolvesImmediately(t *testing.T) {
	g := newGen()
	l := Gind()
	g.Glabel(l) // define at offset 0
	g.Out.EmitByte(0x90)
	g.Gjmp(l)

	slot := g.Out.Ind() - 4
	rel := g.Out.Text.GetLE32(slot)
	if int64(slot)+4+int64(rel) != l.C {
		t.Fatalf("backward jump did not resolve to l.C=%d", l.C)
	}
}

func TestGtstPopsStackAndThreadsFixup(t *testing.T) {
	g := newGen()
	g.Stack.Push(value.Value{R: uint32(encoder.RAX)})
	l := Gind()
	g.Gtst(true, l)
	if g.Stack.Len() != 0 {
		t.Fatalf("Gtst did not pop the tested value, Len()=%d", g.Stack.Len())
	}
	if l.R == 1 {
		t.Fatalf("label should still be undefined after one Gtst")
	}
	if l.C == -1 {
		t.Fatalf("label's fix-up chain should be non-empty after Gtst")
	}
}
