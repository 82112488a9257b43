package encoder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tcc86/tcc86/internal/ctype"
	"github.com/tcc86/tcc86/internal/value"
)

func TestLoadConstZeroUsesXor(t *testing.T) {
	o := newOut()
	o.Load(RAX, value.Value{R: value.CONST, C: 0})
	// xor eax, eax: no REX needed (w=false, no extended regs), 0x31 /r with mod=11
	want := []byte{0x31, 0xC0}
	if diff := cmp.Diff(want, o.Text.Data); diff != "" {
		t.Fatalf("emitted bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConstSmallUsesImm32(t *testing.T) {
	o := newOut()
	o.Load(RCX, value.Value{R: value.CONST, C: 42})
	if o.Text.Data[0] != 0x48 {
		t.Fatalf("expected REX.W prefix, got % x", o.Text.Data)
	}
	if o.Text.Data[1] != 0xC7 {
		t.Fatalf("expected opcode 0xC7 (mov r/m64, imm32), got %#x", o.Text.Data[1])
	}
	if len(o.Text.Data) != 2+1+4 {
		t.Fatalf("expected REX+opcode+modrm+imm32 = 7 bytes, got %d", len(o.Text.Data))
	}
}

func TestLoadConstLargeUsesImm64(t *testing.T) {
	o := newOut()
	big := int64(1) << 40
	o.Load(RAX, value.Value{R: value.CONST, C: big})
	if len(o.Text.Data) != 2+8 {
		t.Fatalf("expected REX+opcode+imm64 = 10 bytes, got %d", len(o.Text.Data))
	}
	if o.Text.Data[1] != 0xB8 {
		t.Fatalf("expected opcode 0xB8+rd, got %#x", o.Text.Data[1])
	}
}

func TestLoadLocalLVALSignedInt(t *testing.T) {
	o := newOut()
	o.Load(RAX, value.Value{R: value.LOCAL | value.LVAL, C: -8, Type: ctype.Int})
	// movsxd rax, [rbp-8]: signed 4-byte load sign-extends into the full
	// 64-bit register, per spec.md's LLP64 sizing — REX.W + 0x63.
	if o.Text.Data[0] != 0x48 || o.Text.Data[1] != 0x63 {
		t.Fatalf("expected movsxd (REX.W, 0x63), got % x", o.Text.Data)
	}
}

func TestLoadLocalLVALUnsignedInt(t *testing.T) {
	o := newOut()
	o.Load(RAX, value.Value{R: value.LOCAL | value.LVAL, C: -8, Type: ctype.BaseInt | ctype.Unsigned})
	if o.Text.Data[0] != 0x8B {
		t.Fatalf("expected mov opcode 0x8B (implicit zero-extend), got % x", o.Text.Data)
	}
}

func TestLoadLocalAddressNoLVAL(t *testing.T) {
	o := newOut()
	o.Load(RAX, value.Value{R: value.LOCAL, C: -8})
	// lea rax, [rbp-8]: REX.W + 0x8D
	if o.Text.Data[0] != 0x48 || o.Text.Data[1] != 0x8D {
		t.Fatalf("expected lea (REX.W, 0x8D), got % x", o.Text.Data)
	}
}

func TestLoadRegisterToRegisterSkipsNop(t *testing.T) {
	o := newOut()
	o.Load(RAX, value.Value{R: uint32(RAX)})
	if len(o.Text.Data) != 0 {
		t.Fatalf("mov rax, rax should be elided, got % x", o.Text.Data)
	}

	o = newOut()
	o.Load(RAX, value.Value{R: uint32(RCX)})
	if len(o.Text.Data) == 0 {
		t.Fatalf("mov rax, rcx should emit bytes")
	}
}

func TestStoreIndirectAndLoadIndirectSizes(t *testing.T) {
	cases := []struct {
		t    ctype.Type
		size int
	}{
		{ctype.BaseByte, 1},
		{ctype.BaseShort, 2},
		{ctype.BaseInt, 4},
		{ctype.BaseLLong, 8},
	}
	for _, c := range cases {
		o := newOut()
		o.StoreIndirect(RAX, RCX, c.t)
		if len(o.Text.Data) == 0 {
			t.Fatalf("StoreIndirect(%v) emitted nothing", c.t)
		}
	}
}

func TestLeaRipRelReturnsPatchableSlot(t *testing.T) {
	o := newOut()
	slot := o.LeaRipRel(RAX)
	if slot != len(o.Text.Data)-4 {
		t.Fatalf("LeaRipRel slot = %d, want last 4 bytes of emission (%d)", slot, len(o.Text.Data)-4)
	}
	o.Text.PutLE32(slot, 0x1234)
	if o.Text.GetLE32(slot) != 0x1234 {
		t.Fatalf("patched displacement did not round-trip")
	}
}

func TestStoreOnlyWritesLocalEntries(t *testing.T) {
	o := newOut()
	o.Store(RAX, value.Value{R: value.CONST, C: 5})
	if len(o.Text.Data) != 0 {
		t.Fatalf("Store on a non-LOCAL value should emit nothing, got % x", o.Text.Data)
	}

	o.Store(RAX, value.Value{R: value.LOCAL, C: -8, Type: ctype.Int})
	if len(o.Text.Data) == 0 {
		t.Fatalf("Store on a LOCAL value should emit bytes")
	}
}
