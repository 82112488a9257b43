package pe

import (
	"testing"

	"github.com/tcc86/tcc86/internal/codegen"
	"github.com/tcc86/tcc86/internal/section"
)

func TestLayoutOrderAndAlignment(t *testing.T) {
	sects := section.NewStore()
	sects.Text.Add(make([]byte, 10))
	sects.Data.Add(make([]byte, 3))
	sects.RDataSection().Add(make([]byte, 5))

	layout := Layout(sects)
	if len(layout) != 3 {
		t.Fatalf("Layout returned %d sections, want 3", len(layout))
	}
	names := []string{layout[0].spec.name, layout[1].spec.name, layout[2].spec.name}
	want := []string{section.Text, section.Data, section.RData}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("section order = %v, want %v", names, want)
		}
	}

	if layout[0].fileOffset != HeaderSize {
		t.Errorf("first section fileOffset = %#x, want %#x", layout[0].fileOffset, HeaderSize)
	}
	if layout[0].virtAddr != SectionAlignment {
		t.Errorf("first section virtAddr = %#x, want %#x", layout[0].virtAddr, SectionAlignment)
	}

	// Second section must start after the first, file-aligned/section-aligned.
	if layout[1].fileOffset != layout[0].fileOffset+alignUp(layout[0].fileSize, FileAlignment) {
		t.Errorf("second section fileOffset not aligned past the first: %+v", layout)
	}
	if layout[1].virtAddr != layout[0].virtAddr+alignUp(layout[0].virtSize, SectionAlignment) {
		t.Errorf("second section virtAddr not aligned past the first: %+v", layout)
	}
}

func TestLayoutSkipsEmptySections(t *testing.T) {
	sects := section.NewStore()
	sects.Text.Add(make([]byte, 4))
	// .data and .rdata left empty.

	layout := Layout(sects)
	if len(layout) != 1 {
		t.Fatalf("Layout returned %d sections, want 1 (only .text populated)", len(layout))
	}
}

func TestEntryPointRVA(t *testing.T) {
	if got := EntryPointRVA(0, false); got != SectionAlignment {
		t.Errorf("no main: EntryPointRVA = %#x, want %#x", got, SectionAlignment)
	}
	if got := EntryPointRVA(0x40, true); got != SectionAlignment+0x40 {
		t.Errorf("main at 0x40: EntryPointRVA = %#x, want %#x", got, SectionAlignment+0x40)
	}
}

// TestOptionalHeaderSizeMatchesSectionHeaderOffset is a structural sanity
// check on the fixed-offset layout spec.md §4.7 specifies: the COFF header
// (20 bytes) starts right after the 4-byte PE signature at 0x80, and the
// 240-byte PE32+ optional header that follows it must end exactly at
// 0x188, where the first section header is required to start.
func TestOptionalHeaderSizeMatchesSectionHeaderOffset(t *testing.T) {
	peSignatureOff := 0x80
	coffHeaderLen := 20
	optionalHeaderStart := peSignatureOff + 4 + coffHeaderLen
	if optionalHeaderStart+OptionalHeaderSz != SectionHeaderOff {
		t.Fatalf("optional header [0x%x, 0x%x) does not end at SectionHeaderOff 0x%x",
			optionalHeaderStart, optionalHeaderStart+OptionalHeaderSz, SectionHeaderOff)
	}
}

func TestBuildHeaderFixedFields(t *testing.T) {
	sects := section.NewStore()
	sects.Text.Add(make([]byte, 16))
	layout := Layout(sects)
	h := buildHeader(layout, 0, false)

	if len(h) != HeaderSize {
		t.Fatalf("header length = %d, want %d", len(h), HeaderSize)
	}
	if h[0] != 'M' || h[1] != 'Z' {
		t.Fatalf("missing MZ signature: % x", h[:2])
	}
	lfanew := uint32(h[0x3C]) | uint32(h[0x3D])<<8 | uint32(h[0x3E])<<16 | uint32(h[0x3F])<<24
	if lfanew != 0x80 {
		t.Fatalf("e_lfanew = %#x, want 0x80", lfanew)
	}
	if h[0x80] != 'P' || h[0x81] != 'E' || h[0x82] != 0 || h[0x83] != 0 {
		t.Fatalf("missing PE signature at 0x80: % x", h[0x80:0x84])
	}
	machine := uint16(h[0x84]) | uint16(h[0x85])<<8
	if machine != machineAMD64 {
		t.Fatalf("COFF machine = %#x, want %#x", machine, machineAMD64)
	}
	magic := uint16(h[0x98]) | uint16(h[0x99])<<8
	if magic != peMagic32Plus {
		t.Fatalf("optional header magic = %#x, want %#x", magic, peMagic32Plus)
	}
}

func TestPatchRelocsComputesRipRelativeDisplacement(t *testing.T) {
	sects := section.NewStore()
	sects.Text.Add(make([]byte, 8)) // placeholder code, 4-byte disp32 at offset 4
	sects.Data.Add(make([]byte, 4))

	relocs := []codegen.Reloc{{CodeOffset: 4, TargetSection: section.Data, TargetOffset: 0}}
	layout := Layout(sects)
	textRVA := sectionRVA(layout, section.Text)
	patchRelocs(sects, relocs, layout, textRVA)

	dataRVA := sectionRVA(layout, section.Data)
	got := sects.Text.GetLE32(4)
	want := int32(int64(dataRVA) - int64(textRVA+4+4))
	if got != want {
		t.Fatalf("patched displacement = %d, want %d", got, want)
	}
}
