package pe

import (
	"os"

	"github.com/tcc86/tcc86/internal/codegen"
	"github.com/tcc86/tcc86/internal/section"
)

// Write lays out sects' non-empty sections into a PE32+ image at path,
// resolving codegen's pending RIP-relative relocations against the final
// section addresses first, then serializing the fixed header plus each
// section's bytes padded to FileAlignment — spec.md §4.7.
//
// mainOffset/mainDefined give AddressOfEntryPoint per spec.md's "c(main)
// if main exists, else SectionAlignment" rule.
func Write(sects *section.Store, relocs []codegen.Reloc, mainOffset int64, mainDefined bool, path string) error {
	layout := Layout(sects)
	if len(layout) == 0 {
		return errNoSections
	}

	textRVA := sectionRVA(layout, section.Text)
	patchRelocs(sects, relocs, layout, textRVA)

	header := buildHeader(layout, mainOffset, mainDefined)

	buf := make([]byte, 0, HeaderSize+int(sizeOfFile(layout)))
	buf = append(buf, header...)
	for _, l := range layout {
		buf = append(buf, l.spec.sect.Data...)
		if pad := int(alignUp(l.fileSize, FileAlignment)) - len(l.spec.sect.Data); pad > 0 {
			buf = append(buf, make([]byte, pad)...)
		}
	}

	return os.WriteFile(path, buf, 0o755)
}

// sectionRVA returns the virtual address assigned to the named section,
// or 0 if it was empty and therefore not laid out at all.
func sectionRVA(layout []layoutSection, name string) uint32 {
	for _, l := range layout {
		if l.spec.name == name {
			return l.virtAddr
		}
	}
	return 0
}

// patchRelocs resolves every pending lea-reg,[rip+disp32] recorded by the
// generator now that final section RVAs are known, per SPEC_FULL.md §6.7:
// disp32 = targetRVA - (textRVA + codeOffset + 4), the distance from the
// byte right after the 4-byte displacement field (RIP at that point) to
// the referenced byte.
func patchRelocs(sects *section.Store, relocs []codegen.Reloc, layout []layoutSection, textRVA uint32) {
	for _, r := range relocs {
		targetRVA := sectionRVA(layout, r.TargetSection)
		disp := int32(int64(targetRVA)+r.TargetOffset) - int32(int64(textRVA)+int64(r.CodeOffset)+4)
		sects.Text.PutLE32(r.CodeOffset, disp)
	}
}

func sizeOfFile(layout []layoutSection) uint32 {
	var n uint32
	for _, l := range layout {
		n += alignUp(l.fileSize, FileAlignment)
	}
	return n
}

// buildHeader writes the DOS stub, COFF header, PE32+ optional header, and
// section headers into a single HeaderSize-byte buffer — spec.md §4.7's
// "fixed-size 0x200-byte header buffer", grounded on the teacher's
// WritePEHeader/WritePESectionHeader field order and constants.
func buildHeader(layout []layoutSection, mainOffset int64, mainDefined bool) []byte {
	b := newHeaderBuf()

	// DOS header: "MZ", zeros, e_lfanew = 0x80 at offset 0x3C.
	b.u16At(0x00, 0x5A4D)
	b.u32At(0x3C, 0x80)

	// PE signature at e_lfanew.
	b.u32At(0x80, 0x00004550)

	// COFF header at 0x84.
	coff := 0x84
	b.u16At(coff+0, machineAMD64)
	b.u16At(coff+2, uint16(len(layout)))
	b.u32At(coff+4, 0) // TimeDateStamp: 0, reproducible build
	b.u32At(coff+8, 0) // symbol table pointer, deprecated
	b.u32At(coff+12, 0) // symbol count, deprecated
	b.u16At(coff+16, OptionalHeaderSz)
	b.u16At(coff+18, characteristicsEXEandLA)

	// PE32+ optional header at 0x98.
	opt := coff + 20
	b.u16At(opt+0, peMagic32Plus)
	b.byteAt(opt+2, 1) // major linker version
	b.byteAt(opt+3, 0) // minor linker version
	b.u32At(opt+4, sizeOfCode(layout))
	b.u32At(opt+8, sizeOfInitializedData(layout))
	b.u32At(opt+12, 0) // size of uninitialized data: .bss is not emitted to disk
	b.u32At(opt+16, EntryPointRVA(mainOffset, mainDefined))
	b.u32At(opt+20, SectionAlignment) // base of code: .text starts the image

	b.u64At(opt+24, ImageBase)
	b.u32At(opt+32, SectionAlignment)
	b.u32At(opt+36, FileAlignment)
	b.u16At(opt+40, 6) // major OS version
	b.u16At(opt+42, 0)
	b.u16At(opt+44, 0) // major/minor image version
	b.u16At(opt+46, 0)
	b.u16At(opt+48, 6) // major subsystem version
	b.u16At(opt+50, 0)
	b.u32At(opt+52, 0) // win32 version value, reserved
	b.u32At(opt+56, sizeOfImage(layout))
	b.u32At(opt+60, HeaderSize) // size of headers
	b.u32At(opt+64, 0)          // checksum
	b.u16At(opt+68, subsystemWindowsCUI)
	b.u16At(opt+70, dllCharacteristics)
	b.u64At(opt+72, stackReserve)
	b.u64At(opt+80, stackCommit)
	b.u64At(opt+88, heapReserve)
	b.u64At(opt+96, heapCommit)
	b.u32At(opt+104, 0)  // loader flags
	b.u32At(opt+108, 16) // number of data directories
	// 16 data directories, 8 bytes each, all zero: no import/export
	// directories in this revision, per spec.md §4.7/§6.

	// Section headers at the fixed 0x188 offset, spec.md §4.7.
	for i, l := range layout {
		off := SectionHeaderOff + i*SectionHeaderLen
		b.nameAt(off, l.spec.name)
		b.u32At(off+8, l.virtSize)
		b.u32At(off+12, l.virtAddr)
		b.u32At(off+16, alignUp(l.fileSize, FileAlignment))
		b.u32At(off+20, l.fileOffset)
		b.u32At(off+24, 0) // pointer to relocations
		b.u32At(off+28, 0) // pointer to line numbers
		b.u16At(off+32, 0) // number of relocations
		b.u16At(off+34, 0) // number of line numbers
		b.u32At(off+36, l.spec.flags)
	}

	return b.data
}

// headerBuf is a fixed HeaderSize-byte buffer with positional writers —
// the header's field offsets are load-bearing (the loader reads them by
// fixed offset), so writing in place rather than sequentially appending
// keeps every field's offset an explicit, checkable constant.
type headerBuf struct{ data []byte }

func newHeaderBuf() *headerBuf { return &headerBuf{data: make([]byte, HeaderSize)} }

func (b *headerBuf) byteAt(off int, v byte) { b.data[off] = v }

func (b *headerBuf) u16At(off int, v uint16) {
	b.data[off] = byte(v)
	b.data[off+1] = byte(v >> 8)
}

func (b *headerBuf) u32At(off int, v uint32) {
	b.data[off] = byte(v)
	b.data[off+1] = byte(v >> 8)
	b.data[off+2] = byte(v >> 16)
	b.data[off+3] = byte(v >> 24)
}

func (b *headerBuf) u64At(off int, v uint64) {
	for i := 0; i < 8; i++ {
		b.data[off+i] = byte(v >> (8 * i))
	}
}

func (b *headerBuf) nameAt(off int, name string) {
	n := []byte(name)
	if len(n) > 8 {
		n = n[:8]
	}
	copy(b.data[off:off+8], n)
}
