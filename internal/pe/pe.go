// Package pe writes the compiled sections out as a Windows PE32+ image,
// per spec.md §4.7 and §6: a fixed 0x200-byte header blob, followed by
// .text/.data/.rdata padded to FileAlignment, with no import or export
// directories. Grounded on the teacher's pe.go WritePEHeader/
// WritePESectionHeader (same field order, same ImageBase, same
// characteristics constants), with the import-directory machinery the
// teacher builds for msvcrt.dll stripped — spec.md explicitly scopes this
// revision to "no import/export directories" and calls to nonlocal
// functions unlinkable.
package pe

import (
	"fmt"

	"github.com/tcc86/tcc86/internal/section"
)

// Layout constants, spec.md §4.7/§6.
const (
	ImageBase        = 0x140000000
	SectionAlignment = 0x1000
	FileAlignment    = 0x200
	HeaderSize       = 0x200 // fixed-size header blob, spec.md §6
	SectionHeaderOff = 0x188 // where the first IMAGE_SECTION_HEADER starts
	SectionHeaderLen = 40
	OptionalHeaderSz = 240 // PE32+

	machineAMD64           = 0x8664
	peMagic32Plus          = 0x20b
	characteristicsEXEandLA = 0x0022 // EXECUTABLE_IMAGE | LARGE_ADDRESS_AWARE
	subsystemWindowsCUI    = 3
	dllCharacteristics     = 0x8160 // NX | DYNAMIC_BASE | HIGH_ENTROPY_VA | TERMINAL_SERVER_AWARE

	stackReserve = 0x100000
	stackCommit  = 0x1000
	heapReserve  = 0x100000
	heapCommit   = 0x1000
)

// Section characteristics flags, spec.md §6.
const (
	sectCode     = 0x00000020
	sectInitData = 0x00000040
	sectExecute  = 0x20000000
	sectRead     = 0x40000000
	sectWrite    = 0x80000000
)

// sectionSpec names the fixed emission order and characteristics spec.md
// §4.7 requires: ".text, .data, .rdata", regardless of which the parser
// actually populated (an unused one is simply skipped).
type sectionSpec struct {
	name  string
	sect  *section.Section
	flags uint32
}

// alignUp rounds v up to the next multiple of align (align a power of two).
func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}

// layoutSection records one non-empty section's file and virtual placement.
type layoutSection struct {
	spec       sectionSpec
	fileOffset uint32
	fileSize   uint32 // raw bytes, NOT padded
	virtAddr   uint32
	virtSize   uint32
}

// Layout computes file/virtual addresses for every non-empty section in
// the fixed .text/.data/.rdata order, advancing each by its own
// FileAlignment/SectionAlignment-rounded size, per spec.md §4.7.
func Layout(sects *section.Store) []layoutSection {
	order := []sectionSpec{
		{section.Text, sects.Text, sectCode | sectExecute | sectRead},
		{section.Data, sects.Data, sectInitData | sectRead | sectWrite},
		{section.RData, sects.RData, sectInitData | sectRead},
	}

	var out []layoutSection
	fileOff := uint32(HeaderSize)
	virtAddr := uint32(SectionAlignment)
	for _, spec := range order {
		if spec.sect == nil || len(spec.sect.Data) == 0 {
			continue
		}
		size := uint32(len(spec.sect.Data))
		out = append(out, layoutSection{
			spec:       spec,
			fileOffset: fileOff,
			fileSize:   size,
			virtAddr:   virtAddr,
			virtSize:   size,
		})
		fileOff += alignUp(size, FileAlignment)
		virtAddr += alignUp(size, SectionAlignment)
	}
	return out
}

// EntryPointRVA computes AddressOfEntryPoint per spec.md §4.7: the offset
// of main within .text plus SectionAlignment, or bare SectionAlignment if
// main was never defined (a program with no main still links, it just
// has nowhere useful to start — spec.md does not call this an error).
func EntryPointRVA(mainOffset int64, mainDefined bool) uint32 {
	if !mainDefined {
		return SectionAlignment
	}
	return SectionAlignment + uint32(mainOffset)
}

// sizeOfCode and sizeOfInitializedData sum the raw (unpadded) sizes of
// the code and data-like sections respectively, the fields the optional
// header's SizeOfCode/SizeOfInitializedData name.
func sizeOfCode(layout []layoutSection) uint32 {
	var n uint32
	for _, l := range layout {
		if l.spec.name == section.Text {
			n += l.fileSize
		}
	}
	return n
}

func sizeOfInitializedData(layout []layoutSection) uint32 {
	var n uint32
	for _, l := range layout {
		if l.spec.name != section.Text {
			n += l.fileSize
		}
	}
	return n
}

// sizeOfImage is the virtual extent of the last section, rounded up to
// SectionAlignment, per spec.md's SizeOfImage field.
func sizeOfImage(layout []layoutSection) uint32 {
	if len(layout) == 0 {
		return SectionAlignment
	}
	last := layout[len(layout)-1]
	return alignUp(last.virtAddr+last.virtSize, SectionAlignment)
}

// errNoSections reports a build with nothing to emit — not itself a
// spec.md-named error case, but a PE with zero sections isn't a
// meaningful executable, so we fail rather than emit a degenerate image.
var errNoSections = fmt.Errorf("pe: no sections to emit")
