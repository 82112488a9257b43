package encoder

import (
	"fmt"
	"os"
)

// JumpUnconditional emits a near jmp rel32 (E9) and returns the offset of
// the 32-bit displacement slot, so the caller can either fill in a resolved
// target immediately or thread it into a fix-up chain (spec.md §4.4 gjmp).
func (o *Out) JumpUnconditional(rel int32) int {
	if Verbose {
		fmt.Fprintf(os.Stderr, "jmp %d:", rel)
	}
	o.EmitByte(0xE9)
	slot := o.Ind()
	o.EmitLE32(rel)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	return slot
}

// JumpIfZero and JumpIfNotZero emit je/jne rel32 (0F 84 / 0F 85) after a
// preceding Test, returning the displacement slot offset exactly like
// JumpUnconditional. These back gtst's "test; jcc" sequence (spec.md §4.4:
// je if inverted, jne otherwise).
func (o *Out) JumpIfZero(rel int32) int    { return o.jccRel32(0x84, "je", rel) }
func (o *Out) JumpIfNotZero(rel int32) int { return o.jccRel32(0x85, "jne", rel) }

func (o *Out) jccRel32(opcode byte, name string, rel int32) int {
	if Verbose {
		fmt.Fprintf(os.Stderr, "%s %d:", name, rel)
	}
	o.EmitByte(0x0F)
	o.EmitByte(opcode)
	slot := o.Ind()
	o.EmitLE32(rel)
	if Verbose {
		fmt.Fprintln(os.Stderr)
	}
	return slot
}
