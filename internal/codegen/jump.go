package codegen

import (
	"github.com/tcc86/tcc86/internal/encoder"
	"github.com/tcc86/tcc86/internal/symtab"
	"github.com/tcc86/tcc86/internal/value"
)

// Gind returns a fresh anonymous label: an undefined symbol whose C field
// is -1, the empty fix-up chain, per gen.c's gind.
func Gind() *symtab.Symbol {
	return &symtab.Symbol{C: -1}
}

// Gjmp emits an unconditional jump to label l. If l is already defined
// (R == 1), the displacement is resolved immediately; otherwise the
// 32-bit slot is threaded onto l's fix-up chain: the slot temporarily
// holds the previous chain head (or -1), and l.C is updated to point at
// this slot. Ported from x86_64-gen.c's gjmp.
func (g *Generator) Gjmp(l *symtab.Symbol) {
	if l.R == 1 {
		// The displacement is measured from the end of the instruction:
		// one E9 opcode byte plus the 4-byte slot.
		rel := int32(l.C - int64(g.Out.Ind()+5))
		g.Out.JumpUnconditional(rel)
		return
	}
	slot := g.Out.JumpUnconditional(int32(l.C))
	l.C = int64(slot)
}

// Gtst emits a conditional jump to l, testing the top-of-stack value
// (popped) and branching on whether it is zero. inv selects which sense
// branches: inv == true emits je (jump when the tested value is zero,
// i.e. the "false" branch of an if); inv == false emits jne. Ported from
// x86_64-gen.c's gtst, including its chain-threading for undefined
// labels.
func (g *Generator) Gtst(inv bool, l *symtab.Symbol) {
	top := g.Stack.Top()
	r := value.RMask(top.R)
	var reg encoder.Reg
	if r < encoder.NBRegs && top.R&value.LVAL == 0 {
		reg = encoder.Reg(r)
	} else {
		reg = g.Gv(encoder.RCInt)
	}
	g.Stack.Pop()

	g.Out.Test(reg)

	if l.R == 1 {
		// Two opcode bytes (0F 84/85) plus the 4-byte slot.
		rel := int32(l.C - int64(g.Out.Ind()+6))
		if inv {
			g.Out.JumpIfZero(rel)
		} else {
			g.Out.JumpIfNotZero(rel)
		}
		return
	}
	var slot int
	if inv {
		slot = g.Out.JumpIfZero(int32(l.C))
	} else {
		slot = g.Out.JumpIfNotZero(int32(l.C))
	}
	l.C = int64(slot)
}

// Glabel defines l at the current code offset, walking its fix-up chain
// and patching every pending jump's displacement in place. Ported from
// x86_64-gen.c's glabel: each chain slot holds the offset of the
// previous fix-up (or -1), read out before being overwritten with the
// now-resolvable relative displacement.
func (g *Generator) Glabel(l *symtab.Symbol) {
	p := l.C
	for p != -1 {
		rel := int32(int64(g.Out.Ind()) - (p + 4))
		next := g.Out.Text.GetLE32(int(p))
		g.Out.Text.PutLE32(int(p), rel)
		p = int64(next)
	}
	l.R = 1
	l.C = int64(g.Out.Ind())
}
