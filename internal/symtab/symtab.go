// Package symtab implements the name-scoped symbol stacks described in
// spec.md §3/§4.2: a fixed power-of-two hash table per stack (globals,
// locals) with chained buckets and a LIFO scope spine for O(k) bulk pop.
// Labels never get a named table of their own — they are anonymous
// *Symbol handles minted by codegen.Gind() and threaded through the
// generator's fix-up chains, never looked up by name, so a hash table
// would sit unused. #define macros have no table either: spec.md's
// Non-goals exclude the preprocessor, so there is nothing to define into
// one. The bucket-chain shape is grounded on the teacher's hashmap.go
// (Vibe67HashBucket{key, value, occupied, next}); spec.md specifically
// asks for a multiply-by-31 hash, which we hand-roll since it is part of
// the functional contract rather than a library-shaped concern.
package symtab

import "github.com/tcc86/tcc86/internal/ctype"

const tableSize = 8192 // fixed power-of-two size per spec.md §3

// Symbol is a named entity: a variable or function declaration in one of
// Tables' stacks, or an anonymous label minted by codegen.Gind() and never
// inserted into either table. For a label (or a function awaiting its
// definition), R == 1 means defined and C holds the resolved code offset;
// otherwise C holds the head of the singly-linked fix-up list threaded
// through the text section (spec.md §3).
type Symbol struct {
	Name string
	Type ctype.Type
	R    uint32 // register/storage word
	C    int64  // offset for locals, section offset for code/data, fix-up head for undefined labels

	SectionName string // which section C is relative to, if any

	prev    *Symbol // scope-stack back-link
	prevTok *Symbol // hash-bucket chain link
}

// Table is one of the two symbol stacks (globals, locals).
type Table struct {
	buckets [tableSize]*Symbol // bucket head, chained via prevTok
	spine   []*Symbol          // scope spine: symbols in push order
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{}
}

// hash implements spec.md's "FNV-like multiply-by-31 over bytes, masked to
// table size".
func hash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*31 + uint32(name[i])
	}
	return h % tableSize
}

// Push installs a new symbol, inserting it at the bucket head so it
// shadows any earlier symbol of the same name until popped.
func (t *Table) Push(name string, typ ctype.Type, r uint32, c int64) *Symbol {
	idx := hash(name)
	sym := &Symbol{Name: name, Type: typ, R: r, C: c, prevTok: t.buckets[idx]}
	t.buckets[idx] = sym
	t.spine = append(t.spine, sym)
	return sym
}

// Mark returns a position on the scope spine that Pop can later rewind to.
func (t *Table) Mark() int { return len(t.spine) }

// Pop restores the predecessor of every symbol pushed since marker,
// undoing shadowing in one bulk operation (spec.md §4.2).
func (t *Table) Pop(marker int) {
	for i := len(t.spine) - 1; i >= marker; i-- {
		sym := t.spine[i]
		idx := hash(sym.Name)
		t.buckets[idx] = sym.prevTok
	}
	t.spine = t.spine[:marker]
}

// Find looks up name, walking the bucket chain and returning the most
// recently pushed (innermost) match, or nil.
func (t *Table) Find(name string) *Symbol {
	for s := t.buckets[hash(name)]; s != nil; s = s.prevTok {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Tables bundles the symbol stacks the compiler state owns, plus the
// local-scope depth tracker (spec.md §3).
type Tables struct {
	Globals *Table
	Locals  *Table

	localDepth int
}

// NewTables creates the globals and locals symbol stacks.
func NewTables() *Tables {
	return &Tables{
		Globals: NewTable(),
		Locals:  NewTable(),
	}
}

// Find looks up name in locals first, then globals, per spec.md §4.2.
func (t *Tables) Find(name string) *Symbol {
	if s := t.Locals.Find(name); s != nil {
		return s
	}
	return t.Globals.Find(name)
}

// FindGlobal looks up name only in the global table.
func (t *Tables) FindGlobal(name string) *Symbol {
	return t.Globals.Find(name)
}

// EnterScope and LeaveScope bracket a block's local declarations, marking
// and popping the Locals table's scope spine.
func (t *Tables) EnterScope() int {
	t.localDepth++
	return t.Locals.Mark()
}

func (t *Tables) LeaveScope(marker int) {
	t.localDepth--
	t.Locals.Pop(marker)
}
